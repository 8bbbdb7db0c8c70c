// Package storage persists the client state snapshot: a single namespaced
// JSON blob plus a secondary mirror of the bearer token under its own key,
// for components that read the token without deserializing the whole state.
package storage

import (
	"context"
	"errors"
)

// ErrNotExist is returned by Load when no snapshot has been written yet.
// Callers treat it as a cold start, never as a failure.
var ErrNotExist = errors.New("snapshot does not exist")

// Backend stores the serialized state snapshot. Exactly one writer (the
// store) ever calls Save/Clear; implementations only need to keep individual
// writes atomic.
type Backend interface {
	// Load returns the raw snapshot blob, or ErrNotExist.
	Load(ctx context.Context) ([]byte, error)
	// Save writes the snapshot blob and mirrors the bearer token under the
	// secondary key. An empty token removes the mirror.
	Save(ctx context.Context, blob []byte, token string) error
	// Clear removes the snapshot and the token mirror.
	Clear(ctx context.Context) error
	// Token reads the mirrored bearer token; empty when absent.
	Token(ctx context.Context) (string, error)
}

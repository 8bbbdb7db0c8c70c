// Package confirm gates destructive operations behind an explicit two-phase
// flow: the action is first requested, then executed only after the caller
// re-verifies the account password.
package confirm

import (
	"context"
	"errors"
	"sync"

	pkgerrors "github.com/ferretex/storefront-client/pkg/errors"
	"github.com/ferretex/storefront-client/pkg/logger"
)

var (
	errVerifierRequired = errors.New("confirm verifier is required")
	errLoggerRequired   = errors.New("confirm logger is required")
)

// Phase is the machine state.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseAwaiting  Phase = "awaiting_confirmation"
	PhaseExecuting Phase = "executing"
)

// ActionFunc is the deferred destructive operation.
type ActionFunc func(ctx context.Context) error

// Verifier re-checks the account password before an action runs.
type Verifier interface {
	VerifyPassword(ctx context.Context, token, password string) error
}

// Machine holds at most one pending action. Requesting a second action while
// one is pending is rejected rather than queued.
type Machine struct {
	verifier Verifier
	logger   *logger.Logger

	mu     sync.Mutex
	phase  Phase
	label  string
	action ActionFunc
}

func NewMachine(verifier Verifier, logg *logger.Logger) (*Machine, error) {
	if verifier == nil {
		return nil, errVerifierRequired
	}
	if logg == nil {
		return nil, errLoggerRequired
	}
	return &Machine{verifier: verifier, logger: logg, phase: PhaseIdle}, nil
}

// Phase returns the current machine state.
func (m *Machine) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Pending returns the label of the action awaiting confirmation, if any.
func (m *Machine) Pending() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.label, m.phase == PhaseAwaiting
}

// Request stages an action. The machine must be idle.
func (m *Machine) Request(label string, action ActionFunc) error {
	if action == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "confirmable action is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != PhaseIdle {
		return pkgerrors.New(pkgerrors.CodeValidation, "another action is already pending confirmation")
	}
	m.phase = PhaseAwaiting
	m.label = label
	m.action = action
	return nil
}

// Confirm re-verifies the password and runs the pending action. A failed
// verification keeps the action pending so the caller may retry; any other
// outcome, success or action failure, returns the machine to idle.
func (m *Machine) Confirm(ctx context.Context, token, password string) error {
	m.mu.Lock()
	if m.phase != PhaseAwaiting {
		m.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeValidation, "no action pending confirmation")
	}
	m.phase = PhaseExecuting
	label := m.label
	action := m.action
	m.mu.Unlock()

	ctx = m.logger.WithField(ctx, "action", label)
	if err := m.verifier.VerifyPassword(ctx, token, password); err != nil {
		m.mu.Lock()
		m.phase = PhaseAwaiting
		m.mu.Unlock()
		m.logger.Warn(ctx, "confirmation rejected")
		return pkgerrors.Wrap(pkgerrors.CodeAuthFailed, err, "password verification failed")
	}

	err := action(ctx)

	m.mu.Lock()
	m.phase = PhaseIdle
	m.label = ""
	m.action = nil
	m.mu.Unlock()

	if err != nil {
		m.logger.Error(ctx, "confirmed action failed", err)
		return err
	}
	m.logger.Info(ctx, "confirmed action executed")
	return nil
}

// Cancel discards the pending action. Cancelling an idle machine is a no-op;
// an executing action cannot be cancelled.
func (m *Machine) Cancel() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase == PhaseExecuting {
		return pkgerrors.New(pkgerrors.CodeValidation, "action is already executing")
	}
	m.phase = PhaseIdle
	m.label = ""
	m.action = nil
	return nil
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
)

const (
	snapshotFileName = "state.json"
	tokenFileName    = "token"
	dirPerm          = 0o700
	filePerm         = 0o600
)

// FileBackend keeps the snapshot on the local filesystem, one directory per
// namespace. Writes go through a temp file and rename so a crash mid-write
// leaves the previous snapshot intact.
type FileBackend struct {
	dir string
}

// NewFileBackend creates the backing directory under root (defaulting to the
// user config dir) namespaced by the given state namespace.
func NewFileBackend(root, namespace string) (*FileBackend, error) {
	if root == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolving config dir: %w", err)
		}
		root = configDir
	}
	dir := filepath.Join(root, namespaceToDir(namespace))
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("creating snapshot dir: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

// Dir exposes the resolved snapshot directory.
func (f *FileBackend) Dir() string {
	return f.dir
}

func (f *FileBackend) Load(_ context.Context) ([]byte, error) {
	blob, err := os.ReadFile(filepath.Join(f.dir, snapshotFileName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	return blob, nil
}

func (f *FileBackend) Save(_ context.Context, blob []byte, token string) error {
	if err := writeAtomic(filepath.Join(f.dir, snapshotFileName), blob); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	tokenPath := filepath.Join(f.dir, tokenFileName)
	if token == "" {
		if err := os.Remove(tokenPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("removing token mirror: %w", err)
		}
		return nil
	}
	if err := writeAtomic(tokenPath, []byte(token)); err != nil {
		return fmt.Errorf("writing token mirror: %w", err)
	}
	return nil
}

func (f *FileBackend) Clear(_ context.Context) error {
	var errs error
	for _, name := range []string{snapshotFileName, tokenFileName} {
		if err := os.Remove(filepath.Join(f.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

func (f *FileBackend) Token(_ context.Context) (string, error) {
	raw, err := os.ReadFile(filepath.Join(f.dir, tokenFileName))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading token mirror: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(filePerm); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func namespaceToDir(namespace string) string {
	if namespace == "" {
		namespace = "ferretex"
	}
	return strings.ReplaceAll(namespace, ":", "-")
}

// Package filestore keeps the durable key-value store as one JSON file per
// key and provides the cross-process session lock.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/xvierd/wellflow/internal/domain"
	"github.com/xvierd/wellflow/internal/ports"
)

const writeLockName = ".write.lock"

// Store implements ports.KVStore on a directory.
type Store struct {
	dir       string
	writeLock *flock.Flock
}

// New creates the directory if needed and returns a store rooted at it.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store dir: %w", err)
	}
	return &Store{
		dir:       dir,
		writeLock: flock.New(filepath.Join(dir, writeLockName)),
	}, nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+".json")
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return string(data), true, nil
}

// Set atomically replaces the value stored under key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.locked(func() error {
		if err := atomicWriteFile(s.path(key), []byte(value), 0o644); err != nil {
			return fmt.Errorf("failed to write %q: %w", key, err)
		}
		return nil
	})
}

// Remove deletes key.
func (s *Store) Remove(ctx context.Context, key string) error {
	return s.locked(func() error {
		err := os.Remove(s.path(key))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove %q: %w", key, err)
		}
		return nil
	})
}

// locked serializes writers across processes.
func (s *Store) locked(fn func() error) error {
	if err := s.writeLock.Lock(); err != nil {
		return fmt.Errorf("acquiring store lock: %w", err)
	}
	defer func() { _ = s.writeLock.Unlock() }()
	return fn()
}

// atomicWriteFile writes to a temp file, then renames it over path.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	tmpFile := path + ".tmp"

	if err := os.WriteFile(tmpFile, data, perm); err != nil {
		return err
	}
	if err := os.Rename(tmpFile, path); err != nil {
		_ = os.Remove(tmpFile)
		return err
	}
	return nil
}

// Locker implements ports.SessionLock with one flock file per session key.
type Locker struct {
	dir string
}

// NewLocker returns a locker keeping its lock files under dir.
func NewLocker(dir string) (*Locker, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create lock dir: %w", err)
	}
	return &Locker{dir: dir}, nil
}

// Acquire takes the lock for key without waiting.
func (l *Locker) Acquire(key string) (func() error, error) {
	fl := flock.New(filepath.Join(l.dir, url.PathEscape(key)+".lock"))

	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring lock: %w", err)
	}
	if !locked {
		return nil, domain.ErrSessionLocked
	}

	return func() error {
		if err := fl.Unlock(); err != nil {
			return fmt.Errorf("releasing lock: %w", err)
		}
		return nil
	}, nil
}

// NopLocker grants every lock. It serves in-memory setups and tests.
type NopLocker struct{}

func (NopLocker) Acquire(string) (func() error, error) {
	return func() error { return nil }, nil
}

var (
	_ ports.KVStore     = (*Store)(nil)
	_ ports.SessionLock = (*Locker)(nil)
	_ ports.SessionLock = NopLocker{}
)

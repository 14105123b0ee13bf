// Package file keeps each slot in its own JSON file inside a directory and
// watches that directory with fsnotify to learn about writes from other
// processes.
package file

import (
	"context"
	"crypto/sha256"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-faster/errors"

	"github.com/dwikikusuma/collegemart/internal/storage"
	"github.com/dwikikusuma/collegemart/pkg/logger"
)

const ext = ".json"

// state is what a slot looked like at some point: present with a digest, or absent.
type state struct {
	exists bool
	sum    [sha256.Size]byte
}

type selfState struct {
	state
	// valid is cleared once a foreign write has been observed, so that a
	// later foreign write that happens to match our old state still counts.
	valid bool
}

type Store struct {
	dir string
	log *slog.Logger

	mu     sync.Mutex
	self   map[string]selfState
	closed bool
}

var (
	_ storage.Store      = (*Store)(nil)
	_ storage.ChangeFeed = (*Store)(nil)
)

// Open creates dir if needed and returns a store rooted there.
func Open(dir string, log *slog.Logger) (*Store, error) {
	if dir == "" {
		return nil, errors.New("storage dir is required")
	}
	clean := filepath.Clean(dir)
	if err := os.MkdirAll(clean, 0o700); err != nil {
		return nil, errors.Wrap(err, "create storage dir")
	}
	return &Store{
		dir:  clean,
		log:  logger.OrDefault(log),
		self: make(map[string]selfState),
	}, nil
}

func (s *Store) Dir() string { return s.dir }

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+ext)
}

func (s *Store) check(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return storage.ErrClosed
	}
	return storage.ValidateKey(key)
}

func (s *Store) Read(ctx context.Context, key string) ([]byte, bool, error) {
	if err := s.check(ctx, key); err != nil {
		return nil, false, err
	}
	b, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "read slot %s", key)
	}
	return b, true, nil
}

// Write replaces the slot atomically: the value goes to a temp file in the
// same directory which is then renamed over the slot file.
func (s *Store) Write(ctx context.Context, key string, value []byte) error {
	if err := s.check(ctx, key); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+key+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "create temp for slot %s", key)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.Wrapf(err, "write slot %s", key)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.Wrapf(err, "sync slot %s", key)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errors.Wrapf(err, "close slot %s", key)
	}

	prev := s.markSelf(key, state{exists: true, sum: sha256.Sum256(value)})
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		s.restoreSelf(key, prev)
		cleanup()
		return errors.Wrapf(err, "commit slot %s", key)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.check(ctx, key); err != nil {
		return err
	}
	prev := s.markSelf(key, state{})
	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		s.restoreSelf(key, prev)
		return errors.Wrapf(err, "delete slot %s", key)
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func (s *Store) markSelf(key string, st state) selfState {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.self[key]
	s.self[key] = selfState{state: st, valid: true}
	return prev
}

func (s *Store) restoreSelf(key string, prev selfState) {
	s.mu.Lock()
	s.self[key] = prev
	s.mu.Unlock()
}

// observe decides whether the current on-disk state of key was produced by
// this store. Foreign states invalidate the remembered self state.
func (s *Store) observe(key string, cur state) (foreign bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	self := s.self[key]
	if self.valid && self.state == cur {
		return false
	}
	s.self[key] = selfState{}
	return true
}

func (s *Store) snapshot(key string) (state, error) {
	b, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return state{}, nil
	}
	if err != nil {
		return state{}, err
	}
	return state{exists: true, sum: sha256.Sum256(b)}, nil
}

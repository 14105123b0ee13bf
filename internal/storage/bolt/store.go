// Package bolt keeps slots in a bbolt database. bbolt holds an exclusive
// file lock, so a bolt store serves one context at a time and offers no
// change feed.
package bolt

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"go.etcd.io/bbolt"

	"github.com/dwikikusuma/collegemart/internal/storage"
)

const slotBucket = "slots"

type Store struct {
	db *bbolt.DB
}

var _ storage.Store = (*Store)(nil)

// Open opens the database at path, waiting up to a second for the file lock.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}

	db, err := bbolt.Open(filepath.Clean(path), 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "open storage db")
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(slotBucket))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "create slot bucket")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) check(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return errors.New("storage is not configured")
	}
	return storage.ValidateKey(key)
}

func (s *Store) Read(ctx context.Context, key string) ([]byte, bool, error) {
	if err := s.check(ctx, key); err != nil {
		return nil, false, err
	}
	var (
		value []byte
		found bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(slotBucket)).Get([]byte(key))
		if v == nil {
			return nil
		}
		found = true
		// v is only valid for the life of the transaction.
		value = append([]byte{}, v...)
		return nil
	})
	if errors.Is(err, bbolt.ErrDatabaseNotOpen) {
		return nil, false, storage.ErrClosed
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "read slot %s", key)
	}
	return value, found, nil
}

func (s *Store) Write(ctx context.Context, key string, value []byte) error {
	if err := s.check(ctx, key); err != nil {
		return err
	}
	if value == nil {
		value = []byte{}
	}
	return s.update(key, func(b *bbolt.Bucket) error {
		return b.Put([]byte(key), value)
	})
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.check(ctx, key); err != nil {
		return err
	}
	return s.update(key, func(b *bbolt.Bucket) error {
		return b.Delete([]byte(key))
	})
}

func (s *Store) update(key string, fn func(*bbolt.Bucket) error) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return fn(tx.Bucket([]byte(slotBucket)))
	})
	if errors.Is(err, bbolt.ErrDatabaseNotOpen) {
		return storage.ErrClosed
	}
	if err != nil {
		return errors.Wrapf(err, "write slot %s", key)
	}
	return nil
}

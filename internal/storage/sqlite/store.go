// Package sqlite keeps slots in a single SQLite database file. Each row
// records which context wrote it last and a version counter. Watch polls the
// version and compares the increase with the number of writes this store made
// itself to detect writes from other processes sharing the file.
package sqlite

import (
	"context"
	"database/sql"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-faster/errors"
	_ "modernc.org/sqlite"

	"github.com/dwikikusuma/collegemart/internal/storage"
	"github.com/dwikikusuma/collegemart/pkg/logger"
)

const defaultPollInterval = 500 * time.Millisecond

type Options struct {
	// PollInterval is how often Watch checks the slot version.
	PollInterval time.Duration
	Logger       *slog.Logger
}

type Store struct {
	db       *sql.DB
	origin   string
	interval time.Duration
	log      *slog.Logger

	mu     sync.Mutex
	closed bool

	// wmu orders this store's writes against version polls; writes counts
	// them per key.
	wmu    sync.Mutex
	writes map[string]int64
}

var (
	_ storage.Store      = (*Store)(nil)
	_ storage.ChangeFeed = (*Store)(nil)
)

// Open opens (creating if needed) and migrates the database at path.
func Open(ctx context.Context, path string, opts Options) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite db")
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping sqlite db")
	}
	if err := applyMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "run migrations")
	}

	interval := opts.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Store{
		db:       db,
		origin:   storage.NewContextID(),
		interval: interval,
		log:      logger.OrDefault(opts.Logger),
		writes:   make(map[string]int64),
	}, nil
}

// Origin is the context id stamped on rows this store writes.
func (s *Store) Origin() string { return s.origin }

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
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM slots WHERE key = ? AND value IS NOT NULL`, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "read slot %s", key)
	}
	if value == nil {
		value = []byte{}
	}
	return value, true, nil
}

func (s *Store) Write(ctx context.Context, key string, value []byte) error {
	if err := s.check(ctx, key); err != nil {
		return err
	}
	if value == nil {
		value = []byte{}
	}
	return s.put(ctx, key, value)
}

// Delete leaves a tombstone row so that watchers see a version bump.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.check(ctx, key); err != nil {
		return err
	}
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM slots WHERE key = ? AND value IS NOT NULL`, key,
	).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "delete slot %s", key)
	}
	return s.put(ctx, key, nil)
}

func (s *Store) put(ctx context.Context, key string, value []byte) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	_, err := s.db.ExecContext(ctx, `
INSERT INTO slots (key, value, origin, version, updated_at)
VALUES (?, ?, ?, 1, ?)
ON CONFLICT(key) DO UPDATE SET
    value = excluded.value,
    origin = excluded.origin,
    version = slots.version + 1,
    updated_at = excluded.updated_at`,
		key, value, s.origin, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return errors.Wrapf(err, "write slot %s", key)
	}
	s.writes[key]++
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	return s.db.Close()
}

// Watch polls the slot row and reports version bumps that this store's own
// writes do not account for, so a foreign write is seen even when this store
// writes again before the next poll.
func (s *Store) Watch(ctx context.Context, key string) (<-chan storage.Change, error) {
	if err := s.check(ctx, key); err != nil {
		return nil, err
	}
	last, lastOwn, err := s.poll(ctx, key)
	if err != nil {
		return nil, err
	}

	out := make(chan storage.Change, 1)
	go func() {
		defer close(out)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			v, own, err := s.poll(ctx, key)
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, storage.ErrClosed) {
					return
				}
				s.log.Warn("poll slot version", slog.String("key", key), slog.Any("err", err))
				continue
			}
			foreign := (v - last) - (own - lastOwn)
			last, lastOwn = v, own
			if foreign <= 0 {
				continue
			}
			storage.Notify(out, storage.Change{Key: key, At: time.Now()})
		}
	}()
	return out, nil
}

// poll returns the slot version together with the number of writes this
// store has made to key, read under the write lock so the two agree.
func (s *Store) poll(ctx context.Context, key string) (version, own int64, err error) {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	v, err := s.version(ctx, key)
	if err != nil {
		return 0, 0, err
	}
	return v, s.writes[key], nil
}

func (s *Store) version(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return 0, storage.ErrClosed
	}

	var v int64
	err := s.db.QueryRowContext(ctx,
		`SELECT version FROM slots WHERE key = ?`, key,
	).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrapf(err, "read slot version %s", key)
	}
	return v, nil
}

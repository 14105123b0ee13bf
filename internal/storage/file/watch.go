package file

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-faster/errors"

	"github.com/dwikikusuma/collegemart/internal/storage"
)

// Watch starts an fsnotify watcher on the storage directory and reports
// changes to key that this store did not write itself. Repeated events for
// the same content are folded into one change.
func (s *Store) Watch(ctx context.Context, key string) (<-chan storage.Change, error) {
	if err := s.check(ctx, key); err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create watcher")
	}
	if err := w.Add(s.dir); err != nil {
		_ = w.Close()
		return nil, errors.Wrapf(err, "watch %s", s.dir)
	}

	last, err := s.snapshot(key)
	if err != nil {
		_ = w.Close()
		return nil, errors.Wrapf(err, "snapshot slot %s", key)
	}

	out := make(chan storage.Change, 1)
	go s.watchLoop(ctx, w, key, last, out)
	return out, nil
}

func (s *Store) watchLoop(ctx context.Context, w *fsnotify.Watcher, key string, last state, out chan storage.Change) {
	defer close(out)
	defer func() {
		if err := w.Close(); err != nil {
			s.log.Warn("close watcher", slog.Any("err", err))
		}
	}()

	name := key + ext
	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}

			cur, err := s.snapshot(key)
			if err != nil {
				s.log.Warn("snapshot slot", slog.String("key", key), slog.Any("err", err))
				continue
			}
			if cur == last {
				continue
			}
			last = cur
			if !s.observe(key, cur) {
				continue
			}
			s.log.Debug("slot changed by another context", slog.String("key", key), slog.String("op", ev.Op.String()))
			storage.Notify(out, storage.Change{Key: key, At: time.Now()})

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			s.log.Warn("watcher error", slog.Any("err", err))
		}
	}
}

// Package memory is an in-process storage backend. A Space holds the slots;
// each Handle is one context inside it, so writes through one handle are
// reported to watchers on every other handle.
package memory

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/dwikikusuma/collegemart/internal/storage"
)

type Space struct {
	mu   sync.Mutex
	data map[string][]byte
	subs map[*subscriber]struct{}
}

type subscriber struct {
	origin string
	key    string
	ch     chan storage.Change
}

func NewSpace() *Space {
	return &Space{
		data: make(map[string][]byte),
		subs: make(map[*subscriber]struct{}),
	}
}

// Handle opens a new context on the space.
func (s *Space) Handle() *Handle {
	return &Handle{space: s, id: storage.NewContextID()}
}

func (s *Space) publish(origin, key string) {
	c := storage.Change{Key: key, At: time.Now()}
	for sub := range s.subs {
		if sub.origin == origin || sub.key != key {
			continue
		}
		storage.Notify(sub.ch, c)
	}
}

type Handle struct {
	space *Space
	id    string

	mu     sync.Mutex
	closed bool
}

var (
	_ storage.Store      = (*Handle)(nil)
	_ storage.ChangeFeed = (*Handle)(nil)
)

func (h *Handle) ID() string { return h.id }

func (h *Handle) check(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if closed {
		return storage.ErrClosed
	}
	return storage.ValidateKey(key)
}

func (h *Handle) Read(ctx context.Context, key string) ([]byte, bool, error) {
	if err := h.check(ctx, key); err != nil {
		return nil, false, err
	}
	h.space.mu.Lock()
	defer h.space.mu.Unlock()
	v, ok := h.space.data[key]
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(v), true, nil
}

func (h *Handle) Write(ctx context.Context, key string, value []byte) error {
	if err := h.check(ctx, key); err != nil {
		return err
	}
	h.space.mu.Lock()
	defer h.space.mu.Unlock()
	h.space.data[key] = bytes.Clone(value)
	h.space.publish(h.id, key)
	return nil
}

func (h *Handle) Delete(ctx context.Context, key string) error {
	if err := h.check(ctx, key); err != nil {
		return err
	}
	h.space.mu.Lock()
	defer h.space.mu.Unlock()
	if _, ok := h.space.data[key]; !ok {
		return nil
	}
	delete(h.space.data, key)
	h.space.publish(h.id, key)
	return nil
}

// Watch reports writes to key made through other handles.
func (h *Handle) Watch(ctx context.Context, key string) (<-chan storage.Change, error) {
	if err := h.check(ctx, key); err != nil {
		return nil, err
	}
	sub := &subscriber{origin: h.id, key: key, ch: make(chan storage.Change, 1)}

	h.space.mu.Lock()
	h.space.subs[sub] = struct{}{}
	h.space.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.space.mu.Lock()
		delete(h.space.subs, sub)
		close(sub.ch)
		h.space.mu.Unlock()
	}()

	return sub.ch, nil
}

func (h *Handle) Close() error {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	return nil
}

// Package storage defines the durable key/value slots the client keeps its
// state in, and the change feed other contexts use to learn about writes.
//
// A context is one process or long-lived surface (the web UI, a badge
// watcher, a single CLI invocation). Every backend handle belongs to exactly
// one context; change feeds never report the handle's own writes.
package storage

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

var (
	ErrClosed     = errors.New("storage closed")
	ErrInvalidKey = errors.New("invalid storage key")
)

// Store is a set of named slots. A missing slot reads as (nil, false, nil).
type Store interface {
	Read(ctx context.Context, key string) ([]byte, bool, error)
	Write(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Change reports that a slot was written or deleted by another context.
type Change struct {
	Key string
	At  time.Time
}

// ChangeFeed is implemented by backends that can observe writes made by other
// contexts. The returned channel is closed once ctx is done.
type ChangeFeed interface {
	Watch(ctx context.Context, key string) (<-chan Change, error)
}

// NewContextID returns a random identifier for a storage context.
func NewContextID() string {
	return uuid.NewString()
}

// ValidateKey rejects keys that cannot be used as a file name or row key.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return errors.Wrapf(ErrInvalidKey, "%q", key)
	}
	return nil
}

// Notify performs a coalescing send: if a change is already pending the new
// one is dropped, since receivers always re-read the slot.
func Notify(ch chan<- Change, c Change) {
	select {
	case ch <- c:
	default:
	}
}

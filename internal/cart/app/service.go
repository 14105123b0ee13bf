package app

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/dwikikusuma/collegemart/internal/cart/domain"
	"github.com/dwikikusuma/collegemart/pkg/logger"
)

// DefaultKey is the slot the cart is stored under.
const DefaultKey = "cart"

var (
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotPersisted means the cart was updated in memory but the durable
	// write failed, so the change may not survive a reload.
	ErrNotPersisted = errors.New("cart change not persisted")
)

// PersistError is returned together with the updated cart when the durable
// write of op failed. It matches ErrNotPersisted and unwraps to the backend
// error.
type PersistError struct {
	Op  string
	Err error
}

func (e *PersistError) Error() string {
	return ErrNotPersisted.Error() + ": " + e.Op + ": " + e.Err.Error()
}

func (e *PersistError) Is(target error) bool { return target == ErrNotPersisted }

func (e *PersistError) Unwrap() error { return e.Err }

// Store is the only writer of the durable cart. Each mutation reads the whole
// cart, computes the new cart and writes it back before returning. The mutex
// makes that sequence atomic within the process; other processes sharing the
// slot are last-writer-wins.
type Store struct {
	slots Slots
	key   string
	log   *slog.Logger

	mu sync.Mutex
}

func NewStore(slots Slots, key string, log *slog.Logger) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{
		slots: slots,
		key:   key,
		log:   logger.OrDefault(log).With(slog.String("component", "cart_store")),
	}
}

func (s *Store) Key() string { return s.key }

// Load returns the current cart. Read failures and corrupt content are
// logged and yield an empty cart.
func (s *Store) Load(ctx context.Context) domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.load(ctx)
	if err != nil {
		s.log.Warn("read cart", slog.Any("err", err))
		return domain.Cart{}
	}
	return c
}

// Count is the badge number: the sum of quantities.
func (s *Store) Count(ctx context.Context) int {
	return s.Load(ctx).Count()
}

// Total is price times quantity summed over the cart, unrounded.
func (s *Store) Total(c domain.Cart) decimal.Decimal {
	return c.Total()
}

func (s *Store) AddOrIncrement(ctx context.Context, p domain.ProductSnapshot) (domain.Cart, error) {
	p.ID = strings.TrimSpace(p.ID)
	if p.ID == "" {
		return domain.Cart{}, errors.Wrap(ErrInvalidInput, "product id is required")
	}
	if p.Price.IsNegative() {
		return domain.Cart{}, errors.Wrap(ErrInvalidInput, "price must be >= 0")
	}
	return s.mutate(ctx, "add", func(c domain.Cart) (domain.Cart, bool) {
		return c.AddOrIncrement(p), true
	})
}

// SetQuantity is a no-op when q < 1 or id is not in the cart.
func (s *Store) SetQuantity(ctx context.Context, id string, q int) (domain.Cart, error) {
	id = strings.TrimSpace(id)
	return s.mutate(ctx, "set_quantity", func(c domain.Cart) (domain.Cart, bool) {
		return c.SetQuantity(id, q)
	})
}

// Remove is a no-op when id is not in the cart.
func (s *Store) Remove(ctx context.Context, id string) (domain.Cart, error) {
	id = strings.TrimSpace(id)
	return s.mutate(ctx, "remove", func(c domain.Cart) (domain.Cart, bool) {
		return c.Remove(id)
	})
}

// Clear erases the durable cart, including content that failed to decode.
func (s *Store) Clear(ctx context.Context) (domain.Cart, error) {
	return s.mutate(ctx, "clear", func(domain.Cart) (domain.Cart, bool) {
		return domain.Cart{}, true
	})
}

// mutate applies fn to the stored cart and writes the result. A failed read
// aborts without writing so the stored cart is never replaced by a guess.
func (s *Store) mutate(ctx context.Context, op string, fn func(domain.Cart) (domain.Cart, bool)) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.load(ctx)
	if err != nil {
		return domain.Cart{}, errors.Wrap(err, op)
	}
	next, changed := fn(cur)
	if !changed {
		return cur, nil
	}
	if err := s.persist(ctx, next); err != nil {
		s.log.Warn("cart not persisted",
			slog.String("op", op),
			slog.Any("err", err),
		)
		return next, &PersistError{Op: op, Err: err}
	}
	return next, nil
}

// load reads the stored cart. Only a failed read is an error; corrupt
// content is logged and loads as an empty cart.
func (s *Store) load(ctx context.Context) (domain.Cart, error) {
	b, ok, err := s.slots.Read(ctx, s.key)
	if err != nil {
		return domain.Cart{}, errors.Wrap(err, "read cart")
	}
	if !ok {
		return domain.Cart{}, nil
	}
	c, err := DecodeCart(b)
	if err != nil {
		s.log.Warn("stored cart is corrupt, treating as empty",
			slog.String("key", s.key),
			slog.Any("err", err),
		)
		return domain.Cart{}, nil
	}
	return c, nil
}

// persist writes the full cart; an empty cart erases the slot.
func (s *Store) persist(ctx context.Context, c domain.Cart) error {
	if c.IsEmpty() {
		return s.slots.Delete(ctx, s.key)
	}
	b, err := EncodeCart(c)
	if err != nil {
		return err
	}
	return s.slots.Write(ctx, s.key, b)
}

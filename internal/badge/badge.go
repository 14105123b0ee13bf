// Package badge derives the cart item count shown in navigation.
//
// The count is re-derived from the durable cart when a surface mounts and
// when another context writes the cart slot. Writes made by this context
// are not observed; surfaces that mutate the cart re-mount the badge when
// they next render.
package badge

import (
	"context"
	"log/slog"
	"sync"

	"github.com/go-faster/errors"

	"github.com/dwikikusuma/collegemart/internal/storage"
	"github.com/dwikikusuma/collegemart/pkg/logger"
)

// Counter loads the current cart count.
type Counter interface {
	Count(ctx context.Context) int
}

type Projection struct {
	counter Counter
	feed    storage.ChangeFeed
	key     string
	log     *slog.Logger

	mu     sync.Mutex
	count  int
	nextID int
	subs   map[int]chan int
}

// New builds a projection over the cart slot key. feed may be nil for
// backends that cannot observe other contexts.
func New(counter Counter, feed storage.ChangeFeed, key string, log *slog.Logger) *Projection {
	return &Projection{
		counter: counter,
		feed:    feed,
		key:     key,
		log:     logger.OrDefault(log).With(slog.String("component", "badge")),
		subs:    make(map[int]chan int),
	}
}

// Mount re-derives the count from durable storage.
func (p *Projection) Mount(ctx context.Context) int {
	n := p.counter.Count(ctx)
	p.set(n)
	return n
}

// Count returns the count as of the last mount or notification.
func (p *Projection) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

// Subscribe returns a channel receiving the count whenever it is re-derived.
// Only the latest value is kept for slow receivers.
func (p *Projection) Subscribe() (<-chan int, func()) {
	ch := make(chan int, 1)

	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = ch
	p.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.subs, id)
			p.mu.Unlock()
		})
	}
}

// Run mounts once, then re-derives the count on every change notification
// until ctx is done. Without a feed it only waits for ctx.
func (p *Projection) Run(ctx context.Context) error {
	if p.feed == nil {
		p.Mount(ctx)
		p.log.Debug("backend has no change feed, badge refreshes on mount only")
		<-ctx.Done()
		return nil
	}

	// Watch before the first mount so no foreign write falls in between.
	changes, err := p.feed.Watch(ctx, p.key)
	if err != nil {
		return errors.Wrap(err, "watch cart slot")
	}
	p.Mount(ctx)

	for {
		select {
		case <-ctx.Done():
			// drain so the backend can close the channel
			for range changes {
			}
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			n := p.Mount(ctx)
			p.log.Debug("cart changed in another context", slog.Int("count", n))
		}
	}
}

func (p *Projection) set(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count = n
	for _, ch := range p.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- n:
		default:
		}
	}
}

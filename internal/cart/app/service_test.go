package app_test

import (
	"context"
	"sync"
	"testing"

	"github.com/go-faster/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/dwikikusuma/collegemart/internal/cart/app"
	"github.com/dwikikusuma/collegemart/internal/cart/domain"
	"github.com/dwikikusuma/collegemart/internal/storage/memory"
	"github.com/dwikikusuma/collegemart/pkg/logger"
)

var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

// fakeSlots is an in-memory Slots that can be told to fail writes.
type fakeSlots struct {
	mu        sync.Mutex
	data      map[string][]byte
	failWrite error
	failRead  error
	writes    int
	deletes   int
}

func newFakeSlots() *fakeSlots { return &fakeSlots{data: map[string][]byte{}} }

func (f *fakeSlots) Read(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRead != nil {
		return nil, false, f.failRead
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeSlots) Write(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrite != nil {
		return f.failWrite
	}
	f.writes++
	f.data[key] = append([]byte{}, value...)
	return nil
}

func (f *fakeSlots) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrite != nil {
		return f.failWrite
	}
	f.deletes++
	delete(f.data, key)
	return nil
}

func newStore(slots app.Slots) *app.Store {
	return app.NewStore(slots, "", logger.Discard())
}

func snap(id, name, price string) domain.ProductSnapshot {
	return domain.ProductSnapshot{ID: id, Name: name, Price: decimal.RequireFromString(price)}
}

func TestLoadEmptyWhenSlotAbsent(t *testing.T) {
	s := newStore(newFakeSlots())
	c := s.Load(context.Background())
	assert.True(t, c.IsEmpty())
	assert.Equal(t, 0, s.Count(context.Background()))
}

func TestAddTwiceThenReload(t *testing.T) {
	ctx := context.Background()
	space := memory.NewSpace()
	s := newStore(space.Handle())

	_, err := s.AddOrIncrement(ctx, snap("p1", "Pen", "10"))
	require.NoError(t, err)
	c, err := s.AddOrIncrement(ctx, snap("p1", "Pen", "10"))
	require.NoError(t, err)

	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)
	assert.True(t, s.Total(c).Equal(decimal.NewFromInt(20)))

	// another context sees the same cart
	other := newStore(space.Handle())
	if diff := cmp.Diff(c, other.Load(ctx), decimalEqual); diff != "" {
		t.Fatalf("reloaded cart mismatch (-want +got):\n%s", diff)
	}
}

func TestRemoveAndSetQuantityScenarios(t *testing.T) {
	ctx := context.Background()
	s := newStore(newFakeSlots())
	_, err := s.AddOrIncrement(ctx, snap("p1", "Pen", "10"))
	require.NoError(t, err)
	_, err = s.AddOrIncrement(ctx, snap("p1", "Pen", "10"))
	require.NoError(t, err)
	_, err = s.AddOrIncrement(ctx, snap("p2", "Pad", "5"))
	require.NoError(t, err)

	before := s.Load(ctx)
	c, err := s.SetQuantity(ctx, "p2", 0)
	require.NoError(t, err)
	if diff := cmp.Diff(before, c, decimalEqual); diff != "" {
		t.Fatalf("quantity 0 changed the cart (-want +got):\n%s", diff)
	}

	c, err = s.Remove(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "p2", c.Items[0].ID)
	assert.Equal(t, 1, c.Items[0].Quantity)
	assert.True(t, c.Total().Equal(decimal.NewFromInt(5)))

	again, err := s.Remove(ctx, "p1")
	require.NoError(t, err)
	if diff := cmp.Diff(c, again, decimalEqual); diff != "" {
		t.Fatalf("second remove changed cart (-want +got):\n%s", diff)
	}

	c, err = s.SetQuantity(ctx, "p2", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Items[0].Quantity)
	assert.Equal(t, 3, s.Count(ctx))
}

func TestNoOpsDoNotWrite(t *testing.T) {
	ctx := context.Background()
	slots := newFakeSlots()
	s := newStore(slots)
	_, err := s.AddOrIncrement(ctx, snap("p1", "Pen", "10"))
	require.NoError(t, err)
	require.Equal(t, 1, slots.writes)

	_, err = s.SetQuantity(ctx, "p1", 0)
	require.NoError(t, err)
	_, err = s.SetQuantity(ctx, "missing", 4)
	require.NoError(t, err)
	_, err = s.Remove(ctx, "missing")
	require.NoError(t, err)

	assert.Equal(t, 1, slots.writes)
	assert.Equal(t, 0, slots.deletes)
}

func TestEmptyCartErasesSlot(t *testing.T) {
	ctx := context.Background()

	t.Run("clear", func(t *testing.T) {
		slots := newFakeSlots()
		s := newStore(slots)
		_, err := s.AddOrIncrement(ctx, snap("p1", "Pen", "10"))
		require.NoError(t, err)

		c, err := s.Clear(ctx)
		require.NoError(t, err)
		assert.True(t, c.IsEmpty())
		assert.True(t, s.Total(c).IsZero())
		_, ok, _ := slots.Read(ctx, app.DefaultKey)
		assert.False(t, ok)
	})

	t.Run("remove last item", func(t *testing.T) {
		slots := newFakeSlots()
		s := newStore(slots)
		_, err := s.AddOrIncrement(ctx, snap("p1", "Pen", "10"))
		require.NoError(t, err)

		_, err = s.Remove(ctx, "p1")
		require.NoError(t, err)
		_, ok, _ := slots.Read(ctx, app.DefaultKey)
		assert.False(t, ok)
	})
}

func TestCorruptContentLoadsEmpty(t *testing.T) {
	tests := map[string]string{
		"not json":          `{{{`,
		"object":            `{"id":"p1"}`,
		"string":            `"cart"`,
		"zero quantity":     `[{"id":"p1","name":"Pen","price":10,"quantity":0}]`,
		"duplicate ids":     `[{"id":"p1","price":1,"quantity":1},{"id":"p1","price":1,"quantity":1}]`,
		"missing id":        `[{"name":"Pen","price":1,"quantity":1}]`,
		"negative price":    `[{"id":"p1","price":-1,"quantity":1}]`,
		"fractional amount": `[{"id":"p1","price":1,"quantity":1.5}]`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			slots := newFakeSlots()
			require.NoError(t, slots.Write(ctx, app.DefaultKey, []byte(raw)))
			s := newStore(slots)

			assert.True(t, s.Load(ctx).IsEmpty())

			// the next mutation replaces the corrupt value
			c, err := s.AddOrIncrement(ctx, snap("p9", "Ink", "2"))
			require.NoError(t, err)
			require.Len(t, c.Items, 1)
			assert.Equal(t, 1, c.Items[0].Quantity)
		})
	}
}

func TestDecodeAcceptsQuotedPrice(t *testing.T) {
	c, err := app.DecodeCart([]byte(`[{"id":"p1","name":"Pen","price":"12.50","image":"x.png","quantity":2}]`))
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.True(t, c.Items[0].Price.Equal(decimal.RequireFromString("12.5")))

	c, err = app.DecodeCart([]byte(`null`))
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestRoundTrip(t *testing.T) {
	want := domain.Cart{Items: []domain.LineItem{
		{ID: "b", Name: "Book", Price: decimal.RequireFromString("199.99"), Description: "used", Image: "https://img/b.png", Quantity: 3},
		{ID: "a", Name: "Lamp", Price: decimal.Zero, Image: "https://via.placeholder.com/80", Quantity: 1},
	}}
	b, err := app.EncodeCart(want)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"id":"b","name":"Book","price":199.99,"description":"used","image":"https://img/b.png","quantity":3},
		{"id":"a","name":"Lamp","price":0,"description":"","image":"https://via.placeholder.com/80","quantity":1}
	]`, string(b))

	got, err := app.DecodeCart(b)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got, decimalEqual); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteFailureIsReportedNotFatal(t *testing.T) {
	ctx := context.Background()
	slots := newFakeSlots()
	s := newStore(slots)
	_, err := s.AddOrIncrement(ctx, snap("p1", "Pen", "10"))
	require.NoError(t, err)

	quota := errors.New("quota exceeded")
	slots.failWrite = quota

	c, err := s.AddOrIncrement(ctx, snap("p1", "Pen", "10"))
	require.Error(t, err)
	assert.ErrorIs(t, err, app.ErrNotPersisted)
	assert.ErrorIs(t, err, quota)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity, "caller keeps the updated in-memory cart")

	// durable state still holds the last successful write
	assert.Equal(t, 1, s.Load(ctx).Items[0].Quantity)

	_, err = s.Clear(ctx)
	assert.ErrorIs(t, err, app.ErrNotPersisted)
}

func TestReadFailureAbortsMutation(t *testing.T) {
	ctx := context.Background()
	slots := newFakeSlots()
	s := newStore(slots)
	for _, id := range []string{"a", "b", "c"} {
		_, err := s.AddOrIncrement(ctx, snap(id, "Item "+id, "1"))
		require.NoError(t, err)
	}
	writes := slots.writes

	eio := errors.New("transient EIO")
	slots.failRead = eio
	_, err := s.AddOrIncrement(ctx, snap("d", "Item d", "1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, eio)
	assert.NotErrorIs(t, err, app.ErrNotPersisted)
	_, err = s.Remove(ctx, "a")
	assert.ErrorIs(t, err, eio)
	_, err = s.Clear(ctx)
	assert.ErrorIs(t, err, eio)
	assert.Equal(t, writes, slots.writes)
	assert.Equal(t, 0, slots.deletes)

	// Load still degrades to empty for display
	assert.True(t, s.Load(ctx).IsEmpty())

	slots.failRead = nil
	c := s.Load(ctx)
	require.Len(t, c.Items, 3)
	_, err = s.AddOrIncrement(ctx, snap("d", "Item d", "1"))
	require.NoError(t, err)
	assert.Equal(t, 4, s.Load(ctx).Len())
}

func TestIDsAreTrimmedForEveryOperation(t *testing.T) {
	ctx := context.Background()
	s := newStore(newFakeSlots())

	_, err := s.AddOrIncrement(ctx, snap(" p1 ", "Pen", "10"))
	require.NoError(t, err)
	_, ok := s.Load(ctx).Find("p1")
	require.True(t, ok)

	c, err := s.SetQuantity(ctx, " p1", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Count())

	c, err = s.Remove(ctx, "p1 ")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestAddRejectsInvalidSnapshot(t *testing.T) {
	ctx := context.Background()
	slots := newFakeSlots()
	s := newStore(slots)

	_, err := s.AddOrIncrement(ctx, snap("  ", "Pen", "1"))
	assert.ErrorIs(t, err, app.ErrInvalidInput)
	_, err = s.AddOrIncrement(ctx, snap("p1", "Pen", "-1"))
	assert.ErrorIs(t, err, app.ErrInvalidInput)
	assert.Equal(t, 0, slots.writes)
}

func TestConcurrentAddOrIncrement(t *testing.T) {
	ctx := context.Background()
	s := newStore(memory.NewSpace().Handle())

	const N = 100
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < N; i++ {
		g.Go(func() error {
			_, err := s.AddOrIncrement(gctx, snap("p1", "Pen", "1"))
			return err
		})
	}
	require.NoError(t, g.Wait())

	c := s.Load(ctx)
	require.Len(t, c.Items, 1)
	assert.Equal(t, N, c.Items[0].Quantity)
}

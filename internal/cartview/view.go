// Package cartview is the full cart page: it owns a copy of the cart for the
// lifetime of one mount, mutates through the cart store and recomputes the
// order summary after each of its own changes.
package cartview

import (
	"context"
	"log/slog"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	cartapp "github.com/dwikikusuma/collegemart/internal/cart/app"
	"github.com/dwikikusuma/collegemart/internal/cart/domain"
	checkoutapp "github.com/dwikikusuma/collegemart/internal/checkout/app"
	checkoutdomain "github.com/dwikikusuma/collegemart/internal/checkout/domain"
	"github.com/dwikikusuma/collegemart/pkg/logger"
)

const (
	CatalogURL        = "/products"
	MsgEmpty          = "Your cart is empty"
	MsgNotPersisted   = "Your change may not survive a reload"
	MsgUpdateFailed   = "Could not update your cart, please try again"
	MsgLoginRequired  = "Please login to checkout"
	MsgComingSoon     = "Checkout functionality coming soon!"
	MsgCheckoutFailed = "Checkout failed, please try again"
)

type Store interface {
	Load(ctx context.Context) domain.Cart
	SetQuantity(ctx context.Context, id string, q int) (domain.Cart, error)
	Remove(ctx context.Context, id string) (domain.Cart, error)
	Clear(ctx context.Context) (domain.Cart, error)
	Total(c domain.Cart) decimal.Decimal
}

type Checkout interface {
	Checkout(ctx context.Context) (checkoutdomain.Quote, error)
}

type Line struct {
	domain.LineItem
	LineTotal decimal.Decimal
}

// Model is everything a renderer needs for one cart page.
type Model struct {
	Empty      bool
	CatalogURL string
	Items      []Line
	Distinct   int
	Count      int
	Subtotal   decimal.Decimal
	Shipping   decimal.Decimal
	Total      decimal.Decimal
	Notice     string
	Warning    string
}

type View struct {
	store    Store
	checkout Checkout
	shipping decimal.Decimal
	log      *slog.Logger

	cart domain.Cart
}

func New(store Store, checkout Checkout, shipping decimal.Decimal, log *slog.Logger) *View {
	return &View{
		store:    store,
		checkout: checkout,
		shipping: shipping,
		log:      logger.OrDefault(log).With(slog.String("component", "cart_view")),
	}
}

// Mount loads the cart from durable storage.
func (v *View) Mount(ctx context.Context) Model {
	v.cart = v.store.Load(ctx)
	return v.model()
}

func (v *View) Increment(ctx context.Context, id string) Model {
	it, ok := v.cart.Find(id)
	if !ok {
		return v.model()
	}
	return v.SetQuantity(ctx, id, it.Quantity+1)
}

// Decrement stops at one; removing an item is a separate action.
func (v *View) Decrement(ctx context.Context, id string) Model {
	it, ok := v.cart.Find(id)
	if !ok {
		return v.model()
	}
	return v.SetQuantity(ctx, id, it.Quantity-1)
}

func (v *View) SetQuantity(ctx context.Context, id string, q int) Model {
	if q < 1 {
		return v.model()
	}
	return v.apply("set_quantity", func() (domain.Cart, error) {
		return v.store.SetQuantity(ctx, id, q)
	})
}

func (v *View) Remove(ctx context.Context, id string) Model {
	return v.apply("remove", func() (domain.Cart, error) {
		return v.store.Remove(ctx, id)
	})
}

func (v *View) Clear(ctx context.Context) Model {
	return v.apply("clear", func() (domain.Cart, error) {
		return v.store.Clear(ctx)
	})
}

// Checkout never touches the cart. The returned error is the checkout
// outcome; the model carries the matching message.
func (v *View) Checkout(ctx context.Context) (Model, error) {
	_, err := v.checkout.Checkout(ctx)
	m := v.model()
	switch {
	case err == nil:
	case errors.Is(err, checkoutapp.ErrLoginRequired):
		m.Warning = MsgLoginRequired
	case errors.Is(err, checkoutapp.ErrCheckoutUnavailable):
		m.Notice = MsgComingSoon
	case errors.Is(err, checkoutapp.ErrEmptyCart):
		m.Notice = MsgEmpty
	default:
		v.log.Warn("checkout", slog.Any("err", err))
		m.Warning = MsgCheckoutFailed
	}
	return m, err
}

func (v *View) apply(op string, fn func() (domain.Cart, error)) Model {
	next, err := fn()
	switch {
	case err == nil:
		v.cart = next
		return v.model()
	case errors.Is(err, cartapp.ErrNotPersisted):
		v.cart = next
		m := v.model()
		m.Warning = MsgNotPersisted
		return m
	default:
		v.log.Warn("cart update failed", slog.String("op", op), slog.Any("err", err))
		m := v.model()
		m.Warning = MsgUpdateFailed
		return m
	}
}

func (v *View) model() Model {
	m := Model{
		Empty:      v.cart.IsEmpty(),
		CatalogURL: CatalogURL,
		Distinct:   v.cart.Len(),
		Count:      v.cart.Count(),
		Subtotal:   v.store.Total(v.cart),
	}
	if m.Empty {
		m.Total = decimal.Zero
		return m
	}
	m.Items = make([]Line, 0, len(v.cart.Items))
	for _, it := range v.cart.Items {
		m.Items = append(m.Items, Line{LineItem: it, LineTotal: it.Subtotal()})
	}
	m.Shipping = v.shipping
	m.Total = m.Subtotal.Add(m.Shipping)
	return m
}

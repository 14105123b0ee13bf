// Package bridge adds catalog products to the cart from product surfaces.
package bridge

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-faster/errors"

	cartapp "github.com/dwikikusuma/collegemart/internal/cart/app"
	cartdomain "github.com/dwikikusuma/collegemart/internal/cart/domain"
	catalogapp "github.com/dwikikusuma/collegemart/internal/catalog/app"
	catalogdomain "github.com/dwikikusuma/collegemart/internal/catalog/domain"
	"github.com/dwikikusuma/collegemart/pkg/logger"
)

// DefaultPlaceholder is used as the line item image for products without one.
const DefaultPlaceholder = "https://via.placeholder.com/80"

const (
	MsgAdded        = "Product added to cart!"
	MsgNotPersisted = "Your change may not survive a reload"
	MsgNotFound     = "Product not found"
	MsgUnavailable  = "Could not reach the catalog, please try again"
	MsgFailed       = "Could not add product to cart"
)

// Feedback is transient UI feedback for an add. OK with a Warning means the
// cart changed in memory but could not be saved.
type Feedback struct {
	OK      bool
	Message string
	Warning string
	Count   int
}

type Cart interface {
	AddOrIncrement(ctx context.Context, p cartdomain.ProductSnapshot) (cartdomain.Cart, error)
}

type Catalog interface {
	GetProduct(ctx context.Context, id string) (catalogdomain.Product, error)
}

type Bridge struct {
	cart        Cart
	catalog     Catalog
	placeholder string
	log         *slog.Logger
}

func New(cart Cart, catalog Catalog, placeholder string, log *slog.Logger) *Bridge {
	if strings.TrimSpace(placeholder) == "" {
		placeholder = DefaultPlaceholder
	}
	return &Bridge{
		cart:        cart,
		catalog:     catalog,
		placeholder: placeholder,
		log:         logger.OrDefault(log).With(slog.String("component", "bridge")),
	}
}

// Snapshot captures what the cart keeps about p: the first image if there is
// one, otherwise the placeholder.
func (b *Bridge) Snapshot(p catalogdomain.Product) cartdomain.ProductSnapshot {
	image := b.placeholder
	if img, ok := p.Images.First(); ok {
		image = img.URL
	}
	return cartdomain.ProductSnapshot{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
		Image:       image,
	}
}

// AddToCart merges p into the cart. It never returns an error; failures are
// reported through Feedback.
func (b *Bridge) AddToCart(ctx context.Context, p catalogdomain.Product) Feedback {
	c, err := b.cart.AddOrIncrement(ctx, b.Snapshot(p))
	switch {
	case err == nil:
		return Feedback{OK: true, Message: MsgAdded, Count: c.Count()}
	case errors.Is(err, cartapp.ErrNotPersisted):
		return Feedback{OK: true, Message: MsgAdded, Warning: MsgNotPersisted, Count: c.Count()}
	default:
		b.log.Warn("add to cart", slog.String("product_id", p.ID), slog.Any("err", err))
		return Feedback{Message: MsgFailed}
	}
}

// AddByID looks the product up in the catalog first.
func (b *Bridge) AddByID(ctx context.Context, id string) Feedback {
	p, err := b.catalog.GetProduct(ctx, id)
	switch {
	case err == nil:
		return b.AddToCart(ctx, p)
	case errors.Is(err, catalogapp.ErrNotFound), errors.Is(err, catalogapp.ErrInvalidInput):
		return Feedback{Message: MsgNotFound}
	case errors.Is(err, catalogapp.ErrUnavailable):
		b.log.Warn("catalog unavailable", slog.String("product_id", id), slog.Any("err", err))
		return Feedback{Message: MsgUnavailable}
	default:
		b.log.Warn("get product", slog.String("product_id", id), slog.Any("err", err))
		return Feedback{Message: MsgFailed}
	}
}

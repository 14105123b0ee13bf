package app

import (
	"context"
	"log/slog"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/dwikikusuma/collegemart/internal/checkout/domain"
	"github.com/dwikikusuma/collegemart/pkg/logger"
)

type CartReader interface {
	GetCart(ctx context.Context) ([]CartItem, error)
}

type CartItem struct {
	ProductID string
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

// IdentityReader reports whether a user is signed in.
type IdentityReader interface {
	CurrentUserID(ctx context.Context) (string, bool)
}

var (
	ErrEmptyCart = errors.New("cart is empty")
	// ErrLoginRequired is returned before anything else when nobody is signed in.
	ErrLoginRequired = errors.New("login required")
	// ErrCheckoutUnavailable is the checkout stub's answer for signed-in users.
	ErrCheckoutUnavailable = errors.New("checkout not available yet")
)

type Service struct {
	Cart     CartReader
	Identity IdentityReader

	shipping decimal.Decimal
	log      *slog.Logger
}

func NewService(cart CartReader, identity IdentityReader, shipping decimal.Decimal, log *slog.Logger) *Service {
	if shipping.IsNegative() {
		shipping = decimal.Zero
	}
	return &Service{
		Cart:     cart,
		Identity: identity,
		shipping: shipping,
		log:      logger.OrDefault(log).With(slog.String("component", "checkout")),
	}
}

func (s *Service) Quote(ctx context.Context) (domain.Quote, error) {
	items, err := s.Cart.GetCart(ctx)
	if err != nil {
		return domain.Quote{}, err
	}

	if len(items) == 0 {
		return domain.Quote{}, ErrEmptyCart
	}

	lines := make([]domain.QuoteLine, 0, len(items))
	subtotal := decimal.Zero
	for _, it := range items {
		if it.Quantity <= 0 {
			return domain.Quote{}, errors.Errorf("quantity must be greater than zero: %d", it.Quantity)
		}
		lineTotal := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		lines = append(lines, domain.QuoteLine{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LineTotal: lineTotal,
		})
		subtotal = subtotal.Add(lineTotal)
	}

	return domain.Quote{
		Lines:    lines,
		Subtotal: subtotal,
		Shipping: s.shipping,
		Total:    subtotal.Add(s.shipping),
	}, nil
}

// Checkout never modifies the cart. Without a signed-in user it fails with
// ErrLoginRequired; otherwise it quotes the cart and reports
// ErrCheckoutUnavailable, since orders are not placed yet.
func (s *Service) Checkout(ctx context.Context) (domain.Quote, error) {
	userID, ok := s.Identity.CurrentUserID(ctx)
	if !ok {
		return domain.Quote{}, ErrLoginRequired
	}

	q, err := s.Quote(ctx)
	if err != nil {
		return domain.Quote{}, err
	}
	s.log.Info("checkout requested",
		slog.String("user_id", userID),
		slog.Int("lines", len(q.Lines)),
		slog.String("total", q.Total.String()),
	)
	return q, ErrCheckoutUnavailable
}

package app

import (
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/dwikikusuma/collegemart/internal/cart/domain"
)

// record is the durable shape of one line item.
type record struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Quantity    int             `json:"quantity"`
}

// wireRecord is used for encoding so the price is written as a JSON number.
type wireRecord struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Price       json.Number `json:"price"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	Quantity    int         `json:"quantity"`
}

// EncodeCart serialises the cart as a JSON array of line items.
func EncodeCart(c domain.Cart) ([]byte, error) {
	out := make([]wireRecord, 0, len(c.Items))
	for _, it := range c.Items {
		out = append(out, wireRecord{
			ID:          it.ID,
			Name:        it.Name,
			Price:       json.Number(it.Price.String()),
			Description: it.Description,
			Image:       it.Image,
			Quantity:    it.Quantity,
		})
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, errors.Wrap(err, "encode cart")
	}
	return b, nil
}

// DecodeCart parses a stored cart. Anything that is not an array of valid
// line items is an error; the caller treats that as an empty cart.
func DecodeCart(b []byte) (domain.Cart, error) {
	var recs []record
	if err := json.Unmarshal(b, &recs); err != nil {
		return domain.Cart{}, errors.Wrap(err, "decode cart")
	}
	if len(recs) == 0 {
		return domain.Cart{}, nil
	}

	items := make([]domain.LineItem, 0, len(recs))
	for _, r := range recs {
		items = append(items, domain.LineItem{
			ID:          r.ID,
			Name:        r.Name,
			Price:       r.Price,
			Description: r.Description,
			Image:       r.Image,
			Quantity:    r.Quantity,
		})
	}
	c := domain.Cart{Items: items}
	if err := c.Validate(); err != nil {
		return domain.Cart{}, errors.Wrap(err, "decode cart")
	}
	return c, nil
}

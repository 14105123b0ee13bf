package domain

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// LineItem is one product in the cart. Name, price, description and image
// are captured when the product is added and never refreshed from the catalog.
type LineItem struct {
	ID          string
	Name        string
	Price       decimal.Decimal
	Description string
	Image       string
	Quantity    int
}

// Subtotal is price times quantity.
func (it LineItem) Subtotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// ProductSnapshot is what the cart records about a product at add time.
type ProductSnapshot struct {
	ID          string
	Name        string
	Price       decimal.Decimal
	Description string
	Image       string
}

// Cart is an ordered list of line items, unique by ID.
//
// Methods never modify the receiver; mutations return a new Cart that shares
// no backing array with the original.
type Cart struct {
	Items []LineItem
}

func (c Cart) Len() int { return len(c.Items) }

func (c Cart) IsEmpty() bool { return len(c.Items) == 0 }

func (c Cart) clone() []LineItem {
	if len(c.Items) == 0 {
		return nil
	}
	out := make([]LineItem, len(c.Items))
	copy(out, c.Items)
	return out
}

func (c Cart) index(id string) int {
	for i, it := range c.Items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// Find returns the line item with the given id.
func (c Cart) Find(id string) (LineItem, bool) {
	if i := c.index(id); i >= 0 {
		return c.Items[i], true
	}
	return LineItem{}, false
}

// AddOrIncrement bumps the quantity of an existing entry by one, or appends
// the snapshot as a new entry with quantity 1.
func (c Cart) AddOrIncrement(p ProductSnapshot) Cart {
	items := c.clone()
	if i := c.index(p.ID); i >= 0 {
		items[i].Quantity++
		return Cart{Items: items}
	}
	items = append(items, LineItem{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
		Image:       p.Image,
		Quantity:    1,
	})
	return Cart{Items: items}
}

// SetQuantity replaces the quantity of id. The second result is false, and
// the cart is returned unchanged, when q < 1 or id is not in the cart.
func (c Cart) SetQuantity(id string, q int) (Cart, bool) {
	if q < 1 {
		return c, false
	}
	i := c.index(id)
	if i < 0 {
		return c, false
	}
	if c.Items[i].Quantity == q {
		return c, false
	}
	items := c.clone()
	items[i].Quantity = q
	return Cart{Items: items}, true
}

// Remove drops id from the cart. The second result reports whether anything changed.
func (c Cart) Remove(id string) (Cart, bool) {
	i := c.index(id)
	if i < 0 {
		return c, false
	}
	items := make([]LineItem, 0, len(c.Items)-1)
	items = append(items, c.Items[:i]...)
	items = append(items, c.Items[i+1:]...)
	if len(items) == 0 {
		items = nil
	}
	return Cart{Items: items}, true
}

// Total is the exact sum of price times quantity over all entries.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// Count is the sum of quantities, shown on the cart badge.
func (c Cart) Count() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// Validate checks the cart invariants.
func (c Cart) Validate() error {
	seen := make(map[string]struct{}, len(c.Items))
	for i, it := range c.Items {
		if it.ID == "" {
			return errors.Errorf("item %d: empty id", i)
		}
		if _, dup := seen[it.ID]; dup {
			return errors.Errorf("item %d: duplicate id %q", i, it.ID)
		}
		seen[it.ID] = struct{}{}
		if it.Quantity < 1 {
			return errors.Errorf("item %q: quantity %d < 1", it.ID, it.Quantity)
		}
		if it.Price.IsNegative() {
			return errors.Errorf("item %q: negative price %s", it.ID, it.Price)
		}
	}
	return nil
}

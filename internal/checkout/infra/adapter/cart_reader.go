package adapter

import (
	"context"

	cartapp "github.com/dwikikusuma/collegemart/internal/cart/app"
	checkoutapp "github.com/dwikikusuma/collegemart/internal/checkout/app"
)

type CartStoreReader struct {
	store *cartapp.Store
}

func NewCartStoreReader(store *cartapp.Store) *CartStoreReader {
	return &CartStoreReader{store: store}
}

func (r *CartStoreReader) GetCart(ctx context.Context) ([]checkoutapp.CartItem, error) {
	cart := r.store.Load(ctx)

	items := make([]checkoutapp.CartItem, 0, len(cart.Items))
	for _, it := range cart.Items {
		items = append(items, checkoutapp.CartItem{
			ProductID: it.ID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.Price,
		})
	}
	return items, nil
}

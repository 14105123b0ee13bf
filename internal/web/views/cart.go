package views

import (
	"context"
	"io"
	"net/url"

	"github.com/a-h/templ"

	"github.com/dwikikusuma/collegemart/internal/cartview"
	"github.com/dwikikusuma/collegemart/pkg/money"
)

// Cart renders the cart page for a mounted cart view model.
func Cart(m cartview.Model, f money.Formatter) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		ew := &errWriter{w: w}
		if m.Empty {
			ew.printf(`<section class="cart-empty"><h1>%s</h1><a class="cta" href="%s">Continue Shopping</a></section>`,
				esc(cartview.MsgEmpty), esc(string(templ.URL(m.CatalogURL))))
			return ew.err
		}

		ew.printf(`<section class="cart"><h1>Shopping Cart (%s items)</h1><ul class="cart-items">`, itoa(m.Distinct))
		for _, it := range m.Items {
			action := "/cart/items/" + url.PathEscape(it.ID)
			ew.printf(`<li class="cart-item" id="item-%s">`, esc(it.ID))
			ew.printf(`<img src="%s" alt="%s">`, esc(string(templ.URL(it.Image))), esc(it.Name))
			ew.printf(`<div class="details"><h2>%s</h2>`, esc(it.Name))
			if it.Description != "" {
				ew.printf(`<p>%s</p>`, esc(it.Description))
			}
			ew.printf(`<p class="price">%s</p></div>`, esc(f.Format(it.Price)))

			ew.write(`<div class="quantity">`)
			ew.printf(`<form method="post" action="%s/decrement"><button type="submit" aria-label="Decrease quantity">-</button></form>`, esc(action))
			ew.printf(`<form method="post" action="%s/quantity"><input type="number" name="quantity" min="1" value="%s"><button type="submit">Update</button></form>`, esc(action), itoa(it.Quantity))
			ew.printf(`<form method="post" action="%s/increment"><button type="submit" aria-label="Increase quantity">+</button></form>`, esc(action))
			ew.write(`</div>`)

			ew.printf(`<p class="line-total">%s</p>`, esc(f.Format(it.LineTotal)))
			ew.printf(`<form method="post" action="%s/remove"><button type="submit" class="remove">Remove</button></form>`, esc(action))
			ew.write(`</li>`)
		}
		ew.write(`</ul><form method="post" action="/cart/clear"><button type="submit" class="clear">Clear Cart</button></form></section>`)

		ew.write(`<aside class="summary"><h2>Order Summary</h2>`)
		ew.printf(`<p><span>Subtotal:</span> <span id="subtotal">%s</span></p>`, esc(f.Format(m.Subtotal)))
		ew.printf(`<p><span>Shipping:</span> <span id="shipping">%s</span></p>`, esc(f.FormatOrFree(m.Shipping)))
		ew.printf(`<p class="total"><span>Total:</span> <span id="total">%s</span></p>`, esc(f.Format(m.Total)))
		ew.write(`<form method="post" action="/cart/checkout"><button type="submit" class="checkout">Proceed to Checkout</button></form>`)
		ew.write(`<p class="secure">Secure checkout powered by College Mart</p></aside>`)
		return ew.err
	})
}

package views

import (
	"context"
	"io"
	"net/url"

	"github.com/a-h/templ"

	catalogdomain "github.com/dwikikusuma/collegemart/internal/catalog/domain"
	"github.com/dwikikusuma/collegemart/pkg/money"
)

type ProductsPage struct {
	Products    []catalogdomain.Product
	Query       string
	NextCursor  string
	Placeholder string
	Money       money.Formatter
}

// Products lists the catalog. Each card posts to the add-to-cart endpoint and
// comes back to the same listing.
func Products(p ProductsPage) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		ew := &errWriter{w: w}
		ew.printf(`<form class="search" method="get" action="/products"><input type="search" name="q" value="%s" placeholder="Search products"><button type="submit">Search</button></form>`, esc(p.Query))

		if len(p.Products) == 0 {
			ew.write(`<p class="empty">No products found.</p>`)
			return ew.err
		}

		ew.write(`<ul class="products">`)
		for _, prod := range p.Products {
			image := p.Placeholder
			if img, ok := prod.Images.First(); ok {
				image = img.URL
			}
			ew.printf(`<li class="product-card" id="product-%s">`, esc(prod.ID))
			ew.printf(`<img src="%s" alt="%s">`, esc(string(templ.URL(image))), esc(prod.Name))
			ew.printf(`<h2>%s</h2><p class="price">%s</p>`, esc(prod.Name), esc(p.Money.Format(prod.Price)))
			if prod.Description != "" {
				ew.printf(`<p class="description">%s</p>`, esc(prod.Description))
			}
			if prod.Tag != "" {
				ew.printf(`<p class="tag">Category: %s</p>`, esc(prod.Tag))
			}
			if prod.Seller.Name != "" {
				ew.printf(`<p class="seller">Seller: %s</p>`, esc(prod.Seller.Name))
			}
			ew.printf(`<form method="post" action="/products/%s/cart"><button type="submit">Add to Cart</button></form>`, esc(url.PathEscape(prod.ID)))
			ew.write(`</li>`)
		}
		ew.write(`</ul>`)

		if p.NextCursor != "" {
			q := url.Values{"cursor": {p.NextCursor}}
			if p.Query != "" {
				q.Set("q", p.Query)
			}
			ew.printf(`<a class="next" href="/products?%s">Next page</a>`, esc(q.Encode()))
		}
		return ew.err
	})
}

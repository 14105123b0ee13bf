package views

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	cartdomain "github.com/dwikikusuma/collegemart/internal/cart/domain"
	"github.com/dwikikusuma/collegemart/internal/cartview"
	catalogdomain "github.com/dwikikusuma/collegemart/internal/catalog/domain"
	"github.com/dwikikusuma/collegemart/pkg/money"
)

var inr = money.NewFormatter("₹", language.English)

func TestLayoutEscapesAndShowsBadge(t *testing.T) {
	var b strings.Builder
	page := Page{Title: "<Cart>", BadgeCount: 3, Warning: "Your change may not survive a reload"}
	err := Layout(page, Cart(cartview.Model{Empty: true, CatalogURL: "/products"}, inr)).Render(context.Background(), &b)
	require.NoError(t, err)

	got := b.String()
	assert.Contains(t, got, `&lt;Cart&gt; | College Mart`)
	assert.Contains(t, got, `data-count="3">3</span>`)
	assert.Contains(t, got, `role="alert">Your change may not survive a reload`)
	assert.Contains(t, got, `/badge/events`)
}

func TestCartEmptyState(t *testing.T) {
	var b strings.Builder
	err := Cart(cartview.Model{Empty: true, CatalogURL: "/products"}, inr).Render(context.Background(), &b)
	require.NoError(t, err)
	assert.Contains(t, b.String(), "Your cart is empty")
	assert.Contains(t, b.String(), `href="/products"`)
	assert.NotContains(t, b.String(), "Order Summary")
}

func TestCartItemsAndSummary(t *testing.T) {
	m := cartview.Model{
		CatalogURL: "/products",
		Distinct:   1,
		Items: []cartview.Line{{
			LineItem: cartdomain.LineItem{
				ID: "p 1", Name: "Pen & Ink", Price: decimal.NewFromInt(1250), Image: "javascript:alert(1)", Quantity: 2,
			},
			LineTotal: decimal.NewFromInt(2500),
		}},
		Subtotal: decimal.NewFromInt(2500),
		Shipping: decimal.Zero,
		Total:    decimal.NewFromInt(2500),
	}

	var b strings.Builder
	require.NoError(t, Cart(m, inr).Render(context.Background(), &b))
	got := b.String()

	assert.Contains(t, got, "Pen &amp; Ink")
	assert.Contains(t, got, `action="/cart/items/p%201/increment"`)
	assert.Contains(t, got, `value="2"`)
	assert.Contains(t, got, `<span id="subtotal">₹2,500.00</span>`)
	assert.Contains(t, got, `<span id="shipping">Free</span>`)
	assert.NotContains(t, got, "javascript:")
}

func TestProductsPage(t *testing.T) {
	var b strings.Builder
	err := Products(ProductsPage{
		Products: []catalogdomain.Product{
			{ID: "c1", Name: "Calculator", Price: decimal.NewFromInt(450)},
			{ID: "b1", Name: "Book", Price: decimal.NewFromInt(99), Images: catalogdomain.Images{{URL: "https://img/b.png"}}},
		},
		Query:       "calc",
		NextCursor:  "n2",
		Placeholder: "https://via.placeholder.com/80",
		Money:       inr,
	}).Render(context.Background(), &b)
	require.NoError(t, err)
	got := b.String()

	assert.Contains(t, got, `action="/products/c1/cart"`)
	assert.Contains(t, got, `src="https://via.placeholder.com/80"`)
	assert.Contains(t, got, `src="https://img/b.png"`)
	assert.Contains(t, got, `₹450.00`)
	assert.Contains(t, got, `value="calc"`)
	assert.Contains(t, got, `cursor=n2`)
}

func TestProductsEmpty(t *testing.T) {
	var b strings.Builder
	require.NoError(t, Products(ProductsPage{Money: inr}).Render(context.Background(), &b))
	assert.Contains(t, b.String(), "No products found.")
}

// Package web serves the marketplace UI: the catalog with add-to-cart, the
// cart page, and a badge event stream.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"

	authdomain "github.com/dwikikusuma/collegemart/internal/auth/domain"
	"github.com/dwikikusuma/collegemart/internal/badge"
	"github.com/dwikikusuma/collegemart/internal/bridge"
	cartdomain "github.com/dwikikusuma/collegemart/internal/cart/domain"
	"github.com/dwikikusuma/collegemart/internal/cartview"
	catalogdomain "github.com/dwikikusuma/collegemart/internal/catalog/domain"
	"github.com/dwikikusuma/collegemart/pkg/logger"
	"github.com/dwikikusuma/collegemart/pkg/money"
)

// CartStore is the cart store as used by the pages.
type CartStore interface {
	cartview.Store
	Count(ctx context.Context) int
}

type Catalog interface {
	ListProducts(ctx context.Context, query string, limit int, cursor string) ([]catalogdomain.Product, string, error)
}

type Adder interface {
	AddByID(ctx context.Context, id string) bridge.Feedback
}

type Identity interface {
	CurrentUser(ctx context.Context) (authdomain.User, bool)
}

type Deps struct {
	Cart        CartStore
	Badge       *badge.Projection
	Bridge      Adder
	Catalog     Catalog
	Checkout    cartview.Checkout
	Identity    Identity
	Shipping    decimal.Decimal
	Placeholder string
	Money       money.Formatter
	Logger      *slog.Logger
}

type Server struct {
	Deps
	log *slog.Logger
}

func NewServer(d Deps) *Server {
	log := logger.OrDefault(d.Logger)
	if d.Placeholder == "" {
		d.Placeholder = bridge.DefaultPlaceholder
	}
	return &Server{Deps: d, log: log}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(WithRequestID)
	r.Use(WithLogging(s.log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/products", http.StatusFound)
	})
	r.Get("/products", s.handleProducts)
	r.Post("/products/{id}/cart", s.handleAddToCart)

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", s.handleCart)
		r.Post("/items/{id}/{action}", s.handleCartItem)
		r.Post("/clear", s.handleClear)
		r.Post("/checkout", s.handleCheckout)
	})

	r.Get("/api/cart", s.handleAPICart)
	r.Get("/api/badge", s.handleAPIBadge)
	r.Get("/badge/events", s.handleBadgeEvents)
	return r
}

// redirectWithFlash answers a form post with 303 See Other, carrying the
// outcome in notice and warning query parameters.
func redirectWithFlash(w http.ResponseWriter, r *http.Request, target, notice, warning string) {
	u, err := url.Parse(target)
	if err != nil || u.IsAbs() || u.Host != "" {
		u = &url.URL{Path: "/products"}
	}
	q := u.Query()
	q.Del("notice")
	q.Del("warning")
	if notice != "" {
		q.Set("notice", notice)
	}
	if warning != "" {
		q.Set("warning", warning)
	}
	u.RawQuery = q.Encode()
	http.Redirect(w, r, u.String(), http.StatusSeeOther)
}

// backTo returns the same-origin page a form was posted from, or fallback.
func backTo(r *http.Request, fallback string) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Path == "" {
		return fallback
	}
	if ref.Host != "" && ref.Host != r.Host {
		return fallback
	}
	return (&url.URL{Path: ref.Path, RawQuery: ref.RawQuery}).String()
}

func wantsJSON(r *http.Request) bool {
	return r.Header.Get("Accept") == "application/json"
}

type lineJSON struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Quantity    int    `json:"quantity"`
	LineTotal   string `json:"lineTotal"`
}

type cartJSON struct {
	Items    []lineJSON `json:"items"`
	Count    int        `json:"count"`
	Distinct int        `json:"distinct"`
	Subtotal string     `json:"subtotal"`
	Shipping string     `json:"shipping"`
	Total    string     `json:"total"`
	Notice   string     `json:"notice,omitempty"`
	Warning  string     `json:"warning,omitempty"`
}

func toCartJSON(m cartview.Model) cartJSON {
	out := cartJSON{
		Items:    make([]lineJSON, 0, len(m.Items)),
		Count:    m.Count,
		Distinct: m.Distinct,
		Subtotal: m.Subtotal.String(),
		Shipping: m.Shipping.String(),
		Total:    m.Total.String(),
		Notice:   m.Notice,
		Warning:  m.Warning,
	}
	for _, it := range m.Items {
		out.Items = append(out.Items, lineFromItem(it.LineItem, it.LineTotal))
	}
	return out
}

func lineFromItem(it cartdomain.LineItem, total decimal.Decimal) lineJSON {
	return lineJSON{
		ID:          it.ID,
		Name:        it.Name,
		Price:       it.Price.String(),
		Description: it.Description,
		Image:       it.Image,
		Quantity:    it.Quantity,
		LineTotal:   total.String(),
	}
}

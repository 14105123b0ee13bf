package web

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	authdomain "github.com/dwikikusuma/collegemart/internal/auth/domain"
	"github.com/dwikikusuma/collegemart/internal/badge"
	"github.com/dwikikusuma/collegemart/internal/bridge"
	cartapp "github.com/dwikikusuma/collegemart/internal/cart/app"
	cartdomain "github.com/dwikikusuma/collegemart/internal/cart/domain"
	catalogapp "github.com/dwikikusuma/collegemart/internal/catalog/app"
	catalogdomain "github.com/dwikikusuma/collegemart/internal/catalog/domain"
	checkoutapp "github.com/dwikikusuma/collegemart/internal/checkout/app"
	"github.com/dwikikusuma/collegemart/internal/checkout/infra/adapter"
	"github.com/dwikikusuma/collegemart/internal/storage/memory"
	"github.com/dwikikusuma/collegemart/pkg/logger"
	"github.com/dwikikusuma/collegemart/pkg/money"
)

type fakeCatalog struct{ products []catalogdomain.Product }

func (f fakeCatalog) GetProduct(_ context.Context, id string) (catalogdomain.Product, error) {
	for _, p := range f.products {
		if p.ID == id {
			return p, nil
		}
	}
	return catalogdomain.Product{}, catalogapp.ErrNotFound
}

func (f fakeCatalog) ListProducts(_ context.Context, query string, _ int, _ string) ([]catalogdomain.Product, string, error) {
	var out []catalogdomain.Product
	for _, p := range f.products {
		if query == "" || strings.Contains(strings.ToLower(p.Name), strings.ToLower(query)) {
			out = append(out, p)
		}
	}
	return out, "", nil
}

type fakeIdentity struct{ user *authdomain.User }

func (f fakeIdentity) CurrentUser(context.Context) (authdomain.User, bool) {
	if f.user == nil {
		return authdomain.User{}, false
	}
	return *f.user, true
}

func (f fakeIdentity) CurrentUserID(ctx context.Context) (string, bool) {
	u, ok := f.CurrentUser(ctx)
	return u.ID, ok
}

type fixture struct {
	space   *memory.Space
	store   *cartapp.Store
	badge   *badge.Projection
	handler http.Handler
}

func newFixture(t *testing.T, identity fakeIdentity) *fixture {
	t.Helper()
	space := memory.NewSpace()
	h := space.Handle()
	log := logger.Discard()

	catalog := fakeCatalog{products: []catalogdomain.Product{
		{ID: "c1", Name: "Calculator", Price: decimal.NewFromInt(450), Images: catalogdomain.Images{{URL: "https://img/calc.png"}}},
		{ID: "b1", Name: "Book", Price: decimal.NewFromInt(100)},
	}}
	store := cartapp.NewStore(h, "", log)
	projection := badge.New(store, h, cartapp.DefaultKey, log)
	checkout := checkoutapp.NewService(adapter.NewCartStoreReader(store), identity, decimal.Zero, log)

	srv := NewServer(Deps{
		Cart:     store,
		Badge:    projection,
		Bridge:   bridge.New(store, catalog, "", log),
		Catalog:  catalog,
		Checkout: checkout,
		Identity: identity,
		Money:    money.NewFormatter("₹", language.English),
		Logger:   log,
	})
	return &fixture{space: space, store: store, badge: projection, handler: srv.Handler()}
}

func (f *fixture) do(t *testing.T, method, target string, form url.Values, accept string) *httptest.ResponseRecorder {
	t.Helper()
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func flash(t *testing.T, rec *httptest.ResponseRecorder) (string, url.Values) {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	return loc.Path, loc.Query()
}

func TestRootRedirects(t *testing.T) {
	f := newFixture(t, fakeIdentity{})
	rec := f.do(t, http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/products", rec.Header().Get("Location"))
}

func TestHealth(t *testing.T) {
	f := newFixture(t, fakeIdentity{})
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/healthz", nil, "").Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/readyz", nil, "").Code)
}

func TestProductsPageAndAddToCart(t *testing.T) {
	f := newFixture(t, fakeIdentity{})

	rec := f.do(t, http.MethodGet, "/products?q=calc", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Calculator")
	assert.NotContains(t, rec.Body.String(), "Book")
	assert.Contains(t, rec.Body.String(), `data-count="0"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	rec = f.do(t, http.MethodPost, "/products/c1/cart", url.Values{}, "")
	path, q := flash(t, rec)
	assert.Equal(t, "/products", path)
	assert.Equal(t, bridge.MsgAdded, q.Get("notice"))
	assert.Equal(t, 1, f.store.Count(context.Background()))

	// the next render shows the new count
	rec = f.do(t, http.MethodGet, "/products", nil, "")
	assert.Contains(t, rec.Body.String(), `data-count="1"`)
	assert.Contains(t, rec.Body.String(), "Product added to cart!")
}

func TestAddToCartJSONAndUnknownProduct(t *testing.T) {
	f := newFixture(t, fakeIdentity{})

	rec := f.do(t, http.MethodPost, "/products/c1/cart", nil, "application/json")
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		OK    bool `json:"ok"`
		Count int  `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.True(t, out.OK)
	assert.Equal(t, 1, out.Count)

	rec = f.do(t, http.MethodPost, "/products/nope/cart", url.Values{}, "")
	_, q := flash(t, rec)
	assert.Equal(t, bridge.MsgNotFound, q.Get("warning"))
}

func TestCartPageFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, fakeIdentity{})

	rec := f.do(t, http.MethodGet, "/cart", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Your cart is empty")

	f.do(t, http.MethodPost, "/products/c1/cart", url.Values{}, "")
	f.do(t, http.MethodPost, "/products/b1/cart", url.Values{}, "")

	rec = f.do(t, http.MethodGet, "/cart", nil, "")
	assert.Contains(t, rec.Body.String(), "Order Summary")
	assert.Contains(t, rec.Body.String(), "₹550.00")

	path, _ := flash(t, f.do(t, http.MethodPost, "/cart/items/c1/increment", url.Values{}, ""))
	assert.Equal(t, "/cart", path)
	assert.Equal(t, 3, f.store.Count(ctx))

	f.do(t, http.MethodPost, "/cart/items/c1/decrement", url.Values{}, "")
	f.do(t, http.MethodPost, "/cart/items/c1/decrement", url.Values{}, "")
	it, ok := f.store.Load(ctx).Find("c1")
	require.True(t, ok)
	assert.Equal(t, 1, it.Quantity)

	f.do(t, http.MethodPost, "/cart/items/b1/quantity", url.Values{"quantity": {"4"}}, "")
	it, _ = f.store.Load(ctx).Find("b1")
	assert.Equal(t, 4, it.Quantity)

	rec = f.do(t, http.MethodPost, "/cart/items/b1/quantity", url.Values{"quantity": {"lots"}}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	f.do(t, http.MethodPost, "/cart/items/b1/remove", url.Values{}, "")
	assert.Equal(t, 1, f.store.Count(ctx))

	rec = f.do(t, http.MethodPost, "/cart/items/b1/explode", url.Values{}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	f.do(t, http.MethodPost, "/cart/clear", url.Values{}, "")
	assert.True(t, f.store.Load(ctx).IsEmpty())
}

func TestCheckoutRequiresLogin(t *testing.T) {
	f := newFixture(t, fakeIdentity{})
	f.do(t, http.MethodPost, "/products/c1/cart", url.Values{}, "")

	_, q := flash(t, f.do(t, http.MethodPost, "/cart/checkout", url.Values{}, ""))
	assert.Equal(t, "Please login to checkout", q.Get("warning"))

	rec := f.do(t, http.MethodPost, "/cart/checkout", nil, "application/json")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 1, f.store.Count(context.Background()))
}

func TestCheckoutSignedInIsStubbed(t *testing.T) {
	f := newFixture(t, fakeIdentity{user: &authdomain.User{ID: "u1", Name: "Asha"}})
	f.do(t, http.MethodPost, "/products/c1/cart", url.Values{}, "")

	_, q := flash(t, f.do(t, http.MethodPost, "/cart/checkout", url.Values{}, ""))
	assert.Equal(t, "Checkout functionality coming soon!", q.Get("notice"))

	rec := f.do(t, http.MethodPost, "/cart/checkout", nil, "application/json")
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
	assert.Equal(t, 1, f.store.Count(context.Background()))

	rec = f.do(t, http.MethodGet, "/cart", nil, "")
	assert.Contains(t, rec.Body.String(), "Asha")
}

func TestAPICartAndBadge(t *testing.T) {
	f := newFixture(t, fakeIdentity{})
	f.do(t, http.MethodPost, "/products/c1/cart", url.Values{}, "")
	f.do(t, http.MethodPost, "/products/c1/cart", url.Values{}, "")

	rec := f.do(t, http.MethodGet, "/api/cart", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var cart cartJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cart))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, "900", cart.Total)
	assert.Equal(t, "https://img/calc.png", cart.Items[0].Image)

	rec = f.do(t, http.MethodGet, "/api/badge", nil, "")
	assert.JSONEq(t, `{"count":2}`, rec.Body.String())
}

func TestBadgeEventsFollowOtherContexts(t *testing.T) {
	f := newFixture(t, fakeIdentity{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Run mounts only after it is watching, so its first count means it is live
	ready, unsubscribe := f.badge.Subscribe()
	done := make(chan error, 1)
	go func() { done <- f.badge.Run(ctx) }()
	select {
	case <-ready:
	case <-time.After(5 * time.Second):
		t.Fatal("badge projection did not start")
	}
	unsubscribe()

	srv := httptest.NewServer(f.handler)
	defer srv.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/badge/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := make(chan string, 8)
	go func() {
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			if line := sc.Text(); strings.HasPrefix(line, "data: ") {
				events <- strings.TrimPrefix(line, "data: ")
			}
		}
		close(events)
	}()

	waitFor := func(want string) {
		t.Helper()
		deadline := time.After(5 * time.Second)
		for {
			select {
			case got := <-events:
				if got == want {
					return
				}
			case <-deadline:
				t.Fatalf("timed out waiting for count %s", want)
			}
		}
	}
	waitFor("0")

	other := cartapp.NewStore(f.space.Handle(), "", logger.Discard())
	_, err = other.AddOrIncrement(context.Background(), cartdomain.ProductSnapshot{ID: "x", Name: "X", Price: decimal.NewFromInt(1)})
	require.NoError(t, err)
	waitFor("1")

	cancel()
	require.NoError(t, <-done)
}

func TestPageRendersDoNotPushSameContextWrites(t *testing.T) {
	f := newFixture(t, fakeIdentity{})
	updates, unsubscribe := f.badge.Subscribe()
	defer unsubscribe()

	f.do(t, http.MethodPost, "/products/c1/cart", url.Values{}, "")
	rec := f.do(t, http.MethodGet, "/products", nil, "")
	assert.Contains(t, rec.Body.String(), `data-count="1"`)
	assert.JSONEq(t, `{"count":1}`, f.do(t, http.MethodGet, "/api/badge", nil, "").Body.String())

	select {
	case n := <-updates:
		t.Fatalf("unexpected badge update %d for a same-context write", n)
	default:
	}
	assert.Equal(t, 0, f.badge.Count())
}

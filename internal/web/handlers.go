package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/dwikikusuma/collegemart/internal/cartview"
	"github.com/dwikikusuma/collegemart/internal/web/views"
)

func (s *Server) page(r *http.Request, title string) views.Page {
	p := views.Page{
		Title:   title,
		Notice:  r.URL.Query().Get("notice"),
		Warning: r.URL.Query().Get("warning"),
	}
	// every render derives the badge from durable storage; the long-lived
	// projection behind the event stream is left to cross-context changes
	p.BadgeCount = s.Cart.Count(r.Context())
	if s.Identity != nil {
		if u, ok := s.Identity.CurrentUser(r.Context()); ok {
			p.UserName = u.Name
		}
	}
	return p
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, r, errors.Wrap(errBadRequest, "limit must be a number"))
			return
		}
		limit = n
	}

	products, next, err := s.Catalog.ListProducts(r.Context(), q.Get("q"), limit, q.Get("cursor"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	body := views.Products(views.ProductsPage{
		Products:    products,
		Query:       q.Get("q"),
		NextCursor:  next,
		Placeholder: s.Placeholder,
		Money:       s.Money,
	})
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.Layout(s.page(r, "Products"), body).Render(r.Context(), w); err != nil {
		s.log.Warn("render products", slog.Any("err", err))
	}
}

func (s *Server) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	fb := s.Bridge.AddByID(r.Context(), chi.URLParam(r, "id"))
	if wantsJSON(r) {
		status := http.StatusOK
		if !fb.OK {
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, map[string]any{
			"ok":      fb.OK,
			"message": fb.Message,
			"warning": fb.Warning,
			"count":   fb.Count,
		})
		return
	}
	notice, warning := fb.Message, fb.Warning
	if !fb.OK {
		notice, warning = "", fb.Message
	}
	redirectWithFlash(w, r, backTo(r, "/products"), notice, warning)
}

func (s *Server) mountView(r *http.Request) (*cartview.View, cartview.Model) {
	v := cartview.New(s.Cart, s.Checkout, s.Shipping, s.log)
	return v, v.Mount(r.Context())
}

func (s *Server) handleCart(w http.ResponseWriter, r *http.Request) {
	_, m := s.mountView(r)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.Layout(s.page(r, "Cart"), views.Cart(m, s.Money)).Render(r.Context(), w); err != nil {
		s.log.Warn("render cart", slog.Any("err", err))
	}
}

func (s *Server) handleCartItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	v, _ := s.mountView(r)

	var m cartview.Model
	switch chi.URLParam(r, "action") {
	case "increment":
		m = v.Increment(r.Context(), id)
	case "decrement":
		m = v.Decrement(r.Context(), id)
	case "remove":
		m = v.Remove(r.Context(), id)
	case "quantity":
		q, err := strconv.Atoi(strings.TrimSpace(r.FormValue("quantity")))
		if err != nil {
			s.writeError(w, r, errors.Wrap(errBadRequest, "quantity must be a whole number"))
			return
		}
		m = v.SetQuantity(r.Context(), id, q)
	default:
		http.NotFound(w, r)
		return
	}
	s.afterMutation(w, r, m)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	v, _ := s.mountView(r)
	s.afterMutation(w, r, v.Clear(r.Context()))
}

func (s *Server) afterMutation(w http.ResponseWriter, r *http.Request, m cartview.Model) {
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, toCartJSON(m))
		return
	}
	redirectWithFlash(w, r, "/cart", m.Notice, m.Warning)
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	v, _ := s.mountView(r)
	m, err := v.Checkout(r.Context())
	if wantsJSON(r) {
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toCartJSON(m))
		return
	}
	redirectWithFlash(w, r, "/cart", m.Notice, m.Warning)
}

func (s *Server) handleAPICart(w http.ResponseWriter, r *http.Request) {
	_, m := s.mountView(r)
	writeJSON(w, http.StatusOK, toCartJSON(m))
}

func (s *Server) handleAPIBadge(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"count": s.page(r, "").BadgeCount})
}

// handleBadgeEvents streams the badge count as server-sent events. The first
// event is the count at connect time; later events follow the long-lived
// projection, which only re-derives on writes from other contexts.
func (s *Server) handleBadgeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok || s.Badge == nil {
		http.Error(w, "streaming unsupported", http.StatusNotImplemented)
		return
	}

	updates, unsubscribe := s.Badge.Subscribe()
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	// the stream outlives the server's write timeout
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	send := func(n int) bool {
		if _, err := fmt.Fprintf(w, "event: count\ndata: %d\n\n", n); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}
	if !send(s.Cart.Count(r.Context())) {
		return
	}

	keepAlive := time.NewTicker(30 * time.Second)
	defer keepAlive.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case n := <-updates:
			if !send(n) {
				return
			}
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

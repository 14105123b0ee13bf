// Package views renders the marketplace pages as templ components.
package views

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// Page is the chrome shared by every page. BadgeCount is derived when the
// page is rendered.
type Page struct {
	Title      string
	BadgeCount int
	UserName   string
	Notice     string
	Warning    string
}

// Layout wraps body in the document, navigation and flash messages.
func Layout(p Page, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		ew := &errWriter{w: w}
		ew.printf(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>%s | College Mart</title>`, esc(p.Title))
		ew.write(`<meta name="viewport" content="width=device-width, initial-scale=1"></head><body>`)
		ew.write(`<nav class="navbar"><a class="brand" href="/products">College Mart</a>`)
		ew.printf(`<a class="nav-cart" href="/cart">Cart <span id="cart-badge" class="badge" data-count="%d">%d</span></a>`, p.BadgeCount, p.BadgeCount)
		if p.UserName != "" {
			ew.printf(`<span class="nav-user">%s</span>`, esc(p.UserName))
		}
		ew.write(`</nav>`)
		if p.Notice != "" {
			ew.printf(`<p class="flash notice" role="status">%s</p>`, esc(p.Notice))
		}
		if p.Warning != "" {
			ew.printf(`<p class="flash warning" role="alert">%s</p>`, esc(p.Warning))
		}
		ew.write(`<main>`)
		if ew.err != nil {
			return ew.err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		ew.write(`</main>`)
		ew.write(`<script>new EventSource("/badge/events").addEventListener("count",function(e){var b=document.getElementById("cart-badge");b.textContent=e.data;b.dataset.count=e.data;});</script>`)
		ew.write(`</body></html>`)
		return ew.err
	})
}

func esc(s string) string { return templ.EscapeString(s) }

func itoa(n int) string { return strconv.Itoa(n) }

// errWriter stops writing after the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) write(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = io.WriteString(ew.w, s)
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

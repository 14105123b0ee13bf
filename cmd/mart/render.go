package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dwikikusuma/collegemart/internal/cartview"
	catalogdomain "github.com/dwikikusuma/collegemart/internal/catalog/domain"
	"github.com/dwikikusuma/collegemart/pkg/money"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// table renders rows under headers with columns sized to the widest cell.
// Columns listed in right are right aligned.
type table struct {
	headers []string
	rows    [][]string
	right   map[int]bool
}

func (t *table) add(row ...string) {
	t.rows = append(t.rows, row)
}

func (t *table) render() string {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}
	// Width includes padding
	for i := range widths {
		widths[i] += 2
	}

	line := func(cells []string, style lipgloss.Style) string {
		parts := make([]string, len(widths))
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			s := style.Width(widths[i])
			if t.right[i] {
				s = s.Align(lipgloss.Right)
			}
			parts[i] = s.Render(cell)
		}
		return strings.Join(parts, mutedStyle.Render("│"))
	}

	var sb strings.Builder
	sb.WriteString(line(t.headers, headerStyle))
	sb.WriteString("\n")
	total := 0
	for _, w := range widths {
		total += w
	}
	sb.WriteString(mutedStyle.Render(strings.Repeat("─", total+len(widths)-1)))
	sb.WriteString("\n")
	for _, row := range t.rows {
		sb.WriteString(line(row, cellStyle))
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderFlash(w io.Writer, notice, warning string) {
	if notice != "" {
		fmt.Fprintln(w, noticeStyle.Render(notice))
	}
	if warning != "" {
		fmt.Fprintln(w, warningStyle.Render("! "+warning))
	}
}

func renderCart(w io.Writer, m cartview.Model, f money.Formatter) {
	renderFlash(w, m.Notice, m.Warning)
	if m.Empty {
		fmt.Fprintln(w, cartview.MsgEmpty)
		fmt.Fprintln(w, mutedStyle.Render("Browse products with: mart products list"))
		return
	}

	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Shopping Cart (%d items)", m.Distinct)))
	t := &table{
		headers: []string{"ID", "Product", "Price", "Qty", "Total"},
		right:   map[int]bool{2: true, 3: true, 4: true},
	}
	for _, it := range m.Items {
		t.add(it.ID, it.Name, f.Format(it.Price), strconv.Itoa(it.Quantity), f.Format(it.LineTotal))
	}
	fmt.Fprint(w, t.render())

	fmt.Fprintf(w, "Subtotal: %s\n", f.Format(m.Subtotal))
	fmt.Fprintf(w, "Shipping: %s\n", f.FormatOrFree(m.Shipping))
	fmt.Fprintln(w, titleStyle.Render("Total:    "+f.Format(m.Total)))
}

func renderProducts(w io.Writer, products []catalogdomain.Product, next string, f money.Formatter) {
	if len(products) == 0 {
		fmt.Fprintln(w, "No products found")
		return
	}
	t := &table{
		headers: []string{"ID", "Product", "Price", "Seller"},
		right:   map[int]bool{2: true},
	}
	for _, p := range products {
		t.add(p.ID, p.Name, f.Format(p.Price), p.Seller.Name)
	}
	fmt.Fprint(w, t.render())
	if next != "" {
		fmt.Fprintln(w, mutedStyle.Render("More: --cursor "+next))
	}
}

func renderProduct(w io.Writer, p catalogdomain.Product, f money.Formatter) {
	fmt.Fprintln(w, titleStyle.Render(p.Name))
	fmt.Fprintf(w, "ID:      %s\n", p.ID)
	fmt.Fprintf(w, "Price:   %s\n", f.Format(p.Price))
	if p.Tag != "" {
		fmt.Fprintf(w, "Tag:     %s\n", p.Tag)
	}
	if p.Seller.Name != "" {
		fmt.Fprintf(w, "Seller:  %s\n", p.Seller.Name)
	}
	if !p.ListedAt.IsZero() {
		fmt.Fprintf(w, "Listed:  %s\n", p.ListedAt.Format("2 Jan 2006"))
	}
	if img, ok := p.Images.First(); ok {
		fmt.Fprintf(w, "Image:   %s\n", img.URL)
	}
	if p.Description != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, p.Description)
	}
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string
	Name        string
	Price       decimal.Decimal
	Currency    string
	Description string
	Images      Images
	Tag         string
	Seller      Seller
	ListedAt    time.Time
}

type Seller struct {
	Name        string
	ContactInfo string
}

type Image struct {
	URL string
}

// Images is the optional, ordered list of product pictures. The backend may
// send none, one, or several; a nil Images means none.
type Images []Image

// First returns the first image with a non-empty URL.
func (im Images) First() (Image, bool) {
	for _, img := range im {
		if img.URL != "" {
			return img, true
		}
	}
	return Image{}, false
}

package httpclient

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/dwikikusuma/collegemart/internal/catalog/domain"
)

// productDTO mirrors the backend's loosely typed product document.
type productDTO struct {
	ID          string          `json:"id"`
	MongoID     string          `json:"_id"`
	Name        string          `json:"name"`
	Price       json.RawMessage `json:"price"`
	Currency    string          `json:"currency"`
	Description string          `json:"description"`
	ImgURL      json.RawMessage `json:"imgUrl"`
	Tag         string          `json:"tag"`
	Date        string          `json:"date"`
	Seller      struct {
		Name        string `json:"name"`
		ContactInfo string `json:"contactInfo"`
	} `json:"seller"`
}

type imageDTO struct {
	URL string `json:"url"`
}

type createRequest struct {
	Name        string     `json:"name"`
	Price       string     `json:"price"`
	Currency    string     `json:"currency,omitempty"`
	Description string     `json:"description"`
	Tag         string     `json:"tag,omitempty"`
	ImgURL      []imageDTO `json:"imgUrl,omitempty"`
}

func (d productDTO) toDomain() (domain.Product, error) {
	id := d.ID
	if id == "" {
		id = d.MongoID
	}
	price, err := parsePrice(d.Price)
	if err != nil {
		return domain.Product{}, errors.Wrapf(err, "product %s", id)
	}
	images, err := parseImages(d.ImgURL)
	if err != nil {
		return domain.Product{}, errors.Wrapf(err, "product %s", id)
	}
	return domain.Product{
		ID:          id,
		Name:        d.Name,
		Price:       price,
		Currency:    d.Currency,
		Description: d.Description,
		Images:      images,
		Tag:         d.Tag,
		Seller: domain.Seller{
			Name:        d.Seller.Name,
			ContactInfo: d.Seller.ContactInfo,
		},
		ListedAt: parseDate(d.Date),
	}, nil
}

// parsePrice accepts a JSON number, a numeric string, null or nothing.
func parsePrice(raw json.RawMessage) (decimal.Decimal, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return decimal.Zero, nil
	}
	s := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Zero, errors.Wrap(err, "price")
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return decimal.Zero, nil
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "price")
	}
	return d, nil
}

// parseImages accepts null, a URL string, a {url} object, or an array of
// either.
func parseImages(raw json.RawMessage) (domain.Images, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var list []json.RawMessage
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, errors.Wrap(err, "imgUrl")
		}
	} else {
		list = []json.RawMessage{raw}
	}

	var images domain.Images
	for _, el := range list {
		el = bytes.TrimSpace(el)
		if len(el) == 0 || string(el) == "null" {
			continue
		}
		var img imageDTO
		switch el[0] {
		case '"':
			if err := json.Unmarshal(el, &img.URL); err != nil {
				return nil, errors.Wrap(err, "imgUrl")
			}
		case '{':
			if err := json.Unmarshal(el, &img); err != nil {
				return nil, errors.Wrap(err, "imgUrl")
			}
		default:
			return nil, errors.Errorf("imgUrl: unexpected element %s", el)
		}
		if img.URL = strings.TrimSpace(img.URL); img.URL != "" {
			images = append(images, domain.Image{URL: img.URL})
		}
	}
	return images, nil
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// productEnvelope accepts a bare product or {"product": {...}}.
type productEnvelope struct {
	dto productDTO
}

func (e *productEnvelope) UnmarshalJSON(b []byte) error {
	var wrapped struct {
		Product *productDTO `json:"product"`
	}
	if err := json.Unmarshal(b, &wrapped); err == nil && wrapped.Product != nil {
		e.dto = *wrapped.Product
		return nil
	}
	return json.Unmarshal(b, &e.dto)
}

func (e productEnvelope) product() (domain.Product, error) {
	return e.dto.toDomain()
}

// listResponse accepts a bare array or {"products": [...], "nextCursor": ""}.
type listResponse struct {
	Products   []productDTO
	NextCursor string
}

func (l *listResponse) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		return json.Unmarshal(b, &l.Products)
	}
	var obj struct {
		Products   []productDTO `json:"products"`
		NextCursor string       `json:"nextCursor"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	l.Products = obj.Products
	l.NextCursor = obj.NextCursor
	return nil
}

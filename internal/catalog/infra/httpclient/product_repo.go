package httpclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-faster/errors"

	"github.com/dwikikusuma/collegemart/internal/backend"
	"github.com/dwikikusuma/collegemart/internal/catalog/app"
	"github.com/dwikikusuma/collegemart/internal/catalog/domain"
)

// TokenSource supplies the bearer token for authenticated calls, if any.
type TokenSource interface {
	Token(ctx context.Context) string
}

type ProductRepo struct {
	client *backend.Client
	tokens TokenSource
}

var _ app.ProductRepo = (*ProductRepo)(nil)

func NewProductRepo(client *backend.Client, tokens TokenSource) *ProductRepo {
	return &ProductRepo{client: client, tokens: tokens}
}

func (r *ProductRepo) token(ctx context.Context) string {
	if r.tokens == nil {
		return ""
	}
	return r.tokens.Token(ctx)
}

func (r *ProductRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	in := createRequest{
		Name:        p.Name,
		Price:       p.Price.String(),
		Currency:    p.Currency,
		Description: p.Description,
		Tag:         p.Tag,
	}
	for _, img := range p.Images {
		in.ImgURL = append(in.ImgURL, imageDTO{URL: img.URL})
	}

	var out productEnvelope
	if err := r.client.Do(ctx, backend.Request{
		Method: http.MethodPost,
		Path:   "/products",
		Token:  r.token(ctx),
		Body:   in,
		Out:    &out,
	}); err != nil {
		return domain.Product{}, mapErr(err, "create product")
	}
	created, err := out.product()
	if err != nil {
		return domain.Product{}, err
	}
	// Some backends only echo the id.
	if created.Name == "" {
		id := created.ID
		created = p
		created.ID = id
	}
	return created, nil
}

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	var out productEnvelope
	if err := r.client.Do(ctx, backend.Request{
		Method: http.MethodGet,
		Path:   "/products/" + url.PathEscape(id),
		Out:    &out,
	}); err != nil {
		return domain.Product{}, mapErr(err, "get product")
	}
	return out.product()
}

// List returns the page and the cursor for the next page ("" when done).
func (r *ProductRepo) List(ctx context.Context, query string, limit int, cursor string) ([]domain.Product, string, error) {
	q := url.Values{}
	if query != "" {
		q.Set("q", query)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if cursor != "" {
		q.Set("cursor", cursor)
	}

	var out listResponse
	if err := r.client.Do(ctx, backend.Request{
		Method: http.MethodGet,
		Path:   "/products",
		Query:  q,
		Out:    &out,
	}); err != nil {
		return nil, "", mapErr(err, "list products")
	}

	products := make([]domain.Product, 0, len(out.Products))
	for _, dto := range out.Products {
		p, err := dto.toDomain()
		if err != nil {
			return nil, "", err
		}
		products = append(products, p)
	}
	return products, out.NextCursor, nil
}

func mapErr(err error, op string) error {
	switch {
	case errors.Is(err, backend.ErrUnreachable):
		return errors.Wrap(app.ErrUnavailable, err.Error())
	case backend.StatusCode(err) == http.StatusNotFound:
		return app.ErrNotFound
	case backend.StatusCode(err) == http.StatusBadRequest:
		return errors.Wrap(app.ErrInvalidInput, backend.Message(err))
	case backend.StatusCode(err) >= 500:
		return errors.Wrap(app.ErrUnavailable, err.Error())
	}
	return errors.Wrap(err, op)
}

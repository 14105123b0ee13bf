package app

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/dwikikusuma/collegemart/internal/catalog/domain"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	// ErrUnavailable means the marketplace backend could not be reached.
	ErrUnavailable = errors.New("catalog unavailable")
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

type Service struct {
	repo ProductRepo
}

func NewService(repo ProductRepo) *Service {
	return &Service{
		repo: repo,
	}
}

type CreateProductInput struct {
	Name        string
	Description string
	Currency    string
	Price       decimal.Decimal
	Tag         string
	ImageURLs   []string
}

func (s *Service) CreateProduct(ctx context.Context, in CreateProductInput) (domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	currency := strings.TrimSpace(in.Currency)

	if name == "" || currency == "" || !in.Price.IsPositive() {
		return domain.Product{}, ErrInvalidInput
	}

	p := domain.Product{
		Name:        name,
		Description: in.Description,
		Price:       in.Price,
		Currency:    currency,
		Tag:         strings.TrimSpace(in.Tag),
	}
	for _, u := range in.ImageURLs {
		if u = strings.TrimSpace(u); u != "" {
			p.Images = append(p.Images, domain.Image{URL: u})
		}
	}

	product, err := s.repo.Create(ctx, p)
	if err != nil {
		return domain.Product{}, err
	}

	return product, nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Product{}, ErrInvalidInput
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context, query string, limit int, cursor string) ([]domain.Product, string, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return s.repo.List(ctx, strings.TrimSpace(query), limit, cursor)
}

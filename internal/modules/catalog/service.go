package catalog

import (
	"context"

	"storefront/internal/domain"
	"storefront/internal/pricing"
	"storefront/internal/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type productRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, f repository.ProductFilter) ([]domain.Product, int64, error)
}

type bannerRepository interface {
	ActiveBanners(ctx context.Context) ([]domain.Banner, error)
}

type Service struct {
	products productRepository
	banners  bannerRepository
}

func NewService(products productRepository, banners bannerRepository) *Service {
	return &Service{products: products, banners: banners}
}

type Page struct {
	Products []pricing.Product
	Page     int
	Limit    int
	Total    int64
}

func (p Page) TotalPages() int {
	if p.Limit <= 0 {
		return 1
	}
	return int((p.Total + int64(p.Limit) - 1) / int64(p.Limit))
}

// ListProducts pages through the catalog. Out of range page and limit
// values fall back to the first page of the default size.
func (s *Service) ListProducts(ctx context.Context, q ListQuery) (Page, error) {
	limit := q.Limit
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}

	rows, total, err := s.products.List(ctx, repository.ProductFilter{
		Category: q.Category,
		Search:   q.Search,
		Limit:    limit,
		Offset:   (page - 1) * limit,
	})
	if err != nil {
		return Page{}, err
	}

	out := make([]pricing.Product, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].Pricing())
	}
	return Page{Products: out, Page: page, Limit: limit, Total: total}, nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (pricing.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return pricing.Product{}, err
	}
	return p.Pricing(), nil
}

func (s *Service) ActiveBanners(ctx context.Context) ([]domain.Banner, error) {
	return s.banners.ActiveBanners(ctx)
}

package repository

import (
	"context"
	"strings"

	"storefront/internal/domain"

	"gorm.io/gorm"
)

type ProductFilter struct {
	Category string
	Search   string
	Limit    int
	Offset   int
}

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	return uniqueViolation(r.db.WithContext(ctx).Create(p).Error)
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns one page of matching products and the total match count.
// A zero Limit returns every match.
func (r *ProductRepository) List(ctx context.Context, f ProductFilter) ([]domain.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Product{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		q = q.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(s)+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}

	var out []domain.Product
	if err := q.Order("created_at DESC").Order("id").Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

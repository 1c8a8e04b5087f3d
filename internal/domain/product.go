package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/pricing"
)

type Product struct {
	ID            string          `gorm:"primaryKey;size:36"`
	Title         string          `gorm:"size:200;not null"`
	Description   string          `gorm:"type:text"`
	Images        []string        `gorm:"serializer:json"`
	Category      string          `gorm:"size:80;index"`
	Price         decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	DiscountPrice decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Stock         int             `gorm:"not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Pricing is the product as the storefront prices and displays it.
func (p *Product) Pricing() pricing.Product {
	return pricing.Product{
		ID:            p.ID,
		Title:         p.Title,
		Description:   p.Description,
		Images:        p.Images,
		Category:      p.Category,
		Price:         p.Price,
		DiscountPrice: p.DiscountPrice,
		Stock:         p.Stock,
	}
}

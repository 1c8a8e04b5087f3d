package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Stock level below which the storefront warns about scarcity.
const lowStockThreshold = 5

type Product struct {
	ID            string          `json:"_id"`
	Title         string          `json:"title"`
	Description   string          `json:"description,omitempty"`
	Images        []string        `json:"images,omitempty"`
	Category      string          `json:"category,omitempty"`
	Price         decimal.Decimal `json:"price"`
	DiscountPrice decimal.Decimal `json:"discountPrice"`
	Stock         int             `json:"stock"`
}

// UnitPrice is the discount price when one is set, the list price otherwise.
func (p Product) UnitPrice() decimal.Decimal {
	if p.DiscountPrice.IsPositive() {
		return p.DiscountPrice
	}
	return p.Price
}

// OnSale reports whether the list price should be shown struck through.
func (p Product) OnSale() bool {
	return p.DiscountPrice.IsPositive() && p.Price.IsPositive()
}

func (p Product) StockNote() string {
	switch {
	case p.Stock <= 0:
		return "Out of stock"
	case p.Stock < lowStockThreshold:
		return fmt.Sprintf("Only %d left!", p.Stock)
	default:
		return ""
	}
}

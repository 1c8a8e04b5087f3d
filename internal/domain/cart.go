package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/pricing"
)

// Cart is the server-side cart of one user. At most one of CouponCode and
// ReferralCode is set.
type Cart struct {
	ID             int64           `gorm:"primaryKey"`
	UserID         int64           `gorm:"uniqueIndex;not null"`
	CouponCode     string          `gorm:"size:40"`
	CouponAmount   decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	ReferralCode   string          `gorm:"size:40"`
	ReferralAmount decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Items          []CartItem      `gorm:"constraint:OnDelete:CASCADE"`
	UpdatedAt      time.Time
}

type CartItem struct {
	ID        int64    `gorm:"primaryKey"`
	CartID    int64    `gorm:"uniqueIndex:idx_cart_product;not null"`
	ProductID string   `gorm:"uniqueIndex:idx_cart_product;size:36;not null"`
	Product   *Product `gorm:"foreignKey:ProductID"`
	Quantity  int      `gorm:"not null"`
	CreatedAt time.Time
}

// Pricing copies the cart into the shape clients render. Lines whose
// product has been deleted are skipped.
func (c *Cart) Pricing() pricing.Cart {
	out := pricing.Cart{
		Items:          make([]pricing.LineItem, 0, len(c.Items)),
		CouponCode:     c.CouponCode,
		CouponAmount:   c.CouponAmount,
		ReferralCode:   c.ReferralCode,
		ReferralAmount: c.ReferralAmount,
	}
	for _, it := range c.Items {
		if it.Product == nil {
			continue
		}
		p := it.Product.Pricing()
		out.Items = append(out.Items, pricing.LineItem{ProductID: it.ProductID, Product: &p, Quantity: it.Quantity})
	}
	return out
}

package domain

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/pricing"
)

type DiscountType string

const (
	DiscountFlat    DiscountType = "flat"
	DiscountPercent DiscountType = "percent"
)

// Amount is what the discount is worth on subtotal, before capping.
func (t DiscountType) Amount(value, subtotal decimal.Decimal) decimal.Decimal {
	if t == DiscountPercent {
		return subtotal.Mul(value).Div(decimal.NewFromInt(100)).Round(2)
	}
	return value
}

type Coupon struct {
	ID            int64           `json:"id" gorm:"primaryKey"`
	Code          string          `json:"code" gorm:"size:40;uniqueIndex;not null"`
	DiscountType  DiscountType    `json:"discountType" gorm:"size:10;not null"`
	Value         decimal.Decimal `json:"value" gorm:"type:numeric(12,2);not null"`
	MinOrderValue decimal.Decimal `json:"minOrderValue" gorm:"type:numeric(12,2);not null;default:0"`
	ExpiresAt     *time.Time      `json:"expiresAt,omitempty"`
	Active        bool            `json:"active" gorm:"not null"`
	CreatedAt     time.Time       `json:"createdAt"`
}

func (c *Coupon) Usable(now time.Time) bool {
	return c.Active && (c.ExpiresAt == nil || c.ExpiresAt.After(now))
}

type Referral struct {
	ID           int64           `json:"id" gorm:"primaryKey"`
	Code         string          `json:"code" gorm:"size:40;uniqueIndex;not null"`
	ReferrerName string          `json:"referrerName" gorm:"size:120"`
	DiscountType DiscountType    `json:"discountType" gorm:"size:10;not null"`
	Value        decimal.Decimal `json:"value" gorm:"type:numeric(12,2);not null"`
	Active       bool            `json:"active" gorm:"not null"`
	CreatedAt    time.Time       `json:"createdAt"`
}

type FlashOffer struct {
	ID        int64           `gorm:"primaryKey"`
	Title     string          `gorm:"size:120;not null"`
	Rate      decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	StartsAt  time.Time       `gorm:"not null"`
	EndsAt    time.Time       `gorm:"index;not null"`
	CreatedAt time.Time
}

// Pricing is nil-safe; a nil offer maps to the inactive zero offer.
func (o *FlashOffer) Pricing() pricing.FlashOffer {
	if o == nil {
		return pricing.FlashOffer{}
	}
	return pricing.FlashOffer{
		ID:       strconv.FormatInt(o.ID, 10),
		Title:    o.Title,
		Rate:     o.Rate,
		StartsAt: o.StartsAt,
		EndsAt:   o.EndsAt,
	}
}

type Banner struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"size:120;not null"`
	ImageURL  string    `json:"imageUrl" gorm:"size:500;not null"`
	Link      string    `json:"link,omitempty" gorm:"size:500"`
	Position  int       `json:"position" gorm:"not null;default:0"`
	Active    bool      `json:"active" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
}

// Models lists every table the backend migrates.
func Models() []any {
	return []any{
		&User{},
		&RefreshToken{},
		&OTPCode{},
		&Product{},
		&Cart{},
		&CartItem{},
		&Coupon{},
		&Referral{},
		&FlashOffer{},
		&Banner{},
	}
}

package admin

import (
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type CouponRequest struct {
	Code          string              `json:"code" binding:"required"`
	DiscountType  domain.DiscountType `json:"discountType" binding:"required"`
	Value         decimal.Decimal     `json:"value"`
	MinOrderValue decimal.Decimal     `json:"minOrderValue"`
	ExpiresAt     *time.Time          `json:"expiresAt"`
	Active        *bool               `json:"active"`
}

type ReferralRequest struct {
	Code         string              `json:"code" binding:"required"`
	ReferrerName string              `json:"referrerName"`
	DiscountType domain.DiscountType `json:"discountType" binding:"required"`
	Value        decimal.Decimal     `json:"value"`
	Active       *bool               `json:"active"`
}

type BannerRequest struct {
	Title    string `json:"title" binding:"required"`
	ImageURL string `json:"imageUrl" binding:"required"`
	Link     string `json:"link"`
	Position int    `json:"position"`
	Active   *bool  `json:"active"`
}

// activeOr defaults an omitted flag to true.
func activeOr(v *bool) bool {
	return v == nil || *v
}

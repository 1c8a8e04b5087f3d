package admin

import (
	"context"

	"storefront/internal/domain"
	"storefront/internal/pricing"
)

type PromotionRepository interface {
	ListCoupons(ctx context.Context) ([]domain.Coupon, error)
	CreateCoupon(ctx context.Context, c *domain.Coupon) error
	DeleteCoupon(ctx context.Context, id int64) error
	ListReferrals(ctx context.Context) ([]domain.Referral, error)
	CreateReferral(ctx context.Context, r *domain.Referral) error
	DeleteReferral(ctx context.Context, id int64) error
	ListBanners(ctx context.Context) ([]domain.Banner, error)
	CreateBanner(ctx context.Context, b *domain.Banner) error
	DeleteBanner(ctx context.Context, id int64) error
}

// OfferService announces offer changes to connected storefronts.
type OfferService interface {
	List(ctx context.Context) ([]pricing.FlashOffer, error)
	Create(ctx context.Context, in pricing.FlashOffer) (pricing.FlashOffer, error)
	End(ctx context.Context, id int64) error
}

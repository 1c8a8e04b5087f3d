package cart

import (
	"context"
	"time"

	"storefront/internal/domain"
)

type CartRepository interface {
	GetOrCreate(ctx context.Context, userID int64) (*domain.Cart, error)
	AddItem(ctx context.Context, cartID int64, productID string, qty, max int) error
	SetQuantity(ctx context.Context, cartID int64, productID string, qty int) error
	RemoveItem(ctx context.Context, cartID int64, productID string) error
	Clear(ctx context.Context, cartID int64) error
	SaveDiscounts(ctx context.Context, cart *domain.Cart) error
}

type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type PromotionRepository interface {
	CouponByCode(ctx context.Context, code string) (*domain.Coupon, error)
	ReferralByCode(ctx context.Context, code string) (*domain.Referral, error)
	ActiveOffer(ctx context.Context, now time.Time) (*domain.FlashOffer, error)
}

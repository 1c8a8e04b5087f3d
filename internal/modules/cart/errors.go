package cart

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrOutOfStock      = errors.New("product out of stock")
	ErrInvalidCoupon   = errors.New("invalid coupon code")
	ErrInvalidReferral = errors.New("invalid referral code")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrMinOrderNotMet  = errors.New("order below coupon minimum")
)

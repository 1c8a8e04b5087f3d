package pricing

import "errors"

var (
	ErrCouponAlreadyApplied   = errors.New("coupon already applied")
	ErrReferralAlreadyApplied = errors.New("referral already applied")
	ErrFlashOfferActive       = errors.New("flash offer active")
	ErrEmptyCode              = errors.New("code is empty")
	ErrItemNotFound           = errors.New("item not in cart")
)

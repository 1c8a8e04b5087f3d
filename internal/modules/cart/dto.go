package cart

type AddItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

type UpdateItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

type ApplyCouponRequest struct {
	CouponCode string `json:"couponCode" binding:"required"`
}

type ApplyReferralRequest struct {
	ReferralCode string `json:"referralCode" binding:"required"`
}

package cart

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/pricing"
	"storefront/internal/pkg/response"
)

type Handler struct {
	service *Service
	log     *zap.Logger
}

func NewHandler(service *Service, log *zap.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// RegisterRoutes expects a group that already runs JWTAuth.
func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	g := protected.Group("/cart")
	{
		g.GET("", h.Get)
		g.POST("/add", h.Add)
		g.PUT("/update", h.Update)
		g.DELETE("/remove/:productId", h.Remove)
		g.DELETE("/clear", h.Clear)
		g.POST("/apply-coupon", h.ApplyCoupon)
		g.DELETE("/remove-coupon", h.RemoveCoupon)
		g.POST("/apply-referral", h.ApplyReferral)
		g.DELETE("/remove-referral", h.RemoveReferral)
	}
}

func (h *Handler) Get(c *gin.Context) {
	cart, err := h.service.Get(c.Request.Context(), c.GetInt64("user_id"))
	h.reply(c, cart, err, "")
}

func (h *Handler) Add(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Product ID is required")
		return
	}
	cart, err := h.service.Add(c.Request.Context(), c.GetInt64("user_id"), req.ProductID, req.Quantity)
	h.reply(c, cart, err, "Added to cart")
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Product ID and quantity are required")
		return
	}
	cart, err := h.service.Update(c.Request.Context(), c.GetInt64("user_id"), req.ProductID, req.Quantity)
	h.reply(c, cart, err, "Cart updated")
}

func (h *Handler) Remove(c *gin.Context) {
	cart, err := h.service.Remove(c.Request.Context(), c.GetInt64("user_id"), c.Param("productId"))
	h.reply(c, cart, err, "Item removed from cart")
}

func (h *Handler) Clear(c *gin.Context) {
	cart, err := h.service.Clear(c.Request.Context(), c.GetInt64("user_id"))
	h.reply(c, cart, err, "Cart cleared")
}

func (h *Handler) ApplyCoupon(c *gin.Context) {
	var req ApplyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Please enter a coupon code")
		return
	}
	cart, err := h.service.ApplyCoupon(c.Request.Context(), c.GetInt64("user_id"), req.CouponCode)
	h.reply(c, cart, err, "Coupon applied successfully!")
}

func (h *Handler) RemoveCoupon(c *gin.Context) {
	cart, err := h.service.RemoveCoupon(c.Request.Context(), c.GetInt64("user_id"))
	h.reply(c, cart, err, "Coupon removed")
}

func (h *Handler) ApplyReferral(c *gin.Context) {
	var req ApplyReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Please enter a referral code")
		return
	}
	cart, err := h.service.ApplyReferral(c.Request.Context(), c.GetInt64("user_id"), req.ReferralCode)
	h.reply(c, cart, err, "Referral applied successfully!")
}

func (h *Handler) RemoveReferral(c *gin.Context) {
	cart, err := h.service.RemoveReferral(c.Request.Context(), c.GetInt64("user_id"))
	h.reply(c, cart, err, "Referral removed")
}

func (h *Handler) reply(c *gin.Context, cart pricing.Cart, err error, message string) {
	if err != nil {
		h.handleError(c, err)
		return
	}
	data := gin.H{"cart": cart}
	if message == "" {
		response.Success(c, http.StatusOK, data)
		return
	}
	response.SuccessMessage(c, http.StatusOK, message, data)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrProductNotFound):
		response.Error(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found")
	case errors.Is(err, pricing.ErrItemNotFound):
		response.Error(c, http.StatusNotFound, "ITEM_NOT_FOUND", "Item not found in cart")
	case errors.Is(err, ErrOutOfStock):
		response.Error(c, http.StatusConflict, "OUT_OF_STOCK", "Product is out of stock")
	case errors.Is(err, ErrEmptyCart):
		response.Error(c, http.StatusBadRequest, "EMPTY_CART", "Your cart is empty")
	case errors.Is(err, pricing.ErrEmptyCode):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Please enter a code")
	case errors.Is(err, ErrInvalidCoupon):
		response.Error(c, http.StatusBadRequest, "INVALID_COUPON", "Invalid coupon code")
	case errors.Is(err, ErrMinOrderNotMet):
		response.Error(c, http.StatusBadRequest, "MIN_ORDER_NOT_MET", "Your order does not meet this coupon's minimum value")
	case errors.Is(err, ErrInvalidReferral):
		response.Error(c, http.StatusBadRequest, "INVALID_REFERRAL", "Invalid referral code")
	case errors.Is(err, pricing.ErrCouponAlreadyApplied):
		response.Error(c, http.StatusConflict, "COUPON_APPLIED", "A coupon has already been applied")
	case errors.Is(err, pricing.ErrReferralAlreadyApplied):
		response.Error(c, http.StatusConflict, "REFERRAL_APPLIED", "A referral has already been applied")
	case errors.Is(err, pricing.ErrFlashOfferActive):
		response.Error(c, http.StatusConflict, "FLASH_OFFER_ACTIVE", "Flash Offer is active, codes can't be applied right now")
	default:
		h.log.Error("cart request failed", zap.Error(err), zap.String("path", c.FullPath()))
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
	}
}

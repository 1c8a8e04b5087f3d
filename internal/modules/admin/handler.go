package admin

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront/internal/modules/offer"
	"storefront/internal/pkg/response"
	"storefront/internal/pricing"
	"storefront/internal/repository"
)

type Handler struct {
	service *Service
	log     *zap.Logger
}

func NewHandler(service *Service, log *zap.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// RegisterRoutes expects a group behind JWTAuth and AdminOnly.
func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	// coupons
	admin.GET("/coupons", h.ListCoupons)
	admin.POST("/coupons", h.CreateCoupon)
	admin.DELETE("/coupons/:id", h.DeleteCoupon)

	// referrals
	admin.GET("/referrals", h.ListReferrals)
	admin.POST("/referrals", h.CreateReferral)
	admin.DELETE("/referrals/:id", h.DeleteReferral)

	// flash offers
	admin.GET("/offers", h.ListOffers)
	admin.POST("/offers", h.CreateOffer)
	admin.POST("/offers/:id/end", h.EndOffer)

	// banners
	admin.GET("/banners", h.ListBanners)
	admin.POST("/banners", h.CreateBanner)
	admin.DELETE("/banners/:id", h.DeleteBanner)
}

func (h *Handler) ListCoupons(c *gin.Context) {
	coupons, err := h.service.Coupons(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"coupons": coupons})
}

// CreateCoupon creates a coupon code.
// @Summary	Create coupon
// @Tags		Admin - Marketing
// @Security	BearerAuth
// @Param		request	body	CouponRequest	true	"coupon"
// @Success	201	{object}	map[string]interface{}
// @Failure	409	{object}	map[string]interface{} "code already exists"
// @Router		/admin/coupons [POST]
func (h *Handler) CreateCoupon(c *gin.Context) {
	var req CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Code and discount type are required")
		return
	}
	coupon, err := h.service.CreateCoupon(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.SuccessMessage(c, http.StatusCreated, "Coupon created", gin.H{"coupon": coupon})
}

func (h *Handler) DeleteCoupon(c *gin.Context) {
	h.deleteByID(c, "Coupon deleted", h.service.DeleteCoupon)
}

func (h *Handler) ListReferrals(c *gin.Context) {
	referrals, err := h.service.Referrals(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"referrals": referrals})
}

func (h *Handler) CreateReferral(c *gin.Context) {
	var req ReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Code and discount type are required")
		return
	}
	ref, err := h.service.CreateReferral(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.SuccessMessage(c, http.StatusCreated, "Referral created", gin.H{"referral": ref})
}

func (h *Handler) DeleteReferral(c *gin.Context) {
	h.deleteByID(c, "Referral deleted", h.service.DeleteReferral)
}

func (h *Handler) ListOffers(c *gin.Context) {
	offers, err := h.service.Offers(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"offers": offers})
}

// CreateOffer starts a flash offer and pushes it to live storefronts.
// @Summary	Create flash offer
// @Tags		Admin - Marketing
// @Security	BearerAuth
// @Router		/admin/offers [POST]
func (h *Handler) CreateOffer(c *gin.Context) {
	var req pricing.FlashOffer
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid flash offer")
		return
	}
	created, err := h.service.CreateOffer(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.SuccessMessage(c, http.StatusCreated, "Flash offer created", gin.H{"offer": created})
}

func (h *Handler) EndOffer(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.EndOffer(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	response.SuccessMessage(c, http.StatusOK, "Flash offer ended", nil)
}

func (h *Handler) ListBanners(c *gin.Context) {
	banners, err := h.service.Banners(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"banners": banners})
}

func (h *Handler) CreateBanner(c *gin.Context) {
	var req BannerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Title and image URL are required")
		return
	}
	banner, err := h.service.CreateBanner(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.SuccessMessage(c, http.StatusCreated, "Banner created", gin.H{"banner": banner})
}

func (h *Handler) DeleteBanner(c *gin.Context) {
	h.deleteByID(c, "Banner deleted", h.service.DeleteBanner)
}

func (h *Handler) deleteByID(c *gin.Context, message string, del func(ctx context.Context, id int64) error) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := del(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	response.SuccessMessage(c, http.StatusOK, message, nil)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid id")
		return 0, false
	}
	return id, true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		response.Error(c, http.StatusConflict, "DUPLICATE_CODE", "A record with this code already exists")
	case errors.Is(err, gorm.ErrRecordNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Record not found")
	case errors.Is(err, ErrInvalidDiscount):
		response.Error(c, http.StatusBadRequest, "INVALID_DISCOUNT", "Flat discounts must be positive and percentages between 0 and 100")
	case errors.Is(err, offer.ErrInvalidOffer):
		response.Error(c, http.StatusBadRequest, "INVALID_OFFER", "Offer needs a title, a rate up to 100 and an end in the future")
	default:
		h.log.Error("admin request failed", zap.Error(err), zap.String("path", c.FullPath()))
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

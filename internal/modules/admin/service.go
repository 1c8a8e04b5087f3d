package admin

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/pricing"
)

var ErrInvalidDiscount = errors.New("invalid discount")

type Service struct {
	promos PromotionRepository
	offers OfferService
}

func NewService(promos PromotionRepository, offers OfferService) *Service {
	return &Service{promos: promos, offers: offers}
}

// -------------------- Coupons --------------------

func (s *Service) Coupons(ctx context.Context) ([]domain.Coupon, error) {
	return s.promos.ListCoupons(ctx)
}

func (s *Service) CreateCoupon(ctx context.Context, req CouponRequest) (*domain.Coupon, error) {
	if err := validateDiscount(req.DiscountType, req.Value); err != nil {
		return nil, err
	}
	if req.MinOrderValue.IsNegative() {
		return nil, ErrInvalidDiscount
	}
	c := &domain.Coupon{
		Code:          strings.TrimSpace(req.Code),
		DiscountType:  req.DiscountType,
		Value:         req.Value,
		MinOrderValue: req.MinOrderValue,
		Active:        activeOr(req.Active),
	}
	if req.ExpiresAt != nil {
		exp := req.ExpiresAt.UTC()
		c.ExpiresAt = &exp
	}
	if err := s.promos.CreateCoupon(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) DeleteCoupon(ctx context.Context, id int64) error {
	return s.promos.DeleteCoupon(ctx, id)
}

// -------------------- Referrals --------------------

func (s *Service) Referrals(ctx context.Context) ([]domain.Referral, error) {
	return s.promos.ListReferrals(ctx)
}

func (s *Service) CreateReferral(ctx context.Context, req ReferralRequest) (*domain.Referral, error) {
	if err := validateDiscount(req.DiscountType, req.Value); err != nil {
		return nil, err
	}
	r := &domain.Referral{
		Code:         strings.TrimSpace(req.Code),
		ReferrerName: strings.TrimSpace(req.ReferrerName),
		DiscountType: req.DiscountType,
		Value:        req.Value,
		Active:       activeOr(req.Active),
	}
	if err := s.promos.CreateReferral(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) DeleteReferral(ctx context.Context, id int64) error {
	return s.promos.DeleteReferral(ctx, id)
}

// -------------------- Flash offers --------------------

func (s *Service) Offers(ctx context.Context) ([]pricing.FlashOffer, error) {
	return s.offers.List(ctx)
}

func (s *Service) CreateOffer(ctx context.Context, in pricing.FlashOffer) (pricing.FlashOffer, error) {
	return s.offers.Create(ctx, in)
}

func (s *Service) EndOffer(ctx context.Context, id int64) error {
	return s.offers.End(ctx, id)
}

// -------------------- Banners --------------------

func (s *Service) Banners(ctx context.Context) ([]domain.Banner, error) {
	return s.promos.ListBanners(ctx)
}

func (s *Service) CreateBanner(ctx context.Context, req BannerRequest) (*domain.Banner, error) {
	b := &domain.Banner{
		Title:    strings.TrimSpace(req.Title),
		ImageURL: strings.TrimSpace(req.ImageURL),
		Link:     strings.TrimSpace(req.Link),
		Position: req.Position,
		Active:   activeOr(req.Active),
	}
	if err := s.promos.CreateBanner(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) DeleteBanner(ctx context.Context, id int64) error {
	return s.promos.DeleteBanner(ctx, id)
}

func validateDiscount(t domain.DiscountType, value decimal.Decimal) error {
	switch t {
	case domain.DiscountFlat:
		if !value.IsPositive() {
			return ErrInvalidDiscount
		}
	case domain.DiscountPercent:
		if !value.IsPositive() || value.GreaterThan(decimal.NewFromInt(100)) {
			return ErrInvalidDiscount
		}
	default:
		return ErrInvalidDiscount
	}
	return nil
}

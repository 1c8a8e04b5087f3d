package repository

import (
	"context"
	"strings"
	"time"

	"storefront/internal/domain"

	"gorm.io/gorm"
)

// PromotionRepository stores coupons, referral codes, flash offers and
// banners.
type PromotionRepository struct {
	db *gorm.DB
}

func NewPromotionRepository(db *gorm.DB) *PromotionRepository {
	return &PromotionRepository{db: db}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (r *PromotionRepository) CouponByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	var c domain.Coupon
	if err := r.db.WithContext(ctx).Where("code = ?", normalizeCode(code)).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PromotionRepository) ListCoupons(ctx context.Context) ([]domain.Coupon, error) {
	var out []domain.Coupon
	return out, r.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error
}

func (r *PromotionRepository) CreateCoupon(ctx context.Context, c *domain.Coupon) error {
	c.Code = normalizeCode(c.Code)
	return uniqueViolation(r.db.WithContext(ctx).Create(c).Error)
}

func (r *PromotionRepository) DeleteCoupon(ctx context.Context, id int64) error {
	return deleteByID(r.db.WithContext(ctx), &domain.Coupon{}, id)
}

func (r *PromotionRepository) ReferralByCode(ctx context.Context, code string) (*domain.Referral, error) {
	var ref domain.Referral
	if err := r.db.WithContext(ctx).Where("code = ?", normalizeCode(code)).First(&ref).Error; err != nil {
		return nil, err
	}
	return &ref, nil
}

func (r *PromotionRepository) ListReferrals(ctx context.Context) ([]domain.Referral, error) {
	var out []domain.Referral
	return out, r.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error
}

func (r *PromotionRepository) CreateReferral(ctx context.Context, ref *domain.Referral) error {
	ref.Code = normalizeCode(ref.Code)
	return uniqueViolation(r.db.WithContext(ctx).Create(ref).Error)
}

func (r *PromotionRepository) DeleteReferral(ctx context.Context, id int64) error {
	return deleteByID(r.db.WithContext(ctx), &domain.Referral{}, id)
}

// ActiveOffer returns the offer running at now, the latest-ending one if
// several overlap, or nil.
func (r *PromotionRepository) ActiveOffer(ctx context.Context, now time.Time) (*domain.FlashOffer, error) {
	var offers []domain.FlashOffer
	err := r.db.WithContext(ctx).
		Where("starts_at <= ? AND ends_at > ? AND rate > 0", now, now).
		Order("ends_at DESC").
		Limit(1).
		Find(&offers).Error
	if err != nil || len(offers) == 0 {
		return nil, err
	}
	return &offers[0], nil
}

func (r *PromotionRepository) ListOffers(ctx context.Context) ([]domain.FlashOffer, error) {
	var out []domain.FlashOffer
	return out, r.db.WithContext(ctx).Order("starts_at DESC").Find(&out).Error
}

func (r *PromotionRepository) CreateOffer(ctx context.Context, o *domain.FlashOffer) error {
	return r.db.WithContext(ctx).Create(o).Error
}

// EndOffer moves the offer's end to now. Offers that already ended are
// left alone.
func (r *PromotionRepository) EndOffer(ctx context.Context, id int64, now time.Time) error {
	res := r.db.WithContext(ctx).Model(&domain.FlashOffer{}).
		Where("id = ?", id).
		Update("ends_at", gorm.Expr("CASE WHEN ends_at > ? THEN ? ELSE ends_at END", now, now))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PromotionRepository) ActiveBanners(ctx context.Context) ([]domain.Banner, error) {
	var out []domain.Banner
	return out, r.db.WithContext(ctx).Where("active = ?", true).Order("position, id").Find(&out).Error
}

func (r *PromotionRepository) ListBanners(ctx context.Context) ([]domain.Banner, error) {
	var out []domain.Banner
	return out, r.db.WithContext(ctx).Order("position, id").Find(&out).Error
}

func (r *PromotionRepository) CreateBanner(ctx context.Context, b *domain.Banner) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *PromotionRepository) DeleteBanner(ctx context.Context, id int64) error {
	return deleteByID(r.db.WithContext(ctx), &domain.Banner{}, id)
}

func deleteByID(db *gorm.DB, model any, id int64) error {
	res := db.Delete(model, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

package cart

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront/internal/domain"
	"storefront/internal/pricing"
)

// Service keeps each user's server-side cart. Discount amounts are stored
// on the cart and recomputed on every read, so they follow changes to the
// lines and to the codes themselves.
type Service struct {
	carts    CartRepository
	products ProductRepository
	promos   PromotionRepository
	now      func() time.Time
	log      *zap.Logger
}

func NewService(carts CartRepository, products ProductRepository, promos PromotionRepository, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		carts:    carts,
		products: products,
		promos:   promos,
		now:      func() time.Time { return time.Now().UTC() },
		log:      log,
	}
}

func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) Get(ctx context.Context, userID int64) (pricing.Cart, error) {
	c, err := s.load(ctx, userID)
	if err != nil {
		return pricing.Cart{}, err
	}
	return c.Pricing(), nil
}

func (s *Service) Add(ctx context.Context, userID int64, productID string, qty int) (pricing.Cart, error) {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pricing.Cart{}, ErrProductNotFound
		}
		return pricing.Cart{}, err
	}
	if p.Stock <= 0 {
		return pricing.Cart{}, ErrOutOfStock
	}

	c, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return pricing.Cart{}, err
	}
	if err := s.carts.AddItem(ctx, c.ID, productID, pricing.ClampQuantity(qty), pricing.MaxQuantity); err != nil {
		return pricing.Cart{}, err
	}
	return s.Get(ctx, userID)
}

func (s *Service) Update(ctx context.Context, userID int64, productID string, qty int) (pricing.Cart, error) {
	c, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return pricing.Cart{}, err
	}
	if err := s.carts.SetQuantity(ctx, c.ID, productID, pricing.ClampQuantity(qty)); err != nil {
		return pricing.Cart{}, itemErr(err)
	}
	return s.Get(ctx, userID)
}

func (s *Service) Remove(ctx context.Context, userID int64, productID string) (pricing.Cart, error) {
	c, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return pricing.Cart{}, err
	}
	if err := s.carts.RemoveItem(ctx, c.ID, productID); err != nil {
		return pricing.Cart{}, itemErr(err)
	}
	return s.Get(ctx, userID)
}

func (s *Service) Clear(ctx context.Context, userID int64) (pricing.Cart, error) {
	c, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return pricing.Cart{}, err
	}
	if err := s.carts.Clear(ctx, c.ID); err != nil {
		return pricing.Cart{}, err
	}
	return pricing.Cart{Items: []pricing.LineItem{}}, nil
}

// ApplyCoupon refuses while a referral or another coupon is applied, or
// while a flash offer runs.
func (s *Service) ApplyCoupon(ctx context.Context, userID int64, code string) (pricing.Cart, error) {
	code = normalizeCode(code)
	if code == "" {
		return pricing.Cart{}, pricing.ErrEmptyCode
	}
	c, m, err := s.loadWithMechanisms(ctx, userID)
	if err != nil {
		return pricing.Cart{}, err
	}
	if err := pricing.CheckCoupon(m, s.now()); err != nil {
		return pricing.Cart{}, err
	}
	view := c.Pricing()
	if view.IsEmpty() {
		return pricing.Cart{}, ErrEmptyCart
	}

	coupon, err := s.promos.CouponByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pricing.Cart{}, ErrInvalidCoupon
		}
		return pricing.Cart{}, err
	}
	if !coupon.Usable(s.now()) {
		return pricing.Cart{}, ErrInvalidCoupon
	}
	subtotal := view.Subtotal()
	if subtotal.LessThan(coupon.MinOrderValue) {
		return pricing.Cart{}, ErrMinOrderNotMet
	}

	c.CouponCode = coupon.Code
	c.CouponAmount = capped(coupon.DiscountType.Amount(coupon.Value, subtotal), subtotal)
	if err := s.carts.SaveDiscounts(ctx, c); err != nil {
		return pricing.Cart{}, err
	}
	return c.Pricing(), nil
}

func (s *Service) RemoveCoupon(ctx context.Context, userID int64) (pricing.Cart, error) {
	c, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return pricing.Cart{}, err
	}
	c.CouponCode, c.CouponAmount = "", decimal.Zero
	if err := s.carts.SaveDiscounts(ctx, c); err != nil {
		return pricing.Cart{}, err
	}
	return s.Get(ctx, userID)
}

func (s *Service) ApplyReferral(ctx context.Context, userID int64, code string) (pricing.Cart, error) {
	code = normalizeCode(code)
	if code == "" {
		return pricing.Cart{}, pricing.ErrEmptyCode
	}
	c, m, err := s.loadWithMechanisms(ctx, userID)
	if err != nil {
		return pricing.Cart{}, err
	}
	if err := pricing.CheckReferral(m, s.now()); err != nil {
		return pricing.Cart{}, err
	}
	view := c.Pricing()
	if view.IsEmpty() {
		return pricing.Cart{}, ErrEmptyCart
	}

	ref, err := s.promos.ReferralByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pricing.Cart{}, ErrInvalidReferral
		}
		return pricing.Cart{}, err
	}
	if !ref.Active {
		return pricing.Cart{}, ErrInvalidReferral
	}

	subtotal := view.Subtotal()
	c.ReferralCode = ref.Code
	c.ReferralAmount = capped(ref.DiscountType.Amount(ref.Value, subtotal), subtotal)
	if err := s.carts.SaveDiscounts(ctx, c); err != nil {
		return pricing.Cart{}, err
	}
	return c.Pricing(), nil
}

func (s *Service) RemoveReferral(ctx context.Context, userID int64) (pricing.Cart, error) {
	c, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return pricing.Cart{}, err
	}
	c.ReferralCode, c.ReferralAmount = "", decimal.Zero
	if err := s.carts.SaveDiscounts(ctx, c); err != nil {
		return pricing.Cart{}, err
	}
	return s.Get(ctx, userID)
}

func (s *Service) loadWithMechanisms(ctx context.Context, userID int64) (*domain.Cart, pricing.Mechanisms, error) {
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, pricing.Mechanisms{}, err
	}
	offer, err := s.promos.ActiveOffer(ctx, s.now())
	if err != nil {
		return nil, pricing.Mechanisms{}, err
	}
	view := c.Pricing()
	return c, view.Mechanisms(offer.Pricing()), nil
}

// load fetches the cart and brings its stored discounts up to date.
func (s *Service) load(ctx context.Context, userID int64) (*domain.Cart, error) {
	c, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	changed, err := s.reprice(ctx, c)
	if err != nil {
		return nil, err
	}
	if changed {
		if err := s.carts.SaveDiscounts(ctx, c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// reprice drops codes that no longer apply and recomputes the rest against
// the current subtotal.
func (s *Service) reprice(ctx context.Context, c *domain.Cart) (bool, error) {
	view := c.Pricing()
	subtotal := view.Subtotal()
	now := s.now()
	changed := false

	if c.CouponCode != "" {
		amount := decimal.Zero
		coupon, err := s.promos.CouponByCode(ctx, c.CouponCode)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
		case err != nil:
			return false, err
		case coupon.Usable(now) && !view.IsEmpty() && subtotal.GreaterThanOrEqual(coupon.MinOrderValue):
			amount = capped(coupon.DiscountType.Amount(coupon.Value, subtotal), subtotal)
		}
		if amount.IsZero() {
			s.log.Info("dropping coupon that no longer applies", zap.String("code", c.CouponCode), zap.Int64("cart_id", c.ID))
			c.CouponCode, c.CouponAmount = "", decimal.Zero
			changed = true
		} else if !amount.Equal(c.CouponAmount) {
			c.CouponAmount = amount
			changed = true
		}
	}

	if c.ReferralCode != "" {
		amount := decimal.Zero
		ref, err := s.promos.ReferralByCode(ctx, c.ReferralCode)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
		case err != nil:
			return false, err
		case ref.Active && !view.IsEmpty():
			amount = capped(ref.DiscountType.Amount(ref.Value, subtotal), subtotal)
		}
		if amount.IsZero() {
			c.ReferralCode, c.ReferralAmount = "", decimal.Zero
			changed = true
		} else if !amount.Equal(c.ReferralAmount) {
			c.ReferralAmount = amount
			changed = true
		}
	}
	return changed, nil
}

func itemErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pricing.ErrItemNotFound
	}
	return err
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func capped(amount, subtotal decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}
	if amount.GreaterThan(subtotal) {
		return subtotal
	}
	return amount
}

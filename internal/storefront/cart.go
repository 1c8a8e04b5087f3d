package storefront

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"storefront/internal/client"
	"storefront/internal/pricing"
)

type CartOptions struct {
	Shipping pricing.ShippingPolicy
	// Now defaults to time.Now.
	Now    func() time.Time
	Logger *zap.Logger
}

// CartStore mirrors the signed-in user's server-side cart and the running
// flash offer. Every mutation is confirmed by the backend first. The store
// takes the cart the backend returns, or replays the confirmed edit on its
// own copy when the response carries none.
type CartStore struct {
	api      CartAPI
	shipping pricing.ShippingPolicy
	now      func() time.Time
	log      *zap.Logger

	mu    sync.RWMutex
	cart  *pricing.Cart
	offer pricing.FlashOffer
}

func NewCartStore(api CartAPI, opts CartOptions) *CartStore {
	if opts.Shipping.FreeThreshold.IsZero() && opts.Shipping.Charge.IsZero() {
		opts.Shipping = pricing.DefaultShipping()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &CartStore{
		api:      api,
		shipping: opts.Shipping,
		now:      opts.Now,
		log:      opts.Logger,
		cart:     &pricing.Cart{},
	}
}

// Cart returns a copy of the current cart.
func (s *CartStore) Cart() pricing.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := *s.cart
	cp.Items = append([]pricing.LineItem(nil), s.cart.Items...)
	return cp
}

func (s *CartStore) Offer() pricing.FlashOffer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.offer
}

func (s *CartStore) Fetch(ctx context.Context) error {
	cart, err := s.api.Cart(ctx)
	if err != nil {
		return rejectRemote(err, "Failed to load cart", "Failed to load cart")
	}
	s.setCart(cart)
	return nil
}

func (s *CartStore) Add(ctx context.Context, productID string, qty int) (string, error) {
	res, err := s.api.AddToCart(ctx, productID, pricing.ClampQuantity(qty))
	if err != nil {
		return "", rejectRemote(err, "Failed to add to cart", "Failed to add to cart")
	}
	return s.apply(res, "Added to cart", func(c *pricing.Cart) {
		c.Upsert(productID, nil, qty)
	}), nil
}

func (s *CartStore) UpdateQuantity(ctx context.Context, productID string, qty int) error {
	cart := s.Cart()
	if _, ok := cart.Item(productID); !ok {
		return reject("Failed to update quantity", pricing.ErrItemNotFound)
	}
	qty = pricing.ClampQuantity(qty)
	res, err := s.api.UpdateCartItem(ctx, productID, qty)
	if err != nil {
		return rejectRemote(err, "Failed to update quantity", "Failed to update quantity")
	}
	s.apply(res, "", func(c *pricing.Cart) {
		_ = c.SetQuantity(productID, qty)
	})
	return nil
}

// SetQuantityInput takes the raw text of a quantity field.
func (s *CartStore) SetQuantityInput(ctx context.Context, productID, raw string) error {
	return s.UpdateQuantity(ctx, productID, pricing.ParseQuantity(raw))
}

func (s *CartStore) RemoveItem(ctx context.Context, productID string) (string, error) {
	if _, err := s.api.RemoveCartItem(ctx, productID); err != nil {
		return "", rejectRemote(err, "Failed to remove item", "Failed to remove item")
	}
	// the line is gone even if the re-fetch below fails
	s.edit(func(c *pricing.Cart) {
		_ = c.Remove(productID)
	})
	if err := s.Fetch(ctx); err != nil {
		return "", err
	}
	return "Item removed from cart", nil
}

func (s *CartStore) Clear(ctx context.Context) (string, error) {
	res, err := s.api.ClearCart(ctx)
	if err != nil {
		return "", rejectRemote(err, "Failed to clear cart", "Failed to clear cart")
	}
	s.apply(res, "", func(c *pricing.Cart) {
		*c = pricing.Cart{}
	})
	return "Cart cleared", nil
}

// ApplyCoupon checks discount precedence locally before asking the backend
// to validate the code. A refused code leaves the cart untouched.
func (s *CartStore) ApplyCoupon(ctx context.Context, code string) (string, error) {
	code = normalizeCode(code)
	if code == "" {
		return "", reject("Please enter a coupon code", pricing.ErrEmptyCode)
	}
	if err := pricing.CheckCoupon(s.mechanisms(), s.now()); err != nil {
		return "", reject(couponRefusal(err), err)
	}

	res, err := s.api.ApplyCoupon(ctx, code)
	if err != nil {
		return "", rejectRemote(err, "Invalid coupon code", "Something went wrong while applying coupon")
	}
	return s.apply(res, "Coupon applied successfully!", nil), nil
}

func (s *CartStore) RemoveCoupon(ctx context.Context) (string, error) {
	if _, err := s.api.RemoveCoupon(ctx); err != nil {
		return "", rejectRemote(err, "Failed to remove coupon", "Failed to remove coupon")
	}
	s.mu.Lock()
	s.cart.ClearCoupon()
	s.mu.Unlock()
	if err := s.Fetch(ctx); err != nil {
		return "", err
	}
	return "Coupon removed", nil
}

func (s *CartStore) ApplyReferral(ctx context.Context, code string) (string, error) {
	code = normalizeCode(code)
	if code == "" {
		return "", reject("Please enter a referral code", pricing.ErrEmptyCode)
	}
	if err := pricing.CheckReferral(s.mechanisms(), s.now()); err != nil {
		return "", reject(referralRefusal(err), err)
	}

	res, err := s.api.ApplyReferral(ctx, code)
	if err != nil {
		return "", rejectRemote(err, "Invalid referral code", "Something went wrong while applying referral")
	}
	return s.apply(res, "Referral applied successfully!", nil), nil
}

func (s *CartStore) RemoveReferral(ctx context.Context) (string, error) {
	if _, err := s.api.RemoveReferral(ctx); err != nil {
		return "", rejectRemote(err, "Failed to remove referral", "Failed to remove referral")
	}
	s.mu.Lock()
	s.cart.ClearReferral()
	s.mu.Unlock()
	if err := s.Fetch(ctx); err != nil {
		return "", err
	}
	return "Referral removed", nil
}

// RefreshOffer reloads the running flash offer. A failure keeps the last
// known offer; it expires on its own when its window closes.
func (s *CartStore) RefreshOffer(ctx context.Context) error {
	offer, err := s.api.ActiveOffer(ctx)
	if err != nil {
		s.log.Warn("fetching active offer", zap.Error(err))
		return err
	}
	s.setOffer(offer)
	return nil
}

// WatchOffer keeps the offer current from the live feed until ctx is done.
func (s *CartStore) WatchOffer(ctx context.Context) error {
	err := s.api.WatchOffers(ctx, s.setOffer)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (s *CartStore) Summary() pricing.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return pricing.Summarize(s.cart, s.cart.Mechanisms(s.offer), s.shipping, s.now())
}

// TimeLeft is the flash offer's remaining time, zero once it has ended.
func (s *CartStore) TimeLeft() time.Duration {
	return s.Offer().TimeLeft(s.now())
}

func (s *CartStore) Countdown() string {
	return s.Offer().Countdown(s.now())
}

func (s *CartStore) mechanisms() pricing.Mechanisms {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Mechanisms(s.offer)
}

// apply installs the backend's cart, or runs edit on the current copy when
// the response has no cart.
func (s *CartStore) apply(res *client.CartResult, fallback string, edit func(*pricing.Cart)) string {
	switch {
	case res.Cart != nil:
		s.setCart(res.Cart)
	case edit != nil:
		s.edit(edit)
	}
	if res.Message != "" {
		return res.Message
	}
	return fallback
}

func (s *CartStore) setCart(c *pricing.Cart) {
	if c == nil {
		c = &pricing.Cart{}
	}
	s.mu.Lock()
	s.cart = c
	s.mu.Unlock()
}

func (s *CartStore) edit(fn func(*pricing.Cart)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *s.cart
	cp.Items = append([]pricing.LineItem(nil), s.cart.Items...)
	fn(&cp)
	s.cart = &cp
}

func (s *CartStore) setOffer(o pricing.FlashOffer) {
	s.mu.Lock()
	s.offer = o
	s.mu.Unlock()
	s.log.Debug("flash offer updated", zap.Bool("active", o.Active(s.now())))
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func couponRefusal(err error) string {
	switch {
	case errors.Is(err, pricing.ErrCouponAlreadyApplied):
		return "Coupon has already been applied."
	case errors.Is(err, pricing.ErrReferralAlreadyApplied):
		return "You can't use a coupon when a referral is applied."
	default:
		return "Flash Offer is active, you can't apply a coupon right now."
	}
}

func referralRefusal(err error) string {
	switch {
	case errors.Is(err, pricing.ErrCouponAlreadyApplied):
		return "You can't use a referral when a coupon is applied."
	case errors.Is(err, pricing.ErrReferralAlreadyApplied):
		return "Referral has already been applied."
	default:
		return "Flash Offer is active, you can't apply a referral right now."
	}
}

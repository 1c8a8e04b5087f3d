package storefront

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storefront/internal/client"
	"storefront/internal/pricing"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func money(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func cartWith(price string, qty int) *pricing.Cart {
	return &pricing.Cart{Items: []pricing.LineItem{{
		ProductID: "p1",
		Product:   &pricing.Product{ID: "p1", Title: "Kurta", Price: money(price)},
		Quantity:  qty,
	}}}
}

func newStore(t *testing.T, api *mockCartAPI, initial *pricing.Cart) *CartStore {
	t.Helper()
	s := NewCartStore(api, CartOptions{Now: func() time.Time { return fixedNow }})
	if initial != nil {
		api.On("Cart", mock.Anything).Return(initial, nil).Once()
		require.NoError(t, s.Fetch(context.Background()))
	}
	return s
}

func flash(rate int64) pricing.FlashOffer {
	return pricing.FlashOffer{
		ID:     "o1",
		Title:  "Weekend sale",
		Rate:   decimal.NewFromInt(rate),
		EndsAt: fixedNow.Add(90 * time.Second),
	}
}

func TestCartStore_ApplyCoupon_NormalizesCode(t *testing.T) {
	api := new(mockCartAPI)
	s := newStore(t, api, cartWith("500", 1))

	applied := cartWith("500", 1)
	applied.CouponCode, applied.CouponAmount = "SAVE50", money("50")
	api.On("ApplyCoupon", mock.Anything, "SAVE50").
		Return(&client.CartResult{Cart: applied}, nil).Once()

	msg, err := s.ApplyCoupon(context.Background(), "  save50 ")
	require.NoError(t, err)
	assert.Equal(t, "Coupon applied successfully!", msg)

	sum := s.Summary()
	assert.Equal(t, pricing.MechanismCoupon, sum.Discount.Applied)
	assert.Equal(t, "Discount (SAVE50)", sum.Discount.Label)
	assert.True(t, sum.Discount.Amount.Equal(money("50")))
	api.AssertExpectations(t)
}

func TestCartStore_ApplyCoupon_EmptyCode(t *testing.T) {
	api := new(mockCartAPI)
	s := newStore(t, api, nil)

	_, err := s.ApplyCoupon(context.Background(), "   ")
	assert.ErrorIs(t, err, pricing.ErrEmptyCode)
	api.AssertNotCalled(t, "ApplyCoupon", mock.Anything, mock.Anything)
}

func TestCartStore_ReferralRejectedWhileCouponApplied(t *testing.T) {
	api := new(mockCartAPI)
	initial := cartWith("500", 1)
	initial.CouponCode, initial.CouponAmount = "SAVE50", money("50")
	s := newStore(t, api, initial)

	_, err := s.ApplyReferral(context.Background(), "friend10")
	require.Error(t, err)
	assert.ErrorIs(t, err, pricing.ErrCouponAlreadyApplied)
	assert.Equal(t, "You can't use a referral when a coupon is applied.", Notice(err, ""))

	assert.Equal(t, "SAVE50", s.Cart().CouponCode)
	api.AssertNotCalled(t, "ApplyReferral", mock.Anything, mock.Anything)
}

func TestCartStore_FlashOfferBlocksCodes(t *testing.T) {
	api := new(mockCartAPI)
	s := newStore(t, api, cartWith("250", 2))
	api.On("ActiveOffer", mock.Anything).Return(flash(10), nil).Once()
	require.NoError(t, s.RefreshOffer(context.Background()))

	_, err := s.ApplyCoupon(context.Background(), "SAVE50")
	assert.ErrorIs(t, err, pricing.ErrFlashOfferActive)
	_, err = s.ApplyReferral(context.Background(), "FRIEND")
	assert.ErrorIs(t, err, pricing.ErrFlashOfferActive)

	sum := s.Summary()
	assert.Equal(t, pricing.MechanismFlash, sum.Discount.Applied)
	assert.Equal(t, "Discount (Flash Offer)", sum.Discount.Label)
	assert.True(t, sum.Discount.Amount.Equal(money("50")))
	assert.Equal(t, 90*time.Second, s.TimeLeft())
	assert.Equal(t, "1:30", s.Countdown())
}

func TestCartStore_ExpiredFlashOfferAllowsCoupon(t *testing.T) {
	api := new(mockCartAPI)
	s := newStore(t, api, cartWith("250", 2))

	ended := flash(10)
	ended.EndsAt = fixedNow.Add(-time.Second)
	api.On("WatchOffers", mock.Anything, mock.Anything).
		Return([]pricing.FlashOffer{flash(10), ended}, context.Canceled).Once()
	require.NoError(t, s.WatchOffer(context.Background()))
	assert.Zero(t, s.TimeLeft())

	api.On("ApplyCoupon", mock.Anything, "SAVE50").
		Return(&client.CartResult{Cart: cartWith("250", 2), Message: "Coupon SAVE50 applied"}, nil).Once()
	msg, err := s.ApplyCoupon(context.Background(), "SAVE50")
	require.NoError(t, err)
	assert.Equal(t, "Coupon SAVE50 applied", msg)
}

func TestCartStore_BackendRejectionLeavesStateUnchanged(t *testing.T) {
	api := new(mockCartAPI)
	s := newStore(t, api, cartWith("500", 1))
	before := s.Cart()

	api.On("ApplyCoupon", mock.Anything, "BOGUS").
		Return(nil, &client.APIError{Status: http.StatusBadRequest, Message: "Coupon not found"}).Once()

	_, err := s.ApplyCoupon(context.Background(), "bogus")
	require.Error(t, err)
	assert.Equal(t, "Coupon not found", Notice(err, ""))
	assert.True(t, client.IsValidation(err))
	assert.Equal(t, before, s.Cart())
}

func TestCartStore_GenericFailureMessage(t *testing.T) {
	api := new(mockCartAPI)
	s := newStore(t, api, cartWith("500", 1))
	api.On("ApplyReferral", mock.Anything, "FRIEND").
		Return(nil, errors.New("connection reset")).Once()

	_, err := s.ApplyReferral(context.Background(), "friend")
	assert.Equal(t, "Something went wrong while applying referral", Notice(err, ""))
}

func TestCartStore_SetQuantityInputClamps(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{"0", 1},
		{"6", 5},
		{"abc", 1},
		{"3", 3},
		{"4kg", 4},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			api := new(mockCartAPI)
			s := newStore(t, api, cartWith("100", 2))
			api.On("UpdateCartItem", mock.Anything, "p1", tc.want).
				Return(&client.CartResult{Cart: cartWith("100", tc.want)}, nil).Once()

			require.NoError(t, s.SetQuantityInput(context.Background(), "p1", tc.raw))
			assert.Equal(t, tc.want, s.Cart().Items[0].Quantity)
			api.AssertExpectations(t)
		})
	}
}

func TestCartStore_UpdateQuantity_UnknownItem(t *testing.T) {
	api := new(mockCartAPI)
	s := newStore(t, api, cartWith("100", 2))

	err := s.UpdateQuantity(context.Background(), "nope", 2)
	assert.ErrorIs(t, err, pricing.ErrItemNotFound)
	api.AssertNotCalled(t, "UpdateCartItem", mock.Anything, mock.Anything, mock.Anything)
}

func TestCartStore_AddClampsQuantity(t *testing.T) {
	api := new(mockCartAPI)
	s := newStore(t, api, nil)
	api.On("AddToCart", mock.Anything, "p1", 5).
		Return(&client.CartResult{Cart: cartWith("100", 5), Message: "Product added to cart"}, nil).Once()

	msg, err := s.Add(context.Background(), "p1", 9)
	require.NoError(t, err)
	assert.Equal(t, "Product added to cart", msg)
}

func TestCartStore_RemoveCouponRefetches(t *testing.T) {
	api := new(mockCartAPI)
	initial := cartWith("500", 1)
	initial.CouponCode, initial.CouponAmount = "SAVE50", money("50")
	s := newStore(t, api, initial)

	api.On("RemoveCoupon", mock.Anything).Return(&client.CartResult{Cart: cartWith("500", 1)}, nil).Once()
	api.On("Cart", mock.Anything).Return(cartWith("500", 1), nil).Once()

	msg, err := s.RemoveCoupon(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Coupon removed", msg)
	assert.Empty(t, s.Cart().CouponCode)
	assert.Equal(t, pricing.MechanismNone, s.Summary().Discount.Applied)
	api.AssertExpectations(t)
}

func TestCartStore_RemoveItemRefetches(t *testing.T) {
	api := new(mockCartAPI)
	s := newStore(t, api, cartWith("500", 1))

	api.On("RemoveCartItem", mock.Anything, "p1").Return(&client.CartResult{Cart: &pricing.Cart{}}, nil).Once()
	api.On("Cart", mock.Anything).Return(&pricing.Cart{}, nil).Once()

	_, err := s.RemoveItem(context.Background(), "p1")
	require.NoError(t, err)
	c := s.Cart()
	assert.True(t, c.IsEmpty())
	api.AssertExpectations(t)
}

func TestCartStore_ShippingNotes(t *testing.T) {
	api := new(mockCartAPI)

	s := newStore(t, api, cartWith("250", 1))
	sum := s.Summary()
	assert.Equal(t, "Add ₹29.00 more to get FREE shipping!", sum.ShippingNote())
	assert.True(t, sum.Shipping.Equal(money("40")))
	assert.True(t, sum.Total.Equal(money("290")))

	s = newStore(t, api, cartWith("280", 1))
	sum = s.Summary()
	assert.Equal(t, "Free shipping on this order!", sum.ShippingNote())
	assert.True(t, sum.Shipping.IsZero())
}

func TestCartStore_ReplaysConfirmedEditWhenResponseHasNoCart(t *testing.T) {
	ctx := context.Background()
	api := new(mockCartAPI)
	s := newStore(t, api, cartWith("100", 2))

	api.On("AddToCart", mock.Anything, "p1", 2).Return(&client.CartResult{Message: "Added"}, nil).Once()
	msg, err := s.Add(ctx, "p1", 2)
	require.NoError(t, err)
	assert.Equal(t, "Added", msg)
	assert.Equal(t, 4, s.Cart().Items[0].Quantity)
	assert.Equal(t, "Kurta", s.Cart().Items[0].Product.Title)

	api.On("UpdateCartItem", mock.Anything, "p1", 5).Return(&client.CartResult{}, nil).Once()
	require.NoError(t, s.UpdateQuantity(ctx, "p1", 8))
	assert.Equal(t, 5, s.Cart().Items[0].Quantity)
	assert.True(t, s.Summary().Subtotal.Equal(money("500")))

	api.On("ClearCart", mock.Anything).Return(&client.CartResult{}, nil).Once()
	_, err = s.Clear(ctx)
	require.NoError(t, err)
	c := s.Cart()
	assert.True(t, c.IsEmpty())
	api.AssertExpectations(t)
}

func TestCartStore_RemoveItemKeepsRemovalWhenRefetchFails(t *testing.T) {
	api := new(mockCartAPI)
	s := newStore(t, api, cartWith("500", 1))

	api.On("RemoveCartItem", mock.Anything, "p1").Return(&client.CartResult{}, nil).Once()
	api.On("Cart", mock.Anything).Return(nil, errors.New("connection reset")).Once()

	_, err := s.RemoveItem(context.Background(), "p1")
	require.Error(t, err)
	c := s.Cart()
	assert.True(t, c.IsEmpty())
	api.AssertExpectations(t)
}

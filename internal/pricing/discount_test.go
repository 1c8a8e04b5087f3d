package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func runningFlash(rate int64) FlashOffer {
	return FlashOffer{
		Rate:     decimal.NewFromInt(rate),
		StartsAt: now.Add(-time.Minute),
		EndsAt:   now.Add(10 * time.Minute),
	}
}

func TestCheckReferral_RejectedWhileCouponApplied(t *testing.T) {
	m := Mechanisms{Coupon: &AppliedCode{Code: "SAVE10", Amount: decimal.NewFromInt(10)}}

	assert.ErrorIs(t, CheckReferral(m, now), ErrCouponAlreadyApplied)
	assert.ErrorIs(t, CheckCoupon(m, now), ErrCouponAlreadyApplied)

	out := ComputeDiscount(decimal.NewFromInt(200), m, now)
	assert.Equal(t, MechanismCoupon, out.Applied)
	assert.Equal(t, "Discount (SAVE10)", out.Label)
}

func TestCheckCoupon_RejectedWhileReferralApplied(t *testing.T) {
	m := Mechanisms{Referral: &AppliedCode{Code: "FRIEND", Amount: decimal.NewFromInt(25)}}

	assert.ErrorIs(t, CheckCoupon(m, now), ErrReferralAlreadyApplied)
	assert.ErrorIs(t, CheckReferral(m, now), ErrReferralAlreadyApplied)
}

func TestCheckApply_FlashOfferBlocksCodes(t *testing.T) {
	m := Mechanisms{Flash: runningFlash(10)}

	assert.ErrorIs(t, CheckCoupon(m, now), ErrFlashOfferActive)
	assert.ErrorIs(t, CheckReferral(m, now), ErrFlashOfferActive)

	out := ComputeDiscount(decimal.NewFromInt(250), m, now)
	assert.Equal(t, MechanismFlash, out.Applied)
	assert.True(t, decimal.NewFromInt(25).Equal(out.Amount), out.Amount.String())
	assert.Equal(t, "Discount (Flash Offer)", out.Label)
}

func TestCheckApply_ExpiredFlashAllowsCodes(t *testing.T) {
	m := Mechanisms{Flash: runningFlash(10)}
	later := now.Add(11 * time.Minute)

	assert.NoError(t, CheckCoupon(m, later))
	assert.NoError(t, CheckReferral(m, later))
	assert.Equal(t, MechanismNone, ComputeDiscount(decimal.NewFromInt(250), m, later).Applied)
}

func TestComputeDiscount_NoMechanism(t *testing.T) {
	out := ComputeDiscount(decimal.NewFromInt(250), Mechanisms{}, now)

	assert.Equal(t, MechanismNone, out.Applied)
	assert.True(t, out.Amount.IsZero())
	assert.Empty(t, out.Label)
}

func TestComputeDiscount_CouponCappedAtSubtotal(t *testing.T) {
	m := Mechanisms{Coupon: &AppliedCode{Code: "BIG", Amount: decimal.NewFromInt(500)}}

	out := ComputeDiscount(decimal.NewFromInt(120), m, now)
	assert.True(t, decimal.NewFromInt(120).Equal(out.Amount))
}

func TestComputeDiscount_LabelPrecedence(t *testing.T) {
	m := Mechanisms{
		Coupon:   &AppliedCode{Code: "C1", Amount: decimal.NewFromInt(5)},
		Referral: &AppliedCode{Code: "R1", Amount: decimal.NewFromInt(7)},
		Flash:    runningFlash(50),
	}
	assert.Equal(t, MechanismCoupon, ComputeDiscount(decimal.NewFromInt(100), m, now).Applied)

	m.Coupon = nil
	assert.Equal(t, MechanismReferral, ComputeDiscount(decimal.NewFromInt(100), m, now).Applied)
}

func TestFlashOffer_Countdown(t *testing.T) {
	f := FlashOffer{Rate: decimal.NewFromInt(5), EndsAt: now.Add(3*time.Minute + 7*time.Second + 400*time.Millisecond)}

	assert.Equal(t, "3:07", f.Countdown(now))
	assert.Equal(t, "0:00", f.Countdown(now.Add(time.Hour)))
	assert.False(t, f.Active(now.Add(time.Hour)))
}

func TestFlashOffer_NotStartedIsInactive(t *testing.T) {
	f := FlashOffer{Rate: decimal.NewFromInt(5), StartsAt: now.Add(time.Minute), EndsAt: now.Add(time.Hour)}

	assert.False(t, f.Active(now))
	assert.True(t, f.RateAt(now).IsZero())
}

package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

type Mechanism string

const (
	MechanismNone     Mechanism = ""
	MechanismCoupon   Mechanism = "coupon"
	MechanismReferral Mechanism = "referral"
	MechanismFlash    Mechanism = "flash"
)

type AppliedCode struct {
	Code   string          `json:"code"`
	Amount decimal.Decimal `json:"amount"`
}

// Mechanisms is the independently tracked discount state of a cart.
type Mechanisms struct {
	Coupon   *AppliedCode
	Referral *AppliedCode
	Flash    FlashOffer
}

// Outcome is derived on demand and never stored.
type Outcome struct {
	Applied Mechanism
	Amount  decimal.Decimal
	Label   string
}

// CheckCoupon reports whether a coupon may be applied on top of m.
func CheckCoupon(m Mechanisms, now time.Time) error {
	return checkApply(m, now)
}

// CheckReferral reports whether a referral may be applied on top of m.
func CheckReferral(m Mechanisms, now time.Time) error {
	return checkApply(m, now)
}

// Rules are evaluated in order; at most one mechanism is ever active.
func checkApply(m Mechanisms, now time.Time) error {
	switch {
	case m.Coupon != nil:
		return ErrCouponAlreadyApplied
	case m.Referral != nil:
		return ErrReferralAlreadyApplied
	case m.Flash.Active(now):
		return ErrFlashOfferActive
	}
	return nil
}

// ComputeDiscount picks the single discount that applies to subtotal.
// Label precedence is coupon, then referral, then flash.
func ComputeDiscount(subtotal decimal.Decimal, m Mechanisms, now time.Time) Outcome {
	switch {
	case m.Coupon != nil:
		return Outcome{
			Applied: MechanismCoupon,
			Amount:  capAt(m.Coupon.Amount, subtotal),
			Label:   "Discount (" + m.Coupon.Code + ")",
		}
	case m.Referral != nil:
		return Outcome{
			Applied: MechanismReferral,
			Amount:  capAt(m.Referral.Amount, subtotal),
			Label:   "Discount (Referral)",
		}
	}

	if rate := m.Flash.RateAt(now); rate.IsPositive() {
		return Outcome{
			Applied: MechanismFlash,
			Amount:  capAt(FlashAmount(subtotal, rate), subtotal),
			Label:   "Discount (Flash Offer)",
		}
	}
	return Outcome{Amount: decimal.Zero}
}

// FlashAmount is rate percent of subtotal, rounded to paise.
func FlashAmount(subtotal, rate decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(rate).Div(decimal.NewFromInt(100)).Round(2)
}

func capAt(amount, limit decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}
	if amount.GreaterThan(limit) {
		return limit
	}
	return amount
}

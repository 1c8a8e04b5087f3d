package pricing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type ShippingPolicy struct {
	FreeThreshold decimal.Decimal
	Charge        decimal.Decimal
}

func DefaultShipping() ShippingPolicy {
	return ShippingPolicy{
		FreeThreshold: decimal.NewFromInt(279),
		Charge:        decimal.NewFromInt(40),
	}
}

// ShippingFor is zero for an empty cart and at or above the threshold.
func (p ShippingPolicy) ShippingFor(subtotal decimal.Decimal) decimal.Decimal {
	if !subtotal.IsPositive() || subtotal.GreaterThanOrEqual(p.FreeThreshold) {
		return decimal.Zero
	}
	return p.Charge
}

type Summary struct {
	Subtotal             decimal.Decimal
	Shipping             decimal.Decimal
	Discount             Outcome
	Total                decimal.Decimal
	FreeShipping         bool
	AmountToFreeShipping decimal.Decimal
}

func Summarize(c *Cart, m Mechanisms, policy ShippingPolicy, now time.Time) Summary {
	subtotal := c.Subtotal()
	s := Summary{
		Subtotal:             subtotal,
		Shipping:             policy.ShippingFor(subtotal),
		Discount:             ComputeDiscount(subtotal, m, now),
		AmountToFreeShipping: decimal.Zero,
	}

	if subtotal.IsPositive() {
		if subtotal.LessThan(policy.FreeThreshold) {
			s.AmountToFreeShipping = policy.FreeThreshold.Sub(subtotal)
		} else {
			s.FreeShipping = true
		}
	}

	s.Total = subtotal.Sub(s.Discount.Amount).Add(s.Shipping)
	if s.Total.IsNegative() {
		s.Total = decimal.Zero
	}
	return s
}

// ShippingNote is the line shown under the shipping charge, empty for an
// empty cart.
func (s Summary) ShippingNote() string {
	switch {
	case s.FreeShipping:
		return "Free shipping on this order!"
	case s.AmountToFreeShipping.IsPositive():
		return fmt.Sprintf("Add %s more to get FREE shipping!", Rupees(s.AmountToFreeShipping))
	default:
		return ""
	}
}

func Rupees(d decimal.Decimal) string {
	return "₹" + d.StringFixed(2)
}

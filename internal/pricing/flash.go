package pricing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// FlashOffer is a store-wide, time-boxed percentage discount. The zero
// value is an inactive offer.
type FlashOffer struct {
	ID       string          `json:"_id,omitempty"`
	Title    string          `json:"title,omitempty"`
	Rate     decimal.Decimal `json:"discountRate"`
	StartsAt time.Time       `json:"startsAt"`
	EndsAt   time.Time       `json:"endsAt"`
}

// RateAt is the offer's rate while it runs and zero outside its window.
func (f FlashOffer) RateAt(now time.Time) decimal.Decimal {
	if !f.Rate.IsPositive() || f.EndsAt.IsZero() {
		return decimal.Zero
	}
	if !f.StartsAt.IsZero() && now.Before(f.StartsAt) {
		return decimal.Zero
	}
	if !now.Before(f.EndsAt) {
		return decimal.Zero
	}
	return f.Rate
}

func (f FlashOffer) Active(now time.Time) bool {
	return f.RateAt(now).IsPositive()
}

// TimeLeft is truncated to whole seconds and never negative.
func (f FlashOffer) TimeLeft(now time.Time) time.Duration {
	if !f.Active(now) {
		return 0
	}
	return f.EndsAt.Sub(now).Truncate(time.Second)
}

// Countdown renders TimeLeft as m:ss.
func (f FlashOffer) Countdown(now time.Time) string {
	secs := int(f.TimeLeft(now) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

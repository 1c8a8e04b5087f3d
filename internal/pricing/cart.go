package pricing

import "github.com/shopspring/decimal"

type LineItem struct {
	ProductID string   `json:"productId"`
	Product   *Product `json:"product,omitempty"`
	Quantity  int      `json:"quantity"`
}

// UnitPrice is zero when the product details are not loaded.
func (li LineItem) UnitPrice() decimal.Decimal {
	if li.Product == nil {
		return decimal.Zero
	}
	return li.Product.UnitPrice()
}

func (li LineItem) Total() decimal.Decimal {
	return li.UnitPrice().Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Cart holds at most one line per product, in insertion order.
type Cart struct {
	Items          []LineItem      `json:"items"`
	CouponCode     string          `json:"couponCode,omitempty"`
	CouponAmount   decimal.Decimal `json:"couponDiscount"`
	ReferralCode   string          `json:"referralCode,omitempty"`
	ReferralAmount decimal.Decimal `json:"referralDiscount"`
}

func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

func (c *Cart) Item(productID string) (LineItem, bool) {
	if i := c.index(productID); i >= 0 {
		return c.Items[i], true
	}
	return LineItem{}, false
}

// Upsert adds qty to an existing line or appends a new one, clamped.
func (c *Cart) Upsert(productID string, product *Product, qty int) LineItem {
	if i := c.index(productID); i >= 0 {
		c.Items[i].Quantity = ClampQuantity(c.Items[i].Quantity + qty)
		if product != nil {
			c.Items[i].Product = product
		}
		return c.Items[i]
	}
	li := LineItem{ProductID: productID, Product: product, Quantity: ClampQuantity(qty)}
	c.Items = append(c.Items, li)
	return li
}

// SetQuantity replaces a line's quantity, clamped.
func (c *Cart) SetQuantity(productID string, qty int) error {
	i := c.index(productID)
	if i < 0 {
		return ErrItemNotFound
	}
	c.Items[i].Quantity = ClampQuantity(qty)
	return nil
}

func (c *Cart) Remove(productID string) error {
	i := c.index(productID)
	if i < 0 {
		return ErrItemNotFound
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return nil
}

func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	if c == nil {
		return total
	}
	for _, li := range c.Items {
		total = total.Add(li.Total())
	}
	return total
}

// Mechanisms reads the coupon and referral state recorded on the cart and
// pairs it with the given flash offer.
func (c *Cart) Mechanisms(flash FlashOffer) Mechanisms {
	m := Mechanisms{Flash: flash}
	if c == nil {
		return m
	}
	if c.CouponCode != "" {
		m.Coupon = &AppliedCode{Code: c.CouponCode, Amount: c.CouponAmount}
	}
	if c.ReferralCode != "" {
		m.Referral = &AppliedCode{Code: c.ReferralCode, Amount: c.ReferralAmount}
	}
	return m
}

func (c *Cart) ClearCoupon() {
	c.CouponCode = ""
	c.CouponAmount = decimal.Zero
}

func (c *Cart) ClearReferral() {
	c.ReferralCode = ""
	c.ReferralAmount = decimal.Zero
}

func (c *Cart) index(productID string) int {
	if c == nil {
		return -1
	}
	for i, li := range c.Items {
		if li.ProductID == productID {
			return i
		}
	}
	return -1
}

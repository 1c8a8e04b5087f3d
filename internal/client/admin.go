package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/pricing"
)

type DiscountType string

const (
	DiscountFlat    DiscountType = "flat"
	DiscountPercent DiscountType = "percent"
)

type Coupon struct {
	ID            int64           `json:"id,omitempty"`
	Code          string          `json:"code"`
	DiscountType  DiscountType    `json:"discountType"`
	Value         decimal.Decimal `json:"value"`
	MinOrderValue decimal.Decimal `json:"minOrderValue"`
	ExpiresAt     *time.Time      `json:"expiresAt,omitempty"`
	Active        bool            `json:"active"`
}

type Referral struct {
	ID           int64           `json:"id,omitempty"`
	Code         string          `json:"code"`
	ReferrerName string          `json:"referrerName"`
	DiscountType DiscountType    `json:"discountType"`
	Value        decimal.Decimal `json:"value"`
	Active       bool            `json:"active"`
}

// Admin groups the admin dashboard's marketing endpoints. Calls fail fast
// with ErrNotAdmin when the signed-in user is not an admin.
type Admin struct {
	c *Client
}

func (c *Client) Admin() *Admin {
	return &Admin{c: c}
}

func (a *Admin) Coupons(ctx context.Context) ([]Coupon, error) {
	var data struct {
		Coupons []Coupon `json:"coupons"`
	}
	return data.Coupons, a.call(ctx, http.MethodGet, "/coupons", nil, &data)
}

func (a *Admin) CreateCoupon(ctx context.Context, in Coupon) (*Coupon, error) {
	var data struct {
		Coupon Coupon `json:"coupon"`
	}
	if err := a.call(ctx, http.MethodPost, "/coupons", in, &data); err != nil {
		return nil, err
	}
	return &data.Coupon, nil
}

func (a *Admin) DeleteCoupon(ctx context.Context, id int64) error {
	return a.call(ctx, http.MethodDelete, fmt.Sprintf("/coupons/%d", id), nil, nil)
}

func (a *Admin) Referrals(ctx context.Context) ([]Referral, error) {
	var data struct {
		Referrals []Referral `json:"referrals"`
	}
	return data.Referrals, a.call(ctx, http.MethodGet, "/referrals", nil, &data)
}

func (a *Admin) CreateReferral(ctx context.Context, in Referral) (*Referral, error) {
	var data struct {
		Referral Referral `json:"referral"`
	}
	if err := a.call(ctx, http.MethodPost, "/referrals", in, &data); err != nil {
		return nil, err
	}
	return &data.Referral, nil
}

func (a *Admin) DeleteReferral(ctx context.Context, id int64) error {
	return a.call(ctx, http.MethodDelete, fmt.Sprintf("/referrals/%d", id), nil, nil)
}

func (a *Admin) Offers(ctx context.Context) ([]pricing.FlashOffer, error) {
	var data struct {
		Offers []pricing.FlashOffer `json:"offers"`
	}
	return data.Offers, a.call(ctx, http.MethodGet, "/offers", nil, &data)
}

func (a *Admin) CreateOffer(ctx context.Context, in pricing.FlashOffer) (*pricing.FlashOffer, error) {
	var data offerData
	if err := a.call(ctx, http.MethodPost, "/offers", in, &data); err != nil {
		return nil, err
	}
	return data.Offer, nil
}

// EndOffer stops a running offer immediately.
func (a *Admin) EndOffer(ctx context.Context, id string) error {
	return a.call(ctx, http.MethodPost, "/offers/"+id+"/end", nil, nil)
}

func (a *Admin) Banners(ctx context.Context) ([]Banner, error) {
	var data struct {
		Banners []Banner `json:"banners"`
	}
	return data.Banners, a.call(ctx, http.MethodGet, "/banners", nil, &data)
}

func (a *Admin) CreateBanner(ctx context.Context, in Banner) (*Banner, error) {
	var data struct {
		Banner Banner `json:"banner"`
	}
	if err := a.call(ctx, http.MethodPost, "/banners", in, &data); err != nil {
		return nil, err
	}
	return &data.Banner, nil
}

func (a *Admin) DeleteBanner(ctx context.Context, id int64) error {
	return a.call(ctx, http.MethodDelete, fmt.Sprintf("/banners/%d", id), nil, nil)
}

func (a *Admin) call(ctx context.Context, method, path string, body, out any) error {
	if !a.c.session.Get().User.IsAdmin() {
		return ErrNotAdmin
	}
	_, err := a.c.do(ctx, method, "/api/admin"+path, body, out)
	return err
}

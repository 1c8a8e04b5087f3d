package client

import (
	"context"
	"net/http"
	"net/url"

	"storefront/internal/pricing"
)

type cartData struct {
	Cart pricing.Cart `json:"cart"`
}

// CartResult is a cart as returned by a mutation, with the backend's
// confirmation message.
type CartResult struct {
	Cart    *pricing.Cart
	Message string
}

func (c *Client) Cart(ctx context.Context) (*pricing.Cart, error) {
	res, err := c.cartCall(ctx, http.MethodGet, "/api/cart", nil)
	if err != nil {
		return nil, err
	}
	return res.Cart, nil
}

func (c *Client) AddToCart(ctx context.Context, productID string, qty int) (*CartResult, error) {
	body := map[string]any{"productId": productID, "quantity": qty}
	return c.cartCall(ctx, http.MethodPost, "/api/cart/add", body)
}

func (c *Client) UpdateCartItem(ctx context.Context, productID string, qty int) (*CartResult, error) {
	body := map[string]any{"productId": productID, "quantity": pricing.ClampQuantity(qty)}
	return c.cartCall(ctx, http.MethodPut, "/api/cart/update", body)
}

func (c *Client) RemoveCartItem(ctx context.Context, productID string) (*CartResult, error) {
	return c.cartCall(ctx, http.MethodDelete, "/api/cart/remove/"+url.PathEscape(productID), nil)
}

func (c *Client) ClearCart(ctx context.Context) (*CartResult, error) {
	return c.cartCall(ctx, http.MethodDelete, "/api/cart/clear", nil)
}

func (c *Client) ApplyCoupon(ctx context.Context, code string) (*CartResult, error) {
	return c.cartCall(ctx, http.MethodPost, "/api/cart/apply-coupon", map[string]string{"couponCode": code})
}

func (c *Client) RemoveCoupon(ctx context.Context) (*CartResult, error) {
	return c.cartCall(ctx, http.MethodDelete, "/api/cart/remove-coupon", nil)
}

func (c *Client) ApplyReferral(ctx context.Context, code string) (*CartResult, error) {
	return c.cartCall(ctx, http.MethodPost, "/api/cart/apply-referral", map[string]string{"referralCode": code})
}

func (c *Client) RemoveReferral(ctx context.Context) (*CartResult, error) {
	return c.cartCall(ctx, http.MethodDelete, "/api/cart/remove-referral", nil)
}

func (c *Client) cartCall(ctx context.Context, method, path string, body any) (*CartResult, error) {
	var data cartData
	env, err := c.do(ctx, method, path, body, &data)
	if err != nil {
		return nil, err
	}
	return &CartResult{Cart: &data.Cart, Message: env.Message}, nil
}

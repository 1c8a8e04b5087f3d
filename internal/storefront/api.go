// Package storefront holds the client-side state the storefront screens
// render from: who is signed in, the cart with its discounts, and the admin
// dashboard's current section. Stores talk to the backend through the
// narrow interfaces below; *client.Client satisfies all of them.
package storefront

import (
	"context"

	"storefront/internal/client"
	"storefront/internal/pricing"
	"storefront/internal/session"
)

type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*session.User, error)
	SendOTP(ctx context.Context, phone string) (string, error)
	VerifyOTP(ctx context.Context, phone, otp string) (*session.User, error)
	Logout(ctx context.Context) client.LogoutResult
	CheckAuthStatus(ctx context.Context) (client.AuthStatus, error)
	RefreshToken(ctx context.Context) (string, error)
}

type CartAPI interface {
	Cart(ctx context.Context) (*pricing.Cart, error)
	AddToCart(ctx context.Context, productID string, qty int) (*client.CartResult, error)
	UpdateCartItem(ctx context.Context, productID string, qty int) (*client.CartResult, error)
	RemoveCartItem(ctx context.Context, productID string) (*client.CartResult, error)
	ClearCart(ctx context.Context) (*client.CartResult, error)
	ApplyCoupon(ctx context.Context, code string) (*client.CartResult, error)
	RemoveCoupon(ctx context.Context) (*client.CartResult, error)
	ApplyReferral(ctx context.Context, code string) (*client.CartResult, error)
	RemoveReferral(ctx context.Context) (*client.CartResult, error)
	ActiveOffer(ctx context.Context) (pricing.FlashOffer, error)
	WatchOffers(ctx context.Context, fn func(pricing.FlashOffer)) error
}

var (
	_ AuthAPI = (*client.Client)(nil)
	_ CartAPI = (*client.Client)(nil)
)

package storefront

import (
	"context"

	"github.com/stretchr/testify/mock"

	"storefront/internal/client"
	"storefront/internal/pricing"
	"storefront/internal/session"
)

type mockCartAPI struct {
	mock.Mock
}

func (m *mockCartAPI) result(args mock.Arguments) (*client.CartResult, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.CartResult), args.Error(1)
}

func (m *mockCartAPI) Cart(ctx context.Context) (*pricing.Cart, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.Cart), args.Error(1)
}

func (m *mockCartAPI) AddToCart(ctx context.Context, productID string, qty int) (*client.CartResult, error) {
	return m.result(m.Called(ctx, productID, qty))
}

func (m *mockCartAPI) UpdateCartItem(ctx context.Context, productID string, qty int) (*client.CartResult, error) {
	return m.result(m.Called(ctx, productID, qty))
}

func (m *mockCartAPI) RemoveCartItem(ctx context.Context, productID string) (*client.CartResult, error) {
	return m.result(m.Called(ctx, productID))
}

func (m *mockCartAPI) ClearCart(ctx context.Context) (*client.CartResult, error) {
	return m.result(m.Called(ctx))
}

func (m *mockCartAPI) ApplyCoupon(ctx context.Context, code string) (*client.CartResult, error) {
	return m.result(m.Called(ctx, code))
}

func (m *mockCartAPI) RemoveCoupon(ctx context.Context) (*client.CartResult, error) {
	return m.result(m.Called(ctx))
}

func (m *mockCartAPI) ApplyReferral(ctx context.Context, code string) (*client.CartResult, error) {
	return m.result(m.Called(ctx, code))
}

func (m *mockCartAPI) RemoveReferral(ctx context.Context) (*client.CartResult, error) {
	return m.result(m.Called(ctx))
}

func (m *mockCartAPI) ActiveOffer(ctx context.Context) (pricing.FlashOffer, error) {
	args := m.Called(ctx)
	return args.Get(0).(pricing.FlashOffer), args.Error(1)
}

func (m *mockCartAPI) WatchOffers(ctx context.Context, fn func(pricing.FlashOffer)) error {
	args := m.Called(ctx, fn)
	if offers, ok := args.Get(0).([]pricing.FlashOffer); ok {
		for _, o := range offers {
			fn(o)
		}
	}
	return args.Error(1)
}

type mockAuthAPI struct {
	mock.Mock
}

func (m *mockAuthAPI) user(args mock.Arguments) (*session.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.User), args.Error(1)
}

func (m *mockAuthAPI) Login(ctx context.Context, email, password string) (*session.User, error) {
	return m.user(m.Called(ctx, email, password))
}

func (m *mockAuthAPI) SendOTP(ctx context.Context, phone string) (string, error) {
	args := m.Called(ctx, phone)
	return args.String(0), args.Error(1)
}

func (m *mockAuthAPI) VerifyOTP(ctx context.Context, phone, otp string) (*session.User, error) {
	return m.user(m.Called(ctx, phone, otp))
}

func (m *mockAuthAPI) Logout(ctx context.Context) client.LogoutResult {
	return m.Called(ctx).Get(0).(client.LogoutResult)
}

func (m *mockAuthAPI) CheckAuthStatus(ctx context.Context) (client.AuthStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(client.AuthStatus), args.Error(1)
}

func (m *mockAuthAPI) RefreshToken(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

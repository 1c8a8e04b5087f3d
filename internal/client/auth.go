package client

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"storefront/internal/session"
)

type authData struct {
	User          *session.User `json:"user"`
	AccessToken   string        `json:"accessToken"`
	RecoveryToken string        `json:"recoveryToken"`
}

// Auth failures on these calls mean "wrong credentials", not "expired
// session", so they never trigger a refresh.

func (c *Client) Login(ctx context.Context, email, password string) (*session.User, error) {
	body := map[string]string{"email": email, "password": password}
	return c.startSession(ctx, "/api/users/login", body)
}

func (c *Client) SendOTP(ctx context.Context, phone string) (string, error) {
	env, err := c.do(WithoutRefresh(ctx), http.MethodPost, "/api/users/send-otp", map[string]string{"phone": phone}, nil)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

func (c *Client) VerifyOTP(ctx context.Context, phone, otp string) (*session.User, error) {
	body := map[string]string{"phone": phone, "otp": otp}
	return c.startSession(ctx, "/api/users/verify-otp", body)
}

func (c *Client) startSession(ctx context.Context, path string, body any) (*session.User, error) {
	var data authData
	env, err := c.do(WithoutRefresh(ctx), http.MethodPost, path, body, &data)
	if err != nil {
		return nil, err
	}
	if data.User == nil {
		return nil, errors.New("login response carried no user")
	}

	access := env.AccessToken
	if access == "" {
		access = data.AccessToken
	}
	c.session.Start(ctx, data.User, session.Credentials{AccessToken: access, RecoveryToken: data.RecoveryToken})
	c.log.Info("session started", zap.Int64("user_id", data.User.ID))
	return data.User, nil
}

// RefreshToken forces a credential exchange and returns the new access
// token (empty when the backend relies on cookies alone).
func (c *Client) RefreshToken(ctx context.Context) (string, error) {
	if err := c.refresher.Refresh(ctx, c.session.Generation()); err != nil {
		return "", err
	}
	return c.session.Get().AccessToken, nil
}

type LogoutResult struct {
	// Warning is the backend's complaint, if any. Local state is cleared
	// regardless.
	Warning string
}

// Logout always succeeds locally.
func (c *Client) Logout(ctx context.Context) LogoutResult {
	var res LogoutResult
	body := map[string]string{}
	if rt := c.session.Get().RecoveryToken; rt != "" {
		body["recoveryToken"] = rt
	}
	if _, err := c.do(WithoutRefresh(ctx), http.MethodPost, "/api/users/logout", body, nil); err != nil {
		res.Warning = Message(err, err.Error())
		c.log.Warn("logout request failed", zap.Error(err))
	}
	c.session.Clear(ctx)
	return res
}

type AuthStatus struct {
	Authenticated bool
	User          *session.User
}

// CheckAuthStatus asks the backend who is signed in. Not being signed in
// is a status, not an error.
func (c *Client) CheckAuthStatus(ctx context.Context) (AuthStatus, error) {
	var user session.User
	_, err := c.do(ctx, http.MethodGet, "/api/users/profile", nil, &user)
	if err != nil {
		if IsAuthExpired(err) {
			return AuthStatus{}, nil
		}
		return AuthStatus{}, err
	}
	c.session.SetUser(ctx, &user)
	return AuthStatus{Authenticated: true, User: &user}, nil
}

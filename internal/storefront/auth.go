package storefront

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"storefront/internal/client"
	"storefront/internal/session"
)

// AuthStore reads the signed-in user from the session, so a refresh that
// fails inside any call signs the store out too.
type AuthStore struct {
	api  AuthAPI
	sess *session.Manager
	log  *zap.Logger

	mu      sync.RWMutex
	lastErr string
}

// NewAuthStore follows sess, normally the client's own session. A nil sess
// gets a private in-memory one.
func NewAuthStore(api AuthAPI, sess *session.Manager, log *zap.Logger) *AuthStore {
	if log == nil {
		log = zap.NewNop()
	}
	if sess == nil {
		sess = session.NewManager(nil, log)
	}
	return &AuthStore{api: api, sess: sess, log: log}
}

func (s *AuthStore) User() *session.User {
	return s.sess.Get().User
}

func (s *AuthStore) LoggedIn() bool {
	return s.User() != nil
}

func (s *AuthStore) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *AuthStore) Login(ctx context.Context, email, password string) error {
	user, err := s.api.Login(ctx, email, password)
	if err != nil {
		return s.fail(client.Message(err, "Login failed"), err)
	}
	s.set(ctx, user, "")
	return nil
}

// SendOTP returns the backend's confirmation text.
func (s *AuthStore) SendOTP(ctx context.Context, phone string) (string, error) {
	msg, err := s.api.SendOTP(ctx, phone)
	if err != nil {
		return "", s.fail(client.Message(err, "Failed to send OTP"), err)
	}
	s.setErr("")
	if msg == "" {
		msg = "OTP sent successfully"
	}
	return msg, nil
}

func (s *AuthStore) VerifyOTP(ctx context.Context, phone, otp string) error {
	user, err := s.api.VerifyOTP(ctx, phone, otp)
	if err != nil {
		return s.fail(client.Message(err, "OTP verification failed"), err)
	}
	s.set(ctx, user, "")
	return nil
}

// Logout never fails; a backend complaint is only logged.
func (s *AuthStore) Logout(ctx context.Context) {
	res := s.api.Logout(ctx)
	if res.Warning != "" {
		s.log.Warn("logout completed locally", zap.String("backend", res.Warning))
	}
	s.set(ctx, nil, "")
}

// CheckAuthStatus syncs the store with the backend and reports whether a
// user is signed in. Network trouble keeps the current user.
func (s *AuthStore) CheckAuthStatus(ctx context.Context) bool {
	st, err := s.api.CheckAuthStatus(ctx)
	if err != nil {
		s.log.Debug("auth status check failed", zap.Error(err))
		return s.LoggedIn()
	}
	if !st.Authenticated {
		s.set(ctx, nil, "")
		return false
	}
	s.set(ctx, st.User, "")
	return true
}

func (s *AuthStore) RefreshAuthToken(ctx context.Context) error {
	if _, err := s.api.RefreshToken(ctx); err != nil {
		if client.IsAuthExpired(err) {
			s.set(ctx, nil, client.Message(err, client.ErrSessionExpired.Error()))
			return err
		}
		return s.fail(client.Message(err, "Could not refresh session"), err)
	}
	return nil
}

// set records the outcome of an auth call. The client has usually written
// the session already; a signed-out result still clears whatever is left.
func (s *AuthStore) set(ctx context.Context, user *session.User, lastErr string) {
	switch {
	case user != nil:
		s.sess.SetUser(ctx, user)
	case s.sess.Get().LoggedIn():
		s.sess.Clear(ctx)
	}
	s.setErr(lastErr)
}

func (s *AuthStore) setErr(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = msg
}

func (s *AuthStore) fail(msg string, err error) error {
	s.setErr(msg)
	return reject(msg, err)
}

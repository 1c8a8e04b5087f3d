package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/kvstore"
	"storefront/internal/pricing"
	"storefront/internal/session"
)

// fakeBackend accepts exactly one bearer token at a time and rotates it on
// every successful refresh.
type fakeBackend struct {
	mu       sync.Mutex
	token    string
	recovery string

	refreshes     atomic.Int32
	cartHits      atomic.Int32
	refreshDelay  time.Duration
	refreshStatus int
	// cookieRefresh is false when the backend ignores the refresh cookie
	// and only honours a recovery token.
	cookieRefresh bool
	alwaysExpired bool
	// expiredStatus answers an unauthorized call; 401 when zero.
	expiredStatus int
	lastBody      atomic.Value
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{token: "tok-0", recovery: "rec-0", cookieRefresh: true}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeBackend) authorized(r *http.Request) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.alwaysExpired && r.Header.Get("Authorization") == "Bearer "+f.token
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case refreshPath:
		f.refresh(w, r)
	case "/api/users/login":
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in["password"] != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Invalid credentials"})
			return
		}
		f.mu.Lock()
		tok, rec := f.token, f.recovery
		f.mu.Unlock()
		http.SetCookie(w, &http.Cookie{Name: "refresh_token", Value: "cookie-0", Path: "/"})
		writeJSON(w, http.StatusOK, map[string]any{
			"success":     true,
			"accessToken": tok,
			"data": map[string]any{
				"user":          map[string]any{"id": 7, "name": "Asha", "role": "customer"},
				"recoveryToken": rec,
			},
		})
	case "/api/users/logout":
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": "database unavailable"})
	case "/api/users/profile", "/api/cart", "/api/cart/add":
		f.cartHits.Add(1)
		if !f.authorized(r) {
			status := f.expiredStatus
			if status == 0 {
				status = http.StatusUnauthorized
			}
			writeJSON(w, status, map[string]any{"success": false, "message": "Token expired"})
			return
		}
		if r.Body != nil {
			raw, _ := io.ReadAll(r.Body)
			f.lastBody.Store(string(raw))
		}
		if r.URL.Path == "/api/users/profile" {
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"id": 7, "name": "Asha", "role": "customer"}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "ok",
			"data": map[string]any{"cart": map[string]any{
				"items": []map[string]any{{"productId": "p1", "quantity": 2}},
			}},
		})
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeBackend) refresh(w http.ResponseWriter, r *http.Request) {
	f.refreshes.Add(1)
	if f.refreshDelay > 0 {
		time.Sleep(f.refreshDelay)
	}
	if f.refreshStatus != 0 {
		writeJSON(w, f.refreshStatus, map[string]any{"success": false, "message": "refresh rejected"})
		return
	}

	var in map[string]string
	_ = json.NewDecoder(r.Body).Decode(&in)

	f.mu.Lock()
	defer f.mu.Unlock()

	_, cookieErr := r.Cookie("refresh_token")
	viaCookie := f.cookieRefresh && cookieErr == nil
	viaRecovery := in["recoveryToken"] != "" && in["recoveryToken"] == f.recovery
	if !viaCookie && !viaRecovery {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "no refresh credential"})
		return
	}

	n := int(f.refreshes.Load())
	f.token = "tok-" + string(rune('0'+n))
	data := map[string]any{}
	if viaRecovery {
		f.recovery = "rec-" + string(rune('0'+n))
		data["recoveryToken"] = f.recovery
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "accessToken": f.token, "data": data})
}

func newTestClient(t *testing.T, f *fakeBackend, mode RefreshMode) (*Client, kvstore.Store) {
	t.Helper()
	srv := httptest.NewServer(f)
	tr := &http.Transport{}
	t.Cleanup(func() {
		tr.CloseIdleConnections()
		srv.Close()
	})

	store := kvstore.NewMemory()
	c, err := New(Config{
		BaseURL:     srv.URL,
		RefreshMode: mode,
		Timeout:     5 * time.Second,
		Session:     session.NewManager(store, nil),
		Transport:   tr,
	})
	require.NoError(t, err)
	return c, store
}

func login(t *testing.T, c *Client) {
	t.Helper()
	_, err := c.Login(context.Background(), "asha@example.com", "secret")
	require.NoError(t, err)
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	_, err := New(Config{BaseURL: "/api"})
	assert.ErrorIs(t, err, ErrBaseURL)
}

func TestLogin_StartsSession(t *testing.T) {
	f := newFakeBackend()
	c, store := newTestClient(t, f, RefreshAuto)

	user, err := c.Login(context.Background(), "asha@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)

	snap := c.Session().Get()
	assert.True(t, snap.LoggedIn())
	assert.Equal(t, "tok-0", snap.AccessToken)
	assert.Equal(t, "rec-0", snap.RecoveryToken)

	stored, err := store.Get(context.Background(), session.KeyRecoveryToken)
	require.NoError(t, err)
	assert.Equal(t, "rec-0", stored)
}

func TestLogin_BadCredentialsDoNotRefresh(t *testing.T) {
	f := newFakeBackend()
	c, _ := newTestClient(t, f, RefreshAuto)

	_, err := c.Login(context.Background(), "asha@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", Message(err, ""))
	assert.Zero(t, f.refreshes.Load())
}

func TestTransport_RefreshesOnceAndRetries(t *testing.T) {
	f := newFakeBackend()
	c, _ := newTestClient(t, f, RefreshAuto)
	login(t, c)

	f.mu.Lock()
	f.token = "tok-server-rotated"
	f.mu.Unlock()

	cart, err := c.Cart(context.Background())
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)

	assert.Equal(t, int32(1), f.refreshes.Load())
	assert.Equal(t, int32(2), f.cartHits.Load())
	assert.Equal(t, "tok-1", c.Session().Get().AccessToken)
}

func TestTransport_419RefreshesOnceAndRetries(t *testing.T) {
	f := newFakeBackend()
	f.expiredStatus = StatusAuthenticationTimeout
	c, _ := newTestClient(t, f, RefreshAuto)
	login(t, c)

	f.mu.Lock()
	f.token = "tok-server-rotated"
	f.mu.Unlock()

	cart, err := c.Cart(context.Background())
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)

	assert.Equal(t, int32(1), f.refreshes.Load())
	assert.Equal(t, int32(2), f.cartHits.Load())
	assert.Equal(t, "tok-1", c.Session().Get().AccessToken)
}

func TestTransport_419TwiceDoesNotRefreshAgain(t *testing.T) {
	f := newFakeBackend()
	f.alwaysExpired = true
	f.expiredStatus = StatusAuthenticationTimeout
	c, _ := newTestClient(t, f, RefreshAuto)
	login(t, c)

	_, err := c.Cart(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, StatusAuthenticationTimeout, apiErr.Status)
	assert.True(t, IsAuthExpired(err))
	assert.Equal(t, int32(1), f.refreshes.Load())
	assert.Equal(t, int32(2), f.cartHits.Load())
}

func TestTransport_NoSecondRefreshAfterRetry(t *testing.T) {
	f := newFakeBackend()
	f.alwaysExpired = true
	c, _ := newTestClient(t, f, RefreshAuto)
	login(t, c)

	_, err := c.Cart(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, int32(1), f.refreshes.Load())
	assert.Equal(t, int32(2), f.cartHits.Load())
}

func TestTransport_ConcurrentFailuresShareOneRefresh(t *testing.T) {
	f := newFakeBackend()
	f.refreshDelay = 50 * time.Millisecond
	c, _ := newTestClient(t, f, RefreshAuto)
	login(t, c)

	f.mu.Lock()
	f.token = "tok-server-rotated"
	f.mu.Unlock()

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Cart(context.Background())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), f.refreshes.Load())
}

func TestTransport_RetryReplaysBody(t *testing.T) {
	f := newFakeBackend()
	c, _ := newTestClient(t, f, RefreshAuto)
	login(t, c)

	f.mu.Lock()
	f.token = "tok-server-rotated"
	f.mu.Unlock()

	_, err := c.AddToCart(context.Background(), "p1", 2)
	require.NoError(t, err)
	assert.JSONEq(t, `{"productId":"p1","quantity":2}`, f.lastBody.Load().(string))
}

func TestRefresh_FailureClearsSession(t *testing.T) {
	f := newFakeBackend()
	c, store := newTestClient(t, f, RefreshCookie)
	login(t, c)

	f.refreshStatus = http.StatusUnauthorized
	f.mu.Lock()
	f.token = "tok-server-rotated"
	f.mu.Unlock()

	_, err := c.Cart(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.True(t, IsAuthExpired(err))
	assert.Equal(t, "refresh rejected", Message(err, ""))

	assert.False(t, c.Session().Get().LoggedIn())
	_, err = store.Get(context.Background(), session.KeyAccessToken)
	assert.ErrorIs(t, err, kvstore.ErrNotFound)
}

func TestRefresh_FailureVisibleWithClearedGeneration(t *testing.T) {
	f := newFakeBackend()
	f.refreshStatus = http.StatusUnauthorized
	f.refreshDelay = 50 * time.Millisecond
	c, _ := newTestClient(t, f, RefreshCookie)
	login(t, c)

	f.mu.Lock()
	f.token = "tok-server-rotated"
	f.mu.Unlock()

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Cart(context.Background())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.ErrorIs(t, err, ErrSessionExpired)
	}
	assert.ErrorIs(t, c.refresher.outcome(c.Session().Generation()), ErrSessionExpired)
}

func TestRefresh_RecoveryFallbackRotatesToken(t *testing.T) {
	f := newFakeBackend()
	f.cookieRefresh = false
	c, store := newTestClient(t, f, RefreshAuto)
	login(t, c)

	f.mu.Lock()
	f.token = "tok-server-rotated"
	f.mu.Unlock()

	_, err := c.Cart(context.Background())
	require.NoError(t, err)

	// cookie attempt, then recovery attempt
	assert.Equal(t, int32(2), f.refreshes.Load())
	snap := c.Session().Get()
	assert.Equal(t, "rec-2", snap.RecoveryToken)

	stored, err := store.Get(context.Background(), session.KeyRecoveryToken)
	require.NoError(t, err)
	assert.Equal(t, "rec-2", stored)
}

func TestRefresh_RecoveryModeWithoutToken(t *testing.T) {
	f := newFakeBackend()
	c, _ := newTestClient(t, f, RefreshRecovery)

	_, err := c.RefreshToken(context.Background())
	assert.ErrorIs(t, err, ErrNoRecoveryToken)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Zero(t, f.refreshes.Load())
}

func TestRefreshToken_ReturnsNewAccessToken(t *testing.T) {
	f := newFakeBackend()
	c, _ := newTestClient(t, f, RefreshCookie)
	login(t, c)

	tok, err := c.RefreshToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)
}

func TestLogout_ServerErrorStillClears(t *testing.T) {
	f := newFakeBackend()
	c, _ := newTestClient(t, f, RefreshAuto)
	login(t, c)

	res := c.Logout(context.Background())
	assert.Equal(t, "database unavailable", res.Warning)
	assert.False(t, c.Session().Get().LoggedIn())
	assert.Empty(t, c.Session().Get().RecoveryToken)
}

func TestCheckAuthStatus(t *testing.T) {
	t.Run("signed in", func(t *testing.T) {
		f := newFakeBackend()
		c, _ := newTestClient(t, f, RefreshAuto)
		login(t, c)

		st, err := c.CheckAuthStatus(context.Background())
		require.NoError(t, err)
		assert.True(t, st.Authenticated)
		assert.Equal(t, "Asha", st.User.Name)
	})

	t.Run("expired and unrecoverable", func(t *testing.T) {
		f := newFakeBackend()
		f.refreshStatus = http.StatusUnauthorized
		c, _ := newTestClient(t, f, RefreshAuto)
		login(t, c)
		f.mu.Lock()
		f.token = "tok-server-rotated"
		f.mu.Unlock()

		st, err := c.CheckAuthStatus(context.Background())
		require.NoError(t, err)
		assert.False(t, st.Authenticated)
		assert.False(t, c.Session().Get().LoggedIn())
	})
}

func TestAdmin_RequiresAdminUser(t *testing.T) {
	f := newFakeBackend()
	c, _ := newTestClient(t, f, RefreshAuto)
	login(t, c)

	_, err := c.Admin().Coupons(context.Background())
	assert.ErrorIs(t, err, ErrNotAdmin)
	assert.Zero(t, f.cartHits.Load())
}

func TestWatchOffers(t *testing.T) {
	ends := time.Now().Add(10 * time.Minute).UTC().Truncate(time.Second)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/api/offers/live") {
			http.NotFound(w, r)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteJSON(OfferEvent{Type: "offer.started", Offer: &pricing.FlashOffer{
			ID: "o1", Title: "Diwali", Rate: decimal.NewFromInt(20), EndsAt: ends,
		}})
		_ = conn.WriteJSON(OfferEvent{Type: "offer.ended"})
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	var got []pricing.FlashOffer
	err = c.WatchOffers(context.Background(), func(o pricing.FlashOffer) {
		got = append(got, o)
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Diwali", got[0].Title)
	assert.True(t, got[0].Active(time.Now()))
	assert.False(t, got[1].Active(time.Now()))
}

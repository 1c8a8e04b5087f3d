package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"storefront/internal/session"
)

const refreshPath = "/api/users/refresh-token"

// RefreshMode selects how the refresher proves the session.
type RefreshMode string

const (
	// RefreshCookie relies on the refresh cookie alone.
	RefreshCookie RefreshMode = "cookie"
	// RefreshRecovery sends the stored recovery token in the body.
	RefreshRecovery RefreshMode = "recovery"
	// RefreshAuto tries the cookie first and falls back to the recovery
	// token, for environments that partition or drop third-party cookies.
	RefreshAuto RefreshMode = "auto"
)

func ParseRefreshMode(s string) (RefreshMode, error) {
	switch m := RefreshMode(s); m {
	case RefreshCookie, RefreshRecovery, RefreshAuto:
		return m, nil
	case "":
		return RefreshAuto, nil
	}
	return "", fmt.Errorf("unknown refresh mode %q", s)
}

// Refresher exchanges the recovery credential for a new access credential.
// At most one exchange is in flight; concurrent callers share its result.
type Refresher struct {
	http    *http.Client
	url     string
	mode    RefreshMode
	session *session.Manager
	log     *zap.Logger
	group   singleflight.Group

	mu        sync.Mutex
	failedGen uint64
	failErr   error
}

// Refresh refreshes the session unless it has moved past staleGen, the
// generation the caller's failed request was sent with. In that case the
// caller can simply retry, or fails with the error of the refresh that
// tore the session down.
func (r *Refresher) Refresh(ctx context.Context, staleGen uint64) error {
	if cur := r.session.Generation(); cur != staleGen {
		return r.outcome(cur)
	}

	_, err, _ := r.group.Do("refresh", func() (any, error) {
		if cur := r.session.Generation(); cur != staleGen {
			return nil, r.outcome(cur)
		}
		// shared by every waiter; one caller's cancellation must not fail the rest
		return nil, r.refresh(context.WithoutCancel(ctx))
	})
	return err
}

func (r *Refresher) outcome(gen uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr == nil {
		return nil
	}
	// a later failed refresh may have moved the generation again
	if gen == r.failedGen || !r.session.Get().LoggedIn() {
		return r.failErr
	}
	return nil
}

func (r *Refresher) refresh(ctx context.Context) error {
	_, err := r.session.Exchange(ctx, r.exchange)
	if err == nil {
		r.log.Debug("session refreshed")
		return nil
	}

	err = fmt.Errorf("%w: %w", ErrSessionExpired, err)
	r.log.Info("refresh failed, clearing session", zap.Error(err))
	// outcome must never observe the cleared generation without its error
	r.mu.Lock()
	r.failedGen = r.session.Clear(ctx)
	r.failErr = err
	r.mu.Unlock()
	return err
}

func (r *Refresher) exchange(ctx context.Context, snap session.Snapshot) (session.Credentials, error) {
	switch r.mode {
	case RefreshCookie:
		return r.post(ctx, nil)
	case RefreshRecovery:
		return r.withRecovery(ctx, snap)
	}

	creds, err := r.post(ctx, nil)
	if err == nil {
		return creds, nil
	}
	if snap.RecoveryToken == "" {
		return session.Credentials{}, err
	}
	r.log.Info("cookie refresh failed, trying recovery token", zap.Error(err))
	return r.withRecovery(ctx, snap)
}

func (r *Refresher) withRecovery(ctx context.Context, snap session.Snapshot) (session.Credentials, error) {
	if snap.RecoveryToken == "" {
		return session.Credentials{}, ErrNoRecoveryToken
	}
	creds, err := r.post(ctx, map[string]string{"recoveryToken": snap.RecoveryToken})
	creds.RecoveryUsed = true
	return creds, err
}

func (r *Refresher) post(ctx context.Context, body any) (session.Credentials, error) {
	if body == nil {
		body = struct{}{}
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return session.Credentials{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(raw))
	if err != nil {
		return session.Credentials{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return session.Credentials{}, err
	}
	defer resp.Body.Close()

	env, err := decodeEnvelope(resp)
	if err != nil {
		return session.Credentials{}, err
	}

	var data struct {
		AccessToken   string `json:"accessToken"`
		RecoveryToken string `json:"recoveryToken"`
	}
	if len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return session.Credentials{}, fmt.Errorf("decoding refresh response: %w", err)
		}
	}

	access := env.AccessToken
	if access == "" {
		access = data.AccessToken
	}
	if access == "" && r.http.Jar == nil {
		return session.Credentials{}, errors.New("refresh response carried no access token")
	}
	return session.Credentials{AccessToken: access, RecoveryToken: data.RecoveryToken}, nil
}

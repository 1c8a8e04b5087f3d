package client

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"go.uber.org/zap"

	"storefront/internal/session"
)

type retriedKey struct{}

// WithoutRefresh marks requests made with ctx as already retried, so an
// auth failure is returned as-is instead of triggering a refresh.
func WithoutRefresh(ctx context.Context) context.Context {
	return context.WithValue(ctx, retriedKey{}, true)
}

func IsRetried(req *http.Request) bool {
	v, _ := req.Context().Value(retriedKey{}).(bool)
	return v
}

// Transport attaches the session's credentials and, on the first 401/419
// for a request, refreshes once and resends it once.
type Transport struct {
	base      http.RoundTripper
	session   *session.Manager
	refresher *Refresher
	jar       http.CookieJar
	log       *zap.Logger
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	getBody, err := bodySource(req)
	if err != nil {
		return nil, err
	}

	snap := t.session.Get()
	resp, err := t.send(withBody(req, getBody), snap)
	if err != nil || !IsAuthExpiredStatus(resp.StatusCode) || IsRetried(req) {
		return resp, err
	}
	drain(resp)

	t.log.Debug("auth expired, refreshing",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode))

	if err := t.refresher.Refresh(req.Context(), snap.Generation); err != nil {
		return nil, err
	}

	retry := withBody(req.WithContext(WithoutRefresh(req.Context())), getBody)
	if t.jar != nil {
		// the refresh rotated the cookies; send the fresh ones
		retry.Header.Del("Cookie")
		for _, c := range t.jar.Cookies(retry.URL) {
			retry.AddCookie(c)
		}
	}
	return t.send(retry, t.session.Get())
}

func (t *Transport) send(req *http.Request, snap session.Snapshot) (*http.Response, error) {
	if snap.AccessToken != "" && req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", "Bearer "+snap.AccessToken)
	}
	return t.base.RoundTrip(req)
}

// bodySource returns a function yielding a fresh copy of the request body,
// or nil for bodiless requests. The original body is consumed and closed.
func bodySource(req *http.Request) (func() (io.ReadCloser, error), error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	if req.GetBody != nil {
		_ = req.Body.Close()
		return req.GetBody, nil
	}

	buf, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return nil, err
	}
	return func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(buf)), nil
	}, nil
}

// withBody clones req so each attempt owns its headers and body.
func withBody(req *http.Request, getBody func() (io.ReadCloser, error)) *http.Request {
	out := req.Clone(req.Context())
	if getBody == nil {
		return out
	}
	out.GetBody = getBody
	if body, err := getBody(); err == nil {
		out.Body = body
	} else {
		out.Body = io.NopCloser(errReader{err})
	}
	return out
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}

// Package client talks to the storefront REST API. Every call goes through
// a Transport that refreshes an expired session once and retries once; the
// refresh itself uses a separate http.Client with no such transport.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"

	"storefront/internal/session"
)

var ErrBaseURL = errors.New("client: base URL must be absolute")

type Config struct {
	BaseURL     string
	RefreshMode RefreshMode
	Timeout     time.Duration
	Session     *session.Manager
	Logger      *zap.Logger
	// Transport is the underlying round tripper; http.DefaultTransport
	// when nil.
	Transport http.RoundTripper
}

type Client struct {
	base      *url.URL
	http      *http.Client
	jar       http.CookieJar
	refresher *Refresher
	session   *session.Manager
	log       *zap.Logger
}

func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, ErrBaseURL
	}
	if cfg.Session == nil {
		cfg.Session = session.NewManager(nil, cfg.Logger)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Transport == nil {
		cfg.Transport = http.DefaultTransport
	}
	if cfg.RefreshMode == "" {
		cfg.RefreshMode = RefreshAuto
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}

	refresher := &Refresher{
		http: &http.Client{
			Transport: cfg.Transport,
			Jar:       jar,
			Timeout:   cfg.Timeout,
		},
		url:     base.String() + refreshPath,
		mode:    cfg.RefreshMode,
		session: cfg.Session,
		log:     cfg.Logger.Named("refresh"),
	}

	return &Client{
		base: base,
		http: &http.Client{
			Transport: &Transport{
				base:      cfg.Transport,
				session:   cfg.Session,
				refresher: refresher,
				jar:       jar,
				log:       cfg.Logger,
			},
			Jar:     jar,
			Timeout: cfg.Timeout,
		},
		jar:       jar,
		refresher: refresher,
		session:   cfg.Session,
		log:       cfg.Logger,
	}, nil
}

func (c *Client) Session() *session.Manager {
	return c.session
}

// envelope is the backend's response wrapper. Successful calls carry data
// and sometimes a message; failed calls carry message and/or error.
type envelope struct {
	Success     bool            `json:"success"`
	Data        json.RawMessage `json:"data"`
	Message     string          `json:"message"`
	AccessToken string          `json:"accessToken"`
	Error       *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// do sends body as JSON and decodes the envelope's data into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) (*envelope, error) {
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rdr = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, rdr)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	env, err := decodeEnvelope(resp)
	if err != nil {
		c.log.Debug("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return nil, err
	}

	if out != nil && len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decoding %s %s: %w", method, path, err)
		}
	}
	return env, nil
}

func decodeEnvelope(resp *http.Response) (*envelope, error) {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}

	env := &envelope{}
	if len(bytes.TrimSpace(raw)) > 0 {
		if jerr := json.Unmarshal(raw, env); jerr != nil && resp.StatusCode < 300 {
			return nil, fmt.Errorf("decoding response: %w", jerr)
		}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return env, nil
	}

	apiErr := &APIError{Status: resp.StatusCode, Message: env.Message}
	if env.Error != nil {
		apiErr.Code = env.Error.Code
		if apiErr.Message == "" {
			apiErr.Message = env.Error.Message
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return nil, apiErr
}

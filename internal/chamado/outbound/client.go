package outbound

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/dghubble/oauth1"

	"github.com/shandysiswandi/gochamado/internal/pkg/pkglog"
)

const (
	maxErrorBody        = 500
	headerCorrelationID = "X-Correlation-ID"
)

// StatusError is a non-2xx answer from Fluig.
type StatusError struct {
	StatusCode int
	Body       string
}

func newStatusError(code int, body []byte) *StatusError {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return &StatusError{StatusCode: code, Body: strings.ToValidUTF8(string(body), "")}
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fluig returned status %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// Client is a Fluig API client for one environment. Every request is signed
// with OAuth 1.0a; process requests additionally carry the portal session.
type Client struct {
	cfg     Config
	base    string
	api     *http.Client
	session *Session
}

func NewClient(cfg Config) (*Client, error) {
	base, err := cfg.validate()
	if err != nil {
		return nil, err
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()

	ctx := context.WithValue(context.Background(), oauth1.HTTPClient, &http.Client{Transport: transport})
	api := oauth1.NewConfig(cfg.ConsumerKey, cfg.ConsumerSecret).Client(ctx, oauth1.NewToken(cfg.Token, cfg.TokenSecret))
	api.Jar = jar
	api.Timeout = cfg.timeout()

	return &Client{
		cfg:     cfg,
		base:    base.String(),
		api:     api,
		session: newSession(cfg, base, jar, transport),
	}, nil
}

// RenewSession forces a new portal login. It is run periodically so process
// requests rarely hit an expired session.
func (c *Client) RenewSession(ctx context.Context) error {
	return c.session.login(ctx)
}

type request struct {
	method  string
	path    string
	query   url.Values
	body    any
	session bool
}

// do sends r and returns the response body. Session requests that are
// rejected with 401 or 403 trigger one forced login and exactly one retry.
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	var payload []byte
	if r.body != nil {
		var err error
		if payload, err = json.Marshal(r.body); err != nil {
			return nil, err
		}
	}

	if r.session {
		if err := c.session.ensure(ctx); err != nil {
			return nil, err
		}
	}

	body, err := c.send(ctx, r, payload)

	var serr *StatusError
	if !r.session || !errors.As(err, &serr) || !serr.unauthorized() {
		return body, err
	}

	slog.WarnContext(ctx, "fluig rejected the session, logging in again", "path", r.path, "status", serr.StatusCode)
	if err := c.session.login(ctx); err != nil {
		return nil, err
	}

	return c.send(ctx, r, payload)
}

func (c *Client) send(ctx context.Context, r request, payload []byte) ([]byte, error) {
	target := c.base + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if cid, ok := pkglog.LookupCorrelationID(ctx); ok {
		req.Header.Set(headerCorrelationID, cid)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	}

	start := time.Now()
	resp, err := c.api.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fluig %s %s: %w", r.method, r.path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read fluig response: %w", err)
	}

	slog.DebugContext(ctx, "fluig request",
		"env", c.cfg.Env,
		"method", r.method,
		"path", r.path,
		"status", resp.StatusCode,
		"duration", time.Since(start).String(),
	)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, newStatusError(resp.StatusCode, body)
	}

	return body, nil
}

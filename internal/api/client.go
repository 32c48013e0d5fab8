// Package api implements the JSON client for the plant-care backend:
// the authenticated POST pipeline, the route state loader, and the
// session cookie handling around them.
package api

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
	"os"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultLoginPath = "/accounts/login/"

	headerCSRF     = "X-CSRFToken"
	headerTimezone = "User-Timezone"
	acceptValue    = "application/json, text/plain, */*"

	csrfCookieName = "csrftoken"
)

// ErrSessionExpired is returned when the backend answered 401. The
// session-expired hook has already fired by the time callers see it;
// it exists so they can skip their own error reporting.
var ErrSessionExpired = errors.New("session expired")

// SessionExpiredFunc is invoked when the backend answers 401.
// loginURL carries the login route with the originally requested path
// as its return target.
type SessionExpiredFunc func(loginURL string)

// SuccessFunc receives the parsed JSON body of a 2xx response.
type SuccessFunc func(body json.RawMessage)

// ErrorFunc receives the parsed JSON body and status of a non-2xx
// response, for callers that render errors inline (e.g. next to a
// form field) instead of in the global modal.
type ErrorFunc func(body json.RawMessage, status int)

// Client talks to the plant-care backend. All mutations go through
// Post/PostJSON, which attach the CSRF token and timezone headers and
// intercept expired sessions.
type Client struct {
	base      *url.URL
	hc        *http.Client
	loginPath string
	timezone  string
	log       zerolog.Logger

	onSessionExpired SessionExpiredFunc
	surface          surfaceHandle
}

// Option configures a Client.
type Option func(*Client)

// WithLoginPath overrides the login route used for 401 redirects.
func WithLoginPath(path string) Option {
	return func(c *Client) { c.loginPath = path }
}

// WithTimezone sets the IANA zone name sent in the User-Timezone header.
func WithTimezone(tz string) Option {
	return func(c *Client) {
		if tz != "" {
			c.timezone = tz
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithSessionExpiredFunc sets the hook invoked on 401 responses.
func WithSessionExpiredFunc(fn SessionExpiredFunc) Option {
	return func(c *Client) { c.onSessionExpired = fn }
}

// WithHTTPClient replaces the underlying HTTP client. A cookie jar is
// attached if the replacement has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc.Jar == nil {
			hc.Jar = c.hc.Jar
		}
		c.hc = hc
	}
}

// New creates a client for the backend at serverURL.
func New(serverURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("server url %q must be absolute", serverURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	c := &Client{
		base:      base,
		hc:        &http.Client{Jar: jar, Timeout: 30 * time.Second},
		loginPath: defaultLoginPath,
		timezone:  localZoneName(),
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Post issues an authenticated POST and returns the raw response with
// its body unread; the caller takes full responsibility for reading and
// closing it. A 401 still short-circuits: the session-expired hook
// fires and ErrSessionExpired is returned instead of a response.
func (c *Client) Post(ctx context.Context, path string, payload any) (*http.Response, error) {
	resp, err := c.post(ctx, path, payload)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		drain(resp)
		c.sessionExpired(path)
		return nil, ErrSessionExpired
	}
	return resp, nil
}

// PostJSON issues an authenticated POST and routes the outcome:
//
//   - 401: the session-expired hook fires, neither callback runs, and
//     the result is (false, nil). An expired session is a navigation
//     event, not a local error.
//   - 2xx: onSuccess (if non-nil) receives the parsed body; (true, nil).
//   - other statuses: onError (if non-nil) receives the parsed body and
//     status; without onError the body is shown on the global error
//     surface; (false, nil).
//
// Network failures and non-JSON bodies propagate as errors.
func (c *Client) PostJSON(ctx context.Context, path string, payload any, onSuccess SuccessFunc, onError ErrorFunc) (bool, error) {
	resp, err := c.post(ctx, path, payload)
	if err != nil {
		return false, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		drain(resp)
		c.sessionExpired(path)
		return false, nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("read response from %s: %w", path, err)
	}
	if !json.Valid(body) {
		return false, fmt.Errorf("malformed response from %s: body is not JSON", path)
	}

	if resp.StatusCode/100 == 2 {
		if onSuccess != nil {
			onSuccess(json.RawMessage(body))
		}
		return true, nil
	}

	c.log.Warn().Str("path", path).Int("status", resp.StatusCode).Msg("backend rejected request")
	if onError != nil {
		onError(json.RawMessage(body), resp.StatusCode)
	} else {
		c.ShowError(compactJSON(body))
	}
	return false, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolve(path), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", acceptValue)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerTimezone, c.timezone)
	if token := c.csrfToken(); token != "" {
		req.Header.Set(headerCSRF, token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	return resp, nil
}

// LoginURL returns the login route with returnTo as the next-page
// query parameter.
func (c *Client) LoginURL(returnTo string) string {
	u := *c.base
	u.Path = c.loginPath
	if returnTo != "" {
		u.RawQuery = url.Values{"next": {returnTo}}.Encode()
	}
	return u.String()
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

func (c *Client) sessionExpired(returnTo string) {
	loginURL := c.LoginURL(returnTo)
	c.log.Info().Str("login_url", loginURL).Msg("session expired, redirecting to login")
	if c.onSessionExpired != nil {
		c.onSessionExpired(loginURL)
	}
}

func (c *Client) resolve(path string) string {
	ref, err := url.Parse(path)
	if err != nil {
		return c.base.String() + path
	}
	return c.base.ResolveReference(ref).String()
}

// csrfToken reads the anti-forgery token the backend set as a cookie.
func (c *Client) csrfToken() string {
	for _, ck := range c.hc.Jar.Cookies(c.base) {
		if ck.Name == csrfCookieName {
			return ck.Value
		}
	}
	return ""
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

// compactJSON string-coerces an error body for the global modal.
func compactJSON(body []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, body); err != nil {
		return string(body)
	}
	return buf.String()
}

// localZoneName approximates the browser's IANA zone lookup: the TZ
// environment variable when set, otherwise the local location name.
func localZoneName() string {
	if tz := os.Getenv("TZ"); tz != "" {
		return tz
	}
	if name := time.Local.String(); name != "" && name != "Local" {
		return name
	}
	return "UTC"
}

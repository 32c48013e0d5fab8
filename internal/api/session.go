package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// storedCookie is the on-disk form of a session cookie. The jar only
// exposes name/value pairs, so that is all that round-trips.
type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// LoadCookies restores a previously saved session into the cookie jar.
// A missing file is not an error: it just means nobody logged in yet.
func (c *Client) LoadCookies(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read cookies: %w", err)
	}

	var stored []storedCookie
	if err := json.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("parse cookies: %w", err)
	}

	cookies := make([]*http.Cookie, 0, len(stored))
	for _, sc := range stored {
		cookies = append(cookies, &http.Cookie{Name: sc.Name, Value: sc.Value, Path: "/"})
	}
	c.hc.Jar.SetCookies(c.base, cookies)
	return nil
}

// SaveCookies persists the current session cookies.
func (c *Client) SaveCookies(path string) error {
	cookies := c.hc.Jar.Cookies(c.base)
	stored := make([]storedCookie, 0, len(cookies))
	for _, ck := range cookies {
		stored = append(stored, storedCookie{Name: ck.Name, Value: ck.Value})
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cookies: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write cookies: %w", err)
	}
	return nil
}

// Login authenticates against the backend. The login route is fetched
// first so the backend sets a CSRF cookie, then the credentials are
// posted with that token attached.
func (c *Client) Login(ctx context.Context, username, password string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve(c.loginPath), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", acceptValue)

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("fetch login page: %w", err)
	}
	drain(resp)

	var loginErr string
	ok, err := c.PostJSON(ctx, c.loginPath, map[string]string{
		"username": username,
		"password": password,
	}, nil, func(body json.RawMessage, status int) {
		loginErr = loadMessage(body)
	})
	if err != nil {
		return err
	}
	if !ok {
		if loginErr == "" || loginErr == genericLoadMessage {
			loginErr = "invalid credentials"
		}
		return fmt.Errorf("login failed: %s", loginErr)
	}

	c.log.Info().Str("username", username).Time("at", time.Now()).Msg("logged in")
	return nil
}

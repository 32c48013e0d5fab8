package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingSurface struct {
	texts []string
}

func (s *recordingSurface) ShowError(text string) {
	s.texts = append(s.texts, text)
}

func newTestClient(t *testing.T, serverURL string, opts ...Option) *Client {
	t.Helper()
	c, err := New(serverURL, opts...)
	require.NoError(t, err)
	return c
}

func TestPostJSONSuccessInvokesCallbackOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"plants": ["id1"], "timestamp": "T"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	var calls int
	var got struct {
		Plants    []string `json:"plants"`
		Timestamp string   `json:"timestamp"`
	}
	ok, err := c.PostJSON(context.Background(), "/bulk_add_plant_events", map[string]any{"plants": []string{"id1"}},
		func(body json.RawMessage) {
			calls++
			require.NoError(t, json.Unmarshal(body, &got))
		}, nil)

	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, calls)
	require.Equal(t, []string{"id1"}, got.Plants)
	require.Equal(t, "T", got.Timestamp)
}

func TestPostJSON401ShortCircuits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	var loginURL string
	c := newTestClient(t, srv.URL, WithSessionExpiredFunc(func(u string) { loginURL = u }))

	ok, err := c.PostJSON(context.Background(), "/bulk_add_plant_events", nil,
		func(json.RawMessage) { t.Fatal("onSuccess must not run on 401") },
		func(json.RawMessage, int) { t.Fatal("onError must not run on 401") })

	require.NoError(t, err, "an expired session is navigation, not a local error")
	require.False(t, ok)
	require.Contains(t, loginURL, "/accounts/login/")
	require.Contains(t, loginURL, "next=")
}

func TestPostJSONErrorWithoutHandlerGoesToSurface(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "bad"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	surface := &recordingSurface{}
	c.RegisterErrorSurface(surface)

	ok, err := c.PostJSON(context.Background(), "/bulk_add_plant_events", nil, nil, nil)

	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, []string{`{"error":"bad"}`}, surface.texts)
}

func TestPostJSONErrorWithHandlerStaysInline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"duplicate"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	surface := &recordingSurface{}
	c.RegisterErrorSurface(surface)

	var gotStatus int
	var gotBody string
	ok, err := c.PostJSON(context.Background(), "/register_plant", nil, nil,
		func(body json.RawMessage, status int) {
			gotStatus = status
			gotBody = string(body)
		})

	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, http.StatusConflict, gotStatus)
	require.JSONEq(t, `{"error":"duplicate"}`, gotBody)
	require.Empty(t, surface.texts, "inline handler suppresses the global modal")
}

func TestPostJSONMalformedBodyPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	ok, err := c.PostJSON(context.Background(), "/x", nil, func(json.RawMessage) {
		t.Fatal("onSuccess must not run for a malformed body")
	}, nil)

	require.Error(t, err)
	require.False(t, ok)
}

func TestPostRawPassthroughLeavesBodyUnread(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"x":1}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	resp, err := c.Post(context.Background(), "/x", map[string]int{"y": 2})
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.JSONEq(t, `{"x":1}`, string(body), "the pipeline must not consume the body")
}

func TestPostRaw401ReturnsSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	var hookFired bool
	c := newTestClient(t, srv.URL, WithSessionExpiredFunc(func(string) { hookFired = true }))

	resp, err := c.Post(context.Background(), "/x", nil)
	require.ErrorIs(t, err, ErrSessionExpired)
	require.Nil(t, resp)
	require.True(t, hookFired)
}

func TestPostAttachesHeaders(t *testing.T) {
	var gotHeaders http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	cookiesFile := filepath.Join(t.TempDir(), "cookies.json")
	require.NoError(t, os.WriteFile(cookiesFile, []byte(`[{"name":"csrftoken","value":"tok123"}]`), 0o600))

	c := newTestClient(t, srv.URL, WithTimezone("Europe/Berlin"))
	require.NoError(t, c.LoadCookies(cookiesFile))

	ok, err := c.PostJSON(context.Background(), "/x", nil, nil, nil)
	require.NoError(t, err)
	require.True(t, ok)

	require.Equal(t, "application/json, text/plain, */*", gotHeaders.Get("Accept"))
	require.Equal(t, "application/json", gotHeaders.Get("Content-Type"))
	require.Equal(t, "tok123", gotHeaders.Get("X-CSRFToken"))
	require.Equal(t, "Europe/Berlin", gotHeaders.Get("User-Timezone"))
}

func TestShowErrorFallsBackToLogWhenUnregistered(t *testing.T) {
	c := newTestClient(t, "http://localhost:1")
	// Must not panic with no surface mounted.
	c.ShowError("boom")

	surface := &recordingSurface{}
	c.RegisterErrorSurface(surface)
	c.ShowError("shown")
	c.ClearErrorSurface()
	c.ShowError("dropped")

	require.Equal(t, []string{"shown"}, surface.texts)
}

func TestNewRejectsRelativeServerURL(t *testing.T) {
	_, err := New("not-a-url")
	require.Error(t, err)
}

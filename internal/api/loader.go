package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"verdant/internal/domain"
)

// ErrStateMissing is returned by Hydrate when a named state blob is
// absent from the page payload.
var ErrStateMissing = errors.New("state blob missing")

// genericLoadMessage is shown when the backend gave no usable error text.
const genericLoadMessage = "Failed to load page state"

// PageState is a route's server-computed initial state: named JSON
// blobs the page decodes on first render, plus the page identifier for
// the generic resolve-and-dispatch route. Single-purpose routes return
// a flat object, which lands in State with Page empty.
type PageState struct {
	Page  string
	Title string
	State map[string]json.RawMessage
}

// LoadError is the typed failure the shell renders as a permission
// denied / unexpected error page.
type LoadError struct {
	Status  int
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load page state: status %d: %s", e.Status, e.Message)
}

// LoadPageState fetches a route's initial state before its page is
// built. Outcomes are three-way: the parsed state, ErrSessionExpired
// (the session-expired hook has fired with the requested path as the
// return target), or a *LoadError for everything else.
func (c *Client) LoadPageState(ctx context.Context, path string) (*PageState, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve(path), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", acceptValue)
	req.Header.Set(headerTimezone, c.timezone)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page state: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		io.Copy(io.Discard, resp.Body)
		c.sessionExpired(path)
		return nil, ErrSessionExpired
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType != "application/json" || resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(resp.Body)
		return nil, &LoadError{Status: resp.StatusCode, Message: loadMessage(body)}
	}

	var payload map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode page state: %w", err)
	}

	ps := &PageState{State: payload}
	var page string
	if raw, ok := payload["page"]; ok && json.Unmarshal(raw, &page) == nil {
		ps.Page = page
		if raw, ok := payload["title"]; ok {
			json.Unmarshal(raw, &ps.Title)
		}
		var state map[string]json.RawMessage
		if raw, ok := payload["state"]; ok && json.Unmarshal(raw, &state) == nil {
			ps.State = state
		}
	}
	return ps, nil
}

// LoadOverview fetches and hydrates the overview route.
func (c *Client) LoadOverview(ctx context.Context) (*domain.OverviewState, error) {
	ps, err := c.LoadPageState(ctx, "/get_overview_state")
	if err != nil {
		return nil, err
	}

	var state domain.OverviewState
	if err := Hydrate(ps.State, "plants", &state.Plants); err != nil {
		return nil, err
	}
	if err := Hydrate(ps.State, "groups", &state.Groups); err != nil {
		return nil, err
	}
	// Older backends omit the archive flag.
	if err := Hydrate(ps.State, "show_archive", &state.ShowArchive); err != nil && !errors.Is(err, ErrStateMissing) {
		return nil, err
	}
	return &state, nil
}

// Hydrate decodes one named state blob into dst. This is the client
// side of the server's bootstrap contract: one JSON blob per logical
// state key, decoded once on first render.
func Hydrate(state map[string]json.RawMessage, key string, dst any) error {
	raw, ok := state[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrStateMissing, key)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode state %q: %w", key, err)
	}
	return nil
}

// loadMessage extracts the server-provided error text from a failure
// body, falling back to a generic string.
func loadMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return genericLoadMessage
}

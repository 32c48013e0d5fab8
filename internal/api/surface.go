package api

import "sync"

// ErrorSurface displays backend error text to the user. The TUI error
// modal implements it.
type ErrorSurface interface {
	ShowError(text string)
}

// surfaceHandle is the process-wide registration point for the error
// surface. The mounted UI shell registers itself on start and clears
// the registration on quit; while nothing is registered, errors go to
// the client log.
type surfaceHandle struct {
	mu sync.Mutex
	s  ErrorSurface
}

// RegisterErrorSurface installs the surface that receives unhandled
// backend errors.
func (c *Client) RegisterErrorSurface(s ErrorSurface) {
	c.surface.mu.Lock()
	defer c.surface.mu.Unlock()
	c.surface.s = s
}

// ClearErrorSurface removes the registered surface.
func (c *Client) ClearErrorSurface() {
	c.surface.mu.Lock()
	defer c.surface.mu.Unlock()
	c.surface.s = nil
}

// ShowError routes error text to the registered surface, or to the log
// when no surface is mounted.
func (c *Client) ShowError(text string) {
	c.surface.mu.Lock()
	s := c.surface.s
	c.surface.mu.Unlock()

	if s == nil {
		c.log.Error().Str("error_text", text).Msg("backend error with no surface registered")
		return
	}
	s.ShowError(text)
}

package ui

import (
	"time"

	"verdant/internal/api"
	"verdant/internal/domain"
	"verdant/internal/eventbus"
)

// EventMsg wraps a domain event for the UI
type EventMsg struct {
	Event eventbus.DomainEvent
}

// stateLoadedMsg carries the overview state after a successful load
type stateLoadedMsg struct {
	state *domain.OverviewState
}

// stateFailedMsg carries the loader's typed failure
type stateFailedMsg struct {
	loadErr *api.LoadError
	err     error
}

// careDoneMsg reports a bulk care action the backend accepted
type careDoneMsg struct {
	kind      domain.EventKind
	plants    []string
	failed    []string
	timestamp time.Time
}

// careFailedMsg reports a bulk care action that never reached the backend
type careFailedMsg struct {
	kind domain.EventKind
	err  error
}

// careRejectedMsg reports a bulk care action the backend refused;
// the error text is already on the modal (or the session expired)
type careRejectedMsg struct {
	kind domain.EventKind
}

// archiveDoneMsg reports plants archived on the backend
type archiveDoneMsg struct {
	plants []string
}

// backendErrorMsg carries raw server error text for the modal
type backendErrorMsg struct {
	text string
}

// historyMsg carries one plant's fetched care history
type historyMsg struct {
	plantID string
	events  []domain.CareEvent
	err     error
}

// historyPagerMsg reports the pager having exited
type historyPagerMsg struct {
	err error
}

// toastClearMsg expires the toast line
type toastClearMsg struct {
	id int
}

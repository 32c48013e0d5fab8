package domain

import "time"

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventStateLoaded    EventType = "StateLoaded"
	EventCareLogged     EventType = "CareLogged"
	EventPlantsArchived EventType = "PlantsArchived"
	EventError          EventType = "Error"
	EventSessionExpired EventType = "SessionExpired"
	EventConfigLoaded   EventType = "ConfigLoaded"
	EventConfigSaved    EventType = "ConfigSaved"
	EventConfigChanged  EventType = "ConfigChanged"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// StateLoadedEvent is emitted when a route's initial state has been fetched
type StateLoadedEvent struct {
	Page  string
	State OverviewState
}

func (e StateLoadedEvent) Type() EventType { return EventStateLoaded }

// CareLoggedEvent is emitted when the backend accepted a bulk care action
type CareLoggedEvent struct {
	Kind      EventKind
	Plants    []string // plant UUIDs the event was logged for
	Failed    []string // plant UUIDs the backend rejected
	Timestamp time.Time
}

func (e CareLoggedEvent) Type() EventType { return EventCareLogged }

// PlantsArchivedEvent is emitted when plants were archived on the backend
type PlantsArchivedEvent struct {
	Plants []string
}

func (e PlantsArchivedEvent) Type() EventType { return EventPlantsArchived }

// ErrorEvent is emitted when an error occurs
type ErrorEvent struct {
	Message string
	Err     error
}

func (e ErrorEvent) Type() EventType { return EventError }

// SessionExpiredEvent is emitted when the backend answered 401
type SessionExpiredEvent struct {
	LoginURL string
	ReturnTo string
}

func (e SessionExpiredEvent) Type() EventType { return EventSessionExpired }

// ConfigLoadedEvent is emitted after the configuration has been read
type ConfigLoadedEvent struct {
	ServerURL string
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is emitted after the configuration has been written
type ConfigSavedEvent struct{}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }

// ConfigChangedEvent is emitted when the config file changed on disk.
// It carries everything a running session can apply without a restart.
type ConfigChangedEvent struct {
	ServerURL          string
	Timezone           string
	ShowCareTimes      bool
	ConfirmBulkActions bool
	ShowArchived       bool
}

func (e ConfigChangedEvent) Type() EventType { return EventConfigChanged }

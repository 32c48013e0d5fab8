package ui

import (
	"context"
	"encoding/json"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"verdant/internal/api"
	"verdant/internal/domain"
	"verdant/internal/eventbus"
)

const (
	bulkEventsPath  = "/bulk_add_plant_events"
	bulkArchivePath = "/bulk_archive_plants"
)

// CareOps submits bulk care actions through the request pipeline and
// turns the outcomes into messages for the model.
type CareOps struct {
	client *api.Client
	bus    eventbus.EventBus
}

// NewCareOps creates a new care operations handler
func NewCareOps(client *api.Client, bus eventbus.EventBus) *CareOps {
	return &CareOps{client: client, bus: bus}
}

type bulkEventPayload struct {
	Plants    []string `json:"plants"`
	EventType string   `json:"event_type"`
	Timestamp string   `json:"timestamp"`
}

type bulkEventResponse struct {
	Action    string    `json:"action"`
	Plants    []string  `json:"plants"`
	Failed    []string  `json:"failed"`
	Timestamp time.Time `json:"timestamp"`
}

type bulkArchivePayload struct {
	Plants   []string `json:"plants"`
	Archived bool     `json:"archived"`
}

type bulkArchiveResponse struct {
	Archived []string `json:"archived"`
	Failed   []string `json:"failed"`
}

// LogEvents records one care event for each given plant. The caller
// has already filtered the selection, so plantIDs contains only live,
// known plants.
func (o *CareOps) LogEvents(kind domain.EventKind, plantIDs []string) tea.Cmd {
	if len(plantIDs) == 0 {
		return nil
	}
	payload := bulkEventPayload{
		Plants:    plantIDs,
		EventType: string(kind),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	return func() tea.Msg {
		var (
			result   bulkEventResponse
			parseErr error
		)
		ok, err := o.client.PostJSON(context.Background(), bulkEventsPath, payload, func(body json.RawMessage) {
			parseErr = json.Unmarshal(body, &result)
		}, nil)
		if err != nil {
			o.bus.Publish(eventbus.ErrorEvent{Message: err.Error(), Err: err})
			return careFailedMsg{kind: kind, err: err}
		}
		if !ok {
			return careRejectedMsg{kind: kind}
		}
		if parseErr != nil {
			o.bus.Publish(eventbus.ErrorEvent{Message: parseErr.Error(), Err: parseErr})
			return careFailedMsg{kind: kind, err: parseErr}
		}

		o.bus.Publish(eventbus.CareLoggedEvent{
			Kind:      kind,
			Plants:    result.Plants,
			Failed:    result.Failed,
			Timestamp: result.Timestamp,
		})
		return careDoneMsg{
			kind:      kind,
			plants:    result.Plants,
			failed:    result.Failed,
			timestamp: result.Timestamp,
		}
	}
}

// ArchivePlants archives the given plants on the backend.
func (o *CareOps) ArchivePlants(plantIDs []string) tea.Cmd {
	if len(plantIDs) == 0 {
		return nil
	}
	payload := bulkArchivePayload{Plants: plantIDs, Archived: true}

	return func() tea.Msg {
		var (
			result   bulkArchiveResponse
			parseErr error
		)
		ok, err := o.client.PostJSON(context.Background(), bulkArchivePath, payload, func(body json.RawMessage) {
			parseErr = json.Unmarshal(body, &result)
		}, nil)
		if err != nil {
			o.bus.Publish(eventbus.ErrorEvent{Message: err.Error(), Err: err})
			return careFailedMsg{kind: domain.EventNote, err: err}
		}
		if !ok {
			return careRejectedMsg{kind: domain.EventNote}
		}
		if parseErr != nil {
			o.bus.Publish(eventbus.ErrorEvent{Message: parseErr.Error(), Err: parseErr})
			return careFailedMsg{kind: domain.EventNote, err: parseErr}
		}

		o.bus.Publish(eventbus.PlantsArchivedEvent{Plants: result.Archived})
		return archiveDoneMsg{plants: result.Archived}
	}
}

package ui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"verdant/internal/api"
	"verdant/internal/domain"
	"verdant/internal/eventbus"
)

func TestLogEventsSubmitsAndPublishes(t *testing.T) {
	ts := time.Date(2026, time.August, 25, 12, 0, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, bulkEventsPath, r.URL.Path)

		var payload bulkEventPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "water", payload.EventType)
		require.Equal(t, []string{"p1", "p2"}, payload.Plants)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(bulkEventResponse{
			Action:    "water",
			Plants:    payload.Plants,
			Timestamp: ts,
		})
	}))
	defer server.Close()

	client, err := api.New(server.URL)
	require.NoError(t, err)

	bus := eventbus.New(zerolog.Nop())
	logged := make(chan eventbus.CareLoggedEvent, 1)
	bus.Subscribe(eventbus.EventCareLogged, func(e eventbus.DomainEvent) {
		if ev, ok := e.(eventbus.CareLoggedEvent); ok {
			logged <- ev
		}
	})

	msg := NewCareOps(client, bus).LogEvents(domain.EventWater, []string{"p1", "p2"})()

	done, ok := msg.(careDoneMsg)
	require.True(t, ok, "got %T", msg)
	require.Equal(t, domain.EventWater, done.kind)
	require.Equal(t, []string{"p1", "p2"}, done.plants)
	require.Empty(t, done.failed)
	require.True(t, done.timestamp.Equal(ts))

	select {
	case ev := <-logged:
		require.Equal(t, []string{"p1", "p2"}, ev.Plants)
	case <-time.After(2 * time.Second):
		t.Fatal("CareLoggedEvent never published")
	}
}

func TestLogEventsRejectedByBackend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "unknown plant"}`))
	}))
	defer server.Close()

	client, err := api.New(server.URL)
	require.NoError(t, err)

	msg := NewCareOps(client, eventbus.New(zerolog.Nop())).LogEvents(domain.EventWater, []string{"p1"})()

	rejected, ok := msg.(careRejectedMsg)
	require.True(t, ok, "got %T", msg)
	require.Equal(t, domain.EventWater, rejected.kind)
}

func TestLogEventsSessionExpiredIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	expired := make(chan string, 1)
	client, err := api.New(server.URL, api.WithSessionExpiredFunc(func(loginURL string) {
		expired <- loginURL
	}))
	require.NoError(t, err)

	msg := NewCareOps(client, eventbus.New(zerolog.Nop())).LogEvents(domain.EventWater, []string{"p1"})()

	_, ok := msg.(careRejectedMsg)
	require.True(t, ok, "a 401 is navigation, not a failure: got %T", msg)

	select {
	case url := <-expired:
		require.Contains(t, url, "/accounts/login/")
	default:
		t.Fatal("session expired hook never fired")
	}
}

func TestLogEventsNilForEmptySelection(t *testing.T) {
	client, err := api.New("http://127.0.0.1:1")
	require.NoError(t, err)
	require.Nil(t, NewCareOps(client, eventbus.New(zerolog.Nop())).LogEvents(domain.EventWater, nil))
}

func TestLogEventsNetworkFailurePublishesError(t *testing.T) {
	client, err := api.New("http://127.0.0.1:1")
	require.NoError(t, err)

	bus := eventbus.New(zerolog.Nop())
	errored := make(chan eventbus.ErrorEvent, 1)
	bus.Subscribe(eventbus.EventError, func(e eventbus.DomainEvent) {
		if ev, ok := e.(eventbus.ErrorEvent); ok {
			errored <- ev
		}
	})

	msg := NewCareOps(client, bus).LogEvents(domain.EventWater, []string{"p1"})()

	failed, ok := msg.(careFailedMsg)
	require.True(t, ok, "got %T", msg)
	require.Error(t, failed.err)

	select {
	case ev := <-errored:
		require.NotEmpty(t, ev.Message)
	case <-time.After(2 * time.Second):
		t.Fatal("ErrorEvent never published")
	}
}

func TestArchivePlantsMalformedSuccessBodyFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"archived": 123}`))
	}))
	defer server.Close()

	client, err := api.New(server.URL)
	require.NoError(t, err)

	msg := NewCareOps(client, eventbus.New(zerolog.Nop())).ArchivePlants([]string{"p1"})()

	failed, ok := msg.(careFailedMsg)
	require.True(t, ok, "a 2xx body that fails to decode is a failure, not a silent rejection: got %T", msg)
	require.Error(t, failed.err)
}

func TestArchivePlantsSubmitsAndPublishes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, bulkArchivePath, r.URL.Path)

		var payload bulkArchivePayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.True(t, payload.Archived)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(bulkArchiveResponse{Archived: payload.Plants})
	}))
	defer server.Close()

	client, err := api.New(server.URL)
	require.NoError(t, err)

	bus := eventbus.New(zerolog.Nop())
	archived := make(chan eventbus.PlantsArchivedEvent, 1)
	bus.Subscribe(eventbus.EventPlantsArchived, func(e eventbus.DomainEvent) {
		if ev, ok := e.(eventbus.PlantsArchivedEvent); ok {
			archived <- ev
		}
	})

	msg := NewCareOps(client, bus).ArchivePlants([]string{"p1"})()

	done, ok := msg.(archiveDoneMsg)
	require.True(t, ok, "got %T", msg)
	require.Equal(t, []string{"p1"}, done.plants)

	select {
	case ev := <-archived:
		require.Equal(t, []string{"p1"}, ev.Plants)
	case <-time.After(2 * time.Second):
		t.Fatal("PlantsArchivedEvent never published")
	}
}

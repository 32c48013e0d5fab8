package eventbus

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesSubscriber(t *testing.T) {
	bus := New(zerolog.Nop())

	got := make(chan DomainEvent, 1)
	bus.Subscribe(EventCareLogged, func(e DomainEvent) {
		select {
		case got <- e:
		default:
		}
	})

	bus.Publish(CareLoggedEvent{Plants: []string{"p1"}})

	select {
	case e := <-got:
		ev, ok := e.(CareLoggedEvent)
		require.True(t, ok)
		require.Equal(t, []string{"p1"}, ev.Plants)
	case <-time.After(2 * time.Second):
		t.Fatal("event never delivered")
	}
}

func TestEventsOnlyReachMatchingType(t *testing.T) {
	bus := New(zerolog.Nop())

	got := make(chan DomainEvent, 1)
	bus.Subscribe(EventError, func(e DomainEvent) { got <- e })

	bus.Publish(CareLoggedEvent{})
	bus.Publish(ErrorEvent{Message: "boom"})

	select {
	case e := <-got:
		require.IsType(t, ErrorEvent{}, e)
	case <-time.After(2 * time.Second):
		t.Fatal("event never delivered")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := New(zerolog.Nop())

	got := make(chan DomainEvent, 4)
	unsubscribe := bus.Subscribe(EventError, func(e DomainEvent) { got <- e })

	bus.Publish(ErrorEvent{Message: "first"})
	select {
	case <-got:
	case <-time.After(2 * time.Second):
		t.Fatal("first event never delivered")
	}

	unsubscribe()
	bus.Publish(ErrorEvent{Message: "second"})

	select {
	case e := <-got:
		t.Fatalf("unexpected delivery after unsubscribe: %v", e)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHandlerPanicDoesNotKillDispatcher(t *testing.T) {
	bus := New(zerolog.Nop())

	bus.Subscribe(EventError, func(DomainEvent) { panic("handler bug") })
	got := make(chan DomainEvent, 1)
	bus.Subscribe(EventError, func(e DomainEvent) { got <- e })

	bus.Publish(ErrorEvent{Message: "boom"})

	select {
	case <-got:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatcher died with the panicking handler")
	}
}

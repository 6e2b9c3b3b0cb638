package event

import (
	"testing"
)

func TestBus_PublishToSubscriber(t *testing.T) {
	bus := NewBus()

	var got []Event
	bus.Subscribe("stage.started", func(e Event) { got = append(got, e) })

	bus.Publish(NewStageStartedEvent(1, "questions"))
	bus.Publish(NewStageCompletedEvent(1, "questions", 0, 3)) // different type, not delivered

	if len(got) != 1 {
		t.Fatalf("delivered %d events, want 1", len(got))
	}
	ev, ok := got[0].(StageStartedEvent)
	if !ok {
		t.Fatalf("delivered event has type %T", got[0])
	}
	if ev.Round != 1 || ev.Stage != "questions" {
		t.Errorf("event = %+v", ev)
	}
}

func TestBus_SubscribeAll(t *testing.T) {
	bus := NewBus()

	var count int
	bus.SubscribeAll(func(Event) { count++ })

	bus.Publish(NewStageStartedEvent(1, "research"))
	bus.Publish(NewRoundCompletedEvent(1, 0.8, true))
	bus.Publish(NewGenerationCompletedEvent(1, 1024))

	if count != 3 {
		t.Errorf("wildcard handler saw %d events, want 3", count)
	}
}

func TestBus_Ordering(t *testing.T) {
	bus := NewBus()

	var order []string
	bus.Subscribe("stage.completed", func(Event) { order = append(order, "specific") })
	bus.SubscribeAll(func(Event) { order = append(order, "wildcard") })

	bus.Publish(NewStageCompletedEvent(1, "voting", 0, 5))

	if len(order) != 2 || order[0] != "specific" || order[1] != "wildcard" {
		t.Errorf("order = %v, want [specific wildcard]", order)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()

	var count int
	id := bus.Subscribe("stage.started", func(Event) { count++ })

	bus.Publish(NewStageStartedEvent(1, "questions"))
	if !bus.Unsubscribe(id) {
		t.Error("Unsubscribe returned false for live subscription")
	}
	bus.Publish(NewStageStartedEvent(1, "research"))

	if count != 1 {
		t.Errorf("handler ran %d times, want 1", count)
	}
	if bus.Unsubscribe(id) {
		t.Error("Unsubscribe returned true for removed subscription")
	}
}

func TestBus_PanickingHandlerDoesNotBlockOthers(t *testing.T) {
	bus := NewBus()

	var reached bool
	bus.Subscribe("stage.failed", func(Event) { panic("handler bug") })
	bus.Subscribe("stage.failed", func(Event) { reached = true })

	bus.Publish(NewStageFailedEvent(1, "voting", "unknown", "t", "m", false))

	if !reached {
		t.Error("second handler was not reached after first panicked")
	}
}

func TestBus_Clear(t *testing.T) {
	bus := NewBus()

	var count int
	bus.Subscribe("stage.started", func(Event) { count++ })
	bus.Clear()
	bus.Publish(NewStageStartedEvent(1, "questions"))

	if count != 0 {
		t.Error("handler ran after Clear")
	}
}

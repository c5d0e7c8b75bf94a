package agent

import (
	"testing"
	"time"
)

func TestEventBus_FanOut(t *testing.T) {
	bus := NewEventBus()
	a, unsubA := bus.Subscribe(1)
	b, unsubB := bus.Subscribe(1)
	defer unsubB()

	bus.Publish(Event{Type: EventPersisted})

	for _, ch := range []<-chan Event{a, b} {
		select {
		case e := <-ch:
			if e.Type != EventPersisted || e.At.IsZero() {
				t.Errorf("unexpected event %+v", e)
			}
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}

	unsubA()
	unsubA()
	if _, ok := <-a; ok {
		t.Error("channel should be closed after unsubscribe")
	}
}

func TestEventBus_SlowSubscriberDoesNotBlock(t *testing.T) {
	bus := NewEventBus()
	ch, unsub := bus.Subscribe(1)
	defer unsub()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			bus.Publish(Event{Type: EventCommandApplied})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}
	if len(ch) != 1 {
		t.Errorf("buffered = %d, want 1", len(ch))
	}
}

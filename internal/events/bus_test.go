package events

import (
	"testing"
	"time"
)

func TestBus_PublishDeliversInSubscriptionOrder(t *testing.T) {
	bus := NewBus()

	var got []string
	bus.Subscribe(func(e Event) { got = append(got, "first:"+e.Topic) })
	bus.Subscribe(func(e Event) { got = append(got, "second:"+e.Topic) })

	bus.Publish(Event{Topic: "extraction.started"})

	if len(got) != 2 || got[0] != "first:extraction.started" || got[1] != "second:extraction.started" {
		t.Fatalf("unexpected delivery: %v", got)
	}
}

func TestBus_PublishStampsDefaults(t *testing.T) {
	bus := NewBus()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	bus.now = func() time.Time { return fixed }

	var received Event
	bus.Subscribe(func(e Event) { received = e })
	bus.Publish(Event{Topic: "t", Message: "m"})

	if received.ID == "" {
		t.Fatal("expected generated id")
	}
	if !received.CreatedAt.Equal(fixed) {
		t.Fatalf("expected %v, got %v", fixed, received.CreatedAt)
	}
	if received.Level != LevelInfo {
		t.Fatalf("expected default level info, got %q", received.Level)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()
	calls := 0
	unsubscribe := bus.Subscribe(func(Event) { calls++ })

	bus.Publish(Event{Topic: "a"})
	unsubscribe()
	unsubscribe() // second call is a no-op
	bus.Publish(Event{Topic: "b"})

	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
	if bus.Len() != 0 {
		t.Fatalf("expected no subscribers, got %d", bus.Len())
	}
}

func TestBus_NilPublishIsNoop(t *testing.T) {
	var bus *Bus
	bus.Publish(Event{Topic: "ignored"})
}

func TestBus_InstancesAreIndependent(t *testing.T) {
	a, b := NewBus(), NewBus()
	hits := 0
	a.Subscribe(func(Event) { hits++ })

	b.Publish(Event{Topic: "other"})
	if hits != 0 {
		t.Fatalf("event leaked across buses: %d", hits)
	}
}

func TestFeed_KeepsNewestWithinCapacity(t *testing.T) {
	bus := NewBus()
	feed := NewFeed(2)
	feed.Attach(bus)

	for _, topic := range []string{"one", "two", "three"} {
		bus.Publish(Event{Topic: topic})
	}

	recent := feed.Recent(0)
	if len(recent) != 2 {
		t.Fatalf("expected 2 events, got %d", len(recent))
	}
	if recent[0].Topic != "three" || recent[1].Topic != "two" {
		t.Fatalf("unexpected order: %s, %s", recent[0].Topic, recent[1].Topic)
	}

	if got := feed.Recent(1); len(got) != 1 || got[0].Topic != "three" {
		t.Fatalf("unexpected limited result: %+v", got)
	}

	feed.Clear()
	if len(feed.Recent(0)) != 0 {
		t.Fatal("expected empty feed after clear")
	}
}

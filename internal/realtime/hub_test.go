package realtime

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func testHub() *Hub {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewHub(log)
}

func TestSubscribeReceivesMatchingTable(t *testing.T) {
	hub := testHub()
	events, cancel := hub.Subscribe("bus_locations")
	defer cancel()

	hub.Publish(Change{Table: "bus_locations", Event: EventInsert, New: "row"})

	select {
	case ev := <-events:
		if ev.Table != "bus_locations" || ev.Event != EventInsert {
			t.Fatalf("unexpected event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("event never delivered")
	}
}

func TestSubscribeFiltersOtherTables(t *testing.T) {
	hub := testHub()
	events, cancel := hub.Subscribe("notices")
	defer cancel()

	hub.Publish(Change{Table: "bus_locations", Event: EventUpdate})

	select {
	case ev := <-events:
		t.Fatalf("received event for foreign table: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscribeAllTables(t *testing.T) {
	hub := testHub()
	events, cancel := hub.Subscribe("")
	defer cancel()

	hub.Publish(Change{Table: "bus_locations", Event: EventUpdate})
	hub.Publish(Change{Table: "notices", Event: EventInsert})

	for i := 0; i < 2; i++ {
		select {
		case <-events:
		case <-time.After(time.Second):
			t.Fatalf("event %d never delivered", i)
		}
	}
}

func TestCancelClosesChannel(t *testing.T) {
	hub := testHub()
	events, cancel := hub.Subscribe("bus_locations")
	cancel()

	if _, ok := <-events; ok {
		t.Fatal("expected closed channel after cancel")
	}

	// publishing after cancel must not panic
	hub.Publish(Change{Table: "bus_locations", Event: EventDelete})
}

func TestFullSubscriberDropsInsteadOfBlocking(t *testing.T) {
	hub := testHub()
	_, cancel := hub.Subscribe("bus_locations")
	defer cancel()

	// nobody drains the channel; publishing past the buffer must not block
	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			hub.Publish(Change{Table: "bus_locations", Event: EventUpdate})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

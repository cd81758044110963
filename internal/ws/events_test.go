package ws

import (
	"encoding/json"
	"testing"
	"time"

	"smartmatch/internal/domain/matching"
)

// receive registers a bare client and returns its send channel. The pumps are
// not started; messages are read straight off the channel.
func receive(t *testing.T, hub *Hub) chan []byte {
	t.Helper()
	client := NewClient(hub, nil)
	hub.Register(client)

	// Wait for the hub goroutine to pick up the registration.
	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("client never registered")
		}
		time.Sleep(time.Millisecond)
	}
	return client.send
}

func TestNotifier_BreakerTransitionEvent(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	send := receive(t, hub)

	n := NewEventNotifier(hub)
	n.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	n.BreakerTransition("nexten-matcher", "closed", "open")

	select {
	case raw := <-send:
		var evt BreakerEvent
		if err := json.Unmarshal(raw, &evt); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if evt.Type != "breaker_transition" || evt.Backend != "nexten-matcher" {
			t.Fatalf("unexpected event: %+v", evt)
		}
		if evt.From != "closed" || evt.To != "open" {
			t.Fatalf("unexpected transition: %+v", evt)
		}
		if evt.Timestamp != "2025-06-01T12:00:00Z" {
			t.Fatalf("unexpected timestamp: %s", evt.Timestamp)
		}
	case <-time.After(time.Second):
		t.Fatalf("no event received")
	}
}

func TestNotifier_MatchCompletedEvent(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	send := receive(t, hub)

	n := NewEventNotifier(hub)
	n.MatchCompleted("req-1", matching.AlgorithmHybrid, true, 7)

	select {
	case raw := <-send:
		var evt MatchCompletedEvent
		if err := json.Unmarshal(raw, &evt); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if evt.Type != "match_completed" || evt.RequestID != "req-1" {
			t.Fatalf("unexpected event: %+v", evt)
		}
		if evt.Algorithm != "hybrid" || !evt.FallbackUsed || evt.Matches != 7 {
			t.Fatalf("unexpected payload: %+v", evt)
		}
	case <-time.After(time.Second):
		t.Fatalf("no event received")
	}
}

func TestNotifier_NilHubIsNoop(t *testing.T) {
	var n *EventNotifier
	n.BreakerTransition("x", "closed", "open")
	n.MatchCompleted("r", matching.AlgorithmBasic, false, 0)
}

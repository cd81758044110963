package ws

import (
	"encoding/json"
	"time"

	"smartmatch/internal/domain/matching"
)

type BreakerEvent struct {
	Type      string `json:"type"`
	Backend   string `json:"backend"`
	From      string `json:"from"`
	To        string `json:"to"`
	Timestamp string `json:"timestamp"`
}

type MatchCompletedEvent struct {
	Type         string `json:"type"`
	RequestID    string `json:"request_id"`
	Algorithm    string `json:"algorithm"`
	FallbackUsed bool   `json:"fallback_used"`
	Matches      int    `json:"matches"`
	Timestamp    string `json:"timestamp"`
}

// EventNotifier publishes orchestration events through a hub. It is injected
// wherever events originate; there is no package-level default.
type EventNotifier struct {
	hub *Hub
	now func() time.Time
}

func NewEventNotifier(hub *Hub) *EventNotifier {
	return &EventNotifier{hub: hub, now: time.Now}
}

func (n *EventNotifier) BreakerTransition(backend, from, to string) {
	if n == nil || n.hub == nil {
		return
	}
	n.publish(BreakerEvent{
		Type:      "breaker_transition",
		Backend:   backend,
		From:      from,
		To:        to,
		Timestamp: n.now().UTC().Format(time.RFC3339),
	})
}

func (n *EventNotifier) MatchCompleted(requestID string, algorithm matching.Algorithm, fallbackUsed bool, matches int) {
	if n == nil || n.hub == nil {
		return
	}
	n.publish(MatchCompletedEvent{
		Type:         "match_completed",
		RequestID:    requestID,
		Algorithm:    string(algorithm),
		FallbackUsed: fallbackUsed,
		Matches:      matches,
		Timestamp:    n.now().UTC().Format(time.RFC3339),
	})
}

func (n *EventNotifier) publish(evt any) {
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}
	n.hub.Broadcast(b)
}

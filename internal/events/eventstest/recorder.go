// Package eventstest records published events for tests.
package eventstest

import (
	"context"
	"encoding/json"
	"github.com/ariefcatur/go-shop-bot/internal/events"
	"sync"
)

type Emitted struct {
	Topic      string
	EventType  string
	CustomerID int64
	Payload    json.RawMessage
}

type Recorder struct {
	mu     sync.Mutex
	events []Emitted
	// Err, when set, is returned by every Emit after recording.
	Err error
}

var _ events.Bus = (*Recorder)(nil)

func (r *Recorder) Emit(_ context.Context, topic, eventType string, customerID int64, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Emitted{Topic: topic, EventType: eventType, CustomerID: customerID, Payload: b})
	return r.Err
}

func (r *Recorder) Events() []Emitted {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Emitted(nil), r.events...)
}

// OfType returns the emitted events of one type.
func (r *Recorder) OfType(eventType string) []Emitted {
	var out []Emitted
	for _, e := range r.Events() {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

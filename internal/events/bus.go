package events

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"strconv"
	"time"
)

// Publisher is satisfied by *kafka.Producer.
type Publisher interface {
	Publish(ctx context.Context, key, value []byte, headers ...kafkago.Header) error
}

// Bus publishes one domain event about a customer.
type Bus interface {
	Emit(ctx context.Context, topic, eventType string, customerID int64, payload any) error
}

// KafkaBus routes events to one producer per topic.
type KafkaBus struct {
	Producers map[string]Publisher
	Service   string
}

func (b *KafkaBus) Emit(ctx context.Context, topic, eventType string, customerID int64, payload any) error {
	p, ok := b.Producers[topic]
	if !ok {
		return fmt.Errorf("events: no producer for topic %s", topic)
	}
	env, err := New(ctx, b.Service, eventType, customerID, payload)
	if err != nil {
		return err
	}
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	return p.Publish(ctx, PartitionKey(customerID), value,
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte(strconv.Itoa(Version))},
	)
}

type traceKey struct{}

// WithTrace attaches the request id of the inbound update to ctx.
func WithTrace(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceKey{}, id)
}

func TraceFrom(ctx context.Context) string {
	id, _ := ctx.Value(traceKey{}).(string)
	return id
}

// New wraps payload in a v1 envelope.
func New(ctx context.Context, producer, eventType string, customerID int64, payload any) (Envelope, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode payload: %w", err)
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  Version,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		TraceID:       TraceFrom(ctx),
		CorrelationID: strconv.FormatInt(customerID, 10),
		Payload:       b,
	}, nil
}

func Decode(b []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}

// UnwrapPayload memudahkan decode payload spesifik
func UnwrapPayload[T any](payload json.RawMessage) (T, error) {
	var t T
	if err := json.Unmarshal(payload, &t); err != nil {
		return t, fmt.Errorf("decode payload: %w", err)
	}
	return t, nil
}

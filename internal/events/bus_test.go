package events

import (
	"context"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

type published struct {
	key, value []byte
	headers    []kafkago.Header
}

type fakePublisher struct{ got []published }

func (f *fakePublisher) Publish(_ context.Context, key, value []byte, headers ...kafkago.Header) error {
	f.got = append(f.got, published{key, value, headers})
	return nil
}

func TestKafkaBus_Emit(t *testing.T) {
	p := &fakePublisher{}
	bus := &KafkaBus{Producers: map[string]Publisher{TopicBasketExpired: p}, Service: "shop-bot"}
	ctx := WithTrace(context.Background(), "req-1")

	err := bus.Emit(ctx, TopicBasketExpired, EventBasketExpired, 77, BasketExpiredPayload{CustomerID: 77})
	require.NoError(t, err)
	require.Len(t, p.got, 1)

	msg := p.got[0]
	assert.Equal(t, []byte("77"), msg.key)
	assert.Equal(t, []kafkago.Header{
		{Key: "x-event-type", Value: []byte(EventBasketExpired)},
		{Key: "x-event-version", Value: []byte("1")},
	}, msg.headers)

	env, err := Decode(msg.value)
	require.NoError(t, err)
	assert.Equal(t, EventBasketExpired, env.EventType)
	assert.Equal(t, Version, env.EventVersion)
	assert.Equal(t, "shop-bot", env.Producer)
	assert.Equal(t, "req-1", env.TraceID)
	assert.Equal(t, "77", env.CorrelationID)
	assert.NotEmpty(t, env.EventID)

	body, err := UnwrapPayload[BasketExpiredPayload](env.Payload)
	require.NoError(t, err)
	assert.Equal(t, int64(77), body.CustomerID)
}

func TestKafkaBus_UnknownTopic(t *testing.T) {
	bus := &KafkaBus{Producers: map[string]Publisher{}}
	err := bus.Emit(context.Background(), "nope", EventOrderSettled, 1, nil)
	assert.ErrorContains(t, err, "no producer for topic nope")
}

func TestDecode_Garbage(t *testing.T) {
	_, err := Decode([]byte("{"))
	assert.ErrorContains(t, err, "decode envelope")
}

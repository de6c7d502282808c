package transport_test

import (
	"context"
	"errors"
	"github.com/ariefcatur/go-shop-bot/internal/checkout"
	"github.com/ariefcatur/go-shop-bot/internal/events"
	"github.com/ariefcatur/go-shop-bot/internal/events/eventstest"
	"github.com/ariefcatur/go-shop-bot/internal/kafka"
	"github.com/ariefcatur/go-shop-bot/internal/transport"
	"github.com/ariefcatur/go-shop-bot/internal/transport/transporttest"
	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func TestNewInvoice_MinorUnits(t *testing.T) {
	inv := transport.NewInvoice(9, "RUB", checkout.Invoice{
		Title:   "Basket",
		Payload: "7:2:b",
		Lines:   []checkout.InvoiceLine{{ItemID: 7, Label: `"Tea" - 2 pcs.`, Amount: 500}},
	})
	require.Len(t, inv.Prices, 1)
	assert.Equal(t, 50000, inv.Prices[0].Amount)
	assert.True(t, inv.Flexible)
	assert.True(t, inv.NeedShipping)
	assert.Equal(t, "7:2:b", inv.Payload)

	a := transport.NewShippingAnswer("q1", checkout.DefaultShipping().Answer(checkout.ShippingQuery{
		Address: checkout.Address{CountryCode: "RU"},
	}))
	assert.True(t, a.OK)
	for _, o := range a.Options {
		if o.ID == "moscow" {
			require.Len(t, o.Prices, 1)
			assert.Equal(t, 30000, o.Prices[0].Amount)
		}
	}
}

func TestOutbox_ReplaysEveryKind(t *testing.T) {
	ctx := context.Background()
	bus := &eventstest.Recorder{}
	out := &transport.Outbox{Bus: bus}

	require.NoError(t, out.Send(ctx, transport.Message{ChatID: 5, Text: "hi", Keyboard: [][]transport.Button{{{Text: "Basket"}}}}))
	require.NoError(t, out.SendInvoice(ctx, transport.Invoice{ChatID: 5, Title: "Basket", Payload: "1:1:b"}))
	require.NoError(t, out.AnswerShipping(ctx, transport.ShippingAnswer{QueryID: "s1", Error: "no"}))
	require.NoError(t, out.AnswerPreCheckout(ctx, transport.PreCheckoutAnswer{QueryID: "p1", OK: true}))
	require.NoError(t, out.AnswerInline(ctx, transport.InlineAnswer{
		QueryID: "i1", NextOffset: "50",
		Results: []transport.InlineResult{{ID: "7", Title: "Tea", Button: transport.Button{Text: "Open", Data: "item:7:1"}}},
	}))

	sent := bus.Events()
	require.Len(t, sent, 5)
	assert.Equal(t, events.TopicOutbound, sent[0].Topic)
	assert.EqualValues(t, 5, sent[0].CustomerID)

	rec := &transporttest.Recorder{}
	for _, e := range sent {
		require.NoError(t, transport.Replay(ctx, events.Envelope{Payload: e.Payload}, rec))
	}
	assert.Equal(t, "hi", rec.Last().Text)
	assert.Equal(t, "Basket", rec.Last().Keyboard[0][0].Text)
	require.Len(t, rec.Invoices, 1)
	assert.Equal(t, "1:1:b", rec.Invoices[0].Payload)
	require.Len(t, rec.Shipping, 1)
	assert.Equal(t, "s1", rec.Shipping[0].QueryID)
	require.Len(t, rec.Checks, 1)
	assert.True(t, rec.Checks[0].OK)
	require.Len(t, rec.Inline, 1)
	assert.Equal(t, "50", rec.Inline[0].NextOffset)
	assert.Equal(t, "item:7:1", rec.Inline[0].Results[0].Button.Data)

	err := transport.Replay(ctx, events.Envelope{Payload: []byte(`{"kind":"fax"}`)}, rec)
	assert.Error(t, err)
}

type flaky struct {
	transporttest.Recorder
	failures int
	err      error
	calls    int
}

func (f *flaky) Send(ctx context.Context, m transport.Message) error {
	f.calls++
	if f.calls <= f.failures {
		return f.err
	}
	return f.Recorder.Send(ctx, m)
}

func instant(next transport.Sender) *transport.Retrying {
	r := transport.NewRetrying(next)
	transport.SetNewBackOff(r, func() backoff.BackOff { return &backoff.ZeroBackOff{} })
	return r
}

func TestRetrying_RecoversFromTransientErrors(t *testing.T) {
	f := &flaky{failures: 2, err: errors.New("broker down")}
	require.NoError(t, instant(f).Send(context.Background(), transport.Message{ChatID: 1, Text: "x"}))
	assert.Equal(t, 3, f.calls)
	assert.Len(t, f.Messages, 1)
}

func TestRetrying_GivesUp(t *testing.T) {
	f := &flaky{failures: 100, err: errors.New("broker down")}
	r := instant(f)
	r.MaxTries = 3
	assert.Error(t, r.Send(context.Background(), transport.Message{ChatID: 1}))
	assert.Equal(t, 3, f.calls)
}

func TestRetrying_ClosedProducerIsFinal(t *testing.T) {
	f := &flaky{failures: 100, err: kafka.ErrClosed}
	err := instant(f).Send(context.Background(), transport.Message{ChatID: 1})
	assert.ErrorIs(t, err, kafka.ErrClosed)
	assert.Equal(t, 1, f.calls)
}

func TestRetrying_StopsOnContext(t *testing.T) {
	f := &flaky{failures: 100, err: errors.New("broker down")}
	r := transport.NewRetrying(f)
	transport.SetNewBackOff(r, func() backoff.BackOff { return backoff.NewConstantBackOff(time.Hour) })
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, r.Send(ctx, transport.Message{ChatID: 1}))
	assert.Equal(t, 1, f.calls)
}

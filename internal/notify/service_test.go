package notify

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/ariefcatur/go-shop-bot/internal/events"
	"github.com/ariefcatur/go-shop-bot/internal/transport"
	"github.com/ariefcatur/go-shop-bot/internal/transport/transporttest"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

type memMarks map[string]bool

func (m memMarks) Done(_ context.Context, key string) (bool, error) { return m[key], nil }
func (m memMarks) Mark(_ context.Context, key string) error         { m[key] = true; return nil }

// flaky fails every send to one chat until healed.
type flaky struct {
	transporttest.Recorder
	down int64
}

func (f *flaky) Send(ctx context.Context, m transport.Message) error {
	if m.ChatID == f.down {
		return errors.New("gateway down")
	}
	return f.Recorder.Send(ctx, m)
}

func message(t *testing.T, eventType string, payload any) kafkago.Message {
	t.Helper()
	env, err := events.New(events.WithTrace(context.Background(), "tr-1"), "shop-bot", eventType, 500, payload)
	require.NoError(t, err)
	b, err := json.Marshal(env)
	require.NoError(t, err)
	return kafkago.Message{Value: b}
}

var settled = events.OrderSettledPayload{
	CustomerID: 500, CustomerName: "Ann",
	Lines:      []events.SettledLine{{ItemID: 7, Name: "Green", Quantity: 2, Price: 250, StockLeft: 3}},
	GoodsTotal: 500, Paid: 500, Currency: "RUB", ChargeID: "ch",
}

func TestHandleEvent_NotifiesEveryAdminOnce(t *testing.T) {
	sender := &flaky{}
	s := &Service{Admins: []int64{1, 2}, Marks: memMarks{}, Sender: sender}
	m := message(t, events.EventOrderSettled, settled)

	require.NoError(t, s.HandleEvent(context.Background(), m))
	require.Len(t, sender.Messages, 2)
	assert.Equal(t, int64(1), sender.Messages[0].ChatID)
	assert.Contains(t, sender.Messages[1].Text, "New order from Ann (ID 500)")

	// redelivery
	require.NoError(t, s.HandleEvent(context.Background(), m))
	assert.Len(t, sender.Messages, 2)
}

func TestHandleEvent_RetriesOnlyMissingAdmins(t *testing.T) {
	sender := &flaky{down: 2}
	s := &Service{Admins: []int64{1, 2}, Marks: memMarks{}, Sender: sender}
	m := message(t, events.EventPaymentRejected, events.PaymentRejectedPayload{CustomerID: 500, Reason: "STOCK_CONFLICT"})

	assert.Error(t, s.HandleEvent(context.Background(), m))
	require.Len(t, sender.Messages, 1)

	sender.down = 0
	require.NoError(t, s.HandleEvent(context.Background(), m))
	require.Len(t, sender.Messages, 2)
	assert.Equal(t, int64(2), sender.Messages[1].ChatID)
	assert.Contains(t, sender.Messages[1].Text, "Refund needed")
}

func TestHandleEvent_SkipsOthers(t *testing.T) {
	sender := &flaky{}
	s := &Service{Admins: []int64{1}, Marks: memMarks{}, Sender: sender}

	assert.NoError(t, s.HandleEvent(context.Background(), message(t, events.EventBasketExpired, events.BasketExpiredPayload{CustomerID: 1})))
	assert.NoError(t, s.HandleEvent(context.Background(), kafkago.Message{Value: []byte("{")}))
	assert.NoError(t, s.HandleEvent(context.Background(), message(t, events.EventOrderSettled, "not an object")))
	assert.Empty(t, sender.Messages)
}

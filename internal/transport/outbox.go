package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/ariefcatur/go-shop-bot/internal/events"
)

const (
	KindMessage           = "message"
	KindInvoice           = "invoice"
	KindShippingAnswer    = "shipping_answer"
	KindPreCheckoutAnswer = "pre_checkout_answer"
	KindInlineAnswer      = "inline_answer"
)

// Outbox hands every outbound call to the messenger gateway through the
// shop.outbound topic. Messages of one chat share a partition.
type Outbox struct {
	Bus events.Bus
}

var _ Sender = (*Outbox)(nil)

func (o *Outbox) publish(ctx context.Context, kind string, chatID int64, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}
	payload := events.OutboundPayload{Kind: kind, ChatID: chatID, Message: raw}
	return o.Bus.Emit(ctx, events.TopicOutbound, events.EventOutbound, chatID, payload)
}

func (o *Outbox) Send(ctx context.Context, m Message) error {
	return o.publish(ctx, KindMessage, m.ChatID, m)
}

func (o *Outbox) SendInvoice(ctx context.Context, inv Invoice) error {
	return o.publish(ctx, KindInvoice, inv.ChatID, inv)
}

// Answers are not tied to a chat and go to partition "0".
func (o *Outbox) AnswerShipping(ctx context.Context, a ShippingAnswer) error {
	return o.publish(ctx, KindShippingAnswer, 0, a)
}

func (o *Outbox) AnswerPreCheckout(ctx context.Context, a PreCheckoutAnswer) error {
	return o.publish(ctx, KindPreCheckoutAnswer, 0, a)
}

func (o *Outbox) AnswerInline(ctx context.Context, a InlineAnswer) error {
	return o.publish(ctx, KindInlineAnswer, 0, a)
}

// Replay decodes one outbound envelope and performs it on s. The gateway
// consuming shop.outbound uses it to turn events back into calls.
func Replay(ctx context.Context, env events.Envelope, s Sender) error {
	p, err := events.UnwrapPayload[events.OutboundPayload](env.Payload)
	if err != nil {
		return err
	}
	switch p.Kind {
	case KindMessage:
		m, err := events.UnwrapPayload[Message](p.Message)
		if err != nil {
			return err
		}
		return s.Send(ctx, m)
	case KindInvoice:
		inv, err := events.UnwrapPayload[Invoice](p.Message)
		if err != nil {
			return err
		}
		return s.SendInvoice(ctx, inv)
	case KindShippingAnswer:
		a, err := events.UnwrapPayload[ShippingAnswer](p.Message)
		if err != nil {
			return err
		}
		return s.AnswerShipping(ctx, a)
	case KindPreCheckoutAnswer:
		a, err := events.UnwrapPayload[PreCheckoutAnswer](p.Message)
		if err != nil {
			return err
		}
		return s.AnswerPreCheckout(ctx, a)
	case KindInlineAnswer:
		a, err := events.UnwrapPayload[InlineAnswer](p.Message)
		if err != nil {
			return err
		}
		return s.AnswerInline(ctx, a)
	}
	return fmt.Errorf("transport: unknown outbound kind %q", p.Kind)
}

package transport

import (
	"context"
	"errors"
	"github.com/ariefcatur/go-shop-bot/internal/kafka"
	"github.com/cenkalti/backoff/v5"
	"log"
	"time"
)

// Retrying retries failed sends with exponential backoff. It never repeats
// what led to the send; a send that still fails is logged and returned.
type Retrying struct {
	Next     Sender
	MaxTries uint
	MaxWait  time.Duration
	// newBackOff is swapped in tests
	newBackOff func() backoff.BackOff
}

var _ Sender = (*Retrying)(nil)

func NewRetrying(next Sender) *Retrying {
	return &Retrying{Next: next, MaxTries: 5, MaxWait: 30 * time.Second}
}

func (r *Retrying) do(ctx context.Context, what string, fn func() error) error {
	var b backoff.BackOff
	if r.newBackOff != nil {
		b = r.newBackOff()
	} else {
		b = backoff.NewExponentialBackOff()
	}
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := fn()
		if errors.Is(err, kafka.ErrClosed) || errors.Is(err, context.Canceled) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(r.MaxTries),
		backoff.WithMaxElapsedTime(r.MaxWait),
		backoff.WithNotify(func(err error, d time.Duration) {
			log.Printf("transport: %s failed: %v, retry in %s", what, err, d)
		}),
	)
	if err != nil {
		log.Printf("transport: %s gave up: %v", what, err)
	}
	return err
}

func (r *Retrying) Send(ctx context.Context, m Message) error {
	return r.do(ctx, "send", func() error { return r.Next.Send(ctx, m) })
}

func (r *Retrying) SendInvoice(ctx context.Context, inv Invoice) error {
	return r.do(ctx, "send invoice", func() error { return r.Next.SendInvoice(ctx, inv) })
}

func (r *Retrying) AnswerShipping(ctx context.Context, a ShippingAnswer) error {
	return r.do(ctx, "answer shipping", func() error { return r.Next.AnswerShipping(ctx, a) })
}

func (r *Retrying) AnswerPreCheckout(ctx context.Context, a PreCheckoutAnswer) error {
	return r.do(ctx, "answer pre-checkout", func() error { return r.Next.AnswerPreCheckout(ctx, a) })
}

func (r *Retrying) AnswerInline(ctx context.Context, a InlineAnswer) error {
	return r.do(ctx, "answer inline", func() error { return r.Next.AnswerInline(ctx, a) })
}

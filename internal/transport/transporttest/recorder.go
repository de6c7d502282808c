// Package transporttest records outbound calls for tests.
package transporttest

import (
	"context"
	"github.com/ariefcatur/go-shop-bot/internal/transport"
	"sync"
)

type Recorder struct {
	mu       sync.Mutex
	Messages []transport.Message
	Invoices []transport.Invoice
	Shipping []transport.ShippingAnswer
	Checks   []transport.PreCheckoutAnswer
	Inline   []transport.InlineAnswer
}

var _ transport.Sender = (*Recorder)(nil)

func (r *Recorder) Send(_ context.Context, m transport.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Messages = append(r.Messages, m)
	return nil
}

func (r *Recorder) SendInvoice(_ context.Context, inv transport.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Invoices = append(r.Invoices, inv)
	return nil
}

func (r *Recorder) AnswerShipping(_ context.Context, a transport.ShippingAnswer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Shipping = append(r.Shipping, a)
	return nil
}

func (r *Recorder) AnswerPreCheckout(_ context.Context, a transport.PreCheckoutAnswer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Checks = append(r.Checks, a)
	return nil
}

func (r *Recorder) AnswerInline(_ context.Context, a transport.InlineAnswer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Inline = append(r.Inline, a)
	return nil
}

// Last returns the last message sent, or the zero Message.
func (r *Recorder) Last() transport.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Messages) == 0 {
		return transport.Message{}
	}
	return r.Messages[len(r.Messages)-1]
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Messages, r.Invoices, r.Shipping, r.Checks, r.Inline = nil, nil, nil, nil, nil
}

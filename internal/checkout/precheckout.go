package checkout

import (
	"context"
	"fmt"
	"github.com/ariefcatur/go-shop-bot/internal/events"
	"strings"
)

const (
	textInvoiceInvalid  = "This invoice is no longer valid. Please create the order again."
	textPriceChanged    = "The price of an item has changed or some items are out of stock since the invoice was issued. The invoice is no longer valid. Please create the order again."
	textAwaitingPayment = "Details received. Waiting for the payment."
)

type PreCheckoutResult struct {
	OK     bool
	Status Status
	// Text is the provider's error message on rejection and the customer
	// notice on success.
	Text string
	// Expected is the recomputed amount in minor units, shipping included.
	Expected int
}

// PreCheckout decides whether the provider may capture the funds. Every line
// is re-read and re-checked, and the recomputed total plus the chosen
// shipping fee must equal the authorized amount exactly.
func (e *Engine) PreCheckout(ctx context.Context, q PreCheckoutQuery) (PreCheckoutResult, error) {
	rejected := events.PaymentRejectedPayload{
		CustomerID: q.CustomerID,
		Payload:    q.Payload,
		Authorized: q.TotalAmount,
	}
	reject := func(text, reason string) (PreCheckoutResult, error) {
		rejected.Reason = reason
		e.emit(ctx, events.TopicPaymentRejected, events.EventPaymentRejected, q.CustomerID, rejected)
		return PreCheckoutResult{Status: StatusDrifted, Text: text, Expected: rejected.Expected}, nil
	}

	p, err := ParsePayload(q.Payload)
	if err != nil {
		return reject(textInvoiceInvalid, "BAD_PAYLOAD")
	}
	opt, ok := e.Shipping.Option(q.ShippingOptionID)
	if !ok {
		return reject(textInvoiceInvalid, "UNKNOWN_SHIPPING")
	}

	var (
		b     strings.Builder
		total int
	)
	for _, l := range p.Lines {
		it, err := e.lookup(ctx, l.ItemID)
		if err != nil {
			return PreCheckoutResult{}, err
		}
		if it == nil {
			fmt.Fprintf(&b, "Sorry, item ID %d is no longer sold.\n", l.ItemID)
			rejected.Lines = append(rejected.Lines, events.RejectedLine{ItemID: l.ItemID, Reason: "GONE"})
			continue
		}
		total += it.Price * l.Quantity

		switch {
		case !it.Visible:
			fmt.Fprintf(&b, "Sorry, %q (ID %d) has been discontinued.\n", it.Name, it.ID)
			rejected.Lines = append(rejected.Lines, events.RejectedLine{ItemID: l.ItemID, Reason: "HIDDEN"})
		case Check(it, l.Quantity).Verdict != LineAccepted:
			fmt.Fprintf(&b, "Sorry, only %d of %q (ID %d) left, you are ordering %d.\n",
				it.Stock, it.Name, it.ID, l.Quantity)
			rejected.Lines = append(rejected.Lines, events.RejectedLine{
				ItemID: l.ItemID, Reason: "SHORT_STOCK", Required: l.Quantity, Available: it.Stock,
			})
		}
	}
	rejected.Expected = (total + opt.Fee()) * MinorUnits

	if len(rejected.Lines) > 0 {
		return reject(strings.TrimSpace(b.String()), "DRIFT")
	}
	if total > Ceiling {
		return reject(textInvoiceInvalid, "OVER_CEILING")
	}
	if q.TotalAmount != rejected.Expected {
		return reject(textPriceChanged, "TOTAL_MISMATCH")
	}
	return PreCheckoutResult{OK: true, Status: StatusConfirmed, Text: textAwaitingPayment, Expected: rejected.Expected}, nil
}

// Package checkout reconciles a proposed purchase with the live catalog,
// once when the invoice is built and again before the provider captures
// funds, then commits the stock decrement.
package checkout

import "github.com/ariefcatur/go-shop-bot/internal/catalog"

type Verdict int

const (
	LineAccepted Verdict = iota
	LineClipped
	LineRejected
)

func (v Verdict) String() string {
	switch v {
	case LineAccepted:
		return "accepted"
	case LineClipped:
		return "clipped"
	}
	return "rejected"
}

// LineResult is the verdict on one line. Quantity is the quantity that can
// be bought: the request when accepted, the stock when clipped, 0 when
// rejected.
type LineResult struct {
	Verdict  Verdict
	Quantity int
}

// Check applies the availability predicate to one line. it is nil when the
// item no longer exists. A quantity below 1 is never bought.
func Check(it *catalog.Item, qty int) LineResult {
	if it == nil || !it.Available() || qty < 1 {
		return LineResult{Verdict: LineRejected}
	}
	if qty > it.Stock {
		return LineResult{Verdict: LineClipped, Quantity: it.Stock}
	}
	return LineResult{Verdict: LineAccepted, Quantity: qty}
}

package checkout

import (
	"context"
	"fmt"
	"github.com/ariefcatur/go-shop-bot/internal/catalog"
	"strings"
	"time"
)

type Outcome int

const (
	// Issued: every line accepted, Invoice is ready to send.
	Issued Outcome = iota
	// Clipped: some lines were reduced to the stock left. No invoice this
	// round.
	Clipped
	// Rejected: unavailable lines were dropped.
	Rejected
	// Empty: nothing is left to buy.
	Empty
	// OverCeiling: the total is above Ceiling.
	OverCeiling
	// TooManyLines: the payload would not fit the provider's limit.
	TooManyLines
)

func (o Outcome) String() string {
	return [...]string{"issued", "clipped", "rejected", "empty", "over_ceiling", "too_many_lines"}[o]
}

type InvoiceLine struct {
	ItemID int
	Label  string
	Amount int
}

type Invoice struct {
	Title       string
	Description string
	PhotoURL    string
	Payload     string
	Lines       []InvoiceLine
	Total       int
}

// Change records what reconciliation did to one line.
type Change struct {
	ItemID   int
	Name     string
	Verdict  Verdict
	Quantity int
}

type InvoiceResult struct {
	Outcome Outcome
	Status  Status
	Invoice Invoice
	Changes []Change
	// Basket is the basket after reconciliation, for basket invoices that
	// were not issued.
	Basket []catalog.BasketLine
	Total  int
}

const (
	basketTitle       = "Basket"
	basketDescription = "Invoice for your order:"
)

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func lineLabel(name string, qty int) string { return fmt.Sprintf("%q - %d pcs.", name, qty) }

func invoicePhoto(it catalog.Item) string {
	if strings.HasPrefix(it.QuickView, "http://") || strings.HasPrefix(it.QuickView, "https://") {
		return it.QuickView
	}
	return ""
}

// InvoiceForItem builds the invoice for a direct "buy now". A clip only
// alerts; the basket is not touched.
func (e *Engine) InvoiceForItem(ctx context.Context, itemID, qty int) (InvoiceResult, error) {
	it, err := e.lookup(ctx, itemID)
	if err != nil {
		return InvoiceResult{}, err
	}
	lr := Check(it, qty)
	switch lr.Verdict {
	case LineRejected:
		ch := Change{ItemID: itemID, Verdict: LineRejected}
		if it != nil {
			ch.Name = it.Name
		}
		return InvoiceResult{Outcome: Rejected, Status: StatusRejected, Changes: []Change{ch}}, nil
	case LineClipped:
		return InvoiceResult{
			Outcome: Clipped,
			Status:  StatusClipped,
			Changes: []Change{{ItemID: itemID, Name: it.Name, Verdict: LineClipped, Quantity: lr.Quantity}},
		}, nil
	}

	total := it.Price * qty
	if total > Ceiling {
		return InvoiceResult{Outcome: OverCeiling, Status: StatusRejected, Total: total}, nil
	}
	desc := it.ShortDescription
	if desc == "" {
		desc = it.Description
	}
	p := Payload{Lines: []Line{{ItemID: itemID, Quantity: qty}}, Source: SourceItem}
	return InvoiceResult{
		Outcome: Issued,
		Status:  StatusValidated,
		Total:   total,
		Invoice: Invoice{
			Title:       clip(fmt.Sprintf("%s - %d pcs.", it.Name, qty), 32),
			Description: clip(desc, 255),
			PhotoURL:    invoicePhoto(*it),
			Payload:     p.Encode(),
			Lines:       []InvoiceLine{{ItemID: itemID, Label: lineLabel(it.Name, qty), Amount: total}},
			Total:       total,
		},
	}, nil
}

// InvoiceForBasket reconciles the customer's basket. Clipped lines are
// written back at the stock left, unavailable lines are removed, and only a
// basket that passes untouched gets an invoice.
func (e *Engine) InvoiceForBasket(ctx context.Context, customerID int64) (InvoiceResult, error) {
	lines, err := e.Basket.BasketLines(ctx, customerID)
	if err != nil {
		return InvoiceResult{}, err
	}
	if len(lines) == 0 {
		return InvoiceResult{Outcome: Empty, Status: StatusRejected}, nil
	}

	var (
		changes []Change
		clipped bool
		inv     = Invoice{Title: basketTitle, Description: basketDescription, PhotoURL: e.BasketPhoto}
		p       = Payload{Source: SourceBasket}
		now     = e.now()
	)
	for _, l := range lines {
		it, err := e.lookup(ctx, l.ItemID)
		if err != nil {
			return InvoiceResult{}, err
		}
		lr := Check(it, l.Quantity)
		switch lr.Verdict {
		case LineClipped:
			err = e.Basket.PutBasketEntry(ctx, catalog.BasketEntry{
				CustomerID: customerID, ItemID: l.ItemID, Quantity: lr.Quantity, ModifiedAt: now,
			})
			clipped = true
		case LineRejected:
			err = e.Basket.DeleteBasketEntry(ctx, customerID, l.ItemID)
		default:
			amount := it.Price * l.Quantity
			inv.Lines = append(inv.Lines, InvoiceLine{ItemID: l.ItemID, Label: lineLabel(it.Name, l.Quantity), Amount: amount})
			inv.Total += amount
			p.Lines = append(p.Lines, Line{ItemID: l.ItemID, Quantity: l.Quantity})
			continue
		}
		if err != nil {
			return InvoiceResult{}, fmt.Errorf("reconcile basket line %d: %w", l.ItemID, err)
		}
		changes = append(changes, Change{ItemID: l.ItemID, Name: l.Name, Verdict: lr.Verdict, Quantity: lr.Quantity})
	}

	if len(changes) > 0 {
		return e.reconciled(ctx, customerID, changes, clipped, now)
	}
	if inv.Total > Ceiling {
		return InvoiceResult{Outcome: OverCeiling, Status: StatusRejected, Total: inv.Total}, nil
	}
	if !p.Fits() {
		return InvoiceResult{Outcome: TooManyLines, Status: StatusRejected, Total: inv.Total}, nil
	}
	inv.Payload = p.Encode()
	return InvoiceResult{Outcome: Issued, Status: StatusValidated, Invoice: inv, Total: inv.Total}, nil
}

func (e *Engine) reconciled(ctx context.Context, customerID int64, changes []Change, clipped bool, now time.Time) (InvoiceResult, error) {
	basket, err := e.Basket.BasketLines(ctx, customerID)
	if err != nil {
		return InvoiceResult{}, err
	}
	res := InvoiceResult{Outcome: Rejected, Status: StatusRejected, Changes: changes, Basket: basket}
	if clipped {
		res.Outcome, res.Status = Clipped, StatusClipped
	}

	if len(basket) == 0 {
		res.Outcome = Empty
		if _, err := e.Reservations.Cancel(ctx, customerID); err != nil {
			return InvoiceResult{}, err
		}
		return res, nil
	}
	if clipped {
		if err := e.Reservations.Touch(ctx, customerID, now); err != nil {
			return InvoiceResult{}, err
		}
	}
	return res, nil
}

package checkout

import (
	"context"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-shop-bot/internal/catalog"
	"github.com/ariefcatur/go-shop-bot/internal/events"
	"log"
)

// Receipt describes a settled purchase.
type Receipt struct {
	// Duplicate is set when the charge was already processed; nothing else
	// is filled in.
	Duplicate  bool
	Status     Status
	Lines      []events.SettledLine
	GoodsTotal int
	Shipping   events.Shipping
	Paid       int
	Currency   string
	FromBasket bool
}

// ConfirmPayment commits a captured payment: all stock decrements in one
// transaction, then the basket cleanup and the order.settled event. Once the
// stock is committed nothing after it can undo or repeat it; those
// follow-up failures are logged.
func (e *Engine) ConfirmPayment(ctx context.Context, sp SuccessfulPayment) (Receipt, error) {
	p, err := ParsePayload(sp.Payload)
	if err != nil {
		return Receipt{}, err
	}
	fresh, err := e.Dedup.Claim(ctx, sp.ChargeID)
	if err != nil {
		return Receipt{}, fmt.Errorf("claim charge %s: %w", sp.ChargeID, err)
	}
	if !fresh {
		return Receipt{Duplicate: true}, nil
	}

	lines := make([]catalog.StockLine, len(p.Lines))
	for i, l := range p.Lines {
		lines[i] = catalog.StockLine{ItemID: l.ItemID, Quantity: l.Quantity}
	}
	items, err := e.Stock.CommitStock(ctx, lines)
	var short *catalog.ShortStock
	if errors.As(err, &short) {
		// funds are captured but the stock is gone: admins must refund
		rejected := events.PaymentRejectedPayload{
			CustomerID: sp.CustomerID, Payload: sp.Payload, Reason: "STOCK_CONFLICT", Authorized: sp.TotalAmount,
		}
		for _, s := range short.Lines {
			rejected.Lines = append(rejected.Lines, events.RejectedLine{
				ItemID: s.ItemID, Reason: "SHORT_STOCK", Required: s.Required, Available: s.Available,
			})
		}
		e.emit(ctx, events.TopicPaymentRejected, events.EventPaymentRejected, sp.CustomerID, rejected)
		return Receipt{Status: StatusDrifted}, fmt.Errorf("%w: charge %s", ErrInsufficientStock, sp.ChargeID)
	}
	if err != nil {
		if rerr := e.Dedup.Release(ctx, sp.ChargeID); rerr != nil {
			log.Printf("checkout: release charge %s: %v", sp.ChargeID, rerr)
		}
		return Receipt{}, fmt.Errorf("commit stock: %w", err)
	}

	r := Receipt{
		Status:     StatusSettled,
		Paid:       sp.TotalAmount / MinorUnits,
		Currency:   sp.Currency,
		FromBasket: p.FromBasket(),
	}
	byID := make(map[int]catalog.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	for _, l := range p.Lines {
		it := byID[l.ItemID]
		r.Lines = append(r.Lines, events.SettledLine{
			ItemID: l.ItemID, Name: it.Name, Quantity: l.Quantity, Price: it.Price, StockLeft: it.Stock,
		})
		r.GoodsTotal += it.Price * l.Quantity
	}
	if opt, ok := e.Shipping.Option(sp.ShippingOptionID); ok {
		r.Shipping = events.Shipping{OptionID: opt.ID, Title: opt.Title, Fee: opt.Fee()}
	}
	r.Shipping.Address = sp.Order.Address.String()

	if sp.Order.Email != "" {
		if err := e.Customers.SetCustomerEmail(ctx, sp.CustomerID, sp.Order.Email); err != nil {
			log.Printf("checkout: store email of customer %d: %v", sp.CustomerID, err)
		}
	}
	if r.FromBasket {
		if err := e.Basket.ClearBasket(ctx, sp.CustomerID); err != nil {
			log.Printf("checkout: clear basket of customer %d: %v", sp.CustomerID, err)
		} else if _, err := e.Reservations.Cancel(ctx, sp.CustomerID); err != nil {
			log.Printf("checkout: cancel reservation of customer %d: %v", sp.CustomerID, err)
		}
	}

	e.emit(ctx, events.TopicOrderSettled, events.EventOrderSettled, sp.CustomerID, events.OrderSettledPayload{
		CustomerID:       sp.CustomerID,
		CustomerName:     sp.Order.Name,
		Phone:            sp.Order.Phone,
		Email:            sp.Order.Email,
		FromBasket:       r.FromBasket,
		Lines:            r.Lines,
		GoodsTotal:       r.GoodsTotal,
		Shipping:         r.Shipping,
		Paid:             r.Paid,
		Currency:         r.Currency,
		ChargeID:         sp.ChargeID,
		ProviderChargeID: sp.ProviderChargeID,
	})
	return r, nil
}

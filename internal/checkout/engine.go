package checkout

import (
	"context"
	"errors"
	"github.com/ariefcatur/go-shop-bot/internal/catalog"
	"github.com/ariefcatur/go-shop-bot/internal/events"
	"log"
	"time"
)

var ErrInsufficientStock = errors.New("checkout: insufficient stock")

// Ceiling is the largest goods total one invoice may carry.
const Ceiling = 1_000_000

// Reservations is the part of the basket reservation manager checkout
// needs. Cancel on a missing job reports expired and no error.
type Reservations interface {
	Touch(ctx context.Context, customerID int64, ref time.Time) error
	Cancel(ctx context.Context, customerID int64) (expired bool, err error)
}

type Engine struct {
	Items        catalog.Repository
	Basket       catalog.BasketRepository
	Stock        catalog.StockCommitter
	Customers    catalog.CustomerRepository
	Reservations Reservations
	Shipping     Shipping
	Events       events.Bus
	Dedup        Deduper

	// BasketPhoto is shown on basket invoices.
	BasketPhoto string
	Now         func() time.Time
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now().UTC()
}

// lookup returns nil when the item no longer exists.
func (e *Engine) lookup(ctx context.Context, id int) (*catalog.Item, error) {
	it, err := e.Items.Item(ctx, id)
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (e *Engine) emit(ctx context.Context, topic, eventType string, customerID int64, payload any) {
	if e.Events == nil {
		return
	}
	if err := e.Events.Emit(ctx, topic, eventType, customerID, payload); err != nil {
		log.Printf("checkout: emit %s for customer %d: %v", eventType, customerID, err)
	}
}

package basket

import (
	"context"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-shop-bot/internal/catalog"
	"github.com/ariefcatur/go-shop-bot/internal/checkout"
	"time"
)

var (
	ErrUnavailable = errors.New("basket: item unavailable")
	ErrFull        = errors.New("basket: full")
	ErrQuantity    = errors.New("basket: quantity must be positive")
)

// StockLimit is returned when the basket would hold more than the stock.
type StockLimit struct {
	ItemID   int
	Name     string
	InBasket int
	Stock    int
}

func (e *StockLimit) Error() string {
	return fmt.Sprintf("basket: item %d: %d in basket, %d in stock", e.ItemID, e.InBasket, e.Stock)
}

type View struct {
	Lines []catalog.BasketLine
	Total int
}

func (v View) Empty() bool { return len(v.Lines) == 0 }

// Service is the customer side of the basket. Every change moves the
// expiry; every change that leaves the basket empty cancels it.
type Service struct {
	Items        catalog.Repository
	Basket       catalog.BasketRepository
	Reservations *Reservations
	Now          func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Service) available(ctx context.Context, itemID int) (catalog.Item, error) {
	it, err := s.Items.Item(ctx, itemID)
	if errors.Is(err, catalog.ErrNotFound) {
		return catalog.Item{}, ErrUnavailable
	}
	if err != nil {
		return catalog.Item{}, err
	}
	if !it.Available() {
		return catalog.Item{}, ErrUnavailable
	}
	return it, nil
}

func (s *Service) inBasket(ctx context.Context, customerID int64, itemID int) (int, error) {
	e, err := s.Basket.BasketEntry(ctx, customerID, itemID)
	if errors.Is(err, catalog.ErrNotFound) {
		return 0, nil
	}
	return e.Quantity, err
}

// Add puts qty more of an item into the basket.
func (s *Service) Add(ctx context.Context, customerID int64, itemID, qty int) (catalog.BasketEntry, error) {
	if qty < 1 {
		return catalog.BasketEntry{}, ErrQuantity
	}
	it, err := s.available(ctx, itemID)
	if err != nil {
		return catalog.BasketEntry{}, err
	}
	cur, err := s.inBasket(ctx, customerID, itemID)
	if err != nil {
		return catalog.BasketEntry{}, err
	}
	if cur+qty > it.Stock {
		return catalog.BasketEntry{}, &StockLimit{ItemID: itemID, Name: it.Name, InBasket: cur, Stock: it.Stock}
	}
	full, err := s.wouldOverflow(ctx, customerID, itemID, cur+qty)
	if err != nil {
		return catalog.BasketEntry{}, err
	}
	if full {
		return catalog.BasketEntry{}, ErrFull
	}
	return s.put(ctx, customerID, itemID, cur+qty)
}

// wouldOverflow reports whether the basket payload with itemID set to qty
// would exceed the provider limit.
func (s *Service) wouldOverflow(ctx context.Context, customerID int64, itemID, qty int) (bool, error) {
	lines, err := s.Basket.BasketLines(ctx, customerID)
	if err != nil {
		return false, err
	}
	p := checkout.Payload{Source: checkout.SourceBasket}
	found := false
	for _, l := range lines {
		q := l.Quantity
		if l.ItemID == itemID {
			q, found = qty, true
		}
		p.Lines = append(p.Lines, checkout.Line{ItemID: l.ItemID, Quantity: q})
	}
	if !found {
		p.Lines = append(p.Lines, checkout.Line{ItemID: itemID, Quantity: qty})
	}
	return !p.Fits(), nil
}

func (s *Service) put(ctx context.Context, customerID int64, itemID, qty int) (catalog.BasketEntry, error) {
	e := catalog.BasketEntry{CustomerID: customerID, ItemID: itemID, Quantity: qty, ModifiedAt: s.now()}
	if err := s.Basket.PutBasketEntry(ctx, e); err != nil {
		return catalog.BasketEntry{}, err
	}
	if err := s.Reservations.Touch(ctx, customerID, e.ModifiedAt); err != nil {
		return catalog.BasketEntry{}, err
	}
	return e, nil
}

// SetQuantity replaces the quantity of a line already in the basket. Zero
// removes it.
func (s *Service) SetQuantity(ctx context.Context, customerID int64, itemID, qty int) (View, error) {
	if qty <= 0 {
		return s.Remove(ctx, customerID, itemID)
	}
	cur, err := s.inBasket(ctx, customerID, itemID)
	if err != nil {
		return View{}, err
	}
	if cur == 0 {
		return View{}, catalog.ErrNotFound
	}
	it, err := s.available(ctx, itemID)
	if err != nil {
		return View{}, err
	}
	if qty > it.Stock {
		return View{}, &StockLimit{ItemID: itemID, Name: it.Name, InBasket: cur, Stock: it.Stock}
	}
	if _, err := s.put(ctx, customerID, itemID, qty); err != nil {
		return View{}, err
	}
	return s.Show(ctx, customerID)
}

// Remove deletes one line and returns what is left.
func (s *Service) Remove(ctx context.Context, customerID int64, itemID int) (View, error) {
	if err := s.Basket.DeleteBasketEntry(ctx, customerID, itemID); err != nil {
		return View{}, err
	}
	v, err := s.Show(ctx, customerID)
	if err != nil {
		return View{}, err
	}
	if v.Empty() {
		if _, err := s.Reservations.Cancel(ctx, customerID); err != nil {
			return View{}, err
		}
	}
	return v, nil
}

func (s *Service) Clear(ctx context.Context, customerID int64) error {
	if err := s.Basket.ClearBasket(ctx, customerID); err != nil {
		return err
	}
	_, err := s.Reservations.Cancel(ctx, customerID)
	return err
}

func (s *Service) Show(ctx context.Context, customerID int64) (View, error) {
	lines, err := s.Basket.BasketLines(ctx, customerID)
	if err != nil {
		return View{}, err
	}
	v := View{Lines: lines}
	for _, l := range lines {
		v.Total += l.Sum()
	}
	return v, nil
}

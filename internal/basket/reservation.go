// Package basket keeps customer baskets and the timed job that empties
// them.
package basket

import (
	"context"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-shop-bot/internal/catalog"
	"github.com/ariefcatur/go-shop-bot/internal/events"
	"log"
	"strconv"
	"strings"
	"time"
)

var ErrJobNotFound = errors.New("basket: job not found")

// Retention is how long a basket survives its last change.
const Retention = 3*time.Hour + 30*time.Second

const jobPrefix = "clear_basket_"

// Scheduler runs one clear-basket job per id. Schedule replaces a pending
// job with the same id; Cancel reports ErrJobNotFound when nothing is
// pending.
type Scheduler interface {
	Schedule(ctx context.Context, id string, at time.Time) error
	Cancel(ctx context.Context, id string) error
}

func JobID(customerID int64) string { return jobPrefix + strconv.FormatInt(customerID, 10) }

func ParseJobID(id string) (int64, bool) {
	rest, ok := strings.CutPrefix(id, jobPrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(rest, 10, 64)
	return n, err == nil
}

type Reservations struct {
	Scheduler Scheduler
	Basket    catalog.BasketRepository
	Events    events.Bus
}

// Touch (re)schedules the clear job at ref + Retention.
func (r *Reservations) Touch(ctx context.Context, customerID int64, ref time.Time) error {
	if err := r.Scheduler.Schedule(ctx, JobID(customerID), ref.Add(Retention)); err != nil {
		return fmt.Errorf("schedule basket expiry for %d: %w", customerID, err)
	}
	return nil
}

// Cancel drops the pending job. A job that is already gone is reported as
// expired, not as an error.
func (r *Reservations) Cancel(ctx context.Context, customerID int64) (expired bool, err error) {
	err = r.Scheduler.Cancel(ctx, JobID(customerID))
	if errors.Is(err, ErrJobNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("cancel basket expiry for %d: %w", customerID, err)
	}
	return false, nil
}

// Fire is the job body. It deletes every basket row of the customer
// without looking at what is there.
func (r *Reservations) Fire(ctx context.Context, id string) error {
	customerID, ok := ParseJobID(id)
	if !ok {
		return fmt.Errorf("basket: unknown job %q", id)
	}
	if err := r.Basket.ClearBasket(ctx, customerID); err != nil {
		return fmt.Errorf("expire basket of %d: %w", customerID, err)
	}
	log.Printf("basket: expired basket of customer %d", customerID)
	if r.Events != nil {
		payload := events.BasketExpiredPayload{CustomerID: customerID, FiredAt: time.Now().UTC()}
		if err := r.Events.Emit(ctx, events.TopicBasketExpired, events.EventBasketExpired, customerID, payload); err != nil {
			log.Printf("basket: emit expiry of %d: %v", customerID, err)
		}
	}
	return nil
}

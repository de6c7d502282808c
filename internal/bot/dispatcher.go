package bot

import (
	"context"
	"errors"
	"github.com/ariefcatur/go-shop-bot/internal/events"
	"github.com/cespare/xxhash/v2"
	"log"
	"strconv"
	"sync"
	"time"
)

var (
	ErrThrottled = errors.New("bot: user throttled")
	ErrBusy      = errors.New("bot: queue full")
	ErrStopped   = errors.New("bot: dispatcher stopped")
)

type Handler interface {
	Handle(ctx context.Context, u Update) error
}

type HandlerFunc func(ctx context.Context, u Update) error

func (f HandlerFunc) Handle(ctx context.Context, u Update) error { return f(ctx, u) }

type job struct {
	trace string
	u     Update
}

// Dispatcher runs updates on a fixed pool of workers. All updates of one
// user land on the same worker, so they are handled one at a time in
// arrival order; different users run in parallel.
type Dispatcher struct {
	h        Handler
	throttle *Throttle
	// OnThrottled is called once per flood in its own goroutine, outside
	// the worker pool. Enqueue does not wait for it.
	OnThrottled func(ctx context.Context, userID int64)

	queues []chan job
	wg     sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

func NewDispatcher(h Handler, workers, queueSize int, throttle *Throttle) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	d := &Dispatcher{h: h, throttle: throttle, queues: make([]chan job, workers)}
	for i := range d.queues {
		d.queues[i] = make(chan job, queueSize)
	}
	return d
}

func (d *Dispatcher) shard(userID int64) int {
	return int(xxhash.Sum64String(strconv.FormatInt(userID, 10)) % uint64(len(d.queues)))
}

// Start launches the workers. Handlers get ctx with the trace id of the
// update attached.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, q := range d.queues {
		d.wg.Add(1)
		go func(i int, q chan job) {
			defer d.wg.Done()
			for j := range q {
				hctx := events.WithTrace(ctx, j.trace)
				if err := d.h.Handle(hctx, j.u); err != nil {
					log.Printf("bot: worker %d: update %s from %d: %v", i, j.u.ID, j.u.From.ID, err)
				}
			}
		}(i, q)
	}
	if d.throttle != nil {
		go func() {
			t := time.NewTicker(time.Minute)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case now := <-t.C:
					d.throttle.Sweep(now)
				}
			}
		}()
	}
}

// Enqueue never blocks: a full queue is reported as ErrBusy.
func (d *Dispatcher) Enqueue(ctx context.Context, trace string, u Update) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrStopped
	}
	uid := u.From.ID
	// payment notifications must never be dropped
	exempt := u.PreCheckoutQuery != nil || u.ShippingQuery != nil || (u.Message != nil && u.Message.Payment != nil)
	if d.throttle != nil && !exempt {
		ok, warn := d.throttle.Allow(uid, time.Now())
		if !ok {
			if warn && d.OnThrottled != nil {
				// the notice is a retried send; keep it off the caller and
				// out of the lock, Stop still waits for it
				d.wg.Add(1)
				go func() {
					defer d.wg.Done()
					d.OnThrottled(context.WithoutCancel(ctx), uid)
				}()
			}
			return ErrThrottled
		}
	}
	select {
	case d.queues[d.shard(uid)] <- job{trace: trace, u: u}:
		return nil
	default:
		return ErrBusy
	}
}

// Stop refuses new updates and waits for queued ones to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	for _, q := range d.queues {
		close(q)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

package bot

import (
	"golang.org/x/time/rate"
	"sync"
	"time"
)

type visitor struct {
	lim    *rate.Limiter
	seen   time.Time
	warned bool
}

// Throttle keeps one token bucket per user.
type Throttle struct {
	every rate.Limit
	burst int
	idle  time.Duration

	mu    sync.Mutex
	users map[int64]*visitor
}

// NewThrottle allows perSecond updates per user with the given burst.
// Users silent for longer than idle are forgotten by Sweep.
func NewThrottle(perSecond float64, burst int, idle time.Duration) *Throttle {
	return &Throttle{
		every: rate.Limit(perSecond),
		burst: burst,
		idle:  idle,
		users: map[int64]*visitor{},
	}
}

// Allow reports whether the update may pass. warn is true only for the
// first refusal after an accepted update, so a flooding user is told once.
func (t *Throttle) Allow(userID int64, now time.Time) (ok, warn bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, exists := t.users[userID]
	if !exists {
		v = &visitor{lim: rate.NewLimiter(t.every, t.burst)}
		t.users[userID] = v
	}
	v.seen = now
	if v.lim.AllowN(now, 1) {
		v.warned = false
		return true, false
	}
	warn = !v.warned
	v.warned = true
	return false, warn
}

// Sweep drops users idle since before now - idle.
func (t *Throttle) Sweep(now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for id, v := range t.users {
		if now.Sub(v.seen) > t.idle {
			delete(t.users, id)
			n++
		}
	}
	return n
}

func (t *Throttle) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.users)
}

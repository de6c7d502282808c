// Package schedule runs one-shot jobs keyed by id, in process or on Redis.
package schedule

import (
	"context"
	"github.com/ariefcatur/go-shop-bot/internal/basket"
	"log"
	"sync"
	"time"
)

// FireFunc is the job body.
type FireFunc func(ctx context.Context, id string) error

type timerJob struct {
	at    time.Time
	timer *time.Timer
}

// Memory keeps jobs in timers. Jobs do not survive a restart.
type Memory struct {
	ctx  context.Context
	fire FireFunc

	mu   sync.Mutex
	jobs map[string]*timerJob
}

var _ basket.Scheduler = (*Memory)(nil)

// NewMemory fires jobs with ctx; once ctx is done pending jobs are dropped.
func NewMemory(ctx context.Context, fire FireFunc) *Memory {
	return &Memory{ctx: ctx, fire: fire, jobs: map[string]*timerJob{}}
}

func (m *Memory) Schedule(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.jobs[id]; ok {
		old.timer.Stop()
	}
	j := &timerJob{at: at}
	j.timer = time.AfterFunc(time.Until(at), func() { m.run(id, j) })
	m.jobs[id] = j
	return nil
}

func (m *Memory) Cancel(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return basket.ErrJobNotFound
	}
	j.timer.Stop()
	delete(m.jobs, id)
	return nil
}

// When returns the fire time of a pending job.
func (m *Memory) When(id string) (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return time.Time{}, false
	}
	return j.at, true
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}

// Stop drops every pending job.
func (m *Memory) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, j := range m.jobs {
		j.timer.Stop()
		delete(m.jobs, id)
	}
}

func (m *Memory) run(id string, j *timerJob) {
	m.mu.Lock()
	// replaced or canceled after the timer already fired
	if m.jobs[id] != j {
		m.mu.Unlock()
		return
	}
	delete(m.jobs, id)
	m.mu.Unlock()

	if m.ctx.Err() != nil {
		return
	}
	if err := m.fire(m.ctx, id); err != nil {
		log.Printf("schedule: job %s: %v", id, err)
	}
}

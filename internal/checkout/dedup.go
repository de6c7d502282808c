package checkout

import (
	"context"
	"fmt"
	"github.com/ariefcatur/go-shop-bot/internal/redisx"
	"github.com/redis/go-redis/v9"
	"sync"
)

// Deduper guards ConfirmPayment against a redelivered payment.
type Deduper interface {
	// Claim reports false when the charge was already claimed.
	Claim(ctx context.Context, chargeID string) (bool, error)
	Release(ctx context.Context, chargeID string) error
}

type RedisDedup struct {
	Redis *redis.Client
}

func dedupKey(chargeID string) string { return fmt.Sprintf(redisx.KeyDedup, "checkout", chargeID) }

func (d *RedisDedup) Claim(ctx context.Context, chargeID string) (bool, error) {
	return redisx.Claim(ctx, d.Redis, dedupKey(chargeID), redisx.TTLDedup)
}

func (d *RedisDedup) Release(ctx context.Context, chargeID string) error {
	return d.Redis.Del(ctx, dedupKey(chargeID)).Err()
}

type MemoryDedup struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (d *MemoryDedup) Claim(_ context.Context, chargeID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.seen == nil {
		d.seen = map[string]bool{}
	}
	if d.seen[chargeID] {
		return false, nil
	}
	d.seen[chargeID] = true
	return true, nil
}

func (d *MemoryDedup) Release(_ context.Context, chargeID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, chargeID)
	return nil
}

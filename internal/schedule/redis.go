package schedule

import (
	"context"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-shop-bot/internal/basket"
	"github.com/ariefcatur/go-shop-bot/internal/redisx"
	"github.com/redis/go-redis/v9"
	"log"
	"strconv"
	"time"
)

// claimDue removes a job only while it is still due, so a job rescheduled
// between the range read and the claim is left alone.
var claimDue = redis.NewScript(`
local s = redis.call('ZSCORE', KEYS[1], ARGV[1])
if s and tonumber(s) <= tonumber(ARGV[2]) then
  redis.call('ZREM', KEYS[1], ARGV[1])
  return 1
end
return 0`)

const (
	defaultPollInterval = time.Second
	pollBatch           = 100
	retryDelay          = time.Minute
)

// Redis keeps jobs in a sorted set scored by fire time in unix millis.
// Several pollers may share one queue; each due job is claimed by one.
type Redis struct {
	rdb      *redis.Client
	key      string
	fire     FireFunc
	Interval time.Duration
}

var _ basket.Scheduler = (*Redis)(nil)

func NewRedis(rdb *redis.Client, queue string, fire FireFunc) *Redis {
	return &Redis{
		rdb:      rdb,
		key:      fmt.Sprintf(redisx.KeySchedule, queue),
		fire:     fire,
		Interval: defaultPollInterval,
	}
}

func (r *Redis) Schedule(ctx context.Context, id string, at time.Time) error {
	return r.rdb.ZAdd(ctx, r.key, redis.Z{Score: float64(at.UnixMilli()), Member: id}).Err()
}

func (r *Redis) Cancel(ctx context.Context, id string) error {
	n, err := r.rdb.ZRem(ctx, r.key, id).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return basket.ErrJobNotFound
	}
	return nil
}

func (r *Redis) When(ctx context.Context, id string) (time.Time, bool, error) {
	score, err := r.rdb.ZScore(ctx, r.key, id).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return time.UnixMilli(int64(score)).UTC(), true, nil
}

// Run polls until ctx is done.
func (r *Redis) Run(ctx context.Context) {
	t := time.NewTicker(r.Interval)
	defer t.Stop()
	for {
		if err := r.Poll(ctx, time.Now()); err != nil && ctx.Err() == nil {
			log.Printf("schedule: poll %s: %v", r.key, err)
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

// Poll fires every job due at now.
func (r *Redis) Poll(ctx context.Context, now time.Time) error {
	nowMs := now.UnixMilli()
	ids, err := r.rdb.ZRangeByScore(ctx, r.key, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(nowMs, 10),
		Count: pollBatch,
	}).Result()
	if err != nil {
		return err
	}
	for _, id := range ids {
		won, err := claimDue.Run(ctx, r.rdb, []string{r.key}, id, nowMs).Int()
		if err != nil {
			return err
		}
		if won == 0 {
			continue
		}
		if err := r.fire(ctx, id); err != nil {
			log.Printf("schedule: job %s: %v, retry in %s", id, err, retryDelay)
			// keep a newer schedule if one appeared meanwhile
			if rerr := r.rdb.ZAddNX(ctx, r.key, redis.Z{Score: float64(now.Add(retryDelay).UnixMilli()), Member: id}).Err(); rerr != nil {
				log.Printf("schedule: requeue %s: %v", id, rerr)
			}
		}
	}
	return nil
}

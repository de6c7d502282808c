// Package notify forwards settled orders and refused payments to the shop
// admins. It runs as a Kafka consumer next to the bot.
package notify

import (
	"context"
	"fmt"
	"github.com/ariefcatur/go-shop-bot/internal/bot"
	"github.com/ariefcatur/go-shop-bot/internal/events"
	"github.com/ariefcatur/go-shop-bot/internal/redisx"
	"github.com/ariefcatur/go-shop-bot/internal/transport"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"log"
)

// Marks remembers which (event, admin) notices were already delivered.
type Marks interface {
	Done(ctx context.Context, key string) (bool, error)
	Mark(ctx context.Context, key string) error
}

type RedisMarks struct {
	Redis *redis.Client
}

func (m *RedisMarks) Done(ctx context.Context, key string) (bool, error) {
	return redisx.Exists(ctx, m.Redis, key)
}

func (m *RedisMarks) Mark(ctx context.Context, key string) error {
	return m.Redis.Set(ctx, key, "1", redisx.TTLDedup).Err()
}

type Service struct {
	Admins []int64
	Marks  Marks
	Sender transport.Sender
}

// HandleEvent: dipasang sebagai handler consumer. Returning an error leaves
// the offset uncommitted, so the event comes back.
func (s *Service) HandleEvent(ctx context.Context, m kafkago.Message) error {
	// 1) decode envelope
	env, err := events.Decode(m.Value)
	if err != nil {
		log.Printf("notify: offset %d: %v", m.Offset, err)
		return nil // poison message, skip
	}
	ctx = events.WithTrace(ctx, env.TraceID)

	// 2) render
	var text string
	switch env.EventType {
	case events.EventOrderSettled:
		p, err := events.UnwrapPayload[events.OrderSettledPayload](env.Payload)
		if err != nil {
			log.Printf("notify: event %s: %v", env.EventID, err)
			return nil
		}
		text = bot.AdminOrderText(p)
	case events.EventPaymentRejected:
		p, err := events.UnwrapPayload[events.PaymentRejectedPayload](env.Payload)
		if err != nil {
			log.Printf("notify: event %s: %v", env.EventID, err)
			return nil
		}
		text = bot.AdminRejectedText(p)
	default:
		return nil // ignore
	}

	// 3) kirim ke setiap admin, dedup per admin (pakai event_id)
	for _, admin := range s.Admins {
		key := fmt.Sprintf(redisx.KeyDedup, "notifier", fmt.Sprintf("%s:%d", env.EventID, admin))
		if done, err := s.Marks.Done(ctx, key); err != nil {
			return err
		} else if done {
			continue
		}
		if err := s.Sender.Send(ctx, transport.Message{ChatID: admin, Text: text}); err != nil {
			return fmt.Errorf("notify admin %d: %w", admin, err)
		}
		if err := s.Marks.Mark(ctx, key); err != nil {
			log.Printf("notify: mark %s: %v", key, err)
		}
	}
	return nil
}

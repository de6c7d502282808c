package main

import (
	"context"
	"github.com/ariefcatur/go-shop-bot/internal/config"
	"github.com/ariefcatur/go-shop-bot/internal/events"
	kafkax "github.com/ariefcatur/go-shop-bot/internal/kafka"
	"github.com/ariefcatur/go-shop-bot/internal/notify"
	"github.com/ariefcatur/go-shop-bot/internal/redisx"
	"github.com/ariefcatur/go-shop-bot/internal/transport"
	"github.com/joho/godotenv"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if len(cfg.AdminIDs) == 0 {
		log.Fatalf("config: ADMIN_IDS is empty, nobody to notify")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis
	rdb := redisx.New(cfg.RedisAddr, cfg.RedisDB)
	defer rdb.Close()

	// Producer: pesan ke admin lewat outbound topic yang sama dengan bot
	out := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicOutbound, 256)
	out.Start(ctx)
	bus := &events.KafkaBus{
		Producers: map[string]events.Publisher{events.TopicOutbound: out},
		Service:   cfg.ServiceName + "-notifier",
	}

	svc := &notify.Service{
		Admins: cfg.AdminIDs,
		Marks:  &notify.RedisMarks{Redis: rdb},
		Sender: transport.NewRetrying(&transport.Outbox{Bus: bus}),
	}

	// Consumers, satu per topic
	var wg sync.WaitGroup
	for _, topic := range []string{events.TopicOrderSettled, events.TopicPaymentRejected} {
		cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.NotifyGroup, topic, cfg.NotifyWorkers)
		wg.Add(1)
		go func(topic string) {
			defer wg.Done()
			log.Printf("notifier consumer started: group=%s topic=%s workers=%d", cfg.NotifyGroup, topic, cfg.NotifyWorkers)
			if err := cons.Start(ctx, svc.HandleEvent); err != nil {
				log.Printf("consumer %s exit: %v", topic, err)
				cancel()
			}
		}(topic)
	}

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Println("shutting down notifier...")
	cancel()
	wg.Wait()
	out.Close()
	out.WaitClosed()
}

package main

import (
	"context"
	"github.com/ariefcatur/go-shop-bot/internal/basket"
	"github.com/ariefcatur/go-shop-bot/internal/bot"
	"github.com/ariefcatur/go-shop-bot/internal/catalog"
	"github.com/ariefcatur/go-shop-bot/internal/checkout"
	"github.com/ariefcatur/go-shop-bot/internal/config"
	"github.com/ariefcatur/go-shop-bot/internal/events"
	"github.com/ariefcatur/go-shop-bot/internal/httpx"
	kafkax "github.com/ariefcatur/go-shop-bot/internal/kafka"
	"github.com/ariefcatur/go-shop-bot/internal/postgres"
	"github.com/ariefcatur/go-shop-bot/internal/redisx"
	"github.com/ariefcatur/go-shop-bot/internal/schedule"
	"github.com/ariefcatur/go-shop-bot/internal/transport"
	"github.com/ariefcatur/go-shop-bot/internal/wizard"
	"github.com/joho/godotenv"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()
	store := &catalog.Store{DB: db}

	// Redis
	rdb := redisx.New(cfg.RedisAddr, cfg.RedisDB)
	defer rdb.Close()

	// Kafka producers, satu per topic
	topics := []string{events.TopicOrderSettled, events.TopicPaymentRejected, events.TopicBasketExpired, events.TopicOutbound}
	producers := make(map[string]*kafkax.Producer, len(topics))
	publishers := make(map[string]events.Publisher, len(topics))
	for _, t := range topics {
		p := kafkax.NewProducer(cfg.KafkaBrokers, t, 1024)
		p.Start(ctx)
		producers[t] = p
		publishers[t] = p
	}
	bus := &events.KafkaBus{Producers: publishers, Service: cfg.ServiceName}
	sender := transport.NewRetrying(&transport.Outbox{Bus: bus})

	// basket expiry
	res := &basket.Reservations{Basket: store, Events: bus}
	switch cfg.Scheduler {
	case config.StoreRedis:
		s := schedule.NewRedis(rdb, cfg.ServiceName, res.Fire)
		res.Scheduler = s
		go s.Run(ctx)
	default:
		s := schedule.NewMemory(ctx, res.Fire)
		defer s.Stop()
		res.Scheduler = s
	}

	var sessions wizard.Store = &wizard.RedisStore{Redis: rdb}
	if cfg.SessionStore == config.StoreMemory {
		sessions = wizard.NewMemoryStore()
	}

	router := &bot.Router{
		Admins:    cfg.Admins(),
		Wizard:    &wizard.Engine{Repo: store, Sessions: sessions},
		Catalog:   store,
		Customers: store,
		Basket:    &basket.Service{Items: store, Basket: store, Reservations: res},
		Checkout: &checkout.Engine{
			Items:        store,
			Basket:       store,
			Stock:        store,
			Customers:    store,
			Reservations: res,
			Shipping:     checkout.DefaultShipping(),
			Events:       bus,
			Dedup:        &checkout.RedisDedup{Redis: rdb},
			BasketPhoto:  cfg.BasketPhoto,
		},
		Sender:   sender,
		Currency: cfg.Currency,
		BotName:  cfg.BotName,
	}

	disp := bot.NewDispatcher(router, cfg.Workers, cfg.QueueSize,
		bot.NewThrottle(cfg.ThrottleRate, cfg.ThrottleBurst, cfg.ThrottleIdle))
	disp.OnThrottled = router.Throttled
	disp.Start(ctx)

	// HTTP
	mux := httpx.NewRouter(map[string]httpx.Check{
		"postgres": db.Ping,
		"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	})
	(&httpx.WebhookHandler{Updates: disp, Secret: cfg.WebhookSecret}).Register(mux)
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: mux}

	go func() {
		log.Printf("bot listening at %s (admins=%d, workers=%d, scheduler=%s, sessions=%s)",
			cfg.HTTPAddr, len(cfg.AdminIDs), cfg.Workers, cfg.Scheduler, cfg.SessionStore)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2) // stop accepting updates
	disp.Stop()            // finish queued ones, they still publish
	for _, p := range producers {
		p.Close()
	}
	cancel()
	for _, p := range producers {
		p.WaitClosed()
	}
}

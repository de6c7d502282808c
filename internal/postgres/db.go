package postgres

import (
	"context"
	"fmt"
	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"log"
	"strings"
	"time"
)

// Connect opens a pool and waits up to 30s for the server to answer, so the
// bot may start before the database in a compose setup.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	// pool_max_conns di DSN tetap menang
	if !strings.Contains(dsn, "pool_max_conns") {
		cfg.MaxConns = 8
	}
	cfg.MinConns = 1
	cfg.HealthCheckPeriod = 30 * time.Second
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, pool.Ping(ctx)
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(30*time.Second),
		backoff.WithNotify(func(err error, d time.Duration) {
			log.Printf("postgres: %s not ready, retry in %s: %v", cfg.ConnConfig.Host, d.Round(time.Millisecond), err)
		}),
	)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.ConnConfig.Host, err)
	}
	return pool, nil
}

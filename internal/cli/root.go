// Package cli holds the shopctl admin commands.
package cli

import (
	"context"
	"github.com/ariefcatur/go-shop-bot/internal/config"
	"github.com/ariefcatur/go-shop-bot/internal/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	DSN string

	// connect is replaced in tests.
	connect func(ctx context.Context, dsn string) (*pgxpool.Pool, error)
}

// NewRootCommand creates the shopctl root command.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{connect: postgres.Connect})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shopctl",
		Short: "shopctl - shop bot maintenance",
		Long:  "Maintenance commands for the shop bot database: schema migration and catalog seeding.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.DSN != "" {
				return nil
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			opts.DSN = cfg.PostgresDSN
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.DSN, "dsn", "", "postgres DSN (default: POSTGRES_DSN)")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	return cmd
}

func (o *RootOptions) pool(ctx context.Context) (*pgxpool.Pool, error) {
	return o.connect(ctx, o.DSN)
}

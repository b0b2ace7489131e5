package main

import (
	"context"
	"fmt"
	"io"

	"expired/internal/config"
	"expired/internal/database"
	"expired/internal/model"
	"expired/internal/repository"
	"expired/internal/service"
	"expired/internal/store"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app carries the global flags and the dependencies built for a command run.
type app struct {
	envFile string
	memory  bool

	cfg     *config.Config
	logger  zerolog.Logger
	pool    *pgxpool.Pool
	store   *store.ProductStore
	policy  model.ExpiryPolicy
	service service.ProductService
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "expired",
		Short: "Track perishable products and what is about to expire",
		Long: `expired keeps a list of perishable products with their expiry dates and
sorts them into Expired, Expiring Soon and Good buckets.

Products are stored in PostgreSQL (configured through DB_* or DATABASE_URL),
or in memory for a throwaway session with --memory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			return a.setup(cmd)
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&a.envFile, "env-file", "", "Read environment variables from this file (default: .env if present)")
	rootCmd.PersistentFlags().BoolVar(&a.memory, "memory", false, "Keep products in memory instead of PostgreSQL")

	rootCmd.AddCommand(newListCmd(a))
	rootCmd.AddCommand(newAddCmd(a))
	rootCmd.AddCommand(newArchiveCmd(a))
	rootCmd.AddCommand(newImportCmd(a))
	rootCmd.AddCommand(newUICmd(a))

	return rootCmd
}

// setup loads configuration and wires the persistence context, store and service.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	a.cfg = cfg

	// The terminal UI owns the screen, so it logs nowhere.
	var out io.Writer = cmd.ErrOrStderr()
	if cmd.Name() == "ui" {
		out = io.Discard
	}
	a.logger = config.NewLoggerTo(cfg.Logger, out)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var pc repository.ProductContext
	if a.memory {
		a.logger.Debug().Msg("using in-memory product context")
		pc = repository.NewMemoryContext()
	} else {
		pool, err := database.Open(ctx, cfg.Database, a.logger)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		a.pool = pool
		pc = repository.NewProductContext(pool, a.logger)
	}

	a.store = store.NewProductStore(ctx, pc, a.logger)
	a.policy = model.NewExpiryPolicy(cfg.Expiry.SoonDays)
	a.service = service.NewProductService(a.store, a.policy, a.logger)
	return nil
}

// close releases the database pool, if one was opened.
func (a *app) close() {
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
}

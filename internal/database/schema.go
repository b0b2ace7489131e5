package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Schema creates the products table and the index behind the active-list query.
const Schema = `
	CREATE TABLE IF NOT EXISTS products (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		expiry_date TIMESTAMPTZ NOT NULL,
		memo TEXT NOT NULL DEFAULT '',
		archived BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_products_active_expiry
		ON products(expiry_date) WHERE archived = FALSE;
`

// EnsureSchema applies Schema. It is safe to run on every start.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		logger.Error().Err(err).Msg("failed to apply database schema")
		return fmt.Errorf("failed to apply database schema: %w", err)
	}

	logger.Info().Msg("database schema ready")

	return nil
}

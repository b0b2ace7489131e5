package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"expired/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const productColumns = "id, title, expiry_date, memo, archived, created_at, updated_at"

// productContext implements ProductContext using PostgreSQL.
type productContext struct {
	pool    *pgxpool.Pool
	logger  zerolog.Logger
	mu      sync.Mutex
	pending *changeSet
}

// NewProductContext creates a new PostgreSQL-backed persistence context.
func NewProductContext(pool *pgxpool.Pool, logger zerolog.Logger) ProductContext {
	return &productContext{
		pool:    pool,
		logger:  logger.With().Str("repository", "product").Logger(),
		pending: newChangeSet(),
	}
}

// buildFetchQuery renders the SELECT for a fetch request.
func buildFetchQuery(req FetchRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(productColumns)
	sb.WriteString(" FROM products")

	if !req.IncludeArchived {
		sb.WriteString(" WHERE archived IS DISTINCT FROM TRUE")
	}

	if len(req.SortBy) > 0 {
		orders := make([]string, 0, len(req.SortBy))
		for _, s := range req.SortBy {
			direction := "DESC"
			if s.Ascending {
				direction = "ASC"
			}
			orders = append(orders, s.Field+" "+direction)
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(orders, ", "))
	}

	return sb.String(), nil
}

// Fetch runs a query against saved state.
func (r *productContext) Fetch(ctx context.Context, req FetchRequest) ([]model.Product, error) {
	query, err := buildFetchQuery(req)
	if err != nil {
		r.logger.Error().Err(err).Msg("invalid fetch request")
		return nil, fmt.Errorf("failed to build product query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).
			Bool("include_archived", req.IncludeArchived).
			Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var p model.Product
		err := rows.Scan(&p.ID, &p.Title, &p.ExpiryDate, &p.Memo, &p.Archived, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// Get retrieves a single saved product by its ID.
func (r *productContext) Get(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := "SELECT " + productColumns + " FROM products WHERE id = $1"

	var p model.Product
	err := r.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.Title, &p.ExpiryDate, &p.Memo, &p.Archived, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("product_id", id.String()).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return &p, nil
}

func (r *productContext) Insert(p *model.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending.insert(p)
}

func (r *productContext) Update(p *model.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending.update(p)
}

func (r *productContext) Delete(p model.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending.delete(p)
}

func (r *productContext) HasChanges() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.pending.empty()
}

func (r *productContext) Rollback() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending.reset()
}

// Save applies every pending change in a single transaction.
func (r *productContext) Save(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pending.empty() {
		return nil
	}
	changes := r.pending.list()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := r.applyChanges(ctx, tx, changes); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			r.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Msg("failed to commit transaction")
		return fmt.Errorf("failed to commit product changes: %w", err)
	}

	r.pending.reset()

	r.logger.Debug().
		Int("count", len(changes)).
		Msg("product changes saved")

	return nil
}

func (r *productContext) applyChanges(ctx context.Context, tx pgx.Tx, changes []pendingChange) error {
	batch := &pgx.Batch{}
	for _, c := range changes {
		p := c.product
		switch c.kind {
		case changeInsert:
			batch.Queue(`
				INSERT INTO products (id, title, expiry_date, memo, archived, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`, p.ID, p.Title, p.ExpiryDate, p.Memo, p.Archived, p.CreatedAt, p.UpdatedAt)
		case changeUpdate:
			batch.Queue(`
				UPDATE products
				SET title = $2, expiry_date = $3, memo = $4, archived = $5, updated_at = $6
				WHERE id = $1
			`, p.ID, p.Title, p.ExpiryDate, p.Memo, p.Archived, p.UpdatedAt)
		case changeDelete:
			batch.Queue(`DELETE FROM products WHERE id = $1`, p.ID)
		}
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for _, c := range changes {
		tag, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("product_id", c.product.ID.String()).
				Str("change", c.kind.String()).
				Msg("failed to apply product change")
			return fmt.Errorf("failed to %s product %s: %w", c.kind, c.product.ID, err)
		}
		if c.kind != changeInsert && tag.RowsAffected() == 0 {
			r.logger.Warn().
				Str("product_id", c.product.ID.String()).
				Str("change", c.kind.String()).
				Msg("product no longer exists")
		}
	}

	return nil
}

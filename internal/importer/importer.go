package importer

import (
	"context"
	"fmt"

	"expired/internal/model"
	"expired/internal/service"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Loader reads one gzipped JSON-lines product file.
type Loader interface {
	// Load returns the records of the file in file order.
	Load(ctx context.Context, path string) ([]model.ProductRequest, error)
}

// Importer bulk-loads products from files.
type Importer interface {
	// Import loads every path concurrently and creates all records in one save.
	// Any load or validation failure aborts the import with nothing created.
	Import(ctx context.Context, paths []string) (int, error)

	// Seed imports paths only when storage holds no products at all, so restarting
	// with the same seed files does not duplicate them.
	Seed(ctx context.Context, paths []string) (int, error)
}

type importer struct {
	service service.ProductService
	loader  Loader
	logger  zerolog.Logger
}

// NewImporter creates a new product importer.
func NewImporter(svc service.ProductService, loader Loader, logger zerolog.Logger) Importer {
	return &importer{
		service: svc,
		loader:  loader,
		logger:  logger.With().Str("component", "product-importer").Logger(),
	}
}

func (i *importer) Seed(ctx context.Context, paths []string) (int, error) {
	if len(paths) == 0 {
		return 0, nil
	}

	stored, err := i.service.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to check existing products: %w", err)
	}
	if stored > 0 {
		i.logger.Info().
			Int("stored", stored).
			Int("file_count", len(paths)).
			Msg("products already present, skipping seed import")
		return 0, nil
	}

	return i.Import(ctx, paths)
}

func (i *importer) Import(ctx context.Context, paths []string) (int, error) {
	if len(paths) == 0 {
		return 0, nil
	}

	i.logger.Info().Int("file_count", len(paths)).Msg("importing product files")

	// Each goroutine writes only its own slot, so file order is preserved.
	results := make([][]model.ProductRequest, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	for idx, path := range paths {
		g.Go(func() error {
			records, err := i.loader.Load(gctx, path)
			if err != nil {
				return fmt.Errorf("failed to load product file %s: %w", path, err)
			}
			results[idx] = records
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		i.logger.Error().Err(err).Msg("product import aborted")
		return 0, err
	}

	var all []model.ProductRequest
	for idx, records := range results {
		i.logger.Debug().
			Str("file", paths[idx]).
			Int("records", len(records)).
			Msg("product file loaded")
		all = append(all, records...)
	}

	created, err := i.service.CreateMany(ctx, all)
	if err != nil {
		i.logger.Error().Err(err).Msg("product import rejected")
		return 0, fmt.Errorf("failed to import products: %w", err)
	}

	i.logger.Info().
		Int("file_count", len(paths)).
		Int("products_imported", len(created)).
		Msg("product import completed")

	return len(created), nil
}

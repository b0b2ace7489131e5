package importer

import (
	"context"
	"fmt"
	"os"

	"expired/internal/model"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for gzipped product files on the local file system.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based product loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "product-loader").Logger(),
	}
}

// Load reads a gzipped JSON-lines product file.
func (l *fileLoader) Load(ctx context.Context, filePath string) ([]model.ProductRequest, error) {
	l.logger.Info().Str("file", filePath).Msg("loading product file")

	file, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open product file")
		return nil, fmt.Errorf("failed to open product file %s: %w", filePath, err)
	}
	defer file.Close()

	records, err := decodeRecords(ctx, file)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("error reading product file")
		return nil, fmt.Errorf("error reading product file %s: %w", filePath, err)
	}

	l.logger.Info().
		Str("file", filePath).
		Int("records_loaded", len(records)).
		Msg("product file loaded successfully")

	return records, nil
}

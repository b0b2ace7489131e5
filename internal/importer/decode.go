package importer

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"expired/internal/model"
)

// cancelCheckInterval is how many lines are read between context checks.
const cancelCheckInterval = 10_000

// decodeRecords reads a gzip stream of JSON lines. Blank lines are skipped.
func decodeRecords(ctx context.Context, r io.Reader) ([]model.ProductRequest, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	scanner := bufio.NewScanner(gzipReader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var records []model.ProductRequest
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		if lineNumber%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var record model.ProductRequest
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			return nil, fmt.Errorf("invalid record on line %d: %w", lineNumber, err)
		}
		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}

	return records, nil
}

// EncodeRecords writes records as gzipped JSON lines, the format Load reads.
func EncodeRecords(w io.Writer, records []model.ProductRequest) error {
	gzipWriter := gzip.NewWriter(w)
	encoder := json.NewEncoder(gzipWriter)

	for _, record := range records {
		if err := encoder.Encode(record); err != nil {
			gzipWriter.Close()
			return fmt.Errorf("failed to encode record: %w", err)
		}
	}

	if err := gzipWriter.Close(); err != nil {
		return fmt.Errorf("failed to flush gzip stream: %w", err)
	}
	return nil
}

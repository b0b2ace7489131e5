package main

import (
	"context"
	"fmt"
	"os"

	"expired/internal/config"
	"expired/internal/database"

	"github.com/rs/zerolog"
)

// Connects with the configured database settings, applies the schema and reports what it finds.
func main() {
	cfg, err := config.Load(os.Getenv("ENV_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to load configuration: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := database.Open(ctx, cfg.Database, zerolog.Nop())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	var dbName string
	err = pool.QueryRow(ctx, "SELECT current_database()").Scan(&dbName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "QueryRow failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully connected to database: %s\n", dbName)

	var total, archived int
	err = pool.QueryRow(ctx, "SELECT COUNT(*), COUNT(*) FILTER (WHERE archived) FROM products").Scan(&total, &archived)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Query failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Products: %d (%d archived)\n", total, archived)
}

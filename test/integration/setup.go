package integration

import (
	"context"
	"testing"
	"time"

	"expired/internal/config"
	"expired/internal/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container, a pool and the products schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	dbConfig := config.DatabaseConfig{
		URL:             connStr,
		MaxConnections:  10,
		MinConnections:  2,
		MaxConnLifetime: 300,
	}

	pool, err := database.Open(ctx, dbConfig, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// SeedProduct is one row for SeedProducts, expiring DaysFromNow days from today.
type SeedProduct struct {
	Title       string
	DaysFromNow int
	Memo        string
	Archived    bool
}

// DefaultSeed covers every expiry bucket plus an archived row.
var DefaultSeed = []SeedProduct{
	{Title: "Milk", DaysFromNow: -2, Memo: "fridge door"},
	{Title: "Bread", DaysFromNow: 1},
	{Title: "Eggs", DaysFromNow: 5},
	{Title: "Rice", DaysFromNow: 120, Memo: "pantry"},
	{Title: "Old yoghurt", DaysFromNow: -30, Archived: true},
}

// SeedProducts inserts products directly, bypassing the persistence context.
func SeedProducts(t *testing.T, pool *pgxpool.Pool, products []SeedProduct) []uuid.UUID {
	t.Helper()

	ctx := context.Background()
	today := time.Now()
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.Local)

	ids := make([]uuid.UUID, len(products))
	for i, p := range products {
		ids[i] = uuid.New()
		_, err := pool.Exec(ctx,
			"INSERT INTO products (id, title, expiry_date, memo, archived) VALUES ($1, $2, $3, $4, $5)",
			ids[i], p.Title, today.AddDate(0, 0, p.DaysFromNow), p.Memo, p.Archived,
		)
		if err != nil {
			t.Fatalf("failed to seed product %s: %v", p.Title, err)
		}
	}
	return ids
}

// CleanupDB removes every product.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	if _, err := pool.Exec(context.Background(), "DELETE FROM products"); err != nil {
		t.Logf("failed to clean products: %v", err)
	}
}

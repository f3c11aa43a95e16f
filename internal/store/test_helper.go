package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SetupTestDB connects to the test database, or skips the test when no
// database is configured. Set TEST_DATABASE_URL (or DATABASE_URL) to
// run the store tests against a real postgres.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Skipf("database not reachable: %v", err)
	}

	t.Cleanup(func() {
		cleanupTestData(t, pool)
		pool.Close()
	})
	return pool
}

// cleanupTestData wipes the tables in foreign-key order.
func cleanupTestData(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, table := range []string{"night_actions", "game_meta", "game_roles", "players", "games"} {
		if _, err := pool.Exec(ctx, "DELETE FROM "+table); err != nil {
			t.Logf("cleanup %s: %v", table, err)
		}
	}
}

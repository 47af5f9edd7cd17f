// Package testutil holds database helpers for the integration tests.
// Everything here keys off TEST_DATABASE_URL and skips when it is unset.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // "pgx" driver for database/sql
	"github.com/pressly/goose/v3"

	"github.com/pkordes/trip-planner/migrations"
)

// EnvDSN names the variable that points the integration tests at Postgres.
const EnvDSN = "TEST_DATABASE_URL"

// Tables lists every table the migrations create, parents first.
var Tables = []string{"trips", "itinerary_items", "flight_bookings", "expenses", "checklist_items"}

// NewPool returns a pool for EnvDSN, closed on test cleanup.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	pool, err := pgxpool.New(context.Background(), dsn(t))
	if err != nil {
		t.Fatalf("testutil.NewPool: %v", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		t.Fatalf("testutil.NewPool: ping: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

// NewTx begins a transaction that is rolled back on test cleanup, so trip
// rows written by one test never leak into another.
func NewTx(t *testing.T) pgx.Tx {
	t.Helper()

	tx, err := NewPool(t).Begin(context.Background())
	if err != nil {
		t.Fatalf("testutil.NewTx: begin: %v", err)
	}
	t.Cleanup(func() { _ = tx.Rollback(context.Background()) })
	return tx
}

// NewSQLDB returns a database/sql handle for EnvDSN. goose needs one.
func NewSQLDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := openSQL(dsn(t))
	if err != nil {
		t.Fatalf("testutil.NewSQLDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// MigrateUp applies all pending migrations to the database at dsnValue.
// It is meant for TestMain, where there is no *testing.T to skip with.
func MigrateUp(ctx context.Context, dsnValue string) error {
	db, err := openSQL(dsnValue)
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("testutil.MigrateUp: provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("testutil.MigrateUp: %w", err)
	}
	return nil
}

func openSQL(dsnValue string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsnValue)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return db, nil
}

func dsn(t *testing.T) string {
	t.Helper()
	v := os.Getenv(EnvDSN)
	if v == "" {
		t.Skip(EnvDSN + " not set")
	}
	return v
}

//go:build integration_pg
// +build integration_pg

package store

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"tally/internal/platform/logger"

	"github.com/rs/zerolog"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgres launches a disposable Postgres and returns DSN + stop func
func startPostgres(t *testing.T) (dsn string, stop func()) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)

	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "postgres",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections"),
		).WithDeadline(2 * time.Minute),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		cancel()
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get container host: %v", err)
	}
	mp, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get mapped port: %v", err)
	}

	dsn = fmt.Sprintf("postgres://postgres:postgres@%s:%s/postgres?sslmode=disable", host, mp.Port())
	stop = func() {
		_ = c.Terminate(context.Background())
		cancel()
	}
	return dsn, stop
}

func newTestStoreLogger() logger.Logger {
	// quiet, deterministic logs
	return zerolog.New(io.Discard)
}

// openMigrated opens the adapter with embedded migrations applied
func openMigrated(t *testing.T, ctx context.Context, dsn string) *pgAdapter {
	t.Helper()

	s := &Store{Log: newTestStoreLogger()}
	cfg := Config{
		PG: PGConfig{
			URL:      dsn,
			MaxConns: 2,
			LogSQL:   true, // hit tracer wiring path
			Migrate:  true,
		},
	}
	txr, err := openPG(ctx, cfg, s)
	if err != nil {
		t.Fatalf("openPG failed: %v", err)
	}
	a, ok := txr.(*pgAdapter)
	if !ok {
		t.Fatalf("openPG did not return *pgAdapter, got %T", txr)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestMigrationsAndChronicleSchemaIntegration(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	a := openMigrated(t, ctx, dsn)

	const owner = "6ba7b810-9dad-11d1-80b4-00c04fd430c8"
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	if err := ExecOne(ctx, a, `
		INSERT INTO tracked_configs (id, owner_id, project_ids, project_names, valid_from)
		VALUES ($1, $2, $3, $4, $5)`,
		"0b7aa534-4ba2-4f5a-9c26-2c4be54bd111", owner,
		[]string{"p1", "p2"}, []string{"Billing", "Support"}, from,
	); err != nil {
		t.Fatalf("insert config: %v", err)
	}

	// the partial unique index allows only one open entry per owner
	_, err := Exec(ctx, a, `
		INSERT INTO tracked_configs (id, owner_id, project_ids, project_names, valid_from)
		VALUES ($1, $2, $3, $4, $5)`,
		"c9a06536-1d22-47bb-9cf1-16a5a51f3a42", owner,
		[]string{"p3"}, []string{"Ops"}, from.AddDate(0, 1, 0),
	)
	if err == nil {
		t.Fatal("expected unique violation for second open entry")
	}

	// the interval check rejects inverted validity
	_, err = Exec(ctx, a, `
		INSERT INTO tracked_configs (id, owner_id, project_ids, project_names, valid_from, valid_until)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		"dc7a9a1a-9e73-45ad-84e0-66d7a3a9c0d3", owner,
		[]string{"p3"}, []string{"Ops"}, from, from,
	)
	if err == nil {
		t.Fatal("expected check violation for empty interval")
	}

	n, err := Scalar[int64](ctx, a, `SELECT count(*) FROM tracked_configs WHERE owner_id = $1`, owner)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("unexpected row count: %d", n)
	}
}

func TestTxCommitAndRollbackIntegration(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	a := openMigrated(t, ctx, dsn)

	const owner = "6ba7b810-9dad-11d1-80b4-00c04fd430c8"
	day := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	insert := `
		INSERT INTO daily_totals
			(owner_id, day, project_id, project_name, client_id, tracked, seconds, calculated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())`

	// commit path
	if err := a.Tx(ctx, func(q RowQuerier) error {
		_, err := q.Exec(ctx, insert, owner, day, "p1", "Billing", "c1", true, int64(28800))
		return err
	}); err != nil {
		t.Fatalf("tx commit: %v", err)
	}

	count, err := Scalar[int64](ctx, a, `SELECT count(*) FROM daily_totals WHERE owner_id = $1`, owner)
	if err != nil {
		t.Fatalf("count committed: %v", err)
	}
	if count != 1 {
		t.Fatalf("commit failed count=%d want=1", count)
	}

	// rollback path
	_ = a.Tx(ctx, func(q RowQuerier) error {
		if _, err := q.Exec(ctx, insert, owner, day.AddDate(0, 0, 1), "p1", "Billing", "c1", true, int64(3600)); err != nil {
			return err
		}
		return errRollback
	})

	count, err = Scalar[int64](ctx, a, `SELECT count(*) FROM daily_totals WHERE owner_id = $1`, owner)
	if err != nil {
		t.Fatalf("count rolled back: %v", err)
	}
	if count != 1 {
		t.Fatalf("rollback failed count=%d want=1", count)
	}
}

var errRollback = &fakeErr{}

type fakeErr struct{}

func (*fakeErr) Error() string { return "rollback" }

package store

import (
	"context"
	"database/sql"

	"tally/internal/platform/logger"
	"tally/internal/platform/store/migrations"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for goose
	"github.com/pressly/goose/v3"
)

// gooseUpContext is a seam for testing migrateUp without a live database
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// migrateUp applies embedded goose migrations against the database at url
// it opens a short lived database/sql handle separate from the pgx pool
func migrateUp(ctx context.Context, url string, log logger.Logger) error {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	log.Info().Msg("migrations up to date")
	return nil
}

// Package repo persists config chronicle entries in Postgres
package repo

import (
	"context"
	"time"

	"tally/internal/modkit/repokit"
	perr "tally/internal/platform/errors"
	"tally/internal/platform/store"
	"tally/internal/services/chronicle/domain"
)

// Repo is the persistence contract for chronicle entries
type Repo interface {
	Insert(ctx context.Context, e domain.ConfigEntry) error
	Update(ctx context.Context, e domain.ConfigEntry) error
	Get(ctx context.Context, ownerID, entryID string) (domain.ConfigEntry, error)
	Open(ctx context.Context, ownerID, configType string) (domain.ConfigEntry, error)
	At(ctx context.Context, ownerID, configType string, instant time.Time) (domain.ConfigEntry, error)
	History(ctx context.Context, ownerID, configType string) ([]domain.ConfigEntry, error)
	Count(ctx context.Context, ownerID, configType string) (int64, error)
	CloseOpen(ctx context.Context, ownerID, configType string, until time.Time) error
	Delete(ctx context.Context, ownerID, entryID string) error
}

// PG is the Postgres-backed binder for Repo
type PG struct{}

// NewPG returns a binder that yields Postgres repos
func NewPG() repokit.Binder[Repo] { return &PG{} }

// Bind attaches a queryer (pool or tx) to the repo
func (*PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

type queries struct{ q repokit.Queryer }

const cols = `id, owner_id, config_type, project_ids, project_names, valid_from, valid_until, created_at`

const (
	sqlInsert = `
		INSERT INTO tracked_configs
			(id, owner_id, config_type, project_ids, project_names, valid_from, valid_until, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	sqlUpdate = `
		UPDATE tracked_configs
		SET project_ids = $3, project_names = $4, valid_from = $5, valid_until = $6
		WHERE owner_id = $1 AND id = $2`

	sqlGet = `
		SELECT ` + cols + `
		FROM tracked_configs
		WHERE owner_id = $1 AND id = $2`

	sqlOpen = `
		SELECT ` + cols + `
		FROM tracked_configs
		WHERE owner_id = $1 AND config_type = $2 AND valid_until IS NULL`

	sqlAt = `
		SELECT ` + cols + `
		FROM tracked_configs
		WHERE owner_id = $1 AND config_type = $2
		  AND valid_from <= $3
		  AND (valid_until IS NULL OR $3 < valid_until)
		ORDER BY valid_from DESC
		LIMIT 1`

	sqlHistory = `
		SELECT ` + cols + `
		FROM tracked_configs
		WHERE owner_id = $1 AND config_type = $2
		ORDER BY valid_from DESC`

	sqlCount = `
		SELECT COUNT(*)
		FROM tracked_configs
		WHERE owner_id = $1 AND config_type = $2`

	sqlCloseOpen = `
		UPDATE tracked_configs
		SET valid_until = $3
		WHERE owner_id = $1 AND config_type = $2 AND valid_until IS NULL`

	sqlDelete = `
		DELETE FROM tracked_configs
		WHERE owner_id = $1 AND id = $2`
)

func (r *queries) Insert(ctx context.Context, e domain.ConfigEntry) error {
	var until *time.Time
	if u, ok := e.Validity.Until(); ok {
		until = &u
	}
	return store.ExecOne(ctx, r.q, sqlInsert,
		e.ID, e.OwnerID, e.ConfigType, e.ProjectIDs, e.ProjectNames, e.ValidFrom, until, e.CreatedAt)
}

func (r *queries) Update(ctx context.Context, e domain.ConfigEntry) error {
	var until *time.Time
	if u, ok := e.Validity.Until(); ok {
		until = &u
	}
	return store.ExecOne(ctx, r.q, sqlUpdate,
		e.OwnerID, e.ID, e.ProjectIDs, e.ProjectNames, e.ValidFrom, until)
}

func (r *queries) Get(ctx context.Context, ownerID, entryID string) (domain.ConfigEntry, error) {
	return store.One(ctx, r.q, scanEntry, sqlGet, ownerID, entryID)
}

func (r *queries) Open(ctx context.Context, ownerID, configType string) (domain.ConfigEntry, error) {
	return store.One(ctx, r.q, scanEntry, sqlOpen, ownerID, configType)
}

func (r *queries) At(
	ctx context.Context,
	ownerID, configType string,
	instant time.Time,
) (domain.ConfigEntry, error) {
	return store.One(ctx, r.q, scanEntry, sqlAt, ownerID, configType, instant)
}

func (r *queries) History(ctx context.Context, ownerID, configType string) ([]domain.ConfigEntry, error) {
	return store.Many(ctx, r.q, scanEntry, sqlHistory, ownerID, configType)
}

func (r *queries) Count(ctx context.Context, ownerID, configType string) (int64, error) {
	return store.Scalar[int64](ctx, r.q, sqlCount, ownerID, configType)
}

// CloseOpen stamps the open entry's upper bound; a no-op when none is open
func (r *queries) CloseOpen(ctx context.Context, ownerID, configType string, until time.Time) error {
	_, err := store.Exec(ctx, r.q, sqlCloseOpen, ownerID, configType, until)
	return err
}

func (r *queries) Delete(ctx context.Context, ownerID, entryID string) error {
	tag, err := store.Exec(ctx, r.q, sqlDelete, ownerID, entryID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return perr.NotFoundf("config entry %s not found", entryID)
	}
	return nil
}

func scanEntry(row store.Row) (domain.ConfigEntry, error) {
	var (
		e     domain.ConfigEntry
		until *time.Time
	)
	err := row.Scan(
		&e.ID, &e.OwnerID, &e.ConfigType,
		&e.ProjectIDs, &e.ProjectNames,
		&e.ValidFrom, &until, &e.CreatedAt,
	)
	if err != nil {
		return domain.ConfigEntry{}, err
	}
	if until != nil {
		return e.WithValidity(domain.ClosedAt(*until)), nil
	}
	return e.WithValidity(domain.Open()), nil
}

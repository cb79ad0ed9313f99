// Package repo persists per-owner settings in Postgres
package repo

import (
	"context"

	"tally/internal/modkit/repokit"
	"tally/internal/platform/store"
	"tally/internal/services/settings/domain"
)

// Repo is the persistence contract for owner settings
type Repo interface {
	Get(ctx context.Context, ownerID string) (domain.Settings, error)
	Upsert(ctx context.Context, s domain.Settings) error
}

// PG is the Postgres-backed binder for Repo
type PG struct{}

// NewPG returns a binder that yields Postgres repos
func NewPG() repokit.Binder[Repo] { return &PG{} }

// Bind attaches a queryer (pool or tx) to the repo
func (*PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

type queries struct{ q repokit.Queryer }

const (
	sqlGet = `
		SELECT owner_id, workspace_id, client_id, api_token, timezone, week_start,
		       regular_hours_per_week, working_days_per_week, cumulative_start, updated_at
		FROM owner_settings
		WHERE owner_id = $1`

	sqlUpsert = `
		INSERT INTO owner_settings
			(owner_id, workspace_id, client_id, api_token, timezone, week_start,
			 regular_hours_per_week, working_days_per_week, cumulative_start, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (owner_id) DO UPDATE SET
			workspace_id = EXCLUDED.workspace_id,
			client_id = EXCLUDED.client_id,
			api_token = EXCLUDED.api_token,
			timezone = EXCLUDED.timezone,
			week_start = EXCLUDED.week_start,
			regular_hours_per_week = EXCLUDED.regular_hours_per_week,
			working_days_per_week = EXCLUDED.working_days_per_week,
			cumulative_start = EXCLUDED.cumulative_start,
			updated_at = EXCLUDED.updated_at`
)

func (r *queries) Get(ctx context.Context, ownerID string) (domain.Settings, error) {
	return store.One(ctx, r.q, scanSettings, sqlGet, ownerID)
}

func (r *queries) Upsert(ctx context.Context, s domain.Settings) error {
	return store.ExecOne(ctx, r.q, sqlUpsert,
		s.OwnerID, s.WorkspaceID, s.ClientID, s.APIToken, s.Timezone, s.WeekStart,
		s.RegularHoursPerWeek, s.WorkingDaysPerWeek, s.CumulativeStart, s.UpdatedAt)
}

func scanSettings(row store.Row) (domain.Settings, error) {
	var s domain.Settings
	err := row.Scan(
		&s.OwnerID, &s.WorkspaceID, &s.ClientID, &s.APIToken, &s.Timezone, &s.WeekStart,
		&s.RegularHoursPerWeek, &s.WorkingDaysPerWeek, &s.CumulativeStart, &s.UpdatedAt,
	)
	if err != nil {
		return domain.Settings{}, err
	}
	return s, nil
}

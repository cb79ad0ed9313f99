// Package repo persists the daily and weekly aggregate cache in Postgres
package repo

import (
	"context"
	"time"

	"tally/internal/modkit/repokit"
	"tally/internal/platform/store"
	"tally/internal/services/rollup/domain"
)

// Repo is the persistence contract for the aggregate cache
type Repo interface {
	FreshWeekly(ctx context.Context, ownerID string, weekStart time.Time) (domain.WeeklyRow, error)
	DeleteWeekly(ctx context.Context, ownerID string, weekStart time.Time) error
	InsertWeekly(ctx context.Context, row domain.WeeklyRow) error

	FreshDaily(ctx context.Context, ownerID string, from, to time.Time) ([]domain.DailyRow, error)
	DeleteDaily(ctx context.Context, ownerID string, from, to time.Time) error
	InsertDaily(ctx context.Context, rows []domain.DailyRow) error

	InvalidateDailyFrom(ctx context.Context, ownerID string, from, at time.Time) (int64, error)
	InvalidateWeeklyFrom(ctx context.Context, ownerID string, from, at time.Time) (int64, error)

	SumOvertimeBetween(ctx context.Context, ownerID string, from, until time.Time) (int64, error)
}

// PG is the Postgres-backed binder for Repo
type PG struct{}

// NewPG returns a binder that yields Postgres repos
func NewPG() repokit.Binder[Repo] { return &PG{} }

// Bind attaches a queryer (pool or tx) to the repo
func (*PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

type queries struct{ q repokit.Queryer }

const (
	sqlFreshWeekly = `
		SELECT owner_id, week_start, week_end, client_id, total_seconds,
		       regular_hours_baseline, overtime_seconds, cumulative_overtime_seconds,
		       status, calculated_at, invalidated_at
		FROM weekly_totals
		WHERE owner_id = $1 AND week_start = $2 AND invalidated_at IS NULL`

	sqlDeleteWeekly = `
		DELETE FROM weekly_totals
		WHERE owner_id = $1 AND week_start = $2`

	sqlInsertWeekly = `
		INSERT INTO weekly_totals
			(owner_id, week_start, week_end, client_id, total_seconds,
			 regular_hours_baseline, overtime_seconds, cumulative_overtime_seconds,
			 status, calculated_at, invalidated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULL)`

	sqlFreshDaily = `
		SELECT owner_id, day, project_id, project_name, client_id, tracked,
		       seconds, calculated_at, invalidated_at
		FROM daily_totals
		WHERE owner_id = $1 AND day >= $2 AND day <= $3 AND invalidated_at IS NULL
		ORDER BY day, project_id`

	sqlDeleteDaily = `
		DELETE FROM daily_totals
		WHERE owner_id = $1 AND day >= $2 AND day <= $3`

	sqlInsertDaily = `
		INSERT INTO daily_totals
			(owner_id, day, project_id, project_name, client_id, tracked,
			 seconds, calculated_at, invalidated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULL)`

	sqlInvalidateDaily = `
		UPDATE daily_totals
		SET invalidated_at = $3
		WHERE owner_id = $1 AND day >= $2 AND invalidated_at IS NULL`

	sqlInvalidateWeekly = `
		UPDATE weekly_totals
		SET invalidated_at = $3
		WHERE owner_id = $1 AND week_start >= $2 AND invalidated_at IS NULL`

	sqlSumOvertime = `
		SELECT COALESCE(SUM(overtime_seconds), 0)
		FROM weekly_totals
		WHERE owner_id = $1 AND week_start >= $2 AND week_start < $3
		  AND invalidated_at IS NULL`
)

func (r *queries) FreshWeekly(
	ctx context.Context,
	ownerID string,
	weekStart time.Time,
) (domain.WeeklyRow, error) {
	return store.One(ctx, r.q, scanWeekly, sqlFreshWeekly, ownerID, weekStart)
}

func (r *queries) DeleteWeekly(ctx context.Context, ownerID string, weekStart time.Time) error {
	_, err := store.Exec(ctx, r.q, sqlDeleteWeekly, ownerID, weekStart)
	return err
}

func (r *queries) InsertWeekly(ctx context.Context, row domain.WeeklyRow) error {
	return store.ExecOne(ctx, r.q, sqlInsertWeekly,
		row.OwnerID, row.WeekStart, row.WeekEnd, row.ClientID, row.TotalSeconds,
		row.RegularHoursBaseline, row.OvertimeSeconds, row.CumulativeOvertimeSeconds,
		row.Status, row.CalculatedAt)
}

func (r *queries) FreshDaily(
	ctx context.Context,
	ownerID string,
	from, to time.Time,
) ([]domain.DailyRow, error) {
	return store.Many(ctx, r.q, scanDaily, sqlFreshDaily, ownerID, from, to)
}

func (r *queries) DeleteDaily(ctx context.Context, ownerID string, from, to time.Time) error {
	_, err := store.Exec(ctx, r.q, sqlDeleteDaily, ownerID, from, to)
	return err
}

func (r *queries) InsertDaily(ctx context.Context, rows []domain.DailyRow) error {
	for _, row := range rows {
		err := store.ExecOne(ctx, r.q, sqlInsertDaily,
			row.OwnerID, row.Day, row.ProjectID, row.ProjectName, row.ClientID,
			row.Tracked, row.Seconds, row.CalculatedAt)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *queries) InvalidateDailyFrom(
	ctx context.Context,
	ownerID string,
	from, at time.Time,
) (int64, error) {
	tag, err := store.Exec(ctx, r.q, sqlInvalidateDaily, ownerID, from, at)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *queries) InvalidateWeeklyFrom(
	ctx context.Context,
	ownerID string,
	from, at time.Time,
) (int64, error) {
	tag, err := store.Exec(ctx, r.q, sqlInvalidateWeekly, ownerID, from, at)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *queries) SumOvertimeBetween(
	ctx context.Context,
	ownerID string,
	from, until time.Time,
) (int64, error) {
	return store.Scalar[int64](ctx, r.q, sqlSumOvertime, ownerID, from, until)
}

func scanWeekly(row store.Row) (domain.WeeklyRow, error) {
	var w domain.WeeklyRow
	err := row.Scan(
		&w.OwnerID, &w.WeekStart, &w.WeekEnd, &w.ClientID, &w.TotalSeconds,
		&w.RegularHoursBaseline, &w.OvertimeSeconds, &w.CumulativeOvertimeSeconds,
		&w.Status, &w.CalculatedAt, &w.InvalidatedAt,
	)
	if err != nil {
		return domain.WeeklyRow{}, err
	}
	return w, nil
}

func scanDaily(row store.Row) (domain.DailyRow, error) {
	var d domain.DailyRow
	err := row.Scan(
		&d.OwnerID, &d.Day, &d.ProjectID, &d.ProjectName, &d.ClientID, &d.Tracked,
		&d.Seconds, &d.CalculatedAt, &d.InvalidatedAt,
	)
	if err != nil {
		return domain.DailyRow{}, err
	}
	return d, nil
}

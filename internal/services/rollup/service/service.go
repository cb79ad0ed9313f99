// Package service implements the daily/weekly aggregate cache with
// invalidate-and-recompute coherence
package service

import (
	"context"
	"time"

	"tally/internal/core/overtime"
	"tally/internal/modkit/repokit"
	"tally/internal/platform/calendar"
	perr "tally/internal/platform/errors"
	"tally/internal/platform/logger"
	chronicledom "tally/internal/services/chronicle/domain"
	reportsdom "tally/internal/services/reports/domain"
	"tally/internal/services/rollup/domain"
	"tally/internal/services/rollup/repo"
	settingsdom "tally/internal/services/settings/domain"
)

// Service defines the service contract for the aggregate cache
type Service interface{ domain.ServicePort }

// Collab bundles the collaborator ports the cache consumes
type Collab struct {
	Chronicle chronicledom.ResolverPort
	Settings  settingsdom.ReaderPort
	Reports   reportsdom.ServicePort
}

// Svc implements the Service interface
type Svc struct {
	Repo   repo.Repo
	binder repokit.Binder[repo.Repo]
	db     repokit.TxRunner

	collab Collab
	log    logger.Logger
	now    func() time.Time
	weeks  keyedMutex
}

// New creates a new rollup service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], collab Collab) *Svc {
	if db == nil {
		panic("rollup.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("rollup.Service requires a non nil Repo binder")
	}
	if collab.Chronicle == nil || collab.Settings == nil || collab.Reports == nil {
		panic("rollup.Service requires chronicle, settings and reports collaborators")
	}
	return &Svc{
		Repo:   binder.Bind(db),
		binder: binder,
		db:     db,
		collab: collab,
		log:    *logger.Named("rollup"),
		now:    time.Now,
	}
}

// WeeklySummary serves the cached weekly row when fresh, otherwise
// recomputes it. Recomputation for the same owner and week serializes on
// a keyed lock, delete-then-insert is not safe under duplicate execution
func (s *Svc) WeeklySummary(
	ctx context.Context,
	ownerID string,
	weekStart time.Time,
	force bool,
) (domain.WeeklyRow, error) {
	cal, err := s.calendarFor(ctx, ownerID)
	if err != nil {
		return domain.WeeklyRow{}, err
	}
	wkLocal := calendar.StartOfWeek(anchor(weekStart, cal.loc), cal.ws)
	wkDate := dateUTC(wkLocal)

	if !force {
		row, err := s.Repo.FreshWeekly(ctx, ownerID, wkDate)
		if err == nil {
			return row, nil
		}
		if !perr.IsCode(err, perr.ErrorCodeNotFound) {
			return domain.WeeklyRow{}, err
		}
	}

	unlock := s.weeks.lock(ownerID + "|" + calendar.DayKey(wkDate))
	defer unlock()

	if !force {
		// another request may have finished the recompute while we queued
		if row, err := s.Repo.FreshWeekly(ctx, ownerID, wkDate); err == nil {
			return row, nil
		}
	}
	return s.recomputeWeek(ctx, ownerID, cal, wkLocal, false)
}

// InvalidateFrom marks all fresh daily and weekly rows on or after from
// as stale; re-invalidating already stale rows is a no-op. The boundary
// snaps down to the owner's week start so the daily and weekly caches
// for the boundary week go stale together, a later summary request then
// rebuilds the whole week instead of mixing old and new days
func (s *Svc) InvalidateFrom(
	ctx context.Context,
	ownerID string,
	from time.Time,
) (domain.InvalidateResult, error) {
	cal, err := s.calendarFor(ctx, ownerID)
	if err != nil {
		return domain.InvalidateResult{}, err
	}
	at := s.now().UTC()
	fromDate := dateUTC(calendar.StartOfWeek(anchor(from, cal.loc), cal.ws))

	var out domain.InvalidateResult
	err = s.db.Tx(ctx, func(q repokit.Queryer) error {
		r := s.binder.Bind(q)
		var err error
		if out.DailyRows, err = r.InvalidateDailyFrom(ctx, ownerID, fromDate, at); err != nil {
			return err
		}
		out.WeeklyRows, err = r.InvalidateWeeklyFrom(ctx, ownerID, fromDate, at)
		return err
	})
	if err != nil {
		return domain.InvalidateResult{}, err
	}
	s.log.Info().Str("owner", ownerID).Str("from_week", calendar.DayKey(fromDate)).
		Int64("daily", out.DailyRows).Int64("weekly", out.WeeklyRows).
		Msg("cache rows invalidated")
	return out, nil
}

// RefreshRange serially rebuilds every week overlapping [start, end or
// today]. Per-week failures are collected in the tally, a broken week
// never aborts the rest of the range
func (s *Svc) RefreshRange(
	ctx context.Context,
	ownerID string,
	start time.Time,
	end *time.Time,
) (domain.RefreshTally, error) {
	cal, err := s.calendarFor(ctx, ownerID)
	if err != nil {
		return domain.RefreshTally{}, err
	}

	endLocal := anchor(s.now().In(cal.loc), cal.loc)
	if end != nil {
		endLocal = anchor(*end, cal.loc)
	}
	weeks := calendar.WeeksOverlapping(anchor(start, cal.loc), endLocal, cal.ws)

	tally := domain.RefreshTally{}
	for _, wk := range weeks {
		outcome := domain.WeekOutcome{WeekStart: calendar.DayKey(wk)}
		if err := s.refreshWeek(ctx, ownerID, cal, wk); err != nil {
			outcome.Error = err.Error()
			tally.Failed++
			s.log.Warn().Err(err).Str("owner", ownerID).Str("week", outcome.WeekStart).
				Msg("week refresh failed, continuing range")
		} else {
			tally.Succeeded++
		}
		tally.Weeks = append(tally.Weeks, outcome)
	}
	return tally, nil
}

func (s *Svc) refreshWeek(ctx context.Context, ownerID string, cal ownerCalendar, wkLocal time.Time) error {
	unlock := s.weeks.lock(ownerID + "|" + calendar.DayKey(dateUTC(wkLocal)))
	defer unlock()
	_, err := s.recomputeWeek(ctx, ownerID, cal, wkLocal, true)
	return err
}

// recomputeWeek rebuilds the weekly row from fresh daily rows, pulling
// the dailies through the reconciler first when none exist (or when the
// caller forces it). Callers must hold the week's lock
func (s *Svc) recomputeWeek(
	ctx context.Context,
	ownerID string,
	cal ownerCalendar,
	wkLocal time.Time,
	forceDaily bool,
) (domain.WeeklyRow, error) {
	wkDate := dateUTC(wkLocal)
	endDate := dateUTC(calendar.WeekEnd(wkLocal))

	var daily []domain.DailyRow
	var err error
	if !forceDaily {
		daily, err = s.Repo.FreshDaily(ctx, ownerID, wkDate, endDate)
		if err != nil {
			return domain.WeeklyRow{}, err
		}
	}
	if len(daily) == 0 {
		daily, err = s.recomputeDaily(ctx, ownerID, cal, wkLocal)
		if err != nil {
			return domain.WeeklyRow{}, err
		}
	}

	worked := make(map[string]int64, 7)
	for _, row := range daily {
		worked[calendar.DayKey(row.Day)] += row.Seconds
	}

	policy := overtime.Policy{
		RegularHoursPerWeek: cal.settings.RegularHoursPerWeek,
		WorkingDaysPerWeek:  cal.settings.WorkingDaysPerWeek,
	}
	entry, err := s.collab.Chronicle.At(ctx, ownerID, calendar.WeekEndInstant(wkLocal))
	switch {
	case err == nil:
		policy.ConfigStart = &entry.ValidFrom
	case perr.IsCode(err, perr.ErrorCodeNotFound):
		// week predates any config; every day stays eligible
	default:
		return domain.WeeklyRow{}, err
	}

	now := s.now()
	res := overtime.CalculateWeek(worked, policy, wkLocal, now.In(cal.loc))

	status := domain.StatusPending
	if !calendar.WeekEndInstant(wkLocal).After(now.In(cal.loc)) {
		status = domain.StatusCommitted
	}

	row := domain.WeeklyRow{
		OwnerID:              ownerID,
		WeekStart:            wkDate,
		WeekEnd:              endDate,
		ClientID:             cal.settings.ClientID,
		TotalSeconds:         res.TotalWorkedSeconds,
		RegularHoursBaseline: cal.settings.RegularHoursPerWeek,
		OvertimeSeconds:      res.TotalOvertimeSeconds,
		Status:               status,
		CalculatedAt:         now.UTC(),
	}

	if cs := cal.settings.CumulativeStart; cs != nil {
		firstWeek := dateUTC(calendar.StartOfWeek(anchor(*cs, cal.loc), cal.ws))
		if !wkDate.Before(firstWeek) {
			base, err := s.Repo.SumOvertimeBetween(ctx, ownerID, firstWeek, wkDate)
			if err != nil {
				return domain.WeeklyRow{}, err
			}
			cum := base + res.TotalOvertimeSeconds
			row.CumulativeOvertimeSeconds = &cum
		}
	}

	err = s.db.Tx(ctx, func(q repokit.Queryer) error {
		r := s.binder.Bind(q)
		if err := r.DeleteWeekly(ctx, ownerID, wkDate); err != nil {
			return err
		}
		return r.InsertWeekly(ctx, row)
	})
	if err != nil {
		return domain.WeeklyRow{}, perr.Wrapf(err, perr.ErrorCodeDB, "weekly row replace failed for %s", calendar.DayKey(wkDate))
	}
	return row, nil
}

// recomputeDaily resolves the config valid at the week's end, reconciles
// the external reports for the span, and replaces the week's daily rows
func (s *Svc) recomputeDaily(
	ctx context.Context,
	ownerID string,
	cal ownerCalendar,
	wkLocal time.Time,
) ([]domain.DailyRow, error) {
	if cal.settings.ClientID == "" {
		return nil, perr.ConfigIncompletef("no client selected")
	}

	entry, err := s.collab.Chronicle.At(ctx, ownerID, calendar.WeekEndInstant(wkLocal))
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return nil, perr.ConfigIncompletef(
			"no tracked project config covers week %s", calendar.DayKey(wkLocal))
	}
	if err != nil {
		return nil, err
	}
	if len(entry.ProjectIDs) == 0 {
		return nil, perr.NoProjectsTrackedf("config %s tracks no projects", entry.ID)
	}

	breakdown, err := s.collab.Reports.Reconcile(ctx, reportsdom.Input{
		WorkspaceID:       cal.settings.WorkspaceID,
		ClientID:          cal.settings.ClientID,
		APIToken:          cal.settings.APIToken,
		TrackedProjectIDs: entry.ProjectIDs,
		Since:             calendar.DayKey(wkLocal),
		Until:             calendar.DayKey(calendar.WeekEnd(wkLocal)),
	})
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	var rows []domain.DailyRow
	for _, day := range breakdown {
		d, err := calendar.ParseDay(day.Date, time.UTC)
		if err != nil {
			return nil, err
		}
		for id, pt := range day.TrackedProjects {
			rows = append(rows, domain.DailyRow{
				OwnerID: ownerID, Day: d, ProjectID: id, ProjectName: pt.Name,
				ClientID: cal.settings.ClientID, Tracked: true,
				Seconds: pt.Seconds, CalculatedAt: now,
			})
		}
		for id, pt := range day.ExtraWorkProjects {
			rows = append(rows, domain.DailyRow{
				OwnerID: ownerID, Day: d, ProjectID: id, ProjectName: pt.Name,
				ClientID: cal.settings.ClientID, Tracked: false,
				Seconds: pt.Seconds, CalculatedAt: now,
			})
		}
	}

	wkDate := dateUTC(wkLocal)
	endDate := dateUTC(calendar.WeekEnd(wkLocal))
	err = s.db.Tx(ctx, func(q repokit.Queryer) error {
		r := s.binder.Bind(q)
		if err := r.DeleteDaily(ctx, ownerID, wkDate, endDate); err != nil {
			return err
		}
		return r.InsertDaily(ctx, rows)
	})
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeDB, "daily rows replace failed for %s", calendar.DayKey(wkDate))
	}
	return rows, nil
}

// ownerCalendar is the owner's resolved calendar context
type ownerCalendar struct {
	settings settingsdom.Settings
	loc      *time.Location
	ws       calendar.WeekStart
}

func (s *Svc) calendarFor(ctx context.Context, ownerID string) (ownerCalendar, error) {
	st, err := s.collab.Settings.Get(ctx, ownerID)
	if err != nil {
		return ownerCalendar{}, err
	}
	loc, err := calendar.Location(st.Timezone)
	if err != nil {
		return ownerCalendar{}, err
	}
	ws, err := calendar.ParseWeekStart(st.WeekStart)
	if err != nil {
		return ownerCalendar{}, err
	}
	return ownerCalendar{settings: st, loc: loc, ws: ws}, nil
}

// anchor rebuilds t's calendar day as midnight in loc
func anchor(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// dateUTC is the persistence form of a calendar day
func dateUTC(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Package service reconciles external report queries into per-day breakdowns
package service

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"tally/internal/adapters/tracker"
	"tally/internal/platform/calendar"
	perr "tally/internal/platform/errors"
	"tally/internal/platform/logger"
	"tally/internal/services/reports/domain"
)

// Service defines the service contract for report reconciliation
type Service interface{ domain.ServicePort }

// Svc implements the Service interface
type Svc struct {
	source domain.SourcePort
	log    logger.Logger
}

// New creates a new reconciler over the given external source
func New(source domain.SourcePort) *Svc {
	if source == nil {
		panic("reports.Service requires a non nil source")
	}
	return &Svc{source: source, log: *logger.Named("reports")}
}

// Reconcile issues the three independent report queries concurrently and
// merges them into one breakdown per day. Any query failing aborts the
// whole reconciliation; partial results are never merged
func (s *Svc) Reconcile(ctx context.Context, in domain.Input) ([]domain.DailyBreakdown, error) {
	auth := tracker.Auth{APIToken: in.APIToken, Workspace: in.WorkspaceID}

	var (
		totals  []tracker.DayTotal
		tracked []tracker.ProjectTotal
		all     []tracker.ProjectTotal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		totals, err = s.source.DailyTotals(gctx, auth, in.ClientID, in.Since, in.Until)
		return err
	})
	g.Go(func() error {
		var err error
		tracked, err = s.source.ProjectTotals(gctx, auth, in.ClientID, in.Since, in.Until, in.TrackedProjectIDs)
		return err
	})
	g.Go(func() error {
		var err error
		all, err = s.source.ProjectTotals(gctx, auth, in.ClientID, in.Since, in.Until, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return s.merge(in.TrackedProjectIDs, totals, tracked, all)
}

func (s *Svc) merge(
	trackedIDs []string,
	totals []tracker.DayTotal,
	tracked, all []tracker.ProjectTotal,
) ([]domain.DailyBreakdown, error) {
	trackedSet := make(map[string]struct{}, len(trackedIDs))
	for _, id := range trackedIDs {
		trackedSet[id] = struct{}{}
	}

	// days present in the flat totals seed the result; rows in the two
	// grouped queries for other days are ignored
	byDay := make(map[string]*domain.DailyBreakdown, len(totals))
	for _, t := range totals {
		day, err := normalizeDay(t.Date)
		if err != nil {
			return nil, err
		}
		byDay[day] = &domain.DailyBreakdown{
			Date:              day,
			TrackedProjects:   map[string]domain.ProjectTime{},
			ExtraWorkProjects: map[string]domain.ProjectTime{},
			TotalSeconds:      t.Seconds,
			ExtraWorkSeconds:  t.Seconds,
		}
	}

	for _, row := range all {
		if _, ok := trackedSet[row.ProjectID]; ok {
			continue
		}
		day, err := normalizeDay(row.Date)
		if err != nil {
			return nil, err
		}
		if b, ok := byDay[day]; ok {
			b.ExtraWorkProjects[row.ProjectID] = domain.ProjectTime{Name: row.ProjectName, Seconds: row.Seconds}
		}
	}

	for _, row := range tracked {
		day, err := normalizeDay(row.Date)
		if err != nil {
			return nil, err
		}
		b, ok := byDay[day]
		if !ok {
			continue
		}
		b.TrackedProjects[row.ProjectID] = domain.ProjectTime{Name: row.ProjectName, Seconds: row.Seconds}
		b.TrackedSeconds += row.Seconds
	}

	out := make([]domain.DailyBreakdown, 0, len(byDay))
	for _, b := range byDay {
		b.ExtraWorkSeconds = b.TotalSeconds - b.TrackedSeconds
		if b.ExtraWorkSeconds < 0 {
			// the source is eventually consistent; grouped totals can
			// briefly exceed the flat total
			s.log.Warn().Str("day", b.Date).
				Int64("total", b.TotalSeconds).
				Int64("tracked", b.TrackedSeconds).
				Msg("tracked sum exceeds day total, clamping extra work to zero")
			b.ExtraWorkSeconds = 0
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// normalizeDay canonicalizes whatever date shape the source returns to
// a YYYY-MM-DD key
func normalizeDay(raw string) (string, error) {
	if t, err := time.Parse(calendar.DayFormat, raw); err == nil {
		return t.Format(calendar.DayFormat), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.Format(calendar.DayFormat), nil
	}
	if len(raw) >= len(calendar.DayFormat) {
		if t, err := time.Parse(calendar.DayFormat, raw[:len(calendar.DayFormat)]); err == nil {
			return t.Format(calendar.DayFormat), nil
		}
	}
	return "", perr.ExternalSourcef("unparseable report date %q", raw)
}

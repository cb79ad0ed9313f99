// Package service contains owner settings workflows
package service

import (
	"context"
	"time"

	"tally/internal/modkit/repokit"
	"tally/internal/platform/calendar"
	perr "tally/internal/platform/errors"
	"tally/internal/services/settings/domain"
	"tally/internal/services/settings/repo"
)

// Service defines the service contract for settings
type Service interface{ domain.ServicePort }

// Svc implements the Service interface
type Svc struct {
	Repo   repo.Repo
	binder repokit.Binder[repo.Repo]
	db     repokit.TxRunner
	now    func() time.Time
}

// New creates a new settings service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo]) *Svc {
	if db == nil {
		panic("settings.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("settings.Service requires a non nil Repo binder")
	}
	return &Svc{Repo: binder.Bind(db), binder: binder, db: db, now: time.Now}
}

// Get returns the owner's settings, falling back to defaults for
// owners that never saved any
func (s *Svc) Get(ctx context.Context, ownerID string) (domain.Settings, error) {
	got, err := s.Repo.Get(ctx, ownerID)
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return domain.Defaults(ownerID), nil
	}
	if err != nil {
		return domain.Settings{}, err
	}
	return got, nil
}

// Put replaces the owner's settings wholesale
func (s *Svc) Put(ctx context.Context, ownerID string, in domain.PutInput) (domain.Settings, error) {
	tz := in.Timezone
	if tz == "" {
		tz = "UTC"
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return domain.Settings{}, perr.WithField(perr.InvalidArgf("unknown timezone %q", tz), "timezone")
	}
	ws := in.WeekStart
	if ws == "" {
		ws = domain.WeekStartMonday
	}

	var cumStart *time.Time
	if in.CumulativeStart != "" {
		d, err := calendar.ParseDay(in.CumulativeStart, time.UTC)
		if err != nil {
			return domain.Settings{}, perr.WithField(err, "cumulative_start")
		}
		cumStart = &d
	}

	out := domain.Settings{
		OwnerID:             ownerID,
		WorkspaceID:         in.WorkspaceID,
		ClientID:            in.ClientID,
		APIToken:            in.APIToken,
		Timezone:            tz,
		WeekStart:           ws,
		RegularHoursPerWeek: in.RegularHoursPerWeek,
		WorkingDaysPerWeek:  in.WorkingDaysPerWeek,
		CumulativeStart:     cumStart,
		UpdatedAt:           s.now().UTC(),
	}
	if err := s.Repo.Upsert(ctx, out); err != nil {
		return domain.Settings{}, err
	}
	return out, nil
}

// Package service implements the versioned tracked-project chronicle
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tally/internal/modkit/repokit"
	perr "tally/internal/platform/errors"
	"tally/internal/services/chronicle/domain"
	"tally/internal/services/chronicle/repo"
)

// Service defines the service contract for the chronicle
type Service interface{ domain.ServicePort }

// Svc owns the chronicle rules: half-open validity intervals, a single
// open entry per owner, and gap-free appends
type Svc struct {
	Repo   repo.Repo
	binder repokit.Binder[repo.Repo]
	db     repokit.TxRunner
	now    func() time.Time
}

// New creates a new chronicle service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo]) *Svc {
	if db == nil {
		panic("chronicle.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("chronicle.Service requires a non nil Repo binder")
	}
	return &Svc{Repo: binder.Bind(db), binder: binder, db: db, now: time.Now}
}

// Current returns the open entry, the one with no upper bound
func (s *Svc) Current(ctx context.Context, ownerID string) (domain.ConfigEntry, error) {
	return s.Repo.Open(ctx, ownerID, domain.ConfigTypeTrackedProjects)
}

// At resolves the entry whose interval contains instant
func (s *Svc) At(ctx context.Context, ownerID string, instant time.Time) (domain.ConfigEntry, error) {
	return s.Repo.At(ctx, ownerID, domain.ConfigTypeTrackedProjects, instant)
}

// History lists all entries, most recent valid_from first
func (s *Svc) History(ctx context.Context, ownerID string) ([]domain.ConfigEntry, error) {
	return s.Repo.History(ctx, ownerID, domain.ConfigTypeTrackedProjects)
}

// Append closes the open entry at in.ValidFrom and starts a new open one
// there, so the chronicle stays contiguous. The new boundary must lie
// strictly after the open entry's start
func (s *Svc) Append(ctx context.Context, ownerID string, in domain.AppendInput) (domain.ConfigEntry, error) {
	validFrom := in.ValidFrom.UTC()
	var out domain.ConfigEntry
	err := s.db.Tx(ctx, func(q repokit.Queryer) error {
		r := s.binder.Bind(q)

		open, err := r.Open(ctx, ownerID, domain.ConfigTypeTrackedProjects)
		switch {
		case err == nil:
			if !validFrom.After(open.ValidFrom) {
				return perr.InvalidIntervalf(
					"valid_from %s must be after the current entry's start %s",
					validFrom.Format(time.RFC3339), open.ValidFrom.Format(time.RFC3339))
			}
			if err := r.CloseOpen(ctx, ownerID, domain.ConfigTypeTrackedProjects, validFrom); err != nil {
				return err
			}
		case perr.IsCode(err, perr.ErrorCodeNotFound):
			// first entry for this owner, nothing to close
		default:
			return err
		}

		e := domain.ConfigEntry{
			ID:           uuid.NewString(),
			OwnerID:      ownerID,
			ConfigType:   domain.ConfigTypeTrackedProjects,
			ProjectIDs:   in.ProjectIDs,
			ProjectNames: in.ProjectNames,
			ValidFrom:    validFrom,
			CreatedAt:    s.now().UTC(),
		}.WithValidity(domain.Open())
		if err := r.Insert(ctx, e); err != nil {
			return err
		}
		out = e
		return nil
	})
	if err != nil {
		return domain.ConfigEntry{}, err
	}
	return out, nil
}

// Revise edits an entry in place. Boundary changes are re-validated
// against every sibling so intervals never overlap; a closed entry
// cannot be reopened
func (s *Svc) Revise(ctx context.Context, ownerID string, in domain.ReviseInput) (domain.ConfigEntry, error) {
	var out domain.ConfigEntry
	err := s.db.Tx(ctx, func(q repokit.Queryer) error {
		r := s.binder.Bind(q)

		e, err := r.Get(ctx, ownerID, in.EntryID)
		if err != nil {
			return err
		}

		if in.ProjectIDs != nil {
			e.ProjectIDs = *in.ProjectIDs
		}
		if in.ProjectNames != nil {
			e.ProjectNames = *in.ProjectNames
		}
		if in.ValidFrom != nil {
			e.ValidFrom = in.ValidFrom.UTC()
		}
		if in.ValidUntil != nil {
			e = e.WithValidity(domain.ClosedAt(in.ValidUntil.UTC()))
		}

		if until, ok := e.Validity.Until(); ok && !e.ValidFrom.Before(until) {
			return perr.InvalidIntervalf(
				"valid_from %s must precede valid_until %s",
				e.ValidFrom.Format(time.RFC3339), until.Format(time.RFC3339))
		}

		siblings, err := r.History(ctx, ownerID, domain.ConfigTypeTrackedProjects)
		if err != nil {
			return err
		}
		until, _ := e.Validity.Until()
		for _, sib := range siblings {
			if sib.ID == e.ID {
				continue
			}
			if sib.Overlaps(e.ValidFrom, until) {
				return perr.InvalidIntervalf("revised interval overlaps entry %s", sib.ID)
			}
		}

		if err := r.Update(ctx, e); err != nil {
			return err
		}
		out = e
		return nil
	})
	if err != nil {
		return domain.ConfigEntry{}, err
	}
	return out, nil
}

// Remove deletes a historical entry. The open entry and the sole
// remaining entry are protected, deleting them would leave the owner
// without a resolvable config
func (s *Svc) Remove(ctx context.Context, ownerID, entryID string) error {
	return s.db.Tx(ctx, func(q repokit.Queryer) error {
		r := s.binder.Bind(q)

		e, err := r.Get(ctx, ownerID, entryID)
		if err != nil {
			return err
		}
		if e.Validity.IsOpen() {
			return perr.Conflictf("cannot delete the current open entry")
		}
		n, err := r.Count(ctx, ownerID, domain.ConfigTypeTrackedProjects)
		if err != nil {
			return err
		}
		if n <= 1 {
			return perr.Conflictf("cannot delete the last config entry")
		}
		return r.Delete(ctx, ownerID, entryID)
	})
}

// Package http provides http transport for the aggregate cache
package http

import (
	stdhttp "net/http"
	"time"

	"tally/internal/modkit/httpkit"
	"tally/internal/platform/calendar"
	perr "tally/internal/platform/errors"
	"tally/internal/services/rollup/domain"
	svc "tally/internal/services/rollup/service"
)

// Register mounts rollup endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}
	httpkit.PostJSON[domain.SummaryInput](r, "/summary", h.summary)
	httpkit.PostJSON[domain.InvalidateInput](r, "/invalidate", h.invalidate)
	httpkit.PostJSON[domain.RefreshInput](r, "/refresh", h.refresh)
}

type handlers struct{ svc svc.Service }

// @Summary Weekly aggregate with overtime figures
// @Tags Weeks
// @Accept json
// @Produce json
// @Param payload body domain.SummaryInput true "Week to summarize"
// @Success 200 {object} domain.WeeklyRow "ok"
// @Router /weeks/summary [post]
func (h *handlers) summary(r *stdhttp.Request, in domain.SummaryInput) (any, error) {
	wk, err := calendar.ParseDay(in.WeekStart, time.UTC)
	if err != nil {
		return nil, perr.WithField(err, "week_start")
	}
	return h.svc.WeeklySummary(r.Context(), httpkit.MustOwner(r), wk, in.Force)
}

// @Summary Invalidate cached aggregates from a day forward
// @Tags Weeks
// @Accept json
// @Produce json
// @Param payload body domain.InvalidateInput true "First day to invalidate"
// @Success 200 {object} domain.InvalidateResult "ok"
// @Router /weeks/invalidate [post]
func (h *handlers) invalidate(r *stdhttp.Request, in domain.InvalidateInput) (any, error) {
	from, err := calendar.ParseDay(in.From, time.UTC)
	if err != nil {
		return nil, perr.WithField(err, "from")
	}
	return h.svc.InvalidateFrom(r.Context(), httpkit.MustOwner(r), from)
}

// @Summary Rebuild every week overlapping a day range
// @Tags Weeks
// @Accept json
// @Produce json
// @Param payload body domain.RefreshInput true "Range to rebuild"
// @Success 200 {object} domain.RefreshTally "ok"
// @Router /weeks/refresh [post]
func (h *handlers) refresh(r *stdhttp.Request, in domain.RefreshInput) (any, error) {
	start, err := calendar.ParseDay(in.Start, time.UTC)
	if err != nil {
		return nil, perr.WithField(err, "start")
	}
	var end *time.Time
	if in.End != "" {
		e, err := calendar.ParseDay(in.End, time.UTC)
		if err != nil {
			return nil, perr.WithField(err, "end")
		}
		end = &e
	}
	return h.svc.RefreshRange(r.Context(), httpkit.MustOwner(r), start, end)
}

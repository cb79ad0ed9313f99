package module

import (
	"context"
	"time"

	rollupdom "tally/internal/services/rollup/domain"
	rollupsvc "tally/internal/services/rollup/service"
)

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// adaptRollupPort exposes the cache operations to other modules
type adaptRollupPort struct{ svc rollupsvc.Service }

// WeeklySummary implements the domain ServicePort interface
func (a adaptRollupPort) WeeklySummary(
	ctx context.Context,
	ownerID string,
	weekStart time.Time,
	force bool,
) (rollupdom.WeeklyRow, error) {
	return a.svc.WeeklySummary(ctx, ownerID, weekStart, force)
}

// InvalidateFrom implements the domain ServicePort interface
func (a adaptRollupPort) InvalidateFrom(
	ctx context.Context,
	ownerID string,
	from time.Time,
) (rollupdom.InvalidateResult, error) {
	return a.svc.InvalidateFrom(ctx, ownerID, from)
}

// RefreshRange implements the domain ServicePort interface
func (a adaptRollupPort) RefreshRange(
	ctx context.Context,
	ownerID string,
	start time.Time,
	end *time.Time,
) (rollupdom.RefreshTally, error) {
	return a.svc.RefreshRange(ctx, ownerID, start, end)
}

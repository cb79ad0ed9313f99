package domain

import (
	"context"

	"tally/internal/adapters/tracker"
)

// SourcePort is the external time-tracking read surface the reconciler
// consumes; the tracker client satisfies it
type SourcePort interface {
	DailyTotals(ctx context.Context, auth tracker.Auth, clientID, since, until string) ([]tracker.DayTotal, error)
	ProjectTotals(
		ctx context.Context,
		auth tracker.Auth,
		clientID, since, until string,
		projects []string,
	) ([]tracker.ProjectTotal, error)
}

// ServicePort defines the service contract for report reconciliation
type ServicePort interface {
	Reconcile(ctx context.Context, in Input) ([]DailyBreakdown, error)
}

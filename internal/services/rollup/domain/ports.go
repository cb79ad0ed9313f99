package domain

import (
	"context"
	"time"
)

// ServicePort defines the service contract for the aggregate cache
type ServicePort interface {
	WeeklySummary(ctx context.Context, ownerID string, weekStart time.Time, force bool) (WeeklyRow, error)
	InvalidateFrom(ctx context.Context, ownerID string, from time.Time) (InvalidateResult, error)
	RefreshRange(ctx context.Context, ownerID string, start time.Time, end *time.Time) (RefreshTally, error)
}

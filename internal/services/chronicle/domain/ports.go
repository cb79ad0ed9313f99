package domain

import (
	"context"
	"time"
)

// ServicePort defines the service contract for the chronicle
type ServicePort interface {
	Current(ctx context.Context, ownerID string) (ConfigEntry, error)
	At(ctx context.Context, ownerID string, instant time.Time) (ConfigEntry, error)
	History(ctx context.Context, ownerID string) ([]ConfigEntry, error)
	Append(ctx context.Context, ownerID string, in AppendInput) (ConfigEntry, error)
	Revise(ctx context.Context, ownerID string, in ReviseInput) (ConfigEntry, error)
	Remove(ctx context.Context, ownerID, entryID string) error
}

// ResolverPort is the narrow read surface other modules depend on
// to find the config active at an instant
type ResolverPort interface {
	At(ctx context.Context, ownerID string, instant time.Time) (ConfigEntry, error)
}

package domain

import "context"

// ServicePort defines the service contract for settings
type ServicePort interface {
	Get(ctx context.Context, ownerID string) (Settings, error)
	Put(ctx context.Context, ownerID string, in PutInput) (Settings, error)
}

// ReaderPort is the read-only surface other modules consume
type ReaderPort interface {
	Get(ctx context.Context, ownerID string) (Settings, error)
}

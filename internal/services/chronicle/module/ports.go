package module

import (
	"context"
	"time"

	chronicledom "tally/internal/services/chronicle/domain"
	chroniclesvc "tally/internal/services/chronicle/service"
)

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// adaptChroniclePort exposes the resolver surface other modules consume
type adaptChroniclePort struct{ svc chroniclesvc.Service }

// At implements the domain ResolverPort interface
func (a adaptChroniclePort) At(
	ctx context.Context,
	ownerID string,
	instant time.Time,
) (chronicledom.ConfigEntry, error) {
	return a.svc.At(ctx, ownerID, instant)
}

package module

import (
	"context"

	settingsdom "tally/internal/services/settings/domain"
	settingssvc "tally/internal/services/settings/service"
)

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// adaptSettingsPort exposes the read-only surface other modules consume
type adaptSettingsPort struct{ svc settingssvc.Service }

// Get implements the domain ReaderPort interface
func (a adaptSettingsPort) Get(ctx context.Context, ownerID string) (settingsdom.Settings, error) {
	return a.svc.Get(ctx, ownerID)
}

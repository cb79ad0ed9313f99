// Package domain holds per-owner settings types
package domain

import "time"

// Week start conventions accepted by the settings store
const (
	WeekStartMonday = "MONDAY"
	WeekStartSunday = "SUNDAY"
)

// Settings carries everything the aggregation pipeline needs to know
// about an owner: external source credentials, calendar conventions,
// and the overtime policy numbers
type Settings struct {
	OwnerID             string     `json:"owner_id"`
	WorkspaceID         string     `json:"workspace_id"`
	ClientID            string     `json:"client_id"`
	APIToken            string     `json:"-"`
	Timezone            string     `json:"timezone"`
	WeekStart           string     `json:"week_start"`
	RegularHoursPerWeek float64    `json:"regular_hours_per_week"`
	WorkingDaysPerWeek  int        `json:"working_days_per_week"`
	CumulativeStart     *time.Time `json:"cumulative_start,omitempty"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// Defaults returns the settings a brand new owner starts with
func Defaults(ownerID string) Settings {
	return Settings{
		OwnerID:             ownerID,
		Timezone:            "UTC",
		WeekStart:           WeekStartMonday,
		RegularHoursPerWeek: 40,
		WorkingDaysPerWeek:  5,
	}
}

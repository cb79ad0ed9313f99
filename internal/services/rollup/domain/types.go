// Package domain holds the aggregate cache row types
package domain

import "time"

// Weekly row lifecycle states
const (
	StatusPending   = "pending"
	StatusCommitted = "committed"
)

// DailyRow is one project's cached share of one calendar day
// superseded rows are deleted and replaced, never updated in place
type DailyRow struct {
	OwnerID       string     `json:"owner_id"`
	Day           time.Time  `json:"day"`
	ProjectID     string     `json:"project_id"`
	ProjectName   string     `json:"project_name"`
	ClientID      string     `json:"client_id"`
	Tracked       bool       `json:"tracked"`
	Seconds       int64      `json:"seconds"`
	CalculatedAt  time.Time  `json:"calculated_at"`
	InvalidatedAt *time.Time `json:"invalidated_at,omitempty"`
}

// WeeklyRow is the cached weekly aggregate with its overtime figures
type WeeklyRow struct {
	OwnerID                   string     `json:"owner_id"`
	WeekStart                 time.Time  `json:"week_start"`
	WeekEnd                   time.Time  `json:"week_end"`
	ClientID                  string     `json:"client_id"`
	TotalSeconds              int64      `json:"total_seconds"`
	RegularHoursBaseline      float64    `json:"regular_hours_baseline"`
	OvertimeSeconds           int64      `json:"overtime_seconds"`
	CumulativeOvertimeSeconds *int64     `json:"cumulative_overtime_seconds,omitempty"`
	Status                    string     `json:"status"`
	CalculatedAt              time.Time  `json:"calculated_at"`
	InvalidatedAt             *time.Time `json:"invalidated_at,omitempty"`
}

// Fresh reports whether the row may be served without recomputation
func (r WeeklyRow) Fresh() bool { return r.InvalidatedAt == nil }

// WeekOutcome is one week's result inside a range refresh
type WeekOutcome struct {
	WeekStart string `json:"week_start"`
	Error     string `json:"error,omitempty"`
}

// RefreshTally summarizes a range refresh; per-week errors are collected,
// never fatal to the whole range
type RefreshTally struct {
	Weeks     []WeekOutcome `json:"weeks"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
}

// InvalidateResult counts the rows marked stale by an invalidation
type InvalidateResult struct {
	DailyRows  int64 `json:"daily_rows"`
	WeeklyRows int64 `json:"weekly_rows"`
}

// Package domain holds the report reconciler's per-day breakdown types
package domain

// Input identifies the owner's external scope and the range to reconcile
// Since and Until are inclusive YYYY-MM-DD days
type Input struct {
	WorkspaceID       string
	ClientID          string
	APIToken          string
	TrackedProjectIDs []string
	Since             string
	Until             string
}

// ProjectTime is one project's share of a day
type ProjectTime struct {
	Name    string `json:"name"`
	Seconds int64  `json:"seconds"`
}

// DailyBreakdown splits one day's total into tracked-project time and
// extra work, with a per-project sub-breakdown on both sides
type DailyBreakdown struct {
	Date              string                 `json:"date"`
	TrackedProjects   map[string]ProjectTime `json:"tracked_projects"`
	ExtraWorkProjects map[string]ProjectTime `json:"extra_work_projects"`
	TotalSeconds      int64                  `json:"total_seconds"`
	TrackedSeconds    int64                  `json:"tracked_seconds"`
	ExtraWorkSeconds  int64                  `json:"extra_work_seconds"`
}

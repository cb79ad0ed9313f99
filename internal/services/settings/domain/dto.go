package domain

// PutInput replaces the owner's settings wholesale
// CumulativeStart is a YYYY-MM-DD day or empty to clear it
type PutInput struct {
	WorkspaceID         string  `json:"workspace_id"`
	ClientID            string  `json:"client_id"`
	APIToken            string  `json:"api_token"`
	Timezone            string  `json:"timezone" validate:"omitempty,max=64"`
	WeekStart           string  `json:"week_start" validate:"omitempty,oneof=MONDAY SUNDAY"`
	RegularHoursPerWeek float64 `json:"regular_hours_per_week" validate:"required,gt=0,lte=168"`
	WorkingDaysPerWeek  int     `json:"working_days_per_week" validate:"required,min=1,max=7"`
	CumulativeStart     string  `json:"cumulative_start" validate:"omitempty,day"`
}

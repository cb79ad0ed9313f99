package domain

// SummaryInput asks for one week's aggregate
type SummaryInput struct {
	WeekStart string `json:"week_start" validate:"required,day"`
	Force     bool   `json:"force"`
}

// InvalidateInput marks cache rows stale from a day forward
type InvalidateInput struct {
	From string `json:"from" validate:"required,day"`
}

// RefreshInput rebuilds every week overlapping [Start, End or today]
type RefreshInput struct {
	Start string `json:"start" validate:"required,day"`
	End   string `json:"end" validate:"omitempty,day"`
}

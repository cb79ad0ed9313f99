package tracker

// DayTotal is a flat per-day duration row from the external source
type DayTotal struct {
	Date    string `json:"date"`
	Seconds int64  `json:"seconds"`
}

// ProjectTotal is a per-day per-project duration row from the external source
type ProjectTotal struct {
	Date        string `json:"date"`
	ProjectID   string `json:"project_id"`
	ProjectName string `json:"project_name"`
	Seconds     int64  `json:"seconds"`
}

// Auth carries the per-owner credentials for the external source
type Auth struct {
	// APIToken is the owner's personal token, sent as basic auth token:api_token
	APIToken string
	// Workspace scopes report queries
	Workspace string
}

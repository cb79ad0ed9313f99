// Package domain holds the chronicle's config entry types
package domain

import "time"

// ConfigTypeTrackedProjects is the single config type the chronicle versions
const ConfigTypeTrackedProjects = "tracked_projects"

// Validity is the upper bound of an entry's half-open interval
// modeled as a tagged variant so null never leaks into business logic
type Validity struct {
	closed bool
	until  time.Time
}

// Open returns the open validity (no upper bound, "current" entry)
func Open() Validity { return Validity{} }

// ClosedAt returns a validity closed at the given instant
func ClosedAt(until time.Time) Validity { return Validity{closed: true, until: until} }

// IsOpen reports whether the interval has no upper bound
func (v Validity) IsOpen() bool { return !v.closed }

// Until returns the upper bound and whether one exists
func (v Validity) Until() (time.Time, bool) { return v.until, v.closed }

// ConfigEntry is one version of the tracked-project set
type ConfigEntry struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	ConfigType   string    `json:"config_type"`
	ProjectIDs   []string  `json:"project_ids"`
	ProjectNames []string  `json:"project_names"`
	ValidFrom    time.Time `json:"valid_from"`
	Validity     Validity  `json:"-"`
	CreatedAt    time.Time `json:"created_at"`

	// ValidUntil mirrors Validity for transport, nil when open
	ValidUntil *time.Time `json:"valid_until,omitempty"`
}

// WithValidity sets both the variant and its transport mirror
func (e ConfigEntry) WithValidity(v Validity) ConfigEntry {
	e.Validity = v
	if until, ok := v.Until(); ok {
		u := until
		e.ValidUntil = &u
	} else {
		e.ValidUntil = nil
	}
	return e
}

// ActiveAt reports whether instant falls inside [ValidFrom, ValidUntil)
func (e ConfigEntry) ActiveAt(instant time.Time) bool {
	if instant.Before(e.ValidFrom) {
		return false
	}
	if until, ok := e.Validity.Until(); ok {
		return instant.Before(until)
	}
	return true
}

// Overlaps reports whether the entry's interval intersects [from, until)
// a zero until means an unbounded probe interval
func (e ConfigEntry) Overlaps(from, until time.Time) bool {
	if eu, ok := e.Validity.Until(); ok && !eu.After(from) {
		return false
	}
	if !until.IsZero() && !e.ValidFrom.Before(until) {
		return false
	}
	return true
}

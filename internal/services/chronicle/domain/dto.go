package domain

import "time"

// AppendInput starts a new open config version at ValidFrom
type AppendInput struct {
	ProjectIDs   []string  `json:"project_ids" validate:"required,min=1,dive,required"`
	ProjectNames []string  `json:"project_names" validate:"omitempty,dive,required"`
	ValidFrom    time.Time `json:"valid_from" validate:"required"`
}

// ReviseInput edits an existing entry in place
// nil fields stay untouched; a closed entry cannot be reopened
type ReviseInput struct {
	EntryID      string     `json:"entry_id" validate:"required,uuid4"`
	ProjectIDs   *[]string  `json:"project_ids,omitempty" validate:"omitempty,min=1,dive,required"`
	ProjectNames *[]string  `json:"project_names,omitempty"`
	ValidFrom    *time.Time `json:"valid_from,omitempty"`
	ValidUntil   *time.Time `json:"valid_until,omitempty"`
}

// DeleteInput removes a closed, non-sole entry from the history
type DeleteInput struct {
	EntryID string `json:"entry_id" validate:"required,uuid4"`
}

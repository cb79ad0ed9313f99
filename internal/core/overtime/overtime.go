// Package overtime computes expected vs worked time for a calendar week
//
// The calculator is pure: it never touches storage or clocks, callers pass
// the worked-seconds map, the policy numbers, and the reference instant
package overtime

import (
	"time"

	"tally/internal/platform/calendar"
)

// Policy carries the owner's overtime policy numbers
type Policy struct {
	// RegularHoursPerWeek is the weekly target, e.g. 40
	RegularHoursPerWeek float64
	// WorkingDaysPerWeek caps how many days of the week carry expected time
	WorkingDaysPerWeek int
	// ConfigStart, when set, exempts days strictly before it
	ConfigStart *time.Time
}

// Day is one evaluated calendar day of the week
type Day struct {
	Key               string `json:"day"`
	WorkedSeconds     int64  `json:"worked_seconds"`
	ExpectedSeconds   int64  `json:"expected_seconds"`
	OvertimeSeconds   int64  `json:"overtime_seconds"`
	Weekend           bool   `json:"weekend"`
	BeforeConfigStart bool   `json:"before_config_start"`
}

// Result is the weekly outcome
type Result struct {
	Days                      []Day `json:"days"`
	TotalWorkedSeconds        int64 `json:"total_worked_seconds"`
	TotalExpectedSeconds      int64 `json:"total_expected_seconds"`
	TotalOvertimeSeconds      int64 `json:"total_overtime_seconds"`
	ExpectedSecondsPerWorkday int64 `json:"expected_seconds_per_workday"`
}

// CalculateWeek evaluates the week starting at weekStart against worked,
// a map keyed by canonical day strings. Days missing from worked count as
// zero. ref is "now": days strictly after it are exempt (not yet occurred).
//
// A day is exempt (expected 0, all worked time is overtime) when it is a
// weekend day, precedes ConfigStart, follows ref, or lands beyond the
// WorkingDaysPerWeek cap of eligible days. The single exemption rule lets a
// partially elapsed current week, a mid-week config start, and weekend
// overrun compose without special cases
func CalculateWeek(worked map[string]int64, p Policy, weekStart, ref time.Time) Result {
	var perDay int64
	if p.WorkingDaysPerWeek > 0 {
		perDay = int64(p.RegularHoursPerWeek * 3600 / float64(p.WorkingDaysPerWeek))
	}

	refKey := calendar.DayKey(ref)
	startKey := ""
	if p.ConfigStart != nil {
		startKey = calendar.DayKey(*p.ConfigStart)
	}

	res := Result{ExpectedSecondsPerWorkday: perDay}
	eligible := 0
	for _, d := range calendar.DaysOfWeek(weekStart) {
		key := calendar.DayKey(d)
		w := worked[key]

		weekend := calendar.IsWeekend(d)
		beforeStart := startKey != "" && key < startKey
		future := key > refKey

		exempt := weekend || beforeStart || future
		var expected int64
		if !exempt {
			eligible++
			if eligible <= p.WorkingDaysPerWeek {
				expected = perDay
			}
		}

		res.Days = append(res.Days, Day{
			Key:               key,
			WorkedSeconds:     w,
			ExpectedSeconds:   expected,
			OvertimeSeconds:   w - expected,
			Weekend:           weekend,
			BeforeConfigStart: beforeStart,
		})
		res.TotalWorkedSeconds += w
	}

	capped := eligible
	if capped > p.WorkingDaysPerWeek {
		capped = p.WorkingDaysPerWeek
	}
	res.TotalExpectedSeconds = int64(capped) * perDay
	res.TotalOvertimeSeconds = res.TotalWorkedSeconds - res.TotalExpectedSeconds
	return res
}

package overtime

import (
	"testing"
	"time"

	"tally/internal/platform/calendar"
)

// week of Monday 2024-03-11 .. Sunday 2024-03-17
var (
	monday = time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	sunday = time.Date(2024, 3, 17, 23, 0, 0, 0, time.UTC)
)

func hours(h int64) int64 { return h * 3600 }

func weekdays(perDay int64) map[string]int64 {
	out := map[string]int64{}
	for i := 0; i < 5; i++ {
		out[calendar.DayKey(monday.AddDate(0, 0, i))] = perDay
	}
	return out
}

func policy() Policy {
	return Policy{RegularHoursPerWeek: 40, WorkingDaysPerWeek: 5}
}

func TestExactWeekNoOvertime(t *testing.T) {
	res := CalculateWeek(weekdays(hours(8)), policy(), monday, sunday)
	if res.TotalOvertimeSeconds != 0 {
		t.Fatalf("overtime = %d, want 0", res.TotalOvertimeSeconds)
	}
	if res.TotalExpectedSeconds != hours(40) {
		t.Fatalf("expected = %d, want %d", res.TotalExpectedSeconds, hours(40))
	}
	if res.ExpectedSecondsPerWorkday != hours(8) {
		t.Fatalf("per-workday = %d, want %d", res.ExpectedSecondsPerWorkday, hours(8))
	}
}

func TestLongTuesday(t *testing.T) {
	worked := weekdays(hours(8))
	worked["2024-03-12"] = hours(10)
	res := CalculateWeek(worked, policy(), monday, sunday)
	if res.TotalOvertimeSeconds != 7200 {
		t.Fatalf("overtime = %d, want 7200", res.TotalOvertimeSeconds)
	}
}

func TestSaturdayCountsFullyAsOvertime(t *testing.T) {
	worked := weekdays(hours(8))
	worked["2024-03-16"] = hours(3) // saturday
	res := CalculateWeek(worked, policy(), monday, sunday)
	if res.TotalOvertimeSeconds != hours(3) {
		t.Fatalf("overtime = %d, want %d", res.TotalOvertimeSeconds, hours(3))
	}
	sat := res.Days[5]
	if !sat.Weekend || sat.ExpectedSeconds != 0 || sat.OvertimeSeconds != hours(3) {
		t.Fatalf("saturday day = %+v", sat)
	}
}

func TestMidWeekConfigStart(t *testing.T) {
	start := monday.AddDate(0, 0, 2) // wednesday
	p := policy()
	p.ConfigStart = &start
	res := CalculateWeek(weekdays(hours(8)), p, monday, sunday)

	if res.TotalExpectedSeconds != 3*res.ExpectedSecondsPerWorkday {
		t.Fatalf("expected = %d, want %d", res.TotalExpectedSeconds, 3*res.ExpectedSecondsPerWorkday)
	}
	for i := 0; i < 2; i++ {
		d := res.Days[i]
		if !d.BeforeConfigStart || d.ExpectedSeconds != 0 {
			t.Fatalf("day %d should be exempt before config start: %+v", i, d)
		}
	}
}

func TestFutureDaysAreExempt(t *testing.T) {
	// reference instant is wednesday: thu and fri have not occurred
	ref := monday.AddDate(0, 0, 2)
	worked := map[string]int64{
		"2024-03-11": hours(8),
		"2024-03-12": hours(8),
		"2024-03-13": hours(8),
	}
	res := CalculateWeek(worked, policy(), monday, ref)
	if res.TotalExpectedSeconds != 3*hours(8) {
		t.Fatalf("expected = %d, want %d", res.TotalExpectedSeconds, 3*hours(8))
	}
	if res.TotalOvertimeSeconds != 0 {
		t.Fatalf("overtime = %d, want 0", res.TotalOvertimeSeconds)
	}
}

func TestEligibleDayCap(t *testing.T) {
	// 3 working days per week: thu and fri are beyond the cap and exempt
	p := Policy{RegularHoursPerWeek: 24, WorkingDaysPerWeek: 3}
	res := CalculateWeek(weekdays(hours(8)), p, monday, sunday)
	if res.TotalExpectedSeconds != 3*hours(8) {
		t.Fatalf("expected = %d, want %d", res.TotalExpectedSeconds, 3*hours(8))
	}
	// 5 worked days at 8h against a 24h target
	if res.TotalOvertimeSeconds != 2*hours(8) {
		t.Fatalf("overtime = %d, want %d", res.TotalOvertimeSeconds, 2*hours(8))
	}
	if d := res.Days[3]; d.ExpectedSeconds != 0 {
		t.Fatalf("thursday beyond cap should carry no expected time: %+v", d)
	}
}

func TestMissingDaysAreZeroWorked(t *testing.T) {
	res := CalculateWeek(nil, policy(), monday, sunday)
	if res.TotalWorkedSeconds != 0 {
		t.Fatalf("worked = %d, want 0", res.TotalWorkedSeconds)
	}
	if res.TotalOvertimeSeconds != -hours(40) {
		t.Fatalf("overtime = %d, want %d", res.TotalOvertimeSeconds, -hours(40))
	}
	if len(res.Days) != 7 {
		t.Fatalf("days = %d, want 7", len(res.Days))
	}
}

func TestZeroWorkingDays(t *testing.T) {
	p := Policy{RegularHoursPerWeek: 40, WorkingDaysPerWeek: 0}
	res := CalculateWeek(weekdays(hours(8)), p, monday, sunday)
	if res.TotalExpectedSeconds != 0 {
		t.Fatalf("expected = %d, want 0", res.TotalExpectedSeconds)
	}
	if res.TotalOvertimeSeconds != res.TotalWorkedSeconds {
		t.Fatalf("all worked time should be overtime")
	}
}

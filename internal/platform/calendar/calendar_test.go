package calendar

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse(DayFormat, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestStartOfWeek(t *testing.T) {
	cases := []struct {
		name string
		in   string
		ws   WeekStart
		want string
	}{
		{"wednesday monday-start", "2024-03-13", Monday, "2024-03-11"},
		{"monday monday-start", "2024-03-11", Monday, "2024-03-11"},
		{"sunday monday-start", "2024-03-17", Monday, "2024-03-11"},
		{"wednesday sunday-start", "2024-03-13", Sunday, "2024-03-10"},
		{"sunday sunday-start", "2024-03-10", Sunday, "2024-03-10"},
		{"saturday sunday-start", "2024-03-16", Sunday, "2024-03-10"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := StartOfWeek(day(tc.in), tc.ws)
			if DayKey(got) != tc.want {
				t.Fatalf("StartOfWeek(%s, %s) = %s, want %s", tc.in, tc.ws, DayKey(got), tc.want)
			}
		})
	}
}

func TestWeekSpan(t *testing.T) {
	ws := day("2024-03-11")
	if got := DayKey(WeekEnd(ws)); got != "2024-03-17" {
		t.Fatalf("WeekEnd = %s, want 2024-03-17", got)
	}
	if got := DayKey(WeekEndInstant(ws)); got != "2024-03-18" {
		t.Fatalf("WeekEndInstant = %s, want 2024-03-18", got)
	}
	days := DaysOfWeek(ws)
	if len(days) != 7 {
		t.Fatalf("DaysOfWeek returned %d days", len(days))
	}
	if DayKey(days[0]) != "2024-03-11" || DayKey(days[6]) != "2024-03-17" {
		t.Fatalf("DaysOfWeek span %s..%s", DayKey(days[0]), DayKey(days[6]))
	}
}

func TestWeeksOverlapping(t *testing.T) {
	got := WeeksOverlapping(day("2024-03-05"), day("2024-03-20"), Monday)
	want := []string{"2024-03-04", "2024-03-11", "2024-03-18"}
	if len(got) != len(want) {
		t.Fatalf("got %d weeks, want %d", len(got), len(want))
	}
	for i := range want {
		if DayKey(got[i]) != want[i] {
			t.Fatalf("week %d = %s, want %s", i, DayKey(got[i]), want[i])
		}
	}
	if ws := WeeksOverlapping(day("2024-03-20"), day("2024-03-05"), Monday); ws != nil {
		t.Fatalf("inverted range should yield no weeks, got %d", len(ws))
	}
	// single day range stays a single week
	one := WeeksOverlapping(day("2024-03-13"), day("2024-03-13"), Monday)
	if len(one) != 1 || DayKey(one[0]) != "2024-03-11" {
		t.Fatalf("single day range: %v", one)
	}
}

func TestIsWeekend(t *testing.T) {
	if IsWeekend(day("2024-03-13")) {
		t.Fatalf("wednesday is not a weekend")
	}
	if !IsWeekend(day("2024-03-16")) || !IsWeekend(day("2024-03-17")) {
		t.Fatalf("saturday and sunday are weekends")
	}
}

func TestParseWeekStart(t *testing.T) {
	if ws, err := ParseWeekStart(""); err != nil || ws != Monday {
		t.Fatalf("empty convention should default to monday, got %v %v", ws, err)
	}
	if _, err := ParseWeekStart("TUESDAY"); err == nil {
		t.Fatalf("expected error for unknown convention")
	}
}

func TestParseDay(t *testing.T) {
	got, err := ParseDay("2024-03-13", nil)
	if err != nil {
		t.Fatalf("ParseDay: %v", err)
	}
	if !got.Equal(day("2024-03-13")) {
		t.Fatalf("ParseDay = %v", got)
	}
	if _, err := ParseDay("13/03/2024", nil); err == nil {
		t.Fatalf("expected error for bad layout")
	}
}

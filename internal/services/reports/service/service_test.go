package service

import (
	"context"
	"testing"

	"tally/internal/adapters/tracker"
	perr "tally/internal/platform/errors"
	"tally/internal/services/reports/domain"
)

// fakeSource serves canned rows; a non-nil projects filter narrows the
// grouped rows the way the real endpoint would
type fakeSource struct {
	totals  []tracker.DayTotal
	grouped []tracker.ProjectTotal

	dailyErr   error
	groupedErr error
}

func (f *fakeSource) DailyTotals(
	_ context.Context, _ tracker.Auth, _, _, _ string,
) ([]tracker.DayTotal, error) {
	if f.dailyErr != nil {
		return nil, f.dailyErr
	}
	return f.totals, nil
}

func (f *fakeSource) ProjectTotals(
	_ context.Context, _ tracker.Auth, _, _, _ string, projects []string,
) ([]tracker.ProjectTotal, error) {
	if f.groupedErr != nil {
		return nil, f.groupedErr
	}
	if projects == nil {
		return f.grouped, nil
	}
	tracked := make(map[string]struct{}, len(projects))
	for _, p := range projects {
		tracked[p] = struct{}{}
	}
	var out []tracker.ProjectTotal
	for _, row := range f.grouped {
		if _, ok := tracked[row.ProjectID]; ok {
			out = append(out, row)
		}
	}
	return out, nil
}

func reconcileInput() domain.Input {
	return domain.Input{
		ClientID:          "c1",
		TrackedProjectIDs: []string{"p1", "p2"},
		Since:             "2024-03-11",
		Until:             "2024-03-12",
	}
}

func TestReconcileSplitsTrackedAndExtraWork(t *testing.T) {
	src := &fakeSource{
		totals: []tracker.DayTotal{
			{Date: "2024-03-11", Seconds: 30000},
		},
		grouped: []tracker.ProjectTotal{
			{Date: "2024-03-11", ProjectID: "p1", ProjectName: "One", Seconds: 20000},
			{Date: "2024-03-11", ProjectID: "p9", ProjectName: "Side", Seconds: 10000},
		},
	}

	days, err := New(src).Reconcile(context.Background(), reconcileInput())
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(days) != 1 {
		t.Fatalf("days = %+v", days)
	}
	d := days[0]
	if d.TotalSeconds != 30000 || d.TrackedSeconds != 20000 || d.ExtraWorkSeconds != 10000 {
		t.Fatalf("split = total %d tracked %d extra %d", d.TotalSeconds, d.TrackedSeconds, d.ExtraWorkSeconds)
	}
	if pt := d.TrackedProjects["p1"]; pt.Name != "One" || pt.Seconds != 20000 {
		t.Fatalf("tracked p1 = %+v", pt)
	}
	if pt := d.ExtraWorkProjects["p9"]; pt.Name != "Side" || pt.Seconds != 10000 {
		t.Fatalf("extra p9 = %+v", pt)
	}
}

func TestReconcileDayWithOnlyUntrackedWork(t *testing.T) {
	src := &fakeSource{
		totals: []tracker.DayTotal{
			{Date: "2024-03-11", Seconds: 7200},
		},
		grouped: []tracker.ProjectTotal{
			{Date: "2024-03-11", ProjectID: "p9", ProjectName: "Side", Seconds: 7200},
		},
	}

	days, err := New(src).Reconcile(context.Background(), reconcileInput())
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	d := days[0]
	if len(d.TrackedProjects) != 0 {
		t.Fatalf("tracked = %+v, want empty", d.TrackedProjects)
	}
	if d.ExtraWorkSeconds != d.TotalSeconds {
		t.Fatalf("extra = %d, want full total %d", d.ExtraWorkSeconds, d.TotalSeconds)
	}
}

func TestReconcileNormalizesTimestampedDates(t *testing.T) {
	src := &fakeSource{
		totals: []tracker.DayTotal{
			{Date: "2024-03-11T00:00:00Z", Seconds: 3600},
		},
		grouped: []tracker.ProjectTotal{
			{Date: "2024-03-11T00:00:00+00:00", ProjectID: "p1", ProjectName: "One", Seconds: 3600},
		},
	}

	days, err := New(src).Reconcile(context.Background(), reconcileInput())
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if days[0].Date != "2024-03-11" {
		t.Fatalf("date = %q, want canonical day key", days[0].Date)
	}
	if days[0].TrackedSeconds != 3600 {
		t.Fatalf("grouped row did not land on the normalized day: %+v", days[0])
	}
}

func TestReconcileSortsDaysChronologically(t *testing.T) {
	src := &fakeSource{
		totals: []tracker.DayTotal{
			{Date: "2024-03-12", Seconds: 100},
			{Date: "2024-03-11", Seconds: 200},
		},
	}

	days, err := New(src).Reconcile(context.Background(), reconcileInput())
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if days[0].Date != "2024-03-11" || days[1].Date != "2024-03-12" {
		t.Fatalf("order = %+v", days)
	}
}

func TestReconcileAbortsOnAnyQueryFailure(t *testing.T) {
	src := &fakeSource{
		totals:     []tracker.DayTotal{{Date: "2024-03-11", Seconds: 100}},
		groupedErr: perr.ExternalSourcef("boom"),
	}

	_, err := New(src).Reconcile(context.Background(), reconcileInput())
	if !perr.IsCode(err, perr.ErrorCodeExternalSource) {
		t.Fatalf("err = %v, want external source", err)
	}
}

func TestReconcileClampsNegativeExtraWork(t *testing.T) {
	// eventually consistent source: grouped rows exceed the flat total
	src := &fakeSource{
		totals: []tracker.DayTotal{{Date: "2024-03-11", Seconds: 1000}},
		grouped: []tracker.ProjectTotal{
			{Date: "2024-03-11", ProjectID: "p1", ProjectName: "One", Seconds: 2000},
		},
	}

	days, err := New(src).Reconcile(context.Background(), reconcileInput())
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if days[0].ExtraWorkSeconds != 0 {
		t.Fatalf("extra = %d, want clamped to 0", days[0].ExtraWorkSeconds)
	}
}

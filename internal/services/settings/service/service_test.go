package service

import (
	"context"
	"testing"
	"time"

	"tally/internal/modkit/repokit"
	perr "tally/internal/platform/errors"
	"tally/internal/platform/store"
	"tally/internal/services/settings/domain"
	"tally/internal/services/settings/repo"
)

type fakeDB struct{ store.RowQuerier }

func (f *fakeDB) Tx(ctx context.Context, fn func(q store.RowQuerier) error) error { return fn(f) }

type memRepo struct{ rows map[string]domain.Settings }

func (m *memRepo) Get(_ context.Context, ownerID string) (domain.Settings, error) {
	s, ok := m.rows[ownerID]
	if !ok {
		return domain.Settings{}, perr.ErrNotFound
	}
	return s, nil
}

func (m *memRepo) Upsert(_ context.Context, s domain.Settings) error {
	m.rows[s.OwnerID] = s
	return nil
}

func newTestSvc() (*Svc, *memRepo) {
	mem := &memRepo{rows: map[string]domain.Settings{}}
	binder := repokit.BindFunc[repo.Repo](func(repokit.Queryer) repo.Repo { return mem })
	s := New(&fakeDB{}, binder)
	s.now = func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC) }
	return s, mem
}

const owner = "6ba7b810-9dad-11d1-80b4-00c04fd430c8"

func TestGetFallsBackToDefaults(t *testing.T) {
	s, _ := newTestSvc()

	got, err := s.Get(context.Background(), owner)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	want := domain.Defaults(owner)
	if got != want {
		t.Fatalf("Get = %+v, want defaults %+v", got, want)
	}
}

func TestPutFillsDefaultsAndPersists(t *testing.T) {
	s, mem := newTestSvc()
	ctx := context.Background()

	got, err := s.Put(ctx, owner, domain.PutInput{
		WorkspaceID:         "ws1",
		ClientID:            "c1",
		APIToken:            "tok",
		RegularHoursPerWeek: 37.5,
		WorkingDaysPerWeek:  5,
		CumulativeStart:     "2024-01-01",
	})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if got.Timezone != "UTC" || got.WeekStart != domain.WeekStartMonday {
		t.Fatalf("defaults not applied: tz=%q ws=%q", got.Timezone, got.WeekStart)
	}
	if got.CumulativeStart == nil || got.CumulativeStart.Format("2006-01-02") != "2024-01-01" {
		t.Fatalf("cumulative start not parsed: %v", got.CumulativeStart)
	}
	if _, ok := mem.rows[owner]; !ok {
		t.Fatalf("settings were not persisted")
	}

	back, err := s.Get(ctx, owner)
	if err != nil || back.RegularHoursPerWeek != 37.5 {
		t.Fatalf("Get after Put = %+v, %v", back, err)
	}
}

func TestPutRejectsBadInputs(t *testing.T) {
	s, _ := newTestSvc()
	ctx := context.Background()

	_, err := s.Put(ctx, owner, domain.PutInput{Timezone: "Mars/Olympus", RegularHoursPerWeek: 40, WorkingDaysPerWeek: 5})
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("bad timezone: err = %v", err)
	}

	_, err = s.Put(ctx, owner, domain.PutInput{CumulativeStart: "01/02/2024", RegularHoursPerWeek: 40, WorkingDaysPerWeek: 5})
	if err == nil {
		t.Fatalf("bad cumulative start accepted")
	}
}

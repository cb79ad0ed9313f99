package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"tally/internal/modkit/repokit"
	perr "tally/internal/platform/errors"
	"tally/internal/platform/store"
	"tally/internal/platform/testkit"
	"tally/internal/services/chronicle/domain"
	"tally/internal/services/chronicle/repo"
)

// fakeDB satisfies TxRunner without a database; Tx just runs fn
type fakeDB struct{ store.RowQuerier }

func (f *fakeDB) Tx(ctx context.Context, fn func(q store.RowQuerier) error) error { return fn(f) }

// memRepo keeps entries in a map and mimics the Postgres contract
type memRepo struct{ entries map[string]domain.ConfigEntry }

func newMemRepo() *memRepo { return &memRepo{entries: map[string]domain.ConfigEntry{}} }

func (m *memRepo) Insert(_ context.Context, e domain.ConfigEntry) error {
	m.entries[e.ID] = e
	return nil
}

func (m *memRepo) Update(_ context.Context, e domain.ConfigEntry) error {
	if _, ok := m.entries[e.ID]; !ok {
		return perr.ErrNotFound
	}
	m.entries[e.ID] = e
	return nil
}

func (m *memRepo) Get(_ context.Context, ownerID, entryID string) (domain.ConfigEntry, error) {
	e, ok := m.entries[entryID]
	if !ok || e.OwnerID != ownerID {
		return domain.ConfigEntry{}, perr.ErrNotFound
	}
	return e, nil
}

func (m *memRepo) Open(_ context.Context, ownerID, configType string) (domain.ConfigEntry, error) {
	for _, e := range m.entries {
		if e.OwnerID == ownerID && e.ConfigType == configType && e.Validity.IsOpen() {
			return e, nil
		}
	}
	return domain.ConfigEntry{}, perr.ErrNotFound
}

func (m *memRepo) At(
	_ context.Context,
	ownerID, configType string,
	instant time.Time,
) (domain.ConfigEntry, error) {
	var best domain.ConfigEntry
	found := false
	for _, e := range m.entries {
		if e.OwnerID != ownerID || e.ConfigType != configType || !e.ActiveAt(instant) {
			continue
		}
		if !found || e.ValidFrom.After(best.ValidFrom) {
			best, found = e, true
		}
	}
	if !found {
		return domain.ConfigEntry{}, perr.ErrNotFound
	}
	return best, nil
}

func (m *memRepo) History(_ context.Context, ownerID, configType string) ([]domain.ConfigEntry, error) {
	var out []domain.ConfigEntry
	for _, e := range m.entries {
		if e.OwnerID == ownerID && e.ConfigType == configType {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ValidFrom.After(out[j].ValidFrom) })
	return out, nil
}

func (m *memRepo) Count(_ context.Context, ownerID, configType string) (int64, error) {
	var n int64
	for _, e := range m.entries {
		if e.OwnerID == ownerID && e.ConfigType == configType {
			n++
		}
	}
	return n, nil
}

func (m *memRepo) CloseOpen(_ context.Context, ownerID, configType string, until time.Time) error {
	for id, e := range m.entries {
		if e.OwnerID == ownerID && e.ConfigType == configType && e.Validity.IsOpen() {
			m.entries[id] = e.WithValidity(domain.ClosedAt(until))
		}
	}
	return nil
}

func (m *memRepo) Delete(_ context.Context, ownerID, entryID string) error {
	e, ok := m.entries[entryID]
	if !ok || e.OwnerID != ownerID {
		return perr.NotFoundf("config entry %s not found", entryID)
	}
	delete(m.entries, entryID)
	return nil
}

func newTestSvc() (*Svc, *memRepo) {
	mem := newMemRepo()
	binder := repokit.BindFunc[repo.Repo](func(repokit.Queryer) repo.Repo { return mem })
	s := New(&fakeDB{}, binder)
	s.now = func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC) }
	return s, mem
}

const owner = "6ba7b810-9dad-11d1-80b4-00c04fd430c8"

var (
	t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	t2 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
)

func TestNewRequiresDeps(t *testing.T) {
	binder := repokit.BindFunc[repo.Repo](func(repokit.Queryer) repo.Repo { return newMemRepo() })
	testkit.MustPanic(t, func() { New(nil, binder) })
	testkit.MustPanic(t, func() { New(&fakeDB{}, nil) })
}

func TestAppendFirstEntryOpensChronicle(t *testing.T) {
	s, _ := newTestSvc()
	ctx := context.Background()

	e, err := s.Append(ctx, owner, domain.AppendInput{ProjectIDs: []string{"p1"}, ValidFrom: t0})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if !e.Validity.IsOpen() {
		t.Fatalf("first entry should be open")
	}
	cur, err := s.Current(ctx, owner)
	if err != nil || cur.ID != e.ID {
		t.Fatalf("Current = %+v, %v", cur, err)
	}
}

func TestAppendClosesPredecessorAtNewBoundary(t *testing.T) {
	s, _ := newTestSvc()
	ctx := context.Background()

	first, err := s.Append(ctx, owner, domain.AppendInput{ProjectIDs: []string{"p1"}, ValidFrom: t0})
	if err != nil {
		t.Fatalf("Append first: %v", err)
	}
	second, err := s.Append(ctx, owner, domain.AppendInput{ProjectIDs: []string{"p1", "p2"}, ValidFrom: t1})
	if err != nil {
		t.Fatalf("Append second: %v", err)
	}

	hist, err := s.History(ctx, owner)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != 2 {
		t.Fatalf("history size = %d, want 2", len(hist))
	}
	if hist[0].ID != second.ID {
		t.Fatalf("history not newest first: %+v", hist)
	}
	closed := hist[1]
	until, ok := closed.Validity.Until()
	if closed.ID != first.ID || !ok || !until.Equal(t1) {
		t.Fatalf("predecessor not closed at new boundary: %+v", closed)
	}

	// the day before the switch still resolves to the first version
	at, err := s.At(ctx, owner, t1.Add(-time.Hour))
	if err != nil || at.ID != first.ID {
		t.Fatalf("At before boundary = %+v, %v", at, err)
	}
	// the boundary instant itself belongs to the new version
	at, err = s.At(ctx, owner, t1)
	if err != nil || at.ID != second.ID {
		t.Fatalf("At boundary = %+v, %v", at, err)
	}
}

func TestAppendRejectsNonForwardBoundary(t *testing.T) {
	s, _ := newTestSvc()
	ctx := context.Background()

	if _, err := s.Append(ctx, owner, domain.AppendInput{ProjectIDs: []string{"p1"}, ValidFrom: t1}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	for _, from := range []time.Time{t1, t0} {
		_, err := s.Append(ctx, owner, domain.AppendInput{ProjectIDs: []string{"p2"}, ValidFrom: from})
		if !perr.IsCode(err, perr.ErrorCodeInvalidInterval) {
			t.Fatalf("Append at %v: err = %v, want invalid interval", from, err)
		}
	}
}

func TestRemoveProtectsOpenAndSoleEntries(t *testing.T) {
	s, _ := newTestSvc()
	ctx := context.Background()

	first, _ := s.Append(ctx, owner, domain.AppendInput{ProjectIDs: []string{"p1"}, ValidFrom: t0})

	// sole entry (and also open)
	if err := s.Remove(ctx, owner, first.ID); !perr.IsCode(err, perr.ErrorCodeConflict) {
		t.Fatalf("Remove sole: err = %v, want conflict", err)
	}

	second, _ := s.Append(ctx, owner, domain.AppendInput{ProjectIDs: []string{"p2"}, ValidFrom: t1})

	// open entry with history behind it
	if err := s.Remove(ctx, owner, second.ID); !perr.IsCode(err, perr.ErrorCodeConflict) {
		t.Fatalf("Remove open: err = %v, want conflict", err)
	}

	// the closed one can go
	if err := s.Remove(ctx, owner, first.ID); err != nil {
		t.Fatalf("Remove closed: %v", err)
	}
	if _, err := s.At(ctx, owner, t0); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("deleted interval still resolves: %v", err)
	}
}

func TestReviseRejectsOverlapAndInvertedInterval(t *testing.T) {
	s, _ := newTestSvc()
	ctx := context.Background()

	first, _ := s.Append(ctx, owner, domain.AppendInput{ProjectIDs: []string{"p1"}, ValidFrom: t0})
	_, _ = s.Append(ctx, owner, domain.AppendInput{ProjectIDs: []string{"p2"}, ValidFrom: t1})

	// stretching the closed entry into its successor must fail
	bad := t1.Add(24 * time.Hour)
	_, err := s.Revise(ctx, owner, domain.ReviseInput{EntryID: first.ID, ValidUntil: &bad})
	if !perr.IsCode(err, perr.ErrorCodeInvalidInterval) {
		t.Fatalf("overlap: err = %v, want invalid interval", err)
	}

	// valid_from at or past valid_until must fail
	inverted := t0.Add(-time.Hour)
	_, err = s.Revise(ctx, owner, domain.ReviseInput{EntryID: first.ID, ValidUntil: &inverted})
	if !perr.IsCode(err, perr.ErrorCodeInvalidInterval) {
		t.Fatalf("inverted: err = %v, want invalid interval", err)
	}
}

func TestReviseUpdatesProjectsInPlace(t *testing.T) {
	s, mem := newTestSvc()
	ctx := context.Background()

	e, _ := s.Append(ctx, owner, domain.AppendInput{ProjectIDs: []string{"p1"}, ValidFrom: t0})

	ids := []string{"p1", "p3"}
	names := []string{"One", "Three"}
	got, err := s.Revise(ctx, owner, domain.ReviseInput{EntryID: e.ID, ProjectIDs: &ids, ProjectNames: &names})
	if err != nil {
		t.Fatalf("Revise: %v", err)
	}
	if len(got.ProjectIDs) != 2 || got.ProjectIDs[1] != "p3" {
		t.Fatalf("projects = %+v", got.ProjectIDs)
	}
	if !got.Validity.IsOpen() {
		t.Fatalf("revise must not close the entry")
	}
	if stored := mem.entries[e.ID]; stored.ProjectNames[1] != "Three" {
		t.Fatalf("stored = %+v", stored)
	}

	// untouched boundary fields survive
	if !got.ValidFrom.Equal(t0) {
		t.Fatalf("valid_from changed: %v", got.ValidFrom)
	}
}

func TestReviseCanTightenClosedEntry(t *testing.T) {
	s, _ := newTestSvc()
	ctx := context.Background()

	first, _ := s.Append(ctx, owner, domain.AppendInput{ProjectIDs: []string{"p1"}, ValidFrom: t0})
	_, _ = s.Append(ctx, owner, domain.AppendInput{ProjectIDs: []string{"p2"}, ValidFrom: t2})

	// shrink the closed entry, leaving a deliberate gap before t2
	tighter := t1
	got, err := s.Revise(ctx, owner, domain.ReviseInput{EntryID: first.ID, ValidUntil: &tighter})
	if err != nil {
		t.Fatalf("Revise: %v", err)
	}
	until, ok := got.Validity.Until()
	if !ok || !until.Equal(t1) {
		t.Fatalf("until = %v %v", until, ok)
	}

	// the gap no longer resolves
	if _, err := s.At(ctx, owner, t1.Add(time.Hour)); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("gap resolved unexpectedly: %v", err)
	}
}

package sqlite

import (
	"context"
	"database/sql"
	"reflect"
	"testing"
	"time"

	"fluidnet/internal/domain"
)

// ============================================================================
// Test Helpers
// ============================================================================

// newTestRepo creates an in-memory SQLite repository for testing
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}
	t.Cleanup(func() {
		repo.Close()
	})
	return repo
}

// assertNoError fails the test if err is not nil
func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// assertEqual fails the test if expected != actual
func assertEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if !reflect.DeepEqual(expected, actual) {
		t.Fatalf("expected %v, got %v", expected, actual)
	}
}

func sampleRecord(id string, finished time.Time) *domain.SolveRecord {
	return &domain.SolveRecord{
		ID:            id,
		StartedAt:     finished.Add(-250 * time.Millisecond),
		FinishedAt:    finished,
		Status:        domain.StatusSuccess,
		Severity:      domain.SeveritySuccess,
		Message:       "Done!",
		Components:    2,
		Connections:   1,
		Overlays:      1,
		RequestDigest: "abc123",
		Result:        map[string]string{"Pump1.Outlet1": "Q=5.00, P=1.00"},
	}
}

// ============================================================================
// Helper Tests
// ============================================================================

func TestNullToString(t *testing.T) {
	assertEqual(t, "", nullToString(sql.NullString{}))
	assertEqual(t, "x", nullToString(sql.NullString{String: "x", Valid: true}))
}

func TestStringToNull(t *testing.T) {
	assertEqual(t, sql.NullString{}, stringToNull(""))
	assertEqual(t, sql.NullString{String: "x", Valid: true}, stringToNull("x"))
}

func TestMarshalResult(t *testing.T) {
	t.Run("empty map is stored as null", func(t *testing.T) {
		ns, err := marshalResult(map[string]string{})
		assertNoError(t, err)
		if ns.Valid {
			t.Error("expected NULL for empty result")
		}
	})

	t.Run("round trips through unmarshal", func(t *testing.T) {
		in := map[string]string{"A1.Outlet1": "1"}
		ns, err := marshalResult(in)
		assertNoError(t, err)
		out, err := unmarshalResult(ns)
		assertNoError(t, err)
		assertEqual(t, in, out)
	})
}

// ============================================================================
// Journal Tests
// ============================================================================

func TestRecordAndGetSolve(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	finished := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	rec := sampleRecord("run-1", finished)
	assertNoError(t, repo.RecordSolve(ctx, rec))

	got, err := repo.GetSolve(ctx, "run-1")
	assertNoError(t, err)
	if got == nil {
		t.Fatal("expected record")
	}
	if !got.FinishedAt.Equal(finished) || got.Duration() != 250*time.Millisecond {
		t.Errorf("unexpected timing %v..%v", got.StartedAt, got.FinishedAt)
	}
	got.StartedAt, got.FinishedAt = rec.StartedAt, rec.FinishedAt
	assertEqual(t, rec, got)
}

func TestGetSolveMissing(t *testing.T) {
	repo := newTestRepo(t)
	got, err := repo.GetSolve(context.Background(), "nope")
	assertNoError(t, err)
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestRecordSolveRequiresID(t *testing.T) {
	repo := newTestRepo(t)
	if err := repo.RecordSolve(context.Background(), &domain.SolveRecord{}); err == nil {
		t.Error("expected error for record without id")
	}
}

func TestListSolvesNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		assertNoError(t, repo.RecordSolve(ctx, sampleRecord(id, base.Add(time.Duration(i)*time.Second))))
	}

	all, err := repo.ListSolves(ctx, 0)
	assertNoError(t, err)
	ids := []string{}
	for _, r := range all {
		ids = append(ids, r.ID)
	}
	assertEqual(t, []string{"c", "b", "a"}, ids)

	limited, err := repo.ListSolves(ctx, 2)
	assertNoError(t, err)
	assertEqual(t, 2, len(limited))

	last, err := repo.LastSolve(ctx)
	assertNoError(t, err)
	assertEqual(t, "c", last.ID)
}

func TestLastSolveEmpty(t *testing.T) {
	repo := newTestRepo(t)
	last, err := repo.LastSolve(context.Background())
	assertNoError(t, err)
	if last != nil {
		t.Errorf("expected nil, got %+v", last)
	}
}

func TestUnreachableFlagPersists(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	rec := &domain.SolveRecord{
		ID:          "down",
		StartedAt:   time.Now(),
		FinishedAt:  time.Now(),
		Status:      domain.StatusError,
		Severity:    domain.SeverityError,
		Message:     "Solver is not responding.",
		Unreachable: true,
	}
	assertNoError(t, repo.RecordSolve(ctx, rec))

	got, err := repo.GetSolve(ctx, "down")
	assertNoError(t, err)
	if !got.Unreachable {
		t.Error("expected unreachable flag")
	}
	if got.Result != nil {
		t.Errorf("expected nil result, got %v", got.Result)
	}
}

package testkit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"fairlens/domain/core"
	"fairlens/domain/dataset"
	"fairlens/ports"
)

func storedRun(id string) ports.StoredRun {
	return ports.StoredRun{
		ID:           core.RunID(id),
		Fingerprint:  core.NewFingerprint([]byte(id)),
		Seed:         42,
		TestFraction: 0.2,
		Config:       json.RawMessage(`{}`),
		Reports:      json.RawMessage(`[]`),
		CreatedAt:    core.Now(),
	}
}

func TestInMemoryRepositoryRoundTrip(t *testing.T) {
	repo := NewInMemoryRunRepository()
	ctx := context.Background()

	want := storedRun("run-a")
	if err := repo.Save(ctx, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := repo.Get(ctx, want.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ID != want.ID || got.Fingerprint != want.Fingerprint {
		t.Errorf("got run %s/%s, want %s/%s", got.ID, got.Fingerprint, want.ID, want.Fingerprint)
	}
	if got.Seed != 42 || got.TestFraction != 0.2 {
		t.Errorf("parameters did not round-trip: seed=%d fraction=%g", got.Seed, got.TestFraction)
	}
}

func TestInMemoryRepositoryGetMissing(t *testing.T) {
	repo := NewInMemoryRunRepository()

	_, err := repo.Get(context.Background(), core.RunID("absent"))
	if err == nil {
		t.Fatal("expected an error for a missing run")
	}
	if !core.IsNotFoundError(err) {
		t.Errorf("expected a not-found error, got %v", err)
	}
}

func TestInMemoryRepositoryListRecentNewestFirst(t *testing.T) {
	repo := NewInMemoryRunRepository()
	ctx := context.Background()

	for _, id := range []string{"run-a", "run-b", "run-c"} {
		if err := repo.Save(ctx, storedRun(id)); err != nil {
			t.Fatalf("Save %s failed: %v", id, err)
		}
	}

	recent, err := repo.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(recent))
	}
	if recent[0].ID != "run-c" || recent[1].ID != "run-b" {
		t.Errorf("expected newest-first [run-c run-b], got [%s %s]", recent[0].ID, recent[1].ID)
	}

	all, err := repo.ListRecent(ctx, 0)
	if err != nil {
		t.Fatalf("ListRecent with default limit failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("default limit should return all 3 runs, got %d", len(all))
	}
}

func TestInMemoryRepositorySaveIsUpsert(t *testing.T) {
	repo := NewInMemoryRunRepository()
	ctx := context.Background()

	first := storedRun("run-a")
	if err := repo.Save(ctx, first); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}

	second := first
	second.Seed = 99
	if err := repo.Save(ctx, second); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	if repo.Count() != 1 {
		t.Errorf("upsert should not duplicate, have %d runs", repo.Count())
	}
	got, err := repo.Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Seed != 99 {
		t.Errorf("expected the second write to win, got seed %d", got.Seed)
	}
}

func TestFailingRepositoryReturnsErr(t *testing.T) {
	boom := errors.New("connection refused")
	repo := &FailingRunRepository{Err: boom}
	ctx := context.Background()

	if err := repo.Save(ctx, storedRun("run-a")); !errors.Is(err, boom) {
		t.Errorf("Save: expected %v, got %v", boom, err)
	}
	if _, err := repo.Get(ctx, core.RunID("run-a")); !errors.Is(err, boom) {
		t.Errorf("Get: expected %v, got %v", boom, err)
	}
	if _, err := repo.ListRecent(ctx, 5); !errors.Is(err, boom) {
		t.Errorf("ListRecent: expected %v, got %v", boom, err)
	}
}

func TestStaticSourceServesRows(t *testing.T) {
	rows := [][]string{{"a", "b"}, {"c", "d"}}
	src := NewStaticSource("synthetic://test", rows)

	got, origin, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if origin.Kind != dataset.OriginFallback {
		t.Errorf("expected fallback origin kind, got %s", origin.Kind)
	}
	if origin.Location != "synthetic://test" || src.Location() != "synthetic://test" {
		t.Errorf("location mismatch: origin=%s source=%s", origin.Location, src.Location())
	}
}

func TestStaticSourceFailure(t *testing.T) {
	boom := errors.New("no rows today")
	src := NewFailingSource("synthetic://broken", boom)

	_, _, err := src.Fetch(context.Background())
	if !errors.Is(err, boom) {
		t.Errorf("expected %v, got %v", boom, err)
	}
}

func TestStaticSourceHonorsCancel(t *testing.T) {
	src := NewStaticSource("synthetic://test", [][]string{{"a"}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := src.Fetch(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestKitSharesRepository(t *testing.T) {
	kit := NewKit()
	if kit.RunRepository() != kit.RunRepository() {
		t.Error("RunRepository should return the same instance")
	}

	rows, _, err := kit.TableSource(12).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(rows) != 12 {
		t.Errorf("expected 12 synthetic rows, got %d", len(rows))
	}
}

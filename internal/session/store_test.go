package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/specsmith/specsmith/internal/errors"
	"github.com/specsmith/specsmith/internal/orchestrator"
)

func testSnapshot(id string, ts time.Time) *orchestrator.Snapshot {
	return &orchestrator.Snapshot{
		GeneratedSpec: "# Spec",
		SessionState: orchestrator.SessionState{
			ID:            id,
			Input:         "an idea",
			GeneratedSpec: "# Spec",
			Rounds:        []orchestrator.Round{{RoundNumber: 1, Status: orchestrator.RoundComplete}},
		},
		Timestamp: ts,
	}
}

func TestStore_SaveAndLoad(t *testing.T) {
	now := time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)
	store, err := NewStore(t.TempDir(), WithStoreClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	snap := testSnapshot("abc", now)
	if err := store.Save(snap); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load("abc")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.SessionState.ID != "abc" || got.GeneratedSpec != "# Spec" {
		t.Errorf("loaded snapshot = %+v", got)
	}
	if len(got.SessionState.Rounds) != 1 {
		t.Errorf("rounds = %d, want 1", len(got.SessionState.Rounds))
	}
}

func TestStore_LoadMissing(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Load("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestStore_StaleSnapshot(t *testing.T) {
	now := time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)
	store, err := NewStore(t.TempDir(), WithStoreClock(func() time.Time { return now }))
	if err != nil {
		t.Fatal(err)
	}

	old := testSnapshot("old", now.Add(-25*time.Hour))
	if err := store.Save(old); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Load("old"); !errors.Is(err, ErrSnapshotStale) {
		t.Errorf("Load() error = %v, want ErrSnapshotStale", err)
	}

	// LoadAny ignores the cutoff.
	if _, err := store.LoadAny("old"); err != nil {
		t.Errorf("LoadAny() error = %v", err)
	}

	// A snapshot exactly at the boundary is not stale.
	edge := testSnapshot("edge", now.Add(-DefaultMaxAge))
	if err := store.Save(edge); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Load("edge"); err != nil {
		t.Errorf("Load() at boundary error = %v", err)
	}
}

func TestStore_MaxAgeDisabled(t *testing.T) {
	now := time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)
	store, err := NewStore(t.TempDir(),
		WithMaxAge(0),
		WithStoreClock(func() time.Time { return now }))
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Save(testSnapshot("ancient", now.Add(-1000*time.Hour))); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Load("ancient"); err != nil {
		t.Errorf("Load() error = %v, want nil with staleness disabled", err)
	}
}

func TestStore_Delete(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Save(testSnapshot("gone", time.Now())); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete("gone"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.LoadAny("gone"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadAny() after delete = %v, want ErrNotFound", err)
	}
	if err := store.Delete("gone"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() = %v, want ErrNotFound", err)
	}
}

func TestStore_ListNewestFirst(t *testing.T) {
	base := time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for i, id := range []string{"first", "second", "third"} {
		if err := store.Save(testSnapshot(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatal(err)
		}
	}

	infos, err := store.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(infos) != 3 {
		t.Fatalf("List() = %d entries, want 3", len(infos))
	}
	if infos[0].ID != "third" || infos[2].ID != "first" {
		t.Errorf("order = %s, %s, %s", infos[0].ID, infos[1].ID, infos[2].ID)
	}
	if !infos[0].HasSpec || infos[0].Rounds != 1 {
		t.Errorf("info = %+v", infos[0])
	}

	latest, err := store.Latest()
	if err != nil || latest != "third" {
		t.Errorf("Latest() = %q, %v", latest, err)
	}
}

func TestStore_LatestEmpty(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Latest(); !errors.Is(err, ErrNotFound) {
		t.Errorf("Latest() error = %v, want ErrNotFound", err)
	}
}

func TestStore_ListSkipsCorruptFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Save(testSnapshot("good", time.Now())); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	infos, err := store.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(infos) != 1 || infos[0].ID != "good" {
		t.Errorf("List() = %+v, want only the readable session", infos)
	}
}

func TestStore_AtomicWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Save(testSnapshot("clean", time.Now())); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}

func TestStore_SaveRejectsMissingID(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Save(&orchestrator.Snapshot{}); err == nil {
		t.Error("Save() with no session ID succeeded, want error")
	}
	if err := store.Save(nil); err == nil {
		t.Error("Save(nil) succeeded, want error")
	}
}

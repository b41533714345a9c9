package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), ".puppetmask", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndLatest(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	store.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	if _, ok, err := store.Latest(ctx, "fox"); err != nil || ok {
		t.Fatalf("empty store Latest ok=%v err=%v", ok, err)
	}

	first, err := store.Record(ctx, "fox", "fox/camera/mask.png", 120, "aa")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if _, err := uuid.Parse(first.ID); err != nil {
		t.Fatalf("id %q is not a uuid: %v", first.ID, err)
	}
	second, err := store.Record(ctx, "fox", "fox/camera/mask.png", 130, "bb")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if _, err := store.Record(ctx, "owl", "owl/camera/mask.png", 99, "cc"); err != nil {
		t.Fatalf("Record: %v", err)
	}

	latest, ok, err := store.Latest(ctx, "fox")
	if err != nil || !ok {
		t.Fatalf("Latest ok=%v err=%v", ok, err)
	}
	if latest.ID != second.ID || latest.SHA256 != "bb" || !latest.CreatedAt.Equal(second.CreatedAt) {
		t.Fatalf("latest = %+v, want %+v", latest, second)
	}

	all, err := store.List(ctx, "fox", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 || all[0].ID != second.ID || all[1].ID != first.ID {
		t.Fatalf("List order = %+v", all)
	}
}

func TestReopenKeepsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := store.Record(context.Background(), "fox", "fox/camera/mask.png", 1, "aa"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	_ = store.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if _, ok, err := reopened.Latest(context.Background(), "fox"); err != nil || !ok {
		t.Fatalf("record lost across reopen ok=%v err=%v", ok, err)
	}
}

func TestSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := store.db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = store.Close()

	if _, err := Open(path); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

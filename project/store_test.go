package project

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/lifelapse/lifelapse-core/db"
)

func setupTestStore(t *testing.T) (*db.DB, *SQLiteStore) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	database, err := db.New(dbPath, nil)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	return database, NewStore(database.Conn(), nil)
}

func TestStore_RoundTrip(t *testing.T) {
	_, store := setupTestStore(t)
	ctx := context.Background()

	p := New()
	p.Title = "Clay Dinosaur"
	p.FrameRefs = []string{"/frames/a.jpg", "/frames/b.jpg", "/frames/a.jpg"}
	p.Speed = 2.5

	before := time.Now().UnixMilli()
	if err := store.Save(ctx, p); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got == nil {
		t.Fatal("Get() returned nil for saved project")
	}

	if got.ID != p.ID {
		t.Errorf("ID = %s, want %s", got.ID, p.ID)
	}
	if got.Title != "Clay Dinosaur" {
		t.Errorf("Title = %s, want Clay Dinosaur", got.Title)
	}
	if len(got.FrameRefs) != 3 {
		t.Fatalf("len(FrameRefs) = %d, want 3", len(got.FrameRefs))
	}
	for i, ref := range p.FrameRefs {
		if got.FrameRefs[i] != ref {
			t.Errorf("FrameRefs[%d] = %s, want %s", i, got.FrameRefs[i], ref)
		}
	}
	if got.Speed != 2.5 {
		t.Errorf("Speed = %f, want 2.5", got.Speed)
	}
	if got.DateModified < before {
		t.Errorf("DateModified = %d, want >= %d", got.DateModified, before)
	}
}

func TestStore_SaveOverwrites(t *testing.T) {
	_, store := setupTestStore(t)
	ctx := context.Background()

	p := New()
	p.FrameRefs = []string{"/frames/a.jpg"}
	if err := store.Save(ctx, p); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	p.Title = "Renamed"
	p.FrameRefs = []string{"/frames/b.jpg"}
	if err := store.Save(ctx, p); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	got, err := store.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Title != "Renamed" {
		t.Errorf("Title = %s, want Renamed", got.Title)
	}
	if len(got.FrameRefs) != 1 || got.FrameRefs[0] != "/frames/b.jpg" {
		t.Errorf("FrameRefs = %v, want [/frames/b.jpg]", got.FrameRefs)
	}
}

func TestStore_GetMissing(t *testing.T) {
	_, store := setupTestStore(t)

	got, err := store.Get(context.Background(), "no-such-id")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != nil {
		t.Errorf("Get() = %+v, want nil for missing project", got)
	}
}

func TestStore_ListNewestFirst(t *testing.T) {
	database, store := setupTestStore(t)
	ctx := context.Background()

	older := New()
	newer := New()
	if err := store.Save(ctx, older); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Save(ctx, newer); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// Force distinct timestamps without sleeping.
	if _, err := database.Conn().Exec(
		"UPDATE projects SET date_modified = date_modified - 1000 WHERE id = ?", older.ID,
	); err != nil {
		t.Fatalf("failed to backdate project: %v", err)
	}

	projects, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("len(projects) = %d, want 2", len(projects))
	}
	if projects[0].ID != newer.ID {
		t.Errorf("projects[0].ID = %s, want %s (newest first)", projects[0].ID, newer.ID)
	}
}

func TestStore_CorruptRecordSkipped(t *testing.T) {
	database, store := setupTestStore(t)
	ctx := context.Background()

	good := New()
	good.FrameRefs = []string{"/frames/a.jpg"}
	if err := store.Save(ctx, good); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if _, err := database.Conn().Exec(`
		INSERT INTO projects (id, title, frame_refs, date_modified, speed)
		VALUES ('bad', 'Broken', 'not valid json', 0, 1.0)
	`); err != nil {
		t.Fatalf("failed to insert corrupt record: %v", err)
	}

	projects, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("len(projects) = %d, want 1 (corrupt record skipped)", len(projects))
	}
	if projects[0].ID != good.ID {
		t.Errorf("projects[0].ID = %s, want %s", projects[0].ID, good.ID)
	}

	got, err := store.Get(ctx, "bad")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != nil {
		t.Errorf("Get(corrupt) = %+v, want nil", got)
	}
}

func TestStore_DeleteAbsentIsNoop(t *testing.T) {
	_, store := setupTestStore(t)

	if err := store.Delete(context.Background(), "no-such-id"); err != nil {
		t.Errorf("Delete() error = %v, want nil for absent project", err)
	}
}

func TestStore_Delete(t *testing.T) {
	_, store := setupTestStore(t)
	ctx := context.Background()

	p := New()
	if err := store.Save(ctx, p); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	got, err := store.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != nil {
		t.Errorf("Get() after delete = %+v, want nil", got)
	}
}

package store

import (
	"testing"

	"github.com/jwhitfield/atelier/internal/database"
	"github.com/jwhitfield/atelier/internal/model"
)

func setupMediaTestDB(t *testing.T) (*MediaItemStore, *AlbumStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewMediaItemStore(db), NewAlbumStore(db)
}

func TestMediaItemCreateAndGet(t *testing.T) {
	ms, as := setupMediaTestDB(t)

	album, err := as.Create("Summer", "summer", "")
	if err != nil {
		t.Fatalf("create album: %v", err)
	}

	item, err := ms.Create(model.KindAlbum, album.ID, "https://cdn.example.com/a.jpg", "beach", 0)
	if err != nil {
		t.Fatalf("create media item: %v", err)
	}
	if item.ID == 0 {
		t.Error("expected non-zero ID")
	}
	if item.Position != 0 {
		t.Errorf("position = %d, want 0", item.Position)
	}
	if item.ParentKind != model.KindAlbum {
		t.Errorf("parent_kind = %q, want %q", item.ParentKind, model.KindAlbum)
	}

	got, err := ms.GetByID(item.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got == nil {
		t.Fatal("expected item, got nil")
	}
	if got.Caption != "beach" {
		t.Errorf("caption = %q, want %q", got.Caption, "beach")
	}
}

func TestMediaItemGetByIDNotFound(t *testing.T) {
	ms, _ := setupMediaTestDB(t)

	got, err := ms.GetByID(9999)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got != nil {
		t.Error("expected nil for nonexistent item")
	}
}

func TestMediaItemMaxPosition(t *testing.T) {
	ms, as := setupMediaTestDB(t)
	album, _ := as.Create("Summer", "summer", "")

	max, err := ms.MaxPosition(model.KindAlbum, album.ID)
	if err != nil {
		t.Fatalf("max position: %v", err)
	}
	if max != -1 {
		t.Errorf("empty max = %d, want -1", max)
	}

	ms.Create(model.KindAlbum, album.ID, "https://cdn.example.com/a.jpg", "", 0)
	ms.Create(model.KindAlbum, album.ID, "https://cdn.example.com/b.jpg", "", 1)

	max, err = ms.MaxPosition(model.KindAlbum, album.ID)
	if err != nil {
		t.Fatalf("max position: %v", err)
	}
	if max != 1 {
		t.Errorf("max = %d, want 1", max)
	}
}

func TestMediaItemListByParentOrder(t *testing.T) {
	ms, as := setupMediaTestDB(t)
	album, _ := as.Create("Summer", "summer", "")

	// Insert out of order; list must come back sorted by position.
	ms.Create(model.KindAlbum, album.ID, "https://cdn.example.com/c.jpg", "", 2)
	ms.Create(model.KindAlbum, album.ID, "https://cdn.example.com/a.jpg", "", 0)
	ms.Create(model.KindAlbum, album.ID, "https://cdn.example.com/b.jpg", "", 1)

	items, err := ms.ListByParent(model.KindAlbum, album.ID)
	if err != nil {
		t.Fatalf("list by parent: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("len = %d, want 3", len(items))
	}
	for i, it := range items {
		if it.Position != i {
			t.Errorf("items[%d].Position = %d, want %d", i, it.Position, i)
		}
	}
	if items[0].URL != "https://cdn.example.com/a.jpg" {
		t.Errorf("first url = %q, want a.jpg", items[0].URL)
	}
}

func TestMediaItemParentIsolation(t *testing.T) {
	ms, as := setupMediaTestDB(t)
	a1, _ := as.Create("One", "one", "")
	a2, _ := as.Create("Two", "two", "")

	ms.Create(model.KindAlbum, a1.ID, "https://cdn.example.com/a.jpg", "", 0)
	ms.Create(model.KindAlbum, a2.ID, "https://cdn.example.com/b.jpg", "", 0)
	// Same numeric parent id under a different kind must not collide.
	ms.Create(model.KindProject, a1.ID, "https://cdn.example.com/p.jpg", "", 0)

	items, err := ms.ListByParent(model.KindAlbum, a1.ID)
	if err != nil {
		t.Fatalf("list by parent: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("len = %d, want 1", len(items))
	}

	count, err := ms.CountByParent(model.KindProject, a1.ID)
	if err != nil {
		t.Fatalf("count by parent: %v", err)
	}
	if count != 1 {
		t.Errorf("project count = %d, want 1", count)
	}
}

func TestMediaItemUpdatePositions(t *testing.T) {
	ms, as := setupMediaTestDB(t)
	album, _ := as.Create("Summer", "summer", "")

	a, _ := ms.Create(model.KindAlbum, album.ID, "https://cdn.example.com/a.jpg", "", 0)
	b, _ := ms.Create(model.KindAlbum, album.ID, "https://cdn.example.com/b.jpg", "", 1)
	c, _ := ms.Create(model.KindAlbum, album.ID, "https://cdn.example.com/c.jpg", "", 2)

	if err := ms.UpdatePositions(model.KindAlbum, album.ID, []int64{c.ID, a.ID, b.ID}); err != nil {
		t.Fatalf("update positions: %v", err)
	}

	items, _ := ms.ListByParent(model.KindAlbum, album.ID)
	want := []int64{c.ID, a.ID, b.ID}
	for i, it := range items {
		if it.ID != want[i] {
			t.Errorf("items[%d].ID = %d, want %d", i, it.ID, want[i])
		}
		if it.Position != i {
			t.Errorf("items[%d].Position = %d, want %d", i, it.Position, i)
		}
	}
}

func TestMediaItemDelete(t *testing.T) {
	ms, as := setupMediaTestDB(t)
	album, _ := as.Create("Summer", "summer", "")

	item, _ := ms.Create(model.KindAlbum, album.ID, "https://cdn.example.com/a.jpg", "", 0)
	if err := ms.Delete(item.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	got, err := ms.GetByID(item.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestMediaItemFirst(t *testing.T) {
	ms, as := setupMediaTestDB(t)
	album, _ := as.Create("Summer", "summer", "")

	first, err := ms.First(model.KindAlbum, album.ID)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	if first != nil {
		t.Error("expected nil for empty parent")
	}

	ms.Create(model.KindAlbum, album.ID, "https://cdn.example.com/b.jpg", "", 1)
	a, _ := ms.Create(model.KindAlbum, album.ID, "https://cdn.example.com/a.jpg", "", 0)

	first, err = ms.First(model.KindAlbum, album.ID)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	if first == nil || first.ID != a.ID {
		t.Errorf("first = %+v, want item %d", first, a.ID)
	}
}

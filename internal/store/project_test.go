package store

import (
	"testing"

	"github.com/jwhitfield/atelier/internal/database"
)

func setupProjectTestDB(t *testing.T) *ProjectStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewProjectStore(db)
}

func TestProjectCreateAndGet(t *testing.T) {
	ps := setupProjectTestDB(t)

	p, err := ps.Create("Robot Arm", "robot-arm", "A 3-axis arm", "Long write-up")
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	if p.Published {
		t.Error("new project should be a draft")
	}

	got, err := ps.GetBySlug("robot-arm")
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if got == nil || got.Summary != "A 3-axis arm" {
		t.Fatalf("got = %+v, want summary set", got)
	}
}

func TestProjectSetPublished(t *testing.T) {
	ps := setupProjectTestDB(t)
	p, _ := ps.Create("Robot Arm", "robot-arm", "", "")

	if err := ps.SetPublished(p.ID, true); err != nil {
		t.Fatalf("set published: %v", err)
	}

	published, err := ps.List(true)
	if err != nil {
		t.Fatalf("list published: %v", err)
	}
	if len(published) != 1 {
		t.Errorf("published = %d, want 1", len(published))
	}

	if err := ps.SetPublished(p.ID, false); err != nil {
		t.Fatalf("unpublish: %v", err)
	}
	published, _ = ps.List(true)
	if len(published) != 0 {
		t.Errorf("published = %d, want 0", len(published))
	}
}

func TestProjectUpdateAndDelete(t *testing.T) {
	ps := setupProjectTestDB(t)
	p, _ := ps.Create("Robot Arm", "robot-arm", "", "")

	updated, err := ps.Update(p.ID, "Robot Arm v2", "robot-arm-v2", "improved", "more text")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Robot Arm v2" {
		t.Errorf("title = %q, want Robot Arm v2", updated.Title)
	}

	if err := ps.Delete(p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, _ := ps.GetByID(p.ID)
	if got != nil {
		t.Error("expected nil after delete")
	}
}

package history

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/starford/notemover/internal/apperr"
	"github.com/starford/notemover/internal/mover"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "notemover-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM moves`).Scan(&count); err != nil {
		t.Fatalf("moves table missing: %v", err)
	}
}

func TestRecordMove(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	res := mover.Result{
		Outcome:          mover.Moved,
		From:             "Inbox/note.md",
		To:               "Projects/note.md",
		Destination:      "Projects",
		Companion:        mover.FailedFolderCollision,
		SubfolderCreated: true,
		Err:              fmt.Errorf("x: %w", apperr.ErrFolderCollision),
	}
	if err := db.RecordMove(ctx, mover.TriggerAutomatic, res); err != nil {
		t.Fatalf("RecordMove: %v", err)
	}

	recs, err := db.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("len = %d, want 1", len(recs))
	}
	r := recs[0]
	if r.ID == "" || r.Outcome != "moved" || r.Companion != "failed_folder_collision" {
		t.Errorf("record = %+v", r)
	}
	if !r.Subfolder || r.Trigger != "Automatic" || r.NewPath != "Projects/note.md" {
		t.Errorf("record = %+v", r)
	}
	if r.Message == "" {
		t.Error("expected error message to be stored")
	}
}

func TestRecentOrderAndLimit(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_ = db.Append(ctx, Record{
			Path:      fmt.Sprintf("n%d.md", i),
			Outcome:   "moved",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	recs, err := db.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("len = %d, want 3", len(recs))
	}
	if recs[0].Path != "n4.md" || recs[2].Path != "n2.md" {
		t.Errorf("order = %s, %s, %s", recs[0].Path, recs[1].Path, recs[2].Path)
	}
}

func TestForPath(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	_ = db.Append(ctx, Record{Path: "Inbox/a.md", NewPath: "Projects/a.md", Outcome: "moved"})
	_ = db.Append(ctx, Record{Path: "Inbox/b.md", Outcome: "failed_name_collision"})

	recs, err := db.ForPath(ctx, "Projects/a.md", 0)
	if err != nil {
		t.Fatalf("ForPath: %v", err)
	}
	if len(recs) != 1 || recs[0].Path != "Inbox/a.md" {
		t.Errorf("records = %+v", recs)
	}
	recs, _ = db.ForPath(ctx, "Inbox/b.md", 0)
	if len(recs) != 1 {
		t.Errorf("records = %+v", recs)
	}
}

func TestAppend_ClosedDB(t *testing.T) {
	db := testDB(t)
	db.Close()
	err := db.Append(context.Background(), Record{Path: "a.md", Outcome: "moved"})
	if err == nil {
		t.Errorf("expected insert error on closed db, got %v", err)
	}
}

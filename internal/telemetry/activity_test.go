package telemetry

import (
	"fmt"
	"testing"
	"time"

	"stride/internal/models"
)

func TestActivityLogNewestFirstAndCapped(t *testing.T) {
	a := NewActivityLog()

	for i := 0; i < 30; i++ {
		a.Add(models.ActivityRecord{
			Service: "API",
			Message: fmt.Sprintf("event %d", i),
			Type:    models.ActivityInfo,
		})
	}

	recent := a.Recent(0)
	if len(recent) != maxActivities {
		t.Fatalf("expected cap of %d entries, got %d", maxActivities, len(recent))
	}
	if recent[0].Message != "event 29" {
		t.Fatalf("expected newest entry first, got %q", recent[0].Message)
	}
	if recent[len(recent)-1].Message != "event 10" {
		t.Fatalf("expected oldest surviving entry to be event 10, got %q", recent[len(recent)-1].Message)
	}
}

func TestActivityLogDropsAgedEntriesOnRead(t *testing.T) {
	now := time.Now()
	a := NewActivityLog()
	a.now = func() time.Time { return now }

	a.Add(models.ActivityRecord{Service: "API", Message: "old", Type: models.ActivityInfo})

	// No inserts happen, but the window moves past the entry.
	now = now.Add(activityWindow + time.Second)

	if got := a.Recent(0); len(got) != 0 {
		t.Fatalf("expected stale entry filtered on read, got %d entries", len(got))
	}
	if a.Len() != 0 {
		t.Fatalf("Len reported stale entries: %d", a.Len())
	}
}

func TestActivityLogPrunesOnInsert(t *testing.T) {
	now := time.Now()
	a := NewActivityLog()
	a.now = func() time.Time { return now }

	a.Add(models.ActivityRecord{Service: "API", Message: "old", Type: models.ActivityInfo})
	now = now.Add(activityWindow + time.Second)
	a.Add(models.ActivityRecord{Service: "API", Message: "new", Type: models.ActivityInfo})

	recent := a.Recent(0)
	if len(recent) != 1 {
		t.Fatalf("expected insert to prune aged entries, got %d", len(recent))
	}
	if recent[0].Message != "new" {
		t.Fatalf("wrong survivor: %q", recent[0].Message)
	}
}

func TestActivityLogRecentLimit(t *testing.T) {
	a := NewActivityLog()
	for i := 0; i < 10; i++ {
		a.Add(models.ActivityRecord{Service: "API", Message: fmt.Sprintf("event %d", i), Type: models.ActivityInfo})
	}
	if got := a.Recent(3); len(got) != 3 {
		t.Fatalf("expected 3 entries with limit, got %d", len(got))
	}
}

func TestActivityLogClear(t *testing.T) {
	a := NewActivityLog()
	a.Add(models.ActivityRecord{Service: "API", Message: "event", Type: models.ActivityInfo})
	a.Clear()
	if a.Len() != 0 {
		t.Fatalf("expected empty log after Clear, got %d", a.Len())
	}
}

func TestActivityLogOnAddHook(t *testing.T) {
	a := NewActivityLog()
	var pushed []models.ActivityRecord
	a.OnAdd(func(rec models.ActivityRecord) { pushed = append(pushed, rec) })

	a.Add(models.ActivityRecord{Service: "API", Message: "event", Type: models.ActivityInfo})

	if len(pushed) != 1 {
		t.Fatalf("expected hook invoked once, got %d", len(pushed))
	}
	if pushed[0].Timestamp.IsZero() {
		t.Fatalf("hook received record without timestamp")
	}
}

package telemetry

import (
	"sync"
	"time"

	"stride/internal/models"
)

const (
	activityWindow = 5 * time.Minute
	maxActivities  = 20
)

// ActivityLog keeps a rolling, newest-first feed of dashboard events. Entries
// older than the trailing window are dropped on every insert and read, and the
// feed never exceeds maxActivities entries.
type ActivityLog struct {
	mu      sync.Mutex
	entries []models.ActivityRecord
	pushFn  func(models.ActivityRecord)

	now func() time.Time
}

// NewActivityLog returns an empty feed.
func NewActivityLog() *ActivityLog {
	return &ActivityLog{now: time.Now}
}

// OnAdd registers a hook invoked for every accepted record, used to push new
// activity to connected admin dashboards. The hook runs outside the log's
// lock and must not call back into the log.
func (a *ActivityLog) OnAdd(fn func(models.ActivityRecord)) {
	a.mu.Lock()
	a.pushFn = fn
	a.mu.Unlock()
}

// Add records an event, pruning aged-out entries and enforcing the size cap.
func (a *ActivityLog) Add(rec models.ActivityRecord) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = a.now()
	}

	a.mu.Lock()
	cutoff := a.now().Add(-activityWindow)
	kept := a.entries[:0]
	for _, e := range a.entries {
		if e.Timestamp.After(cutoff) {
			kept = append(kept, e)
		}
	}
	a.entries = append([]models.ActivityRecord{rec}, kept...)
	if len(a.entries) > maxActivities {
		a.entries = a.entries[:maxActivities]
	}
	push := a.pushFn
	a.mu.Unlock()

	if push != nil {
		push(rec)
	}
}

// Recent returns up to limit records still inside the trailing window,
// newest first. The filter runs lazily here rather than on a timer, so a
// feed nobody inserts into still reads correctly after going stale.
func (a *ActivityLog) Recent(limit int) []models.ActivityRecord {
	a.mu.Lock()
	defer a.mu.Unlock()

	cutoff := a.now().Add(-activityWindow)
	out := make([]models.ActivityRecord, 0, len(a.entries))
	for _, e := range a.entries {
		if !e.Timestamp.After(cutoff) {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// Len reports how many records are currently inside the window.
func (a *ActivityLog) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	cutoff := a.now().Add(-activityWindow)
	n := 0
	for _, e := range a.entries {
		if e.Timestamp.After(cutoff) {
			n++
		}
	}
	return n
}

// Clear removes every record. Used by the clear-logs admin command; records
// are gone, not hidden.
func (a *ActivityLog) Clear() {
	a.mu.Lock()
	a.entries = nil
	a.mu.Unlock()
}

package telemetry

import (
	"testing"
)

func TestResponseTimeBufferKeepsNewestHundred(t *testing.T) {
	m := NewMetrics(NewActivityLog())

	for i := 1; i <= 150; i++ {
		m.RecordRequestEnd("/api/meals", "GET", 200, int64(i))
	}

	times := m.ResponseTimes()
	if len(times) != maxResponseTimes {
		t.Fatalf("expected %d buffered durations, got %d", maxResponseTimes, len(times))
	}
	if times[0] != 51 {
		t.Fatalf("expected oldest surviving duration 51, got %d", times[0])
	}
	if times[len(times)-1] != 150 {
		t.Fatalf("expected newest duration 150, got %d", times[len(times)-1])
	}
}

func TestCountersTrackErrorsByStatus(t *testing.T) {
	m := NewMetrics(NewActivityLog())

	m.RecordRequestEnd("/api/meals", "GET", 200, 10)
	m.RecordRequestEnd("/api/meals", "GET", 404, 10)
	m.RecordRequestEnd("/api/meals", "POST", 500, 10)
	m.RecordRequestEnd("/api/meals", "GET", 301, 10)

	requests, errors := m.Counts()
	if requests != 4 {
		t.Fatalf("expected 4 requests, got %d", requests)
	}
	if errors != 2 {
		t.Fatalf("expected 2 errors (status >= 400), got %d", errors)
	}
}

func TestCountsAreReadOnly(t *testing.T) {
	m := NewMetrics(NewActivityLog())
	m.RecordRequestEnd("/api/meals", "GET", 200, 10)

	for i := 0; i < 5; i++ {
		m.Counts()
		m.AvgResponseTime()
		m.ResponseTimes()
	}

	requests, errors := m.Counts()
	if requests != 1 || errors != 0 {
		t.Fatalf("reads mutated counters: requests=%d errors=%d", requests, errors)
	}
}

func TestAvgResponseTime(t *testing.T) {
	m := NewMetrics(NewActivityLog())
	if avg := m.AvgResponseTime(); avg != 0 {
		t.Fatalf("expected 0 average on empty buffer, got %d", avg)
	}

	m.RecordRequestEnd("/api/meals", "GET", 200, 10)
	m.RecordRequestEnd("/api/meals", "GET", 200, 30)
	if avg := m.AvgResponseTime(); avg != 20 {
		t.Fatalf("expected average 20, got %d", avg)
	}
}

func TestServiceFromPath(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"/api/auth/login", "AUTH"},
		{"/api/admin/users", "ADMIN_API"},
		{"/api/user-meals/today", "USER_MEALS_API"},
		{"/api/user-workouts", "USER_API"},
		{"/api/meals", "MEALS_API"},
		{"/api/targets", "TARGETS_API"},
		{"/api/progress", "API"},
	}
	for _, tc := range cases {
		if got := serviceFromPath(tc.path); got != tc.want {
			t.Fatalf("serviceFromPath(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestTelemetrySurfaceIsNotTracked(t *testing.T) {
	activity := NewActivityLog()
	m := NewMetrics(activity)

	m.RecordRequestStart("/api/admin/metrics/realtime", "GET")
	m.RecordRequestStart("/api/admin/logs/recent", "GET")
	m.RecordRequestStart("/static/app.js", "GET")
	if activity.Len() != 0 {
		t.Fatalf("excluded paths fed the activity log: %d entries", activity.Len())
	}

	m.RecordRequestStart("/api/meals", "GET")
	if activity.Len() != 1 {
		t.Fatalf("expected 1 activity entry, got %d", activity.Len())
	}

	// The request counter still moves for excluded paths; the error counter
	// and the feed are spared.
	m.RecordRequestEnd("/api/admin/metrics/realtime", "GET", 200, 5)
	m.RecordRequestEnd("/api/admin/logs/recent", "GET", 500, 5)
	requests, errors := m.Counts()
	if requests != 2 {
		t.Fatalf("expected counters to include excluded paths, got %d", requests)
	}
	if errors != 0 {
		t.Fatalf("excluded path failure bumped the error counter: %d", errors)
	}
	if activity.Len() != 1 {
		t.Fatalf("excluded path completion fed the activity log")
	}

	m.RecordRequestEnd("/api/meals", "GET", 500, 5)
	if _, errors := m.Counts(); errors != 1 {
		t.Fatalf("expected 1 error from tracked path failure, got %d", errors)
	}
}

package telemetry

import (
	"fmt"
	"strings"
	"sync"

	"stride/internal/models"
)

// maxResponseTimes bounds the rolling buffer of request durations.
const maxResponseTimes = 100

// Metrics holds the process-wide request counters and the rolling buffer of
// recent response times. Counters live for the process lifetime; a restart
// loses them.
type Metrics struct {
	mu            sync.Mutex
	requestCount  int64
	errorCount    int64
	responseTimes []int64

	activity *ActivityLog
}

// NewMetrics returns a zeroed metrics store feeding the given activity log.
func NewMetrics(activity *ActivityLog) *Metrics {
	return &Metrics{activity: activity}
}

// serviceFromPath maps an API path prefix to the service tag shown in the
// activity feed.
func serviceFromPath(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/auth"):
		return "AUTH"
	case strings.HasPrefix(path, "/api/admin"):
		return "ADMIN_API"
	case strings.HasPrefix(path, "/api/user-meals"):
		return "USER_MEALS_API"
	case strings.HasPrefix(path, "/api/user"):
		return "USER_API"
	case strings.HasPrefix(path, "/api/meals"):
		return "MEALS_API"
	case strings.HasPrefix(path, "/api/targets"):
		return "TARGETS_API"
	default:
		return "API"
	}
}

// trackablePath excludes the telemetry surface itself so dashboard polling
// does not feed back into the activity log it is displaying.
func trackablePath(path string) bool {
	if !strings.HasPrefix(path, "/api/") {
		return false
	}
	if strings.Contains(path, "/metrics") || strings.Contains(path, "/logs") {
		return false
	}
	return true
}

// RecordRequestStart logs the start of an API request as an activity. It does
// not touch the counters; those move on completion.
func (m *Metrics) RecordRequestStart(path, method string) {
	if !trackablePath(path) {
		return
	}
	m.activity.Add(models.ActivityRecord{
		Service: serviceFromPath(path),
		Message: fmt.Sprintf("%s %s - Request started", method, path),
		Type:    models.ActivityInfo,
	})
}

// RecordRequestEnd updates the counters and rolling buffer for a completed
// request and logs its outcome.
func (m *Metrics) RecordRequestEnd(path, method string, statusCode int, durationMs int64) {
	tracked := trackablePath(path)
	isError := statusCode >= 400

	m.mu.Lock()
	m.requestCount++
	m.responseTimes = append(m.responseTimes, durationMs)
	if len(m.responseTimes) > maxResponseTimes {
		m.responseTimes = m.responseTimes[len(m.responseTimes)-maxResponseTimes:]
	}
	// Errors count only on tracked paths; the request counter and duration
	// buffer move for every request.
	if tracked && isError {
		m.errorCount++
	}
	m.mu.Unlock()

	if !tracked {
		return
	}
	if isError {
		m.activity.Add(models.ActivityRecord{
			Service: serviceFromPath(path),
			Message: fmt.Sprintf("%s %s - %d Error (%dms)", method, path, statusCode, durationMs),
			Type:    models.ActivityWarning,
		})
	} else {
		m.activity.Add(models.ActivityRecord{
			Service: serviceFromPath(path),
			Message: fmt.Sprintf("%s %s - %d OK (%dms)", method, path, statusCode, durationMs),
			Type:    models.ActivitySuccess,
		})
	}
}

// Counts returns the lifetime request and error counters.
func (m *Metrics) Counts() (requests, errors int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requestCount, m.errorCount
}

// AvgResponseTime returns the mean of the buffered durations in ms, 0 when
// the buffer is empty.
func (m *Metrics) AvgResponseTime() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.responseTimes) == 0 {
		return 0
	}
	var sum int64
	for _, d := range m.responseTimes {
		sum += d
	}
	return sum / int64(len(m.responseTimes))
}

// ResponseTimes returns a copy of the rolling buffer, oldest first.
func (m *Metrics) ResponseTimes() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int64, len(m.responseTimes))
	copy(out, m.responseTimes)
	return out
}

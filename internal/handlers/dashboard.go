package handlers

import (
	"fmt"
	"net/http"
	"os"
	"runtime"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"stride/internal/models"
	"stride/internal/store"
	"stride/internal/telemetry"
	"stride/internal/utils"
	"stride/internal/ws"
)

const recentLogLimit = 15

// DashboardHandlers serves the admin dashboard's REST surface. The same
// data flows over the websocket broadcast; these endpoints exist for the
// initial page load and for polling fallbacks.
type DashboardHandlers struct {
	store *store.Store
	tele  *telemetry.Telemetry
	hub   *ws.Hub
	log   *utils.Logger
}

func NewDashboardHandlers(st *store.Store, tele *telemetry.Telemetry, hub *ws.Hub, log *utils.Logger) *DashboardHandlers {
	return &DashboardHandlers{store: st, tele: tele, hub: hub, log: log}
}

// Health reports liveness plus store connectivity.
func (h *DashboardHandlers) Health(c *gin.Context) {
	health := h.store.Health()
	status := "ok"
	code := http.StatusOK
	if !health.Connected {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":   status,
		"database": health,
		"uptime":   h.tele.Uptime().Round(time.Second).String(),
	})
}

// RealtimeMetrics returns the same snapshot the broadcaster pushes.
func (h *DashboardHandlers) RealtimeMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, h.tele.Snapshot(c.Request.Context()))
}

// RecentLogs merges the in-memory activity feed with store-derived events
// (recent logins, meal updates) into one feed, newest first.
func (h *DashboardHandlers) RecentLogs(c *gin.Context) {
	since := time.Now().Add(-5 * time.Minute)

	merged := h.tele.Activity.Recent(recentLogLimit)
	merged = append(merged, h.store.RecentEvents(c.Request.Context(), since)...)

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.After(merged[j].Timestamp)
	})
	if len(merged) > recentLogLimit {
		merged = merged[:recentLogLimit]
	}
	if merged == nil {
		merged = []models.ActivityRecord{}
	}

	c.JSON(http.StatusOK, gin.H{"logs": merged})
}

// ClearLogs empties the activity feed and records who did it.
func (h *DashboardHandlers) ClearLogs(c *gin.Context) {
	h.tele.Activity.Clear()
	h.tele.Activity.Add(models.ActivityRecord{
		Service: "ADMIN_API",
		Message: "Activity logs cleared by administrator",
		Type:    models.ActivityWarning,
	})
	h.log.Write("Activity logs cleared via dashboard")
	c.JSON(http.StatusOK, gin.H{"message": "Logs cleared successfully"})
}

// DatabaseMetrics returns collection totals and trailing windows.
func (h *DashboardHandlers) DatabaseMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.DatabaseStatistics(c.Request.Context()))
}

// SystemInfo describes the process, host and live connections.
func (h *DashboardHandlers) SystemInfo(c *gin.Context) {
	hostname, _ := os.Hostname()
	c.JSON(http.StatusOK, gin.H{
		"hostname":    hostname,
		"pid":         os.Getpid(),
		"goVersion":   runtime.Version(),
		"platform":    runtime.GOOS + "/" + runtime.GOARCH,
		"numCPU":      runtime.NumCPU(),
		"uptime":      h.tele.Uptime().Round(time.Second).String(),
		"connections": h.hub.Entries(),
	})
}

// StressTest runs a bounded CPU burn so operators can watch the usage graph
// react. The loop is fixed-size; this cannot be used to pin the host.
func (h *DashboardHandlers) StressTest(c *gin.Context) {
	elapsed, _ := telemetry.StressCPU(telemetry.DefaultStressIterations)
	ms := elapsed.Milliseconds()
	h.tele.Activity.Add(models.ActivityRecord{
		Service: "TEST",
		Message: fmt.Sprintf("CPU stress test completed in %dms", ms),
		Type:    models.ActivityInfo,
	})
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Stress test completed in %dms", ms)})
}

// TestRequest exists to exercise the request telemetry path end to end.
func (h *DashboardHandlers) TestRequest(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Test request recorded"})
}

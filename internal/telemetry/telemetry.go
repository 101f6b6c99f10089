// Package telemetry implements the in-process operational state behind the
// admin dashboard: request counters with a rolling response-time buffer, a
// time-windowed activity feed, on-demand host sampling, and the periodic
// snapshot broadcaster.
package telemetry

import (
	"context"
	"runtime"
	"time"

	"stride/internal/models"
)

// ConnectionCounter reports how many real-time clients are currently open.
// Implemented by the websocket hub.
type ConnectionCounter interface {
	ClientCount() int
}

// HealthSource returns the cached document-store health used in snapshots.
// The read must not block; implementations keep the value resident.
type HealthSource interface {
	Health() models.DatabaseHealth
}

// Telemetry owns the metrics store, activity feed and host sampler, and
// composes them into dashboard snapshots. It is constructed once at startup
// and shared by the request hooks, the websocket layer and the broadcaster.
type Telemetry struct {
	Metrics  *Metrics
	Activity *ActivityLog
	Sampler  *Sampler

	connections ConnectionCounter
	health      HealthSource
	startedAt   time.Time
}

// New wires up an empty telemetry context.
func New() *Telemetry {
	activity := NewActivityLog()
	return &Telemetry{
		Metrics:   NewMetrics(activity),
		Activity:  activity,
		Sampler:   NewSampler(),
		startedAt: time.Now(),
	}
}

// Bind attaches the connection counter and store health source. Called once
// during startup, before any snapshot is taken.
func (t *Telemetry) Bind(conns ConnectionCounter, health HealthSource) {
	t.connections = conns
	t.health = health
}

// Snapshot composes a point-in-time view of host, store and application
// state. All reads are of resident in-memory state plus the host sampler;
// the result is never mutated after construction.
func (t *Telemetry) Snapshot(ctx context.Context) models.MetricsSnapshot {
	sample := t.Sampler.Sample(ctx)
	requests, errors := t.Metrics.Counts()

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	clients := 0
	if t.connections != nil {
		clients = t.connections.ClientCount()
	}

	var db models.DatabaseHealth
	if t.health != nil {
		db = t.health.Health()
	}

	return models.MetricsSnapshot{
		System: models.SystemStats{
			Uptime:    int64(time.Since(t.startedAt).Seconds()),
			Timestamp: time.Now(),
			Memory: models.MemStats{
				RSS:       sample.MemoryRSSMB,
				HeapAlloc: memStats.HeapAlloc / 1024 / 1024,
				HeapSys:   memStats.HeapSys / 1024 / 1024,
				HostUsed:  sample.MemUsedMB,
				HostTotal: sample.MemTotalMB,
				Unit:      "MB",
			},
			CPU: models.CPUStats{
				Load1:  sample.Load1,
				Load5:  sample.Load5,
				Load15: sample.Load15,
				Usage:  sample.CPUPercent,
				Cores:  sample.Cores,
			},
			Disk: models.DiskStats{
				Total:        sample.DiskTotalGB,
				Used:         sample.DiskUsedGB,
				Free:         sample.DiskFreeGB,
				UsagePercent: sample.DiskPercent,
				Unit:         "GB",
			},
		},
		Database: db,
		Application: models.ApplicationStats{
			ActiveConnections: clients,
			SocketClients:     clients,
			RequestCount:      requests,
			ErrorCount:        errors,
			AvgResponseTime:   t.Metrics.AvgResponseTime(),
			RecentActivities:  t.Activity.Len(),
		},
	}
}

// Uptime reports how long this telemetry context has been alive.
func (t *Telemetry) Uptime() time.Duration {
	return time.Since(t.startedAt)
}

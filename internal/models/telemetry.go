package models

import "time"

// Activity severities shown in the admin dashboard feed.
const (
	ActivityInfo    = "info"
	ActivitySuccess = "success"
	ActivityWarning = "warning"
)

// ActivityRecord is one human-readable event in the rolling dashboard feed.
type ActivityRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
}

// HostSample captures host-level resource figures read on demand.
type HostSample struct {
	Load1       float64   `json:"load1"`
	Load5       float64   `json:"load5"`
	Load15      float64   `json:"load15"`
	CPUPercent  float64   `json:"usage"`
	Cores       int       `json:"cores"`
	MemoryRSSMB uint64    `json:"memory_rss_mb"`
	MemUsedMB   uint64    `json:"mem_used_mb"`
	MemTotalMB  uint64    `json:"mem_total_mb"`
	DiskTotalGB float64   `json:"disk_total_gb"`
	DiskUsedGB  float64   `json:"disk_used_gb"`
	DiskFreeGB  float64   `json:"disk_free_gb"`
	DiskPercent float64   `json:"disk_percent"`
	SampledAt   time.Time `json:"sampled_at"`
}

// DatabaseHealth is the cached view of store connectivity used in snapshots.
// State follows the mongoose readyState convention: 0 disconnected,
// 1 connected, 2 connecting.
type DatabaseHealth struct {
	Connected   bool `json:"connected"`
	State       int  `json:"state"`
	Collections int  `json:"collections"`
	Models      int  `json:"models"`
}

// SystemStats is the host portion of a metrics snapshot.
type SystemStats struct {
	Uptime    int64     `json:"uptime"`
	Timestamp time.Time `json:"timestamp"`
	Memory    MemStats  `json:"memory"`
	CPU       CPUStats  `json:"cpu"`
	Disk      DiskStats `json:"disk"`
}

// MemStats reports process and host memory in MB.
type MemStats struct {
	RSS       uint64 `json:"rss"`
	HeapAlloc uint64 `json:"heapAlloc"`
	HeapSys   uint64 `json:"heapSys"`
	HostUsed  uint64 `json:"hostUsed"`
	HostTotal uint64 `json:"hostTotal"`
	Unit      string `json:"unit"`
}

// CPUStats reports load averages and the delta-derived usage percentage.
type CPUStats struct {
	Load1  float64 `json:"load1"`
	Load5  float64 `json:"load5"`
	Load15 float64 `json:"load15"`
	Usage  float64 `json:"usage"`
	Cores  int     `json:"cores"`
}

// DiskStats reports root-volume usage in GB.
type DiskStats struct {
	Total        float64 `json:"total"`
	Used         float64 `json:"used"`
	Free         float64 `json:"free"`
	UsagePercent float64 `json:"usagePercent"`
	Unit         string  `json:"unit"`
}

// ApplicationStats is the in-process portion of a metrics snapshot.
type ApplicationStats struct {
	ActiveConnections int   `json:"activeConnections"`
	SocketClients     int   `json:"socketClients"`
	RequestCount      int64 `json:"requestCount"`
	ErrorCount        int64 `json:"errorCount"`
	AvgResponseTime   int64 `json:"avgResponseTime"`
	RecentActivities  int   `json:"recentActivities"`
}

// MetricsSnapshot is the composite payload broadcast to admin dashboards
// every tick and served by the polling endpoints. It is read-only once built.
type MetricsSnapshot struct {
	System      SystemStats      `json:"system"`
	Database    DatabaseHealth   `json:"database"`
	Application ApplicationStats `json:"application"`
}

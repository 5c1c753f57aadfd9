package models

import "time"

// ServerStatsResponse contains server runtime statistics.
type ServerStatsResponse struct {
	Uptime        string             `json:"uptime"`
	UptimeSeconds int64              `json:"uptime_seconds"`
	StartTime     time.Time          `json:"start_time"`
	GoRoutines    int                `json:"goroutines"`
	MemoryAllocMB float64            `json:"memory_alloc_mb"`
	NumCPU        int                `json:"num_cpu"`
	Host          *HostStatsResponse `json:"host,omitempty"`
}

// HostStatsResponse describes the machine the daemon runs on. Fields the
// platform cannot report are left zero.
type HostStatsResponse struct {
	MemoryTotalMB     float64 `json:"memory_total_mb"`
	MemoryUsedPercent float64 `json:"memory_used_percent"`
	Load1             float64 `json:"load1"`
	Load5             float64 `json:"load5"`
	Load15            float64 `json:"load15"`
}

package health

import (
	"context"
	"runtime"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Checker reports process and database liveness.
type Checker struct {
	db      *pgxpool.Pool
	started time.Time
}

type Status struct {
	Status        string         `json:"status"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	Database      DatabaseStatus `json:"database"`
	Goroutines    int            `json:"goroutines"`
	Memory        MemoryStats    `json:"memory"`
}

type DatabaseStatus struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
}

type MemoryStats struct {
	AllocMB      float64 `json:"alloc_mb"`
	TotalAllocMB float64 `json:"total_alloc_mb"`
	SysMB        float64 `json:"sys_mb"`
	NumGC        uint32  `json:"num_gc"`
}

func NewChecker(db *pgxpool.Pool) *Checker {
	return &Checker{db: db, started: time.Now()}
}

// Check pings the database and gathers runtime stats.
func (c *Checker) Check(ctx context.Context) Status {
	dbStatus := c.checkDatabase(ctx)

	status := "healthy"
	if dbStatus.Status != "healthy" {
		status = "unhealthy"
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return Status{
		Status:        status,
		UptimeSeconds: int64(time.Since(c.started).Seconds()),
		Database:      dbStatus,
		Goroutines:    runtime.NumGoroutine(),
		Memory: MemoryStats{
			AllocMB:      float64(memStats.Alloc) / 1024 / 1024,
			TotalAllocMB: float64(memStats.TotalAlloc) / 1024 / 1024,
			SysMB:        float64(memStats.Sys) / 1024 / 1024,
			NumGC:        memStats.NumGC,
		},
	}
}

func (c *Checker) checkDatabase(ctx context.Context) DatabaseStatus {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := c.db.Ping(ctx)
	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		return DatabaseStatus{Status: "unhealthy", ResponseTime: elapsed}
	}
	return DatabaseStatus{Status: "healthy", ResponseTime: elapsed}
}

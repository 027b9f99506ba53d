package handlers

import (
	"net/http"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"hostel-backend/internal/health"
)

type HealthHandler struct {
	Checker *health.Checker
}

func NewHealthHandler(checker *health.Checker) *HealthHandler {
	return &HealthHandler{Checker: checker}
}

// Health reports process and database liveness
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := h.Checker.Check(r.Context())

	code := http.StatusOK
	if status.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

// SystemInfo returns a host resource snapshot for the warden dashboard
func (h *HealthHandler) SystemInfo(w http.ResponseWriter, r *http.Request) {
	v, _ := mem.VirtualMemory()
	c, _ := cpu.Percent(0, false)
	d, _ := disk.Usage("/")

	cpuPercent := 0.0
	if len(c) > 0 {
		cpuPercent = c[0]
	}

	uptime := time.Duration(0)
	if info, err := host.Info(); err == nil {
		uptime = time.Duration(info.Uptime) * time.Second
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"cpu_percent":    cpuPercent,
		"memory_percent": memPercent(v),
		"disk_percent":   diskPercent(d),
		"uptime_seconds": int64(uptime.Seconds()),
	})
}

func memPercent(v *mem.VirtualMemoryStat) float64 {
	if v == nil {
		return 0
	}
	return v.UsedPercent
}

func diskPercent(d *disk.UsageStat) float64 {
	if d == nil {
		return 0
	}
	return d.UsedPercent
}

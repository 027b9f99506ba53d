// Package monitoring exposes Prometheus metrics for HTTP traffic and
// host resource usage.
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	CPUPercent prometheus.Gauge
	MemUsed    prometheus.Gauge
	MemTotal   prometheus.Gauge
	DiskUsed   prometheus.Gauge
	DiskTotal  prometheus.Gauge
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hostel_http_requests_total",
			Help: "Total number of HTTP requests by method, path and status code",
		}, []string{"method", "path", "status"}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hostel_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		CPUPercent: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "hostel_system_cpu_percent",
			Help: "Host CPU usage percentage",
		}),
		MemUsed: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "hostel_system_memory_used_bytes",
			Help: "Host memory in use",
		}),
		MemTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "hostel_system_memory_total_bytes",
			Help: "Host memory total",
		}),
		DiskUsed: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "hostel_system_disk_used_bytes",
			Help: "Root filesystem bytes in use",
		}),
		DiskTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "hostel_system_disk_total_bytes",
			Help: "Root filesystem size",
		}),
	}
}

// StartCollection starts the background system metrics sampler
func (m *Metrics) StartCollection() {
	ticker := time.NewTicker(10 * time.Second)
	go func() {
		for range ticker.C {
			m.sample()
		}
	}()
}

func (m *Metrics) sample() {
	if percents, err := cpu.Percent(time.Second, false); err == nil && len(percents) > 0 {
		m.CPUPercent.Set(percents[0])
	}
	if stats, err := mem.VirtualMemory(); err == nil {
		m.MemUsed.Set(float64(stats.Used))
		m.MemTotal.Set(float64(stats.Total))
	}
	if stats, err := disk.Usage("/"); err == nil {
		m.DiskUsed.Set(float64(stats.Used))
		m.DiskTotal.Set(float64(stats.Total))
	}
}

// Handler serves the Prometheus scrape endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request counts and latencies per route.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		path := routePattern(r)
		m.RequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(ww.status)).Inc()
		m.RequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// routePattern uses the matched mux template so path labels stay bounded.
func routePattern(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return r.URL.Path
}

// responseWriter wrapper to capture status code
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// Package observability aggregates the hub's runtime counters for the
// stats endpoint. Everything here is best-effort telemetry; losing a
// sample never affects delivery.
package observability

import (
	"log/slog"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/process"
)

// HubStats is the snapshot served to operators.
type HubStats struct {
	// Feed pipeline counters.
	NotificationsReceived uint64 `json:"notifications_received"`
	EventsPublished       uint64 `json:"events_published"`
	RecordsSkipped        uint64 `json:"records_skipped"`
	EventsDropped         uint64 `json:"events_dropped"`
	WorkerRestarts        uint64 `json:"worker_restarts"`

	// Connection state.
	ConnectedUsers  int   `json:"connected_users"`
	FeedUp          bool  `json:"feed_up"`
	OpenConnections int64 `json:"open_connections"`

	// Process health.
	AllocMemMb uint64  `json:"alloc_mem_mb"`
	RssBytes   uint64  `json:"rss_bytes"`
	CPUPercent float64 `json:"cpu_percent"`
	NumGC      uint32  `json:"num_gc"`
	UptimeSec  int64   `json:"uptime_sec"`
	PID        int     `json:"pid"`
}

// MonitoringManager collects counters from the notifier worker, the
// supervisor and the gateway. Counters are atomics; the process probe
// is resolved lazily on snapshot.
type MonitoringManager struct {
	log     *slog.Logger
	started time.Time

	mu   sync.Mutex
	proc *process.Process

	received    atomic.Uint64
	published   atomic.Uint64
	skipped     atomic.Uint64
	restarts    atomic.Uint64
	feedUp      atomic.Bool
	connections atomic.Int64
}

func NewMonitoringManager(log *slog.Logger) *MonitoringManager {
	return &MonitoringManager{log: log, started: time.Now()}
}

func (mm *MonitoringManager) IncrReceived()  { mm.received.Add(1) }
func (mm *MonitoringManager) IncrPublished() { mm.published.Add(1) }
func (mm *MonitoringManager) IncrSkipped()   { mm.skipped.Add(1) }

func (mm *MonitoringManager) WorkerRestarted() { mm.restarts.Add(1) }

// SetFeedUp flips the feed liveness flag. The notifier worker raises
// it once listening and lowers it when the feed dies, so a feed outage
// is visible between restarts.
func (mm *MonitoringManager) SetFeedUp(up bool) { mm.feedUp.Store(up) }

func (mm *MonitoringManager) ConnectionOpened() { mm.connections.Add(1) }
func (mm *MonitoringManager) ConnectionClosed() { mm.connections.Add(-1) }

// Snapshot assembles the current stats. connectedUsers and dropped come
// from the registry, which owns those numbers.
func (mm *MonitoringManager) Snapshot(connectedUsers int, dropped uint64) HubStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	stats := HubStats{
		NotificationsReceived: mm.received.Load(),
		EventsPublished:       mm.published.Load(),
		RecordsSkipped:        mm.skipped.Load(),
		EventsDropped:         dropped,
		WorkerRestarts:        mm.restarts.Load(),
		ConnectedUsers:        connectedUsers,
		FeedUp:                mm.feedUp.Load(),
		OpenConnections:       mm.connections.Load(),
		AllocMemMb:            mem.Alloc / 1024 / 1024,
		NumGC:                 mem.NumGC,
		UptimeSec:             int64(time.Since(mm.started).Seconds()),
		PID:                   os.Getpid(),
	}

	rss, cpu, err := mm.selfStats()
	if err != nil {
		mm.log.Debug("Failed to collect self stats", "err", err)
		return stats
	}
	stats.RssBytes = rss
	stats.CPUPercent = cpu
	return stats
}

// selfStats retrieves memory and CPU usage for the hub's own process.
func (mm *MonitoringManager) selfStats() (uint64, float64, error) {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	if mm.proc == nil {
		p, err := process.NewProcess(int32(os.Getpid()))
		if err != nil {
			return 0, 0, err
		}
		mm.proc = p
	}

	memInfo, err := mm.proc.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}
	cpuPercent, err := mm.proc.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpuPercent, nil
}

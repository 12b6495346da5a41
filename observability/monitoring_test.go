package observability

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMonitoringManager_Snapshot(t *testing.T) {
	req := require.New(t)
	mm := NewMonitoringManager(slog.Default())

	// Given activity from the worker, supervisor and gateway
	mm.IncrReceived()
	mm.IncrReceived()
	mm.IncrPublished()
	mm.IncrSkipped()
	mm.WorkerRestarted()
	mm.SetFeedUp(true)
	mm.ConnectionOpened()
	mm.ConnectionOpened()
	mm.ConnectionClosed()

	// When a snapshot is taken
	stats := mm.Snapshot(3, 7)

	// Then all counters are carried over
	req.Equal(uint64(2), stats.NotificationsReceived)
	req.Equal(uint64(1), stats.EventsPublished)
	req.Equal(uint64(1), stats.RecordsSkipped)
	req.Equal(uint64(1), stats.WorkerRestarts)
	req.Equal(uint64(7), stats.EventsDropped)
	req.Equal(3, stats.ConnectedUsers)
	req.Equal(int64(1), stats.OpenConnections)
	req.True(stats.FeedUp)
}

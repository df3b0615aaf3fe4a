package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/api/schedule/my", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/api/schedule/my", "GET", 200, 30*time.Millisecond)
	m.RecordRequest("/api/schedule/all", "POST", 403, time.Millisecond)
	m.RecordError("/api/schedule/all", "POST", "FORBIDDEN")

	snap := m.Snapshot()
	require.Len(t, snap.Requests, 2)
	require.Equal(t, "/api/schedule/all", snap.Requests[0].Route)
	require.Equal(t, 403, snap.Requests[0].Status)

	my := snap.Requests[1]
	require.EqualValues(t, 2, my.Count)
	require.InDelta(t, 20.0, my.AvgLatencyMs, 0.001)

	require.Equal(t, []ErrorStat{{Route: "/api/schedule/all", Method: "POST", Code: "FORBIDDEN", Count: 1}}, snap.Errors)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "X")
	require.Empty(t, m.Snapshot().Requests)
}

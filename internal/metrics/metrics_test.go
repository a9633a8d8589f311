package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	t.Run("counters and gauges", func(t *testing.T) {
		// Given: fresh metrics
		m := New("test")

		// When: events are recorded
		m.IncOnlineConnections()
		m.IncOnlineConnections()
		m.DecOnlineConnections()
		m.SetActiveRooms(3)
		m.IncMessagesReceived("match:move")
		m.IncMovesApplied("win")
		m.IncRejections("ROOM_FULL")
		m.ObserveMessageLatency(time.Millisecond)

		// Then: the values are visible
		assert.InDelta(t, 1, testutil.ToFloat64(m.OnlineConnections), 0)
		assert.InDelta(t, 3, testutil.ToFloat64(m.ActiveRooms), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(m.MessagesReceived.WithLabelValues("match:move")), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(m.MovesApplied.WithLabelValues("win")), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(m.Rejections.WithLabelValues("ROOM_FULL")), 0)
	})

	t.Run("instances do not share a registry", func(t *testing.T) {
		assert.NotPanics(t, func() {
			New("test")
			New("test")
		})
	})

	t.Run("handler exposes the namespace", func(t *testing.T) {
		// Given: metrics with one recorded connection
		m := New("test")
		m.IncOnlineConnections()

		// When: scraping
		recorder := httptest.NewRecorder()
		m.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		// Then: the gauge is in the exposition
		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "test_online_connections 1")
	})
}

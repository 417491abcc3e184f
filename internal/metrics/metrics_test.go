package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
	assert.Same(t, registry, InitRegistry())
}

func TestRecordBetPlaced(t *testing.T) {
	InitRegistry()
	before := testutil.ToFloat64(BetsPlacedTotal)

	RecordBetPlaced(0.25)

	assert.Equal(t, before+1, testutil.ToFloat64(BetsPlacedTotal))
}

func TestRecordSimulation(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name    string
		outcome string
	}{
		{name: "applied", outcome: "applied"},
		{name: "stale", outcome: "stale"},
		{name: "failed", outcome: "failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(SimulationRequestsTotal.WithLabelValues(tt.outcome))
			RecordSimulation(tt.outcome)
			assert.Equal(t, before+1, testutil.ToFloat64(SimulationRequestsTotal.WithLabelValues(tt.outcome)))
		})
	}
}

func TestGaugeUpdates(t *testing.T) {
	InitRegistry()

	SetRealtimeConnected(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(RealtimeConnected))
	SetRealtimeConnected(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(RealtimeConnected))

	UpdateWalletBalance(4.2)
	assert.Equal(t, 4.2, testutil.ToFloat64(WalletBalanceSOL))
}

func TestRecordersDoNotPanic(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordSimulationDeduped()
		RecordBetSubmissionFailure("rejected")
		RecordTransaction("success")
		RecordTransactionConfirmation(1.5)
		RecordCacheInvalidation("pools")
		RecordRealtimeEvent("pool:updated")
		RecordReconnectAttempt()
		RecordAPIRequest("pools.get", 0.02)
		RecordMarketDataRequest("positions", "hit")
	})
}

func TestHandler(t *testing.T) {
	InitRegistry()
	RecordReconnectAttempt()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "arena_realtime_reconnects_total")
}

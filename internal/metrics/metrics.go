// Package metrics provides centralized Prometheus metrics registry for the arena client.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "arena"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	SimulationRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "simulation_requests_total",
		Help:      "Simulate calls by outcome (applied, stale, failed)",
	}, []string{"outcome"})
	SimulationsDedupedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "simulations_deduped_total",
		Help:      "Simulate calls skipped because the key was already sent",
	})
	BetsPlacedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bets_placed_total",
		Help:      "Total number of bets accepted by the backend",
	})
	BetSubmissionFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bet_submission_failures_total",
		Help:      "Bet submissions that did not succeed, by reason",
	}, []string{"reason"})
	TransactionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transactions_total",
		Help:      "Wallet transactions by final status",
	}, []string{"status"})
	CacheInvalidationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_invalidations_total",
		Help:      "Cached view invalidations by view kind",
	}, []string{"view"})
	RealtimeEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "realtime_events_total",
		Help:      "Push channel events received by type",
	}, []string{"type"})
	RealtimeReconnectsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "realtime_reconnects_total",
		Help:      "Push channel reconnect attempts",
	})
	MarketDataRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "market_data_requests_total",
		Help:      "Market data lookups by endpoint and cache result",
	}, []string{"endpoint", "cache"})
)

// Gauge metrics
var (
	RealtimeConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "realtime_connected",
		Help:      "1 while the push channel is connected",
	})
	WalletBalanceSOL = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "wallet_balance_sol",
		Help:      "Last observed wallet balance in SOL",
	})
)

// Histogram metrics
var (
	BetPlacementLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "bet_placement_latency_seconds",
		Help:      "Latency of bet placement operations in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	APIRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_request_duration_seconds",
		Help:      "Backend API request duration by endpoint",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})
	TransactionConfirmDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "transaction_confirm_duration_seconds",
		Help:      "Time from broadcast to confirmation",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 90},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(SimulationRequestsTotal)
		registry.MustRegister(SimulationsDedupedTotal)
		registry.MustRegister(BetsPlacedTotal)
		registry.MustRegister(BetSubmissionFailuresTotal)
		registry.MustRegister(TransactionsTotal)
		registry.MustRegister(CacheInvalidationsTotal)
		registry.MustRegister(RealtimeEventsTotal)
		registry.MustRegister(RealtimeReconnectsTotal)
		registry.MustRegister(MarketDataRequestsTotal)

		registry.MustRegister(RealtimeConnected)
		registry.MustRegister(WalletBalanceSOL)

		registry.MustRegister(BetPlacementLatency)
		registry.MustRegister(APIRequestDuration)
		registry.MustRegister(TransactionConfirmDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordSimulation records the outcome of a simulate call.
func RecordSimulation(outcome string) {
	SimulationRequestsTotal.WithLabelValues(outcome).Inc()
}

// RecordSimulationDeduped records a skipped duplicate simulate call.
func RecordSimulationDeduped() {
	SimulationsDedupedTotal.Inc()
}

// RecordBetPlaced records an accepted bet and its placement latency.
func RecordBetPlaced(durationSeconds float64) {
	BetsPlacedTotal.Inc()
	BetPlacementLatency.Observe(durationSeconds)
}

// RecordBetSubmissionFailure records a failed submission.
func RecordBetSubmissionFailure(reason string) {
	BetSubmissionFailuresTotal.WithLabelValues(reason).Inc()
}

// RecordTransaction records the final status of a wallet transaction.
func RecordTransaction(status string) {
	TransactionsTotal.WithLabelValues(status).Inc()
}

// RecordTransactionConfirmation records time spent waiting for confirmation.
func RecordTransactionConfirmation(durationSeconds float64) {
	TransactionConfirmDuration.Observe(durationSeconds)
}

// RecordCacheInvalidation records an invalidated view.
func RecordCacheInvalidation(view string) {
	CacheInvalidationsTotal.WithLabelValues(view).Inc()
}

// RecordRealtimeEvent records a received push event.
func RecordRealtimeEvent(eventType string) {
	RealtimeEventsTotal.WithLabelValues(eventType).Inc()
}

// RecordReconnectAttempt records a push channel reconnect attempt.
func RecordReconnectAttempt() {
	RealtimeReconnectsTotal.Inc()
}

// SetRealtimeConnected updates the push channel connectivity gauge.
func SetRealtimeConnected(connected bool) {
	if connected {
		RealtimeConnected.Set(1)
		return
	}
	RealtimeConnected.Set(0)
}

// UpdateWalletBalance updates the wallet balance gauge.
func UpdateWalletBalance(sol float64) {
	WalletBalanceSOL.Set(sol)
}

// RecordAPIRequest records backend request latency.
func RecordAPIRequest(endpoint string, durationSeconds float64) {
	APIRequestDuration.WithLabelValues(endpoint).Observe(durationSeconds)
}

// RecordMarketDataRequest records a market data lookup; cache is "hit" or "miss".
func RecordMarketDataRequest(endpoint, cache string) {
	MarketDataRequestsTotal.WithLabelValues(endpoint, cache).Inc()
}

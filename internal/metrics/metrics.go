// Package metrics exposes the desk's operational counters on a Prometheus
// endpoint. Workflow code never touches these (it must stay deterministic);
// activities and services do.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	RFQSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rfq_submitted_total",
			Help: "RFQ workflows started via the gateway",
		},
	)

	RFQOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rfq_outcomes_total",
			Help: "Terminal RFQ outcomes by disposition",
		},
		[]string{"outcome"},
	)

	ActivityDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rfq_activity_duration_seconds",
			Help:    "Wall-clock duration of activity executions",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"activity"},
	)

	ActivityFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rfq_activity_failures_total",
			Help: "Activity executions that returned a failure",
		},
		[]string{"activity", "kind"},
	)

	ChecksFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rfq_pretrade_check_failures_total",
			Help: "Pre-trade check failures by check name",
		},
		[]string{"check"},
	)

	QuotesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rfq_quotes_sent_total",
			Help: "Indicative term sheets delivered to clients",
		},
	)

	TradesBooked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rfq_trades_booked_total",
			Help: "Trades written to the booking ledger",
		},
	)

	DeliveryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rfq_delivery_failures_total",
			Help: "Failed outbound deliveries by document type",
		},
		[]string{"document"},
	)

	DeliveryDeduped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rfq_delivery_deduplicated_total",
			Help: "Deliveries skipped because the idempotency key was already seen",
		},
	)

	StreamConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rfq_marketdata_stream_connected",
			Help: "Market data stream status (1=connected, 0=disconnected)",
		},
	)

	StreamReconnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rfq_marketdata_stream_reconnects_total",
			Help: "Market data stream reconnection attempts",
		},
	)

	SnapshotsStored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rfq_marketdata_snapshots_total",
			Help: "Market data snapshots written to the store",
		},
	)
)

// Server serves /metrics and a trivial liveness endpoint.
type Server struct {
	server *http.Server
	log    zerolog.Logger
}

// NewServer creates a metrics server bound to addr.
func NewServer(addr string, log zerolog.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	return &Server{
		server: &http.Server{Addr: addr, Handler: mux},
		log:    log.With().Str("component", "metrics").Logger(),
	}
}

// Start blocks serving metrics until Stop is called.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting metrics server")
	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop shuts the server down.
func (s *Server) Stop() error {
	return s.server.Close()
}

package metrics

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/0xmhha/blocketa/pkg/types"
)

// Metrics holds all Prometheus metrics for blocketa
type Metrics struct {
	// Poll loop counters
	Polls        prometheus.Counter
	PollFailures prometheus.Counter
	StaleSamples prometheus.Counter

	// Fetch latency histogram (buckets: 50ms .. 10s)
	FetchLatency prometheus.Histogram

	// Gauges for the published network state
	CurrentBlock prometheus.Gauge
	AvgBlockTime prometheus.Gauge
	WindowSize   prometheus.Gauge
	LastUpdate   prometheus.Gauge

	// Advisory calls, labelled by outcome
	AdvisoryRequests *prometheus.CounterVec

	registry *prometheus.Registry

	// HTTP server
	server *http.Server
	mu     sync.Mutex
}

// NewMetrics creates a new Metrics instance with the given namespace,
// registered on its own registry.
func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Polls: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_total",
			Help:      "Total number of poll ticks",
		}),
		PollFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_failures_total",
			Help:      "Total number of poll ticks whose fetch failed",
		}),
		StaleSamples: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_samples_total",
			Help:      "Total number of fetched samples that did not advance the window",
		}),
		FetchLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_latency_seconds",
			Help:      "Latency of latest-block fetches in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}),
		CurrentBlock: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "current_block",
			Help:      "Latest block number in the rolling window",
		}),
		AvgBlockTime: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "avg_block_time_seconds",
			Help:      "Average block time over the rolling window",
		}),
		WindowSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "window_size",
			Help:      "Number of samples in the rolling window",
		}),
		LastUpdate: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_update_timestamp_seconds",
			Help:      "Unix time of the last published network state",
		}),
		AdvisoryRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "advisory_requests_total",
			Help:      "Advisory requests by outcome",
		}, []string{"outcome"}),
		registry: reg,
	}
}

// Registry returns the registry all collectors are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Start starts the HTTP server for Prometheus metrics
func (m *Metrics) Start(_ context.Context, port int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.server != nil {
		return fmt.Errorf("metrics server already running")
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))

	m.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	srv := m.server
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Metrics server failed", "addr", srv.Addr, "err", err)
		}
	}()

	return nil
}

// Stop stops the HTTP server gracefully
func (m *Metrics) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.server == nil {
		return nil
	}

	err := m.server.Shutdown(ctx)
	m.server = nil
	return err
}

// IsRunning returns true if the metrics server is running
func (m *Metrics) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.server != nil
}

// RecordPoll counts a tick and observes its fetch latency
func (m *Metrics) RecordPoll(latency time.Duration) {
	m.Polls.Inc()
	m.FetchLatency.Observe(latency.Seconds())
}

// RecordPollFailure counts a tick whose fetch failed
func (m *Metrics) RecordPollFailure() {
	m.PollFailures.Inc()
}

// RecordStale counts a sample that did not advance the window
func (m *Metrics) RecordStale() {
	m.StaleSamples.Inc()
}

// RecordState updates the gauges from a published state
func (m *Metrics) RecordState(state types.NetworkState) {
	m.CurrentBlock.Set(float64(state.CurrentBlock))
	m.AvgBlockTime.Set(state.AvgBlockTime)
	m.WindowSize.Set(float64(len(state.History)))
	m.LastUpdate.Set(float64(state.LastUpdate.Unix()))
}

// RecordAdvisory counts an advisory request with the given outcome
// ("ok", "fallback", "rate_limited")
func (m *Metrics) RecordAdvisory(outcome string) {
	m.AdvisoryRequests.WithLabelValues(outcome).Inc()
}

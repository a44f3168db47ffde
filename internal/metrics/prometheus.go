package metrics

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusCollector implements the Collector interface using Prometheus metrics.
type PrometheusCollector struct {
	sessionsStartedTotal   prometheus.Counter
	sessionsResumedTotal   prometheus.Counter
	sessionsDestroyedTotal prometheus.Counter
	sessionPatchesRemaining prometheus.Gauge

	patchesAppliedTotal prometheus.Counter
	patchesSkippedTotal prometheus.Counter
	patchesFailedTotal  *prometheus.CounterVec

	commitsCreatedTotal prometheus.Counter
	commitMessageBytes  prometheus.Histogram
}

// NewPrometheusCollector creates a new PrometheusCollector with all metrics registered.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	c := &PrometheusCollector{
		sessionsStartedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gitam_sessions_started_total",
			Help: "Total number of am sessions set up from new input.",
		}),
		sessionsResumedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gitam_sessions_resumed_total",
			Help: "Total number of am sessions resumed across invocations.",
		}),
		sessionsDestroyedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gitam_sessions_destroyed_total",
			Help: "Total number of am session directories removed on completion or abort.",
		}),
		sessionPatchesRemaining: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gitam_session_patches_remaining",
			Help: "Patches remaining in the most recently loaded session.",
		}),

		patchesAppliedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gitam_patches_applied_total",
			Help: "Total number of patches successfully committed.",
		}),
		patchesSkippedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gitam_patches_skipped_total",
			Help: "Total number of patches skipped without a commit.",
		}),
		patchesFailedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gitam_patches_failed_total",
			Help: "Total number of patches that failed to apply, by error kind.",
		}, []string{"kind"}),

		commitsCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gitam_commits_created_total",
			Help: "Total number of commits created by the commit driver.",
		}),
		commitMessageBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gitam_commit_message_bytes",
			Help:    "Size in bytes of composed commit messages.",
			Buckets: []float64{32, 128, 512, 2048, 8192, 32768},
		}),
	}

	reg.MustRegister(
		c.sessionsStartedTotal,
		c.sessionsResumedTotal,
		c.sessionsDestroyedTotal,
		c.sessionPatchesRemaining,
		c.patchesAppliedTotal,
		c.patchesSkippedTotal,
		c.patchesFailedTotal,
		c.commitsCreatedTotal,
		c.commitMessageBytes,
	)

	return c
}

// SessionStarted increments the session-started counter and sets the remaining gauge.
func (c *PrometheusCollector) SessionStarted(patchCount int) {
	c.sessionsStartedTotal.Inc()
	c.sessionPatchesRemaining.Set(float64(patchCount))
}

// SessionResumed increments the session-resumed counter and sets the remaining gauge.
func (c *PrometheusCollector) SessionResumed(remaining int) {
	c.sessionsResumedTotal.Inc()
	c.sessionPatchesRemaining.Set(float64(remaining))
}

// PatchApplied increments the applied-patch counter.
func (c *PrometheusCollector) PatchApplied() {
	c.patchesAppliedTotal.Inc()
}

// PatchSkipped increments the skipped-patch counter.
func (c *PrometheusCollector) PatchSkipped() {
	c.patchesSkippedTotal.Inc()
}

// PatchFailed increments the failed-patch counter for the given error kind.
func (c *PrometheusCollector) PatchFailed(kind string) {
	c.patchesFailedTotal.WithLabelValues(kind).Inc()
}

// CommitCreated increments the commit counter and observes message size.
func (c *PrometheusCollector) CommitCreated(messageBytes int) {
	c.commitsCreatedTotal.Inc()
	c.commitMessageBytes.Observe(float64(messageBytes))
}

// SessionDestroyed increments the session-destroyed counter.
func (c *PrometheusCollector) SessionDestroyed() {
	c.sessionsDestroyedTotal.Inc()
}

// PrometheusServer serves the default Prometheus registry over HTTP at path.
type PrometheusServer struct {
	addr   string
	path   string
	server *http.Server
}

// NewPrometheusServer builds a metrics.Server exposing the default registry.
func NewPrometheusServer(addr, path string) *PrometheusServer {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())
	return &PrometheusServer{
		addr: addr,
		path: path,
		server: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}
}

// Start serves metrics until ctx is canceled.
func (s *PrometheusServer) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the metrics server.
func (s *PrometheusServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

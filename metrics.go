package lattice

// metrics.go mirrors Voskan-arena-cache/pkg/metrics.go: a thin metricsSink
// abstraction over Prometheus so the world works with or without metrics.
// Passing a *prometheus.Registry via WithMetrics swaps the no-op sink for a
// real one; the dispatch hot path (RunSystems, RunEvents) never pays for a
// label lookup unless the caller opted in, and never on the per-row loop
// either way — only at the chunk/pool/flush granularity.

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

type metricsSink interface {
	incEntitiesCreated(sig string, n int)
	incEntitiesRemoved(sig string, n int)
	incChunksAllocated(sig string)
	incChunksReleased(sig string)
	observeFlush(sig string, seconds float64)
	observeRunSystems(seconds float64)
}

type noopMetrics struct{}

func (noopMetrics) incEntitiesCreated(string, int) {}
func (noopMetrics) incEntitiesRemoved(string, int) {}
func (noopMetrics) incChunksAllocated(string)      {}
func (noopMetrics) incChunksReleased(string)       {}
func (noopMetrics) observeFlush(string, float64)   {}
func (noopMetrics) observeRunSystems(float64)      {}

type promMetrics struct {
	entitiesCreated   *prometheus.CounterVec
	entitiesRemoved   *prometheus.CounterVec
	chunksAllocated   *prometheus.CounterVec
	chunksReleased    *prometheus.CounterVec
	flushSeconds      *prometheus.HistogramVec
	runSystemsSeconds prometheus.Histogram
}

func newPromMetrics(reg *prometheus.Registry) *promMetrics {
	label := []string{"signature"}
	pm := &promMetrics{
		entitiesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lattice", Name: "entities_created_total",
			Help: "Number of entities created, by pool signature.",
		}, label),
		entitiesRemoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lattice", Name: "entities_removed_total",
			Help: "Number of entities removed by Flush, by pool signature.",
		}, label),
		chunksAllocated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lattice", Name: "chunks_allocated_total",
			Help: "Number of chunks allocated, by pool signature.",
		}, label),
		chunksReleased: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lattice", Name: "chunks_released_total",
			Help: "Number of chunks released during compaction, by pool signature.",
		}, label),
		flushSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lattice", Name: "flush_duration_seconds",
			Help: "Time spent in Flush for one pool.",
		}, label),
		runSystemsSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "lattice", Name: "run_systems_duration_seconds",
			Help: "Time spent in one RunSystems call, across all systems and pools.",
		}),
	}
	reg.MustRegister(
		pm.entitiesCreated, pm.entitiesRemoved,
		pm.chunksAllocated, pm.chunksReleased,
		pm.flushSeconds, pm.runSystemsSeconds,
	)
	return pm
}

func (m *promMetrics) incEntitiesCreated(sig string, n int) {
	m.entitiesCreated.WithLabelValues(sig).Add(float64(n))
}
func (m *promMetrics) incEntitiesRemoved(sig string, n int) {
	m.entitiesRemoved.WithLabelValues(sig).Add(float64(n))
}
func (m *promMetrics) incChunksAllocated(sig string) {
	m.chunksAllocated.WithLabelValues(sig).Inc()
}
func (m *promMetrics) incChunksReleased(sig string) {
	m.chunksReleased.WithLabelValues(sig).Inc()
}
func (m *promMetrics) observeFlush(sig string, seconds float64) {
	m.flushSeconds.WithLabelValues(sig).Observe(seconds)
}
func (m *promMetrics) observeRunSystems(seconds float64) {
	m.runSystemsSeconds.Observe(seconds)
}

func newMetricsSink(reg *prometheus.Registry) metricsSink {
	if reg == nil {
		return noopMetrics{}
	}
	return newPromMetrics(reg)
}

func signatureLabel(h SignatureHash) string {
	return strconv.FormatUint(uint64(h), 16)
}

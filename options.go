package lattice

// options.go follows the functional-option style of
// Voskan-arena-cache/pkg/config.go: options only capture pointers to
// external objects (registry, logger) and are applied once at construction
// time; nothing here is mutable after NewWorld returns.

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures a World at construction time.
type Option func(*worldConfig)

type worldConfig struct {
	logger    *zap.Logger
	registry  *prometheus.Registry
	chunkSize int
}

func defaultWorldConfig() worldConfig {
	return worldConfig{
		logger:    zap.NewNop(),
		chunkSize: Config.chunkSizeOrDefault(),
	}
}

// WithLogger plugs an external zap.Logger. The world never logs on the
// per-entity or per-row hot path; only boundary events (pool registration,
// archetype rejection) are emitted.
func WithLogger(l *zap.Logger) Option {
	return func(c *worldConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics enables Prometheus metrics collection for the world. Passing
// nil (the default) disables metrics.
func WithMetrics(reg *prometheus.Registry) Option {
	return func(c *worldConfig) {
		c.registry = reg
	}
}

// WithChunkSize overrides the default 16 KiB chunk size. Intended for tests
// that need to reach chunk-spill or minimum-capacity boundaries without
// allocating full-size buffers; any archetype that can't meet
// minElementCountPerChunk at this size is still rejected by AddPool.
func WithChunkSize(bytes int) Option {
	return func(c *worldConfig) {
		if bytes > 0 {
			c.chunkSize = bytes
		}
	}
}

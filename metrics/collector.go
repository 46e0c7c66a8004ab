// Package metrics exports simulation counters in the Prometheus format.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sarchlab/csim/addr"
	"github.com/sarchlab/csim/cache"
	"github.com/sarchlab/csim/trace"
)

// Config represents metrics configuration
type Config struct {
	Namespace string            `yaml:"namespace"`
	Labels    map[string]string `yaml:"labels,omitempty"`
}

// Collector counts replayed accesses and their outcomes.
type Collector struct {
	registry *prometheus.Registry

	accessCounter *prometheus.CounterVec
	eventCounter  *prometheus.CounterVec
	dirtyEvicted  prometheus.Counter
}

// NewCollector creates a collector with its own registry.
func NewCollector(config *Config) (*Collector, error) {
	if config == nil {
		config = &Config{Namespace: "csim"}
	}

	c := &Collector{
		registry: prometheus.NewRegistry(),
		accessCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   config.Namespace,
				Name:        "accesses_total",
				Help:        "Total number of replayed accesses by kind",
				ConstLabels: config.Labels,
			},
			[]string{"kind"},
		),
		eventCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   config.Namespace,
				Name:        "events_total",
				Help:        "Total number of cache hits, misses and evictions",
				ConstLabels: config.Labels,
			},
			[]string{"event"},
		),
		dirtyEvicted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace:   config.Namespace,
				Name:        "dirty_evictions_total",
				Help:        "Total number of evicted lines that were dirty",
				ConstLabels: config.Labels,
			},
		),
	}

	for _, collector := range []prometheus.Collector{
		c.accessCounter,
		c.eventCounter,
		c.dirtyEvicted,
	} {
		if err := c.registry.Register(collector); err != nil {
			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}

	return c, nil
}

// Registry returns the registry holding the collector's metrics.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Observe records one access.
func (c *Collector) Observe(
	op trace.Operation,
	_ addr.Fields,
	outcome cache.Outcome,
) {
	c.accessCounter.WithLabelValues(op.Kind.String()).Inc()

	if n := outcome.Hits(); n > 0 {
		c.eventCounter.WithLabelValues("hit").Add(float64(n))
	}
	if n := outcome.Misses(); n > 0 {
		c.eventCounter.WithLabelValues("miss").Add(float64(n))
	}
	if n := outcome.Evictions(); n > 0 {
		c.eventCounter.WithLabelValues("eviction").Add(float64(n))
	}
}

// RecordDirtyEvictions adds the dirty eviction count of a finished run.
func (c *Collector) RecordDirtyEvictions(stats cache.Statistics) {
	c.dirtyEvicted.Add(float64(stats.DirtyEvictions))
}

// WriteTextfile writes the current metric values to path in the Prometheus
// text format.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}

	return nil
}

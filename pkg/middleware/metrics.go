package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	enhance "github.com/vango-dev/enhance"
	"github.com/vango-dev/enhance/pkg/style"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "enhance").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for process duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "enhance",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the collectors updated by the Prometheus middleware.
type Metrics struct {
	processTotal       *prometheus.CounterVec
	processDuration    prometheus.Histogram
	processErrors      *prometheus.CounterVec
	componentsRendered prometheus.Counter
	styleBytes         prometheus.Histogram
}

// NewMetrics registers the collectors with the configured registry.
// Registering twice with the same registry panics.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		processTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "process_total",
			Help:        "Total number of Process calls",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		processDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "process_duration_seconds",
			Help:        "Process duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		processErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "process_errors_total",
			Help:        "Total number of failed Process calls",
			ConstLabels: config.ConstLabels,
		}, []string{"error_type"}),

		componentsRendered: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "components_rendered_total",
			Help:        "Total number of render function invocations",
			ConstLabels: config.ConstLabels,
		}),

		styleBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "style_bytes",
			Help:        "Size of the scoped styles per call",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{0, 256, 1024, 4096, 16384, 65536},
		}),
	}
}

// Middleware returns a Middleware recording into m.
func (m *Metrics) Middleware() Middleware {
	return func(next enhance.Processor) enhance.Processor {
		return enhance.ProcessorFunc(func(ctx context.Context, markup string, state any) (*enhance.Result, error) {
			start := time.Now()
			res, err := next.Process(ctx, markup, state)
			m.processDuration.Observe(time.Since(start).Seconds())

			if err != nil {
				m.processTotal.WithLabelValues("error").Inc()
				m.processErrors.WithLabelValues(categorizeError(err)).Inc()
				return res, err
			}

			m.processTotal.WithLabelValues("success").Inc()
			if res != nil {
				m.componentsRendered.Add(float64(res.Rendered))
				m.styleBytes.Observe(float64(len(res.Styles)))
			}
			return res, nil
		})
	}
}

// Prometheus creates middleware that collects Prometheus metrics for
// Process calls.
//
// Example:
//
//	p := middleware.Chain(renderer, middleware.Prometheus(
//	    middleware.WithNamespace("site"),
//	))
func Prometheus(opts ...MetricsOption) Middleware {
	return NewMetrics(opts...).Middleware()
}

// categorizeError returns a low-cardinality label for err.
func categorizeError(err error) string {
	var (
		depth     *enhance.RenderDepthExceededError
		render    *enhance.RenderError
		malformed *enhance.MalformedMarkupError
	)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.As(err, &depth):
		return "depth_exceeded"
	case errors.As(err, &malformed):
		return "malformed_markup"
	case errors.As(err, &render):
		var scope *style.ScopeError
		if errors.As(err, &scope) {
			return "style"
		}
		return "render"
	default:
		return "internal"
	}
}

// Package middleware decorates an enhance.Processor with production
// concerns.
//
// This package includes:
//   - Prometheus metrics for every Process call
//   - OpenTelemetry tracing
//   - A result cache keyed by markup and initial state
//
// Middlewares wrap a Processor and return a Processor, so they compose:
//
//	p := middleware.Chain(enhance.New(reg),
//	    middleware.OpenTelemetry(),
//	    middleware.Prometheus(),
//	    middleware.Cache(cache.NewMemory(5*time.Minute)),
//	)
//
// The first middleware is the outermost. In the chain above a cache hit
// is still traced and counted.
//
// # Prometheus Metrics
//
//   - enhance_process_total: Process calls by status
//   - enhance_process_duration_seconds: Process duration histogram
//   - enhance_process_errors_total: failed calls by error type
//   - enhance_components_rendered_total: render function invocations
//   - enhance_style_bytes: size of the aggregated style block
//
// Expose them with promhttp:
//
//	http.Handle("/metrics", promhttp.Handler())
package middleware

package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	enhance "github.com/vango-dev/enhance"
)

// Default tracer name for enhance.
const defaultTracerName = "github.com/vango-dev/enhance"

// SpanName is the name of the span created for each Process call.
const SpanName = "enhance.process"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer.
	TracerName string

	// TracerProvider creates the tracer. If nil, the global provider is
	// used.
	TracerProvider trace.TracerProvider

	// Filter determines which calls to trace. Return true to trace the
	// call. If nil, all calls are traced.
	Filter func(ctx context.Context, markup string) bool

	// AttributeExtractor adds custom attributes to each span.
	AttributeExtractor func(ctx context.Context, markup string) []attribute.KeyValue
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// WithFilter sets a filter function for calls.
func WithFilter(filter func(ctx context.Context, markup string) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(ctx context.Context, markup string) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

// OpenTelemetry creates middleware that traces every Process call.
//
// The span carries the input size, whether initial state was given,
// the number of components rendered and the size of the scoped styles.
// Errors are recorded on the span. The span's context is passed on to the
// wrapped processor.
//
// The tracer uses the global OpenTelemetry tracer provider unless one is
// given. Configure it in main() before starting the server, for example
// with internal/telemetry.
func OpenTelemetry(opts ...OTelOption) Middleware {
	config := OTelConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}

	tp := config.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	tracer := tp.Tracer(config.TracerName)

	return func(next enhance.Processor) enhance.Processor {
		return enhance.ProcessorFunc(func(ctx context.Context, markup string, state any) (*enhance.Result, error) {
			if config.Filter != nil && !config.Filter(ctx, markup) {
				return next.Process(ctx, markup, state)
			}

			attrs := []attribute.KeyValue{
				attribute.Int("enhance.input_bytes", len(markup)),
				attribute.Bool("enhance.has_state", state != nil),
			}
			if config.AttributeExtractor != nil {
				attrs = append(attrs, config.AttributeExtractor(ctx, markup)...)
			}

			ctx, span := tracer.Start(ctx, SpanName,
				trace.WithSpanKind(trace.SpanKindInternal),
				trace.WithAttributes(attrs...),
			)
			defer span.End()

			res, err := next.Process(ctx, markup, state)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				span.SetAttributes(attribute.String("enhance.error_type", categorizeError(err)))
				return res, err
			}

			if res != nil {
				span.SetAttributes(
					attribute.Int("enhance.components_rendered", res.Rendered),
					attribute.Int("enhance.style_fragments", len(res.Fragments)),
					attribute.Int("enhance.style_bytes", len(res.Styles)),
				)
			}
			span.SetStatus(codes.Ok, "")
			return res, nil
		})
	}
}

// Package o11y is the tracing and metrics facade used throughout the module.
//
// Code records its work on spans taken from the provider carried in the context. Without a
// provider every call is a no-op, so libraries can be instrumented unconditionally.
package o11y

import (
	"context"
)

type Provider interface {
	// AddGlobalField adds a field to every span the provider sends, e.g. service or version.
	AddGlobalField(key string, val interface{})

	// StartSpan begins a unit of work. The name should be short and identify the kind of work,
	// such as "db: books.findOne". The caller must End the span, usually with
	//
	//   ctx, span := o11y.StartSpan(ctx, "store: add")
	//   defer o11y.End(span, &err)
	StartSpan(ctx context.Context, name string) (context.Context, Span)

	// GetSpan returns the active span, or nil when there is none.
	GetSpan(ctx context.Context) Span

	// AddField adds an "app." prefixed field to the active span.
	AddField(ctx context.Context, key string, val interface{})

	// AddFieldToTrace adds a field to the root span, and so to every span in the trace.
	AddFieldToTrace(ctx context.Context, key string, val interface{})

	// Log sends a zero duration event.
	Log(ctx context.Context, name string, fields ...Pair)

	Close(ctx context.Context)

	// MetricsProvider is for emitting metrics that are not tied to a span.
	MetricsProvider() MetricsProvider
}

type Span interface {
	// AddField adds an "app." prefixed field.
	AddField(key string, val interface{})

	// AddRawField adds a field with the key as given. It is meant for plumbing code that
	// follows a naming convention, like db.system or http.status_code.
	AddRawField(key string, val interface{})

	// RecordMetric asks the provider to emit the metric when the span ends.
	RecordMetric(metric Metric)

	// End sends the span. It must not be used afterwards.
	End()
}

type providerKey struct{}

// WithProvider returns a context carrying p.
func WithProvider(ctx context.Context, p Provider) context.Context {
	return context.WithValue(ctx, providerKey{}, p)
}

// FromContext returns the provider in ctx, or a no-op provider.
func FromContext(ctx context.Context) Provider {
	if p, ok := ctx.Value(providerKey{}).(Provider); ok {
		return p
	}
	return defaultProvider
}

func StartSpan(ctx context.Context, name string) (context.Context, Span) {
	return FromContext(ctx).StartSpan(ctx, name)
}

func AddField(ctx context.Context, key string, val interface{}) {
	FromContext(ctx).AddField(ctx, key, val)
}

func AddFieldToTrace(ctx context.Context, key string, val interface{}) {
	FromContext(ctx).AddFieldToTrace(ctx, key, val)
}

func Log(ctx context.Context, name string, fields ...Pair) {
	FromContext(ctx).Log(ctx, name, fields...)
}

// Pair is a named value attached to a logged event.
type Pair struct {
	Key   string
	Value interface{}
}

func Field(key string, value interface{}) Pair {
	return Pair{Key: key, Value: value}
}

package o11y

import (
	"io"
)

type MetricType string

const (
	MetricTimer = "timer"
	MetricGauge = "gauge"
	MetricCount = "count"
)

// Metric describes a metric to derive from a span's fields when it ends.
type Metric struct {
	Type MetricType
	Name string
	// Field holds the value, it is optional for counts.
	Field string
	// FixedTag is added to every emitted value.
	FixedTag *Tag
	// TagFields name the span fields to tag the metric with.
	TagFields []string
}

type Tag struct {
	Name  string
	Value interface{}
}

func NewTag(name string, value interface{}) *Tag {
	return &Tag{Name: name, Value: value}
}

// Timing times the span, tagged with the given fields.
func Timing(name string, tagFields ...string) Metric {
	return Metric{Type: MetricTimer, Name: name, Field: "duration_ms", TagFields: tagFields}
}

// Incr counts the span once.
func Incr(name string, tagFields ...string) Metric {
	return Metric{Type: MetricCount, Name: name, TagFields: tagFields}
}

func Gauge(name, valueField string, tagFields ...string) Metric {
	return Metric{Type: MetricGauge, Name: name, Field: valueField, TagFields: tagFields}
}

// Count adds the value of valueField to the named counter.
func Count(name, valueField string, fixedTag *Tag, tagFields ...string) Metric {
	return Metric{Type: MetricCount, Name: name, Field: valueField, FixedTag: fixedTag, TagFields: tagFields}
}

// MetricsProvider is the subset of the statsd client used to emit metrics directly.
type MetricsProvider interface {
	// Histogram aggregates values on the agent, e.g. queries per request.
	Histogram(name string, value float64, tags []string, rate float64) error
	TimeInMilliseconds(name string, value float64, tags []string, rate float64) error
	Gauge(name string, value float64, tags []string, rate float64) error
	Count(name string, value int64, tags []string, rate float64) error
}

type ClosableMetricsProvider interface {
	MetricsProvider
	io.Closer
}

package honeycomb

import (
	"fmt"
	"time"

	"github.com/circleci/mongoprofiler/o11y"
)

const metricKey = "__MAGIC_METRIC_KEY__"

// spanMetrics emits the metrics recorded on a span when it is sent.
type spanMetrics struct {
	provider o11y.MetricsProvider
}

// hook strips the stashed metrics from the span fields, emitting them if there is a provider.
func (m spanMetrics) hook(fields map[string]interface{}) {
	metrics, _ := fields[metricKey].([]o11y.Metric)
	delete(fields, metricKey)
	if m.provider == nil {
		return
	}

	if _, ok := fields["error"]; ok {
		_ = m.provider.Count("error", 1, []string{tag("type", "o11y")}, 1)
	}
	for _, metric := range metrics {
		m.emit(metric, fields)
	}
}

func (m spanMetrics) emit(metric o11y.Metric, fields map[string]interface{}) {
	tags := make([]string, 0, len(metric.TagFields))
	for _, name := range metric.TagFields {
		if v, ok := field(fields, name); ok {
			tags = append(tags, tag(name, v))
		}
	}

	switch metric.Type {
	case o11y.MetricTimer:
		v, ok := field(fields, metric.Field)
		if !ok {
			return
		}
		_ = m.provider.TimeInMilliseconds(metric.Name, mustConvert(metric.Field, v, asMillis), tags, 1)

	case o11y.MetricGauge:
		v, ok := field(fields, metric.Field)
		if !ok {
			return
		}
		_ = m.provider.Gauge(metric.Name, mustConvert(metric.Field, v, asFloat), tags, 1)

	case o11y.MetricCount:
		n := int64(1)
		if metric.Field != "" {
			v, ok := field(fields, metric.Field)
			if !ok {
				return
			}
			n = mustConvert(metric.Field, v, asInt)
		}
		if metric.FixedTag != nil {
			tags = append(tags, tag(metric.FixedTag.Name, metric.FixedTag.Value))
		}
		_ = m.provider.Count(metric.Name, n, tags, 1)
	}
}

// field looks up name, falling back to the "app." prefixed name AddField uses.
func field(fields map[string]interface{}, name string) (interface{}, bool) {
	if v, ok := fields[name]; ok {
		return v, true
	}
	v, ok := fields["app."+name]
	return v, ok
}

func tag(name string, v interface{}) string {
	return fmt.Sprintf("%s:%v", name, v)
}

// mustConvert panics when a metric is defined over a field of the wrong type.
func mustConvert[T any](name string, v interface{}, conv func(interface{}) (T, bool)) T {
	out, ok := conv(v)
	if !ok {
		panic(fmt.Sprintf("metric field %s has unusable value %v (%T)", name, v, v))
	}
	return out
}

func asInt(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}

func asFloat(v interface{}) (float64, bool) {
	if f, ok := v.(float64); ok {
		return f, true
	}
	n, ok := asInt(v)
	return float64(n), ok
}

func asMillis(v interface{}) (float64, bool) {
	if d, ok := v.(time.Duration); ok {
		return float64(d.Milliseconds()), true
	}
	return asFloat(v)
}

package statsd

import (
	"errors"
	"fmt"
	"strconv"
)

// MetricType is the type code written on the wire after the value.
type MetricType string

const (
	Count            MetricType = "c"
	Timing           MetricType = "ms"
	Gauge            MetricType = "g"
	Histogram        MetricType = "h"
	Distribution     MetricType = "d"
	Set              MetricType = "s"
	KeyValue         MetricType = "kv"
	EventType        MetricType = "_e"
	ServiceCheckType MetricType = "_sc"
)

var (
	// ErrMissingType is returned when a metric is built without a type.
	ErrMissingType = errors.New("statsd: metric type is required")
	// ErrMissingName is returned when a metric is built without a name.
	ErrMissingName = errors.New("statsd: metric name is required")
	// ErrInvalidSampleRate is returned for sample rates outside of (0, 1].
	ErrInvalidSampleRate = errors.New("statsd: sample rate must be within (0, 1]")
)

func (t MetricType) String() string {
	return string(t)
}

func (t MetricType) valid() bool {
	switch t {
	case Count, Timing, Gauge, Histogram, Distribution, Set, KeyValue, EventType, ServiceCheckType:
		return true
	}
	return false
}

// isTiming reports whether samples of this type are collected as a list of values.
func (t MetricType) isTiming() bool {
	return t == Timing || t == Distribution || t == Histogram
}

// Metric is a single sample, before it is rendered by a Builder.
type Metric struct {
	Type MetricType
	Name string
	// Values holds the numeric value(s). Packed timings carry more than one.
	Values []float64
	// StringValue holds the member of a set, or the text of an event.
	StringValue string
	SampleRate  float64
	Tags        []string
}

// NewMetric validates and builds a metric sample. value may be any integer or
// float type, a []float64 for packed timings, or a string for sets and events.
func NewMetric(t MetricType, name string, value interface{}, rate float64, tags []string) (*Metric, error) {
	if t == "" {
		return nil, ErrMissingType
	}
	if !t.valid() {
		return nil, fmt.Errorf("%w: unknown type %q", ErrUnsupportedType, t)
	}
	if name == "" {
		return nil, ErrMissingName
	}
	if rate == 0 {
		rate = 1
	}
	if rate < 0 || rate > 1 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSampleRate, rate)
	}
	m := &Metric{
		Type:       t,
		Name:       name,
		SampleRate: rate,
		Tags:       NormalizeTags(tags),
	}
	switch v := value.(type) {
	case string:
		m.StringValue = v
	case []float64:
		m.Values = v
	case float64:
		m.Values = []float64{v}
	case float32:
		m.Values = []float64{float64(v)}
	case int:
		m.Values = []float64{float64(v)}
	case int32:
		m.Values = []float64{float64(v)}
	case int64:
		m.Values = []float64{float64(v)}
	case uint64:
		m.Values = []float64{float64(v)}
	case nil:
		m.Values = []float64{1}
	default:
		return nil, fmt.Errorf("statsd: unsupported value type %T for metric %s", value, name)
	}
	return m, nil
}

// Value returns the first numeric value of the metric.
func (m *Metric) Value() float64 {
	if len(m.Values) == 0 {
		v, _ := strconv.ParseFloat(m.StringValue, 64)
		return v
	}
	return m.Values[0]
}

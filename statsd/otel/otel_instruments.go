package otel

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/embedded"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/statsd-instrument/instrument/statsd"
)

var errInvalidObserverKind = errors.New("unknown observer instrument kind")

func attrsToTags(set attribute.Set, resAttrs []attribute.KeyValue) []string {
	tags := make([]string, 0, set.Len()+len(resAttrs))
	for _, keyValue := range resAttrs {
		tags = append(tags, keyValueAttrToTag(keyValue))
	}
	iter := set.Iter()
	for iter.Next() {
		tags = append(tags, keyValueAttrToTag(iter.Attribute()))
	}
	return tags
}

func keyValueAttrToTag(keyValue attribute.KeyValue) string {
	return fmt.Sprintf("%s:%v", keyValue.Key, keyValue.Value.AsInterface())
}

// report sends one measurement of an instrument of the given kind.
func (m *meter) report(kind sdkmetric.InstrumentKind, name string, value float64, set attribute.Set) {
	client := m.cfg.client
	tags := statsd.Tags(attrsToTags(set, m.resAttrs)...)

	var err error
	switch kind {
	case sdkmetric.InstrumentKindCounter, sdkmetric.InstrumentKindUpDownCounter,
		sdkmetric.InstrumentKindObservableCounter, sdkmetric.InstrumentKindObservableUpDownCounter:
		err = client.Increment(name, value, tags)
	case sdkmetric.InstrumentKindGauge, sdkmetric.InstrumentKindObservableGauge:
		err = client.Gauge(name, value, tags)
	case sdkmetric.InstrumentKindHistogram:
		switch {
		case m.cfg.builder == nil || m.cfg.builder.Supports(statsd.Distribution):
			err = client.Distribution(name, value, tags)
		case m.cfg.builder.Supports(statsd.Histogram):
			err = client.Histogram(name, value, tags)
		default:
			err = client.Measure(name, value, tags)
		}
	default:
		err = errInvalidObserverKind
	}
	if err != nil {
		m.cfg.errHandler(err)
	}
}

type int64Inst struct {
	embedded.Int64Counter
	embedded.Int64UpDownCounter
	embedded.Int64Histogram
	embedded.Int64Gauge

	meter *meter
	instID
}

var _ otelmetric.Int64Counter = (*int64Inst)(nil)
var _ otelmetric.Int64UpDownCounter = (*int64Inst)(nil)
var _ otelmetric.Int64Histogram = (*int64Inst)(nil)
var _ otelmetric.Int64Gauge = (*int64Inst)(nil)

func (i *int64Inst) Add(_ context.Context, incr int64, options ...otelmetric.AddOption) {
	c := otelmetric.NewAddConfig(options)
	i.meter.report(i.Kind, i.Name, float64(incr), c.Attributes())
}

func (i *int64Inst) Record(_ context.Context, value int64, options ...otelmetric.RecordOption) {
	c := otelmetric.NewRecordConfig(options)
	i.meter.report(i.Kind, i.Name, float64(value), c.Attributes())
}

type float64Inst struct {
	embedded.Float64Counter
	embedded.Float64UpDownCounter
	embedded.Float64Histogram
	embedded.Float64Gauge

	meter *meter
	instID
}

var _ otelmetric.Float64Counter = (*float64Inst)(nil)
var _ otelmetric.Float64UpDownCounter = (*float64Inst)(nil)
var _ otelmetric.Float64Histogram = (*float64Inst)(nil)
var _ otelmetric.Float64Gauge = (*float64Inst)(nil)

func (i *float64Inst) Add(_ context.Context, incr float64, options ...otelmetric.AddOption) {
	c := otelmetric.NewAddConfig(options)
	i.meter.report(i.Kind, i.Name, incr, c.Attributes())
}

func (i *float64Inst) Record(_ context.Context, value float64, options ...otelmetric.RecordOption) {
	c := otelmetric.NewRecordConfig(options)
	i.meter.report(i.Kind, i.Name, value, c.Attributes())
}

// observable turns the cumulative values observed for counters into the
// deltas a statsd counter expects. Gauges are reported as observed.
type observable struct {
	meter *meter
	instID

	mu   sync.Mutex
	last map[attribute.Distinct]float64
}

func (o *observable) observe(value float64, options []otelmetric.ObserveOption) {
	set := otelmetric.NewObserveConfig(options).Attributes()
	if o.Kind == sdkmetric.InstrumentKindObservableGauge {
		o.meter.report(o.Kind, o.Name, value, set)
		return
	}

	o.mu.Lock()
	if o.last == nil {
		o.last = make(map[attribute.Distinct]float64)
	}
	key := set.Equivalent()
	delta := value - o.last[key]
	o.last[key] = value
	o.mu.Unlock()
	if delta != 0 {
		o.meter.report(o.Kind, o.Name, delta, set)
	}
}

type int64Observable struct {
	otelmetric.Int64Observable
	embedded.Int64Observer
	embedded.Int64ObservableCounter
	embedded.Int64ObservableUpDownCounter
	embedded.Int64ObservableGauge

	observable
}

func (o *int64Observable) Observe(value int64, options ...otelmetric.ObserveOption) {
	o.observe(float64(value), options)
}

type float64Observable struct {
	otelmetric.Float64Observable
	embedded.Float64Observer
	embedded.Float64ObservableCounter
	embedded.Float64ObservableUpDownCounter
	embedded.Float64ObservableGauge

	observable
}

func (o *float64Observable) Observe(value float64, options ...otelmetric.ObserveOption) {
	o.observe(value, options)
}

// observer is handed to callbacks registered with RegisterCallback. It only
// accepts the instruments the callback was registered for.
type observer struct {
	embedded.Observer
	meter   *meter
	allowed map[interface{}]struct{}
}

func (o *observer) ObserveInt64(obsrv otelmetric.Int64Observable, value int64, options ...otelmetric.ObserveOption) {
	inst, ok := obsrv.(*int64Observable)
	if _, registered := o.allowed[inst]; !ok || !registered {
		o.meter.cfg.errHandler(fmt.Errorf("observation of an instrument not registered with the callback: %T", obsrv))
		return
	}
	inst.observe(float64(value), options)
}

func (o *observer) ObserveFloat64(obsrv otelmetric.Float64Observable, value float64, options ...otelmetric.ObserveOption) {
	inst, ok := obsrv.(*float64Observable)
	if _, registered := o.allowed[inst]; !ok || !registered {
		o.meter.cfg.errHandler(fmt.Errorf("observation of an instrument not registered with the callback: %T", obsrv))
		return
	}
	inst.observe(value, options)
}

package otel

import (
	"context"
	"fmt"
	"sync"

	"github.com/tilinna/clock"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/embedded"
	"go.opentelemetry.io/otel/sdk/instrumentation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// instID are the identifying properties of an instrument.
type instID struct {
	Name        string
	Description string
	Kind        sdkmetric.InstrumentKind
	Unit        string
}

type meter struct {
	embedded.Meter
	cfg      Config
	scope    instrumentation.Scope
	resAttrs []attribute.KeyValue

	cacheInts          cacheWithErr[instID, *int64Inst]
	cacheFloats        cacheWithErr[instID, *float64Inst]
	int64Observables   cacheWithErr[instID, *int64Observable]
	float64Observables cacheWithErr[instID, *float64Observable]

	mu          sync.Mutex
	callbacks   map[int]func(context.Context) error
	nextID      int
	collecting  bool
	stopCollect chan struct{}
	stopped     bool
}

var _ otelmetric.Meter = (*meter)(nil)

func newMeter(s instrumentation.Scope, cfg Config) *meter {
	return &meter{
		cfg:         cfg,
		scope:       s,
		resAttrs:    cfg.res.Attributes(),
		callbacks:   make(map[int]func(context.Context) error),
		stopCollect: make(chan struct{}),
	}
}

func validateInstrumentName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: %s: is empty", sdkmetric.ErrInstrumentName, name)
	}
	if len(name) > 255 {
		return fmt.Errorf("%w: %s: longer than 255 characters", sdkmetric.ErrInstrumentName, name)
	}
	for i, c := range name {
		alpha := ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
		if i == 0 && !alpha {
			return fmt.Errorf("%w: %s: must start with a letter", sdkmetric.ErrInstrumentName, name)
		}
		if !alpha && !('0' <= c && c <= '9') && c != '_' && c != '.' && c != '-' && c != '/' {
			return fmt.Errorf("%w: %s: must only contain [A-Za-z0-9_.-/]", sdkmetric.ErrInstrumentName, name)
		}
	}
	return nil
}

func (m *meter) int64Instrument(id instID) (*int64Inst, error) {
	return m.cacheInts.Lookup(id, func() (*int64Inst, error) {
		return &int64Inst{instID: id, meter: m}, validateInstrumentName(id.Name)
	})
}

func (m *meter) float64Instrument(id instID) (*float64Inst, error) {
	return m.cacheFloats.Lookup(id, func() (*float64Inst, error) {
		return &float64Inst{instID: id, meter: m}, validateInstrumentName(id.Name)
	})
}

func (m *meter) Int64Counter(name string, options ...otelmetric.Int64CounterOption) (otelmetric.Int64Counter, error) {
	cfg := otelmetric.NewInt64CounterConfig(options...)
	return m.int64Instrument(instID{Name: name, Description: cfg.Description(), Unit: cfg.Unit(), Kind: sdkmetric.InstrumentKindCounter})
}

func (m *meter) Int64UpDownCounter(name string, options ...otelmetric.Int64UpDownCounterOption) (otelmetric.Int64UpDownCounter, error) {
	cfg := otelmetric.NewInt64UpDownCounterConfig(options...)
	return m.int64Instrument(instID{Name: name, Description: cfg.Description(), Unit: cfg.Unit(), Kind: sdkmetric.InstrumentKindUpDownCounter})
}

func (m *meter) Int64Histogram(name string, options ...otelmetric.Int64HistogramOption) (otelmetric.Int64Histogram, error) {
	cfg := otelmetric.NewInt64HistogramConfig(options...)
	return m.int64Instrument(instID{Name: name, Description: cfg.Description(), Unit: cfg.Unit(), Kind: sdkmetric.InstrumentKindHistogram})
}

func (m *meter) Int64Gauge(name string, options ...otelmetric.Int64GaugeOption) (otelmetric.Int64Gauge, error) {
	cfg := otelmetric.NewInt64GaugeConfig(options...)
	return m.int64Instrument(instID{Name: name, Description: cfg.Description(), Unit: cfg.Unit(), Kind: sdkmetric.InstrumentKindGauge})
}

func (m *meter) Float64Counter(name string, options ...otelmetric.Float64CounterOption) (otelmetric.Float64Counter, error) {
	cfg := otelmetric.NewFloat64CounterConfig(options...)
	return m.float64Instrument(instID{Name: name, Description: cfg.Description(), Unit: cfg.Unit(), Kind: sdkmetric.InstrumentKindCounter})
}

func (m *meter) Float64UpDownCounter(name string, options ...otelmetric.Float64UpDownCounterOption) (otelmetric.Float64UpDownCounter, error) {
	cfg := otelmetric.NewFloat64UpDownCounterConfig(options...)
	return m.float64Instrument(instID{Name: name, Description: cfg.Description(), Unit: cfg.Unit(), Kind: sdkmetric.InstrumentKindUpDownCounter})
}

func (m *meter) Float64Histogram(name string, options ...otelmetric.Float64HistogramOption) (otelmetric.Float64Histogram, error) {
	cfg := otelmetric.NewFloat64HistogramConfig(options...)
	return m.float64Instrument(instID{Name: name, Description: cfg.Description(), Unit: cfg.Unit(), Kind: sdkmetric.InstrumentKindHistogram})
}

func (m *meter) Float64Gauge(name string, options ...otelmetric.Float64GaugeOption) (otelmetric.Float64Gauge, error) {
	cfg := otelmetric.NewFloat64GaugeConfig(options...)
	return m.float64Instrument(instID{Name: name, Description: cfg.Description(), Unit: cfg.Unit(), Kind: sdkmetric.InstrumentKindGauge})
}

func (m *meter) Int64ObservableCounter(name string, options ...otelmetric.Int64ObservableCounterOption) (otelmetric.Int64ObservableCounter, error) {
	cfg := otelmetric.NewInt64ObservableCounterConfig(options...)
	id := instID{Name: name, Description: cfg.Description(), Unit: cfg.Unit(), Kind: sdkmetric.InstrumentKindObservableCounter}
	return m.int64ObservableInstrument(id, cfg.Callbacks())
}

func (m *meter) Int64ObservableUpDownCounter(name string, options ...otelmetric.Int64ObservableUpDownCounterOption) (otelmetric.Int64ObservableUpDownCounter, error) {
	cfg := otelmetric.NewInt64ObservableUpDownCounterConfig(options...)
	id := instID{Name: name, Description: cfg.Description(), Unit: cfg.Unit(), Kind: sdkmetric.InstrumentKindObservableUpDownCounter}
	return m.int64ObservableInstrument(id, cfg.Callbacks())
}

func (m *meter) Int64ObservableGauge(name string, options ...otelmetric.Int64ObservableGaugeOption) (otelmetric.Int64ObservableGauge, error) {
	cfg := otelmetric.NewInt64ObservableGaugeConfig(options...)
	id := instID{Name: name, Description: cfg.Description(), Unit: cfg.Unit(), Kind: sdkmetric.InstrumentKindObservableGauge}
	return m.int64ObservableInstrument(id, cfg.Callbacks())
}

func (m *meter) Float64ObservableCounter(name string, options ...otelmetric.Float64ObservableCounterOption) (otelmetric.Float64ObservableCounter, error) {
	cfg := otelmetric.NewFloat64ObservableCounterConfig(options...)
	id := instID{Name: name, Description: cfg.Description(), Unit: cfg.Unit(), Kind: sdkmetric.InstrumentKindObservableCounter}
	return m.float64ObservableInstrument(id, cfg.Callbacks())
}

func (m *meter) Float64ObservableUpDownCounter(name string, options ...otelmetric.Float64ObservableUpDownCounterOption) (otelmetric.Float64ObservableUpDownCounter, error) {
	cfg := otelmetric.NewFloat64ObservableUpDownCounterConfig(options...)
	id := instID{Name: name, Description: cfg.Description(), Unit: cfg.Unit(), Kind: sdkmetric.InstrumentKindObservableUpDownCounter}
	return m.float64ObservableInstrument(id, cfg.Callbacks())
}

func (m *meter) Float64ObservableGauge(name string, options ...otelmetric.Float64ObservableGaugeOption) (otelmetric.Float64ObservableGauge, error) {
	cfg := otelmetric.NewFloat64ObservableGaugeConfig(options...)
	id := instID{Name: name, Description: cfg.Description(), Unit: cfg.Unit(), Kind: sdkmetric.InstrumentKindObservableGauge}
	return m.float64ObservableInstrument(id, cfg.Callbacks())
}

func (m *meter) int64ObservableInstrument(id instID, callbacks []otelmetric.Int64Callback) (*int64Observable, error) {
	if m.int64Observables.HasKey(id) && len(callbacks) > 0 {
		warnRepeatedObservableCallbacks(m.cfg.errHandler, id)
	}
	return m.int64Observables.Lookup(id, func() (*int64Observable, error) {
		inst := &int64Observable{}
		inst.meter, inst.instID = m, id
		for _, callback := range callbacks {
			callback := callback
			m.addCallback(func(ctx context.Context) error { return callback(ctx, inst) })
		}
		return inst, validateInstrumentName(id.Name)
	})
}

func (m *meter) float64ObservableInstrument(id instID, callbacks []otelmetric.Float64Callback) (*float64Observable, error) {
	if m.float64Observables.HasKey(id) && len(callbacks) > 0 {
		warnRepeatedObservableCallbacks(m.cfg.errHandler, id)
	}
	return m.float64Observables.Lookup(id, func() (*float64Observable, error) {
		inst := &float64Observable{}
		inst.meter, inst.instID = m, id
		for _, callback := range callbacks {
			callback := callback
			m.addCallback(func(ctx context.Context) error { return callback(ctx, inst) })
		}
		return inst, validateInstrumentName(id.Name)
	})
}

func warnRepeatedObservableCallbacks(handler func(error), id instID) {
	handler(fmt.Errorf("repeated observable instrument creation with callbacks, ignoring new callbacks: use meter.RegisterCallback and Registration.Unregister to manage callbacks: Instrument{Name: %q, Description: %q, Kind: %q, Unit: %q}",
		id.Name, id.Description, "InstrumentKind"+id.Kind.String(), id.Unit,
	))
}

// addCallback registers f and starts the collection goroutine on first use.
func (m *meter) addCallback(f func(context.Context) error) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.callbacks[m.nextID] = f
	if !m.collecting && !m.stopped {
		m.collecting = true
		go m.collectLoop()
	}
	return m.nextID
}

func (m *meter) removeCallback(id int) {
	m.mu.Lock()
	delete(m.callbacks, id)
	m.mu.Unlock()
}

func (m *meter) RegisterCallback(f otelmetric.Callback, instruments ...otelmetric.Observable) (otelmetric.Registration, error) {
	if len(instruments) == 0 {
		return noopRegistration{}, nil
	}
	allowed := make(map[interface{}]struct{}, len(instruments))
	for _, inst := range instruments {
		switch o := inst.(type) {
		case *int64Observable:
			allowed[o] = struct{}{}
		case *float64Observable:
			allowed[o] = struct{}{}
		default:
			return nil, fmt.Errorf("invalid observable: %T is not from this meter", inst)
		}
	}
	obs := &observer{meter: m, allowed: allowed}
	id := m.addCallback(func(ctx context.Context) error { return f(ctx, obs) })
	return &registration{meter: m, id: id}, nil
}

func (m *meter) collectLoop() {
	ticker := clock.NewTicker(m.cfg.ctx, m.cfg.observerCollectionInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.collect()
		case <-m.stopCollect:
			return
		}
	}
}

// collect runs every registered callback once.
func (m *meter) collect() {
	ctx, cancel := context.WithTimeout(m.cfg.ctx, m.cfg.observerCollectionTimeout)
	defer cancel()

	m.mu.Lock()
	callbacks := make([]func(context.Context) error, 0, len(m.callbacks))
	for _, callback := range m.callbacks {
		callbacks = append(callbacks, callback)
	}
	m.mu.Unlock()

	for _, callback := range callbacks {
		if err := callback(ctx); err != nil {
			m.cfg.errHandler(err)
		}
	}
}

func (m *meter) stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.stopped {
		m.stopped = true
		close(m.stopCollect)
	}
}

type registration struct {
	embedded.Registration
	meter *meter
	id    int
}

func (r *registration) Unregister() error {
	r.meter.removeCallback(r.id)
	return nil
}

type noopRegistration struct {
	embedded.Registration
}

func (noopRegistration) Unregister() error { return nil }

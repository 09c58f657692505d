package statsd

import (
	"bytes"
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tilinna/clock"
	"github.com/twmb/murmur3"
)

var (
	// DefaultAggregationInterval is the default flush interval of the aggregator.
	DefaultAggregationInterval = 2 * time.Second
	// DefaultAggregationMaxValues bounds the number of samples a timing bucket holds.
	DefaultAggregationMaxValues = 250
)

const contextKeySeparator = ","

type contextKey [2]uint64

// bucket is the aggregated state of one name, tag set, prefix mode and type.
type bucket struct {
	metricType MetricType
	name       string
	tags       []string
	noPrefix   bool
	rate       float64
	value      float64
	values     []float64
}

// aggregator sums counters, keeps the last gauge value and collects timing
// samples, then emits one datagram per bucket every interval.
type aggregator struct {
	ctx       context.Context
	emit      func(datagram string)
	builder   func(noPrefix bool) *Builder
	interval  time.Duration
	maxValues int
	logger    logrus.FieldLogger

	mu        sync.Mutex
	keyBuffer *bytes.Buffer
	buckets   map[contextKey]*bucket
	flusher   *worker
	closed    bool
}

func newAggregator(ctx context.Context, emit func(string), builder func(noPrefix bool) *Builder, interval time.Duration, maxValues int, logger logrus.FieldLogger) *aggregator {
	a := &aggregator{
		ctx:       ctx,
		emit:      emit,
		builder:   builder,
		interval:  interval,
		maxValues: maxValues,
		logger:    logger.WithField("component", "aggregator"),
		keyBuffer: bytes.NewBuffer(make([]byte, 0, 256)),
		buckets:   make(map[contextKey]*bucket),
	}
	a.startFlusher(processID())
	return a
}

func (a *aggregator) startFlusher(pid int) {
	w := newWorker(pid)
	a.flusher = w
	go a.flushLoop(w, clock.NewTicker(a.ctx, a.interval))
}

func (a *aggregator) flushLoop(w *worker, ticker *clock.Ticker) {
	defer close(w.done)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			a.mu.Lock()
			ok := a.healthcheckLocked()
			if ok {
				a.flushLocked()
			}
			a.mu.Unlock()
			if !ok {
				return
			}
		case <-w.stop:
			return
		}
	}
}

// healthcheckLocked restarts the flush goroutine when it died or the process
// forked. After a fork the buckets describe the parent's measurements and are
// dropped. It returns false once the aggregator is closed. The caller holds
// the lock.
func (a *aggregator) healthcheckLocked() bool {
	if a.closed {
		return false
	}
	pid := processID()
	switch {
	case a.flusher.pid != pid:
		a.logger.WithField("buckets", len(a.buckets)).Debug("Restarting the flush goroutine after fork")
		a.flusher.abandon()
		a.buckets = make(map[contextKey]*bucket)
		a.startFlusher(pid)
	case !a.flusher.alive():
		a.logger.Debug("Restarting the flush goroutine")
		a.startFlusher(pid)
	}
	return true
}

func (a *aggregator) computeKey(t MetricType, name string, tags []string, noPrefix bool, rate float64) contextKey {
	a.keyBuffer.Reset()
	a.keyBuffer.WriteString(string(t))
	a.keyBuffer.WriteString(contextKeySeparator)
	a.keyBuffer.WriteString(name)
	a.keyBuffer.WriteString(contextKeySeparator)
	for _, tag := range tags {
		a.keyBuffer.WriteString(tag)
		a.keyBuffer.WriteString(contextKeySeparator)
	}
	if noPrefix {
		a.keyBuffer.WriteByte('!')
	}
	if t.isTiming() {
		a.keyBuffer.WriteString(strconv.FormatFloat(rate, 'g', -1, 64))
	}
	var key contextKey
	key[0], key[1] = murmur3.Sum128(a.keyBuffer.Bytes())
	return key
}

// lookup returns the bucket for the sample, creating it if needed. The caller
// holds the lock.
func (a *aggregator) lookup(t MetricType, name string, tags []string, noPrefix bool, rate float64) *bucket {
	name = NormalizeName(name)
	tags = sortTags(tags)
	key := a.computeKey(t, name, tags, noPrefix, rate)
	b, ok := a.buckets[key]
	if !ok {
		b = &bucket{metricType: t, name: name, tags: tags, noPrefix: noPrefix, rate: rate}
		a.buckets[key] = b
	}
	return b
}

func (a *aggregator) increment(name string, value float64, tags []string, noPrefix bool) error {
	a.mu.Lock()
	if !a.healthcheckLocked() {
		a.mu.Unlock()
		return a.emitDirect(Count, name, []float64{value}, 1, tags, noPrefix)
	}
	a.lookup(Count, name, tags, noPrefix, 1).value += value
	a.mu.Unlock()
	return nil
}

func (a *aggregator) gauge(name string, value float64, tags []string, noPrefix bool) error {
	a.mu.Lock()
	if !a.healthcheckLocked() {
		a.mu.Unlock()
		return a.emitDirect(Gauge, name, []float64{value}, 1, tags, noPrefix)
	}
	a.lookup(Gauge, name, tags, noPrefix, 1).value = value
	a.mu.Unlock()
	return nil
}

// aggregateTiming collects one sample of a timing type (ms, d or h). A bucket
// about to reach maxValues flushes every bucket first.
func (a *aggregator) aggregateTiming(t MetricType, name string, value float64, rate float64, tags []string, noPrefix bool) error {
	a.mu.Lock()
	if !a.healthcheckLocked() {
		a.mu.Unlock()
		return a.emitDirect(t, name, []float64{value}, rate, tags, noPrefix)
	}
	b := a.lookup(t, name, tags, noPrefix, rate)
	if len(b.values)+1 >= a.maxValues {
		a.flushLocked()
		b = a.lookup(t, name, tags, noPrefix, rate)
	}
	b.values = append(b.values, value)
	a.mu.Unlock()
	return nil
}

func (a *aggregator) emitDirect(t MetricType, name string, values []float64, rate float64, tags []string, noPrefix bool) error {
	datagram, err := a.builder(noPrefix).BuildPacked(t, name, values, rate, tags)
	if err != nil {
		return err
	}
	a.emit(datagram)
	return nil
}

func (a *aggregator) flush() {
	a.mu.Lock()
	a.flushLocked()
	a.mu.Unlock()
}

func (a *aggregator) flushLocked() {
	buckets := a.buckets
	a.buckets = make(map[contextKey]*bucket, len(buckets))
	for _, b := range buckets {
		var (
			datagram string
			err      error
		)
		builder := a.builder(b.noPrefix)
		switch {
		case b.metricType.isTiming():
			if len(b.values) == 0 {
				continue
			}
			datagram, err = builder.BuildPacked(b.metricType, b.name, b.values, b.rate, b.tags)
		default:
			datagram, err = builder.Build(b.metricType, b.name, b.value, 1, b.tags)
		}
		if err != nil {
			a.logger.WithError(err).WithField("metric", b.name).Error("Could not flush aggregated metric")
			continue
		}
		a.emit(datagram)
	}
}

// close flushes the buckets and stops the flush goroutine. Later calls emit
// directly.
func (a *aggregator) close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	a.flushLocked()
	a.flusher.abandon()
	a.mu.Unlock()
}

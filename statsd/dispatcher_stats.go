package statsd

import (
	"context"
	"sync"
	"time"

	"github.com/tilinna/clock"
)

// dispatcherStats accumulates send statistics between two flushes and emits
// them as metrics every interval.
type dispatcherStats struct {
	ctx      context.Context
	interval time.Duration
	builder  *Builder
	emit     func(datagram string)

	syncSendsMetric        string
	batchedSendsMetric     string
	avgBufferLengthMetric  string
	avgBatchedPacketMetric string
	avgBatchLengthMetric   string

	mu                   sync.Mutex
	since                time.Time
	synchronousSends     int64
	batchedSends         int64
	avgBufferLength      float64
	avgBatchedPacketSize float64
	avgBatchLength       float64
}

func newDispatcherStats(ctx context.Context, interval time.Duration, connType string, builder *Builder, emit func(string)) *dispatcherStats {
	prefix := "statsd_instrument.batched_" + connType + "_sink."
	return &dispatcherStats{
		ctx:                    ctx,
		interval:               interval,
		builder:                builder,
		emit:                   emit,
		syncSendsMetric:        prefix + "synchronous_sends",
		batchedSendsMetric:     prefix + "batched_sends",
		avgBufferLengthMetric:  prefix + "avg_buffer_length",
		avgBatchedPacketMetric: prefix + "avg_batched_packet_size",
		avgBatchLengthMetric:   prefix + "avg_batch_length",
		since:                  clock.FromContext(ctx).Now(),
	}
}

func (s *dispatcherStats) incrementSynchronousSends() {
	s.mu.Lock()
	s.synchronousSends++
	s.mu.Unlock()
}

// incrementBatchedSends folds one packet into the running averages.
func (s *dispatcherStats) incrementBatchedSends(bufferLen, packetSize, batchLen int) {
	s.mu.Lock()
	s.batchedSends++
	n := float64(s.batchedSends)
	s.avgBufferLength += (float64(bufferLen) - s.avgBufferLength) / n
	s.avgBatchedPacketSize += (float64(packetSize) - s.avgBatchedPacketSize) / n
	s.avgBatchLength += (float64(batchLen) - s.avgBatchLength) / n
	s.mu.Unlock()
}

// maybeFlush emits and resets the statistics once the interval has elapsed.
func (s *dispatcherStats) maybeFlush(force bool) {
	now := clock.FromContext(s.ctx).Now()

	s.mu.Lock()
	if !force && now.Sub(s.since) < s.interval {
		s.mu.Unlock()
		return
	}
	synchronousSends, batchedSends := s.synchronousSends, s.batchedSends
	avgBufferLength, avgBatchedPacketSize, avgBatchLength := s.avgBufferLength, s.avgBatchedPacketSize, s.avgBatchLength
	s.synchronousSends, s.batchedSends = 0, 0
	s.avgBufferLength, s.avgBatchedPacketSize, s.avgBatchLength = 0, 0, 0
	s.since = now
	s.mu.Unlock()

	s.send(Count, s.syncSendsMetric, float64(synchronousSends))
	s.send(Count, s.batchedSendsMetric, float64(batchedSends))
	s.send(Gauge, s.avgBufferLengthMetric, avgBufferLength)
	s.send(Gauge, s.avgBatchedPacketMetric, avgBatchedPacketSize)
	s.send(Gauge, s.avgBatchLengthMetric, avgBatchLength)
}

func (s *dispatcherStats) send(t MetricType, name string, value float64) {
	datagram, err := s.builder.Build(t, name, value, 1, nil)
	if err != nil {
		return
	}
	s.emit(datagram)
}

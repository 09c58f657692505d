package statsd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	// DefaultBufferCapacity is the default number of datagrams a BatchedSink queues.
	DefaultBufferCapacity = 5000
	// DefaultStatisticsInterval is the default interval between two emissions
	// of the dispatcher statistics. Zero disables them.
	DefaultStatisticsInterval = time.Duration(0)
	// DefaultShutdownWait is how long Close waits for the worker to drain.
	DefaultShutdownWait = 2 * time.Second
)

// BatchOptions configures a BatchedSink.
type BatchOptions struct {
	BufferCapacity     int
	MaxPacketSize      int
	StatisticsInterval time.Duration
	StatisticsBuilder  *Builder
	ShutdownWait       time.Duration
	Logger             logrus.FieldLogger
	Context            context.Context
}

// BatchOption is a functional option of NewBatchedSink.
type BatchOption func(*BatchOptions) error

func resolveBatchOptions(conn Connection, options []BatchOption) (*BatchOptions, error) {
	o := &BatchOptions{
		BufferCapacity:     DefaultBufferCapacity,
		MaxPacketSize:      conn.MaxPacketSize(),
		StatisticsInterval: DefaultStatisticsInterval,
		ShutdownWait:       DefaultShutdownWait,
		Context:            context.Background(),
	}
	for _, option := range options {
		if err := option(o); err != nil {
			return nil, err
		}
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	if o.StatisticsBuilder == nil {
		o.StatisticsBuilder, _ = NewBuilder("datadog", "", nil)
	}
	return o, nil
}

// WithBufferCapacity sets the number of datagrams that can be queued before
// producers fall back to synchronous sends.
func WithBufferCapacity(capacity int) BatchOption {
	return func(o *BatchOptions) error {
		if capacity < 1 {
			return fmt.Errorf("buffer capacity must be a positive number, got %d", capacity)
		}
		o.BufferCapacity = capacity
		return nil
	}
}

// WithMaxPacketSize overrides the packet size of the connection.
func WithMaxPacketSize(size int) BatchOption {
	return func(o *BatchOptions) error {
		if size < 1 {
			return fmt.Errorf("max packet size must be a positive number, got %d", size)
		}
		o.MaxPacketSize = size
		return nil
	}
}

// WithStatisticsInterval enables the dispatcher statistics.
func WithStatisticsInterval(interval time.Duration) BatchOption {
	return func(o *BatchOptions) error {
		if interval < 0 {
			return errors.New("statistics interval must not be negative")
		}
		o.StatisticsInterval = interval
		return nil
	}
}

// WithStatisticsBuilder sets the builder the statistics are rendered with.
func WithStatisticsBuilder(builder *Builder) BatchOption {
	return func(o *BatchOptions) error {
		o.StatisticsBuilder = builder
		return nil
	}
}

// WithShutdownWait bounds how long Close waits for queued datagrams to be sent.
func WithShutdownWait(wait time.Duration) BatchOption {
	return func(o *BatchOptions) error {
		o.ShutdownWait = wait
		return nil
	}
}

// WithSinkLogger sets the logger of the sink and its dispatcher.
func WithSinkLogger(logger logrus.FieldLogger) BatchOption {
	return func(o *BatchOptions) error {
		o.Logger = logger
		return nil
	}
}

// WithClockContext sets the context the statistics read their clock from,
// see github.com/tilinna/clock.
func WithClockContext(ctx context.Context) BatchOption {
	return func(o *BatchOptions) error {
		o.Context = ctx
		return nil
	}
}

// BatchedSink queues datagrams and has a background worker pack them into
// packets of at most the connection's packet size.
type BatchedSink struct {
	sink       *ConnectionSink
	dispatcher *dispatcher
	wait       time.Duration
}

var _ Sink = (*BatchedSink)(nil)

// NewBatchedSink returns a batching sink writing to conn.
func NewBatchedSink(conn Connection, options ...BatchOption) (*BatchedSink, error) {
	o, err := resolveBatchOptions(conn, options)
	if err != nil {
		return nil, err
	}
	sink := NewSink(conn, o.Logger)
	return &BatchedSink{
		sink:       sink,
		dispatcher: newDispatcher(o.Context, sink, o, conn.Type()),
		wait:       o.ShutdownWait,
	}, nil
}

// BatchedSinkForAddr returns a batching sink for addr, see NewConnection.
func BatchedSinkForAddr(addr string, options ...BatchOption) (*BatchedSink, error) {
	conn, err := NewConnection(addr)
	if err != nil {
		return nil, err
	}
	return NewBatchedSink(conn, options...)
}

// Connection returns the underlying connection.
func (s *BatchedSink) Connection() Connection { return s.sink.Connection() }

func (s *BatchedSink) Sample(rate float64) bool { return shouldSample(rate) }

// Emit queues the datagram. It is sent synchronously when the queue is full
// or the sink is shut down.
func (s *BatchedSink) Emit(datagram string) {
	s.dispatcher.enqueue(datagram)
}

// Flush drains the queue on the calling goroutine. It never waits for more
// datagrams, whatever blocking says.
func (s *BatchedSink) Flush(bool) {
	s.dispatcher.flush(false, nil)
}

// Shutdown stops the worker, waiting at most wait for it to drain the queue.
// Datagrams emitted afterwards are sent synchronously.
func (s *BatchedSink) Shutdown(wait time.Duration) {
	s.dispatcher.shutdown(wait)
	if s.dispatcher.stats != nil {
		s.dispatcher.stats.maybeFlush(true)
	}
}

// Close shuts the sink down and closes the connection.
func (s *BatchedSink) Close() error {
	s.Shutdown(s.wait)
	return s.sink.Close()
}

// SinkStats are the cumulative counters of a BatchedSink.
type SinkStats struct {
	SynchronousSends uint64
	BatchedSends     uint64
	QueueLength      int
	QueueCapacity    int
}

// Stats returns the counters accumulated since the sink was created.
func (s *BatchedSink) Stats() SinkStats {
	return SinkStats{
		SynchronousSends: s.dispatcher.synchronousSends.Load(),
		BatchedSends:     s.dispatcher.batchedSends.Load(),
		QueueLength:      len(s.dispatcher.queue),
		QueueCapacity:    cap(s.dispatcher.queue),
	}
}

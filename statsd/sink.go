package statsd

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// A Sink receives finished datagrams from a Client.
type Sink interface {
	// Sample decides whether a sample taken at rate should be emitted.
	Sample(rate float64) bool
	// Emit hands over one datagram, or a newline separated packet of them.
	// It never fails: transport errors are logged and the data is dropped.
	Emit(datagram string)
	// Flush sends whatever the sink buffers. Unbuffered sinks do nothing.
	Flush(blocking bool)
}

// ConnectionSink writes every datagram synchronously to a Connection.
type ConnectionSink struct {
	conn   Connection
	logger logrus.FieldLogger

	// mu serializes the send, invalidate, retry sequence.
	mu sync.Mutex
}

var _ Sink = (*ConnectionSink)(nil)

// NewSink returns a sink writing to conn. A nil logger uses the standard logrus logger.
func NewSink(conn Connection, logger logrus.FieldLogger) *ConnectionSink {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ConnectionSink{
		conn:   conn,
		logger: logger.WithField("component", "sink").WithField("transport", conn.Type()),
	}
}

// SinkForAddr returns a sink for addr, see NewConnection for the address forms.
func SinkForAddr(addr string, logger logrus.FieldLogger) (*ConnectionSink, error) {
	conn, err := NewConnection(addr)
	if err != nil {
		return nil, err
	}
	return NewSink(conn, logger), nil
}

// Connection returns the underlying connection.
func (s *ConnectionSink) Connection() Connection { return s.conn }

func (s *ConnectionSink) Sample(rate float64) bool { return shouldSample(rate) }

// Emit sends the datagram, retrying once on a fresh socket after a failure.
// Concurrent callers wait for each other.
func (s *ConnectionSink) Emit(datagram string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	packet := []byte(datagram)
	err := s.conn.Send(packet)
	if err == nil {
		return
	}
	s.logger.WithError(err).Debug("Resetting connection")
	s.conn.Close()
	if err = s.conn.Send(packet); err != nil {
		s.logger.WithError(err).WithField("size", len(packet)).Warn("Events were dropped (after retrying)")
		s.conn.Close()
	}
}

func (s *ConnectionSink) Flush(bool) {}

// Close discards the socket.
func (s *ConnectionSink) Close() error {
	return s.conn.Close()
}

var _ io.Closer = (*ConnectionSink)(nil)

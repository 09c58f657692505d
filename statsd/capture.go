package statsd

import "sync"

// CaptureSink records every datagram it receives, then forwards it to its
// parent. It samples everything so captured output does not depend on luck.
type CaptureSink struct {
	parent Sink
	wrap   func(string) *Datagram

	mu        sync.Mutex
	datagrams []*Datagram
}

var _ Sink = (*CaptureSink)(nil)

// NewCaptureSink captures in front of parent, which may be nil. Datagrams are
// parsed with builder's dialect, or the DogStatsD grammar when builder is nil.
func NewCaptureSink(parent Sink, builder *Builder) *CaptureSink {
	s := &CaptureSink{parent: parent, wrap: NewDatagram}
	if builder != nil {
		s.wrap = builder.NewDatagram
	}
	return s
}

// Parent returns the sink datagrams are forwarded to.
func (s *CaptureSink) Parent() Sink { return s.parent }

func (s *CaptureSink) Sample(float64) bool { return true }

func (s *CaptureSink) Emit(datagram string) {
	s.mu.Lock()
	s.datagrams = append(s.datagrams, s.wrap(datagram))
	s.mu.Unlock()
	if s.parent != nil {
		s.parent.Emit(datagram)
	}
}

func (s *CaptureSink) Flush(blocking bool) {
	if s.parent != nil {
		s.parent.Flush(blocking)
	}
}

// Datagrams returns a copy of everything captured so far.
func (s *CaptureSink) Datagrams() []*Datagram {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Datagram, len(s.datagrams))
	copy(out, s.datagrams)
	return out
}

// Clear forgets the captured datagrams.
func (s *CaptureSink) Clear() {
	s.mu.Lock()
	s.datagrams = nil
	s.mu.Unlock()
}

package statsd

// NullSink drops everything. Sample always returns false, so clients skip
// building datagrams altogether.
type NullSink struct{}

var _ Sink = NullSink{}

func (NullSink) Sample(float64) bool { return false }

func (NullSink) Emit(string) {}

func (NullSink) Flush(bool) {}

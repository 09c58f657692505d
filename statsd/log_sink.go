package statsd

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// LogSink writes datagrams to a logger instead of the network. It is the
// default outside of production, staging and test environments.
type LogSink struct {
	logger logrus.FieldLogger
	level  logrus.Level
}

var _ Sink = (*LogSink)(nil)

// NewLogSink logs at debug level. A nil logger uses the standard logrus logger.
func NewLogSink(logger logrus.FieldLogger) *LogSink {
	return NewLogSinkWithLevel(logger, logrus.DebugLevel)
}

// NewLogSinkWithLevel logs every datagram at level. TraceLevel needs a logger
// implementing logrus.Ext1FieldLogger, other loggers get debug entries.
// Levels above error (fatal, panic) log at error.
func NewLogSinkWithLevel(logger logrus.FieldLogger, level logrus.Level) *LogSink {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogSink{logger: logger, level: level}
}

func (s *LogSink) Sample(rate float64) bool { return shouldSample(rate) }

// Emit logs "[StatsD] <datagram>", one line per datagram of a packet.
func (s *LogSink) Emit(datagram string) {
	for _, line := range strings.Split(strings.TrimRight(datagram, "\n"), "\n") {
		if len(line) == 0 {
			continue
		}
		switch {
		case s.level >= logrus.TraceLevel:
			if tracer, ok := s.logger.(logrus.Ext1FieldLogger); ok {
				tracer.Trace("[StatsD] " + line)
			} else {
				s.logger.Debug("[StatsD] " + line)
			}
		case s.level == logrus.DebugLevel:
			s.logger.Debug("[StatsD] " + line)
		case s.level == logrus.InfoLevel:
			s.logger.Info("[StatsD] " + line)
		case s.level == logrus.WarnLevel:
			s.logger.Warn("[StatsD] " + line)
		default:
			s.logger.Error("[StatsD] " + line)
		}
	}
}

func (s *LogSink) Flush(bool) {}

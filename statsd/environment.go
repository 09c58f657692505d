package statsd

import (
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Configuration keys of an Environment, each bound to a STATSD_* variable.
const (
	ParamEnvironment         = "env"
	ParamAddr                = "addr"
	ParamImplementation      = "implementation"
	ParamSampleRate          = "sample-rate"
	ParamPrefix              = "prefix"
	ParamDefaultTags         = "default-tags"
	ParamEnableAggregation   = "enable-aggregation"
	ParamAggregationInterval = "aggregation-interval"
	ParamBufferCapacity      = "buffer-capacity"
	ParamMaxPacketSize       = "max-packet-size"
	ParamStatisticsInterval  = "batch-statistics-interval"
	ParamFlushInterval       = "flush-interval"
)

var environmentVariables = map[string][]string{
	ParamEnvironment:         {"STATSD_ENV", "RAILS_ENV", "RACK_ENV", "ENV"},
	ParamAddr:                {"STATSD_ADDR"},
	ParamImplementation:      {"STATSD_IMPLEMENTATION"},
	ParamSampleRate:          {"STATSD_SAMPLE_RATE"},
	ParamPrefix:              {"STATSD_PREFIX"},
	ParamDefaultTags:         {"STATSD_DEFAULT_TAGS"},
	ParamEnableAggregation:   {"STATSD_ENABLE_AGGREGATION"},
	ParamAggregationInterval: {"STATSD_AGGREGATION_INTERVAL"},
	ParamBufferCapacity:      {"STATSD_BUFFER_CAPACITY"},
	ParamMaxPacketSize:       {"STATSD_MAX_PACKET_SIZE"},
	ParamStatisticsInterval:  {"STATSD_BATCH_STATISTICS_INTERVAL"},
	ParamFlushInterval:       {"STATSD_FLUSH_INTERVAL"},
}

// Environment reads the client configuration from STATSD_* environment
// variables, or from any source a viper instance is fed with.
type Environment struct {
	v *viper.Viper
}

// NewEnvironment returns an environment backed by the process environment.
func NewEnvironment() *Environment {
	return NewEnvironmentFromViper(viper.New())
}

// NewEnvironmentFromViper binds the STATSD_* variables on v and sets the
// defaults of the keys v has no value for.
func NewEnvironmentFromViper(v *viper.Viper) *Environment {
	for key, names := range environmentVariables {
		input := append([]string{key}, names...)
		_ = v.BindEnv(input...)
	}
	v.SetDefault(ParamEnvironment, "development")
	v.SetDefault(ParamAddr, "localhost:8125")
	v.SetDefault(ParamImplementation, DefaultImplementation)
	v.SetDefault(ParamSampleRate, DefaultSampleRate)
	v.SetDefault(ParamAggregationInterval, DefaultAggregationInterval)
	v.SetDefault(ParamBufferCapacity, DefaultBufferCapacity)
	v.SetDefault(ParamFlushInterval, time.Second)
	return &Environment{v: v}
}

// Name is the runtime environment: production, staging, test, development...
func (e *Environment) Name() string { return e.v.GetString(ParamEnvironment) }

func (e *Environment) Addr() string { return e.v.GetString(ParamAddr) }

func (e *Environment) Implementation() string { return e.v.GetString(ParamImplementation) }

func (e *Environment) SampleRate() float64 { return e.v.GetFloat64(ParamSampleRate) }

func (e *Environment) Prefix() string { return e.v.GetString(ParamPrefix) }

// DefaultTags splits STATSD_DEFAULT_TAGS on commas.
func (e *Environment) DefaultTags() []string {
	raw := e.v.GetString(ParamDefaultTags)
	if raw == "" {
		return nil
	}
	tags := strings.Split(raw, ",")
	for i := range tags {
		tags[i] = strings.TrimSpace(tags[i])
	}
	return tags
}

func (e *Environment) AggregationEnabled() bool { return e.v.GetBool(ParamEnableAggregation) }

// AggregationInterval accepts a duration ("500ms") or a number of seconds.
func (e *Environment) AggregationInterval() time.Duration {
	return e.duration(ParamAggregationInterval)
}

func (e *Environment) BufferCapacity() int { return e.v.GetInt(ParamBufferCapacity) }

// MaxPacketSize is 0 when unset, meaning the connection's default.
func (e *Environment) MaxPacketSize() int { return e.v.GetInt(ParamMaxPacketSize) }

func (e *Environment) StatisticsInterval() time.Duration {
	return e.duration(ParamStatisticsInterval)
}

// FlushInterval of 0 disables batching.
func (e *Environment) FlushInterval() time.Duration {
	return e.duration(ParamFlushInterval)
}

func (e *Environment) duration(key string) time.Duration {
	if raw, ok := e.v.Get(key).(string); ok {
		if seconds, err := strconv.ParseFloat(raw, 64); err == nil {
			return time.Duration(seconds * float64(time.Second))
		}
	}
	return e.v.GetDuration(key)
}

// DefaultSink picks the sink for the runtime environment: datagrams go to
// Addr in production and staging, are dropped in test and logged otherwise.
func (e *Environment) DefaultSink(logger logrus.FieldLogger) (Sink, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	switch e.Name() {
	case "production", "staging":
		if e.FlushInterval() <= 0 {
			return SinkForAddr(e.Addr(), logger)
		}
		options := []BatchOption{
			WithBufferCapacity(e.BufferCapacity()),
			WithStatisticsInterval(e.StatisticsInterval()),
			WithSinkLogger(logger),
		}
		if size := e.MaxPacketSize(); size > 0 {
			options = append(options, WithMaxPacketSize(size))
		}
		return BatchedSinkForAddr(e.Addr(), options...)
	case "test":
		return NullSink{}, nil
	default:
		return NewLogSink(logger), nil
	}
}

// Options returns the client options the environment describes. Options
// passed to New after them take precedence.
func (e *Environment) Options(logger logrus.FieldLogger) ([]Option, error) {
	sink, err := e.DefaultSink(logger)
	if err != nil {
		return nil, err
	}
	options := []Option{
		WithSink(sink),
		WithImplementation(e.Implementation()),
		WithPrefix(e.Prefix()),
		WithDefaultTags(e.DefaultTags()...),
		WithDefaultSampleRate(e.SampleRate()),
	}
	if logger != nil {
		options = append(options, WithLogger(logger))
	}
	if e.AggregationEnabled() {
		options = append(options, WithAggregation(e.AggregationInterval()))
	}
	return options, nil
}

// Client builds a client from the environment, see NewFromEnvironment.
func (e *Environment) Client(options ...Option) (*Client, error) {
	return NewFromEnvironment(e, options...)
}

// NewFromEnvironment builds a client configured by env, then by options.
func NewFromEnvironment(env *Environment, options ...Option) (*Client, error) {
	base, err := env.Options(nil)
	if err != nil {
		return nil, err
	}
	return New(append(base, options...)...)
}

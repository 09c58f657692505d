package statsd

import (
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ErrInvalidDatagram is wrapped by every parse failure.
var ErrInvalidDatagram = errors.New("statsd: invalid datagram")

// parseFunc turns datagram source text into its fields. Each dialect brings
// its own; parseDogStatsD understands the generic and DogStatsD grammars.
type parseFunc func(source string) (*datagramFields, error)

type datagramFields struct {
	metricType MetricType
	name       string
	value      string
	sampleRate float64
	tags       []string

	hostname       string
	timestamp      int64
	aggregationKey string
	priority       string
	sourceTypeName string
	alertType      string
	message        string
}

// Datagram is the wire form of a single sample. The source is parsed lazily
// the first time a field is read. Two datagrams are equal when their sources
// are equal.
type Datagram struct {
	source string
	parse  parseFunc

	once   sync.Once
	fields *datagramFields
	err    error
}

// NewDatagram wraps source without parsing it.
func NewDatagram(source string) *Datagram {
	return &Datagram{source: source, parse: parseDogStatsD}
}

// ParseDatagram wraps and eagerly parses source with the DogStatsD grammar,
// which also accepts plain StatsD datagrams.
func ParseDatagram(source string) (*Datagram, error) {
	d := NewDatagram(source)
	if err := d.Parse(); err != nil {
		return nil, err
	}
	return d, nil
}

func newDatagramWith(source string, parse parseFunc) *Datagram {
	return &Datagram{source: source, parse: parse}
}

// Parse parses the source if needed and reports whether it was well formed.
func (d *Datagram) Parse() error {
	d.once.Do(func() {
		d.fields, d.err = d.parse(d.source)
		if d.err != nil {
			d.fields = &datagramFields{}
		}
	})
	return d.err
}

func (d *Datagram) parsed() *datagramFields {
	d.Parse()
	return d.fields
}

// Source returns the raw text of the datagram.
func (d *Datagram) Source() string { return d.source }

func (d *Datagram) String() string { return d.source }

// Equal compares the source text of both datagrams.
func (d *Datagram) Equal(other *Datagram) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.source == other.source
}

func (d *Datagram) Type() MetricType { return d.parsed().metricType }

// Name returns the metric name, or the title for events.
func (d *Datagram) Name() string { return d.parsed().name }

// Value returns the raw value. Events carry their text here, service checks
// their status code.
func (d *Datagram) Value() string { return d.parsed().value }

// Values parses the value as one or more ":" separated numbers.
func (d *Datagram) Values() ([]float64, error) {
	raw := d.parsed().value
	if raw == "" {
		return nil, d.err
	}
	parts := strings.Split(raw, ":")
	values := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// SampleRate defaults to 1 when the datagram has no "|@" section.
func (d *Datagram) SampleRate() float64 {
	if r := d.parsed().sampleRate; r > 0 {
		return r
	}
	return 1
}

func (d *Datagram) Tags() []string { return d.parsed().tags }

func (d *Datagram) Hostname() string { return d.parsed().hostname }

// Timestamp returns the zero time when the datagram carries none.
func (d *Datagram) Timestamp() time.Time {
	if ts := d.parsed().timestamp; ts != 0 {
		return time.Unix(ts, 0).UTC()
	}
	return time.Time{}
}

func (d *Datagram) AggregationKey() string { return d.parsed().aggregationKey }

func (d *Datagram) Priority() string { return d.parsed().priority }

func (d *Datagram) SourceTypeName() string { return d.parsed().sourceTypeName }

func (d *Datagram) AlertType() string { return d.parsed().alertType }

func (d *Datagram) Message() string { return d.parsed().message }

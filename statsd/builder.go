package statsd

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedType is wrapped when a dialect cannot encode a metric type.
	ErrUnsupportedType = errors.New("statsd: metric type not supported")
	// ErrTagsNotSupported is returned by dialects without a tag syntax.
	ErrTagsNotSupported = errors.New("statsd: tags are not supported")
	// ErrUnknownImplementation is returned for an unknown dialect name.
	ErrUnknownImplementation = errors.New("statsd: unknown implementation")
)

// dialect encodes the parts of a datagram that differ between StatsD flavours.
type dialect interface {
	name() string
	supports(t MetricType) bool
	latencyType() MetricType
	// appendMetric writes one datagram. name is normalized, tags are the
	// normalized default tags followed by the call tags.
	appendMetric(buffer []byte, prefix, name string, t MetricType, value []byte, rate float64, globalTags, tags []string) []byte
	parse(source string) (*datagramFields, error)
}

// tagless dialects have no syntax to carry tags.
type tagless interface {
	rejectsTags()
}

// Builder renders samples into datagrams of one dialect. It is safe for
// concurrent use.
type Builder struct {
	impl        string
	dialect     dialect
	prefix      string
	defaultTags []string
}

// NewBuilder returns a builder for implementation ("datadog", "statsd",
// "statsite", "graphite", "influxdb", "opentsdb" or "msgpack"). prefix is
// prepended to every name, followed by a dot.
func NewBuilder(implementation string, prefix string, defaultTags []string) (*Builder, error) {
	d, err := dialectFor(implementation)
	if err != nil {
		return nil, err
	}
	b := &Builder{
		impl:        implementation,
		dialect:     d,
		defaultTags: NormalizeTags(defaultTags),
	}
	if prefix != "" {
		b.prefix = NormalizeName(prefix) + "."
	}
	if _, ok := d.(tagless); ok && len(b.defaultTags) != 0 {
		return nil, fmt.Errorf("%w by %s", ErrTagsNotSupported, d.name())
	}
	return b, nil
}

func dialectFor(implementation string) (dialect, error) {
	switch implementation {
	case "datadog", "dogstatsd", "":
		return dogStatsD{}, nil
	case "statsd", "etsy":
		return classicStatsD{}, nil
	case "statsite":
		return statsite{}, nil
	case "graphite":
		return graphite{}, nil
	case "influxdb":
		return influxDB{}, nil
	case "opentsdb":
		return openTSDB{}, nil
	case "msgpack":
		return messagePack{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownImplementation, implementation)
}

// Implementation returns the name the builder was created with.
func (b *Builder) Implementation() string { return b.impl }

// Prefix returns the normalized prefix including its trailing dot.
func (b *Builder) Prefix() string { return b.prefix }

// DefaultTags returns the normalized default tags.
func (b *Builder) DefaultTags() []string { return b.defaultTags }

// LatencyType is the type used for timed blocks: "d" for DogStatsD, "ms" elsewhere.
func (b *Builder) LatencyType() MetricType { return b.dialect.latencyType() }

// Supports reports whether the dialect can encode t.
func (b *Builder) Supports(t MetricType) bool { return b.dialect.supports(t) }

func (b *Builder) checkMetric(t MetricType, tags []string) error {
	if t == EventType || t == ServiceCheckType {
		return fmt.Errorf("%w: %s datagrams are built with Event and ServiceCheck", ErrUnsupportedType, t)
	}
	return b.check(t, tags)
}

func (b *Builder) check(t MetricType, tags []string) error {
	if !b.dialect.supports(t) {
		return fmt.Errorf("%w: type %s metrics are not supported by %s", ErrUnsupportedType, t, b.dialect.name())
	}
	if _, ok := b.dialect.(tagless); ok && len(tags) != 0 {
		return fmt.Errorf("%w by %s", ErrTagsNotSupported, b.dialect.name())
	}
	return nil
}

// Build renders a single numeric sample.
func (b *Builder) Build(t MetricType, name string, value float64, rate float64, tags []string) (string, error) {
	if err := b.checkMetric(t, tags); err != nil {
		return "", err
	}
	var scratch [32]byte
	return b.render(t, name, appendValue(scratch[:0], value), rate, tags), nil
}

// BuildSet renders a set sample; member is written verbatim.
func (b *Builder) BuildSet(name string, member string, rate float64, tags []string) (string, error) {
	if err := b.checkMetric(Set, tags); err != nil {
		return "", err
	}
	return b.render(Set, name, []byte(member), rate, tags), nil
}

// BuildPacked renders several samples of a timing type as one datagram:
// name:1:2:3|d.
func (b *Builder) BuildPacked(t MetricType, name string, values []float64, rate float64, tags []string) (string, error) {
	if err := b.checkMetric(t, tags); err != nil {
		return "", err
	}
	if len(values) == 0 {
		return "", fmt.Errorf("statsd: no values to pack for %s", name)
	}
	return b.render(t, name, appendValues(make([]byte, 0, 8*len(values)), values), rate, tags), nil
}

func (b *Builder) render(t MetricType, name string, value []byte, rate float64, tags []string) string {
	buffer := make([]byte, 0, 64+len(name)+len(value))
	buffer = b.dialect.appendMetric(buffer, b.prefix, NormalizeName(name), t, value, rate, b.defaultTags, NormalizeTags(tags))
	return string(buffer)
}

// Event renders a DogStatsD event. The prefix is prepended to the title.
func (b *Builder) Event(e *Event) (string, error) {
	if err := b.check(EventType, nil); err != nil {
		return "", err
	}
	if err := e.Check(); err != nil {
		return "", err
	}
	return string(appendEvent(make([]byte, 0, 128), b.prefix, e, b.defaultTags)), nil
}

// ServiceCheck renders a DogStatsD service check.
func (b *Builder) ServiceCheck(sc *ServiceCheck) (string, error) {
	if err := b.check(ServiceCheckType, nil); err != nil {
		return "", err
	}
	if err := sc.Check(); err != nil {
		return "", err
	}
	return string(appendServiceCheck(make([]byte, 0, 64), b.prefix, sc, b.defaultTags)), nil
}

// Parse parses a datagram produced by this builder's dialect.
func (b *Builder) Parse(source string) (*Datagram, error) {
	d := b.NewDatagram(source)
	if err := d.Parse(); err != nil {
		return nil, err
	}
	return d, nil
}

// NewDatagram wraps source for lazy parsing with this builder's dialect.
func (b *Builder) NewDatagram(source string) *Datagram {
	return newDatagramWith(source, b.dialect.parse)
}

// appendGeneric writes name:value|type|@rate|#tags.
func appendGeneric(buffer []byte, prefix, name string, t MetricType, value []byte, rate float64, globalTags, tags []string) []byte {
	buffer = appendHeader(buffer, prefix, name)
	buffer = append(buffer, ':')
	buffer = append(buffer, value...)
	buffer = appendType(buffer, t)
	buffer = appendRate(buffer, rate)
	return appendTags(buffer, globalTags, tags)
}

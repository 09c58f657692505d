package statsd

import (
	"strings"
)

// graphite carries tags in the name: name;key=value;other=value:1|c
type graphite struct{}

var graphiteTagReplacer = strings.NewReplacer(";", "_", "!", "_", "^", "_", "=", "_")

func (graphite) name() string { return "Graphite" }

func (graphite) supports(t MetricType) bool {
	switch t {
	case Count, Gauge, Timing, Set:
		return true
	}
	return false
}

func (graphite) latencyType() MetricType { return Timing }

func graphiteTag(tag string) string {
	tag = graphiteTagReplacer.Replace(tag)
	key, value, ok := strings.Cut(tag, ":")
	if !ok {
		return tag
	}
	return key + "=" + strings.ReplaceAll(value, ":", "_")
}

func (graphite) appendMetric(buffer []byte, prefix, name string, t MetricType, value []byte, rate float64, globalTags, tags []string) []byte {
	buffer = appendHeader(buffer, prefix, name)
	for _, tag := range globalTags {
		buffer = append(buffer, ';')
		buffer = appendWithoutNewlines(buffer, graphiteTag(tag))
	}
	for _, tag := range tags {
		buffer = append(buffer, ';')
		buffer = appendWithoutNewlines(buffer, graphiteTag(tag))
	}
	buffer = append(buffer, ':')
	buffer = append(buffer, value...)
	buffer = appendType(buffer, t)
	return appendRate(buffer, rate)
}

func (graphite) parse(source string) (*datagramFields, error) {
	return parseMetricLine(source, func(name string) (string, []string, error) {
		parts := strings.Split(name, ";")
		if len(parts) == 1 {
			return name, nil, nil
		}
		tags := make([]string, 0, len(parts)-1)
		for _, p := range parts[1:] {
			tags = append(tags, strings.Replace(p, "=", ":", 1))
		}
		return parts[0], tags, nil
	})
}

// influxDB appends tags to the name after a hash: name#key=value,b:1|c
type influxDB struct{}

// influxTag writes key:value as key=value so the name holds no colon.
func influxTag(tag string) string {
	key, value, ok := strings.Cut(tag, ":")
	if !ok {
		return tag
	}
	return key + "=" + strings.ReplaceAll(value, ":", "_")
}

func (influxDB) name() string { return "InfluxDB" }

func (influxDB) supports(t MetricType) bool {
	switch t {
	case Count, Gauge, Timing, Set, Histogram:
		return true
	}
	return false
}

func (influxDB) latencyType() MetricType { return Timing }

func (influxDB) appendMetric(buffer []byte, prefix, name string, t MetricType, value []byte, rate float64, globalTags, tags []string) []byte {
	buffer = appendHeader(buffer, prefix, name)
	sep := byte('#')
	for _, list := range [2][]string{globalTags, tags} {
		for _, tag := range list {
			buffer = append(buffer, sep)
			buffer = appendWithoutNewlines(buffer, influxTag(tag))
			sep = ','
		}
	}
	buffer = append(buffer, ':')
	buffer = append(buffer, value...)
	buffer = appendType(buffer, t)
	return appendRate(buffer, rate)
}

func (influxDB) parse(source string) (*datagramFields, error) {
	return parseMetricLine(source, func(name string) (string, []string, error) {
		name, rawTags, ok := strings.Cut(name, "#")
		if !ok {
			return name, nil, nil
		}
		tags, err := parseTags(rawTags)
		for i, tag := range tags {
			tags[i] = strings.Replace(tag, "=", ":", 1)
		}
		return name, tags, err
	})
}

// openTSDB encodes every tag as a name segment: name._t_key.value:1|c
type openTSDB struct{}

const openTSDBTagPrefix = "._t_"

func (openTSDB) name() string { return "OpenTSDB" }

func (openTSDB) supports(t MetricType) bool {
	return t != Histogram && t != KeyValue && t != EventType && t != ServiceCheckType
}

func (openTSDB) latencyType() MetricType { return Timing }

func (openTSDB) appendMetric(buffer []byte, prefix, name string, t MetricType, value []byte, rate float64, globalTags, tags []string) []byte {
	buffer = appendHeader(buffer, prefix, name)
	for _, list := range [2][]string{globalTags, tags} {
		for _, tag := range list {
			buffer = append(buffer, openTSDBTagPrefix...)
			buffer = appendWithoutNewlines(buffer, strings.ReplaceAll(tag, ":", "."))
		}
	}
	buffer = append(buffer, ':')
	buffer = append(buffer, value...)
	buffer = appendType(buffer, t)
	return appendRate(buffer, rate)
}

func (openTSDB) parse(source string) (*datagramFields, error) {
	return parseMetricLine(source, func(name string) (string, []string, error) {
		parts := strings.Split(name, openTSDBTagPrefix)
		if len(parts) == 1 {
			return name, nil, nil
		}
		tags := make([]string, 0, len(parts)-1)
		for _, p := range parts[1:] {
			tags = append(tags, strings.Replace(p, ".", ":", 1))
		}
		return parts[0], tags, nil
	})
}

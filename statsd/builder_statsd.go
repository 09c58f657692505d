package statsd

// dogStatsD supports every type except key-values, plus events and service checks.
type dogStatsD struct{}

func (dogStatsD) name() string { return "DogStatsD" }

func (dogStatsD) supports(t MetricType) bool {
	return t != KeyValue
}

func (dogStatsD) latencyType() MetricType { return Distribution }

func (dogStatsD) appendMetric(buffer []byte, prefix, name string, t MetricType, value []byte, rate float64, globalTags, tags []string) []byte {
	return appendGeneric(buffer, prefix, name, t, value, rate, globalTags, tags)
}

func (dogStatsD) parse(source string) (*datagramFields, error) {
	return parseDogStatsD(source)
}

// classicStatsD is the Etsy protocol: no tags, no histograms or distributions.
type classicStatsD struct{}

func (classicStatsD) name() string { return "StatsD" }

func (classicStatsD) rejectsTags() {}

func (classicStatsD) supports(t MetricType) bool {
	switch t {
	case Count, Gauge, Timing, Set:
		return true
	}
	return false
}

func (classicStatsD) latencyType() MetricType { return Timing }

func (classicStatsD) appendMetric(buffer []byte, prefix, name string, t MetricType, value []byte, rate float64, _, _ []string) []byte {
	return appendGeneric(buffer, prefix, name, t, value, rate, nil, nil)
}

func (classicStatsD) parse(source string) (*datagramFields, error) {
	return parseMetricLine(source, nil)
}

// statsite adds key-values to the Etsy protocol and writes any sample rate
// other than 1.
type statsite struct{}

func (statsite) name() string { return "Statsite" }

func (statsite) rejectsTags() {}

func (statsite) supports(t MetricType) bool {
	switch t {
	case Count, Gauge, Timing, Set, KeyValue:
		return true
	}
	return false
}

func (statsite) latencyType() MetricType { return Timing }

func (statsite) appendMetric(buffer []byte, prefix, name string, t MetricType, value []byte, rate float64, _, _ []string) []byte {
	buffer = appendHeader(buffer, prefix, name)
	buffer = append(buffer, ':')
	buffer = append(buffer, value...)
	buffer = appendType(buffer, t)
	if rate > 0 && rate != 1 {
		buffer = append(buffer, "|@"...)
		buffer = appendValue(buffer, rate)
	}
	return buffer
}

func (statsite) parse(source string) (*datagramFields, error) {
	return parseMetricLine(source, nil)
}

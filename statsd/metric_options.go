package statsd

// MetricOption tunes a single call of a Client method.
type MetricOption func(*metricOptions)

type metricOptions struct {
	rate     float64
	tags     []string
	noPrefix bool
}

func (c *Client) resolveMetricOptions(options []MetricOption) metricOptions {
	o := metricOptions{rate: c.defaultSampleRate}
	for _, option := range options {
		option(&o)
	}
	return o
}

// SampleRate overrides the client's default sample rate.
func SampleRate(rate float64) MetricOption {
	return func(o *metricOptions) { o.rate = rate }
}

// Tags adds tags to the call.
func Tags(tags ...string) MetricOption {
	return func(o *metricOptions) { o.tags = append(o.tags, tags...) }
}

// TagMap adds key:value tags to the call, sorted by key.
func TagMap(tags map[string]string) MetricOption {
	return func(o *metricOptions) { o.tags = append(o.tags, MapTags(tags)...) }
}

// NoPrefix skips the client's prefix.
func NoPrefix() MetricOption {
	return func(o *metricOptions) { o.noPrefix = true }
}

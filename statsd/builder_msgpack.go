package statsd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// msgPackDatagram is the frame written by the MessagePack dialect.
type msgPackDatagram struct {
	Name       string    `msgpack:"name"`
	Values     []float64 `msgpack:"values"`
	MetricType int       `msgpack:"metric_type"`
	SampleRate float64   `msgpack:"sample_rate"`
	Labels     string    `msgpack:"labels"`
}

var msgPackTypeCodes = map[MetricType]int{
	Gauge:            0,
	Count:            1,
	Distribution:     2,
	Histogram:        3,
	Timing:           4,
	Set:              5,
	EventType:        6,
	ServiceCheckType: 7,
	KeyValue:         8,
}

type messagePack struct{}

func (messagePack) name() string { return "MessagePack" }

func (messagePack) supports(t MetricType) bool {
	switch t {
	case Count, Gauge, Timing, Set, Histogram, Distribution:
		return true
	}
	return false
}

func (messagePack) latencyType() MetricType { return Distribution }

func (messagePack) appendMetric(buffer []byte, prefix, name string, t MetricType, value []byte, rate float64, globalTags, tags []string) []byte {
	frame := msgPackDatagram{
		Name:       prefix + name,
		MetricType: msgPackTypeCodes[t],
		SampleRate: rate,
	}
	for _, raw := range strings.Split(string(value), ":") {
		// set members that are not numbers are sent as 0
		v, _ := strconv.ParseFloat(raw, 64)
		frame.Values = append(frame.Values, v)
	}
	if frame.SampleRate <= 0 {
		frame.SampleRate = 1
	}
	if len(globalTags) != 0 || len(tags) != 0 {
		frame.Labels = string(appendTagList(nil, ',', globalTags, tags))
	}
	encoded, err := msgpack.Marshal(&frame)
	if err != nil {
		// unreachable: the frame holds only strings and numbers
		return buffer
	}
	return append(buffer, encoded...)
}

func (messagePack) parse(source string) (*datagramFields, error) {
	var frame msgPackDatagram
	if err := msgpack.Unmarshal([]byte(source), &frame); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDatagram, err)
	}
	if frame.Name == "" || len(frame.Values) == 0 {
		return nil, fmt.Errorf("%w: msgpack frame without name or values", ErrInvalidDatagram)
	}
	f := &datagramFields{
		name:       frame.Name,
		value:      string(appendValues(nil, frame.Values)),
		sampleRate: frame.SampleRate,
	}
	for t, code := range msgPackTypeCodes {
		if code == frame.MetricType {
			f.metricType = t
			break
		}
	}
	if f.metricType == "" {
		return nil, fmt.Errorf("%w: unknown msgpack metric type %d", ErrInvalidDatagram, frame.MetricType)
	}
	if frame.Labels != "" {
		f.tags = strings.Split(frame.Labels, ",")
	}
	return f, nil
}

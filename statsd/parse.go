package statsd

import (
	"fmt"
	"strconv"
	"strings"
)

// nameSplitter separates dialect specific tags encoded in the name section.
type nameSplitter func(name string) (string, []string, error)

func invalidDatagram(source string, reason string) error {
	return fmt.Errorf("%w: %q %s", ErrInvalidDatagram, source, reason)
}

func parseDogStatsD(source string) (*datagramFields, error) {
	switch {
	case strings.HasPrefix(source, "_e{"):
		return parseEvent(source)
	case strings.HasPrefix(source, "_sc|"):
		return parseServiceCheck(source)
	}
	return parseMetricLine(source, nil)
}

func parseMetricLine(source string, splitName nameSplitter) (*datagramFields, error) {
	next := strings.TrimSuffix(source, "\n")

	var head, typ, section string
	head, next = nextToken(next, '|')
	typ, next = nextToken(next, '|')

	name, val := nextToken(head, ':')
	if len(name) == 0 || strings.ContainsAny(name, "@") {
		return nil, invalidDatagram(source, "is missing a metric name")
	}
	if len(val) == 0 || strings.ContainsAny(val, "@") {
		return nil, invalidDatagram(source, "is missing a metric value")
	}

	f := &datagramFields{metricType: MetricType(typ), value: val}
	switch f.metricType {
	case Count, Timing, Gauge, Set, Histogram, Distribution, KeyValue:
	default:
		return nil, invalidDatagram(source, "has an unknown metric type")
	}
	if f.metricType != Set {
		for _, v := range strings.Split(val, ":") {
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				return nil, invalidDatagram(source, "has a malformed value")
			}
		}
	}

	seenTags := false
	for len(next) != 0 {
		section, next = nextToken(next, '|')
		switch {
		case strings.HasPrefix(section, "@") && f.sampleRate == 0 && !seenTags:
			rate, err := strconv.ParseFloat(section[1:], 64)
			if err != nil || rate <= 0 || rate > 1 {
				return nil, invalidDatagram(source, "has a malformed sample rate")
			}
			f.sampleRate = rate
		case strings.HasPrefix(section, "#") && !seenTags:
			tags, err := parseTags(section[1:])
			if err != nil {
				return nil, invalidDatagram(source, "has malformed tags")
			}
			f.tags = tags
			seenTags = true
		default:
			return nil, invalidDatagram(source, "has an unexpected section")
		}
	}

	f.name = name
	if splitName != nil {
		n, nameTags, err := splitName(name)
		if err != nil {
			return nil, invalidDatagram(source, err.Error())
		}
		f.name = n
		if len(nameTags) != 0 {
			f.tags = append(nameTags, f.tags...)
		}
	}
	if strings.ContainsAny(f.name, "|") || len(f.name) == 0 {
		return nil, invalidDatagram(source, "has a malformed metric name")
	}
	return f, nil
}

func parseTags(s string) ([]string, error) {
	if len(s) == 0 {
		return nil, fmt.Errorf("empty tag list")
	}
	tags := make([]string, 0, strings.Count(s, ",")+1)
	for len(s) != 0 {
		var tag string
		tag, s = nextToken(s, ',')
		if len(tag) == 0 || strings.IndexByte(tag, '#') != -1 {
			return nil, fmt.Errorf("malformed tag %q", tag)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// parseEvent reads _e{title_len,text_len}:title|text[|h:..][|d:..][|k:..][|p:..][|s:..][|t:..][|#..]
func parseEvent(source string) (*datagramFields, error) {
	next := strings.TrimSuffix(source, "\n")[len("_e{"):]

	var lengths string
	var ok bool
	if lengths, next, ok = strings.Cut(next, "}:"); !ok {
		return nil, invalidDatagram(source, "has a malformed event header")
	}
	rawTitleLen, rawTextLen := nextToken(lengths, ',')
	titleLen, err1 := strconv.Atoi(rawTitleLen)
	textLen, err2 := strconv.Atoi(rawTextLen)
	if err1 != nil || err2 != nil || titleLen < 0 || textLen < 0 {
		return nil, invalidDatagram(source, "has malformed event lengths")
	}
	if len(next) < titleLen+1+textLen || next[titleLen] != '|' {
		return nil, invalidDatagram(source, "has event lengths not matching its content")
	}
	f := &datagramFields{
		metricType: EventType,
		name:       unescapeEventString(next[:titleLen]),
		value:      unescapeEventString(next[titleLen+1 : titleLen+1+textLen]),
	}
	if titleLen == 0 {
		return nil, invalidDatagram(source, "has an empty event title")
	}
	next = next[titleLen+1+textLen:]
	if len(next) != 0 {
		if next[0] != '|' {
			return nil, invalidDatagram(source, "has event lengths not matching its content")
		}
		next = next[1:]
	}
	if err := parseMetadata(f, next, "hdkpst#"); err != nil {
		return nil, invalidDatagram(source, err.Error())
	}
	return f, nil
}

// parseServiceCheck reads _sc|name|status[|h:..][|d:..][|#..][|m:..]
func parseServiceCheck(source string) (*datagramFields, error) {
	next := strings.TrimSuffix(source, "\n")[len("_sc|"):]

	var name, status string
	name, next = nextToken(next, '|')
	status, next = nextToken(next, '|')
	if len(name) == 0 {
		return nil, invalidDatagram(source, "is missing a service check name")
	}
	code, err := strconv.Atoi(status)
	if err != nil || code < int(Ok) || code > int(Unknown) {
		return nil, invalidDatagram(source, "has a malformed service check status")
	}
	f := &datagramFields{metricType: ServiceCheckType, name: name, value: status}
	if err := parseMetadata(f, next, "hd#m"); err != nil {
		return nil, invalidDatagram(source, err.Error())
	}
	return f, nil
}

// parseMetadata reads the "x:value" sections of s, separated by '|', in the
// order given by keys. '#' stands for the tag section, which has no colon.
func parseMetadata(f *datagramFields, s string, keys string) error {
	var section string
	for len(s) != 0 {
		section, s = nextToken(s, '|')
		if len(section) == 0 {
			return fmt.Errorf("has an empty section")
		}
		key := section[0]
		pos := strings.IndexByte(keys, key)
		if pos == -1 {
			return fmt.Errorf("has an unexpected section %q", section)
		}
		keys = keys[pos+1:]
		if key == '#' {
			tags, err := parseTags(section[1:])
			if err != nil {
				return err
			}
			f.tags = tags
			continue
		}
		if len(section) < 3 || section[1] != ':' {
			return fmt.Errorf("has a malformed section %q", section)
		}
		value := section[2:]
		switch key {
		case 'h':
			f.hostname = value
		case 'd':
			ts, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("has a malformed timestamp")
			}
			f.timestamp = ts
		case 'k':
			f.aggregationKey = value
		case 'p':
			f.priority = value
		case 's':
			f.sourceTypeName = value
		case 't':
			f.alertType = value
		case 'm':
			f.message = unescapeEventString(value)
		}
	}
	return nil
}

func nextToken(s string, b byte) (token string, next string) {
	if off := strings.IndexByte(s, b); off >= 0 {
		token, next = s[:off], s[off+1:]
	} else {
		token = s
	}
	return
}

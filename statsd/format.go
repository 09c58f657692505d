package statsd

import (
	"strconv"
	"strings"
)

func appendHeader(buffer []byte, prefix string, name string) []byte {
	if prefix != "" {
		buffer = append(buffer, prefix...)
	}
	buffer = append(buffer, name...)
	return buffer
}

// appendValue writes the shortest decimal form that round-trips: 1, 1.5, 0.25.
func appendValue(buffer []byte, value float64) []byte {
	return strconv.AppendFloat(buffer, value, 'f', -1, 64)
}

func appendValues(buffer []byte, values []float64) []byte {
	for i, v := range values {
		if i > 0 {
			buffer = append(buffer, ':')
		}
		buffer = appendValue(buffer, v)
	}
	return buffer
}

func appendType(buffer []byte, t MetricType) []byte {
	buffer = append(buffer, '|')
	return append(buffer, t...)
}

func appendRate(buffer []byte, rate float64) []byte {
	if rate > 0 && rate < 1 {
		buffer = append(buffer, "|@"...)
		buffer = strconv.AppendFloat(buffer, rate, 'f', -1, 64)
	}
	return buffer
}

func appendWithoutNewlines(buffer []byte, s string) []byte {
	// fastpath for strings without newlines
	if strings.IndexByte(s, '\n') == -1 {
		return append(buffer, s...)
	}

	for _, b := range []byte(s) {
		if b != '\n' {
			buffer = append(buffer, b)
		}
	}
	return buffer
}

// appendTagList joins default tags then call tags with sep, without a leading marker.
func appendTagList(buffer []byte, sep byte, globalTags []string, tags []string) []byte {
	firstTag := true
	for _, tag := range globalTags {
		if !firstTag {
			buffer = append(buffer, sep)
		}
		buffer = appendWithoutNewlines(buffer, tag)
		firstTag = false
	}
	for _, tag := range tags {
		if !firstTag {
			buffer = append(buffer, sep)
		}
		buffer = appendWithoutNewlines(buffer, tag)
		firstTag = false
	}
	return buffer
}

func appendTags(buffer []byte, globalTags []string, tags []string) []byte {
	if len(globalTags) == 0 && len(tags) == 0 {
		return buffer
	}
	buffer = append(buffer, "|#"...)
	return appendTagList(buffer, ',', globalTags, tags)
}

func escapedEventString(s string) string {
	if strings.IndexByte(s, '\n') == -1 {
		return s
	}
	return strings.ReplaceAll(s, "\n", `\n`)
}

func unescapeEventString(s string) string {
	if !strings.Contains(s, `\n`) {
		return s
	}
	return strings.ReplaceAll(s, `\n`, "\n")
}

func appendEvent(buffer []byte, prefix string, event *Event, globalTags []string) []byte {
	title := escapedEventString(prefix + event.Title)
	text := escapedEventString(event.Text)

	buffer = append(buffer, "_e{"...)
	buffer = strconv.AppendInt(buffer, int64(len(title)), 10)
	buffer = append(buffer, ',')
	buffer = strconv.AppendInt(buffer, int64(len(text)), 10)
	buffer = append(buffer, "}:"...)
	buffer = append(buffer, title...)
	buffer = append(buffer, '|')
	buffer = append(buffer, text...)

	if event.Hostname != "" {
		buffer = append(buffer, "|h:"...)
		buffer = append(buffer, event.Hostname...)
	}
	if !event.Timestamp.IsZero() {
		buffer = append(buffer, "|d:"...)
		buffer = strconv.AppendInt(buffer, event.Timestamp.Unix(), 10)
	}
	if event.AggregationKey != "" {
		buffer = append(buffer, "|k:"...)
		buffer = append(buffer, event.AggregationKey...)
	}
	if event.Priority != "" {
		buffer = append(buffer, "|p:"...)
		buffer = append(buffer, event.Priority...)
	}
	if event.SourceTypeName != "" {
		buffer = append(buffer, "|s:"...)
		buffer = append(buffer, event.SourceTypeName...)
	}
	if event.AlertType != "" {
		buffer = append(buffer, "|t:"...)
		buffer = append(buffer, event.AlertType...)
	}
	return appendTags(buffer, globalTags, NormalizeTags(event.Tags))
}

func appendServiceCheck(buffer []byte, prefix string, sc *ServiceCheck, globalTags []string) []byte {
	buffer = append(buffer, "_sc|"...)
	buffer = append(buffer, prefix...)
	buffer = append(buffer, NormalizeName(sc.Name)...)
	buffer = append(buffer, '|')
	buffer = strconv.AppendInt(buffer, int64(sc.Status), 10)

	if sc.Hostname != "" {
		buffer = append(buffer, "|h:"...)
		buffer = append(buffer, sc.Hostname...)
	}
	if !sc.Timestamp.IsZero() {
		buffer = append(buffer, "|d:"...)
		buffer = strconv.AppendInt(buffer, sc.Timestamp.Unix(), 10)
	}
	buffer = appendTags(buffer, globalTags, NormalizeTags(sc.Tags))
	if sc.Message != "" {
		buffer = append(buffer, "|m:"...)
		buffer = append(buffer, escapedEventString(sc.Message)...)
	}
	return buffer
}

package statsd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventEncode(t *testing.T) {
	matrix := []struct {
		event   *Event
		encoded string
	}{
		{
			NewEvent("Hello", "Something happened to my event"),
			`_e{5,30}:Hello|Something happened to my event`,
		}, {
			&Event{Title: "hi", Text: "okay", AggregationKey: "foo"},
			`_e{2,4}:hi|okay|k:foo`,
		}, {
			&Event{Title: "hi", Text: "okay", AggregationKey: "foo", AlertType: Info},
			`_e{2,4}:hi|okay|k:foo|t:info`,
		}, {
			&Event{Title: "hi", Text: "w/e", AlertType: Error, Priority: Normal},
			`_e{2,3}:hi|w/e|p:normal|t:error`,
		}, {
			&Event{Title: "hi", Text: "uh", Tags: []string{"host:foo", "app:bar"}},
			`_e{2,2}:hi|uh|#host:foo,app:bar`,
		}, {
			&Event{Title: "hi", Text: "line1\nline2", Tags: []string{"hello\nworld"}},
			`_e{2,12}:hi|line1\nline2|#helloworld`,
		}, {
			&Event{Title: "hi", Text: "ok", Hostname: "web1", Timestamp: time.Unix(1700000000, 0), SourceTypeName: "deploy"},
			`_e{2,2}:hi|ok|h:web1|d:1700000000|s:deploy`,
		},
	}

	for _, m := range matrix {
		r, err := m.event.Encode()
		require.NoError(t, err)
		assert.Equal(t, m.encoded, r)
	}
}

func TestNewEventTitleMissing(t *testing.T) {
	e := NewEvent("", "hi")
	_, err := e.Encode()
	require.Error(t, err)
	assert.Equal(t, "statsd.Event title is required", err.Error())
}

func TestNewEventTags(t *testing.T) {
	e := NewEvent("hello", "world")
	e.Tags = []string{"tag1", "tag2"}
	eventEncoded, err := e.Encode("tag3", "tag4")
	require.NoError(t, err)
	assert.Equal(t, "_e{5,5}:hello|world|#tag3,tag4,tag1,tag2", eventEncoded)
	assert.Len(t, e.Tags, 2)
}

func TestNewEventEmptyText(t *testing.T) {
	e := NewEvent("hello", "")
	e.Tags = append(e.Tags, "tag1", "tag2")
	eventEncoded, err := e.Encode()
	require.NoError(t, err)
	assert.Equal(t, "_e{5,0}:hello||#tag1,tag2", eventEncoded)
}

func TestEventParse(t *testing.T) {
	e := &Event{
		Title:          "deploy",
		Text:           "line1\nline2",
		Hostname:       "web1",
		Timestamp:      time.Unix(1700000000, 0),
		AggregationKey: "release",
		Priority:       Low,
		SourceTypeName: "ci",
		AlertType:      Success,
		Tags:           []string{"env:prod"},
	}
	encoded, err := e.Encode()
	require.NoError(t, err)

	d, err := ParseDatagram(encoded)
	require.NoError(t, err)
	assert.Equal(t, EventType, d.Type())
	assert.Equal(t, "deploy", d.Name())
	assert.Equal(t, "line1\nline2", d.Value())
	assert.Equal(t, "web1", d.Hostname())
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), d.Timestamp())
	assert.Equal(t, "release", d.AggregationKey())
	assert.Equal(t, "low", d.Priority())
	assert.Equal(t, "ci", d.SourceTypeName())
	assert.Equal(t, "success", d.AlertType())
	assert.Equal(t, []string{"env:prod"}, d.Tags())
}

func TestEventParseErrors(t *testing.T) {
	for _, source := range []string{
		"_e{2,2}hi|ok",
		"_e{x,2}:hi|ok",
		"_e{5,2}:hi|ok",
		"_e{0,2}:|ok",
		"_e{2,2}:hi|ok|z:1",
		"_e{2,2}:hi|ok|t:info|p:low",
	} {
		_, err := ParseDatagram(source)
		assert.ErrorIs(t, err, ErrInvalidDatagram, source)
	}
}

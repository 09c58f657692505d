package statsd

import (
	"errors"
	"time"
)

// EventPriority is the priority of an event.
type EventPriority string

const (
	// Normal is the default priority for events.
	Normal EventPriority = "normal"
	// Low is the lower priority for events.
	Low EventPriority = "low"
)

// EventAlertType is the alert type for events.
type EventAlertType string

const (
	// Info is the "info" AlertType for events
	Info EventAlertType = "info"
	// Error is the "error" AlertType for events
	Error EventAlertType = "error"
	// Warning is the "warning" AlertType for events
	Warning EventAlertType = "warning"
	// Success is the "success" AlertType for events
	Success EventAlertType = "success"
)

var errEventTitleMissing = errors.New("statsd.Event title is required")

// An Event is an object that can be posted to a DogStatsD collector.
type Event struct {
	// Title of the event. Required.
	Title string
	// Text is the description of the event.
	Text string
	// Timestamp is a timestamp for the event. If not provided, the collector
	// uses the time it received the event.
	Timestamp time.Time
	// Hostname for the event.
	Hostname string
	// AggregationKey groups this event with others of the same key.
	AggregationKey string
	// Priority of the event. Can be statsd.Low or statsd.Normal.
	Priority EventPriority
	// SourceTypeName is a source type for the event.
	SourceTypeName string
	// AlertType can be statsd.Info, statsd.Error, statsd.Warning, or statsd.Success.
	// If absent, the default value applied by the collector is Info.
	AlertType EventAlertType
	// Tags for the event.
	Tags []string
}

// NewEvent creates a new event with the given title and text. Error checking
// against these values is done at send-time, or upon running e.Check.
func NewEvent(title, text string) *Event {
	return &Event{
		Title: title,
		Text:  text,
	}
}

// Check verifies that an event is valid.
func (e *Event) Check() error {
	if len(e.Title) == 0 {
		return errEventTitleMissing
	}
	return nil
}

// Encode returns the DogStatsD wire form of the event, with tags prepended to
// the event's own tags.
func (e *Event) Encode(tags ...string) (string, error) {
	if err := e.Check(); err != nil {
		return "", err
	}
	return string(appendEvent(make([]byte, 0, 128), "", e, tags)), nil
}

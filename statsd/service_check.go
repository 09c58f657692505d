package statsd

import (
	"errors"
	"fmt"
	"time"
)

// ServiceCheckStatus support
type ServiceCheckStatus byte

const (
	// Ok is the "ok" ServiceCheck status
	Ok ServiceCheckStatus = 0
	// Warn is the "warning" ServiceCheck status
	Warn ServiceCheckStatus = 1
	// Critical is the "critical" ServiceCheck status
	Critical ServiceCheckStatus = 2
	// Unknown is the "unknown" ServiceCheck status
	Unknown ServiceCheckStatus = 3
)

var (
	errServiceCheckNameMissing   = errors.New("statsd.ServiceCheck name is required")
	errServiceCheckStatusInvalid = errors.New("statsd.ServiceCheck status has invalid value")
)

// A ServiceCheck is an object that contains status of DataDog service check.
type ServiceCheck struct {
	// Name of the service check. Required.
	Name string
	// Status of service check. Required.
	Status ServiceCheckStatus
	// Timestamp is a timestamp for the serviceCheck. If not provided, the collector
	// uses the time it received the service check.
	Timestamp time.Time
	// Hostname for the serviceCheck.
	Hostname string
	// A message describing the current state of the serviceCheck.
	Message string
	// Tags for the serviceCheck.
	Tags []string
}

// NewServiceCheck creates a new serviceCheck with the given name and status.
func NewServiceCheck(name string, status ServiceCheckStatus) *ServiceCheck {
	return &ServiceCheck{
		Name:   name,
		Status: status,
	}
}

// ParseServiceCheckStatus maps "ok", "warning", "critical" and "unknown" to
// their status codes.
func ParseServiceCheckStatus(s string) (ServiceCheckStatus, error) {
	switch s {
	case "ok":
		return Ok, nil
	case "warning":
		return Warn, nil
	case "critical":
		return Critical, nil
	case "unknown":
		return Unknown, nil
	}
	return 0, fmt.Errorf("%w: %q", errServiceCheckStatusInvalid, s)
}

// Check verifies that a service check is valid.
func (sc *ServiceCheck) Check() error {
	if len(sc.Name) == 0 {
		return errServiceCheckNameMissing
	}
	if sc.Status > Unknown {
		return errServiceCheckStatusInvalid
	}
	return nil
}

// Encode returns the DogStatsD wire form of the service check.
func (sc *ServiceCheck) Encode(tags ...string) (string, error) {
	if err := sc.Check(); err != nil {
		return "", err
	}
	return string(appendServiceCheck(make([]byte, 0, 64), "", sc, tags)), nil
}

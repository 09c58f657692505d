//go:build !windows
// +build !windows

package statsd

import (
	"errors"
	"time"
)

func newPipeConnection(pipepath string, _ time.Duration) (Connection, error) {
	return nil, errors.New("Windows Named Pipes are not supported on other operating systems than Windows")
}

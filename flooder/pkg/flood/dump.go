package flood

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/statsd-instrument/instrument/statsd"
)

// Record is one sample of a statsb store, as printed by Dump.
type Record struct {
	Time  *time.Time `json:"time,omitempty"`
	Name  string     `json:"name"`
	Type  string     `json:"type"`
	Value float64    `json:"value"`
}

// Dump decodes the statsb log in r and writes one JSON record per sample to
// w. It returns the number of records written.
func Dump(r io.Reader, w io.Writer) (int, error) {
	reader, err := statsd.NewStoreReader(r)
	if err != nil {
		return 0, err
	}
	encoder := jsoniter.NewEncoder(w)
	n := 0
	for {
		line, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		d, err := statsd.ParseDatagram(line)
		if err != nil {
			return n, err
		}
		value, err := strconv.ParseFloat(d.Value(), 64)
		if err != nil {
			return n, fmt.Errorf("flood: record %d: %w", n, err)
		}
		record := Record{Name: d.Name(), Type: string(d.Type()), Value: value}
		if t := reader.Time(); !t.IsZero() {
			record.Time = &t
		}
		if err := encoder.Encode(record); err != nil {
			return n, err
		}
		n++
	}
}

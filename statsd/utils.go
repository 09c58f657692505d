package statsd

import (
	"math/rand/v2"
)

// shouldSample is a uniform draw: always true at rate >= 1, always false at rate <= 0.
func shouldSample(rate float64) bool {
	if rate >= 1 {
		return true
	}
	if rate <= 0 {
		return false
	}
	return rand.Float64() < rate
}

// concatTags returns a new slice holding src followed by extra.
func concatTags(src []string, extra []string) []string {
	if src == nil && extra == nil {
		return nil
	}
	c := make([]string, 0, len(src)+len(extra))
	c = append(c, src...)
	return append(c, extra...)
}

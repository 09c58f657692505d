package statsd

import (
	"sort"
	"strings"
)

// NormalizeName replaces the characters that delimit a datagram (":", "|" and
// "@") with underscores. The input is returned as is when it is already valid.
func NormalizeName(name string) string {
	if strings.IndexAny(name, ":|@") == -1 {
		return name
	}
	return nameReplacer.Replace(name)
}

var (
	nameReplacer = strings.NewReplacer(":", "_", "|", "_", "@", "_")
	tagReplacer  = strings.NewReplacer("|", "", ",", "")
)

// NormalizeTags removes "|" and "," from every tag. The slice is returned
// without copying when no tag needs to be rewritten.
func NormalizeTags(tags []string) []string {
	i := 0
	for ; i < len(tags); i++ {
		if strings.IndexAny(tags[i], "|,") != -1 {
			break
		}
	}
	if i == len(tags) {
		return tags
	}
	normalized := make([]string, len(tags))
	copy(normalized, tags[:i])
	for ; i < len(tags); i++ {
		normalized[i] = tagReplacer.Replace(tags[i])
	}
	return normalized
}

// MapTags converts key/value tags to "key:value" strings, sorted by key.
func MapTags(tags map[string]string) []string {
	if len(tags) == 0 {
		return nil
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(tags))
	for _, k := range keys {
		out = append(out, k+":"+tags[k])
	}
	return out
}

// sortTags returns a sorted, normalized copy of tags. Duplicates are kept so
// the flushed datagram carries the same tags the caller sent.
func sortTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	sorted := make([]string, len(tags))
	copy(sorted, NormalizeTags(tags))
	sort.Strings(sorted)
	return sorted
}

package analysis

import (
	"sort"
	"strings"

	"github.com/de-tools/report-atlas/pkg/models/domain"
)

// Count is a frequency of one key.
type Count struct {
	Key   string
	Count int
}

// ValueCounts counts occurrences, sorted by count descending then key ascending.
func ValueCounts(values []string) []Count {
	freq := make(map[string]int)
	for _, v := range values {
		freq[v]++
	}
	counts := make([]Count, 0, len(freq))
	for k, n := range freq {
		counts = append(counts, Count{Key: k, Count: n})
	}
	sortCounts(counts)
	return counts
}

// TopN returns at most n of the most frequent values.
func TopN(values []string, n int) []Count {
	counts := ValueCounts(values)
	if n >= 0 && len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// Total sums the counts.
func Total(counts []Count) int {
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	return total
}

// Lookup returns the count for key, or 0.
func Lookup(counts []Count, key string) int {
	for _, c := range counts {
		if c.Key == key {
			return c.Count
		}
	}
	return 0
}

// TopMetadataValues counts a metadata field across events of one type, ignoring blanks.
func TopMetadataValues(events []domain.Event, eventType, key string, n int) []Count {
	var values []string
	for _, e := range events {
		if e.Type != eventType {
			continue
		}
		raw, ok := e.Metadata[key]
		if !ok || raw == nil {
			continue
		}
		s, ok := raw.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			values = append(values, s)
		}
	}
	return TopN(values, n)
}

func sortCounts(counts []Count) {
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Key < counts[j].Key
	})
}

// Package report composes a PDF from selected entries of an archive.
package report

import (
	"fmt"
	"strconv"
	"strings"
)

// IndexParseError reports a malformed index list.
type IndexParseError struct {
	Input string
	Item  string
}

func (e *IndexParseError) Error() string {
	return fmt.Sprintf("indexes must be a comma-separated list of integers: bad item %q", e.Item)
}

// ParseIndices parses "1, 3,2" into [1 3 2]. Order and duplicates are kept.
func ParseIndices(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		item := strings.TrimSpace(p)
		n, err := strconv.Atoi(item)
		if err != nil {
			return nil, &IndexParseError{Input: s, Item: item}
		}
		out = append(out, n)
	}
	return out, nil
}

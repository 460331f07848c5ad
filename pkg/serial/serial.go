// Package serial implements the human-readable sequential identifiers used
// for receipts, bills and patient numbers: scan the existing identifiers,
// take the numeric maximum and add one. Entries that do not parse as
// integers are ignored.
package serial

import (
	"fmt"
	"strconv"
	"strings"
)

// Width is the zero-padded width of formatted serial numbers.
const Width = 4

// Next returns the next serial given the identifiers already in use.
// An optional prefix (e.g. "P" for patient numbers) is stripped before
// parsing; identifiers that still fail to parse are skipped.
func Next(existing []string, prefix string) int {
	max := 0
	for _, id := range existing {
		s := strings.TrimSpace(id)
		if prefix != "" {
			s = strings.TrimPrefix(s, prefix)
		}
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max + 1
}

// Format renders a serial zero-padded to Width digits, with the given
// prefix. Numbers wider than Width keep their natural width.
func Format(n int, prefix string) string {
	return fmt.Sprintf("%s%0*d", prefix, Width, n)
}

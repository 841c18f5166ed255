package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Human-readable code prefixes, one independent sequence per entity type.
const (
	StudentCodePrefix = "STD"
	TeacherCodePrefix = "TCH"

	codeSequenceWidth = 5
)

// yearPrefix returns the year-scoped code prefix, e.g. STD2026.
func yearPrefix(prefix string, year int) string {
	return fmt.Sprintf("%s%d", prefix, year)
}

// nextCode computes the successor of the greatest existing code for the
// year. An empty or unparsable last code restarts the sequence at 1. The
// sequence is zero-padded to five digits and widens silently past 99999.
func nextCode(prefix string, year int, last string) string {
	full := yearPrefix(prefix, year)
	seq := 1
	if last != "" {
		if n, err := strconv.Atoi(strings.TrimPrefix(last, full)); err == nil {
			seq = n + 1
		}
	}
	return fmt.Sprintf("%s%0*d", full, codeSequenceWidth, seq)
}

// currentYear is swappable in tests.
var currentYear = func() int {
	return time.Now().UTC().Year()
}

package util

import (
	"strconv"
	"strings"
	"time"
)

// ETagFromTime derives the optimistic-concurrency token from a document's
// last write time: the millisecond timestamp, quoted.
func ETagFromTime(t time.Time) string {
	return `"` + strconv.FormatInt(t.UnixMilli(), 10) + `"`
}

// CleanIfMatch normalizes a conditional header value: strips the weak prefix
// and quotes. Empty input yields empty output.
func CleanIfMatch(value string) string {
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, "W/")
	return strings.Trim(value, `"`)
}

// CheckIfMatch compares a client-supplied If-Match header against the current
// tag. An absent header passes (the precondition is opt-in).
func CheckIfMatch(header string, current string) bool {
	if header == "" {
		return true
	}
	return CleanIfMatch(header) == CleanIfMatch(current)
}

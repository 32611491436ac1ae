package utils

import (
	"fmt"
	"time"

	"golang-stock-sentiment/pkg/common"
)

// TimeNowUTC returns the current wall-clock time in UTC.
func TimeNowUTC() time.Time {
	return time.Now().UTC()
}

// FormatUTC renders t as YYYY-MM-DDTHH:MM:SSZ.
func FormatUTC(t time.Time) string {
	return t.UTC().Format(common.DateTimeLayoutUTC)
}

// ParseUTC parses a YYYY-MM-DDTHH:MM:SSZ timestamp. Fractional seconds are rejected.
func ParseUTC(value string) (time.Time, error) {
	if len(value) != len(common.DateTimeLayoutUTC) {
		return time.Time{}, fmt.Errorf("invalid UTC timestamp %q", value)
	}
	return time.Parse(common.DateTimeLayoutUTC, value)
}

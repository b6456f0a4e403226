package contract

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Matches "N [units]", e.g. "30 days", "2 weeks", "1 month".
var windowDurationRe = regexp.MustCompile(`^(\d+)\s+(year|month|week|day|hour|minute)s?$`)

// ParseWindowDuration converts strings like "30 days" or "720h" into a
// time.Duration. It first tries Go's built-in time.ParseDuration for
// standard formats, then falls back to human-readable formats.
func ParseWindowDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	// Try Go's built-in duration parsing first (e.g., "720h", "30m")
	if duration, err := time.ParseDuration(s); err == nil {
		if duration <= 0 {
			return 0, errors.New("window duration must be positive")
		}
		return duration, nil
	}

	s = strings.ToLower(s)
	matches := windowDurationRe.FindStringSubmatch(s)
	if len(matches) == 0 {
		return 0, fmt.Errorf("invalid window duration format: %s", s)
	}

	value, _ := strconv.Atoi(matches[1])
	if value == 0 {
		return 0, errors.New("window duration must be positive")
	}

	switch matches[2] {
	case "year":
		return time.Duration(value) * 365 * 24 * time.Hour, nil
	case "month":
		return time.Duration(value) * 30 * 24 * time.Hour, nil
	case "week":
		return time.Duration(value) * 7 * 24 * time.Hour, nil
	case "day":
		return time.Duration(value) * 24 * time.Hour, nil
	case "hour":
		return time.Duration(value) * time.Hour, nil
	default: // "minute"
		return time.Duration(value) * time.Minute, nil
	}
}

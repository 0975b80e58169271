package utils

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// NoDescription replaces blank descriptions in stored videos
const NoDescription = "[No Description]"

var isoDurationPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)

// ParseISODuration converts a duration such as PT1H46M33S to seconds.
// Empty or unparseable input yields nil.
func ParseISODuration(value string) *int64 {
	if value == "" {
		return nil
	}
	m := isoDurationPattern.FindStringSubmatch(value)
	if m == nil {
		return nil
	}

	var total int64
	for i, unit := range []int64{3600, 60, 1} {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.ParseInt(m[i+1], 10, 64)
		if err != nil {
			return nil
		}
		total += n * unit
	}
	return &total
}

// ParseISODatetime converts an RFC 3339 timestamp to unix seconds
func ParseISODatetime(value string) *int64 {
	if value == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	return Int64Ptr(t.Unix())
}

// ParseInteger parses a base-10 count, nil when empty or invalid
func ParseInteger(value string) *int64 {
	if value == "" {
		return nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

func CleanTitle(title string) string {
	return strings.TrimSpace(title)
}

func CleanDescription(description string) string {
	if strings.TrimSpace(description) == "" {
		return NoDescription
	}
	return description
}

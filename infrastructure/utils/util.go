package utils

import (
	"time"
)

// now is swapped in tests
var now = time.Now

func GetCurrentTime() time.Time {
	return now().UTC()
}

// Int64Ptr returns a pointer to v, for nullable columns
func Int64Ptr(v int64) *int64 {
	return &v
}

// StringPtr returns nil for an empty string
func StringPtr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

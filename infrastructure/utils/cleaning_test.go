package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseISODuration(t *testing.T) {
	cases := []struct {
		in   string
		want *int64
	}{
		{"PT1H46M33S", Int64Ptr(6393)},
		{"PT4M13S", Int64Ptr(253)},
		{"PT45S", Int64Ptr(45)},
		{"PT2H", Int64Ptr(7200)},
		{"PT0S", Int64Ptr(0)},
		{"PT", Int64Ptr(0)},
		{"", nil},
		{"P1D", nil},
		{"garbage", nil},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ParseISODuration(c.in), c.in)
	}
}

func TestParseISODatetime(t *testing.T) {
	assert.Equal(t, Int64Ptr(1758798031), ParseISODatetime("2025-09-25T11:00:31Z"))
	assert.Equal(t, Int64Ptr(1758798031), ParseISODatetime("2025-09-25T13:00:31+02:00"))
	assert.Nil(t, ParseISODatetime(""))
	assert.Nil(t, ParseISODatetime("25/09/2025"))
}

func TestParseInteger(t *testing.T) {
	assert.Equal(t, Int64Ptr(1234), ParseInteger("1234"))
	assert.Equal(t, Int64Ptr(0), ParseInteger("0"))
	assert.Nil(t, ParseInteger(""))
	assert.Nil(t, ParseInteger("1,234"))
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Title", CleanTitle("  Title \n"))
	assert.Equal(t, "", CleanTitle(""))
	assert.Equal(t, NoDescription, CleanDescription(" \t "))
	assert.Equal(t, " keep as is ", CleanDescription(" keep as is "))
}

func TestGetCurrentTime(t *testing.T) {
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600))
	now = func() time.Time { return fixed }
	defer func() { now = time.Now }()

	got := GetCurrentTime()
	assert.Equal(t, time.UTC, got.Location())
	assert.True(t, got.Equal(fixed))
}

func TestStringPtr(t *testing.T) {
	assert.Nil(t, StringPtr(""))
	assert.Equal(t, "x", *StringPtr("x"))
}

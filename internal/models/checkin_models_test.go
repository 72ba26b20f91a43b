package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "0m"},
		{45 * time.Minute, "45m"},
		{59*time.Minute + 59*time.Second, "59m"},
		{time.Hour, "1h 00m"},
		{2*time.Hour + 5*time.Minute, "2h 05m"},
		{26*time.Hour + 30*time.Minute, "26h 30m"},
		{-time.Minute, "0m"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatDuration(tc.d), "duration %v", tc.d)
	}
}

func TestCheckInRecordElapsed(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	in := now.Add(-90 * time.Minute)
	out := now.Add(-30 * time.Minute)

	open := CheckInRecord{CheckedInAt: in}
	assert.True(t, open.IsOpen())
	assert.Equal(t, 90*time.Minute, open.Elapsed(now))

	closed := CheckInRecord{CheckedInAt: in, CheckedOutAt: &out}
	assert.False(t, closed.IsOpen())
	assert.Equal(t, time.Hour, closed.Elapsed(now))
}

func TestIsValidCheckInMethod(t *testing.T) {
	assert.True(t, IsValidCheckInMethod("manual"))
	assert.True(t, IsValidCheckInMethod("self"))
	assert.True(t, IsValidCheckInMethod("qr"))
	assert.False(t, IsValidCheckInMethod("kiosk"))
	assert.False(t, IsValidCheckInMethod(""))
}

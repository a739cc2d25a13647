package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func TestNextDueDate(t *testing.T) {
	tests := []struct {
		name    string
		current time.Time
		day     int
		want    time.Time
	}{
		{"plain month", d(2025, time.March, 5), 5, d(2025, time.April, 5)},
		{"clamp to february", d(2025, time.January, 31), 31, d(2025, time.February, 28)},
		{"leap february", d(2024, time.January, 31), 31, d(2024, time.February, 29)},
		{"recover after clamp", d(2025, time.February, 28), 31, d(2025, time.March, 31)},
		{"thirty day month", d(2025, time.March, 31), 31, d(2025, time.April, 30)},
		{"year rollover", d(2024, time.December, 15), 15, d(2025, time.January, 15)},
		{"day 30 into february", d(2025, time.January, 30), 30, d(2025, time.February, 28)},
		{"drops clock time", time.Date(2025, time.May, 10, 23, 59, 0, 0, time.UTC), 10, d(2025, time.June, 10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextDueDate(tt.current, tt.day))
		})
	}
}

func TestFirstDueDate(t *testing.T) {
	assert.Equal(t, d(2025, time.January, 10), FirstDueDate(d(2025, time.January, 10), 10))
	assert.Equal(t, d(2025, time.January, 31), FirstDueDate(d(2025, time.January, 10), 31))
	assert.Equal(t, d(2025, time.February, 5), FirstDueDate(d(2025, time.January, 10), 5))
	assert.Equal(t, d(2025, time.February, 28), FirstDueDate(d(2025, time.February, 1), 31))
}

func TestAfterHorizon(t *testing.T) {
	end := d(2025, time.March, 15)
	assert.False(t, afterHorizon(d(2025, time.March, 15), &end))
	assert.True(t, afterHorizon(d(2025, time.March, 16), &end))
	assert.False(t, afterHorizon(d(2099, time.January, 1), nil))
}

package billing

import (
	"time"

	"github.com/Homesapp/HomesappNew-sub000/internal/models"
)

// daysIn returns the number of days of month m in year y.
func daysIn(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// anchorDate returns day `day` of the month, clamped to the month's last day.
func anchorDate(y int, m time.Month, day int) time.Time {
	if last := daysIn(y, m); day > last {
		day = last
	}
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

// NextDueDate advances current by one calendar month and places it on
// dayOfMonth, clamped to the target month's length. The result is UTC midnight.
//
//	NextDueDate(2025-01-31, 31) = 2025-02-28
//	NextDueDate(2025-02-28, 31) = 2025-03-31
//	NextDueDate(2024-12-15, 15) = 2025-01-15
func NextDueDate(current time.Time, dayOfMonth int) time.Time {
	y, m, _ := models.DateOnly(current).Date()
	m++
	if m > time.December {
		m = time.January
		y++
	}
	return anchorDate(y, m, dayOfMonth)
}

// FirstDueDate is the first anchor date on or after start.
func FirstDueDate(start time.Time, dayOfMonth int) time.Time {
	start = models.DateOnly(start)
	y, m, _ := start.Date()
	if d := anchorDate(y, m, dayOfMonth); !d.Before(start) {
		return d
	}
	return NextDueDate(start, dayOfMonth)
}

// afterHorizon reports whether due falls strictly after the contract end.
// A contract without an end date has no horizon.
func afterHorizon(due time.Time, end *time.Time) bool {
	if end == nil {
		return false
	}
	return due.After(models.DateOnly(*end))
}

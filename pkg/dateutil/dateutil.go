package dateutil

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// HorizonMonths converts a horizon in years to a whole number of months.
// The result is never less than one month.
func HorizonMonths(years float64) int {
	months := int(math.Round(years * 12))
	if months < 1 {
		return 1
	}
	return months
}

// MonthsUntilAge returns how many months pass before someone currently aged
// currentAge reaches targetAge, or zero when that age is already reached.
func MonthsUntilAge(currentAge, targetAge int) int {
	if targetAge <= currentAge {
		return 0
	}
	return (targetAge - currentAge) * 12
}

// YearsSpanned returns the number of (possibly partial) years covered by a
// number of months.
func YearsSpanned(months int) int {
	if months <= 0 {
		return 0
	}
	return (months + 11) / 12
}

// CheckpointMonth returns the month index reported for year y of a horizon
// of the given length, clamped to the final month.
func CheckpointMonth(year, horizonMonths int) int {
	idx := year * 12
	if idx > horizonMonths-1 {
		idx = horizonMonths - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}

// MonthKey identifies a calendar month independent of the day.
func MonthKey(date time.Time) int {
	return date.Year()*12 + int(date.Month()) - 1
}

// MonthsBetween counts calendar months from one date to another.
func MonthsBetween(fromDate, toDate time.Time) int {
	return MonthKey(toDate) - MonthKey(fromDate)
}

// AddMonths adds a specified number of months to a date
func AddMonths(date time.Time, months int) time.Time {
	return date.AddDate(0, months, 0)
}

// FirstOfMonth truncates a date to the first day of its month.
func FirstOfMonth(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01",
	"01/02/2006",
	"1/2/2006",
	"2006/01/02",
}

// ParseDate accepts the date formats commonly found in market data exports.
func ParseDate(value string) (time.Time, error) {
	s := strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", value)
}

// Package recurrence implements the recurring-transaction engine: calendar
// arithmetic for frequency advancement, template expansion over a bounded
// date window, conflict resolution against manually entered transactions,
// and template validation.
package recurrence

import (
	"errors"
	"fmt"
	"time"

	"lunargrid/internal/core"
)

var ErrUnknownFrequency = errors.New("unknown frequency variant")

// NextOccurrence returns the next occurrence date strictly after d for the
// given frequency. It is pure calendar arithmetic and assumes validated
// input (interval >= 1, anchors in range); the only error case is a nil or
// unknown frequency variant, which the batch generator records per template.
//
// Day-of-month anchors that do not exist in the target month clamp to the
// last day of that month (Jan 31 + monthly day 31 lands on Feb 28/29).
// Occurrences never roll forward into a later month.
func NextOccurrence(d core.Date, f core.Frequency) (core.Date, error) {
	switch v := f.(type) {
	case core.Daily:
		return d.AddDays(v.Interval), nil

	case core.Weekly:
		if v.DayOfWeek == nil {
			return d.AddDays(7 * v.Interval), nil
		}
		// Advance to the next matching weekday strictly after d, then add
		// the remaining whole weeks. The interval cycle is anchored on
		// occurrences, not on the start-date week.
		days := (*v.DayOfWeek - int(d.Weekday()) + 7) % 7
		if days == 0 {
			days = 7
		}
		return d.AddDays(days + 7*(v.Interval-1)), nil

	case core.Monthly:
		day := d.Day()
		if v.DayOfMonth != nil {
			day = *v.DayOfMonth
		}
		return addMonthsClamped(d, v.Interval, day), nil

	case core.Yearly:
		year := d.Year() + v.Interval
		month := d.Month()
		if v.MonthOfYear != nil {
			month = *v.MonthOfYear
		}
		day := d.Day()
		if v.DayOfMonth != nil {
			day = *v.DayOfMonth
		}
		return clampedDate(year, month, day), nil

	case nil:
		return core.Date{}, fmt.Errorf("%w: nil", ErrUnknownFrequency)
	default:
		return core.Date{}, fmt.Errorf("%w: %T", ErrUnknownFrequency, f)
	}
}

// addMonthsClamped moves n months past d's month and pins the result to day,
// clamped to the target month's length. It avoids time.AddDate, whose month
// overflow normalization (Jan 31 + 1 month = Mar 2/3) is exactly the
// behavior the clamp policy forbids.
func addMonthsClamped(d core.Date, n, day int) core.Date {
	months := d.Year()*12 + (d.Month() - 1) + n
	return clampedDate(months/12, months%12+1, day)
}

func clampedDate(year, month, day int) core.Date {
	if last := lastDayOfMonth(year, month); day > last {
		day = last
	}
	return core.NewDate(year, month, day)
}

func lastDayOfMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

package recurrence

import (
	"fmt"
	"time"

	"lunargrid/internal/core"
)

// FormatFrequency renders a frequency as a human-readable English string for
// display, e.g. "Daily", "Every 3 days", "Weekly (Monday)",
// "Monthly on day 15", "Yearly in June on day 15".
func FormatFrequency(f core.Frequency) string {
	switch v := f.(type) {
	case core.Daily:
		if v.Interval == 1 {
			return "Daily"
		}
		return fmt.Sprintf("Every %d days", v.Interval)

	case core.Weekly:
		base := "Weekly"
		if v.Interval > 1 {
			base = fmt.Sprintf("Every %d weeks", v.Interval)
		}
		if v.DayOfWeek != nil {
			return fmt.Sprintf("%s (%s)", base, time.Weekday(*v.DayOfWeek))
		}
		return base

	case core.Monthly:
		base := "Monthly"
		if v.Interval > 1 {
			base = fmt.Sprintf("Every %d months", v.Interval)
		}
		if v.DayOfMonth != nil {
			return fmt.Sprintf("%s on day %d", base, *v.DayOfMonth)
		}
		return base

	case core.Yearly:
		base := "Yearly"
		if v.Interval > 1 {
			base = fmt.Sprintf("Every %d years", v.Interval)
		}
		if v.MonthOfYear != nil {
			base = fmt.Sprintf("%s in %s", base, time.Month(*v.MonthOfYear))
		}
		if v.DayOfMonth != nil {
			base = fmt.Sprintf("%s on day %d", base, *v.DayOfMonth)
		}
		return base

	default:
		return "Unknown"
	}
}

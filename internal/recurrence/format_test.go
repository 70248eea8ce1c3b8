package recurrence

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lunargrid/internal/core"
)

func TestFormatFrequency(t *testing.T) {
	tests := []struct {
		freq core.Frequency
		want string
	}{
		{core.Daily{Interval: 1}, "Daily"},
		{core.Daily{Interval: 3}, "Every 3 days"},
		{core.Weekly{Interval: 1}, "Weekly"},
		{core.Weekly{Interval: 1, DayOfWeek: intp(1)}, "Weekly (Monday)"},
		{core.Weekly{Interval: 2}, "Every 2 weeks"},
		{core.Weekly{Interval: 2, DayOfWeek: intp(5)}, "Every 2 weeks (Friday)"},
		{core.Monthly{Interval: 1}, "Monthly"},
		{core.Monthly{Interval: 1, DayOfMonth: intp(15)}, "Monthly on day 15"},
		{core.Monthly{Interval: 6, DayOfMonth: intp(1)}, "Every 6 months on day 1"},
		{core.Yearly{Interval: 1}, "Yearly"},
		{core.Yearly{Interval: 1, MonthOfYear: intp(6)}, "Yearly in June"},
		{core.Yearly{Interval: 1, MonthOfYear: intp(6), DayOfMonth: intp(15)}, "Yearly in June on day 15"},
		{core.Yearly{Interval: 2, MonthOfYear: intp(12), DayOfMonth: intp(24)}, "Every 2 years in December on day 24"},
		{nil, "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFrequency(tt.freq))
		})
	}
}

package recurrence

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lunargrid/internal/core"
)

func monthlyTemplate() core.Template {
	return core.Template{
		ID:         "tpl-salary",
		UserID:     "user-1",
		Name:       "Salary",
		Amount:     decimal.NewFromInt(5000),
		Type:       core.Income,
		CategoryID: "category-income",
		Frequency:  core.Monthly{Interval: 1, DayOfMonth: intp(1)},
		StartDate:  core.NewDate(2024, 1, 1),
		EndDate:    core.NewDate(2024, 12, 31),
		IsActive:   true,
	}
}

func TestGenerate_MonthlyQuarter(t *testing.T) {
	tpl := monthlyTemplate()
	window := Window{Start: core.NewDate(2024, 1, 1), End: core.NewDate(2024, 3, 31)}

	got, err := Generate(tpl, window, Options{})
	require.NoError(t, err)
	require.Len(t, got, 3)

	wantDates := []string{"2024-01-01", "2024-02-01", "2024-03-01"}
	for i, g := range got {
		assert.Equal(t, wantDates[i], g.Date.ISO())
		assert.Equal(t, "recurring-tpl-salary-"+wantDates[i], g.ID)
		assert.Equal(t, "user-1", g.UserID)
		assert.True(t, g.Amount.Equal(decimal.NewFromInt(5000)))
		assert.Equal(t, core.Income, g.Type)
		assert.True(t, g.IsRecurring)
		assert.Equal(t, "tpl-salary", g.TemplateID)
		assert.False(t, g.IsOverridden)
		assert.Empty(t, g.OverrideTransactionID)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	tpl := monthlyTemplate()
	window := Window{Start: core.NewDate(2024, 1, 1), End: core.NewDate(2024, 6, 30)}

	first, err := Generate(tpl, window, Options{})
	require.NoError(t, err)
	second, err := Generate(tpl, window, Options{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGenerate_KeepsTemplatePhase(t *testing.T) {
	// Every 2 weeks from a Monday; a window starting mid-cycle must not
	// re-anchor the phase on the window start.
	tpl := monthlyTemplate()
	tpl.Frequency = core.Weekly{Interval: 2}
	tpl.StartDate = core.NewDate(2024, 1, 1) // Monday
	tpl.EndDate = core.Date{}

	window := Window{Start: core.NewDate(2024, 1, 10), End: core.NewDate(2024, 2, 20)}
	got, err := Generate(tpl, window, Options{})
	require.NoError(t, err)

	var dates []string
	for _, g := range got {
		dates = append(dates, g.Date.ISO())
	}
	assert.Equal(t, []string{"2024-01-15", "2024-01-29", "2024-02-12"}, dates)
}

func TestGenerate_WindowAndTemplateBounds(t *testing.T) {
	tpl := monthlyTemplate()
	tpl.Frequency = core.Daily{Interval: 1}
	tpl.StartDate = core.NewDate(2024, 1, 10)
	tpl.EndDate = core.NewDate(2024, 1, 20)

	window := Window{Start: core.NewDate(2024, 1, 1), End: core.NewDate(2024, 12, 31)}
	got, err := Generate(tpl, window, Options{})
	require.NoError(t, err)
	require.Len(t, got, 11)

	for _, g := range got {
		assert.False(t, g.Date.Before(tpl.StartDate.Time))
		assert.False(t, g.Date.After(tpl.EndDate.Time))
	}
}

func TestGenerate_OpenEndedTemplateStopsAtWindowEnd(t *testing.T) {
	tpl := monthlyTemplate()
	tpl.EndDate = core.Date{}

	window := Window{Start: core.NewDate(2024, 1, 1), End: core.NewDate(2024, 5, 31)}
	got, err := Generate(tpl, window, Options{})
	require.NoError(t, err)
	assert.Len(t, got, 5)
	assert.Equal(t, "2024-05-01", got[len(got)-1].Date.ISO())
}

func TestGenerate_SkipWeekends(t *testing.T) {
	tpl := monthlyTemplate()
	// 2024-06-01 is a Saturday; the occurrence shifts to Monday 2024-06-03.
	window := Window{Start: core.NewDate(2024, 6, 1), End: core.NewDate(2024, 6, 30)}

	got, err := Generate(tpl, window, Options{SkipWeekends: true})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2024-06-03", got[0].Date.ISO())
	assert.Equal(t, "recurring-tpl-salary-2024-06-03", got[0].ID)
}

func TestGenerate_WeekendShiftsKeepIDsUnique(t *testing.T) {
	tpl := monthlyTemplate()
	tpl.Frequency = core.Daily{Interval: 1}
	tpl.StartDate = core.NewDate(2024, 5, 31) // Friday
	tpl.EndDate = core.Date{}

	// Saturday and Sunday both shift onto Monday 2024-06-03, which has its
	// own occurrence; only one of the three may survive.
	window := Window{Start: core.NewDate(2024, 5, 31), End: core.NewDate(2024, 6, 4)}
	got, err := Generate(tpl, window, Options{SkipWeekends: true})
	require.NoError(t, err)

	var dates []string
	ids := make(map[string]int)
	for _, g := range got {
		dates = append(dates, g.Date.ISO())
		ids[g.ID]++
	}
	assert.Equal(t, []string{"2024-05-31", "2024-06-03", "2024-06-04"}, dates)
	for id, n := range ids {
		assert.Equal(t, 1, n, "id %s emitted %d times", id, n)
	}
}

func TestGenerate_WeekendShiftPastWindowEndIsDropped(t *testing.T) {
	tpl := monthlyTemplate()
	// Saturday occurrence would shift to Monday 2024-06-03, outside the window.
	window := Window{Start: core.NewDate(2024, 6, 1), End: core.NewDate(2024, 6, 1)}

	got, err := Generate(tpl, window, Options{SkipWeekends: true})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGenerate_Holidays(t *testing.T) {
	tpl := monthlyTemplate()
	window := Window{Start: core.NewDate(2024, 1, 1), End: core.NewDate(2024, 3, 31)}
	opts := Options{Holidays: map[string]struct{}{"2024-02-01": {}}}

	got, err := Generate(tpl, window, opts)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-01-01", got[0].Date.ISO())
	assert.Equal(t, "2024-03-01", got[1].Date.ISO())
}

func TestGenerate_InvalidFrequency(t *testing.T) {
	tpl := monthlyTemplate()
	tpl.Frequency = nil
	_, err := Generate(tpl, Window{Start: core.NewDate(2024, 1, 1), End: core.NewDate(2024, 1, 31)}, Options{})
	require.Error(t, err)

	tpl.Frequency = core.Daily{Interval: 0}
	_, err = Generate(tpl, Window{Start: core.NewDate(2024, 1, 1), End: core.NewDate(2024, 1, 31)}, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interval")
}

func TestGenerateAll_PartialFailure(t *testing.T) {
	good := monthlyTemplate()
	bad := monthlyTemplate()
	bad.ID = "tpl-broken"
	bad.Frequency = core.Weekly{Interval: 0}
	inactive := monthlyTemplate()
	inactive.ID = "tpl-paused"
	inactive.IsActive = false

	result := GenerateAll(GenerationConfig{
		Window:    Window{Start: core.NewDate(2024, 1, 1), End: core.NewDate(2024, 3, 31)},
		Templates: []core.Template{good, bad, inactive},
	})

	assert.Equal(t, 1, result.Stats.TemplatesProcessed)
	assert.Equal(t, 3, result.Stats.TransactionsGenerated)
	assert.Len(t, result.Transactions, 3)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "tpl-broken", result.Errors[0].TemplateID)

	for _, g := range result.Transactions {
		assert.NotEqual(t, "tpl-paused", g.TemplateID)
	}
}

func TestGenerateAll_Statistics(t *testing.T) {
	result := GenerateAll(GenerationConfig{
		Window:    Window{Start: core.NewDate(2024, 1, 1), End: core.NewDate(2024, 3, 31)},
		Templates: []core.Template{monthlyTemplate()},
	})

	assert.Equal(t, "2024-01-01", result.Stats.WindowStart.ISO())
	assert.Equal(t, "2024-03-31", result.Stats.WindowEnd.ISO())
	assert.Equal(t, 1, result.Stats.TemplatesProcessed)
	assert.Equal(t, 3, result.Stats.TransactionsGenerated)
	assert.GreaterOrEqual(t, result.Stats.Duration.Nanoseconds(), int64(0))
}

package core

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, 2024, d.Year())
	assert.Equal(t, 2, d.Month())
	assert.Equal(t, 29, d.Day())
	assert.Equal(t, "2024-02-29", d.ISO())

	_, err = ParseDate("2024-13-01")
	assert.ErrorIs(t, err, ErrInvalidDate)
	_, err = ParseDate("not a date")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestDate_JSON(t *testing.T) {
	raw, err := json.Marshal(NewDate(2024, 1, 31))
	require.NoError(t, err)
	assert.Equal(t, `"2024-01-31"`, string(raw))

	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-01-31"`), &d))
	assert.Equal(t, "2024-01-31", d.ISO())

	require.NoError(t, json.Unmarshal([]byte(`""`), &d))
	assert.True(t, d.IsEmpty())
}

func TestTransactionType_Valid(t *testing.T) {
	assert.True(t, Income.Valid())
	assert.True(t, Expense.Valid())
	assert.True(t, Saving.Valid())
	assert.False(t, TransactionType("TRANSFER").Valid())
	assert.False(t, TransactionType("").Valid())
}

func TestFrequencyJSON_RoundTrip(t *testing.T) {
	day := 31
	raw, err := MarshalFrequency(Monthly{Interval: 2, DayOfMonth: &day})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"monthly","interval":2,"dayOfMonth":31}`, string(raw))

	f, err := UnmarshalFrequency(raw)
	require.NoError(t, err)
	monthly, ok := f.(Monthly)
	require.True(t, ok)
	assert.Equal(t, 2, monthly.Interval)
	require.NotNil(t, monthly.DayOfMonth)
	assert.Equal(t, 31, *monthly.DayOfMonth)
}

func TestUnmarshalFrequency_UnknownType(t *testing.T) {
	_, err := UnmarshalFrequency([]byte(`{"type":"biweekly","interval":1}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "biweekly")
}

func TestTemplate_JSONCarriesFrequency(t *testing.T) {
	weekday := 1
	tpl := Template{
		ID:         "tpl-1",
		UserID:     "user-1",
		Name:       "Gym",
		Amount:     decimal.NewFromInt(40),
		Type:       Expense,
		CategoryID: "category-health",
		Frequency:  Weekly{Interval: 1, DayOfWeek: &weekday},
		StartDate:  NewDate(2024, 1, 1),
		IsActive:   true,
	}

	raw, err := json.Marshal(tpl)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"type":"weekly"`)

	var decoded Template
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.NotNil(t, decoded.Frequency)
	assert.Equal(t, FrequencyWeekly, decoded.Frequency.Kind())
	assert.Equal(t, "tpl-1", decoded.ID)
	assert.Equal(t, "2024-01-01", decoded.StartDate.ISO())
	assert.True(t, decoded.EndDate.IsEmpty())
}

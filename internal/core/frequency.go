package core

import (
	"encoding/json"
	"fmt"
)

const (
	FrequencyDaily   FrequencyType = "daily"
	FrequencyWeekly  FrequencyType = "weekly"
	FrequencyMonthly FrequencyType = "monthly"
	FrequencyYearly  FrequencyType = "yearly"
)

type FrequencyType string

// Frequency is a closed tagged variant describing how often and on what
// calendar anchor a template recurs. The only implementations are Daily,
// Weekly, Monthly and Yearly, which keeps the calculator's type switch
// exhaustive.
type Frequency interface {
	Kind() FrequencyType
	// Every returns the interval: every Nth day/week/month/year.
	Every() int
	isFrequency()
}

// Daily recurs every Interval days.
type Daily struct {
	Interval int
}

// Weekly recurs every Interval weeks, optionally pinned to a weekday
// (0=Sunday .. 6=Saturday).
type Weekly struct {
	Interval  int
	DayOfWeek *int
}

// Monthly recurs every Interval months, optionally pinned to a day of the
// month (1-31, clamped to shorter months by the calculator).
type Monthly struct {
	Interval   int
	DayOfMonth *int
}

// Yearly recurs every Interval years, optionally pinned to a month (1-12)
// and a day of the month.
type Yearly struct {
	Interval    int
	MonthOfYear *int
	DayOfMonth  *int
}

func (Daily) Kind() FrequencyType   { return FrequencyDaily }
func (Weekly) Kind() FrequencyType  { return FrequencyWeekly }
func (Monthly) Kind() FrequencyType { return FrequencyMonthly }
func (Yearly) Kind() FrequencyType  { return FrequencyYearly }

func (f Daily) Every() int   { return f.Interval }
func (f Weekly) Every() int  { return f.Interval }
func (f Monthly) Every() int { return f.Interval }
func (f Yearly) Every() int  { return f.Interval }

func (Daily) isFrequency()   {}
func (Weekly) isFrequency()  {}
func (Monthly) isFrequency() {}
func (Yearly) isFrequency()  {}

// frequencyJSON is the wire shape shared by the API and the SQLite column.
type frequencyJSON struct {
	Type        FrequencyType `json:"type"`
	Interval    int           `json:"interval"`
	DayOfWeek   *int          `json:"dayOfWeek,omitempty"`
	DayOfMonth  *int          `json:"dayOfMonth,omitempty"`
	MonthOfYear *int          `json:"monthOfYear,omitempty"`
}

// MarshalFrequency encodes a frequency with a "type" discriminator.
func MarshalFrequency(f Frequency) ([]byte, error) {
	if f == nil {
		return nil, fmt.Errorf("marshal frequency: nil frequency")
	}
	wire := frequencyJSON{Type: f.Kind(), Interval: f.Every()}
	switch v := f.(type) {
	case Daily:
	case Weekly:
		wire.DayOfWeek = v.DayOfWeek
	case Monthly:
		wire.DayOfMonth = v.DayOfMonth
	case Yearly:
		wire.MonthOfYear = v.MonthOfYear
		wire.DayOfMonth = v.DayOfMonth
	default:
		return nil, fmt.Errorf("marshal frequency: unknown variant %T", f)
	}
	return json.Marshal(wire)
}

// UnmarshalFrequency decodes a discriminated frequency value.
func UnmarshalFrequency(data []byte) (Frequency, error) {
	var wire frequencyJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("unmarshal frequency: %w", err)
	}
	switch wire.Type {
	case FrequencyDaily:
		return Daily{Interval: wire.Interval}, nil
	case FrequencyWeekly:
		return Weekly{Interval: wire.Interval, DayOfWeek: wire.DayOfWeek}, nil
	case FrequencyMonthly:
		return Monthly{Interval: wire.Interval, DayOfMonth: wire.DayOfMonth}, nil
	case FrequencyYearly:
		return Yearly{Interval: wire.Interval, MonthOfYear: wire.MonthOfYear, DayOfMonth: wire.DayOfMonth}, nil
	default:
		return nil, fmt.Errorf("unmarshal frequency: unknown type %q", wire.Type)
	}
}

// templateAlias avoids recursing into Template's own (Un)MarshalJSON.
type templateAlias Template

type templateJSON struct {
	templateAlias
	Frequency json.RawMessage `json:"frequency,omitempty"`
}

func (t Template) MarshalJSON() ([]byte, error) {
	wire := templateJSON{templateAlias: templateAlias(t)}
	if t.Frequency != nil {
		raw, err := MarshalFrequency(t.Frequency)
		if err != nil {
			return nil, err
		}
		wire.Frequency = raw
	}
	return json.Marshal(wire)
}

func (t *Template) UnmarshalJSON(data []byte) error {
	var wire templateJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*t = Template(wire.templateAlias)
	if len(wire.Frequency) > 0 {
		f, err := UnmarshalFrequency(wire.Frequency)
		if err != nil {
			return err
		}
		t.Frequency = f
	}
	return nil
}

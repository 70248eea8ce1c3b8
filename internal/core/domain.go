package core

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "INCOME"
	Expense TransactionType = "EXPENSE"
	Saving  TransactionType = "SAVING"
)

type (
	TransactionType string

	// Date is a calendar day at UTC midnight. The zero value means "no date"
	// (used for open-ended template end dates).
	Date struct {
		time.Time
	}

	// Template is a user-defined rule for generating recurring transactions.
	// Templates are validated before acceptance and are never mutated by the
	// generator.
	Template struct {
		ID            string          `json:"id"`
		UserID        string          `json:"userId"`
		Name          string          `json:"name"`
		Description   string          `json:"description,omitempty"`
		Amount        decimal.Decimal `json:"amount"`
		Type          TransactionType `json:"type"`
		CategoryID    string          `json:"categoryId"`
		SubcategoryID string          `json:"subcategoryId,omitempty"`
		Frequency     Frequency       `json:"-"`
		StartDate     Date            `json:"startDate"`
		EndDate       Date            `json:"endDate,omitempty"`
		IsActive      bool            `json:"isActive"`
		CreatedAt     time.Time       `json:"createdAt"`
		UpdatedAt     time.Time       `json:"updatedAt"`
	}

	// GeneratedTransaction is one occurrence produced from a template. Its ID
	// is deterministic ("recurring-<templateID>-<date>") so regenerating the
	// same template over the same window yields identical output.
	GeneratedTransaction struct {
		ID                    string          `json:"id"`
		UserID                string          `json:"userId"`
		Amount                decimal.Decimal `json:"amount"`
		Type                  TransactionType `json:"type"`
		CategoryID            string          `json:"categoryId"`
		SubcategoryID         string          `json:"subcategoryId,omitempty"`
		Description           string          `json:"description,omitempty"`
		Date                  Date            `json:"date"`
		IsRecurring           bool            `json:"isRecurring"`
		TemplateID            string          `json:"recurringTemplateId"`
		IsOverridden          bool            `json:"isOverridden"`
		OverrideTransactionID string          `json:"overrideTransactionId,omitempty"`
	}

	// ManualTransaction is a transaction entered directly by the user, not
	// produced by the generator. Manual transactions always win conflicts.
	ManualTransaction struct {
		ID            string          `json:"id"`
		UserID        string          `json:"userId"`
		Date          Date            `json:"date"`
		CategoryID    string          `json:"categoryId"`
		SubcategoryID string          `json:"subcategoryId,omitempty"`
		Amount        decimal.Decimal `json:"amount"`
		Type          TransactionType `json:"type"`
		Description   string          `json:"description,omitempty"`
		IsRecurring   bool            `json:"isRecurring"`
	}
)

var ErrInvalidDate = errors.New("invalid date")

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case Income, Expense, Saving:
		return true
	}
	return false
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// ISO returns the date as YYYY-MM-DD, or "" for the zero date.
func (d Date) ISO() string {
	if d.IsEmpty() {
		return ""
	}
	return d.Format("2006-01-02")
}

// IsEmpty returns true for the zero date (absent optional dates).
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// AddDays returns the date n days later.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.AddDate(0, 0, n)}
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month as 1-12.
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year.
func (d Date) Year() int {
	return d.Time.Year()
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsEmpty() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.ISO() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == `null` || s == `""` {
		*d = Date{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return ErrInvalidDate
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

package recurrence

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"lunargrid/internal/core"
)

// Approximate occurrences per month for each frequency kind, before dividing
// by the interval.
const (
	occurrencesPerMonthDaily   = 30.0
	occurrencesPerMonthWeekly  = 4.33
	occurrencesPerMonthMonthly = 1.0
	occurrencesPerMonthYearly  = 1.0 / 12.0
)

// ValidationLimits holds tunable business-rule thresholds.
type ValidationLimits struct {
	// LargeAmount triggers a non-blocking warning so the user double-checks
	// unusually large templates.
	LargeAmount decimal.Decimal
}

func DefaultValidationLimits() ValidationLimits {
	return ValidationLimits{LargeAmount: decimal.NewFromInt(10000)}
}

// EstimatedImpact approximates how many transactions a template will produce.
type EstimatedImpact struct {
	TransactionsPerMonth      float64 `json:"transactionsPerMonth"`
	TotalTransactionsNextYear int     `json:"totalTransactionsNextYear"`
}

// ValidationResult is always returned, never raised: errors block template
// acceptance, warnings do not.
type ValidationResult struct {
	IsValid         bool            `json:"isValid"`
	Errors          []string        `json:"errors"`
	Warnings        []string        `json:"warnings"`
	EstimatedImpact EstimatedImpact `json:"estimatedImpact"`
}

// ValidateTemplate checks a candidate template's structural and business-rule
// correctness before it is accepted. IsValid is true iff Errors is empty;
// warnings never affect it.
func ValidateTemplate(tpl core.Template, limits ValidationLimits) ValidationResult {
	var errs, warnings []string

	if strings.TrimSpace(tpl.Name) == "" {
		errs = append(errs, "name is required")
	}
	if tpl.Amount.LessThanOrEqual(decimal.Zero) {
		errs = append(errs, "amount must be greater than zero")
	}
	if tpl.Type == "" {
		errs = append(errs, "transaction type is required")
	} else if !tpl.Type.Valid() {
		errs = append(errs, fmt.Sprintf("unknown transaction type %q", tpl.Type))
	}
	if tpl.CategoryID == "" {
		errs = append(errs, "category is required")
	}
	if tpl.StartDate.IsEmpty() {
		errs = append(errs, "start date is required")
	}
	if !tpl.StartDate.IsEmpty() && !tpl.EndDate.IsEmpty() && tpl.EndDate.Before(tpl.StartDate.Time) {
		errs = append(errs, "end date must not be before start date")
	}

	errs = append(errs, validateFrequency(tpl.Frequency)...)

	if !limits.LargeAmount.IsZero() && tpl.Amount.GreaterThan(limits.LargeAmount) {
		warnings = append(warnings, fmt.Sprintf("amount %s exceeds the large-amount threshold of %s", tpl.Amount, limits.LargeAmount))
	}

	return ValidationResult{
		IsValid:         len(errs) == 0,
		Errors:          errs,
		Warnings:        warnings,
		EstimatedImpact: EstimateImpact(tpl.Frequency),
	}
}

func validateFrequency(f core.Frequency) []string {
	if f == nil {
		return []string{"frequency is required"}
	}

	var errs []string
	if f.Every() < 1 {
		errs = append(errs, fmt.Sprintf("interval must be at least 1, got %d", f.Every()))
	}
	switch v := f.(type) {
	case core.Daily:
	case core.Weekly:
		if v.DayOfWeek != nil && (*v.DayOfWeek < 0 || *v.DayOfWeek > 6) {
			errs = append(errs, fmt.Sprintf("day of week must be between 0 and 6, got %d", *v.DayOfWeek))
		}
	case core.Monthly:
		if v.DayOfMonth != nil && (*v.DayOfMonth < 1 || *v.DayOfMonth > 31) {
			errs = append(errs, fmt.Sprintf("day of month must be between 1 and 31, got %d", *v.DayOfMonth))
		}
	case core.Yearly:
		if v.MonthOfYear != nil && (*v.MonthOfYear < 1 || *v.MonthOfYear > 12) {
			errs = append(errs, fmt.Sprintf("month of year must be between 1 and 12, got %d", *v.MonthOfYear))
		}
		if v.DayOfMonth != nil && (*v.DayOfMonth < 1 || *v.DayOfMonth > 31) {
			errs = append(errs, fmt.Sprintf("day of month must be between 1 and 31, got %d", *v.DayOfMonth))
		}
	default:
		errs = append(errs, fmt.Sprintf("unknown frequency variant %T", f))
	}
	return errs
}

// EstimateImpact computes an approximate occurrence rate from the frequency
// alone. It is deliberately an estimate, never a full generator run.
func EstimateImpact(f core.Frequency) EstimatedImpact {
	if f == nil || f.Every() < 1 {
		return EstimatedImpact{}
	}

	var perMonth float64
	switch f.Kind() {
	case core.FrequencyDaily:
		perMonth = occurrencesPerMonthDaily
	case core.FrequencyWeekly:
		perMonth = occurrencesPerMonthWeekly
	case core.FrequencyMonthly:
		perMonth = occurrencesPerMonthMonthly
	case core.FrequencyYearly:
		perMonth = occurrencesPerMonthYearly
	default:
		return EstimatedImpact{}
	}
	perMonth /= float64(f.Every())

	return EstimatedImpact{
		TransactionsPerMonth:      perMonth,
		TotalTransactionsNextYear: int(math.Round(perMonth * 12)),
	}
}

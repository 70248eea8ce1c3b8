package recurrence

import (
	"fmt"
	"time"

	"lunargrid/internal/core"
)

// Window is an inclusive [Start, End] date range.
type Window struct {
	Start core.Date `json:"startDate"`
	End   core.Date `json:"endDate"`
}

// Options tunes occurrence emission.
type Options struct {
	// SkipWeekends shifts Saturday/Sunday occurrences to the following
	// Monday before emission.
	SkipWeekends bool
	// Holidays holds ISO dates (YYYY-MM-DD) to skip entirely, no shifting.
	Holidays map[string]struct{}
}

// GenerationConfig drives one batch generation pass.
type GenerationConfig struct {
	Window    Window
	Templates []core.Template
	Options   Options
}

// GenerationError records a single template's generation failure. One bad
// template never aborts the batch.
type GenerationError struct {
	TemplateID string `json:"templateId"`
	Message    string `json:"message"`
}

// GenerationStats summarizes one batch generation pass.
type GenerationStats struct {
	TemplatesProcessed    int           `json:"templatesProcessed"`
	TransactionsGenerated int           `json:"transactionsGenerated"`
	WindowStart           core.Date     `json:"windowStart"`
	WindowEnd             core.Date     `json:"windowEnd"`
	Duration              time.Duration `json:"duration"`
}

// GenerationResult is the outcome of GenerateAll.
type GenerationResult struct {
	Transactions []core.GeneratedTransaction `json:"transactions"`
	Errors       []GenerationError           `json:"errors,omitempty"`
	Stats        GenerationStats             `json:"statistics"`
}

// GeneratedID derives the deterministic occurrence id. Downstream
// idempotence depends on this exact format; it must never become random.
func GeneratedID(templateID string, date core.Date) string {
	return "recurring-" + templateID + "-" + date.ISO()
}

// Generate expands one template into concrete occurrences over the window.
// Iteration starts at the template's own StartDate so occurrences keep the
// template's recurrence phase; dates before the window are discarded and the
// loop stops past min(template end, window end), which bounds every call.
func Generate(tpl core.Template, window Window, opts Options) ([]core.GeneratedTransaction, error) {
	if tpl.Frequency == nil {
		return nil, fmt.Errorf("template %s: %w: nil", tpl.ID, ErrUnknownFrequency)
	}
	if tpl.Frequency.Every() < 1 {
		return nil, fmt.Errorf("template %s: interval must be at least 1, got %d", tpl.ID, tpl.Frequency.Every())
	}

	limit := window.End
	if !tpl.EndDate.IsEmpty() && tpl.EndDate.Before(limit.Time) {
		limit = tpl.EndDate
	}

	var out []core.GeneratedTransaction
	// Weekend shifting can land several occurrences on the same Monday; only
	// the first is kept so ids stay unique within the batch.
	seen := make(map[string]struct{})
	cursor := tpl.StartDate
	for !cursor.After(limit.Time) {
		if !cursor.Before(window.Start.Time) {
			date := cursor
			if opts.SkipWeekends {
				date = shiftWeekend(date)
			}
			_, holiday := opts.Holidays[date.ISO()]
			_, dup := seen[date.ISO()]
			if !holiday && !dup && !date.After(limit.Time) {
				seen[date.ISO()] = struct{}{}
				out = append(out, occurrence(tpl, date))
			}
		}
		next, err := NextOccurrence(cursor, tpl.Frequency)
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", tpl.ID, err)
		}
		cursor = next
	}
	return out, nil
}

// GenerateAll runs Generate for every active template in the config,
// collecting per-template failures into the result instead of aborting the
// batch. It performs no I/O; the caller persists the outcome.
func GenerateAll(cfg GenerationConfig) GenerationResult {
	started := time.Now()
	result := GenerationResult{
		Stats: GenerationStats{
			WindowStart: cfg.Window.Start,
			WindowEnd:   cfg.Window.End,
		},
	}

	for _, tpl := range cfg.Templates {
		if !tpl.IsActive {
			continue
		}
		occurrences, err := Generate(tpl, cfg.Window, cfg.Options)
		if err != nil {
			result.Errors = append(result.Errors, GenerationError{
				TemplateID: tpl.ID,
				Message:    err.Error(),
			})
			continue
		}
		result.Transactions = append(result.Transactions, occurrences...)
		result.Stats.TemplatesProcessed++
	}

	result.Stats.TransactionsGenerated = len(result.Transactions)
	result.Stats.Duration = time.Since(started)
	return result
}

func occurrence(tpl core.Template, date core.Date) core.GeneratedTransaction {
	return core.GeneratedTransaction{
		ID:            GeneratedID(tpl.ID, date),
		UserID:        tpl.UserID,
		Amount:        tpl.Amount,
		Type:          tpl.Type,
		CategoryID:    tpl.CategoryID,
		SubcategoryID: tpl.SubcategoryID,
		Description:   tpl.Description,
		Date:          date,
		IsRecurring:   true,
		TemplateID:    tpl.ID,
	}
}

func shiftWeekend(d core.Date) core.Date {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDays(2)
	case time.Sunday:
		return d.AddDays(1)
	}
	return d
}

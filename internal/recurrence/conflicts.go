package recurrence

import (
	"fmt"

	"github.com/shopspring/decimal"

	"lunargrid/internal/core"
)

// ConflictInfo describes one collision between a generated occurrence and a
// manual transaction on the same day, category and subcategory.
type ConflictInfo struct {
	Date                   core.Date       `json:"date"`
	CategoryID             string          `json:"categoryId"`
	SubcategoryID          string          `json:"subcategoryId,omitempty"`
	RecurringAmount        decimal.Decimal `json:"recurringAmount"`
	ManualAmount           decimal.Decimal `json:"manualAmount"`
	AmountDifference       decimal.Decimal `json:"amountDifference"`
	RecurringTransactionID string          `json:"recurringTransactionId"`
	ManualTransactionID    string          `json:"manualTransactionId"`
}

// ConflictSummary aggregates one resolution pass.
type ConflictSummary struct {
	TotalConflicts        int            `json:"totalConflicts"`
	Conflicts             []ConflictInfo `json:"conflicts"`
	ResolutionSuggestions []string       `json:"resolutionSuggestions"`
}

// collisionKey matches on (date, category, subcategory); an absent
// subcategory on both sides counts as a match.
type collisionKey struct {
	date          string
	categoryID    string
	subcategoryID string
}

func keyOf(date core.Date, categoryID, subcategoryID string) collisionKey {
	return collisionKey{date: date.ISO(), categoryID: categoryID, subcategoryID: subcategoryID}
}

// manualByKey indexes manual transactions by collision key. When several
// manual transactions share a key, the first in input order wins, which
// keeps detection deterministic.
func manualByKey(existing []core.ManualTransaction) map[collisionKey]core.ManualTransaction {
	index := make(map[collisionKey]core.ManualTransaction, len(existing))
	for _, m := range existing {
		k := keyOf(m.Date, m.CategoryID, m.SubcategoryID)
		if _, ok := index[k]; !ok {
			index[k] = m
		}
	}
	return index
}

// DetectConflicts finds every collision between generated occurrences and
// manual transactions. It mutates the elements of generated in place,
// setting IsOverridden and OverrideTransactionID on colliding occurrences
// and clearing them otherwise, so repeated runs over the same inputs
// converge on the same markings.
func DetectConflicts(generated []core.GeneratedTransaction, existing []core.ManualTransaction) ConflictSummary {
	index := manualByKey(existing)

	summary := ConflictSummary{}
	for i := range generated {
		g := &generated[i]
		manual, ok := index[keyOf(g.Date, g.CategoryID, g.SubcategoryID)]
		if !ok {
			g.IsOverridden = false
			g.OverrideTransactionID = ""
			continue
		}
		g.IsOverridden = true
		g.OverrideTransactionID = manual.ID
		summary.Conflicts = append(summary.Conflicts, ConflictInfo{
			Date:                   g.Date,
			CategoryID:             g.CategoryID,
			SubcategoryID:          g.SubcategoryID,
			RecurringAmount:        g.Amount,
			ManualAmount:           manual.Amount,
			AmountDifference:       manual.Amount.Sub(g.Amount),
			RecurringTransactionID: g.ID,
			ManualTransactionID:    manual.ID,
		})
	}

	summary.TotalConflicts = len(summary.Conflicts)
	if summary.TotalConflicts > 0 {
		summary.ResolutionSuggestions = append(summary.ResolutionSuggestions,
			fmt.Sprintf("%d conflicts detected between recurring and manual transactions", summary.TotalConflicts),
			"Manual transactions take precedence; conflicting recurring occurrences are skipped")
	}
	return summary
}

// ResolveConflicts returns the subset of generated occurrences whose
// collision key matches no manual transaction. This is the authoritative
// conflict-free set to persist or display; every occurrence it drops appears
// in DetectConflicts' report for the same inputs, and vice versa. The input
// slice is not modified.
func ResolveConflicts(generated []core.GeneratedTransaction, existing []core.ManualTransaction) []core.GeneratedTransaction {
	index := manualByKey(existing)

	resolved := make([]core.GeneratedTransaction, 0, len(generated))
	for _, g := range generated {
		if _, ok := index[keyOf(g.Date, g.CategoryID, g.SubcategoryID)]; ok {
			continue
		}
		resolved = append(resolved, g)
	}
	return resolved
}

package services

import (
	"context"
	"fmt"
	"log/slog"

	"lunargrid/internal/amqp"
	"lunargrid/internal/core"
	"lunargrid/internal/recurrence"
)

// TemplateStore is the subset of the repository the generation service reads
// templates from.
type TemplateStore interface {
	ListActiveTemplates(ctx context.Context, userID string) ([]core.Template, error)
}

// TransactionStore persists generation output and supplies the manual
// transactions used for conflict detection.
type TransactionStore interface {
	ListManualTransactions(ctx context.Context, userID string, start, end core.Date) ([]core.ManualTransaction, error)
	ReplaceGeneratedTransactions(ctx context.Context, userID string, start, end core.Date, generated []core.GeneratedTransaction) error
}

// EventPublisher announces completed generation runs. Publishing is best
// effort; a broker outage never fails a run.
type EventPublisher interface {
	PublishGenerationCompleted(ctx context.Context, msg *amqp.GenerationCompletedMessage) error
}

// GenerationReport is the full outcome of one generation run for one user.
type GenerationReport struct {
	Result       recurrence.GenerationResult `json:"result"`
	Conflicts    recurrence.ConflictSummary  `json:"conflicts"`
	Transactions []core.GeneratedTransaction `json:"transactions"`
}

type GenerationService struct {
	templates    TemplateStore
	transactions TransactionStore
	publisher    EventPublisher
	options      recurrence.Options
}

// NewGenerationService creates a generation service. publisher may be nil
// when no broker is configured.
func NewGenerationService(templates TemplateStore, transactions TransactionStore, publisher EventPublisher, options recurrence.Options) *GenerationService {
	return &GenerationService{
		templates:    templates,
		transactions: transactions,
		publisher:    publisher,
		options:      options,
	}
}

// GenerateForUser expands the user's active templates over the window,
// resolves conflicts against manual transactions and stores the surviving
// occurrences. The run is deterministic and safe to repeat.
func (s *GenerationService) GenerateForUser(ctx context.Context, userID string, window recurrence.Window) (GenerationReport, error) {
	if window.Start.IsEmpty() || window.End.IsEmpty() {
		return GenerationReport{}, fmt.Errorf("generation window requires start and end dates")
	}
	if window.End.Before(window.Start.Time) {
		return GenerationReport{}, fmt.Errorf("generation window end %s before start %s", window.End.ISO(), window.Start.ISO())
	}

	templates, err := s.templates.ListActiveTemplates(ctx, userID)
	if err != nil {
		return GenerationReport{}, fmt.Errorf("list active templates: %w", err)
	}

	result := recurrence.GenerateAll(recurrence.GenerationConfig{
		Window:    window,
		Templates: templates,
		Options:   s.options,
	})

	manual, err := s.transactions.ListManualTransactions(ctx, userID, window.Start, window.End)
	if err != nil {
		return GenerationReport{}, fmt.Errorf("list manual transactions: %w", err)
	}

	summary := recurrence.DetectConflicts(result.Transactions, manual)
	resolved := recurrence.ResolveConflicts(result.Transactions, manual)

	if err := s.transactions.ReplaceGeneratedTransactions(ctx, userID, window.Start, window.End, resolved); err != nil {
		return GenerationReport{}, fmt.Errorf("store generated transactions: %w", err)
	}

	slog.InfoContext(ctx, "Generation run completed",
		"user_id", userID,
		"window_start", window.Start.ISO(),
		"window_end", window.End.ISO(),
		"templates_processed", result.Stats.TemplatesProcessed,
		"generated", result.Stats.TransactionsGenerated,
		"conflicts", summary.TotalConflicts,
		"stored", len(resolved),
		"errors", len(result.Errors))

	if s.publisher != nil {
		msg := amqp.NewGenerationCompletedMessage(
			userID, window.Start.ISO(), window.End.ISO(),
			len(resolved), summary.TotalConflicts)
		if err := s.publisher.PublishGenerationCompleted(ctx, msg); err != nil {
			slog.WarnContext(ctx, "Failed to publish generation completed message",
				"user_id", userID,
				"error", err)
		}
	}

	return GenerationReport{
		Result:       result,
		Conflicts:    summary,
		Transactions: resolved,
	}, nil
}

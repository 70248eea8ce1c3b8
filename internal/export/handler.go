package export

import (
	"context"
	"fmt"

	"lunargrid/internal/amqp"
	"lunargrid/internal/core"
)

// GeneratedSource reads the stored output of a generation run.
type GeneratedSource interface {
	ListGeneratedTransactions(ctx context.Context, userID string, start, end core.Date) ([]core.GeneratedTransaction, error)
}

// Sink receives the rows to export. *SheetsExporter is the production sink.
type Sink interface {
	Export(ctx context.Context, userID string, transactions []core.GeneratedTransaction) error
}

// GenerationCompletedHandler builds the consume callback for generation
// completed messages: it reads the stored transactions for the announced
// user and window and pushes them to the sink. Returning an error requeues
// the message.
func GenerationCompletedHandler(ctx context.Context, source GeneratedSource, sink Sink) func(*amqp.GenerationCompletedMessage) error {
	return func(msg *amqp.GenerationCompletedMessage) error {
		start, err := core.ParseDate(msg.WindowStart)
		if err != nil {
			return fmt.Errorf("parse window start %q: %w", msg.WindowStart, err)
		}
		end, err := core.ParseDate(msg.WindowEnd)
		if err != nil {
			return fmt.Errorf("parse window end %q: %w", msg.WindowEnd, err)
		}

		transactions, err := source.ListGeneratedTransactions(ctx, msg.UserID, start, end)
		if err != nil {
			return fmt.Errorf("list generated transactions: %w", err)
		}
		if len(transactions) == 0 {
			return nil
		}

		if err := sink.Export(ctx, msg.UserID, transactions); err != nil {
			return fmt.Errorf("export transactions: %w", err)
		}
		return nil
	}
}

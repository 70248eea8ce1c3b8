package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"lunargrid/internal/core"
)

// TransactionRepository is the persistence surface the transaction service needs.
type TransactionRepository interface {
	CreateManualTransaction(ctx context.Context, tx core.ManualTransaction) error
	ListManualTransactions(ctx context.Context, userID string, start, end core.Date) ([]core.ManualTransaction, error)
	ListGeneratedTransactions(ctx context.Context, userID string, start, end core.Date) ([]core.GeneratedTransaction, error)
}

// ErrTransactionInvalid carries the field errors for a rejected transaction.
type ErrTransactionInvalid struct {
	Errors []string
}

func (e ErrTransactionInvalid) Error() string {
	return "transaction invalid: " + strings.Join(e.Errors, "; ")
}

// TransactionWindow is a user's transactions inside one date window, manual
// entries and stored generation output side by side.
type TransactionWindow struct {
	Manual    []core.ManualTransaction    `json:"manualTransactions"`
	Generated []core.GeneratedTransaction `json:"generatedTransactions"`
}

type TransactionService struct {
	repo TransactionRepository
}

func NewTransactionService(repo TransactionRepository) *TransactionService {
	return &TransactionService{repo: repo}
}

// CreateManual validates and persists a manually entered transaction. Manual
// entries take precedence over generated occurrences on the same date,
// category and subcategory at the next generation run.
func (s *TransactionService) CreateManual(ctx context.Context, tx core.ManualTransaction) (core.ManualTransaction, error) {
	var errs []string
	if tx.UserID == "" {
		errs = append(errs, "userId is required")
	}
	if tx.Date.IsEmpty() {
		errs = append(errs, "date is required")
	}
	if tx.CategoryID == "" {
		errs = append(errs, "category is required")
	}
	if tx.Amount.LessThanOrEqual(decimal.Zero) {
		errs = append(errs, "amount must be greater than zero")
	}
	if tx.Type == "" {
		errs = append(errs, "transaction type is required")
	} else if !tx.Type.Valid() {
		errs = append(errs, fmt.Sprintf("unknown transaction type %q", tx.Type))
	}
	if len(errs) > 0 {
		return core.ManualTransaction{}, ErrTransactionInvalid{Errors: errs}
	}

	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	tx.IsRecurring = false

	if err := s.repo.CreateManualTransaction(ctx, tx); err != nil {
		return core.ManualTransaction{}, fmt.Errorf("create manual transaction: %w", err)
	}

	slog.InfoContext(ctx, "Manual transaction created",
		"transaction_id", tx.ID,
		"user_id", tx.UserID,
		"date", tx.Date.ISO())

	return tx, nil
}

// ListWindow returns the user's manual and generated transactions with dates
// inside [start, end].
func (s *TransactionService) ListWindow(ctx context.Context, userID string, start, end core.Date) (TransactionWindow, error) {
	manual, err := s.repo.ListManualTransactions(ctx, userID, start, end)
	if err != nil {
		return TransactionWindow{}, fmt.Errorf("list manual transactions: %w", err)
	}
	generated, err := s.repo.ListGeneratedTransactions(ctx, userID, start, end)
	if err != nil {
		return TransactionWindow{}, fmt.Errorf("list generated transactions: %w", err)
	}

	if manual == nil {
		manual = []core.ManualTransaction{}
	}
	if generated == nil {
		generated = []core.GeneratedTransaction{}
	}
	return TransactionWindow{Manual: manual, Generated: generated}, nil
}

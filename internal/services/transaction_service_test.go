package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lunargrid/internal/core"
)

type fakeTransactionRepo struct {
	created   []core.ManualTransaction
	manual    []core.ManualTransaction
	generated []core.GeneratedTransaction
}

func (f *fakeTransactionRepo) CreateManualTransaction(ctx context.Context, tx core.ManualTransaction) error {
	f.created = append(f.created, tx)
	return nil
}

func (f *fakeTransactionRepo) ListManualTransactions(ctx context.Context, userID string, start, end core.Date) ([]core.ManualTransaction, error) {
	return f.manual, nil
}

func (f *fakeTransactionRepo) ListGeneratedTransactions(ctx context.Context, userID string, start, end core.Date) ([]core.GeneratedTransaction, error) {
	return f.generated, nil
}

func manualFixture() core.ManualTransaction {
	return core.ManualTransaction{
		UserID:     "user-1",
		Date:       core.NewDate(2024, 1, 15),
		CategoryID: "category-1",
		Amount:     decimal.NewFromInt(250),
		Type:       core.Expense,
	}
}

func TestTransactionService_CreateManual(t *testing.T) {
	repo := &fakeTransactionRepo{}
	svc := NewTransactionService(repo)

	created, err := svc.CreateManual(context.Background(), manualFixture())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.IsRecurring)
	require.Len(t, repo.created, 1)
	assert.Equal(t, created.ID, repo.created[0].ID)
}

func TestTransactionService_CreateManualRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*core.ManualTransaction)
		wantErr string
	}{
		{"missing user", func(tx *core.ManualTransaction) { tx.UserID = "" }, "userId is required"},
		{"missing date", func(tx *core.ManualTransaction) { tx.Date = core.Date{} }, "date is required"},
		{"missing category", func(tx *core.ManualTransaction) { tx.CategoryID = "" }, "category is required"},
		{"zero amount", func(tx *core.ManualTransaction) { tx.Amount = decimal.Zero }, "amount must be greater than zero"},
		{"unknown type", func(tx *core.ManualTransaction) { tx.Type = "TRANSFER" }, `unknown transaction type "TRANSFER"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeTransactionRepo{}
			svc := NewTransactionService(repo)

			tx := manualFixture()
			tt.mutate(&tx)
			_, err := svc.CreateManual(context.Background(), tx)

			var invalid ErrTransactionInvalid
			require.ErrorAs(t, err, &invalid)
			assert.Contains(t, invalid.Errors, tt.wantErr)
			assert.Empty(t, repo.created, "invalid transaction must not be persisted")
		})
	}
}

func TestTransactionService_ListWindow(t *testing.T) {
	repo := &fakeTransactionRepo{
		manual: []core.ManualTransaction{{ID: "manual-1"}},
		generated: []core.GeneratedTransaction{
			{ID: "recurring-tpl-1-2024-01-01"},
			{ID: "recurring-tpl-1-2024-02-01"},
		},
	}
	svc := NewTransactionService(repo)

	window, err := svc.ListWindow(context.Background(), "user-1", core.NewDate(2024, 1, 1), core.NewDate(2024, 3, 31))
	require.NoError(t, err)
	assert.Len(t, window.Manual, 1)
	assert.Len(t, window.Generated, 2)
}

func TestTransactionService_ListWindowEmptyIsNotNil(t *testing.T) {
	svc := NewTransactionService(&fakeTransactionRepo{})

	window, err := svc.ListWindow(context.Background(), "user-1", core.NewDate(2024, 1, 1), core.NewDate(2024, 1, 31))
	require.NoError(t, err)
	assert.NotNil(t, window.Manual)
	assert.NotNil(t, window.Generated)
	assert.Empty(t, window.Manual)
	assert.Empty(t, window.Generated)
}

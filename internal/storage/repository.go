package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"lunargrid/internal/core"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("not found")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) CreateTemplate(ctx context.Context, tpl core.Template) error {
	freq, err := core.MarshalFrequency(tpl.Frequency)
	if err != nil {
		return fmt.Errorf("encode frequency: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO recurring_templates
			(id, user_id, name, description, amount, type, category_id, subcategory_id,
			 frequency, start_date, end_date, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tpl.ID, tpl.UserID, tpl.Name, tpl.Description, tpl.Amount.String(), string(tpl.Type),
		tpl.CategoryID, tpl.SubcategoryID, string(freq), tpl.StartDate.ISO(), tpl.EndDate.ISO(),
		boolToInt(tpl.IsActive), tpl.CreatedAt.Format(time.RFC3339), tpl.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert template: %w", err)
	}

	slog.InfoContext(ctx, "Template saved",
		"template_id", tpl.ID,
		"user_id", tpl.UserID,
		"name", tpl.Name)
	return nil
}

func (r *SQLiteRepository) UpdateTemplate(ctx context.Context, tpl core.Template) error {
	freq, err := core.MarshalFrequency(tpl.Frequency)
	if err != nil {
		return fmt.Errorf("encode frequency: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE recurring_templates
		SET name = ?, description = ?, amount = ?, type = ?, category_id = ?,
		    subcategory_id = ?, frequency = ?, start_date = ?, end_date = ?,
		    is_active = ?, updated_at = ?
		WHERE id = ?`,
		tpl.Name, tpl.Description, tpl.Amount.String(), string(tpl.Type), tpl.CategoryID,
		tpl.SubcategoryID, string(freq), tpl.StartDate.ISO(), tpl.EndDate.ISO(),
		boolToInt(tpl.IsActive), tpl.UpdatedAt.Format(time.RFC3339), tpl.ID)
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

const templateColumns = `id, user_id, name, description, amount, type, category_id,
	subcategory_id, frequency, start_date, end_date, is_active, created_at, updated_at`

func (r *SQLiteRepository) GetTemplate(ctx context.Context, id string) (core.Template, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+templateColumns+` FROM recurring_templates WHERE id = ?`, id)

	tpl, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Template{}, ErrNotFound
	}
	if err != nil {
		return core.Template{}, fmt.Errorf("get template %s: %w", id, err)
	}
	return tpl, nil
}

func (r *SQLiteRepository) ListTemplates(ctx context.Context, userID string) ([]core.Template, error) {
	return r.listTemplates(ctx,
		`SELECT `+templateColumns+` FROM recurring_templates WHERE user_id = ? ORDER BY created_at, id`, userID)
}

func (r *SQLiteRepository) ListActiveTemplates(ctx context.Context, userID string) ([]core.Template, error) {
	return r.listTemplates(ctx,
		`SELECT `+templateColumns+` FROM recurring_templates WHERE user_id = ? AND is_active = 1 ORDER BY created_at, id`, userID)
}

func (r *SQLiteRepository) listTemplates(ctx context.Context, query string, args ...any) ([]core.Template, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []core.Template
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, tpl)
	}
	return templates, rows.Err()
}

func (r *SQLiteRepository) SetTemplateActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE recurring_templates SET is_active = ?, updated_at = ? WHERE id = ?`,
		boolToInt(active), time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("set template active: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListUserIDs returns every user owning at least one active template.
func (r *SQLiteRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT user_id FROM recurring_templates WHERE is_active = 1 ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list user ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *SQLiteRepository) CreateManualTransaction(ctx context.Context, tx core.ManualTransaction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions
			(id, user_id, date, amount, type, category_id, subcategory_id, description, is_recurring)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0)`,
		tx.ID, tx.UserID, tx.Date.ISO(), tx.Amount.String(), string(tx.Type),
		tx.CategoryID, tx.SubcategoryID, tx.Description)
	if err != nil {
		return fmt.Errorf("insert manual transaction: %w", err)
	}
	return nil
}

// ListManualTransactions returns the user's non-recurring transactions with
// dates inside [start, end].
func (r *SQLiteRepository) ListManualTransactions(ctx context.Context, userID string, start, end core.Date) ([]core.ManualTransaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, date, amount, type, category_id, subcategory_id, description
		FROM transactions
		WHERE user_id = ? AND is_recurring = 0 AND date >= ? AND date <= ?
		ORDER BY date, id`,
		userID, start.ISO(), end.ISO())
	if err != nil {
		return nil, fmt.Errorf("list manual transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.ManualTransaction
	for rows.Next() {
		var (
			tx           core.ManualTransaction
			date, amount string
		)
		if err := rows.Scan(&tx.ID, &tx.UserID, &date, &amount, &tx.Type,
			&tx.CategoryID, &tx.SubcategoryID, &tx.Description); err != nil {
			return nil, fmt.Errorf("scan manual transaction: %w", err)
		}
		if tx.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("parse transaction date: %w", err)
		}
		if tx.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse transaction amount: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// ReplaceGeneratedTransactions swaps the user's generated transactions inside
// the window for the given set, in a single transaction. Deterministic ids
// make the operation safe to repeat.
func (r *SQLiteRepository) ReplaceGeneratedTransactions(ctx context.Context, userID string, start, end core.Date, generated []core.GeneratedTransaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM transactions
		WHERE user_id = ? AND is_recurring = 1 AND date >= ? AND date <= ?`,
		userID, start.ISO(), end.ISO())
	if err != nil {
		return fmt.Errorf("delete generated transactions: %w", err)
	}

	for _, g := range generated {
		_, err = tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO transactions
				(id, user_id, date, amount, type, category_id, subcategory_id, description,
				 is_recurring, recurring_template_id, is_overridden, override_transaction_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?, ?)`,
			g.ID, g.UserID, g.Date.ISO(), g.Amount.String(), string(g.Type),
			g.CategoryID, g.SubcategoryID, g.Description,
			g.TemplateID, boolToInt(g.IsOverridden), g.OverrideTransactionID)
		if err != nil {
			return fmt.Errorf("insert generated transaction %s: %w", g.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	slog.InfoContext(ctx, "Generated transactions replaced",
		"user_id", userID,
		"window_start", start.ISO(),
		"window_end", end.ISO(),
		"count", len(generated))
	return nil
}

// ListGeneratedTransactions returns the user's stored generated transactions
// with dates inside [start, end].
func (r *SQLiteRepository) ListGeneratedTransactions(ctx context.Context, userID string, start, end core.Date) ([]core.GeneratedTransaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, date, amount, type, category_id, subcategory_id, description,
		       recurring_template_id, is_overridden, override_transaction_id
		FROM transactions
		WHERE user_id = ? AND is_recurring = 1 AND date >= ? AND date <= ?
		ORDER BY date, id`,
		userID, start.ISO(), end.ISO())
	if err != nil {
		return nil, fmt.Errorf("list generated transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.GeneratedTransaction
	for rows.Next() {
		var (
			g            core.GeneratedTransaction
			date, amount string
			overridden   int
		)
		if err := rows.Scan(&g.ID, &g.UserID, &date, &amount, &g.Type,
			&g.CategoryID, &g.SubcategoryID, &g.Description,
			&g.TemplateID, &overridden, &g.OverrideTransactionID); err != nil {
			return nil, fmt.Errorf("scan generated transaction: %w", err)
		}
		if g.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("parse transaction date: %w", err)
		}
		if g.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse transaction amount: %w", err)
		}
		g.IsRecurring = true
		g.IsOverridden = overridden != 0
		txs = append(txs, g)
	}
	return txs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row rowScanner) (core.Template, error) {
	var (
		tpl                  core.Template
		amount, freq         string
		start, end           string
		createdAt, updatedAt string
		active               int
	)
	err := row.Scan(&tpl.ID, &tpl.UserID, &tpl.Name, &tpl.Description, &amount, &tpl.Type,
		&tpl.CategoryID, &tpl.SubcategoryID, &freq, &start, &end, &active, &createdAt, &updatedAt)
	if err != nil {
		return core.Template{}, err
	}

	if tpl.Amount, err = decimal.NewFromString(amount); err != nil {
		return core.Template{}, fmt.Errorf("parse amount: %w", err)
	}
	if tpl.Frequency, err = core.UnmarshalFrequency([]byte(freq)); err != nil {
		return core.Template{}, fmt.Errorf("decode frequency: %w", err)
	}
	if tpl.StartDate, err = core.ParseDate(start); err != nil {
		return core.Template{}, fmt.Errorf("parse start date: %w", err)
	}
	if end != "" {
		if tpl.EndDate, err = core.ParseDate(end); err != nil {
			return core.Template{}, fmt.Errorf("parse end date: %w", err)
		}
	}
	if tpl.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return core.Template{}, fmt.Errorf("parse created_at: %w", err)
	}
	if tpl.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return core.Template{}, fmt.Errorf("parse updated_at: %w", err)
	}
	tpl.IsActive = active != 0
	return tpl, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Package storage persists per-owner expense records in SQLite and answers
// the grouped aggregation queries the analytics endpoint serves.
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

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"spendwise/internal/core"
)

type SQLiteRepository struct {
	db *sql.DB
}

// ExpenseFilter narrows a listing. Zero values mean "no filter"; Page and
// Limit control pagination with the handler supplying defaults.
type ExpenseFilter struct {
	Category core.Category
	Start    *time.Time
	End      *time.Time
	Page     int
	Limit    int
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
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

// CreateExpense validates the draft, assigns id and bookkeeping timestamps
// and inserts the record into the owner's scope.
func (r *SQLiteRepository) CreateExpense(ctx context.Context, ownerID string, draft core.Draft) (core.Expense, error) {
	if err := draft.Validate(); err != nil {
		return core.Expense{}, err
	}

	now := time.Now().UTC()
	e := core.Expense{
		ID:          uuid.NewString(),
		Amount:      draft.Amount,
		Description: draft.Description,
		Category:    draft.Category,
		Date:        draft.Date.UTC(),
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (id, owner_id, amount_cents, description, category, date_ms, created_at_ms, updated_at_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.OwnerID, e.Amount.Cents, e.Description, e.Category.String(),
		e.Date.UnixMilli(), now.UnixMilli(), now.UnixMilli())
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", e.ID,
		"owner_id", ownerID,
		"amount_cents", e.Amount.Cents,
		"category", e.Category)
	return e, nil
}

// GetExpense fetches one record within the owner's scope.
func (r *SQLiteRepository) GetExpense(ctx context.Context, ownerID, id string) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, owner_id, amount_cents, description, category, date_ms, created_at_ms, updated_at_ms
		FROM expenses WHERE id = ? AND owner_id = ?`, id, ownerID)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, core.ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

// ListExpenses returns one page of the owner's records matching the filter,
// ordered by date descending with creation recency breaking ties, plus the
// total match count for pagination.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, ownerID string, f ExpenseFilter) ([]core.Expense, int, error) {
	where := "owner_id = ?"
	args := []any{ownerID}
	if f.Category != "" {
		where += " AND category = ?"
		args = append(args, f.Category.String())
	}
	if f.Start != nil {
		where += " AND date_ms >= ?"
		args = append(args, f.Start.UnixMilli())
	}
	if f.End != nil {
		where += " AND date_ms <= ?"
		args = append(args, f.End.UnixMilli())
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM expenses WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count expenses: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}

	query := `
		SELECT id, owner_id, amount_cents, description, category, date_ms, created_at_ms, updated_at_ms
		FROM expenses WHERE ` + where + `
		ORDER BY date_ms DESC, created_at_ms DESC
		LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, append(args, limit, (page-1)*limit)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, total, nil
}

// UpdateExpense applies the patch's supplied fields to the record. Id and
// owner stay as stored regardless of the payload.
func (r *SQLiteRepository) UpdateExpense(ctx context.Context, ownerID, id string, patch core.Patch) (core.Expense, error) {
	if patch.IsEmpty() {
		return core.Expense{}, core.ErrEmptyPatch
	}
	if err := patch.Validate(); err != nil {
		return core.Expense{}, err
	}

	current, err := r.GetExpense(ctx, ownerID, id)
	if err != nil {
		return core.Expense{}, err
	}

	updated := patch.Apply(current)
	updated.UpdatedAt = time.Now().UTC()

	_, err = r.db.ExecContext(ctx, `
		UPDATE expenses
		SET amount_cents = ?, description = ?, category = ?, date_ms = ?, updated_at_ms = ?
		WHERE id = ? AND owner_id = ?`,
		updated.Amount.Cents, updated.Description, updated.Category.String(),
		updated.Date.UnixMilli(), updated.UpdatedAt.UnixMilli(), id, ownerID)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense updated", "id", id, "owner_id", ownerID)
	return updated, nil
}

// DeleteExpense removes one record from the owner's scope. Deleting an
// absent record reports core.ErrNotFound.
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM expenses WHERE id = ? AND owner_id = ?", id, ownerID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}

	slog.InfoContext(ctx, "Expense deleted", "id", id, "owner_id", ownerID)
	return nil
}

// ClearExpenses removes every record in the owner's scope in one statement,
// so the clear is atomic per owner.
func (r *SQLiteRepository) ClearExpenses(ctx context.Context, ownerID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM expenses WHERE owner_id = ?", ownerID)
	if err != nil {
		return fmt.Errorf("clear expenses: %w", err)
	}

	slog.InfoContext(ctx, "Expense scope cleared", "owner_id", ownerID)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e        core.Expense
		category string
		dateMs   int64
		created  int64
		updated  int64
	)
	err := row.Scan(&e.ID, &e.OwnerID, &e.Amount.Cents, &e.Description, &category, &dateMs, &created, &updated)
	if err != nil {
		return core.Expense{}, err
	}
	e.Category = core.Category(category)
	e.Date = time.UnixMilli(dateMs).UTC()
	e.CreatedAt = time.UnixMilli(created).UTC()
	e.UpdatedAt = time.UnixMilli(updated).UTC()
	return e, nil
}

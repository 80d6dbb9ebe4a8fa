package storage

import (
	"context"
	"fmt"
	"time"

	"spendwise/internal/core"
)

// Analytics computes the owner's aggregate view with grouped SQL instead of
// iterating a snapshot in memory. Every query matches on owner_id before
// grouping, and the results are numerically identical to what the engine
// package derives from the same records: cents-summed totals, a half-open
// [midnight, midnight+24h) window for today and zero-padded "YYYY-MM" keys
// for the monthly series.
func (r *SQLiteRepository) Analytics(ctx context.Context, ownerID string, now time.Time) (core.Analytics, error) {
	a := core.Analytics{
		CategoryTotals:  make(map[core.Category]core.Money),
		MonthlyExpenses: make(map[string]core.Money),
	}

	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount_cents), 0) FROM expenses WHERE owner_id = ?",
		ownerID).Scan(&a.TotalExpenses.Cents)
	if err != nil {
		return a, fmt.Errorf("total expenses: %w", err)
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)
	err = r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0) FROM expenses
		WHERE owner_id = ? AND date_ms >= ? AND date_ms < ?`,
		ownerID, dayStart.UnixMilli(), dayEnd.UnixMilli()).Scan(&a.TodayTotal.Cents)
	if err != nil {
		return a, fmt.Errorf("today total: %w", err)
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	err = r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0) FROM expenses
		WHERE owner_id = ? AND date_ms >= ?`,
		ownerID, monthStart.UnixMilli()).Scan(&a.MonthlyTotal.Cents)
	if err != nil {
		return a, fmt.Errorf("monthly total: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT category, SUM(amount_cents) FROM expenses
		WHERE owner_id = ? GROUP BY category`, ownerID)
	if err != nil {
		return a, fmt.Errorf("category totals: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			category string
			cents    int64
		)
		if err := rows.Scan(&category, &cents); err != nil {
			return a, fmt.Errorf("scan category total: %w", err)
		}
		a.CategoryTotals[core.Category(category)] = core.Money{Cents: cents}
	}
	if err := rows.Err(); err != nil {
		return a, fmt.Errorf("iterate category totals: %w", err)
	}

	// Month keys come from the stored UTC date, zero-padded by strftime.
	monthRows, err := r.db.QueryContext(ctx, `
		SELECT strftime('%Y-%m', date_ms / 1000, 'unixepoch') AS month, SUM(amount_cents)
		FROM expenses WHERE owner_id = ?
		GROUP BY month ORDER BY month`, ownerID)
	if err != nil {
		return a, fmt.Errorf("monthly series: %w", err)
	}
	defer monthRows.Close()
	for monthRows.Next() {
		var (
			month string
			cents int64
		)
		if err := monthRows.Scan(&month, &cents); err != nil {
			return a, fmt.Errorf("scan monthly series: %w", err)
		}
		a.MonthlyExpenses[month] = core.Money{Cents: cents}
	}
	if err := monthRows.Err(); err != nil {
		return a, fmt.Errorf("iterate monthly series: %w", err)
	}

	return a, nil
}

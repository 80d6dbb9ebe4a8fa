package storage

import (
	"context"
	"fmt"
	"log/slog"

	"spendwise/internal/core"
)

// ListCategories returns the stored catalog in seed order.
func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.CategoryInfo, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, color FROM categories ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.CategoryInfo
	for rows.Next() {
		var c core.CategoryInfo
		if err := rows.Scan(&c.ID, &c.Name, &c.Color); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}

// SeedCategories inserts the default catalog once. It reports seeded=false
// with the existing catalog when one is already present, making the init
// endpoint idempotent.
func (r *SQLiteRepository) SeedCategories(ctx context.Context) (seeded bool, catalog []core.CategoryInfo, err error) {
	existing, err := r.ListCategories(ctx)
	if err != nil {
		return false, nil, err
	}
	if len(existing) > 0 {
		return false, existing, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, nil, fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	defaults := core.CategoryCatalog()
	for i, c := range defaults {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO categories (id, name, color, position) VALUES (?, ?, ?, ?)",
			c.ID.String(), c.Name, c.Color, i)
		if err != nil {
			return false, nil, fmt.Errorf("insert category %s: %w", c.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return false, nil, fmt.Errorf("commit seed: %w", err)
	}

	slog.InfoContext(ctx, "Category catalog seeded", "count", len(defaults))
	return true, defaults, nil
}

// Package store defines the storage contract every expense backend
// implements. The aggregation engine only ever sees the snapshot a Store
// returns; which implementation backs it is a composition-time choice.
package store

import (
	"context"
	"sort"

	"spendwise/internal/core"
)

// Store is durable CRUD over the expense collection, already scoped to its
// caller. Mutations either fully succeed and are durable before returning,
// or fail leaving prior state unchanged.
type Store interface {
	// List returns every record in scope, ordered by date descending,
	// ties broken by most recent creation.
	List(ctx context.Context) ([]core.Expense, error)

	// Add validates the draft, assigns an id and persists the record.
	// Fails with core.ErrValidation for malformed drafts.
	Add(ctx context.Context, draft core.Draft) (core.Expense, error)

	// Remove deletes the record with the given id. A second Remove of the
	// same id fails with core.ErrNotFound rather than silently succeeding.
	Remove(ctx context.Context, id string) error

	// Update applies only the patch's supplied fields to the record.
	// Fails with core.ErrNotFound for absent ids and core.ErrValidation
	// for malformed fields. Id and owner are immutable.
	Update(ctx context.Context, id string, patch core.Patch) (core.Expense, error)

	// Clear removes every record in scope. Clearing an empty store
	// succeeds.
	Clear(ctx context.Context) error
}

// SortSnapshot orders expenses by date descending in place. The sort is
// stable, so callers that append newest-last and reverse first get the
// reverse-insertion tie-break the listing contract asks for.
func SortSnapshot(expenses []core.Expense) {
	sort.SliceStable(expenses, func(i, j int) bool {
		if !expenses[i].Date.Equal(expenses[j].Date) {
			return expenses[i].Date.After(expenses[j].Date)
		}
		return expenses[i].CreatedAt.After(expenses[j].CreatedAt)
	})
}

// Package local implements the expense store as a single JSON collection on
// disk. The whole collection is loaded at open, mutated in memory and
// rewritten atomically before a mutation is acknowledged, so a returned
// success always implies the record set is durable.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"spendwise/internal/core"
	"spendwise/internal/store"
)

// Store holds the expense collection for a single local user. Newest
// records sit at the front of the slice, which gives List its
// reverse-insertion tie-break for equal dates.
type Store struct {
	mu       sync.Mutex
	path     string
	expenses []core.Expense
}

var _ store.Store = (*Store)(nil)

// Open loads the collection at path, creating the parent directory if
// needed. A missing file is an empty store, not an error.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read expense file: %w", err)
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.expenses); err != nil {
		return nil, fmt.Errorf("decode expense file %s: %w", path, err)
	}

	slog.Debug("Loaded local expense store", "path", path, "records", len(s.expenses))
	return s, nil
}

// List returns a sorted copy of the current snapshot.
func (s *Store) List(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := append([]core.Expense(nil), s.expenses...)
	store.SortSnapshot(out)
	return out, nil
}

// Add assigns an id, persists the grown collection and only then makes the
// record visible to readers.
func (s *Store) Add(ctx context.Context, draft core.Draft) (core.Expense, error) {
	if err := draft.Validate(); err != nil {
		return core.Expense{}, err
	}

	e := core.Expense{
		ID:          uuid.NewString(),
		Amount:      draft.Amount,
		Description: draft.Description,
		Category:    draft.Category,
		Date:        draft.Date,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]core.Expense, 0, len(s.expenses)+1)
	next = append(next, e)
	next = append(next, s.expenses...)
	if err := s.persist(next); err != nil {
		return core.Expense{}, err
	}
	s.expenses = next

	slog.InfoContext(ctx, "Expense saved to local store",
		"id", e.ID,
		"description", e.Description,
		"amount_cents", e.Amount.Cents,
		"category", e.Category)
	return e, nil
}

// Remove deletes the record with the given id. Removing it twice fails the
// second time with core.ErrNotFound.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return core.ErrNotFound
	}

	next := make([]core.Expense, 0, len(s.expenses)-1)
	next = append(next, s.expenses[:idx]...)
	next = append(next, s.expenses[idx+1:]...)
	if err := s.persist(next); err != nil {
		return err
	}
	s.expenses = next

	slog.InfoContext(ctx, "Expense removed from local store", "id", id)
	return nil
}

// Update applies the patch's supplied fields to the record in place.
func (s *Store) Update(ctx context.Context, id string, patch core.Patch) (core.Expense, error) {
	if patch.IsEmpty() {
		return core.Expense{}, core.ErrEmptyPatch
	}
	if err := patch.Validate(); err != nil {
		return core.Expense{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return core.Expense{}, core.ErrNotFound
	}

	next := append([]core.Expense(nil), s.expenses...)
	next[idx] = patch.Apply(next[idx])
	if err := s.persist(next); err != nil {
		return core.Expense{}, err
	}
	s.expenses = next

	slog.InfoContext(ctx, "Expense updated in local store", "id", id)
	return next[idx], nil
}

// Clear removes every record. Clearing an already empty store succeeds.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persist(nil); err != nil {
		return err
	}
	s.expenses = nil

	slog.InfoContext(ctx, "Local expense store cleared")
	return nil
}

// indexOf must be called with the mutex held.
func (s *Store) indexOf(id string) int {
	for i, e := range s.expenses {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// persist writes the collection to a temp file and renames it over the
// store path. Failures propagate to the caller before any in-memory state
// changes, so a persisted error never leaves readers seeing an
// unacknowledged mutation.
func (s *Store) persist(expenses []core.Expense) error {
	if expenses == nil {
		expenses = []core.Expense{}
	}
	data, err := json.MarshalIndent(expenses, "", "  ")
	if err != nil {
		return fmt.Errorf("encode expenses: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write expense file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace expense file: %w", err)
	}
	return nil
}

package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"spendwise/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "spendwise.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newTestUser(t *testing.T, repo *SQLiteRepository, email string) User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), email, "Tester", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func draft(cents int64, desc string, cat core.Category, date time.Time) core.Draft {
	return core.Draft{
		Amount:      core.Money{Cents: cents},
		Description: desc,
		Category:    cat,
		Date:        date,
	}
}

func TestCreateAndGetExpense(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	u := newTestUser(t, repo, "a@example.com")
	date := time.Date(2024, 3, 10, 12, 30, 0, 0, time.UTC)

	created, err := repo.CreateExpense(ctx, u.ID, draft(1250, "Lunch", core.CategoryFood, date))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.OwnerID != u.ID {
		t.Fatalf("created = %+v", created)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Fatal("store must set bookkeeping timestamps")
	}

	got, err := repo.GetExpense(ctx, u.ID, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Amount.Cents != 1250 || got.Category != core.CategoryFood || !got.Date.Equal(date) {
		t.Fatalf("got = %+v", got)
	}
}

func TestCreateExpenseRejectsInvalidDraft(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	u := newTestUser(t, repo, "a@example.com")

	_, err := repo.CreateExpense(ctx, u.ID, draft(0, "x", core.CategoryFood, time.Now()))
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, total, err := repo.ListExpenses(ctx, u.ID, ExpenseFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 0 {
		t.Fatalf("failed create must not persist, total = %d", total)
	}
}

func TestOwnerScoping(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	alice := newTestUser(t, repo, "alice@example.com")
	bob := newTestUser(t, repo, "bob@example.com")

	e, err := repo.CreateExpense(ctx, alice.ID, draft(100, "x", core.CategoryOther, time.Now()))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := repo.GetExpense(ctx, bob.ID, e.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("cross-owner get: expected ErrNotFound, got %v", err)
	}
	if err := repo.DeleteExpense(ctx, bob.ID, e.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("cross-owner delete: expected ErrNotFound, got %v", err)
	}
	amount := core.Money{Cents: 200}
	if _, err := repo.UpdateExpense(ctx, bob.ID, e.ID, core.Patch{Amount: &amount}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("cross-owner update: expected ErrNotFound, got %v", err)
	}

	// The record is still there for its owner.
	if _, err := repo.GetExpense(ctx, alice.ID, e.ID); err != nil {
		t.Fatalf("owner get after cross-owner attempts: %v", err)
	}
}

func TestDeleteTwiceFailsSecondTime(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	u := newTestUser(t, repo, "a@example.com")

	e, _ := repo.CreateExpense(ctx, u.ID, draft(100, "x", core.CategoryBills, time.Now()))
	if err := repo.DeleteExpense(ctx, u.ID, e.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := repo.DeleteExpense(ctx, u.ID, e.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestUpdatePartial(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	u := newTestUser(t, repo, "a@example.com")
	date := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	e, _ := repo.CreateExpense(ctx, u.ID, draft(1000, "Taxi", core.CategoryTransport, date))

	desc := "Night taxi"
	got, err := repo.UpdateExpense(ctx, u.ID, e.ID, core.Patch{Description: &desc})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Description != "Night taxi" {
		t.Fatalf("description = %q", got.Description)
	}
	if got.Amount.Cents != 1000 || got.Category != core.CategoryTransport || !got.Date.Equal(date) {
		t.Fatal("unsupplied fields must retain prior values")
	}
	if got.ID != e.ID || got.OwnerID != u.ID {
		t.Fatal("id and owner are immutable")
	}

	bad := core.Money{Cents: -1}
	if _, err := repo.UpdateExpense(ctx, u.ID, e.ID, core.Patch{Amount: &bad}); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListFilterAndPagination(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	u := newTestUser(t, repo, "a@example.com")
	base := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		cat := core.CategoryFood
		if i%2 == 1 {
			cat = core.CategoryBills
		}
		if _, err := repo.CreateExpense(ctx, u.ID, draft(int64(100+i), "e", cat, base.AddDate(0, 0, i))); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	// Category filter.
	list, total, err := repo.ListExpenses(ctx, u.ID, ExpenseFilter{Category: core.CategoryBills})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Fatalf("bills: total=%d len=%d", total, len(list))
	}

	// Date range filter.
	start := base.AddDate(0, 0, 1)
	end := base.AddDate(0, 0, 3)
	_, total, err = repo.ListExpenses(ctx, u.ID, ExpenseFilter{Start: &start, End: &end})
	if err != nil {
		t.Fatalf("list range: %v", err)
	}
	if total != 3 {
		t.Fatalf("range total = %d, want 3", total)
	}

	// Pagination, newest date first.
	page1, total, err := repo.ListExpenses(ctx, u.ID, ExpenseFilter{Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if total != 5 || len(page1) != 2 {
		t.Fatalf("page 1: total=%d len=%d", total, len(page1))
	}
	if !page1[0].Date.After(page1[1].Date) {
		t.Fatal("listing must be date descending")
	}
	page3, _, err := repo.ListExpenses(ctx, u.ID, ExpenseFilter{Page: 3, Limit: 2})
	if err != nil {
		t.Fatalf("page 3: %v", err)
	}
	if len(page3) != 1 {
		t.Fatalf("page 3 len = %d, want 1", len(page3))
	}
}

func TestClearIsScopedAndIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	alice := newTestUser(t, repo, "alice@example.com")
	bob := newTestUser(t, repo, "bob@example.com")

	_, _ = repo.CreateExpense(ctx, alice.ID, draft(100, "x", core.CategoryFood, time.Now()))
	_, _ = repo.CreateExpense(ctx, bob.ID, draft(200, "y", core.CategoryFood, time.Now()))

	if err := repo.ClearExpenses(ctx, alice.ID); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := repo.ClearExpenses(ctx, alice.ID); err != nil {
		t.Fatalf("clear empty scope: %v", err)
	}

	_, aliceTotal, _ := repo.ListExpenses(ctx, alice.ID, ExpenseFilter{})
	_, bobTotal, _ := repo.ListExpenses(ctx, bob.ID, ExpenseFilter{})
	if aliceTotal != 0 || bobTotal != 1 {
		t.Fatalf("after clear: alice=%d bob=%d", aliceTotal, bobTotal)
	}
}

func TestDuplicateEmailRejected(t *testing.T) {
	repo := newTestRepo(t)
	newTestUser(t, repo, "a@example.com")
	if _, err := repo.CreateUser(context.Background(), "a@example.com", "Again", "hash"); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestSeedCategoriesIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	seeded, catalog, err := repo.SeedCategories(ctx)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if !seeded || len(catalog) != 7 {
		t.Fatalf("first seed: seeded=%v len=%d", seeded, len(catalog))
	}

	seeded, catalog, err = repo.SeedCategories(ctx)
	if err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if seeded || len(catalog) != 7 {
		t.Fatalf("second seed: seeded=%v len=%d", seeded, len(catalog))
	}
	if catalog[0].ID != core.CategoryFood || catalog[0].Color != "#EF4444" {
		t.Fatalf("catalog[0] = %+v", catalog[0])
	}
}

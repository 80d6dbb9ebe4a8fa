package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"spendwise/internal/core"
	"spendwise/internal/storage"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

// parseFlexibleDate accepts RFC3339 timestamps and bare YYYY-MM-DD dates.
func parseFlexibleDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: invalid date %q", core.ErrValidation, v)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := storage.ExpenseFilter{Page: 1, Limit: defaultPageLimit}

	if v := q.Get("category"); v != "" && v != "all" {
		cat := core.Category(v)
		if !cat.IsValid() {
			writeMessage(w, http.StatusBadRequest, "Invalid category")
			return
		}
		filter.Category = cat
	}
	if v := q.Get("startDate"); v != "" {
		t, err := parseFlexibleDate(v)
		if err != nil {
			writeError(w, r, err, "Server error while fetching expenses")
			return
		}
		filter.Start = &t
	}
	if v := q.Get("endDate"); v != "" {
		t, err := parseFlexibleDate(v)
		if err != nil {
			writeError(w, r, err, "Server error while fetching expenses")
			return
		}
		filter.End = &t
	}
	if v := q.Get("page"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			filter.Page = p
		}
	}
	if v := q.Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil && l > 0 {
			filter.Limit = min(l, maxPageLimit)
		}
	}

	expenses, total, err := s.repo.ListExpenses(r.Context(), ownerFromContext(r.Context()), filter)
	if err != nil {
		writeError(w, r, err, "Server error while fetching expenses")
		return
	}
	if expenses == nil {
		expenses = []core.Expense{}
	}

	totalPages := (total + filter.Limit - 1) / filter.Limit
	writeJSON(w, http.StatusOK, map[string]any{
		"expenses":    expenses,
		"totalPages":  totalPages,
		"currentPage": filter.Page,
		"total":       total,
	})
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount      *core.Money   `json:"amount"`
		Description string        `json:"description"`
		Category    core.Category `json:"category"`
		Date        string        `json:"date"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err, "Server error while creating expense")
		return
	}
	if req.Amount == nil || req.Description == "" || req.Category == "" {
		writeMessage(w, http.StatusBadRequest, "Please provide all required fields")
		return
	}

	date := time.Now()
	if req.Date != "" {
		parsed, err := parseFlexibleDate(req.Date)
		if err != nil {
			writeError(w, r, err, "Server error while creating expense")
			return
		}
		date = parsed
	}

	ownerID := ownerFromContext(r.Context())
	expense, err := s.repo.CreateExpense(r.Context(), ownerID, core.Draft{
		Amount:      *req.Amount,
		Description: strings.TrimSpace(req.Description),
		Category:    req.Category,
		Date:        date,
	})
	if err != nil {
		writeError(w, r, err, "Server error while creating expense")
		return
	}
	s.invalidateAnalytics(ownerID)

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Expense created successfully",
		"expense": expense,
	})
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount      *core.Money    `json:"amount"`
		Description *string        `json:"description"`
		Category    *core.Category `json:"category"`
		Date        *string        `json:"date"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err, "Server error while updating expense")
		return
	}

	patch := core.Patch{
		Amount:      req.Amount,
		Description: req.Description,
		Category:    req.Category,
	}
	if req.Date != nil {
		parsed, err := parseFlexibleDate(*req.Date)
		if err != nil {
			writeError(w, r, err, "Server error while updating expense")
			return
		}
		patch.Date = &parsed
	}

	ownerID := ownerFromContext(r.Context())
	expense, err := s.repo.UpdateExpense(r.Context(), ownerID, r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, err, "Server error while updating expense")
		return
	}
	s.invalidateAnalytics(ownerID)

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Expense updated successfully",
		"expense": expense,
	})
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	ownerID := ownerFromContext(r.Context())
	if err := s.repo.DeleteExpense(r.Context(), ownerID, r.PathValue("id")); err != nil {
		writeError(w, r, err, "Server error while deleting expense")
		return
	}
	s.invalidateAnalytics(ownerID)

	writeMessage(w, http.StatusOK, "Expense deleted successfully")
}

func (s *Server) handleClearExpenses(w http.ResponseWriter, r *http.Request) {
	ownerID := ownerFromContext(r.Context())
	if err := s.repo.ClearExpenses(r.Context(), ownerID); err != nil {
		writeError(w, r, err, "Server error while clearing expenses")
		return
	}
	s.invalidateAnalytics(ownerID)

	writeMessage(w, http.StatusOK, "All expenses cleared")
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	ownerID := ownerFromContext(r.Context())

	if cached, ok := s.analyticsCache.Get(ownerID); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	analytics, err := s.repo.Analytics(r.Context(), ownerID, time.Now())
	if err != nil {
		writeError(w, r, err, "Server error while fetching analytics")
		return
	}
	s.analyticsCache.Set(ownerID, analytics)

	slog.DebugContext(r.Context(), "Analytics computed", "owner_id", ownerID)
	writeJSON(w, http.StatusOK, analytics)
}

package http

import (
	"net/http"

	"spendwise/internal/core"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	catalog, err := s.repo.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err, "Server error while fetching categories")
		return
	}
	if catalog == nil {
		catalog = []core.CategoryInfo{}
	}
	writeJSON(w, http.StatusOK, catalog)
}

func (s *Server) handleInitCategories(w http.ResponseWriter, r *http.Request) {
	seeded, catalog, err := s.repo.SeedCategories(r.Context())
	if err != nil {
		writeError(w, r, err, "Server error while initializing categories")
		return
	}

	if !seeded {
		writeJSON(w, http.StatusOK, map[string]any{
			"message":    "Categories already initialized",
			"categories": catalog,
		})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":    "Categories initialized successfully",
		"categories": catalog,
	})
}

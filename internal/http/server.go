// Package http serves the spendwise JSON API: per-owner expense CRUD, the
// analytics endpoint backed by grouped SQL, the category catalog and the
// auth routes that issue bearer credentials.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"spendwise/internal/auth"
	"spendwise/internal/cache"
	"spendwise/internal/core"
	"spendwise/internal/middleware/trace"
	"spendwise/internal/storage"
)

const (
	analyticsCacheSize = 1024
	analyticsCacheTTL  = 30 * time.Second
)

type Server struct {
	http.Server

	repo *storage.SQLiteRepository
	auth *auth.Service

	// Analytics responses are cached per owner and dropped on every
	// successful mutation, so an acknowledged write is never served
	// stale.
	analyticsCache *cache.LRUCache[core.Analytics]
	cacheManager   *cache.Manager

	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

func NewServer(addr string, repo *storage.SQLiteRepository, authSvc *auth.Service) *Server {
	s := &Server{
		repo:           repo,
		auth:           authSvc,
		analyticsCache: cache.NewLRUCache[core.Analytics](analyticsCacheSize, analyticsCacheTTL),
		cacheManager:   cache.NewManager(),
		rateLimiter:    newRateLimiter(),
	}
	s.cacheManager.Register(s.analyticsCache)
	s.cacheManager.StartCleanup(5 * time.Minute)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("POST /auth/google", s.handleGoogleSignIn)
	mux.Handle("GET /auth/me", s.requireOwner(s.handleMe))

	mux.Handle("GET /expenses", s.requireOwner(s.handleListExpenses))
	mux.Handle("POST /expenses", s.requireOwner(s.handleCreateExpense))
	mux.Handle("PUT /expenses/{id}", s.requireOwner(s.handleUpdateExpense))
	mux.Handle("DELETE /expenses/{id}", s.requireOwner(s.handleDeleteExpense))
	mux.Handle("DELETE /expenses", s.requireOwner(s.handleClearExpenses))
	mux.Handle("GET /expenses/analytics", s.requireOwner(s.handleAnalytics))

	mux.HandleFunc("GET /categories", s.handleListCategories)
	mux.HandleFunc("POST /categories/init", s.handleInitCategories)

	traceMW := trace.NewMiddleware(extractClientIP)
	handler := traceMW.Middleware(s.rateLimitMiddleware(mux))

	s.Server = http.Server{
		Addr:           addr,
		Handler:        handler,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}
	return s
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message":   "Server is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// invalidateAnalytics drops the owner's cached analytics after a mutation.
func (s *Server) invalidateAnalytics(ownerID string) {
	s.analyticsCache.Delete(ownerID)
}

func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.rateLimiter.allow(extractClientIP(r)) {
			writeJSON(w, http.StatusTooManyRequests, map[string]string{
				"message": "Too many requests",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown stops the listener and the rate limiter's cleanup goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		s.cacheManager.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

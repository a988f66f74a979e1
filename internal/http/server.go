// Package http exposes the JSON API: auth, transactions, categories,
// settings, the dashboard aggregate and the CSV report.
package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"buddyx/internal/auth"
	"buddyx/internal/services"

	gocache "github.com/patrickmn/go-cache"
)

type Server struct {
	http.Server

	service *services.LedgerService
	auth    *auth.Service

	// Dashboard responses cached per user, filter and search term.
	dashCache *gocache.Cache
	limiter   *ipRateLimiter

	shutdownOnce sync.Once
}

type Options struct {
	Addr           string
	RateLimitRPS   float64
	RateLimitBurst int
	CacheTTL       time.Duration
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(opts Options, service *services.LedgerService, authSvc *auth.Service) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:         opts.Addr,
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		service:   service,
		auth:      authSvc,
		dashCache: gocache.New(opts.CacheTTL, 2*opts.CacheTTL),
		limiter:   newIPRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/auth/register", s.with(s.handleRegister))
	mux.HandleFunc("POST /api/auth/login", s.with(s.handleLogin))
	mux.HandleFunc("POST /api/auth/logout", s.with(s.handleLogout))

	mux.HandleFunc("GET /api/dashboard", s.withAuth(s.handleDashboard))
	mux.HandleFunc("GET /api/report", s.withAuth(s.handleReport))

	mux.HandleFunc("POST /api/expenses", s.withAuth(s.handleCreateTransaction))
	mux.HandleFunc("PUT /api/expenses/{id}", s.withAuth(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/expenses/{id}", s.withAuth(s.handleDeleteTransaction))
	mux.HandleFunc("DELETE /api/expenses", s.withAuth(s.handleResetLedger))

	mux.HandleFunc("GET /api/categories", s.withAuth(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.withAuth(s.handleAddCategory))
	mux.HandleFunc("PUT /api/categories/{name}", s.withAuth(s.handleRenameCategory))
	mux.HandleFunc("DELETE /api/categories/{name}", s.withAuth(s.handleDeleteCategory))

	mux.HandleFunc("GET /api/settings", s.withAuth(s.handleGetSettings))
	mux.HandleFunc("PUT /api/settings", s.withAuth(s.handleSaveSettings))

	return s
}

// Shutdown stops the listener and the rate limiter's cleanup goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// invalidateDashboards drops every cached dashboard for the user after a
// mutation.
func (s *Server) invalidateDashboards(userID int64) {
	prefix := fmt.Sprintf("dash:%d:", userID)
	for key := range s.dashCache.Items() {
		if strings.HasPrefix(key, prefix) {
			s.dashCache.Delete(key)
		}
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

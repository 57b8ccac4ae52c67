// Package http exposes the ledger and its derived monthly views as a
// JSON API. Owner identity comes from an identity.Resolver; the server
// itself never authenticates.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/cache"
	"fintrack/internal/identity"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
)

type Server struct {
	http.Server

	ledger    *services.LedgerService
	dashboard *services.DashboardService
	insights  *services.InsightService
	reports   *services.ReportService
	resolver  identity.Resolver

	logger      *applog.Logger
	rateLimiter *rateLimiter
	metrics     *securityMetrics

	// Cached monthly summaries, dropped for the whole owner on every
	// mutation.
	summaryCache *cache.LRUCache[services.Summary]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes and middleware, returning a
// ready-to-run http.Server.
func NewServer(addr string, ledger *services.LedgerService, dashboard *services.DashboardService, insightSvc *services.InsightService, reports *services.ReportService, resolver identity.Resolver) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       2 * time.Minute,
		},
		ledger:           ledger,
		dashboard:        dashboard,
		insights:         insightSvc,
		reports:          reports,
		resolver:         resolver,
		logger:           applog.Default(applog.ComponentHTTP),
		rateLimiter:      newRateLimiter(),
		metrics:          &securityMetrics{},
		summaryCache:     cache.NewLRUCache[services.Summary](200, 5*time.Minute),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	// Every request gets a context logger and a request id before it
	// reaches the route handlers.
	s.Server.Handler = applog.Middleware(s.logger)(
		applog.RequestIDMiddleware(requestIDFor)(mux))

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/transactions", s.withSecurityHeaders(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions", s.withSecurityHeaders(s.handleListTransactions))
	mux.HandleFunc("GET /api/transactions/reserved", s.withSecurityHeaders(s.handleListReserved))
	mux.HandleFunc("POST /api/transactions/{id}/complete", s.withSecurityHeaders(s.handleCompleteTransaction))
	mux.HandleFunc("POST /api/transactions/{id}/revert", s.withSecurityHeaders(s.handleRevertTransaction))

	mux.HandleFunc("GET /api/dashboard/summary", s.withSecurityHeaders(s.handleDashboardSummary))
	mux.HandleFunc("GET /api/insights", s.withSecurityHeaders(s.handleInsights))
	mux.HandleFunc("GET /api/reports/monthly", s.withSecurityHeaders(s.handleMonthlyReport))

	return s
}

// requestIDFor honors an id set by the proxy in front, otherwise mints
// a fresh one.
func requestIDFor(r *http.Request) string {
	if id := r.Header.Get("X-Request-ID"); id != "" {
		return id
	}
	return uuid.NewString()
}

// startCacheCleanup runs periodic cleanup for the summary cache.
func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if cleaned := s.summaryCache.CleanExpired(); cleaned > 0 {
				s.logger.Debug("Cache cleanup completed", "entries_removed", cleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting, request IDs
// and request logging to responses.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()

		clientIP := extractClientIP(r)
		logger := applog.FromContext(ctx)

		if requestID := applog.RequestIDFromContext(ctx); requestID != "" {
			w.Header().Set("X-Request-ID", requestID)
		}

		if detectSuspiciousRequest(r, s.metrics) {
			logger.WarnContext(ctx, "Suspicious request",
				"method", r.Method,
				"url", r.URL.Path,
				"client_ip", clientIP)
		}

		logger.InfoContext(ctx, "Request started",
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		// Mutations are the expensive path, so only they are limited.
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP, s.metrics) {
			logger.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		logger.InfoContext(ctx, "Request completed",
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

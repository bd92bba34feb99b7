// Package http exposes the JSON API: transaction CRUD plus the
// dashboard and analytics aggregates derived from the ledger.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"pocketbudget/internal/cache"
	"pocketbudget/internal/predict"
	"pocketbudget/internal/services"
)

const (
	cacheSize       = 16
	cacheTTL        = 5 * time.Minute
	janitorInterval = 10 * time.Minute

	mutationsPerMinute = 60
)

type Server struct {
	http.Server
	service   *services.TransactionService
	predictor *predict.Predictor

	rateLimiter *rateLimiter
	metrics     securityMetrics

	// Aggregates are recomputed from a full snapshot, so responses are
	// cached briefly and purged on every mutation.
	dashboardCache *cache.TTLCache[dashboardResponse]
	analyticsCache *cache.TTLCache[analyticsResponse]

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc *services.TransactionService, predictor *predict.Predictor) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		service:        svc,
		predictor:      predictor,
		rateLimiter:    newRateLimiter(mutationsPerMinute, time.Minute),
		dashboardCache: cache.New[dashboardResponse](cacheSize, cacheTTL),
		analyticsCache: cache.New[analyticsResponse](cacheSize, cacheTTL),
	}
	s.dashboardCache.StartJanitor(janitorInterval)
	s.analyticsCache.StartJanitor(janitorInterval)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/v1/transactions", s.observe(s.handleListTransactions))
	mux.HandleFunc("POST /api/v1/transactions", s.observe(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/v1/transactions/{id}", s.observe(s.handleGetTransaction))
	mux.HandleFunc("PUT /api/v1/transactions/{id}", s.observe(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/v1/transactions/{id}", s.observe(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/v1/categories", s.observe(s.handleCategories))
	mux.HandleFunc("GET /api/v1/dashboard", s.observe(s.handleDashboard))
	mux.HandleFunc("GET /api/v1/analytics", s.observe(s.handleAnalytics))

	return s
}

// observe adds security headers, rate limiting for mutations, and
// request logging around a handler.
func (s *Server) observe(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := r.Context()
		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		if detectSuspiciousRequest(r, &s.metrics) {
			slog.WarnContext(ctx, "Suspicious request pattern",
				"request_id", requestID,
				"client_ip", clientIP,
				"url", r.URL.String())
		}

		if isMutation(r.Method) && !s.rateLimiter.allow(clientIP) {
			atomic.AddInt64(&s.metrics.rateLimitHits, 1)
			slog.WarnContext(ctx, "Rate limit exceeded",
				"request_id", requestID,
				"client_ip", clientIP,
				"method", r.Method,
				"url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// responseWriter captures the status code for the completion log line.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	// Readiness means the store answers; a tiny fetch covers it.
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if _, err := s.service.FetchAll(ctx); err != nil {
		slog.ErrorContext(ctx, "Readiness check failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// invalidateAggregates drops cached dashboard and analytics payloads
// after any mutation.
func (s *Server) invalidateAggregates() {
	s.dashboardCache.Purge()
	s.analyticsCache.Purge()
}

// Shutdown stops the background goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.dashboardCache.Stop()
		s.analyticsCache.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// Package http exposes the ledger to UI clients as a JSON API. It owns
// everything presentational: status-code mapping, display colors, rate
// limiting, and read caching. It never bypasses the service layer's
// validation.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"divvy/internal/cache"
	"divvy/internal/core"
	"divvy/internal/engine"
	"divvy/internal/services"
)

type Server struct {
	http.Server
	ledger      *services.LedgerService
	rateLimiter *rateLimiter

	// Derived settlement views are cached per group and invalidated on any
	// mutation of that group.
	owesCache  *cache.LRUCache[[]engine.Obligation]
	totalCache *cache.LRUCache[core.Money]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes and returns a ready-to-run server.
func NewServer(addr string, ledger *services.LedgerService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		ledger:           ledger,
		rateLimiter:      newRateLimiter(),
		owesCache:        cache.NewLRUCache[[]engine.Obligation](200, 5*time.Minute),
		totalCache:       cache.NewLRUCache[core.Money](200, 5*time.Minute),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("GET /groups", s.withMiddleware(s.handleListGroups))
	mux.HandleFunc("POST /groups", s.withMiddleware(s.handleCreateGroup))
	mux.HandleFunc("PUT /groups/{title}", s.withMiddleware(s.handleUpdateGroup))
	mux.HandleFunc("DELETE /groups/{title}", s.withMiddleware(s.handleDeleteGroup))

	mux.HandleFunc("GET /groups/{title}/expenses", s.withMiddleware(s.handleListExpenses))
	mux.HandleFunc("POST /groups/{title}/expenses", s.withMiddleware(s.handleAddExpense))
	mux.HandleFunc("PUT /groups/{title}/expenses/{index}", s.withMiddleware(s.handleEditExpense))
	mux.HandleFunc("DELETE /groups/{title}/expenses/{index}", s.withMiddleware(s.handleDeleteExpense))

	mux.HandleFunc("GET /groups/{title}/owes", s.withMiddleware(s.handleOwesList))
	mux.HandleFunc("GET /groups/{title}/total", s.withMiddleware(s.handleGroupTotal))

	return s
}

// withMiddleware adds security headers, rate limiting, request IDs, and
// request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		// Rate-limit mutations only; reads are cheap and cached.
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
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

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			owesCleaned := s.owesCache.CleanExpired()
			totalCleaned := s.totalCache.CleanExpired()
			if owesCleaned > 0 || totalCleaned > 0 {
				slog.Debug("Cache cleanup completed",
					"owes_entries_removed", owesCleaned,
					"total_entries_removed", totalCleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// invalidateGroup drops the cached settlement views after a mutation.
func (s *Server) invalidateGroup(title string) {
	s.owesCache.Delete(title)
	s.totalCache.Delete(title)
}

// Shutdown stops the cleanup goroutines and the HTTP server.
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

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

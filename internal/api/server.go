// Package api exposes the compliance scanner as a small REST service.
// Scans are started as asynchronous jobs; stored results and the check
// catalog are served read-only.
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/datnt-sec/webcomply/internal/api/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ScanSummary is the list view of a stored scan.
type ScanSummary struct {
	ID          string     `json:"id"`
	Target      string     `json:"target"`
	Status      string     `json:"status"`
	Summary     string     `json:"summary,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// CatalogEntry describes one checked parameter.
type CatalogEntry struct {
	ID             int    `json:"id"`
	Title          string `json:"title"`
	Recommendation string `json:"recommendation,omitempty"`
}

type ScanService interface {
	ListScans(ctx context.Context) ([]ScanSummary, error)
	GetScan(ctx context.Context, id string) ([]byte, error)
	DeleteScan(ctx context.Context, id string) error
}

type JobService interface {
	StartJob(ctx context.Context, req JobRequest) (*Job, error)
	GetJob(ctx context.Context, id string) (*Job, error)
	ListJobs(ctx context.Context, limit int) ([]Job, error)
	Subscribe() (chan Job, func())
}

type HealthService interface {
	Check(ctx context.Context) error
	Ready(ctx context.Context) error
}

type Config struct {
	Scans       ScanService
	Jobs        JobService
	Health      HealthService
	Catalog     []CatalogEntry
	AuthToken   string
	Logger      *zap.Logger
	CORSOrigins []string // Allowed CORS origins (empty = allow all)
	RateLimit   int      // Requests per second per IP (0 = disabled)
	RateBurst   int      // Burst size for rate limiter
}

type Server struct {
	cfg      Config
	mux      *http.ServeMux
	limiters *rateLimiterMap
}

func NewServer(cfg Config) *Server {
	srv := &Server{
		cfg:      cfg,
		mux:      http.NewServeMux(),
		limiters: newRateLimiterMap(),
	}
	srv.routes()
	return srv
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Middleware chain: RequestID -> Logging -> RateLimit -> CORS -> Handler
	handler := middleware.RequestID(s.withLogging(s.withRateLimit(s.withCORS(s.mux))))
	handler.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.mux.Handle("/api/v1/health", s.withAuth(http.HandlerFunc(s.handleHealth)))
	s.mux.Handle("/api/v1/ready", s.withAuth(http.HandlerFunc(s.handleReady)))
	s.mux.Handle("/api/v1/catalog", s.withAuth(http.HandlerFunc(s.handleCatalog)))
	s.mux.Handle("/api/v1/scans", s.withAuth(http.HandlerFunc(s.handleScans)))
	s.mux.Handle("/api/v1/scans/", s.withAuth(http.HandlerFunc(s.handleScanByID)))
	s.mux.Handle("/api/v1/jobs", s.withAuth(http.HandlerFunc(s.handleJobs)))
	s.mux.Handle("/api/v1/jobs/", s.withAuth(http.HandlerFunc(s.handleJobByID)))
	s.mux.Handle("/api/v1/jobs-stream", s.withAuth(http.HandlerFunc(s.handleJobStream)))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}
	if s.cfg.Health != nil {
		if err := s.cfg.Health.Check(r.Context()); err != nil {
			s.writeError(w, r, http.StatusInternalServerError, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}
	if s.cfg.Health != nil {
		if err := s.cfg.Health.Ready(r.Context()); err != nil {
			s.writeError(w, r, http.StatusServiceUnavailable, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}
	writeJSON(w, http.StatusOK, s.cfg.Catalog)
}

// handleScans lists stored scans on GET and starts a new scan job on
// POST. The POST response is the job, not the scan: the scan only
// exists once the job finishes.
func (s *Server) handleScans(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		items, err := s.cfg.Scans.ListScans(r.Context())
		if err != nil {
			s.writeError(w, r, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
	case http.MethodPost:
		if s.cfg.Jobs == nil {
			s.writeError(w, r, http.StatusNotFound, errors.New("job service not available"))
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, 1048576) // 1MB limit
		var req JobRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, r, http.StatusBadRequest, err)
			return
		}
		job, err := s.cfg.Jobs.StartJob(r.Context(), req)
		if err != nil {
			s.writeError(w, r, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusAccepted, job)
	default:
		s.methodNotAllowed(w, r)
	}
}

func (s *Server) handleScanByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/scans/")
	if id == "" {
		s.writeError(w, r, http.StatusNotFound, errors.New("scan ID required"))
		return
	}
	switch r.Method {
	case http.MethodGet:
		data, err := s.cfg.Scans.GetScan(r.Context(), id)
		if err != nil {
			s.writeError(w, r, http.StatusNotFound, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(data); err != nil && s.cfg.Logger != nil {
			s.cfg.Logger.Error("failed to write response", zap.Error(err))
		}
	case http.MethodDelete:
		if err := s.cfg.Scans.DeleteScan(r.Context(), id); err != nil {
			s.writeError(w, r, http.StatusNotFound, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		s.methodNotAllowed(w, r)
	}
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Jobs == nil {
		s.writeError(w, r, http.StatusNotFound, errors.New("job service not available"))
		return
	}
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}
	limit := 25
	if q := r.URL.Query().Get("limit"); q != "" {
		if parsed, err := strconv.Atoi(q); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	jobs, err := s.cfg.Jobs.ListJobs(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (s *Server) handleJobByID(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Jobs == nil {
		s.writeError(w, r, http.StatusNotFound, errors.New("job service not available"))
		return
	}
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/jobs/")
	if id == "" {
		s.writeError(w, r, http.StatusNotFound, errors.New("job ID required"))
		return
	}
	job, err := s.cfg.Jobs.GetJob(r.Context(), id)
	if err != nil || job == nil {
		s.writeError(w, r, http.StatusNotFound, errors.New("job not found"))
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// handleJobStream streams job status updates as server-sent events.
func (s *Server) handleJobStream(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Jobs == nil {
		s.writeError(w, r, http.StatusNotFound, errors.New("job service not available"))
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, r, http.StatusInternalServerError, errors.New("streaming unsupported"))
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	updates, unsubscribe := s.cfg.Jobs.Subscribe()
	defer unsubscribe()
	ctx := r.Context()
	for {
		select {
		case job, ok := <-updates:
			if !ok {
				return
			}
			payload, err := json.Marshal(job)
			if err != nil {
				if s.cfg.Logger != nil {
					s.cfg.Logger.Error("failed to marshal job", zap.Error(err))
				}
				continue
			}
			if !s.writeStreamChunk(w, []byte("event: job\n")) {
				return
			}
			if !s.writeStreamChunk(w, []byte("data: ")) {
				return
			}
			if !s.writeStreamChunk(w, payload) {
				return
			}
			if !s.writeStreamChunk(w, []byte("\n\n")) {
				return
			}
			flusher.Flush()
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.RateLimit <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		// Honor X-Forwarded-For so proxied clients are limited per
		// origin, not per proxy.
		clientIP := r.RemoteAddr
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			if idx := strings.Index(forwarded, ","); idx > 0 {
				clientIP = strings.TrimSpace(forwarded[:idx])
			} else {
				clientIP = strings.TrimSpace(forwarded)
			}
		}
		if idx := strings.LastIndex(clientIP, ":"); idx > 0 {
			clientIP = clientIP[:idx]
		}

		limiter := s.limiters.getLimiter(clientIP, s.cfg.RateLimit, s.cfg.RateBurst)
		if !limiter.Allow() {
			if s.cfg.Logger != nil {
				s.requestLogger(r).Warn("rate_limit_exceeded",
					zap.String("client_ip", clientIP),
				)
			}
			s.writeError(w, r, http.StatusTooManyRequests, errors.New("rate limit exceeded"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		allowOrigin := "*"
		if len(s.cfg.CORSOrigins) > 0 {
			allowed := false
			for _, allowedOrigin := range s.cfg.CORSOrigins {
				if allowedOrigin == origin {
					allowed = true
					allowOrigin = origin
					break
				}
			}
			if !allowed {
				allowOrigin = ""
			}
		}

		if allowOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Auth-Token")
			w.Header().Set("Access-Control-Max-Age", "3600")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(lrw, r)

		if s.cfg.Logger != nil {
			requestID := middleware.GetRequestID(r.Context())
			s.cfg.Logger.Info("http_request",
				zap.String("request_id", requestID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Int("status", lrw.statusCode),
				zap.Duration("duration", time.Since(start)),
				zap.Int64("bytes", lrw.bytesWritten),
			)
		}
	})
}

func (s *Server) withAuth(next http.Handler) http.Handler {
	if s.cfg.AuthToken == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("X-Auth-Token")
		// Constant-time comparison to prevent timing attacks.
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.AuthToken)) != 1 {
			s.writeError(w, r, http.StatusUnauthorized, errors.New("unauthorized"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// loggingResponseWriter captures the status code and bytes written for
// the request log.
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	n, err := lrw.ResponseWriter.Write(b)
	lrw.bytesWritten += int64(n)
	return n, err
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError sanitizes 5xx messages so internal details stay in the
// server log.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	msg := err.Error()

	if status >= 500 {
		if s.cfg.Logger != nil {
			s.requestLogger(r).Error("internal_server_error",
				zap.Error(err),
				zap.Int("status", status),
			)
		}
		msg = "internal server error"
	}

	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) requestLogger(r *http.Request) *zap.Logger {
	if s.cfg.Logger == nil {
		return zap.NewNop()
	}
	return s.cfg.Logger.With(
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, r, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

func (s *Server) writeStreamChunk(w http.ResponseWriter, data []byte) bool {
	if _, err := w.Write(data); err != nil {
		if s.cfg.Logger != nil {
			s.cfg.Logger.Error("failed to write stream chunk", zap.Error(err))
		}
		return false
	}
	return true
}

// rateLimiterMap manages per-IP limiters and evicts idle entries.
type rateLimiterMap struct {
	mu       sync.RWMutex
	limiters map[string]*ipLimiter
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newRateLimiterMap() *rateLimiterMap {
	m := &rateLimiterMap{
		limiters: make(map[string]*ipLimiter),
	}
	go m.cleanupLoop()
	return m
}

func (m *rateLimiterMap) getLimiter(ip string, rps, burst int) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	limiter, exists := m.limiters[ip]
	if !exists {
		limiter = &ipLimiter{
			limiter:  rate.NewLimiter(rate.Limit(rps), burst),
			lastSeen: time.Now(),
		}
		m.limiters[ip] = limiter
	} else {
		limiter.lastSeen = time.Now()
	}

	return limiter.limiter
}

func (m *rateLimiterMap) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		m.mu.Lock()
		for ip, limiter := range m.limiters {
			if time.Since(limiter.lastSeen) > 5*time.Minute {
				delete(m.limiters, ip)
			}
		}
		m.mu.Unlock()
	}
}

package site

import (
	"net"
	"net/http"
	"sync"
	"time"

	"filippo.io/csrf/gorilla"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

// maxLimiters bounds the per-client limiter map; it is reset when exceeded.
const maxLimiters = 10000

// limiterCache is a rate limiter cache with double-check locking.
type limiterCache struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
}

func newLimiterCache(rps float64, burst int) *limiterCache {
	return &limiterCache{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
}

func (lc *limiterCache) get(key string) *rate.Limiter {
	lc.mu.RLock()
	limiter, exists := lc.limiters[key]
	lc.mu.RUnlock()
	if exists {
		return limiter
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()
	if limiter, exists = lc.limiters[key]; exists {
		return limiter
	}
	if len(lc.limiters) >= maxLimiters {
		lc.limiters = make(map[string]*rate.Limiter)
	}
	limiter = rate.NewLimiter(lc.rate, lc.burst)
	lc.limiters[key] = limiter
	return limiter
}

// limit rejects form posts beyond the per-client budget.
func (s *Server) limit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !s.limiter.get(ip).Allow() {
			s.logger.Warn("form rate limit exceeded", "ip", ip, "path", r.URL.Path)
			locale := s.localeFor(r)
			http.Error(w, s.text(locale, "form.tooManyRequests"), http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

// protect rejects cross-origin form posts using Fetch metadata.
func (s *Server) protect(next http.Handler) http.Handler {
	opts := []csrf.Option{csrf.ErrorHandler(http.HandlerFunc(s.csrfFailed))}
	if len(s.trustedOrigins) > 0 {
		opts = append(opts, csrf.TrustedOrigins(s.trustedOrigins))
	}
	return csrf.Protect(s.csrfKey, opts...)(next)
}

func (s *Server) csrfFailed(w http.ResponseWriter, r *http.Request) {
	reason := "unknown"
	if err := csrf.FailureReason(r); err != nil {
		reason = err.Error()
	}
	s.logger.Warn("csrf validation failed",
		"reason", reason,
		"method", r.Method,
		"path", r.URL.Path,
		"origin", r.Header.Get("Origin"),
		"sec_fetch_site", r.Header.Get("Sec-Fetch-Site"),
	)
	http.Error(w, "Forbidden - CSRF validation failed", http.StatusForbidden)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

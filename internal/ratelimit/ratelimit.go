package ratelimit

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Config bounds each client to MaxRequests per Window.
type Config struct {
	MaxRequests int
	Window      time.Duration
}

// Limiter is HTTP middleware enforcing Config per client host.
type Limiter struct {
	cfg     Config
	backend Backend

	// OnLimited is called for every rejected request.
	OnLimited func(r *http.Request)
	// OnError is called when the backend fails. The request is let through.
	OnError func(r *http.Request, err error)
	// Reject writes the response for a rejected request.
	Reject func(w http.ResponseWriter, r *http.Request, retryAfter time.Duration)
}

func New(cfg Config, backend Backend) *Limiter {
	return &Limiter{cfg: cfg, backend: backend, Reject: defaultReject}
}

// ClientKey returns the host part of r.RemoteAddr.
func ClientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.Split(r.RemoteAddr, ":")[0]
	}
	return host
}

func (l *Limiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n, ttl, err := l.backend.Incr(r.Context(), ClientKey(r), l.cfg.Window)
		if err != nil {
			if l.OnError != nil {
				l.OnError(r, err)
			}
			next.ServeHTTP(w, r)
			return
		}
		if n > int64(l.cfg.MaxRequests) {
			if l.OnLimited != nil {
				l.OnLimited(r)
			}
			l.Reject(w, r, ttl)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RetryAfterSeconds rounds d up to whole seconds, at least one.
func RetryAfterSeconds(d time.Duration) int {
	s := int(math.Ceil(d.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}

func defaultReject(w http.ResponseWriter, _ *http.Request, retryAfter time.Duration) {
	w.Header().Set("Retry-After", strconv.Itoa(RetryAfterSeconds(retryAfter)))
	http.Error(w, "Too many requests", http.StatusTooManyRequests)
}

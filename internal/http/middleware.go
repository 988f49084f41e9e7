package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/fairyhunter13/product-catalog-service/internal/obs"
	"github.com/fairyhunter13/product-catalog-service/internal/ratelimit"
)

type ctxKey int

const (
	ctxKeyRequestID ctxKey = iota
)

// unmatchedRoute labels requests no route matched, keeping metric
// cardinality bounded.
const unmatchedRoute = "unmatched"

func RequestIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyRequestID).(string)
	return v
}

type statusRecorder struct {
	h  http.ResponseWriter
	st int
	n  int
}

func (w *statusRecorder) Header() http.Header { return w.h.Header() }
func (w *statusRecorder) WriteHeader(code int) {
	w.st = code
	w.h.WriteHeader(code)
}
func (w *statusRecorder) Write(b []byte) (int, error) {
	n, err := w.h.Write(b)
	w.n += n
	return n, err
}

func WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", reqID)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyRequestID, reqID)))
	})
}

func WithLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sr := &statusRecorder{h: w, st: 200}
		next.ServeHTTP(sr, r)
		lat := time.Since(start)
		obs.Logger.Info("http_request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sr.st,
			"bytes", sr.n,
			"latency_ms", float64(lat.Microseconds())/1000.0,
			"request_id", RequestIDFromContext(r.Context()),
		)
	})
}

// WithMetrics records request count and latency labelled by the route
// template router matches, e.g. /products/{id}.
func WithMetrics(router *mux.Router, m *obs.Metrics) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := unmatchedRoute
		var match mux.RouteMatch
		if router.Match(r, &match) && match.Route != nil {
			if tpl, err := match.Route.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		start := time.Now()
		sr := &statusRecorder{h: w, st: 200}
		router.ServeHTTP(sr, r)
		m.ObserveRequest(r.Method, route, sr.st, time.Since(start))
	})
}

// NewLimiter returns a rate limiter that answers rejected requests with the
// JSON error payload, counts them in m and logs backend failures.
func NewLimiter(cfg ratelimit.Config, backend ratelimit.Backend, m *obs.Metrics) *ratelimit.Limiter {
	l := ratelimit.New(cfg, backend)
	l.OnLimited = func(r *http.Request) {
		if m != nil {
			m.RateLimited()
		}
		obs.Logger.Warn("rate_limited",
			"client", ratelimit.ClientKey(r),
			"request_id", RequestIDFromContext(r.Context()),
		)
	}
	l.OnError = func(r *http.Request, err error) {
		obs.Logger.Error("rate_limit_backend_error",
			"error", err,
			"request_id", RequestIDFromContext(r.Context()),
		)
	}
	l.Reject = func(w http.ResponseWriter, r *http.Request, retryAfter time.Duration) {
		w.Header().Set("Retry-After", strconv.Itoa(ratelimit.RetryAfterSeconds(retryAfter)))
		WriteJSONError(w, http.StatusTooManyRequests, "rate_limited", "")
	}
	return l
}

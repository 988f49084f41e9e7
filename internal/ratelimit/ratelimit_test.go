package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type failingBackend struct{}

func (failingBackend) Incr(context.Context, string, time.Duration) (int64, time.Duration, error) {
	return 0, 0, errors.New("backend down")
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(h http.Handler, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.RemoteAddr = remote
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestLimiter_AllowsRequestsBelowLimit(t *testing.T) {
	l := New(Config{MaxRequests: 5, Window: time.Minute}, NewMemoryBackend())
	h := l.Handler(okHandler())
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, doRequest(h, "192.168.1.1:12345").Code, "request %d", i+1)
	}
}

func TestLimiter_BlocksRequestsAboveLimit(t *testing.T) {
	limited := 0
	l := New(Config{MaxRequests: 2, Window: time.Minute}, NewMemoryBackend())
	l.OnLimited = func(*http.Request) { limited++ }
	h := l.Handler(okHandler())

	doRequest(h, "192.168.1.1:1")
	doRequest(h, "192.168.1.1:2")
	rr := doRequest(h, "192.168.1.1:3")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))
	assert.Equal(t, 1, limited)

	assert.Equal(t, http.StatusOK, doRequest(h, "192.168.1.2:1").Code)
}

func TestLimiter_FailsOpen(t *testing.T) {
	var gotErr error
	l := New(Config{MaxRequests: 1, Window: time.Second}, failingBackend{})
	l.OnError = func(_ *http.Request, err error) { gotErr = err }
	h := l.Handler(okHandler())
	assert.Equal(t, http.StatusOK, doRequest(h, "1.2.3.4:5").Code)
	assert.Equal(t, http.StatusOK, doRequest(h, "1.2.3.4:5").Code)
	assert.Error(t, gotErr)
}

func TestClientKey(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "[::1]:8080"
	assert.Equal(t, "::1", ClientKey(r))
	r.RemoteAddr = "10.1.1.1"
	assert.Equal(t, "10.1.1.1", ClientKey(r))
}

func TestRetryAfterSeconds(t *testing.T) {
	assert.Equal(t, 1, RetryAfterSeconds(0))
	assert.Equal(t, 1, RetryAfterSeconds(200*time.Millisecond))
	assert.Equal(t, 2, RetryAfterSeconds(1500*time.Millisecond))
}

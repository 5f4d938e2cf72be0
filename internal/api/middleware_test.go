package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Refills(t *testing.T) {
	l := NewRateLimiter(2, 10*time.Second)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	ok, remaining, _ := l.allow("a")
	assert.True(t, ok)
	assert.Equal(t, 1, remaining)
	ok, remaining, reset := l.allow("a")
	assert.True(t, ok)
	assert.Equal(t, 0, remaining)
	assert.Equal(t, 10, reset)

	ok, _, _ = l.allow("a")
	assert.False(t, ok)

	// One token returns every five seconds.
	now = now.Add(5 * time.Second)
	ok, _, _ = l.allow("a")
	assert.True(t, ok)
}

func TestRateLimiter_SweepsIdleClients(t *testing.T) {
	l := NewRateLimiter(5, time.Second)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.allow("a")
	l.allow("b")
	assert.Len(t, l.visitors, 2)

	now = now.Add(3 * time.Second)
	l.allow("c")
	assert.Len(t, l.visitors, 1)
}

func TestNewRateLimiter_Defaults(t *testing.T) {
	l := NewRateLimiter(0, 0)
	assert.Equal(t, 1, l.burst)
	assert.Equal(t, time.Minute, l.window)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	assert.Equal(t, "192.0.2.1", clientIP(req))

	req.RemoteAddr = "192.0.2.9"
	assert.Equal(t, "192.0.2.9", clientIP(req))
}

func TestAccessLog_DefaultsStatus(t *testing.T) {
	h := AccessLog(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRateLimiter(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{Requests: 10})

	assert.Equal(t, 10, rl.config.Requests)
	assert.Equal(t, time.Minute, rl.config.Window)
	assert.NotNil(t, rl.config.KeyFunc)
	assert.Equal(t, "errors.rate_limited", rl.config.MessageKey)
}

func TestRateLimiterMiddleware(t *testing.T) {
	e := echo.New()
	call := func(h echo.HandlerFunc, ip string) error {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = ip + ":1234"
		return h(e.NewContext(req, httptest.NewRecorder()))
	}
	ok := func(c echo.Context) error { return c.NoContent(http.StatusAccepted) }

	t.Run("WithinLimit", func(t *testing.T) {
		h := NewExportRateLimiter(2).Middleware()(ok)
		assert.NoError(t, call(h, "10.0.0.1"))
		assert.NoError(t, call(h, "10.0.0.1"))
	})

	t.Run("ExceededLimit", func(t *testing.T) {
		h := NewExportRateLimiter(1).Middleware()(ok)
		require.NoError(t, call(h, "10.0.0.1"))

		err := call(h, "10.0.0.1")
		he, isHTTP := err.(*echo.HTTPError)
		require.True(t, isHTTP)
		assert.Equal(t, http.StatusTooManyRequests, he.Code)
		assert.Equal(t, "Too many export requests. Please wait a moment.", he.Message)
	})

	t.Run("SeparateClients", func(t *testing.T) {
		h := NewExportRateLimiter(1).Middleware()(ok)
		assert.NoError(t, call(h, "10.0.0.1"))
		assert.NoError(t, call(h, "10.0.0.2"))
	})
}

func TestRateLimiterWindowReset(t *testing.T) {
	now := time.Date(2024, 11, 4, 10, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(RateLimitConfig{Requests: 1, Window: time.Minute})
	rl.now = func() time.Time { return now }

	assert.True(t, rl.allow("a"))
	assert.False(t, rl.allow("a"))

	now = now.Add(61 * time.Second)
	assert.Equal(t, 1, rl.Cleanup())
	assert.True(t, rl.allow("a"))
}

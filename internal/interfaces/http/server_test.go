package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/saree-store/internal/config"
	"github.com/your-org/saree-store/internal/infrastructure/database/postgres"
	redisdb "github.com/your-org/saree-store/internal/infrastructure/database/redis"
	"github.com/your-org/saree-store/internal/testutil"
)

func newTestServer(t *testing.T) (*Server, *miniredis.Miniredis) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Config{
		App:    config.AppConfig{Name: "Saree Store", Version: "test", Environment: "test"},
		Server: config.ServerConfig{Port: "0", RequestTimeout: 5 * time.Second},
		JWT:    config.JWTConfig{Secret: "test-secret-that-is-at-least-32-characters", AccessTokenExpiry: time.Hour, RefreshTokenExpiry: time.Hour},
		Security: config.SecurityConfig{
			BcryptCost:         4,
			RateLimitPerMinute: 3,
			MaxBodyBytes:       1 << 20,
			CORSAllowedOrigins: []string{"http://localhost:3000"},
			CORSAllowedMethods: []string{"GET", "POST"},
			CORSAllowedHeaders: []string{"Content-Type"},
		},
		Session: config.SessionConfig{CookieName: "session_id", CartTTL: time.Hour},
	}

	db := testutil.NewDB(t, postgres.Models()...)
	return NewServer(cfg, db, &redisdb.Client{Redis: client}, nil, testutil.NewLogger()), mr
}

func get(s *Server, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealth(t *testing.T) {
	s, mr := newTestServer(t)

	w := get(s, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"healthy"`)

	mr.Close()
	w = get(s, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "redis")
}

func TestReadyAndMetrics(t *testing.T) {
	s, _ := newTestServer(t)

	w := get(s, "/ready")
	assert.Equal(t, http.StatusOK, w.Code)

	get(s, "/api/v1/categories")
	w = get(s, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "storefront_http_requests_total"))
}

func TestMiddlewareChain(t *testing.T) {
	s, _ := newTestServer(t)

	w := get(s, "/api/v1/cart")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.NotEmpty(t, w.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, w.Header().Get("Set-Cookie"), "session_id=")

	limited := false
	for i := 0; i < 8 && !limited; i++ {
		limited = get(s, "/api/v1/cart").Code == http.StatusTooManyRequests
	}
	assert.True(t, limited)
}

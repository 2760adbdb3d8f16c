package middleware

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
	"github.com/your-org/saree-store/internal/pkg/auth"
	"github.com/your-org/saree-store/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testJWT() *auth.JWTManager {
	return auth.NewJWTManager(&config.Config{
		App: config.AppConfig{Name: "Saree Store"},
		JWT: config.JWTConfig{
			Secret:             "0123456789abcdef0123456789abcdef",
			AccessTokenExpiry:  time.Hour,
			RefreshTokenExpiry: 24 * time.Hour,
		},
	})
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	jwt := testJWT()
	pair, err := jwt.IssuePair(7, "asha@example.com", false)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", AuthMiddleware(jwt), func(c *gin.Context) {
		id, _ := GetUserIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"id": id})
	})
	r.GET("/admin", AuthMiddleware(jwt), AdminMiddleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+pair.RefreshToken)
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code, "refresh tokens are not access tokens")

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":7}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	assert.Equal(t, http.StatusForbidden, serve(r, req).Code)
}

func TestOptionalAuthAndSession(t *testing.T) {
	jwt := testJWT()
	pair, err := jwt.IssuePair(3, "guest@example.com", false)
	require.NoError(t, err)

	cfg := config.SessionConfig{CookieName: "session_id", CartTTL: 24 * time.Hour}
	r := gin.New()
	r.Use(Session(cfg), OptionalAuthMiddleware(jwt))
	r.GET("/cart", func(c *gin.Context) {
		s := ShopperFromContext(c)
		c.JSON(http.StatusOK, gin.H{"session": s.SessionID, "signed_in": s.UserID != nil})
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/cart", nil))
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "session_id", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, 86400, cookies[0].MaxAge)
	assert.Contains(t, w.Body.String(), `"signed_in":false`)

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(cookies[0])
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w = serve(r, req)
	assert.Contains(t, w.Body.String(), cookies[0].Value, "an existing session is kept")
	assert.Contains(t, w.Body.String(), `"signed_in":true`)

	req = httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "not-a-uuid"})
	w = serve(r, req)
	assert.NotContains(t, w.Body.String(), "not-a-uuid")
}

func TestRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	r := gin.New()
	r.Use(RateLimit(2, client, testutil.NewLogger()))
	r.GET("/products", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/products", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
	w := serve(r, httptest.NewRequest(http.MethodGet, "/products", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	mr.Close()
	w = serve(r, httptest.NewRequest(http.MethodGet, "/products", nil))
	assert.Equal(t, http.StatusOK, w.Code, "requests pass when redis is down")
}

func TestCORS(t *testing.T) {
	cfg := &config.Config{Security: config.SecurityConfig{
		CORSAllowedOrigins: []string{"https://shop.example.com", "*.sarees.in"},
		CORSAllowedMethods: []string{"GET", "POST"},
		CORSAllowedHeaders: []string{"Content-Type"},
	}}
	r := gin.New()
	r.Use(CORS(cfg))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://m.sarees.in")
	w := serve(r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://m.sarees.in", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evilsarees.in")
	w = serve(r, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestSizeLimitAndRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), RequestSizeLimit(16))
	r.POST("/x", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := serve(r, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(strings.Repeat("a", 64))))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("ok"))
	req.Header.Set("X-Request-ID", "abc-123")
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestTimeoutSetsDeadline(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(time.Second))
	r.GET("/x", func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		c.JSON(http.StatusOK, gin.H{"deadline": ok})
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.JSONEq(t, `{"deadline":true}`, w.Body.String())
}

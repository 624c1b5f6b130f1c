package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/hardware-admin/internal/pkg/auth"
	"github.com/your-org/hardware-admin/internal/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticTokens map[string]*auth.Claims

func (s staticTokens) ValidateAccessToken(token string) (*auth.Claims, error) {
	claims, ok := s[token]
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	return claims, nil
}

type roleTable map[string]bool

func (r roleTable) Enforce(role, path, method string) (bool, error) {
	if role == "broken" {
		return false, errors.New("policy store down")
	}
	return r[role+" "+method+" "+path], nil
}

type memoryCounter struct {
	hits map[string]int64
	err  error
}

func (m *memoryCounter) Hit(_ context.Context, key string, _ time.Duration) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.hits[key]++
	return m.hits[key], nil
}

func newTestRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(handlers...)
	router.GET("/api/v1/orders/:id", func(c *gin.Context) {
		userID, _ := GetUserIDFromContext(c)
		sessionID, _ := GetSessionIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "session_id": sessionID, "admin": IsAdminFromContext(c)})
	})
	return router
}

func perform(router http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/5", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

var testTokens = staticTokens{
	"rep":    {UserID: 7, Role: "representative", SessionID: "sess-7"},
	"admin":  {UserID: 1, Role: "admin", SessionID: "sess-1"},
	"broken": {UserID: 9, Role: "broken", SessionID: "sess-9"},
}

func TestAuthMiddleware(t *testing.T) {
	router := newTestRouter(AuthMiddleware(testTokens))

	assert.Equal(t, http.StatusUnauthorized, perform(router, "").Code)
	assert.Equal(t, http.StatusUnauthorized, perform(router, "nope").Code)

	w := perform(router, "rep")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":7,"session_id":"sess-7","admin":false}`, w.Body.String())
}

func TestAuthorize(t *testing.T) {
	policies := roleTable{"representative GET /api/v1/orders/:id": true}
	router := newTestRouter(AuthMiddleware(testTokens), Authorize(policies, logger.Discard()))

	assert.Equal(t, http.StatusOK, perform(router, "rep").Code)
	assert.Equal(t, http.StatusForbidden, perform(router, "admin").Code)
	assert.Equal(t, http.StatusInternalServerError, perform(router, "broken").Code)
}

func TestRateLimit(t *testing.T) {
	counter := &memoryCounter{hits: map[string]int64{}}
	router := newTestRouter(AuthMiddleware(testTokens), RateLimit(2, counter, logger.Discard()))

	assert.Equal(t, http.StatusOK, perform(router, "rep").Code)
	w := perform(router, "rep")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, http.StatusTooManyRequests, perform(router, "rep").Code)

	// Counted per account
	assert.Equal(t, http.StatusOK, perform(router, "admin").Code)
	assert.Equal(t, int64(3), counter.hits["rate_limit:user:7"])
}

func TestRateLimitFailsOpen(t *testing.T) {
	counter := &memoryCounter{err: errors.New("connection refused")}
	router := newTestRouter(RateLimit(1, counter, logger.Discard()))

	assert.Equal(t, http.StatusOK, perform(router, "").Code)
	assert.Equal(t, http.StatusOK, perform(router, "").Code)
}

func TestRequestIDAndSecurityHeaders(t *testing.T) {
	router := newTestRouter(RequestID(), SecurityHeaders(), Logger(logger.Discard()))

	w := perform(router, "")
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/5", nil)
	req.Header.Set("X-Request-ID", "6f1c2a4e-1d2b-4c3d-9e8f-0a1b2c3d4e5f")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "6f1c2a4e-1d2b-4c3d-9e8f-0a1b2c3d4e5f", w.Header().Get("X-Request-ID"))
}

func TestRequestSizeLimit(t *testing.T) {
	router := gin.New()
	router.Use(RequestSizeLimit(8))
	router.POST("/echo", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("this body is too long"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestIsOriginAllowed(t *testing.T) {
	allowed := []string{"http://localhost:3000", "*.store.test"}

	assert.True(t, isOriginAllowed("http://localhost:3000", allowed))
	assert.True(t, isOriginAllowed("https://admin.store.test", allowed))
	assert.False(t, isOriginAllowed("https://evilstore.test", allowed))
	assert.False(t, isOriginAllowed("http://localhost:4000", allowed))
}

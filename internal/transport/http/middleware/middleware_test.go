package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"user-api/internal/core/auth"
	"user-api/internal/domain"
	resp "user-api/internal/transport/http/response"
)

func init() { gin.SetMode(gin.TestMode) }

func do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func message(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	s, _ := m["message"].(string)
	return s
}

func authEngine(j *auth.JWTer, required bool) *gin.Engine {
	r := gin.New()
	r.GET("/me", AuthJWT(j, required), func(c *gin.Context) {
		c.String(http.StatusOK, "uid="+UserID(c))
	})
	return r
}

func TestAuthJWT(t *testing.T) {
	j := &auth.JWTer{Secret: []byte("mw-secret")}
	tok, err := j.Issue("u-1", "a@b.com")
	require.NoError(t, err)
	other := &auth.JWTer{Secret: []byte("another")}
	forged, err := other.Issue("u-1", "a@b.com")
	require.NoError(t, err)

	r := authEngine(j, true)

	w := do(r, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, resp.MsgNoToken, message(t, w))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	w = do(r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, resp.MsgBadToken, message(t, w))

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w = do(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "uid=u-1", w.Body.String())

	// 裸 token
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", tok)
	w = do(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthJWT_Expired(t *testing.T) {
	issued := time.Now().Add(-2 * time.Hour)
	old := &auth.JWTer{Secret: []byte("mw-secret"), Now: func() time.Time { return issued }}
	tok, err := old.Issue("u-1", "a@b.com")
	require.NoError(t, err)

	r := authEngine(&auth.JWTer{Secret: []byte("mw-secret")}, true)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := do(r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, resp.MsgBadToken, message(t, w))
}

func TestAuthJWT_Optional(t *testing.T) {
	r := authEngine(&auth.JWTer{Secret: []byte("mw-secret")}, false)
	w := do(r, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "uid=", w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = do(r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	roles := map[string]domain.Role{"boss": domain.RoleAdmin, "joe": domain.RoleUser}
	lookup := func(_ context.Context, id string) (domain.Role, error) {
		r, ok := roles[id]
		if !ok {
			return "", domain.NotFound("gone")
		}
		return r, nil
	}
	r := gin.New()
	r.GET("/admin", func(c *gin.Context) {
		c.Set(KeyUserID, c.Query("as"))
		c.Next()
	}, RequireRole(lookup, domain.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	assert.Equal(t, http.StatusNoContent, do(r, httptest.NewRequest(http.MethodGet, "/admin?as=boss", nil)).Code)
	assert.Equal(t, http.StatusForbidden, do(r, httptest.NewRequest(http.MethodGet, "/admin?as=joe", nil)).Code)
	assert.Equal(t, http.StatusForbidden, do(r, httptest.NewRequest(http.MethodGet, "/admin?as=ghost", nil)).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, httptest.NewRequest(http.MethodGet, "/admin", nil)).Code)
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.GET("/", RateLimit(0, 1), func(c *gin.Context) { c.Status(http.StatusOK) })
	assert.Equal(t, http.StatusOK, do(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	w := do(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, resp.MsgTooMany, message(t, w))
}

func TestRateLimitPerIP(t *testing.T) {
	r := gin.New()
	r.GET("/", RateLimitPerIP(0, 1), func(c *gin.Context) { c.Status(http.StatusOK) })
	from := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		return do(r, req).Code
	}
	assert.Equal(t, http.StatusOK, from("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, from("10.0.0.1"))
	assert.Equal(t, http.StatusOK, from("10.0.0.2"))
}

func TestMaxBodyBytes(t *testing.T) {
	r := gin.New()
	r.POST("/", MaxBodyBytes(8), func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)
		if TooLarge(err) {
			resp.Abort(c, http.StatusRequestEntityTooLarge, resp.MsgBodyTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	w := do(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	// 不带 Content-Length，读取时才发现超限
	req := httptest.NewRequest(http.MethodPost, "/", io.NopCloser(strings.NewReader("0123456789")))
	req.ContentLength = -1
	w = do(r, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	assert.Equal(t, http.StatusOK, do(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("small"))).Code)
}

func TestConcurrencyLimit(t *testing.T) {
	hold := make(chan struct{})
	entered := make(chan struct{})
	r := gin.New()
	r.GET("/", ConcurrencyLimit(1), func(c *gin.Context) {
		if c.Query("hold") != "" {
			close(entered)
			<-hold
		}
		c.Status(http.StatusOK)
	})

	done := make(chan int)
	go func() { done <- do(r, httptest.NewRequest(http.MethodGet, "/?hold=1", nil)).Code }()
	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	w := do(r, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	close(hold)
	assert.Equal(t, http.StatusOK, <-done)
	assert.Equal(t, http.StatusOK, do(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.GET("/", Timeout(10*time.Millisecond), func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	w := do(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Equal(t, resp.MsgTimeout, message(t, w))
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(zap.NewNop()))
	r.GET("/", func(*gin.Context) { panic("boom") })
	w := do(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, resp.MsgInternal, message(t, w))
}

func TestRequestIDAndAccessLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(RequestID(), AccessLog(zap.New(core)))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x?password=hunter2&q=1", nil)
	req.Header.Set(KeyRequestID, "rid-123")
	w := do(r, req)
	assert.Equal(t, "rid-123", w.Header().Get(KeyRequestID))

	w = do(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Len(t, w.Header().Get(KeyRequestID), 36)

	entries := logs.All()
	require.Len(t, entries, 2)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "rid-123", ctx["rid"])
	assert.Equal(t, "/x", ctx["path"])
	q, ok := ctx["query"].(map[string][]string)
	require.True(t, ok)
	assert.Equal(t, []string{"****"}, q["password"])
	assert.Equal(t, []string{"1"}, q["q"])
}

package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"user-api/internal/core/config"
	"user-api/internal/transport/http/router"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.App{Env: "test"},
		JWT: config.JWT{Secret: "app-test-secret"},
		Auth: config.Auth{
			BcryptCost:    10,
			RolePolicy:    "admin_only",
			ProtectRoutes: true,
		},
		DB: config.DB{
			Driver:       "sqlite",
			DSN:          "file:" + uuid.NewString() + "?mode=memory&cache=shared",
			MaxOpenConns: 1,
			MaxIdleConns: 1,
			AutoMigrate:  true,
			LogLevel:     "silent",
		},
	}
}

func TestNew_WiresEngines(t *testing.T) {
	a, err := New(testConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(a.Close)

	_, err = a.Users.EnsureAdmin(context.Background(), "root@b.com", "rootpassword")
	require.NoError(t, err)

	api := router.NewAPIEngine(a.Deps())
	w := httptest.NewRecorder()
	api.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	api.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNew_RejectsBadPolicy(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.RolePolicy = "everyone"
	_, err := New(cfg, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestNew_RedisDownFallsBack(t *testing.T) {
	cfg := testConfig()
	cfg.Redis.Addr = "127.0.0.1:1"
	a, err := New(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(a.Close)
	assert.NotNil(t, a.Users)
}

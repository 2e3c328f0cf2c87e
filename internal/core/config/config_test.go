package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_FileAndDefaults(t *testing.T) {
	p := writeYAML(t, `
app:
  http:
    port: 9090
jwt:
  secret: from-file
auth:
  bcryptCost: 12
db:
  driver: postgres
  dsn: postgres://u:p@localhost/users
limits:
  corsOrigins: ["https://app.example.com"]
`)
	c, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, 9090, c.App.HTTP.Port)
	assert.Equal(t, "0.0.0.0", c.App.HTTP.Host)
	assert.Equal(t, "from-file", c.JWT.Secret)
	assert.Equal(t, 12, c.Auth.BcryptCost)
	assert.Equal(t, "admin_only", c.Auth.RolePolicy)
	assert.True(t, c.Auth.ProtectRoutes)
	assert.Equal(t, "postgres", c.DB.Driver)
	assert.Equal(t, []string{"https://app.example.com"}, c.Limits.CORSOrigins)
	assert.Equal(t, 300, c.Redis.TTLSec)
	assert.Empty(t, c.Redis.Addr)
}

func TestLoad_EnvOverrides(t *testing.T) {
	p := writeYAML(t, "jwt:\n  secret: from-file\n")
	t.Setenv("APP_JWT_SECRET", "from-env")
	t.Setenv("APP_AUTH_ROLEPOLICY", "open")
	t.Setenv("APP_REDIS_ADDR", "127.0.0.1:6379")

	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "from-env", c.JWT.Secret)
	assert.Equal(t, "open", c.Auth.RolePolicy)
	assert.Equal(t, "127.0.0.1:6379", c.Redis.Addr)
}

func TestLoad_MissingFileUsesEnv(t *testing.T) {
	t.Setenv("APP_JWT_SECRET", "only-env")
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "only-env", c.JWT.Secret)
	assert.Equal(t, "sqlite", c.DB.Driver)
}

func TestLoad_Invalid(t *testing.T) {
	p := writeYAML(t, `
auth:
  bcryptCost: 4
  rolePolicy: anyone
db:
  driver: oracle
`)
	_, err := Load(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt.secret is required")
	assert.Contains(t, err.Error(), "bcryptCost must be >= 10")
	assert.Contains(t, err.Error(), `rolePolicy "anyone" unknown`)
	assert.Contains(t, err.Error(), `db.driver "oracle" unsupported`)
}

func TestLoad_BadYAML(t *testing.T) {
	p := writeYAML(t, "jwt: [unclosed")
	_, err := Load(p)
	assert.Error(t, err)
}

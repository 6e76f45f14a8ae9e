package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(body), 0o600))
	return dir
}

func TestLoad_MissingSecretFails(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	dir := writeConfig(t, "port: \"9000\"\n")

	_, err := Load(dir)
	require.ErrorIs(t, err, ErrMissingSecret)
}

func TestLoad_BlankSecretFails(t *testing.T) {
	t.Setenv("JWT_SECRET", "   ")
	_, err := Load(t.TempDir())
	require.ErrorIs(t, err, ErrMissingSecret)
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cr3t")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "app.db", cfg.DBPath)
	assert.Equal(t, BackendLocal, cfg.Uploads.Backend)
	assert.Equal(t, int64(5<<20), cfg.Uploads.MaxBytes)
	assert.Equal(t, time.Minute, cfg.Redis.TTL)
	assert.Equal(t, "postboard.activity", cfg.RabbitMQ.Queue)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoad_FileThenEnvOverrides(t *testing.T) {
	dir := writeConfig(t, `
port: "9000"
db:
  path: "from-file.db"
auth:
  jwt_secret: "file-secret"
  cookie_secure: true
redis:
  addr: "localhost:6379"
  ttl: 30s
`)
	t.Setenv("PORT", "7000")
	t.Setenv("DB_PATH", "from-env.db")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("REDIS_ADDR", "cache:6379")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, "from-env.db", cfg.DBPath)
	assert.Equal(t, "file-secret", cfg.Auth.JWTSecret)
	assert.True(t, cfg.Auth.CookieSecure)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, 30*time.Second, cfg.Redis.TTL)
}

func TestLoad_S3RequiresBucket(t *testing.T) {
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("UPLOADS_BACKEND", "s3")

	_, err := Load(t.TempDir())
	require.ErrorContains(t, err, "s3.bucket")

	t.Setenv("S3_BUCKET", "avatars")
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, BackendS3, cfg.Uploads.Backend)
	assert.Equal(t, "avatars", cfg.S3.Bucket)
}

func TestLoad_UnknownBackend(t *testing.T) {
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("UPLOADS_BACKEND", "ftp")

	_, err := Load(t.TempDir())
	require.ErrorContains(t, err, "unknown uploads.backend")
}

func TestLoad_BrokenFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "x")
	dir := writeConfig(t, "port: [unclosed\n")

	_, err := Load(dir)
	require.ErrorContains(t, err, "read config")
}

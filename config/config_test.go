package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv([]string{
		"CATALOGD_WEB_PORT=9090",
		"CATALOGD_WEB_TOKEN_TTL=30m",
		"CATALOGD_DATABASE_TYPE=sqlite",
		"CATALOGD_LOGGER_FILE_ENABLE=true",
		"CATALOGD_ASSETS_BASE_URL=https://media.example.com",
		"CATALOGD_UNKNOWN_KEY=ignored",
		"PATH=/usr/bin",
	})
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Web.Port)
	assert.Equal(t, 30*time.Minute, cfg.Web.TokenTTL)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.True(t, cfg.Logger.FileEnable)
	assert.Equal(t, "https://media.example.com", cfg.Assets.BaseURL)
	// untouched fields keep their defaults
	assert.Equal(t, "0.0.0.0", cfg.Web.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
}

func TestApplyEnvRejectsBadValue(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv([]string{"CATALOGD_WEB_PORT=eighty"})
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalogd.yml")
	content := `
system:
  workdir: /tmp/catalogd
web:
  port: 8088
  secret: s3cret
assets:
  max_upload_size: 2MB
auth:
  users:
    - username: admin
      password_hash: $2a$10$abc
      role: admin
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/catalogd", cfg.System.Workdir)
	assert.Equal(t, 8088, cfg.Web.Port)
	assert.Equal(t, "s3cret", cfg.Web.Secret)
	assert.Equal(t, "2MB", cfg.Assets.MaxUploadSize)
	require.Len(t, cfg.Auth.Users, 1)
	assert.Equal(t, "admin", cfg.Auth.Users[0].Role)
	assert.Equal(t, 12*time.Hour, cfg.Web.TokenTTL)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

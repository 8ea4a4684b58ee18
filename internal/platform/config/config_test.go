package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{
		"ADDRESSBOOK_API_URL", "ADDRESSBOOK_HTTP_TIMEOUT", "ADDRESSBOOK_PAGE_SIZE",
		"ADDRESSBOOK_LOG_LEVEL", "ADDRESSBOOK_TOKEN_DIR", "ADDRESSBOOK_TRANSPORT_POLICY",
	} {
		t.Setenv(key, "")
	}
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfg := FromEnv()
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, DefaultHTTPTimeout, cfg.HTTPTimeout)
	assert.Equal(t, DefaultPageSize, cfg.PageSize)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, filepath.Join(dir, "addressbook"), cfg.TokenDir)
	assert.Equal(t, PolicyDeauthenticate, cfg.TransportPolicy)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("ADDRESSBOOK_API_URL", "https://contacts.example.com/api/v1")
	t.Setenv("ADDRESSBOOK_HTTP_TIMEOUT", "3s")
	t.Setenv("ADDRESSBOOK_PAGE_SIZE", "25")
	t.Setenv("ADDRESSBOOK_TOKEN_DIR", "/tmp/tokens")
	t.Setenv("ADDRESSBOOK_TRANSPORT_POLICY", PolicyRetryLater)

	cfg := FromEnv()
	assert.Equal(t, "https://contacts.example.com/api/v1", cfg.APIURL)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 25, cfg.PageSize)
	assert.Equal(t, "/tmp/tokens", cfg.TokenDir)
	assert.Equal(t, PolicyRetryLater, cfg.TransportPolicy)
}

func TestFromEnvIgnoresInvalidValues(t *testing.T) {
	t.Setenv("ADDRESSBOOK_HTTP_TIMEOUT", "soon")
	t.Setenv("ADDRESSBOOK_PAGE_SIZE", "-4")
	t.Setenv("ADDRESSBOOK_TRANSPORT_POLICY", "panic")

	cfg := FromEnv()
	assert.Equal(t, DefaultHTTPTimeout, cfg.HTTPTimeout)
	assert.Equal(t, DefaultPageSize, cfg.PageSize)
	assert.Equal(t, PolicyDeauthenticate, cfg.TransportPolicy)
}

func TestMockAPIFromEnv(t *testing.T) {
	t.Setenv("JWT_SIGNING_KEY", "")
	t.Setenv("MOCKAPI_ADDR", "")
	t.Setenv("TOKEN_TTL", "1m")

	cfg := MockAPIFromEnv()
	assert.Equal(t, ":8000", cfg.Addr)
	assert.NotEmpty(t, cfg.JWTSigningKey)
	assert.Equal(t, time.Minute, cfg.TokenTTL)
	assert.Equal(t, DefaultRefreshTokenTTL, cfg.RefreshTokenTTL)
}

package config

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBackendConfig_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	cfg, err := LoadBackendConfig()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 5, cfg.OTPMaxAttempts)
	assert.Equal(t, http.SameSiteLaxMode, cfg.SameSite())
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.AllowedOrigins)
}

func TestLoadBackendConfig_SameSiteNoneNeedsSecure(t *testing.T) {
	t.Setenv("COOKIE_SAMESITE", "None")
	t.Setenv("COOKIE_SECURE", "false")
	_, err := LoadBackendConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COOKIE_SECURE")

	t.Setenv("COOKIE_SECURE", "true")
	cfg, err := LoadBackendConfig()
	require.NoError(t, err)
	assert.Equal(t, http.SameSiteNoneMode, cfg.SameSite())
}

func TestLoadBackendConfig_ProdRejectsDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("COOKIE_SECURE", "true")
	_, err := LoadBackendConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadBackendConfig_InvalidDuration(t *testing.T) {
	t.Setenv("OTP_TTL", "soon")
	_, err := LoadBackendConfig()
	assert.ErrorContains(t, err, "OTP_TTL")
}

func TestLoadClientConfig_Defaults(t *testing.T) {
	v, err := NewClientViper("")
	require.NoError(t, err)
	cfg, err := LoadClientConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.BackendURL)
	assert.Equal(t, "auto", cfg.RefreshMode)
	assert.Equal(t, "279", cfg.FreeShippingThreshold.String())
	assert.Equal(t, "40", cfg.ShippingCharge.String())
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
}

func TestLoadClientConfig_EnvAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend_url: https://shop.example.com\nshipping_charge: \"55\"\n"), 0o600))
	t.Setenv("STOREFRONT_REFRESH_MODE", "recovery")

	v, err := NewClientViper(path)
	require.NoError(t, err)
	cfg, err := LoadClientConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "https://shop.example.com", cfg.BackendURL)
	assert.Equal(t, "recovery", cfg.RefreshMode)
	assert.Equal(t, "55", cfg.ShippingCharge.String())
}

func TestLoadClientConfig_RejectsUnknownMode(t *testing.T) {
	v, err := NewClientViper("")
	require.NoError(t, err)
	v.Set("refresh_mode", "magic")

	_, err = LoadClientConfig(v)
	assert.ErrorContains(t, err, "refresh_mode")
}

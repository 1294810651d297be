package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.True(t, cfg.Conversion.DemoMode)
	assert.Equal(t, 5*time.Second, cfg.Backend.ProbeTimeout)
	assert.Equal(t, "/v1/configuration", cfg.Backend.ProbePath)
	assert.Equal(t, 10*time.Second, cfg.RateProviders.Fiat.HTTPTimeout)
	assert.Equal(t, DefaultFiatRatesURL, cfg.RateProviders.Fiat.ApiUrl)
	assert.Equal(t, DefaultStablecoinRatesURL, cfg.RateProviders.Stablecoin.ApiUrl)
	assert.Equal(t, DefaultQuoteURL, cfg.RateProviders.Quote.ApiUrl)
	assert.Equal(t, 60, cfg.RateProviders.Quote.RequestsPerMinute)
	assert.Equal(t, "@every 5m", cfg.RateRefresh.Schedule)
	assert.Equal(t, 500*time.Millisecond, cfg.Preview.Debounce)
	assert.Equal(t, 5, cfg.Ledger.DisplayEvents)
	assert.Empty(t, cfg.Redis.URL)
}

func TestLoad_FromEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	content := "CONVERSION_DEMO_MODE=false\n" +
		"BACKEND_API_BASE=http://backend.test\n" +
		"BACKEND_WEBHOOK_SECRET=supersecret\n" +
		"RATE_PROVIDER_QUOTE_API_URL=http://fx.test\n" +
		"RATE_PROVIDER_QUOTE_BURST_SIZE=3\n" +
		"PREVIEW_DEBOUNCE=250ms\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	// godotenv never overrides variables already present.
	for _, key := range []string{
		"CONVERSION_DEMO_MODE", "BACKEND_API_BASE", "BACKEND_WEBHOOK_SECRET",
		"RATE_PROVIDER_QUOTE_API_URL", "RATE_PROVIDER_QUOTE_BURST_SIZE", "PREVIEW_DEBOUNCE",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Load(envFile)
	require.NoError(t, err)

	assert.False(t, cfg.Conversion.DemoMode)
	assert.Equal(t, "http://backend.test", cfg.Backend.ApiBase)
	assert.Equal(t, "supersecret", cfg.Backend.WebhookSecret)
	assert.Equal(t, "http://fx.test", cfg.RateProviders.Quote.ApiUrl)
	assert.Equal(t, 3, cfg.RateProviders.Quote.BurstSize)
	assert.Equal(t, 250*time.Millisecond, cfg.Preview.Debounce)
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("PREVIEW_DEBOUNCE", "soon")
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestFindEnvTest(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "find.env"), []byte("X=1\n"), 0o600))
	t.Chdir(nested)

	found, err := FindEnvTest("find.env")
	require.NoError(t, err)
	assert.Equal(t, "find.env", filepath.Base(found))

	_, err = FindEnvTest("nope.env")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMaskValue(t *testing.T) {
	assert.Equal(t, "****", maskValue(""))
	assert.Equal(t, "****", maskValue("abc"))
	assert.Equal(t, "su****cret", maskValue("supersecret"))
}

func TestServerAddr(t *testing.T) {
	s := &Server{Scheme: "http", Host: "localhost", Port: 3000}
	assert.Equal(t, "localhost:3000", s.Addr())
	assert.Equal(t, "http://localhost:3000", s.BaseURL())
}

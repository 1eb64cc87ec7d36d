package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/online_cafe/internal/config"
	"github.com/Skotchmaster/online_cafe/internal/logging"
	"github.com/Skotchmaster/online_cafe/internal/service"
)

func testConfig() config.Config {
	p := service.DefaultVerificationPolicy()
	return config.Config{
		DatabaseURL:                ":memory:",
		LogLevel:                   "error",
		JWTAccessSecret:            []byte("jwt"),
		JWTRefreshSecret:           []byte("refresh"),
		RegistrationSecret:         []byte("registration"),
		VerificationCodeTTL:        p.CodeTTL,
		VerificationMaxAttempts:    p.MaxAttempts,
		VerificationResendInterval: p.ResendInterval,
	}
}

func newApp(t *testing.T, cfg config.Config) *App {
	t.Helper()
	a, err := New(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestNew_ServesHealth(t *testing.T) {
	a := newApp(t, testConfig())

	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNew_CSRFEnabled(t *testing.T) {
	cfg := testConfig()
	cfg.CSRFEnabled = true
	a := newApp(t, cfg)

	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-CSRF-Token"))

	rec = httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/cart/clear", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestNew_BadDatabase(t *testing.T) {
	cfg := testConfig()
	cfg.DatabaseURL = ""

	_, err := New(context.Background(), cfg, logging.Discard())
	assert.Error(t, err)
}

func TestClose_Idempotent(t *testing.T) {
	a := newApp(t, testConfig())
	require.NoError(t, a.Close())
	assert.NoError(t, a.Close())
}

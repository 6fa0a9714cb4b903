package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "file:config_test?mode=memory")
	t.Setenv("JWT_SECRET", testSecret)
}

func TestFromEnvDefaults(t *testing.T) {
	setRequired(t)

	conf, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "3000", conf.Port)
	assert.Equal(t, "0.0.1", conf.Version)
	assert.Equal(t, "http://localhost:3000", conf.AppURL)
	assert.Equal(t, "info", conf.LogLevel)
	assert.Equal(t, 24*time.Hour, conf.PendingUploadTTL)
	assert.True(t, conf.ServiceRoleEnabled)
	assert.False(t, conf.SecureCookies)
	assert.Equal(t, testSecret, conf.StorageSigningSecret)
}

func TestFromEnvMissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	_, err := FromEnv()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "DATABASE_URL"))
	assert.True(t, strings.Contains(err.Error(), "JWT_SECRET"))
}

func TestFromEnvRejectsShortSecret(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_SECRET", "short")

	_, err := FromEnv()
	assert.Error(t, err)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"app url", "APP_URL", "not a url"},
		{"log level", "LOG_LEVEL", "verbose"},
		{"admin without password", "ADMIN_EMAIL", "admin@example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.value)

			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestFromEnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_URL", "https://cursos.example.com/")
	t.Setenv("PENDING_UPLOAD_TTL", "2h")
	t.Setenv("SERVICE_ROLE_ENABLED", "false")
	t.Setenv("STORAGE_SIGNING_SECRET", "another-secret")

	conf, err := FromEnv()
	require.NoError(t, err)

	assert.True(t, conf.IsProduction())
	assert.True(t, conf.SecureCookies)
	assert.Equal(t, "https://cursos.example.com", conf.AppURL)
	assert.Equal(t, 2*time.Hour, conf.PendingUploadTTL)
	assert.False(t, conf.ServiceRoleEnabled)
	assert.Equal(t, "another-secret", conf.StorageSigningSecret)
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"SERVER_PORT", "DB_DRIVER", "JWT_EXPIRES_IN", "BCRYPT_COST", "CORS_ORIGINS", "FRONTEND_URL", "AMQP_URL", "SMTP_HOST"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.False(t, cfg.MailConfigured())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("JWT_EXPIRES_IN", "2h")
	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_FROM", "noreply@example.com")

	cfg := Load()

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.True(t, cfg.MailConfigured())
}

func TestLoad_IgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("BCRYPT_COST", "twelve")
	t.Setenv("JWT_EXPIRES_IN", "one day")

	cfg := Load()

	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiresIn)
}

func validConfig() *Config {
	return &Config{
		AppEnv:        "production",
		ServerPort:    "8080",
		DBDriver:      "postgres",
		DatabaseDSN:   "postgres://localhost/findash",
		JWTSecret:     "s3cret",
		JWTExpiresIn:  time.Hour,
		BcryptCost:    12,
		FrontendURL:   "https://app.example.com",
		AuthRateLimit: 5,
		AMQPExchange:  "findash",
		AMQPQueue:     "password_reset_mail",
		LogFormat:     "json",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.ServerPort = "http" }, "invalid port"},
		{"port out of range", func(c *Config) { c.ServerPort = "70000" }, "between 1 and 65535"},
		{"bad driver", func(c *Config) { c.DBDriver = "mongo" }, "invalid DB_DRIVER"},
		{"default secret in production", func(c *Config) { c.JWTSecret = defaultJWTSecret }, "JWT_SECRET must be set"},
		{"bcrypt cost", func(c *Config) { c.BcryptCost = 2 }, "invalid BCRYPT_COST"},
		{"smtp without from", func(c *Config) { c.SMTPHost = "smtp.example.com" }, "SMTP_FROM is required"},
		{"amqp scheme", func(c *Config) { c.AMQPURL = "http://rabbit:5672" }, "invalid AMQP URL scheme"},
		{"log format", func(c *Config) { c.LogFormat = "xml" }, "invalid LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := validConfig()
	cfg.ServerPort = "0"
	cfg.DBDriver = ""
	cfg.LogFormat = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "between 1 and 65535")
	assert.Contains(t, err.Error(), "invalid DB_DRIVER")
	assert.Contains(t, err.Error(), "invalid LOG_FORMAT")
}

func TestValidate_DevelopmentAllowsDefaultSecret(t *testing.T) {
	cfg := validConfig()
	cfg.AppEnv = "development"
	cfg.JWTSecret = defaultJWTSecret

	assert.NoError(t, cfg.Validate())
}

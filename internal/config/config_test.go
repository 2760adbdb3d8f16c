package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("CART_TTL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "session_id", cfg.Session.CookieName)
	assert.Equal(t, 24*time.Hour, cfg.Session.CartTTL)
	assert.Equal(t, "localhost:6379", cfg.GetRedisAddr())
	assert.False(t, cfg.EmailEnabled())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("CART_TTL", "2h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "shop")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 2*time.Hour, cfg.Session.CartTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Security.CORSAllowedOrigins)
	assert.True(t, cfg.EmailEnabled())
	assert.Contains(t, cfg.GetDatabaseDSN(), "host=db")
	assert.Contains(t, cfg.GetDatabaseDSN(), "dbname=shop")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: "8080"},
			Database: DatabaseConfig{Host: "localhost", Name: "db", User: "u"},
			Redis:    RedisConfig{Host: "localhost"},
			JWT:      JWTConfig{Secret: "0123456789abcdef0123456789abcdef"},
			Session:  SessionConfig{CartTTL: time.Hour},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "short secret", mutate: func(c *Config) { c.JWT.Secret = "short" }, wantErr: "JWT_SECRET"},
		{name: "missing db host", mutate: func(c *Config) { c.Database.Host = "" }, wantErr: "DB_HOST"},
		{name: "missing redis host", mutate: func(c *Config) { c.Redis.Host = "" }, wantErr: "REDIS_HOST"},
		{name: "zero cart ttl", mutate: func(c *Config) { c.Session.CartTTL = 0 }, wantErr: "CART_TTL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

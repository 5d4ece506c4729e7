package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 72*time.Hour, cfg.TokenExpiry)
	assert.Equal(t, "memory", cfg.StoreDriver)
	assert.Equal(t, "local", cfg.AuthProvider)
	assert.Equal(t, "@hourly", cfg.SweepSchedule)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, "beer_rating", cfg.Redis.Namespace)
	assert.Equal(t, "records", cfg.Mongo.Collection)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORE_DRIVER", "redis")
	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("POSTGRES_MAX_CONNS", "16")
	t.Setenv("SMTP_HOST", "smtp.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.StoreDriver)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, int32(16), cfg.Postgres.MaxConns)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "smtp.example.com", cfg.SMTP.Host)
	assert.Equal(t, "587", cfg.SMTP.Port)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
	}{
		{"local auth needs secret", map[string]string{"JWT_SECRET": ""}, true},
		{"firebase auth without secret", map[string]string{"JWT_SECRET": "", "AUTH_PROVIDER": "firebase"}, false},
		{"unknown driver", map[string]string{"JWT_SECRET": "s", "STORE_DRIVER": "cassandra"}, true},
		{"firebase store needs url", map[string]string{"JWT_SECRET": "s", "STORE_DRIVER": "firebase"}, true},
		{"firebase store with url", map[string]string{
			"JWT_SECRET":            "s",
			"STORE_DRIVER":          "firebase",
			"FIREBASE_DATABASE_URL": "https://beer.firebaseio.com",
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 10*time.Minute, cfg.Redis.ConfigTTL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "en", cfg.Export.DefaultLanguage)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , https://b.example,")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "3306", cfg.Database.Port)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Contains(t, cfg.Database.DSN(), "tcp(localhost:3306)")
}

func TestFromEnvErrors(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad ttl", "JWT_TTL", "forever"},
		{"bad redis db", "REDIS_DB", "zero"},
		{"bad driver", "DB_DRIVER", "oracle"},
		{"bad storage", "STORAGE_TYPE", "s3"},
		{"gcs without bucket", "STORAGE_TYPE", "gcs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestProductionRequiresSecret(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	_, err := FromEnv()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "s3cret")
	_, err = FromEnv()
	assert.NoError(t, err)
}

func TestPostgresSocketDSN(t *testing.T) {
	d := DatabaseConfig{Driver: "postgres", Host: "/cloudsql/project:region:db", User: "u", Password: "p", DBName: "n"}
	assert.Equal(t, "host=/cloudsql/project:region:db user=u password=p dbname=n sslmode=disable", d.DSN())
}

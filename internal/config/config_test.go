package config

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapSource map[string]string

func (m mapSource) GetSecretOrEnv(_ context.Context, secretName, _ string) (string, error) {
	if v, ok := m[secretName]; ok {
		return v, nil
	}
	return "", errors.New("not found")
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "allow_all", cfg.Auth.TransitionPolicy)
	assert.Equal(t, "0 */5 * * * *", cfg.Jobs.ResyncSchedule)
	assert.Equal(t, 90, cfg.Sync.PingInterval)
	assert.Contains(t, cfg.RateLimit.WhitelistPaths, "/health")
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("USE_FIXTURES", "true")
	t.Setenv("DEV_BYPASS_AUTH", "true")
	t.Setenv("JWT_SECRET", "shared")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.True(t, cfg.Data.UseFixtures)
	assert.True(t, cfg.Auth.DevBypass)
	assert.Equal(t, "shared", cfg.Auth.JWTSecret)
}

func TestConnectionString(t *testing.T) {
	pg := DatabaseConfig{Driver: DriverPostgres, Host: "db", Port: 5432, User: "u", Password: "p", Name: "facility", SSLMode: "require"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=facility sslmode=require", pg.ConnectionString())

	lite := DatabaseConfig{Driver: DriverSQLite, Path: "/tmp/facility.db"}
	assert.Equal(t, "/tmp/facility.db", lite.ConnectionString())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			App:      AppConfig{Environment: "development"},
			Database: DatabaseConfig{Driver: DriverPostgres},
			Auth:     AuthConfig{JWTSecret: "secret"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, true},
		{"unknown driver ignored with fixtures", func(c *Config) { c.Database.Driver = "mysql"; c.Data.UseFixtures = true }, false},
		{"sqlite without path", func(c *Config) { c.Database.Driver = DriverSQLite }, true},
		{"missing jwt secret", func(c *Config) { c.Auth.JWTSecret = "" }, true},
		{"dev bypass without secret", func(c *Config) { c.Auth.JWTSecret = ""; c.Auth.DevBypass = true }, false},
		{"dev bypass in production", func(c *Config) { c.Auth.DevBypass = true; c.App.Environment = "production" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestApplySecrets(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Host: "localhost", Password: "local"}}
	src := mapSource{
		"POSTGRES-FACILITY-HOST":     "prod-db",
		"POSTGRES-FACILITY-PASSWORD": "vaulted",
		"facility-jwt-secret":        "signing-key",
	}

	require.NoError(t, applySecrets(context.Background(), cfg, src))
	assert.Equal(t, "prod-db", cfg.Database.Host)
	assert.Equal(t, "vaulted", cfg.Database.Password)
	assert.Equal(t, "signing-key", cfg.Auth.JWTSecret)

	err := applySecrets(context.Background(), &Config{}, mapSource{})
	assert.Error(t, err)
}

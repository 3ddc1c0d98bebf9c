package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/driftportal/facility-api/internal/secrets"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Data      DataConfig
	Auth      AuthConfig
	Sync      SyncConfig
	Secrets   SecretsConfig
	Logging   LoggingConfig
	Server    ServerConfig
	CORS      CORSConfig
	Security  SecurityConfig
	RateLimit RateLimitConfig
	Jobs      JobsConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int
}

// DatabaseConfig selects and tunes the hosted backend connection.
// Driver is "postgres" or "sqlite"; for sqlite only Path is used.
type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
}

// DataConfig controls where entity data comes from
type DataConfig struct {
	// UseFixtures serves the in-memory demo dataset instead of the database
	UseFixtures bool
}

type AuthConfig struct {
	// DevBypass skips authentication and injects a fixture admin session
	DevBypass bool
	JWTSecret string
	Issuer    string
	Audience  string
	// TransitionPolicy names the Kanban policy: "allow_all" or "forward_only"
	TransitionPolicy string
}

// SyncConfig tunes the PostgreSQL notification listener
type SyncConfig struct {
	Enabled              bool
	MinReconnectInterval int
	MaxReconnectInterval int
	PingInterval         int
}

type SecretsConfig struct {
	// Source determines where secrets are loaded from: "environment", "vault", or "auto"
	Source       string
	KeyVaultName string
	CacheEnabled bool
	CacheTTL     int // seconds
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int
	EnableSwagger  bool
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// SecurityConfig holds security header configuration
type SecurityConfig struct {
	EnableHSTS            bool
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	HSTSPreload           bool
	ContentSecurityPolicy string
	// FrameOptions sets the X-Frame-Options header (DENY, SAMEORIGIN, or empty to disable)
	FrameOptions       string
	ContentTypeNosniff bool
	ReferrerPolicy     string
	PermissionsPolicy  string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled bool
	// RequestsPerMinute applies per IP before authentication
	RequestsPerMinute int
	// RequestsPerMinuteAuth applies per user after authentication
	RequestsPerMinuteAuth int
	WhitelistIPs          []string
	WhitelistPaths        []string
}

// JobsConfig holds background job schedules (cron with seconds field)
type JobsConfig struct {
	ResyncEnabled  bool
	ResyncSchedule string
	ResyncTimeout  int
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// ConnectionString builds the DSN for the configured driver
func (d *DatabaseConfig) ConnectionString() string {
	if d.Driver == DriverSQLite {
		return d.Path
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

// ReadTimeoutDuration returns read timeout as duration
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns write timeout as duration
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// RequestTimeoutDuration returns request timeout as duration
func (s *ServerConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func (s *SyncConfig) MinReconnectDuration() time.Duration { return seconds(s.MinReconnectInterval) }
func (s *SyncConfig) MaxReconnectDuration() time.Duration { return seconds(s.MaxReconnectInterval) }
func (s *SyncConfig) PingDuration() time.Duration         { return seconds(s.PingInterval) }

// ResyncTimeoutDuration bounds one reconcile run
func (j *JobsConfig) ResyncTimeoutDuration() time.Duration {
	return seconds(j.ResyncTimeout)
}

// Validate rejects combinations the server cannot start with
func (c *Config) Validate() error {
	if !c.Data.UseFixtures {
		switch c.Database.Driver {
		case DriverPostgres, DriverSQLite:
		default:
			return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
		}
		if c.Database.Driver == DriverSQLite && c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the sqlite driver")
		}
	}
	if !c.Auth.DevBypass && c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwtSecret is required unless auth.devBypass is set")
	}
	if c.App.Environment == "production" && c.Auth.DevBypass {
		return fmt.Errorf("auth.devBypass is not allowed in production")
	}
	return nil
}

// Load loads configuration from file and environment variables.
// Use LoadWithSecrets for vault-backed secret resolution.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = v.GetString("JWT_SECRET")
	}
	if cfg.Secrets.KeyVaultName == "" {
		cfg.Secrets.KeyVaultName = v.GetString("AZURE_KEY_VAULT_NAME")
	}
	if v.GetBool("USE_FIXTURES") {
		cfg.Data.UseFixtures = true
	}
	if v.GetBool("DEV_BYPASS_AUTH") {
		cfg.Auth.DevBypass = true
	}

	return &cfg, nil
}

// LoadWithSecrets loads configuration and resolves the database password and
// JWT secret from the configured source. Key Vault is consulted only when
// USE_AZURE_KEY_VAULT=true and the environment is staging or production.
func LoadWithSecrets(ctx context.Context, logger *zap.Logger) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	useKeyVault := strings.ToLower(os.Getenv("USE_AZURE_KEY_VAULT")) == "true"
	isValidEnv := cfg.App.Environment == "staging" || cfg.App.Environment == "production"

	if !useKeyVault {
		logger.Info("USE_AZURE_KEY_VAULT not enabled, using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if !isValidEnv {
		logger.Warn("USE_AZURE_KEY_VAULT is enabled but environment is not staging or production, using environment variables",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if cfg.Secrets.KeyVaultName == "" {
		return nil, fmt.Errorf("AZURE_KEY_VAULT_NAME is required when USE_AZURE_KEY_VAULT=true")
	}

	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:       secrets.SourceVault,
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secrets provider: %w", err)
	}

	if err := applySecrets(ctx, cfg, provider); err != nil {
		return nil, err
	}

	logger.Info("Secrets loaded from vault",
		zap.String("key_vault_name", cfg.Secrets.KeyVaultName),
	)
	return cfg, nil
}

// applySecrets overlays vault values onto cfg. Explicit environment variables win.
func applySecrets(ctx context.Context, cfg *Config, src secrets.Source) error {
	if host := secrets.Lookup(ctx, src, "POSTGRES-FACILITY-HOST", "DATABASE_HOST"); host != "" {
		cfg.Database.Host = host
	}
	if user := secrets.Lookup(ctx, src, "POSTGRES-FACILITY-USER", "DATABASE_USER"); user != "" {
		cfg.Database.User = user
	}
	if password := secrets.Lookup(ctx, src, "POSTGRES-FACILITY-PASSWORD", "DATABASE_PASSWORD"); password != "" {
		cfg.Database.Password = password
	}
	if sslMode := os.Getenv("DATABASE_SSLMODE"); sslMode != "" {
		cfg.Database.SSLMode = sslMode
	}

	secret := secrets.Lookup(ctx, src, "facility-jwt-secret", "JWT_SECRET")
	if secret == "" && !cfg.Auth.DevBypass {
		return fmt.Errorf("failed to resolve JWT secret from vault")
	}
	if secret != "" {
		cfg.Auth.JWTSecret = secret
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "Facility API")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)

	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "facility")
	v.SetDefault("database.user", "facility_user")
	v.SetDefault("database.password", "facility_password")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.path", "facility.db")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", 300)

	v.SetDefault("data.useFixtures", false)

	v.SetDefault("auth.devBypass", false)
	v.SetDefault("auth.jwtSecret", "")
	v.SetDefault("auth.issuer", "")
	v.SetDefault("auth.audience", "")
	v.SetDefault("auth.transitionPolicy", "allow_all")

	v.SetDefault("sync.enabled", true)
	v.SetDefault("sync.minReconnectInterval", 2)
	v.SetDefault("sync.maxReconnectInterval", 60)
	v.SetDefault("sync.pingInterval", 90)

	v.SetDefault("secrets.source", "auto")
	v.SetDefault("secrets.keyVaultName", "")
	v.SetDefault("secrets.cacheEnabled", true)
	v.SetDefault("secrets.cacheTTL", 300)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("server.readTimeout", 30)
	// SSE streams stay open, so no write deadline by default
	v.SetDefault("server.writeTimeout", 0)
	v.SetDefault("server.requestTimeout", 60)
	v.SetDefault("server.enableSwagger", true)

	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"})
	v.SetDefault("cors.exposedHeaders", []string{"Location", "X-Request-ID"})
	v.SetDefault("cors.allowCredentials", true)
	v.SetDefault("cors.maxAge", 300)

	v.SetDefault("security.enableHSTS", false)
	v.SetDefault("security.hstsMaxAge", 31536000)
	v.SetDefault("security.hstsIncludeSubdomains", true)
	v.SetDefault("security.hstsPreload", false)
	v.SetDefault("security.contentSecurityPolicy", "default-src 'self'")
	v.SetDefault("security.frameOptions", "DENY")
	v.SetDefault("security.contentTypeNosniff", true)
	v.SetDefault("security.referrerPolicy", "strict-origin-when-cross-origin")
	v.SetDefault("security.permissionsPolicy", "geolocation=(), microphone=(), camera=()")

	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 60)
	v.SetDefault("rateLimit.requestsPerMinuteAuth", 240)
	v.SetDefault("rateLimit.whitelistIPs", []string{"127.0.0.1", "::1"})
	v.SetDefault("rateLimit.whitelistPaths", []string{"/health", "/health/ready"})

	v.SetDefault("jobs.resyncEnabled", true)
	// every five minutes, seconds field first
	v.SetDefault("jobs.resyncSchedule", "0 */5 * * * *")
	v.SetDefault("jobs.resyncTimeout", 30)
}

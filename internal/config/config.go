// Package config provides configuration management for Soundstake.
//
// Configuration is loaded from:
// 1. config.yaml file (optional)
// 2. Environment variables (standard names like DATABASE_URL, SERVER_PORT)
// 3. Default values
//
// Import Path: soundstake.io/soundstake/internal/config
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config is the root configuration structure.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
	River     RiverConfig     `mapstructure:"river"`
	Security  SecurityConfig  `mapstructure:"security"`
	Worker    WorkerConfig    `mapstructure:"worker"`
	ROI       ROIConfig       `mapstructure:"roi"`
	Unlock    UnlockConfig    `mapstructure:"unlock"`
	Payments  PaymentsConfig  `mapstructure:"payments"`
	Streaming StreamingConfig `mapstructure:"streaming"`
	Campaigns CampaignsConfig `mapstructure:"campaigns"`
	Payouts   PayoutsConfig   `mapstructure:"payouts"`
	Events    EventsConfig    `mapstructure:"events"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	AllowedOrigins        []string `mapstructure:"allowed_origins"`
	AllowCredentials      bool     `mapstructure:"allow_credentials"`
	UnsafeAllowAllOrigins bool     `mapstructure:"unsafe_allow_all_origins"`

	// ValidateOpenAPI enables request validation against the embedded contract.
	ValidateOpenAPI bool `mapstructure:"validate_openapi"`
}

// DatabaseConfig contains PostgreSQL connection settings.
// One pgxpool is shared by the repositories and River.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`

	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"sslmode"`

	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`

	AutoMigrate bool `mapstructure:"auto_migrate"`
}

// DSN returns the PostgreSQL connection string.
// Priority: DATABASE_URL > constructed from individual fields.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, sslmode,
	)
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// RiverConfig contains River Queue settings.
type RiverConfig struct {
	MaxWorkers                  int           `mapstructure:"max_workers"`
	CompletedJobRetentionPeriod time.Duration `mapstructure:"completed_job_retention_period"`
	NotificationRetention       time.Duration `mapstructure:"notification_retention"`
}

// SecurityConfig contains security-related settings.
// Missing secrets are generated on first boot.
type SecurityConfig struct {
	JWTSecret           string   `mapstructure:"jwt_secret"`
	JWTVerificationKeys []string `mapstructure:"jwt_verification_keys"`
	JWTIssuer           string   `mapstructure:"jwt_issuer"`
	WebhookSecret       string   `mapstructure:"webhook_secret"`
}

// WorkerConfig contains worker pool settings.
type WorkerConfig struct {
	GeneralPoolSize int `mapstructure:"general_pool_size"`
	LookupPoolSize  int `mapstructure:"lookup_pool_size"`
}

// ROIConfig points at an optional YAML file overriding the rate tables.
type ROIConfig struct {
	TablesFile string `mapstructure:"tables_file"`
}

// UnlockConfig contains milestone unlock protocol settings.
type UnlockConfig struct {
	MinFundingPercent  float64       `mapstructure:"min_funding_percent"`
	TransferStaleAfter time.Duration `mapstructure:"transfer_stale_after"`
	ReconcileInterval  time.Duration `mapstructure:"reconcile_interval"`
}

// PaymentsConfig selects and configures the payment gateway.
type PaymentsConfig struct {
	Driver          string        `mapstructure:"driver"` // http or mock
	BaseURL         string        `mapstructure:"base_url"`
	APIKey          string        `mapstructure:"api_key"`
	TransferTimeout time.Duration `mapstructure:"transfer_timeout"`
}

// StreamingConfig configures the streaming metrics provider.
type StreamingConfig struct {
	Driver        string        `mapstructure:"driver"` // http or mock
	BaseURL       string        `mapstructure:"base_url"`
	TokenURL      string        `mapstructure:"token_url"`
	ClientID      string        `mapstructure:"client_id"`
	ClientSecret  string        `mapstructure:"client_secret"`
	LookupTimeout time.Duration `mapstructure:"lookup_timeout"`
}

// CampaignsConfig contains campaign creation settings.
type CampaignsConfig struct {
	AutoActivate bool `mapstructure:"auto_activate"`
	// EntitledArtists is an allow-list; empty means every artist is entitled.
	EntitledArtists []string `mapstructure:"entitled_artists"`
}

// PayoutsConfig contains revenue fan-out settings.
type PayoutsConfig struct {
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	SweepAfter    time.Duration `mapstructure:"sweep_after"`
}

// EventsConfig configures optional domain event publishing.
type EventsConfig struct {
	NATSURL       string `mapstructure:"nats_url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

var (
	bootstrapLoggerOnce sync.Once
	bootstrapLogger     *zap.Logger
)

// Load reads configuration from file and environment variables.
// Environment variables use standard names without prefix (DATABASE_URL, SERVER_PORT, ...).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/soundstake")

	// database.max_conns -> DATABASE_MAX_CONNS
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.ensureSecrets(); err != nil {
		return nil, fmt.Errorf("ensure secrets: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// Validate checks for critical configuration errors.
func (c *Config) Validate() error {
	if len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("security.jwt_secret must be at least 32 characters")
	}
	if c.Unlock.MinFundingPercent <= 0 || c.Unlock.MinFundingPercent > 100 {
		return fmt.Errorf("unlock.min_funding_percent must be in (0, 100], got %v", c.Unlock.MinFundingPercent)
	}
	switch c.Payments.Driver {
	case "mock":
	case "http":
		if c.Payments.BaseURL == "" {
			return fmt.Errorf("payments.base_url is required for the http driver")
		}
	default:
		return fmt.Errorf("payments.driver must be http or mock, got %q", c.Payments.Driver)
	}
	switch c.Streaming.Driver {
	case "mock":
	case "http":
		if c.Streaming.BaseURL == "" {
			return fmt.Errorf("streaming.base_url is required for the http driver")
		}
	default:
		return fmt.Errorf("streaming.driver must be http or mock, got %q", c.Streaming.Driver)
	}
	if c.Payments.TransferTimeout <= 0 || c.Streaming.LookupTimeout <= 0 {
		return fmt.Errorf("external call timeouts must be positive")
	}
	return nil
}

func (c *Config) ensureSecrets() error {
	if c.Security.JWTSecret == "" {
		secret, err := generateSecureRandomHex(32)
		if err != nil {
			return fmt.Errorf("auto-generate jwt secret: %w", err)
		}
		c.Security.JWTSecret = secret
		logBootstrapWarn(
			"auto-generated jwt_secret; set SECURITY_JWT_SECRET env var for persistence",
			zap.Int("length", len(secret)),
		)
	}
	if c.Security.WebhookSecret == "" {
		secret, err := generateSecureRandomHex(32)
		if err != nil {
			return fmt.Errorf("auto-generate webhook secret: %w", err)
		}
		c.Security.WebhookSecret = secret
		logBootstrapWarn(
			"auto-generated webhook_secret; set SECURITY_WEBHOOK_SECRET env var for persistence",
			zap.Int("length", len(secret)),
		)
	}
	return nil
}

func logBootstrapWarn(msg string, fields ...zap.Field) {
	bootstrapLoggerOnce.Do(func() {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)

		l, err := cfg.Build()
		if err != nil {
			bootstrapLogger = zap.NewNop()
			return
		}
		bootstrapLogger = l
	})

	bootstrapLogger.Warn(msg, fields...)
}

// generateSecureRandomHex produces a hex-encoded string of n random bytes.
func generateSecureRandomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("crypto/rand: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.allow_credentials", true)
	v.SetDefault("server.unsafe_allow_all_origins", false)
	v.SetDefault("server.validate_openapi", true)

	// Database
	v.SetDefault("database.url", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "soundstake")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "soundstake")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 50)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "10m")
	v.SetDefault("database.auto_migrate", false)

	// Log
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// River
	v.SetDefault("river.max_workers", 10)
	v.SetDefault("river.completed_job_retention_period", "24h")
	v.SetDefault("river.notification_retention", "2160h")

	// Security. Secrets default to empty so AutomaticEnv can still fill them on Unmarshal.
	v.SetDefault("security.jwt_secret", "")
	v.SetDefault("security.webhook_secret", "")
	v.SetDefault("security.jwt_verification_keys", []string{})
	v.SetDefault("security.jwt_issuer", "soundstake")

	// Worker Pool
	v.SetDefault("worker.general_pool_size", 100)
	v.SetDefault("worker.lookup_pool_size", 32)

	// ROI
	v.SetDefault("roi.tables_file", "")

	// Unlock protocol
	v.SetDefault("unlock.min_funding_percent", 50)
	v.SetDefault("unlock.transfer_stale_after", "15m")
	v.SetDefault("unlock.reconcile_interval", "5m")

	// External collaborators
	v.SetDefault("payments.driver", "mock")
	v.SetDefault("payments.base_url", "")
	v.SetDefault("payments.api_key", "")
	v.SetDefault("payments.transfer_timeout", "10s")
	v.SetDefault("streaming.driver", "mock")
	v.SetDefault("streaming.base_url", "")
	v.SetDefault("streaming.token_url", "")
	v.SetDefault("streaming.client_id", "")
	v.SetDefault("streaming.client_secret", "")
	v.SetDefault("streaming.lookup_timeout", "5s")

	// Campaigns
	v.SetDefault("campaigns.auto_activate", false)
	v.SetDefault("campaigns.entitled_artists", []string{})

	// Payouts
	v.SetDefault("payouts.sweep_interval", "10m")
	v.SetDefault("payouts.sweep_after", "5m")

	// Events
	v.SetDefault("events.nats_url", "")
	v.SetDefault("events.subject_prefix", "soundstake")
}

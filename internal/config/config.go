// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTPrivateKey is the PEM-encoded private key (RSA or ECDSA) or path to file.
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	// JWTPublicKey is the PEM-encoded public key or path to file.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	// JWTIssuer is the iss claim (e.g. "rentcar-auth").
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the aud claim (e.g. "rentcar-api").
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// JWTAccessTTL is the session token lifetime (e.g. "1h").
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// TFACodeTTL is how long a two-factor challenge stays valid (e.g. "5m").
	TFACodeTTL string `mapstructure:"TFA_CODE_TTL"`
	// ResetCodeTTL is how long a forgot-password code stays valid (e.g. "15m").
	ResetCodeTTL string `mapstructure:"RESET_CODE_TTL"`
	// TokenSweepInterval is how often expired login tokens are deactivated (e.g. "5m").
	TokenSweepInterval string `mapstructure:"TOKEN_SWEEP_INTERVAL"`
	// MailRelayURL is the HTTP mail relay endpoint; empty disables outbound mail (dev only).
	MailRelayURL string `mapstructure:"MAIL_RELAY_URL"`
	// MailRelayAPIKey authenticates against the mail relay.
	MailRelayAPIKey string `mapstructure:"MAIL_RELAY_API_KEY"`
	// MailFrom is the From address on outbound mail.
	MailFrom string `mapstructure:"MAIL_FROM"`
	// AuthzPolicy is an optional Rego policy (inline or file path) overriding the built-in one.
	AuthzPolicy string `mapstructure:"AUTHZ_POLICY"`
	// CORSAllowedOrigins is a comma-separated origin allow-list; empty disables CORS headers.
	CORSAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// OTLPEndpoint enables OpenTelemetry export when set (e.g. http://localhost:4317).
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTLP_INSECURE"`

	// Telemetry (optional). When Kafka brokers are set, audit events are also emitted to Kafka.
	// TelemetryKafkaBrokers is a comma-separated list of Kafka broker addresses (e.g. "localhost:9092").
	TelemetryKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// TelemetryKafkaTopic is the Kafka topic for audit events (default rentcar-audit).
	TelemetryKafkaTopic string `mapstructure:"TELEMETRY_KAFKA_TOPIC"`

	// Worker-only: Loki URL for the audit worker to push events (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`
	// KafkaGroupID is the consumer group ID for the audit worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_ISSUER", "rentcar-auth")
	v.SetDefault("JWT_AUDIENCE", "rentcar-api")
	v.SetDefault("JWT_ACCESS_TTL", "1h")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("TFA_CODE_TTL", "5m")
	v.SetDefault("RESET_CODE_TTL", "15m")
	v.SetDefault("TOKEN_SWEEP_INTERVAL", "5m")
	v.SetDefault("MAIL_RELAY_URL", "")
	v.SetDefault("MAIL_FROM", "noreply@rentcar.local")
	v.SetDefault("AUTHZ_POLICY", "")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("OTLP_INSECURE", false)
	v.SetDefault("TELEMETRY_KAFKA_TOPIC", "rentcar-audit")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("KAFKA_GROUP_ID", "rentcar-audit-worker")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	if cfg.MailRelayURL == "" && cfg.Env == "production" {
		return nil, errors.New("config: MAIL_RELAY_URL must be set when APP_ENV=production")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	return &cfg, nil
}

// AccessTTL parses JWTAccessTTL as a time.Duration. Returns 1h if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTAccessTTL)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}

// TFATTL parses TFACodeTTL as a time.Duration. Returns 5m if unset or invalid.
func (c *Config) TFATTL() time.Duration {
	d, err := time.ParseDuration(c.TFACodeTTL)
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}

// ResetTTL parses ResetCodeTTL as a time.Duration. Returns 15m if unset or invalid.
func (c *Config) ResetTTL() time.Duration {
	d, err := time.ParseDuration(c.ResetCodeTTL)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}

// SweepInterval parses TokenSweepInterval as a time.Duration. Returns 5m if unset or invalid.
func (c *Config) SweepInterval() time.Duration {
	d, err := time.ParseDuration(c.TokenSweepInterval)
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}

// TelemetryKafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if Kafka emission is enabled (non-empty list) and to create the producer.
func (c *Config) TelemetryKafkaBrokersList() []string {
	return splitCSV(c.TelemetryKafkaBrokers)
}

// CORSOrigins returns the allowed origins from the comma-separated config.
func (c *Config) CORSOrigins() []string {
	return splitCSV(c.CORSAllowedOrigins)
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

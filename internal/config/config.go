// Package config loads and validates portal config from env, an optional .env file and command-line flags using Viper.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Verification modes.
const (
	VerificationStub = "stub"
	VerificationOTP  = "otp"
)

const envProduction = "production"

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the portal HTTP API listens on (e.g. :8081).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// GRPCAddr is the address the gRPC health server listens on (e.g. :8080).
	GRPCAddr string `mapstructure:"GRPC_ADDR"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// SessionTokenPrivateKey is the PEM-encoded private key (RSA or ECDSA) or a path to one. With
	// SessionTokenPublicKey empty as well, an ephemeral P-256 key is generated at startup.
	SessionTokenPrivateKey string `mapstructure:"SESSION_TOKEN_PRIVATE_KEY"`
	// SessionTokenPublicKey is the PEM-encoded public key or a path to one.
	SessionTokenPublicKey string `mapstructure:"SESSION_TOKEN_PUBLIC_KEY"`
	// SessionTokenIssuer is the iss claim of session tokens.
	SessionTokenIssuer string `mapstructure:"SESSION_TOKEN_ISSUER"`
	// SessionTokenTTL is the session token lifetime (e.g. "12h").
	SessionTokenTTL string `mapstructure:"SESSION_TOKEN_TTL"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`

	// MaxUploadBytes is the inclusive file size cap.
	MaxUploadBytes int64 `mapstructure:"MAX_UPLOAD_BYTES"`
	// UploadDelay is the simulated upload time before onboarding moves on (e.g. "2s").
	UploadDelay string `mapstructure:"UPLOAD_DELAY"`
	// ResendCooldown is the wait between two code sends on one channel (e.g. "60s").
	ResendCooldown string `mapstructure:"RESEND_COOLDOWN"`
	// VerificationMode is "stub" (any six digits pass) or "otp" (issued codes only).
	VerificationMode string `mapstructure:"VERIFICATION_MODE"`
	// OTPTTL is the lifetime of an issued code in otp mode.
	OTPTTL string `mapstructure:"OTP_TTL"`
	// OTPReturnToClient enables dev OTP mode: issued codes are readable at GET /dev/verification/{channel}.
	// Must not be true when Env is production.
	OTPReturnToClient bool `mapstructure:"OTP_RETURN_TO_CLIENT"`
	// SMSLocalAPIKey is the API key for SMS Local. Without it phone codes are only logged as sent.
	SMSLocalAPIKey string `mapstructure:"SMS_LOCAL_API_KEY"`
	// SMSLocalSender is the optional sender ID for SMS Local.
	SMSLocalSender string `mapstructure:"SMS_LOCAL_SENDER"`
	// SMSLocalBaseURL is the SMS Local API base URL.
	SMSLocalBaseURL string `mapstructure:"SMS_LOCAL_BASE_URL"`

	// ClearDocumentsOnLogout drops the document collection on logout instead of keeping it.
	ClearDocumentsOnLogout bool `mapstructure:"CLEAR_DOCUMENTS_ON_LOGOUT"`
	// SeedFile is an optional YAML file replacing the embedded seed documents.
	SeedFile string `mapstructure:"SEED_FILE"`
	// RoutePolicyFile is an optional Rego file replacing the built-in route policy.
	RoutePolicyFile string `mapstructure:"ROUTE_POLICY_FILE"`
	// AuditCapacity bounds the in-memory audit log.
	AuditCapacity int `mapstructure:"AUDIT_CAPACITY"`

	// OTLPEndpoint is the OpenTelemetry collector (host:port or URL). Empty disables export.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTLPInsecure forces a plaintext connection to the collector.
	OTLPInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	// ServiceName is the OpenTelemetry service.name.
	ServiceName string `mapstructure:"OTEL_SERVICE_NAME"`
}

var defaults = map[string]interface{}{
	"HTTP_ADDR":                   ":8081",
	"GRPC_ADDR":                   ":8080",
	"APP_ENV":                     "",
	"SESSION_TOKEN_PRIVATE_KEY":   "",
	"SESSION_TOKEN_PUBLIC_KEY":    "",
	"SESSION_TOKEN_ISSUER":        "docverify-portal",
	"SESSION_TOKEN_TTL":           "12h",
	"BCRYPT_COST":                 12,
	"MAX_UPLOAD_BYTES":            5 * 1024 * 1024,
	"UPLOAD_DELAY":                "2s",
	"RESEND_COOLDOWN":             "60s",
	"VERIFICATION_MODE":           VerificationStub,
	"OTP_TTL":                     "5m",
	"OTP_RETURN_TO_CLIENT":        false,
	"SMS_LOCAL_API_KEY":           "",
	"SMS_LOCAL_SENDER":            "",
	"SMS_LOCAL_BASE_URL":          "https://www.smslocal.com/dev/bulkV2",
	"CLEAR_DOCUMENTS_ON_LOGOUT":   false,
	"SEED_FILE":                   "",
	"ROUTE_POLICY_FILE":           "",
	"AUDIT_CAPACITY":              1000,
	"OTEL_EXPORTER_OTLP_ENDPOINT": "",
	"OTEL_EXPORTER_OTLP_INSECURE": false,
	"OTEL_SERVICE_NAME":           "docverify-portal",
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env.
func Load() (*Config, error) {
	return load(viper.New(), ".env")
}

// LoadArgs is Load with command-line overrides: --http-addr and --grpc-addr take
// precedence over the environment, and --env-file selects the .env file.
func LoadArgs(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("docverify-portal", pflag.ContinueOnError)
	fs.String("http-addr", "", "HTTP API listen address (overrides HTTP_ADDR)")
	fs.String("grpc-addr", "", "gRPC health listen address (overrides GRPC_ADDR)")
	envFile := fs.String("env-file", ".env", "optional env file")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	v := viper.New()
	if err := v.BindPFlag("HTTP_ADDR", fs.Lookup("http-addr")); err != nil {
		return nil, err
	}
	if err := v.BindPFlag("GRPC_ADDR", fs.Lookup("grpc-addr")); err != nil {
		return nil, err
	}
	return load(v, *envFile)
}

func load(v *viper.Viper, envFile string) (*Config, error) {
	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		_ = v.ReadInConfig() // ignore a missing file
	}
	v.AutomaticEnv()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPAddr == "" {
		return errors.New("config: HTTP_ADDR must be set")
	}
	if c.GRPCAddr == "" {
		return errors.New("config: GRPC_ADDR must be set")
	}
	if c.OTPReturnToClient && c.Env == envProduction {
		return errors.New("config: OTP_RETURN_TO_CLIENT must not be true when APP_ENV=production")
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = 12
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return errors.New("config: BCRYPT_COST must be between 4 and 31")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("config: MAX_UPLOAD_BYTES must be positive")
	}
	switch c.VerificationMode {
	case VerificationStub, VerificationOTP:
	default:
		return fmt.Errorf("config: VERIFICATION_MODE must be %q or %q, got %q", VerificationStub, VerificationOTP, c.VerificationMode)
	}
	return nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == envProduction
}

// DevEndpoints reports whether the /dev routes are served: never in production,
// and otherwise only when OTP_RETURN_TO_CLIENT is set.
func (c *Config) DevEndpoints() bool {
	return c.OTPReturnToClient && !c.IsProduction()
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// TokenTTL parses SessionTokenTTL. Returns 12h if unset or invalid.
func (c *Config) TokenTTL() time.Duration {
	return parseDuration(c.SessionTokenTTL, 12*time.Hour)
}

// UploadDelayDuration parses UploadDelay. "0s" disables the delay; unset or invalid returns 2s.
func (c *Config) UploadDelayDuration() time.Duration {
	if d, err := time.ParseDuration(c.UploadDelay); err == nil && d == 0 {
		return 0
	}
	return parseDuration(c.UploadDelay, 2*time.Second)
}

// ResendCooldownDuration parses ResendCooldown. Returns 60s if unset or invalid.
func (c *Config) ResendCooldownDuration() time.Duration {
	return parseDuration(c.ResendCooldown, 60*time.Second)
}

// OTPTTLDuration parses OTPTTL. Returns 5m if unset or invalid.
func (c *Config) OTPTTLDuration() time.Duration {
	return parseDuration(c.OTPTTL, 5*time.Minute)
}

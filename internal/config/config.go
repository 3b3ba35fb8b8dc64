package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/cashflow/internal/common"
	"github.com/Veraticus/cashflow/internal/currency"
	"github.com/Veraticus/cashflow/internal/report"
	"github.com/Veraticus/cashflow/internal/service"
	"github.com/spf13/viper"
)

// Rate provider names accepted in currency.provider.
const (
	ProviderFrankfurter = "frankfurter"
	ProviderStatic      = "static"
)

// DefaultDatabasePath is where the ledger lives unless database.path says otherwise.
const DefaultDatabasePath = "$HOME/.local/share/cashflow/cashflow.db"

// DefaultCertDir holds the self-signed certificate for serve over TLS.
const DefaultCertDir = "$HOME/.config/cashflow/certs"

// Config is the typed view of every setting cashflow reads.
type Config struct {
	Logging  LoggingConfig
	Database DatabaseConfig
	Currency CurrencyConfig
	Server   ServerConfig
	Export   ExportConfig
}

// LoggingConfig controls the global slog logger.
type LoggingConfig struct {
	Level  string
	Format string
}

// DatabaseConfig locates the SQLite file.
type DatabaseConfig struct {
	Path string
}

// CurrencyConfig selects and tunes the rate provider.
type CurrencyConfig struct {
	StaticRates map[string]float64
	Provider    string
	BaseURL     string
	Default     string
	Timeout     time.Duration
	Retry       service.RetryOptions
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string
	CertDir        string
	AllowedOrigins []string
	TLS            bool
}

// ExportConfig holds report export defaults.
type ExportConfig struct {
	Format string
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("currency.provider", ProviderFrankfurter)
	v.SetDefault("currency.base_url", currency.DefaultFrankfurterURL)
	v.SetDefault("currency.timeout", 10*time.Second)
	v.SetDefault("currency.default", "INR")
	v.SetDefault("currency.retry.max_attempts", 3)
	v.SetDefault("currency.retry.initial_delay", 200*time.Millisecond)
	v.SetDefault("currency.retry.max_delay", 2*time.Second)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.tls", false)
	v.SetDefault("server.cert_dir", DefaultCertDir)
	v.SetDefault("export.format", "pdf")
}

// Load reads the configuration from v and validates it.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Logging: LoggingConfig{
			Level:  strings.ToLower(v.GetString("logging.level")),
			Format: strings.ToLower(v.GetString("logging.format")),
		},
		Database: DatabaseConfig{
			Path: ExpandPath(v.GetString("database.path")),
		},
		Currency: CurrencyConfig{
			Provider: strings.ToLower(v.GetString("currency.provider")),
			BaseURL:  strings.TrimRight(v.GetString("currency.base_url"), "/"),
			Default:  v.GetString("currency.default"),
			Timeout:  v.GetDuration("currency.timeout"),
			Retry: service.RetryOptions{
				MaxAttempts:  v.GetInt("currency.retry.max_attempts"),
				InitialDelay: v.GetDuration("currency.retry.initial_delay"),
				MaxDelay:     v.GetDuration("currency.retry.max_delay"),
				Multiplier:   2,
			},
		},
		Server: ServerConfig{
			Addr:           v.GetString("server.addr"),
			AllowedOrigins: v.GetStringSlice("server.allowed_origins"),
			TLS:            v.GetBool("server.tls"),
			CertDir:        ExpandPath(v.GetString("server.cert_dir")),
		},
		Export: ExportConfig{
			Format: strings.ToLower(v.GetString("export.format")),
		},
	}

	if v.IsSet("currency.static_rates") {
		if err := v.UnmarshalKey("currency.static_rates", &cfg.Currency.StaticRates); err != nil {
			return nil, fmt.Errorf("%w: currency.static_rates: %w", common.ErrInvalidConfig, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values cashflow cannot run with.
// It normalizes the default currency code in place.
func (c *Config) Validate() error {
	if _, err := common.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		return fmt.Errorf("%w: log format %q", common.ErrInvalidConfig, c.Logging.Format)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database.path", common.ErrMissingConfig)
	}

	switch c.Currency.Provider {
	case ProviderFrankfurter:
		if c.Currency.BaseURL == "" {
			return fmt.Errorf("%w: currency.base_url", common.ErrMissingConfig)
		}
	case ProviderStatic:
		if len(c.Currency.StaticRates) == 0 {
			return fmt.Errorf("%w: currency.static_rates is required for the static provider", common.ErrMissingConfig)
		}
		for code, rate := range c.Currency.StaticRates {
			if rate <= 0 {
				return fmt.Errorf("%w: static rate for %s must be positive", common.ErrInvalidConfig, strings.ToUpper(code))
			}
		}
	default:
		return fmt.Errorf("%w: unknown currency.provider %q", common.ErrInvalidConfig, c.Currency.Provider)
	}
	if c.Currency.Timeout <= 0 {
		return fmt.Errorf("%w: currency.timeout must be positive", common.ErrInvalidConfig)
	}

	code, err := currency.NormalizeCode(c.Currency.Default)
	if err != nil {
		return fmt.Errorf("%w: currency.default: %w", common.ErrInvalidConfig, err)
	}
	c.Currency.Default = code

	if _, err := report.New(c.Export.Format); err != nil {
		return fmt.Errorf("%w: export.format: %w", common.ErrInvalidConfig, err)
	}
	return nil
}

// NewProvider builds the rate provider the configuration selects.
func (c CurrencyConfig) NewProvider() service.RateProvider {
	if c.Provider == ProviderStatic {
		return currency.NewStaticProvider(c.StaticRates)
	}
	return currency.NewFrankfurterClient(c.BaseURL, c.Timeout, c.Retry)
}

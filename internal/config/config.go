package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pressroom/article-pager/internal/payment"
	"github.com/pressroom/article-pager/internal/storage"
)

const (
	defaultPort           = "8080"
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	Port                 string
	WordsPerLine         int
	LinesPerPage         int
	Tiers                []payment.Tier
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	RateLimitRPS         float64
	RateLimitBurst       int
}

// Settings returns the processor settings carried by this configuration.
func (c Config) Settings() storage.Settings {
	return storage.Settings{
		WordsPerLine: c.WordsPerLine,
		LinesPerPage: c.LinesPerPage,
		Tiers:        c.Tiers,
	}
}

// yamlConfig represents the YAML configuration file structure.
type yamlConfig struct {
	Port                 string        `yaml:"port"`
	WordsPerLine         int           `yaml:"words_per_line"`
	LinesPerPage         int           `yaml:"lines_per_page"`
	PaymentTiers         []yamlTier    `yaml:"payment_tiers"`
	ShutdownGracePeriod  string        `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string        `yaml:"read_header_timeout"`
	WriteTimeout         string        `yaml:"write_timeout"`
	IdleTimeout          string        `yaml:"idle_timeout"`
	EnableRequestLogging bool          `yaml:"enable_request_logging"`
	RateLimit            yamlRateLimit `yaml:"rate_limit"`
}

// yamlTier represents one payment tier in YAML. A missing "high" key means the
// tier has no upper bound.
type yamlTier struct {
	Low    int  `yaml:"low"`
	High   *int `yaml:"high"`
	Amount int  `yaml:"amount"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile     string
	Port           *string
	WordsPerLine   *int
	LinesPerPage   *int
	TiersStr       *string
	RateLimitRPS   *float64
	RateLimitBurst *int
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	// Load from YAML file if specified
	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		applyYAMLConfig(&cfg, yamlCfg)
	}

	// Apply environment variables (override YAML)
	applyEnvConfig(&cfg)

	// Apply CLI overrides (highest precedence)
	if overrides != nil {
		if err := applyCLIOverrides(&cfg, overrides); err != nil {
			return Config{}, err
		}
	}

	// Validate final configuration
	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	defaults := storage.DefaultSettings()
	return Config{
		Port:                 defaultPort,
		WordsPerLine:         defaults.WordsPerLine,
		LinesPerPage:         defaults.LinesPerPage,
		Tiers:                defaults.Tiers,
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) {
	if yamlCfg.Port != "" {
		cfg.Port = yamlCfg.Port
	}

	if yamlCfg.WordsPerLine > 0 {
		cfg.WordsPerLine = yamlCfg.WordsPerLine
	}

	if yamlCfg.LinesPerPage > 0 {
		cfg.LinesPerPage = yamlCfg.LinesPerPage
	}

	if len(yamlCfg.PaymentTiers) > 0 {
		tiers := make([]payment.Tier, 0, len(yamlCfg.PaymentTiers))
		for _, t := range yamlCfg.PaymentTiers {
			high := payment.Unbounded
			if t.High != nil {
				high = *t.High
			}
			tiers = append(tiers, payment.Tier{Low: t.Low, High: high, Amount: t.Amount})
		}
		if payment.ValidateTiers(tiers) == nil {
			cfg.Tiers = tiers
		}
	}

	if yamlCfg.ShutdownGracePeriod != "" {
		if d, err := time.ParseDuration(yamlCfg.ShutdownGracePeriod); err == nil {
			cfg.ShutdownGracePeriod = d
		}
	}

	if yamlCfg.ReadHeaderTimeout != "" {
		if d, err := time.ParseDuration(yamlCfg.ReadHeaderTimeout); err == nil {
			cfg.ReadHeaderTimeout = d
		}
	}

	if yamlCfg.WriteTimeout != "" {
		if d, err := time.ParseDuration(yamlCfg.WriteTimeout); err == nil {
			cfg.WriteTimeout = d
		}
	}

	if yamlCfg.IdleTimeout != "" {
		if d, err := time.ParseDuration(yamlCfg.IdleTimeout); err == nil {
			cfg.IdleTimeout = d
		}
	}

	cfg.EnableRequestLogging = yamlCfg.EnableRequestLogging

	if yamlCfg.RateLimit.RPS >= 0 {
		cfg.RateLimitRPS = yamlCfg.RateLimit.RPS
	}

	if yamlCfg.RateLimit.Burst >= 0 {
		cfg.RateLimitBurst = yamlCfg.RateLimit.Burst
	}
}

// applyEnvConfig applies environment variable configuration.
func applyEnvConfig(cfg *Config) {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Port = port
	}

	if raw := strings.TrimSpace(os.Getenv("WORDS_PER_LINE")); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.WordsPerLine = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("LINES_PER_PAGE")); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.LinesPerPage = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("PAYMENT_TIERS")); raw != "" {
		if tiers, err := payment.ParseTiers(raw); err == nil {
			cfg.Tiers = tiers
		}
	}

	if rps := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}

	if burst := strings.TrimSpace(os.Getenv("RATE_LIMIT_BURST")); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) error {
	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
	}

	if overrides.WordsPerLine != nil && *overrides.WordsPerLine > 0 {
		cfg.WordsPerLine = *overrides.WordsPerLine
	}

	if overrides.LinesPerPage != nil && *overrides.LinesPerPage > 0 {
		cfg.LinesPerPage = *overrides.LinesPerPage
	}

	if overrides.TiersStr != nil && *overrides.TiersStr != "" {
		tiers, err := payment.ParseTiers(*overrides.TiersStr)
		if err != nil {
			return fmt.Errorf("parse payment tiers: %w", err)
		}
		cfg.Tiers = tiers
	}

	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}

	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}

	return nil
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if cfg.WordsPerLine <= 0 {
		return fmt.Errorf("WORDS_PER_LINE must be > 0")
	}
	if cfg.LinesPerPage <= 0 {
		return fmt.Errorf("LINES_PER_PAGE must be > 0")
	}
	if err := payment.ValidateTiers(cfg.Tiers); err != nil {
		return err
	}
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 0")
	}
	return nil
}

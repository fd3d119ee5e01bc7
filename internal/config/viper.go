// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	CSV struct {
		Delimiter      string `mapstructure:"delimiter" yaml:"delimiter"`
		IncludeHeaders bool   `mapstructure:"include_headers" yaml:"include_headers"`
	} `mapstructure:"csv" yaml:"csv"`

	AI struct {
		Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
		Model          string `mapstructure:"model" yaml:"model"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		APIKey         string `mapstructure:"api_key" yaml:"-"` // Never serialize API key
	} `mapstructure:"ai" yaml:"ai"`

	Routing struct {
		AcceptThreshold   float64 `mapstructure:"accept_threshold" yaml:"accept_threshold"`
		EscalateThreshold float64 `mapstructure:"escalate_threshold" yaml:"escalate_threshold"`
	} `mapstructure:"routing" yaml:"routing"`

	Anomaly struct {
		ZScoreThreshold float64 `mapstructure:"z_score_threshold" yaml:"z_score_threshold"`
		IQRMultiplier   float64 `mapstructure:"iqr_multiplier" yaml:"iqr_multiplier"`
		TopN            int     `mapstructure:"top_n" yaml:"top_n"`
	} `mapstructure:"anomaly" yaml:"anomaly"`

	Recurring struct {
		MinOccurrences  int     `mapstructure:"min_occurrences" yaml:"min_occurrences"`
		MonthlyMinDays  int     `mapstructure:"monthly_min_days" yaml:"monthly_min_days"`
		MonthlyMaxDays  int     `mapstructure:"monthly_max_days" yaml:"monthly_max_days"`
		AmountTolerance float64 `mapstructure:"amount_tolerance" yaml:"amount_tolerance"`
	} `mapstructure:"recurring" yaml:"recurring"`

	Rules struct {
		File          string `mapstructure:"file" yaml:"file"`
		OverridesFile string `mapstructure:"overrides_file" yaml:"overrides_file"`
	} `mapstructure:"rules" yaml:"rules"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading:
// defaults, then an optional config file, then FINAGENT_* environment
// variables. Structurally invalid thresholds are rejected here, before any
// transaction is processed.
func InitializeConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.finance-agent")
	v.AddConfigPath(".finance-agent")
	v.AddConfigPath(".")

	v.SetEnvPrefix("FINAGENT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Log the error but don't fail - continue with defaults and env vars
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
	}

	// API key always comes from the unprefixed environment variable
	if err := v.BindEnv("ai.api_key", "GEMINI_API_KEY"); err != nil {
		fmt.Printf("Warning: failed to bind GEMINI_API_KEY environment variable: %v\n", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("csv.delimiter", ",")
	v.SetDefault("csv.include_headers", true)

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.timeout_seconds", 30)

	v.SetDefault("routing.accept_threshold", 0.75)
	v.SetDefault("routing.escalate_threshold", 0.40)

	v.SetDefault("anomaly.z_score_threshold", 2.5)
	v.SetDefault("anomaly.iqr_multiplier", 1.5)
	v.SetDefault("anomaly.top_n", 5)

	v.SetDefault("recurring.min_occurrences", 3)
	v.SetDefault("recurring.monthly_min_days", 25)
	v.SetDefault("recurring.monthly_max_days", 35)
	v.SetDefault("recurring.amount_tolerance", 0.15)

	v.SetDefault("rules.file", "")
	v.SetDefault("rules.overrides_file", "")
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if len(config.CSV.Delimiter) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", config.CSV.Delimiter)
	}

	if config.AI.Enabled {
		if config.AI.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY required when AI is enabled")
		}
		if config.AI.TimeoutSeconds < 1 || config.AI.TimeoutSeconds > 300 {
			return fmt.Errorf("ai.timeout_seconds must be between 1 and 300, got: %d", config.AI.TimeoutSeconds)
		}
	}

	if config.Routing.AcceptThreshold < 0.0 || config.Routing.AcceptThreshold > 1.0 {
		return fmt.Errorf("routing.accept_threshold must be between 0.0 and 1.0, got: %f", config.Routing.AcceptThreshold)
	}
	if config.Routing.EscalateThreshold < 0.0 || config.Routing.EscalateThreshold > 1.0 {
		return fmt.Errorf("routing.escalate_threshold must be between 0.0 and 1.0, got: %f", config.Routing.EscalateThreshold)
	}
	if config.Routing.EscalateThreshold > config.Routing.AcceptThreshold {
		return fmt.Errorf("routing.escalate_threshold (%f) must not exceed routing.accept_threshold (%f)",
			config.Routing.EscalateThreshold, config.Routing.AcceptThreshold)
	}

	if config.Anomaly.ZScoreThreshold <= 0 {
		return fmt.Errorf("anomaly.z_score_threshold must be positive, got: %f", config.Anomaly.ZScoreThreshold)
	}
	if config.Anomaly.IQRMultiplier <= 0 {
		return fmt.Errorf("anomaly.iqr_multiplier must be positive, got: %f", config.Anomaly.IQRMultiplier)
	}
	if config.Anomaly.TopN < 1 {
		return fmt.Errorf("anomaly.top_n must be at least 1, got: %d", config.Anomaly.TopN)
	}

	if config.Recurring.MinOccurrences < 2 {
		return fmt.Errorf("recurring.min_occurrences must be at least 2, got: %d", config.Recurring.MinOccurrences)
	}
	if config.Recurring.MonthlyMinDays < 1 || config.Recurring.MonthlyMaxDays < 1 {
		return fmt.Errorf("recurring cadence bounds must be positive, got: [%d, %d]",
			config.Recurring.MonthlyMinDays, config.Recurring.MonthlyMaxDays)
	}
	if config.Recurring.MonthlyMinDays > config.Recurring.MonthlyMaxDays {
		return fmt.Errorf("recurring.monthly_min_days (%d) must not exceed recurring.monthly_max_days (%d)",
			config.Recurring.MonthlyMinDays, config.Recurring.MonthlyMaxDays)
	}
	if config.Recurring.AmountTolerance <= 0.0 || config.Recurring.AmountTolerance >= 1.0 {
		return fmt.Errorf("recurring.amount_tolerance must be in (0, 1), got: %f", config.Recurring.AmountTolerance)
	}

	return nil
}

// ConfigureLoggingFromConfig configures logging based on the Config struct
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

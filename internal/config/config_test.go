package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultTestConfig() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(err)
	}
	return &cfg
}

func TestDefaultsAreValid(t *testing.T) {
	cfg := defaultTestConfig()

	require.NoError(t, validateConfig(cfg))
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, ",", cfg.CSV.Delimiter)
	assert.False(t, cfg.AI.Enabled)
	assert.Equal(t, 0.75, cfg.Routing.AcceptThreshold)
	assert.Equal(t, 0.40, cfg.Routing.EscalateThreshold)
	assert.Equal(t, 2.5, cfg.Anomaly.ZScoreThreshold)
	assert.Equal(t, 3, cfg.Recurring.MinOccurrences)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Log.Level = "shout" },
			wantErr: "invalid log level",
		},
		{
			name:    "invalid log format",
			mutate:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: "invalid log format",
		},
		{
			name:    "multi-character delimiter",
			mutate:  func(c *Config) { c.CSV.Delimiter = ";;" },
			wantErr: "delimiter must be a single character",
		},
		{
			name:    "AI enabled without key",
			mutate:  func(c *Config) { c.AI.Enabled = true },
			wantErr: "GEMINI_API_KEY required",
		},
		{
			name: "AI timeout out of range",
			mutate: func(c *Config) {
				c.AI.Enabled = true
				c.AI.APIKey = "key"
				c.AI.TimeoutSeconds = 0
			},
			wantErr: "timeout_seconds",
		},
		{
			name:    "accept threshold above one",
			mutate:  func(c *Config) { c.Routing.AcceptThreshold = 1.5 },
			wantErr: "accept_threshold",
		},
		{
			name: "escalate above accept",
			mutate: func(c *Config) {
				c.Routing.AcceptThreshold = 0.5
				c.Routing.EscalateThreshold = 0.6
			},
			wantErr: "must not exceed",
		},
		{
			name:    "non-positive z-score threshold",
			mutate:  func(c *Config) { c.Anomaly.ZScoreThreshold = 0 },
			wantErr: "z_score_threshold",
		},
		{
			name:    "non-positive IQR multiplier",
			mutate:  func(c *Config) { c.Anomaly.IQRMultiplier = -1 },
			wantErr: "iqr_multiplier",
		},
		{
			name:    "top_n below one",
			mutate:  func(c *Config) { c.Anomaly.TopN = 0 },
			wantErr: "top_n",
		},
		{
			name:    "min occurrences below two",
			mutate:  func(c *Config) { c.Recurring.MinOccurrences = 1 },
			wantErr: "min_occurrences",
		},
		{
			name: "inverted cadence bounds",
			mutate: func(c *Config) {
				c.Recurring.MonthlyMinDays = 40
				c.Recurring.MonthlyMaxDays = 35
			},
			wantErr: "monthly_min_days",
		},
		{
			name:    "amount tolerance out of range",
			mutate:  func(c *Config) { c.Recurring.AmountTolerance = 1.0 },
			wantErr: "amount_tolerance",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultTestConfig()
			tt.mutate(cfg)

			err := validateConfig(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestInitializeConfigEnvOverride(t *testing.T) {
	t.Setenv("FINAGENT_LOG_LEVEL", "debug")
	t.Setenv("FINAGENT_ROUTING_ACCEPT_THRESHOLD", "0.8")

	cfg, err := InitializeConfig()

	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 0.8, cfg.Routing.AcceptThreshold)
}

func TestInitializeConfigBindsGeminiKey(t *testing.T) {
	t.Setenv("FINAGENT_AI_ENABLED", "true")
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := InitializeConfig()

	require.NoError(t, err)
	assert.True(t, cfg.AI.Enabled)
	assert.Equal(t, "test-key", cfg.AI.APIKey)
}

func TestConfigureLoggingFromConfig(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.Log.Level = "warn"
	cfg.Log.Format = "json"

	logger := ConfigureLoggingFromConfig(cfg)

	assert.Equal(t, "warning", logger.GetLevel().String())
}

func TestGetEnvFallback(t *testing.T) {
	t.Setenv("FINAGENT_TEST_PRESENT", "value")

	assert.Equal(t, "value", GetEnv("FINAGENT_TEST_PRESENT", "fallback"))
	assert.Equal(t, "fallback", GetEnv("FINAGENT_TEST_ABSENT", "fallback"))
}

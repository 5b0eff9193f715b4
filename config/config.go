package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the research pipeline
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Planner   PlannerConfig   `mapstructure:"planner"`
	Email     EmailConfig     `mapstructure:"email"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug          bool          `mapstructure:"debug"`
	LogLevel       string        `mapstructure:"log_level"`
	DefaultTimeout time.Duration `mapstructure:"default_timeout"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// LLMConfig contains LLM provider configurations
type LLMConfig struct {
	Providers map[string]LLMProvider `mapstructure:"providers"`
	Routing   LLMRoutingConfig       `mapstructure:"routing"`
}

// LLMProvider represents a single LLM provider configuration
type LLMProvider struct {
	Type    string        `mapstructure:"type"` // openai, disabled
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LLMRoutingConfig defines which model each pipeline stage uses
type LLMRoutingConfig struct {
	Planning  string `mapstructure:"planning"`
	Search    string `mapstructure:"search"`
	Synthesis string `mapstructure:"synthesis"`
	Email     string `mapstructure:"email"`
	Fallback  string `mapstructure:"fallback"`
}

// Model returns the routed model for a stage, falling back to the
// configured fallback model when the route is empty.
func (r LLMRoutingConfig) Model(stage string) string {
	m := ""
	switch stage {
	case "planning":
		m = r.Planning
	case "search":
		m = r.Search
	case "synthesis":
		m = r.Synthesis
	case "email":
		m = r.Email
	}
	if m == "" {
		m = r.Fallback
	}
	return m
}

// PlannerConfig bounds the number of searches a plan may contain
type PlannerConfig struct {
	MinSearches int `mapstructure:"min_searches"`
	MaxSearches int `mapstructure:"max_searches"`
}

func (p PlannerConfig) Validate() error {
	if p.MinSearches < 1 {
		return fmt.Errorf("planner.min_searches must be >= 1")
	}
	if p.MaxSearches < p.MinSearches {
		return fmt.Errorf("planner.max_searches must be >= planner.min_searches")
	}
	return nil
}

// EmailConfig contains the simulated delivery settings
type EmailConfig struct {
	Recipient string `mapstructure:"recipient"`
	BodyLimit int    `mapstructure:"body_limit"`
}

// TelemetryConfig contains trace and metrics settings
type TelemetryConfig struct {
	Enabled      bool `mapstructure:"enabled"`
	PeriodicLogs bool `mapstructure:"periodic_logs"`
}

// LoadConfig reads configuration from the optional config file, the
// environment (DEEPRESEARCH_*) and built-in defaults, in that order of
// precedence.
func LoadConfig(path string) *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("general.debug", false)
	viper.SetDefault("general.log_level", "info")
	viper.SetDefault("general.default_timeout", 60*time.Second)
	viper.SetDefault("server.address", ":10040")
	viper.SetDefault("llm.routing.planning", "gpt-4o-mini")
	viper.SetDefault("llm.routing.search", "gpt-4o-mini")
	viper.SetDefault("llm.routing.synthesis", "gpt-4o-mini")
	viper.SetDefault("llm.routing.email", "gpt-4o-mini")
	viper.SetDefault("llm.routing.fallback", "gpt-4o-mini")
	viper.SetDefault("planner.min_searches", 1)
	viper.SetDefault("planner.max_searches", 6)
	viper.SetDefault("email.recipient", "research@example.com")
	viper.SetDefault("email.body_limit", 1000)
	viper.SetDefault("telemetry.enabled", true)
	viper.SetDefault("telemetry.periodic_logs", false)

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("DEEPRESEARCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Defaults plus env are a complete configuration; a missing
		// discovered file is fine, a malformed one is fatal.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	if err := config.Planner.Validate(); err != nil {
		panic(err)
	}

	return &config
}

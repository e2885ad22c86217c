package config

import (
	"time"
)

// Config is the root configuration for the travel advisor planning core.
type Config struct {
	Core      CoreConfig      `mapstructure:"core" yaml:"core" validate:"required"`
	LLM       LLMConfig       `mapstructure:"llm" yaml:"llm"`
	Tools     ToolsConfig     `mapstructure:"tools" yaml:"tools"`
	Knowledge KnowledgeConfig `mapstructure:"knowledge" yaml:"knowledge"`
	Session   SessionConfig   `mapstructure:"session" yaml:"session"`
	Planning  PlanningConfig  `mapstructure:"planning" yaml:"planning" validate:"required"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
}

// CoreConfig contains core application settings.
type CoreConfig struct {
	DataDir      string        `mapstructure:"data_dir" yaml:"data_dir"`
	FixturesDir  string        `mapstructure:"fixtures_dir" yaml:"fixtures_dir"`
	Deadline     time.Duration `mapstructure:"deadline" yaml:"deadline" validate:"min=1s"`
	BaseCurrency string        `mapstructure:"base_currency" yaml:"base_currency" validate:"len=3"`
	Debug        bool          `mapstructure:"debug" yaml:"debug"`
}

// LLMConfig contains LLM provider configuration.
type LLMConfig struct {
	Provider    string        `mapstructure:"provider" yaml:"provider"`
	Model       string        `mapstructure:"model" yaml:"model"`
	APIKey      string        `mapstructure:"api_key" yaml:"api_key,omitempty"`
	BaseURL     string        `mapstructure:"base_url" yaml:"base_url,omitempty"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"min=1s"`
	MaxRetries  int           `mapstructure:"max_retries" yaml:"max_retries" validate:"min=0,max=10"`
	Temperature float64       `mapstructure:"temperature" yaml:"temperature" validate:"min=0,max=2"`
}

// ToolsConfig contains tool dispatch settings shared by all adapters.
type ToolsConfig struct {
	// CallTimeout is the per-call timeout applied to every tool invocation.
	CallTimeout time.Duration `mapstructure:"call_timeout" yaml:"call_timeout" validate:"min=100ms"`

	// MaxRetries is the number of retries after a transient failure.
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries" validate:"min=0,max=5"`

	// MaxInFlight bounds concurrent tool calls within one orchestration run.
	MaxInFlight int `mapstructure:"max_in_flight" yaml:"max_in_flight" validate:"min=1,max=64"`

	// RatePerSecond limits dispatch rate across all tools; 0 disables limiting.
	RatePerSecond float64 `mapstructure:"rate_per_second" yaml:"rate_per_second" validate:"min=0"`
}

// KnowledgeConfig contains knowledge retrieval settings.
type KnowledgeConfig struct {
	DBPath string `mapstructure:"db_path" yaml:"db_path"`

	// SimilarityThreshold gates citation acceptance; passages scoring below
	// it are discarded rather than cited.
	SimilarityThreshold float64 `mapstructure:"similarity_threshold" yaml:"similarity_threshold" validate:"min=0,max=1"`

	TopK int `mapstructure:"top_k" yaml:"top_k" validate:"min=1,max=50"`
}

// SessionConfig contains conversation session store settings.
type SessionConfig struct {
	// Backend selects the store implementation: "memory" or "sqlite".
	Backend string `mapstructure:"backend" yaml:"backend" validate:"oneof=memory sqlite"`
	DBPath  string `mapstructure:"db_path" yaml:"db_path"`

	// TTL is how long an idle conversation thread is kept before expiry.
	TTL time.Duration `mapstructure:"ttl" yaml:"ttl" validate:"min=1m"`
}

// PlanningConfig contains orchestration and repair bounds.
type PlanningConfig struct {
	// DefaultTripDays is used when the request names no date range.
	DefaultTripDays int `mapstructure:"default_trip_days" yaml:"default_trip_days" validate:"min=1,max=30"`

	// MaxRepairRounds bounds the violation repair loop.
	MaxRepairRounds int `mapstructure:"max_repair_rounds" yaml:"max_repair_rounds" validate:"min=0,max=10"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"omitempty,oneof=text json"`
}

package config

import (
	"path/filepath"
	"time"
)

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	dataDir := ".advisor"

	return &Config{
		Core: CoreConfig{
			DataDir:      dataDir,
			FixturesDir:  "fixtures",
			Deadline:     2 * time.Minute,
			BaseCurrency: "USD",
			Debug:        false,
		},
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			Timeout:     30 * time.Second,
			MaxRetries:  2,
			Temperature: 0.2,
		},
		Tools: ToolsConfig{
			CallTimeout:   10 * time.Second,
			MaxRetries:    2,
			MaxInFlight:   6,
			RatePerSecond: 10,
		},
		Knowledge: KnowledgeConfig{
			DBPath:              filepath.Join(dataDir, "knowledge.db"),
			SimilarityThreshold: 0.35,
			TopK:                5,
		},
		Session: SessionConfig{
			Backend: "memory",
			DBPath:  filepath.Join(dataDir, "sessions.db"),
			TTL:     30 * time.Minute,
		},
		Planning: PlanningConfig{
			DefaultTripDays: 3,
			MaxRepairRounds: 3,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

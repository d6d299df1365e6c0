// Package config loads engine configuration from config.yaml with
// environment overrides.
package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        int          `yaml:"port"`
	DatabaseURL string       `yaml:"database_url"`
	LLM         LLMConfig    `yaml:"llm"`
	Recalc      RecalcConfig `yaml:"recalc"`
}

// LLMConfig configures the optional generation service. An empty APIKey
// disables the LLM strategy entirely.
type LLMConfig struct {
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

type RecalcConfig struct {
	Schedule string `yaml:"schedule"` // cron expression; empty disables
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:        8080,
		DatabaseURL: "file:leadengine.db?_pragma=foreign_keys(1)",
		LLM: LLMConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
			Timeout: 30 * time.Second,
		},
		Recalc: RecalcConfig{
			Schedule: "0 3 * * *",
		},
	}

	// Load from YAML if exists
	if data, err := os.ReadFile("config.yaml"); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	// Override from environment
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("RECALC_SCHEDULE"); v != "" {
		cfg.Recalc.Schedule = v
	}

	return cfg, nil
}

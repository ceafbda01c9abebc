// Package config provides configuration management for the csvql CLI.
package config

import "time"

// Default configuration values.
const (
	DefaultDatabase = "database.db"
	DefaultErrorLog = "error_log.txt"
	DefaultOutput   = "table"
)

// LLMConfig holds settings for the natural-language-to-SQL feature.
// The API key may also come from the OPENAI_API_KEY environment
// variable; its absence only matters when the feature is invoked.
type LLMConfig struct {
	APIKey         string  `koanf:"api_key"`
	BaseURL        string  `koanf:"base_url"`
	Model          string  `koanf:"model"`
	TimeoutSeconds int     `koanf:"timeout_seconds"`
	Temperature    float32 `koanf:"temperature"`
	MaxTokens      int     `koanf:"max_tokens"`
}

// Timeout returns the configured request timeout.
func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Config holds all CLI configuration options.
type Config struct {
	Database     string    `koanf:"database"`
	ErrorLog     string    `koanf:"error_log"`
	OutputFormat string    `koanf:"output"`
	Verbose      bool      `koanf:"verbose"`
	LLM          LLMConfig `koanf:"llm"`
}

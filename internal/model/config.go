package model

import "time"

// Config is the full application configuration. Defaults come from
// DefaultConfig; the CLI layers flags, PROSPECT_* env vars, and
// ~/.prospect/config.yaml on top.
type Config struct {
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	HTTP        HTTPConfig        `yaml:"http" mapstructure:"http"`
	Research    ResearchConfig    `yaml:"research" mapstructure:"research"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// LLMConfig configures the inference provider.
type LLMConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider"` // cerebras, openai
	Model       string  `yaml:"model" mapstructure:"model"`
	APIKey      string  `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL     string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout     int     `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float32 `yaml:"temperature" mapstructure:"temperature"`
}

// HTTPConfig configures the content fetcher.
type HTTPConfig struct {
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent         string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RespectRobots     bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
}

// ResearchConfig bounds the iteration loop.
type ResearchConfig struct {
	MaxIterations int           `yaml:"max_iterations" mapstructure:"max_iterations"`
	RetryBudget   int           `yaml:"retry_budget" mapstructure:"retry_budget"` // provider retries after the first attempt
	RetryBackoff  time.Duration `yaml:"retry_backoff" mapstructure:"retry_backoff"`
	PageTextLimit int           `yaml:"page_text_limit" mapstructure:"page_text_limit"` // bytes of page text kept per source for prompts
}

// CacheConfig configures the fetched-page cache.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig configures batch processing.
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// OutputConfig configures report output.
type OutputConfig struct {
	Dir     string `yaml:"dir" mapstructure:"dir"`
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		LLM: LLMConfig{
			Provider:    "cerebras",
			Model:       "llama-3.3-70b",
			Timeout:     60,
			MaxTokens:   4000,
			Temperature: 0.7,
		},
		HTTP: HTTPConfig{
			Timeout:           30 * time.Second,
			UserAgent:         "Prospect/0.1 (+https://github.com/mkarel/prospect)",
			MaxBodyBytes:      2_000_000,
			RespectRobots:     true,
			RequestsPerSecond: 1,
			Burst:             3,
		},
		Research: ResearchConfig{
			MaxIterations: 10,
			RetryBudget:   2,
			RetryBackoff:  2 * time.Second,
			PageTextLimit: 10 * 1024,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       "", // defaults to <output.dir>/cache
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 2,
		},
		Output: OutputConfig{
			Dir: "./prospect-output",
		},
	}
}

package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

// resetViper rebuilds the env overlay the way initConfig does, without
// touching the user's home config file.
func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.SetEnvPrefix("PROSPECT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	bindConfigDefaults()
}

func TestLoadConfigDefaults(t *testing.T) {
	resetViper(t)

	cfg := loadConfig()
	if cfg.LLM.Provider != "cerebras" {
		t.Fatalf("provider = %q, want cerebras", cfg.LLM.Provider)
	}
	if cfg.Research.MaxIterations != 10 {
		t.Fatalf("max iterations = %d, want 10", cfg.Research.MaxIterations)
	}
	if cfg.HTTP.Timeout != 30*time.Second {
		t.Fatalf("http timeout = %v, want 30s", cfg.HTTP.Timeout)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	resetViper(t)
	t.Setenv("PROSPECT_LLM_PROVIDER", "openai")
	t.Setenv("PROSPECT_LLM_MODEL", "gpt-4o-mini")
	t.Setenv("PROSPECT_RESEARCH_MAX_ITERATIONS", "4")
	t.Setenv("PROSPECT_HTTP_TIMEOUT", "45s")
	t.Setenv("PROSPECT_CACHE_ENABLED", "false")

	cfg := loadConfig()
	if cfg.LLM.Provider != "openai" || cfg.LLM.Model != "gpt-4o-mini" {
		t.Fatalf("llm config = %+v, want env overrides applied", cfg.LLM)
	}
	if cfg.Research.MaxIterations != 4 {
		t.Fatalf("max iterations = %d, want 4", cfg.Research.MaxIterations)
	}
	if cfg.HTTP.Timeout != 45*time.Second {
		t.Fatalf("http timeout = %v, want 45s", cfg.HTTP.Timeout)
	}
	if cfg.Cache.Enabled {
		t.Fatal("cache should be disabled via env")
	}
	// Untouched keys keep their defaults.
	if cfg.Research.RetryBudget != 2 {
		t.Fatalf("retry budget = %d, want default 2", cfg.Research.RetryBudget)
	}
}

func TestLoadConfigVerboseFlagWinsOverEnv(t *testing.T) {
	resetViper(t)
	if loadConfig().Output.Verbose {
		t.Fatal("verbose should default to false")
	}

	viper.Set("verbose", true)
	if !loadConfig().Output.Verbose {
		t.Fatal("bound verbose flag should enable verbose output")
	}
}

package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mkarel/prospect/internal/engine"
	"github.com/mkarel/prospect/internal/fetch"
	"github.com/mkarel/prospect/internal/llm"
	"github.com/mkarel/prospect/internal/model"
	"github.com/mkarel/prospect/internal/report"
	"github.com/mkarel/prospect/internal/research"
	"github.com/mkarel/prospect/internal/worker"
)

// resolveAPIKey fills the provider key from the environment when the config
// file does not carry one.
func resolveAPIKey(cfg *model.LLMConfig) error {
	if cfg.APIKey != "" {
		return nil
	}
	switch cfg.Provider {
	case "openai":
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	default: // cerebras and anything aliased to it
		cfg.APIKey = os.Getenv("CEREBRAS_API_KEY")
		if cfg.APIKey == "" {
			return fmt.Errorf("CEREBRAS_API_KEY environment variable not set")
		}
	}
	return nil
}

// buildOrchestrator assembles the research stack from configuration: one
// shared rate limiter, one fetcher with its page cache, one provider, one
// orchestrator. The same orchestrator serves every subject.
func buildOrchestrator(cfg model.Config, logger *zap.Logger) (*research.Orchestrator, error) {
	if err := resolveAPIKey(&cfg.LLM); err != nil {
		return nil, err
	}

	provider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		return nil, err
	}

	limiter := worker.NewLimiter(cfg.HTTP.RequestsPerSecond, cfg.HTTP.Burst)

	if cfg.Cache.Enabled && cfg.Cache.Dir == "" && cfg.Output.Dir != "" {
		cfg.Cache.Dir = filepath.Join(cfg.Output.Dir, "cache")
	}
	cache := fetch.NewPageCache(cfg.Cache)
	fetcher := fetch.NewHTTPFetcher(cfg.HTTP, cache, limiter, logger)

	eng := engine.New(provider, cfg.LLM, limiter, logger)

	var images *research.ImageStore
	if cfg.Output.Dir != "" {
		images, err = research.NewImageStore(cfg.Output.Dir, logger)
		if err != nil {
			return nil, err
		}
	}

	return research.New(eng, fetcher, images, research.Config{
		MaxIterations: cfg.Research.MaxIterations,
		RetryBudget:   cfg.Research.RetryBudget,
		RetryBackoff:  cfg.Research.RetryBackoff,
		PageTextLimit: cfg.Research.PageTextLimit,
	}, logger), nil
}

// writeRunOutputs writes the markdown dossier and JSON state dump for one
// finished run into the output directory.
func writeRunOutputs(res *research.RunResult, outputDir string) error {
	if outputDir == "" {
		return nil
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	base := subjectSlug(res.Subject)
	if err := os.WriteFile(filepath.Join(outputDir, base+".md"), []byte(report.Markdown(res)), 0o644); err != nil {
		return fmt.Errorf("write markdown report: %w", err)
	}
	data, err := report.JSON(res)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(outputDir, base+".json"), data, 0o644); err != nil {
		return fmt.Errorf("write json report: %w", err)
	}
	return nil
}

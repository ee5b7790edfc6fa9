package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mkarel/prospect/internal/report"
	"github.com/mkarel/prospect/internal/research"
	"github.com/mkarel/prospect/internal/worker"
)

var (
	concurrency  int
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file.csv>",
	Short: "Research multiple companies from a CSV file in parallel",
	Long: `Batch researches many companies concurrently:
- Read subjects from a CSV file (columns: Title, WebsiteURL, Address, Phone)
- Run each subject on a worker pool with its own store and citation ledger
- Share one per-domain rate limiter across all workers
- Write a markdown dossier and JSON dump per subject, plus a batch summary

One subject failing never stops the rest of the batch.

Example:
  prospect batch companies.csv
  prospect batch companies.csv --concurrency 4 --output-dir ./reports`,
	Args: cobra.ExactArgs(1),
	RunE: runBatchCmd,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default from config)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "", "output directory (default from config)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", time.Hour, "total timeout for the batch")
	batchCmd.Flags().IntVar(&maxIterations, "max-iterations", 0, "iteration budget per subject (default from config)")
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "inference provider (cerebras, openai)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "", "model name")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the page cache")
	batchCmd.Flags().BoolVar(&noRobots, "ignore-robots", false, "ignore robots.txt (not recommended)")
}

func runBatchCmd(cmd *cobra.Command, args []string) error {
	subjects, err := LoadSubjectsCSV(args[0])
	if err != nil {
		return err
	}

	cfg := loadConfig()
	applyResearchFlags(&cfg)
	if concurrency > 0 {
		cfg.Concurrency.Workers = concurrency
	}

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	orchestrator, err := buildOrchestrator(cfg, logger)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Researching %d subjects with %d workers\n",
		len(subjects), cfg.Concurrency.Workers)

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	startedAt := time.Now()
	processor := worker.NewBatchProcessor(orchestrator, cfg.Concurrency.Workers, logger)
	results := processor.Process(ctx, subjects)
	finishedAt := time.Now()

	var rows []report.SubjectSummary
	var runs []*research.RunResult
	var failures int
	for _, r := range results {
		runs = append(runs, r.Run)
		if r.Run != nil {
			if err := writeRunOutputs(r.Run, cfg.Output.Dir); err != nil {
				logger.Warn("report not written", zap.Error(err))
			}
			rows = append(rows, report.Summarize(r.Run, r.Err))
		} else {
			rows = append(rows, report.SubjectSummary{
				Name: r.Subject.DisplayName(), State: "aborted", Err: errText(r.Err),
			})
		}
		if r.Err != nil {
			failures++
		}
	}

	summary := report.BatchSummary(rows, startedAt, finishedAt)
	if cfg.Output.Dir != "" {
		if err := os.MkdirAll(cfg.Output.Dir, 0o755); err == nil {
			path := filepath.Join(cfg.Output.Dir, "batch_summary.md")
			if err := os.WriteFile(path, []byte(summary), 0o644); err != nil {
				logger.Warn("summary not written", zap.Error(err))
			}
			if data, err := json.MarshalIndent(rows, "", "  "); err == nil {
				jsonPath := filepath.Join(cfg.Output.Dir, "batch_summary.json")
				if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
					logger.Warn("summary not written", zap.Error(err))
				}
			}
			// Which actions the engine asked for that nobody implements yet.
			if missing := report.MergeMissingActions(runs); len(missing) > 0 {
				if data, err := json.MarshalIndent(missing, "", "  "); err == nil {
					missingPath := filepath.Join(cfg.Output.Dir, "missing_actions.json")
					if err := os.WriteFile(missingPath, data, 0o644); err != nil {
						logger.Warn("missing-action log not written", zap.Error(err))
					}
				}
			}
		}
	}
	fmt.Fprintln(os.Stderr)
	fmt.Fprint(os.Stderr, summary)

	if failures > 0 {
		return fmt.Errorf("%d of %d subjects failed", failures, len(results))
	}
	return nil
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

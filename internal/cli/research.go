package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkarel/prospect/internal/model"
	"github.com/mkarel/prospect/internal/research"
)

var (
	website       string
	address       string
	phone         string
	outputDir     string
	maxIterations int
	llmProvider   string
	llmModel      string
	noCache       bool
	noRobots      bool
	runTimeout    time.Duration
)

// researchCmd represents the research command
var researchCmd = &cobra.Command{
	Use:   "research <company name>",
	Short: "Research a single company",
	Long: `Research runs the iterative loop for one company:
- The inference provider analyzes what is known and decides what to do next
- Requested pages are fetched, respecting robots.txt and per-domain rate limits
- Saved facts are validated and assigned citation numbers
- Likely-person images are collected from explored pages
- The run stops on completion, an empty decision, or the iteration budget

Example:
  prospect research "Acme Robotics" --website https://acme.example
  prospect research "Acme Robotics" --max-iterations 5 --output-dir ./out`,
	Args: cobra.ExactArgs(1),
	RunE: runResearch,
}

func init() {
	rootCmd.AddCommand(researchCmd)

	researchCmd.Flags().StringVar(&website, "website", "", "company website URL")
	researchCmd.Flags().StringVar(&address, "address", "", "company address")
	researchCmd.Flags().StringVar(&phone, "phone", "", "company phone number")
	researchCmd.Flags().StringVar(&outputDir, "output-dir", "", "output directory (default from config)")
	researchCmd.Flags().IntVar(&maxIterations, "max-iterations", 0, "iteration budget (default from config)")
	researchCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "inference provider (cerebras, openai)")
	researchCmd.Flags().StringVar(&llmModel, "llm-model", "", "model name")
	researchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the page cache")
	researchCmd.Flags().BoolVar(&noRobots, "ignore-robots", false, "ignore robots.txt (not recommended)")
	researchCmd.Flags().DurationVar(&runTimeout, "timeout", 15*time.Minute, "overall run timeout")
}

// applyResearchFlags overlays command flags on the loaded config.
func applyResearchFlags(cfg *model.Config) {
	if outputDir != "" {
		cfg.Output.Dir = outputDir
	}
	if maxIterations > 0 {
		cfg.Research.MaxIterations = maxIterations
	}
	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if noRobots {
		cfg.HTTP.RespectRobots = false
	}
	cfg.Output.Verbose = cfg.Output.Verbose || verbose
}

func runResearch(cmd *cobra.Command, args []string) error {
	subject := model.Subject{
		Name:    args[0],
		Website: website,
		Address: address,
		Phone:   phone,
	}

	cfg := loadConfig()
	applyResearchFlags(&cfg)

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	orchestrator, err := buildOrchestrator(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	res, runErr := orchestrator.Research(ctx, subject)
	if res == nil {
		return runErr
	}

	if err := writeRunOutputs(res, cfg.Output.Dir); err != nil {
		return err
	}

	counts := res.Knowledge.Summary()
	fmt.Fprintf(os.Stderr, "\n%s: %s after %d iterations\n",
		subject.DisplayName(), res.State, len(res.Iterations))
	fmt.Fprintf(os.Stderr, "  contacts=%d pain_points=%d tech=%d news=%d images=%d sources=%d citations=%d\n",
		counts.Contacts, counts.PainPoints, counts.Tech, counts.News,
		counts.Images, counts.Explored, counts.Citations)
	if cfg.Output.Dir != "" {
		fmt.Fprintf(os.Stderr, "  reports in %s\n", cfg.Output.Dir)
	}

	if res.State == research.StateAborted {
		return fmt.Errorf("research aborted: %w", res.Err)
	}
	return nil
}

package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/disclose/internal/model"
	"github.com/ppiankov/disclose/internal/pipeline"
)

var (
	llmEnabled  bool
	llmProvider string
	llmModel    string
	llmBaseURL  string
	rankerName  string
	workers     int
	outMD       string
	outJSON     string
	runTimeout  time.Duration
	noCache     bool
	noColor     bool
)

// correlateCmd represents the correlate command
var correlateCmd = &cobra.Command{
	Use:   "correlate <requirements> <report>",
	Short: "Check which required metrics a report discloses",
	Long: `Correlate parses the requirement table, searches the report for a value
for every quantitative requirement and writes a Markdown report with the
metrics whose unit matches the standard and those that do not.

Sources may be local files (Markdown, text or HTML) or http(s) URLs.

Example:
  disclose correlate exigence.md rapport.md
  disclose correlate exigence.md rapport.md --out results.md --json results.json
  disclose correlate exigence.md rapport.md --llm --provider openai --model gpt-4o-mini
  LLM_ENDPOINT_URL=http://localhost:8000/v1 disclose correlate exigence.md rapport.md --llm`,
	Args: cobra.ExactArgs(2),
	RunE: runCorrelate,
}

func init() {
	rootCmd.AddCommand(correlateCmd)

	correlateCmd.Flags().StringVar(&outMD, "out", "correlation_results.md", "output Markdown path (empty to skip)")
	correlateCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	correlateCmd.Flags().DurationVar(&runTimeout, "timeout", 30*time.Minute, "overall run timeout")
	correlateCmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored console summary")
	addMatchFlags(correlateCmd)
}

// addMatchFlags registers the flags shared by correlate and batch
func addMatchFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&llmEnabled, "llm", false, "match with a language model, falling back to patterns if unavailable")
	cmd.Flags().StringVar(&llmProvider, "provider", "", "LLM provider (openai, anthropic, ollama)")
	cmd.Flags().StringVar(&llmModel, "model", "", "LLM model name")
	cmd.Flags().StringVar(&llmBaseURL, "base-url", "", "LLM endpoint URL (OpenAI-compatible servers, Ollama)")
	cmd.Flags().StringVar(&rankerName, "ranker", "", "pattern candidate ranking (first, proximity)")
	cmd.Flags().IntVar(&workers, "workers", 0, "requirements matched concurrently")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the LLM response cache")
}

// applyMatchFlags overrides cfg with the flags the user set
func applyMatchFlags(cmd *cobra.Command, cfg *model.Config) {
	flags := cmd.Flags()
	if flags.Changed("llm") {
		cfg.Match.UseModel = llmEnabled
	}
	if flags.Changed("provider") {
		cfg.LLM.Provider = llmProvider
	}
	if flags.Changed("model") {
		cfg.LLM.Model = llmModel
	}
	if flags.Changed("base-url") {
		cfg.LLM.BaseURL = llmBaseURL
	}
	if flags.Changed("ranker") {
		cfg.Match.Ranker = rankerName
	}
	if flags.Changed("workers") {
		cfg.Concurrency.Workers = workers
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
}

func runCorrelate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyMatchFlags(cmd, cfg)
	if noColor {
		cfg.Output.Color = false
	}

	logger := newLogger()
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	a, err := pipeline.NewAnalyzer(cfg, logger)
	if err != nil {
		return err
	}

	report, err := a.Run(ctx, args[0], args[1])
	if err != nil {
		return fmt.Errorf("correlation failed: %w", err)
	}

	renderer := pipeline.NewRenderer(cfg.Output)
	if outMD != "" {
		if err := renderer.RenderMarkdown(report, outMD); err != nil {
			return err
		}
		logger.WithField("path", outMD).Info("Wrote Markdown report")
	}
	if outJSON != "" {
		if err := renderer.RenderJSON(report, outJSON); err != nil {
			return err
		}
		logger.WithField("path", outJSON).Info("Wrote JSON report")
	}

	renderer.PrintSummary(os.Stdout, report, cfg.Output.Color)
	return nil
}

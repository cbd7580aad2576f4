package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/disclose/internal/model"
	"github.com/ppiankov/disclose/internal/pipeline"
)

var (
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <requirements> <reports-file>",
	Short: "Correlate one requirement table with many reports",
	Long: `Batch reads report sources (paths or URLs, one per line, # comments
allowed) and correlates each with the same requirement table, one report
after another. Each report gets its own Markdown and JSON output; a failing
report does not stop the batch.

Example:
  disclose batch exigence.md reports.txt
  disclose batch exigence.md reports.txt --workers 4 --output-dir ./results`,
	Args: cobra.ExactArgs(2),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./disclose-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", time.Hour, "total timeout for batch processing")
	addMatchFlags(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyMatchFlags(cmd, cfg)

	sources, err := readSources(args[1])
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	logger := newLogger()
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	a, err := pipeline.NewAnalyzer(cfg, logger)
	if err != nil {
		return err
	}

	reqs, err := a.LoadRequirements(ctx, args[0])
	if err != nil {
		return err
	}

	logger.WithField("reports", len(sources)).
		WithField("requirements", len(reqs)).
		Info("Starting batch")

	renderer := pipeline.NewRenderer(cfg.Output)
	failures := 0
	for i, source := range sources {
		entry := logger.WithField("report", source)

		report, err := a.RunRequirements(ctx, args[0], reqs, source)
		if err != nil {
			failures++
			entry.WithError(err).Error("Correlation failed")
			if ctx.Err() != nil {
				failures += len(sources) - i - 1
				break
			}
			continue
		}

		slug := fmt.Sprintf("%02d-%s", i+1, sanitizeFilename(source))
		if err := writeOutputs(renderer, report, filepath.Join(outputDir, slug)); err != nil {
			failures++
			entry.WithError(err).Error("Failed to write report")
			continue
		}

		entry.WithField("matching", report.Summary.Matching).
			WithField("total", report.Summary.Total).
			Info("Correlated")
	}

	logger.WithField("success", len(sources)-failures).
		WithField("failures", failures).
		WithField("output", outputDir).
		Info("Batch complete")

	if failures > 0 {
		return fmt.Errorf("%d of %d reports failed", failures, len(sources))
	}
	return nil
}

// writeOutputs writes stem.md and stem.json
func writeOutputs(r *pipeline.Renderer, report *model.Report, stem string) error {
	if err := r.RenderMarkdown(report, stem+".md"); err != nil {
		return err
	}
	return r.RenderJSON(report, stem+".json")
}

// readSources returns the non-empty, non-comment lines of path
func readSources(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reports file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var sources []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		sources = append(sources, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read reports file: %w", err)
	}
	return sources, nil
}

// sanitizeFilename turns a path or URL into a file name stem
func sanitizeFilename(s string) string {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "https://"), "http://")
	s = strings.TrimSuffix(s, filepath.Ext(s))

	s = strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
	).Replace(s)
	s = strings.Trim(s, "._-")

	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		s = "report"
	}
	return s
}

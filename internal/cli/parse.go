package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/disclose/internal/model"
	"github.com/ppiankov/disclose/internal/observe"
	"github.com/ppiankov/disclose/internal/pipeline"
	"github.com/ppiankov/disclose/internal/table"
)

var (
	parseJSON        bool
	parseYAML        bool
	parseLayout      string
	parseStopAtProse bool
)

// parseCmd represents the parse command
var parseCmd = &cobra.Command{
	Use:   "parse <file|url>",
	Short: "Recover the rows of a Markdown table",
	Long: `Parse recovers the header and rows of a Markdown table, including tables
collapsed onto a single line.

Example:
  disclose parse exigence.md
  disclose parse exigence.md --layout topic-block --yaml
  disclose parse https://example.com/report.html --json`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "print rows as JSON")
	parseCmd.Flags().BoolVar(&parseYAML, "yaml", false, "print rows as YAML")
	parseCmd.Flags().StringVar(&parseLayout, "layout", "", "single-line layout (chunked, topic-block, code-anchor)")
	parseCmd.Flags().BoolVar(&parseStopAtProse, "stop-at-prose", false, "end the table at the first prose line")
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("layout") {
		cfg.Table.Layout = parseLayout
	}
	if cmd.Flags().Changed("stop-at-prose") {
		cfg.Table.StopAtProse = parseStopAtProse
	}

	logger := newLogger()
	parser, err := table.NewParser(cfg.Table, table.WithObserver(observe.NewLogObserver(logger)))
	if err != nil {
		return fmt.Errorf("invalid table configuration: %w", err)
	}

	doc, err := pipeline.NewLoader(cfg.HTTP).Load(context.Background(), args[0])
	if err != nil {
		return err
	}

	t := parser.Parse(doc.Content)
	out := cmd.OutOrStdout()

	switch {
	case parseJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(t)
	case parseYAML:
		return yaml.NewEncoder(out).Encode(t)
	default:
		return writeTable(out, t)
	}
}

// writeTable prints t as a normalised Markdown table
func writeTable(w io.Writer, t model.Table) error {
	if t.Empty() {
		_, err := fmt.Fprintln(w, "No table found.")
		return err
	}

	sep := make([]string, len(t.Headers))
	for i := range sep {
		sep[i] = "---"
	}

	lines := []string{row(t.Headers), row(sep)}
	for i := range t.Rows {
		lines = append(lines, row(t.Values(i)))
	}
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

func row(cells []string) string {
	escaped := make([]string, len(cells))
	for i, c := range cells {
		escaped[i] = strings.ReplaceAll(c, "|", `\|`)
	}
	return "| " + strings.Join(escaped, " | ") + " |"
}

package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ppiankov/disclose/internal/pipeline"
)

var (
	reqAll  bool
	reqJSON bool
)

// requirementsCmd represents the requirements command
var requirementsCmd = &cobra.Command{
	Use:   "requirements <file|url>",
	Short: "List the requirements of a regulatory table and lint them",
	Long: `Requirements parses a requirement table (TOPIC, METRIC, CATEGORY,
UNIT OF MEASURE, CODE) and prints one line per requirement. Problems such
as malformed codes, unknown categories and duplicates are reported on
stderr; they never drop a row.

Example:
  disclose requirements exigence.md
  disclose requirements exigence.md --all --json`,
	Args: cobra.ExactArgs(1),
	RunE: runRequirements,
}

func init() {
	rootCmd.AddCommand(requirementsCmd)

	requirementsCmd.Flags().BoolVar(&reqAll, "all", false, "include qualitative requirements and requirements without a unit")
	requirementsCmd.Flags().BoolVar(&reqJSON, "json", false, "print requirements as JSON")
}

func runRequirements(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if reqAll {
		cfg.Match.QuantitativeOnly = false
	}

	a, err := pipeline.NewAnalyzer(cfg, newLogger())
	if err != nil {
		return err
	}

	reqs, issues, err := a.Requirements(context.Background(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if reqJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reqs); err != nil {
			return err
		}
	} else {
		for _, r := range reqs {
			fmt.Fprintf(out, "%-14s %-13s %s [%s]\n", r.Code, r.Category, r.Metric, r.UnitStandard)
		}
		fmt.Fprintf(out, "\n%d requirements\n", len(reqs))
	}

	warn := color.New(color.FgYellow)
	if !cfg.Output.Color {
		warn.DisableColor()
	}
	for _, issue := range issues {
		_, _ = warn.Fprintln(cmd.ErrOrStderr(), issue.String())
	}
	return nil
}

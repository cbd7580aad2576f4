package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/ppiankov/disclose/internal/model"
)

const (
	notCollected = "NC"
	ellipsis     = "..."
)

// Renderer formats correlation reports
type Renderer struct {
	includeMethod bool
	truncateAt    int
}

// NewRenderer creates a renderer from the output settings
func NewRenderer(cfg model.OutputConfig) *Renderer {
	truncateAt := cfg.TruncateAt
	if truncateAt <= 0 {
		truncateAt = 50
	}
	return &Renderer{includeMethod: cfg.IncludeMethod, truncateAt: truncateAt}
}

// Markdown renders the full report: summary, matching and non-matching tables
func (r *Renderer) Markdown(report *model.Report) string {
	var b strings.Builder

	b.WriteString("# Sustainability Disclosure Correlation Analysis\n\n")
	b.WriteString("This analysis correlates the disclosure requirements with the values found in the report.\n\n")
	fmt.Fprintf(&b, "- **Run**: %s\n", report.RunID)
	fmt.Fprintf(&b, "- **Generated**: %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "- **Requirements**: %s\n", report.RequirementsSource)
	fmt.Fprintf(&b, "- **Report**: %s\n\n", report.ReportSource)

	r.writeSummary(&b, report)

	b.WriteString(r.table("Metrics with Matching Units", report.Matching()))
	b.WriteString("\n")
	b.WriteString(r.table("Metrics with Non-Matching Units", report.NonMatching()))

	b.WriteString("\n---\n*Generated by disclose*\n")
	return b.String()
}

func (r *Renderer) writeSummary(b *strings.Builder, report *model.Report) {
	s := report.Summary

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(b, "- **Total metrics analyzed**: %d\n", s.Total)
	fmt.Fprintf(b, "- **Metrics with a value found**: %d\n", s.Found)
	fmt.Fprintf(b, "- **Metrics with matching units**: %d\n", s.Matching)
	fmt.Fprintf(b, "- **Metrics with non-matching units**: %d\n", s.NonMatching)
	fmt.Fprintf(b, "- **Analysis method**: %s\n", methodLabel(report))
	fmt.Fprintf(b, "- **Pattern matching results**: %d\n", s.ByMethod[model.MethodPattern])
	fmt.Fprintf(b, "- **LLM results**: %d\n", s.ByMethod[model.MethodModel])
	fmt.Fprintf(b, "- **Coverage**: %.0f%%\n", s.Coverage*100)

	if len(s.Signals) > 0 {
		b.WriteString("\n### Signals\n\n")
		for _, sig := range s.Signals {
			fmt.Fprintf(b, "- [%s] %s\n", sig.Severity, sig.Description)
		}
	}
	b.WriteString("\n")
}

func methodLabel(report *model.Report) string {
	switch {
	case report.Strategy == model.MethodModel && report.Provider != "":
		return fmt.Sprintf("LLM (%s)", report.Provider)
	case report.Strategy == model.MethodModel:
		return "LLM"
	case report.Fallback:
		return "Pattern Matching (LLM unavailable)"
	default:
		return "Pattern Matching Only"
	}
}

// table renders one result table; an empty set renders a placeholder line
func (r *Renderer) table(title string, results []model.CorrelationResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", title)

	if len(results) == 0 {
		b.WriteString("No metrics found.\n")
		return b.String()
	}

	if r.includeMethod {
		b.WriteString("| Topic | Metric | Code | Value | Unit (Actual) | Unit (Standard) | Unit Match | Method |\n")
		b.WriteString("|-------|--------|------|-------|---------------|-----------------|------------|--------|\n")
	} else {
		b.WriteString("| Topic | Metric | Code | Value | Unit (Actual) | Unit (Standard) | Unit Match |\n")
		b.WriteString("|-------|--------|------|-------|---------------|-----------------|------------|\n")
	}

	for _, res := range results {
		cells := []string{
			r.truncate(res.Requirement.Topic),
			r.truncate(res.Requirement.Metric),
			res.Requirement.Code,
			orNC(res.Value),
			orNC(res.UnitActual),
			res.Requirement.UnitStandard,
			boolToken(res.UnitMatch),
		}
		if r.includeMethod {
			cells = append(cells, string(res.Method))
		}
		for i := range cells {
			cells[i] = escapeCell(cells[i])
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return b.String()
}

// truncate shortens s to the configured number of characters plus "..."
func (r *Renderer) truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= r.truncateAt {
		return s
	}
	return string(runes[:r.truncateAt]) + ellipsis
}

func orNC(s string) string {
	if s == "" {
		return notCollected
	}
	return s
}

func boolToken(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}

// RenderMarkdown writes the Markdown report to path
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	if err := os.WriteFile(path, []byte(r.Markdown(report)), 0644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}

// RenderJSON writes the full report as indented JSON to path
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// PrintSummary writes a short console summary with one line per requirement
func (r *Renderer) PrintSummary(w io.Writer, report *model.Report, useColor bool) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)
	bold := color.New(color.Bold)
	if !useColor {
		for _, c := range []*color.Color{green, red, yellow, bold} {
			c.DisableColor()
		}
	}

	s := report.Summary
	_, _ = bold.Fprintln(w, "Correlation summary")
	_, _ = fmt.Fprintf(w, "  Total metrics analyzed:   %d\n", s.Total)
	_, _ = fmt.Fprintf(w, "  Matching units:           %s\n", green.Sprint(s.Matching))
	_, _ = fmt.Fprintf(w, "  Non-matching units:       %s\n", red.Sprint(s.NonMatching))
	_, _ = fmt.Fprintf(w, "  Method:                   %s\n", methodLabel(report))
	if report.Fallback {
		_, _ = yellow.Fprintln(w, "  LLM strategy requested but unavailable; results come from pattern matching")
	}

	_, _ = fmt.Fprintln(w)
	for _, res := range report.Results {
		status := green.Sprint("MATCH   ")
		if !res.UnitMatch {
			status = red.Sprint("NO MATCH")
		}
		info := "No value found"
		if res.Value != "" {
			info = strings.TrimSpace(res.Value + " " + res.UnitActual)
		}
		_, _ = fmt.Fprintf(w, "  %s %s: %s (%s)\n", status, res.Requirement.Code, info, res.Method)
	}
}

// Package score aggregates correlation results into run-level counts and
// diagnostic signals.
package score

import (
	"fmt"
	"strings"

	"github.com/ppiankov/disclose/internal/model"
)

// Severity thresholds on the found and matching ratios
const (
	CriticalBelow = 0.5
	WarningBelow  = 0.8
)

// Scorer builds a run summary
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Summarize counts results and attaches coverage, conformity, fallback and
// model-error signals.
func (s *Scorer) Summarize(results []model.CorrelationResult, fallback bool) model.Summary {
	sum := model.Summary{
		Total:    len(results),
		ByMethod: make(map[model.Method]int),
	}

	modelErrors := 0
	for _, r := range results {
		sum.ByMethod[r.Method]++
		if r.Found {
			sum.Found++
		}
		if r.UnitMatch {
			sum.Matching++
		} else {
			sum.NonMatching++
		}
		if isModelError(r) {
			modelErrors++
		}
	}

	if sum.Total > 0 {
		sum.Coverage = float64(sum.Found) / float64(sum.Total)
	}
	if sum.Found > 0 {
		sum.Conformity = float64(s.matchingFound(results)) / float64(sum.Found)
	}

	sum.Signals = append(sum.Signals, s.coverageSignal(sum), s.conformitySignal(sum))
	if fallback {
		sum.Signals = append(sum.Signals, model.Signal{
			Type:        model.SignalFallback,
			Severity:    model.SeverityWarning,
			Description: "Model strategy requested but unavailable; pattern strategy used",
		})
	}
	if modelErrors > 0 {
		sum.Signals = append(sum.Signals, s.modelErrorSignal(modelErrors, sum.Total))
	}

	return sum
}

// matchingFound counts found results in the standard unit. A collaborator
// may report unit_match for a value it did not find; those are excluded.
func (s *Scorer) matchingFound(results []model.CorrelationResult) int {
	n := 0
	for _, r := range results {
		if r.Found && r.UnitMatch {
			n++
		}
	}
	return n
}

func (s *Scorer) coverageSignal(sum model.Summary) model.Signal {
	if sum.Total == 0 {
		return model.Signal{
			Type:        model.SignalCoverage,
			Severity:    model.SeverityCritical,
			Description: "No requirements to correlate",
			Data:        map[string]interface{}{"total": 0},
		}
	}
	return model.Signal{
		Type:        model.SignalCoverage,
		Severity:    severityFor(sum.Coverage),
		Description: fmt.Sprintf("Values found for %d of %d requirements (%.0f%%)", sum.Found, sum.Total, sum.Coverage*100),
		Data: map[string]interface{}{
			"found": sum.Found,
			"total": sum.Total,
			"ratio": sum.Coverage,
		},
	}
}

func (s *Scorer) conformitySignal(sum model.Summary) model.Signal {
	if sum.Found == 0 {
		return model.Signal{
			Type:        model.SignalConformity,
			Severity:    model.SeverityWarning,
			Description: "No values found, unit conformity not assessed",
			Data:        map[string]interface{}{"found": 0},
		}
	}
	return model.Signal{
		Type:        model.SignalConformity,
		Severity:    severityFor(sum.Conformity),
		Description: fmt.Sprintf("%.0f%% of found values use the standard unit", sum.Conformity*100),
		Data: map[string]interface{}{
			"found": sum.Found,
			"ratio": sum.Conformity,
		},
	}
}

func (s *Scorer) modelErrorSignal(errors, total int) model.Signal {
	severity := model.SeverityWarning
	if errors == total {
		severity = model.SeverityCritical
	}
	return model.Signal{
		Type:        model.SignalModelError,
		Severity:    severity,
		Description: fmt.Sprintf("%d of %d model calls failed or returned unparseable text", errors, total),
		Data:        map[string]interface{}{"errors": errors, "total": total},
	}
}

func severityFor(ratio float64) model.SignalSeverity {
	switch {
	case ratio < CriticalBelow:
		return model.SeverityCritical
	case ratio < WarningBelow:
		return model.SeverityWarning
	default:
		return model.SeverityInfo
	}
}

func isModelError(r model.CorrelationResult) bool {
	if r.Method != model.MethodModel || r.Found {
		return false
	}
	return strings.HasPrefix(r.Explanation, "LLM error:") || r.Explanation == "Could not parse LLM response"
}

package model

import "time"

// Report is the output of one correlation run
type Report struct {
	RunID              string              `json:"run_id"`
	GeneratedAt        time.Time           `json:"generated_at"`
	RequirementsSource string              `json:"requirements_source"`
	ReportSource       string              `json:"report_source"`
	Strategy           Method              `json:"strategy"`          // Strategy actually used
	Fallback           bool                `json:"fallback"`          // Model requested but unavailable
	Provider           string              `json:"provider,omitempty"` // Collaborator name when Strategy is model
	Results            []CorrelationResult `json:"results"`
	Summary            Summary             `json:"summary"`
}

// Matching returns results whose unit agrees with the standard unit
func (r *Report) Matching() []CorrelationResult {
	var out []CorrelationResult
	for _, res := range r.Results {
		if res.UnitMatch {
			out = append(out, res)
		}
	}
	return out
}

// NonMatching returns results whose unit does not agree (including not found)
func (r *Report) NonMatching() []CorrelationResult {
	var out []CorrelationResult
	for _, res := range r.Results {
		if !res.UnitMatch {
			out = append(out, res)
		}
	}
	return out
}

// Summary aggregates counts over a run
type Summary struct {
	Total       int            `json:"total"`
	Found       int            `json:"found"`
	Matching    int            `json:"matching"`
	NonMatching int            `json:"non_matching"`
	ByMethod    map[Method]int `json:"by_method"`
	Signals     []Signal       `json:"signals,omitempty"`

	// Coverage is found / total
	Coverage float64 `json:"coverage"`

	// Conformity is found-and-matching / found
	Conformity float64 `json:"conformity"`
}

// Signal is a diagnostic note about a run
type Signal struct {
	Type        SignalType             `json:"type"`
	Severity    SignalSeverity         `json:"severity"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// SignalType classifies the type of diagnostic signal
type SignalType string

const (
	SignalCoverage   SignalType = "coverage"    // Share of requirements with a value
	SignalConformity SignalType = "conformity"  // Share of found values in the standard unit
	SignalFallback   SignalType = "fallback"    // Model strategy was requested but not used
	SignalModelError SignalType = "model_error" // Collaborator calls that failed or returned unparseable text
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)

package model

// Method identifies the strategy that produced a correlation result
type Method string

const (
	MethodPattern Method = "pattern"
	MethodModel   Method = "model"
)

// CorrelationResult is the verdict for one requirement against one report text.
// An empty Value means nothing was found.
type CorrelationResult struct {
	Requirement Requirement `json:"requirement"`
	Found       bool        `json:"found"`
	Value       string      `json:"value"`
	UnitActual  string      `json:"unit_actual"`
	UnitMatch   bool        `json:"unit_match"`
	Method      Method      `json:"method"`
	Explanation string      `json:"explanation,omitempty"`
}

// NotFound builds the "no data" verdict used by every strategy on failure
func NotFound(req Requirement, method Method, explanation string) CorrelationResult {
	return CorrelationResult{
		Requirement: req,
		Method:      method,
		Explanation: explanation,
	}
}

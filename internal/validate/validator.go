// Package validate lints parsed requirements. It reports problems but never
// drops a requirement; the matcher still runs on everything it receives.
package validate

import (
	"fmt"
	"regexp"

	"github.com/ppiankov/disclose/internal/model"
)

// Issue is one problem found on a requirement
type Issue struct {
	Index    int                  `json:"index"` // position in the requirement list
	Code     string               `json:"code,omitempty"`
	Field    string               `json:"field"`
	Severity model.SignalSeverity `json:"severity"`
	Message  string               `json:"message"`
}

func (i Issue) String() string {
	ref := i.Code
	if ref == "" {
		ref = fmt.Sprintf("#%d", i.Index+1)
	}
	return fmt.Sprintf("[%s] %s %s: %s", i.Severity, ref, i.Field, i.Message)
}

// Validator checks requirements against the expected code format
type Validator struct {
	code *regexp.Regexp
}

// NewValidator creates a validator; codePattern must match a whole code
func NewValidator(codePattern string) (*Validator, error) {
	re, err := regexp.Compile("^(?:" + codePattern + ")$")
	if err != nil {
		return nil, fmt.Errorf("compile code pattern: %w", err)
	}
	return &Validator{code: re}, nil
}

// Validate returns the issues of reqs in requirement order
func (v *Validator) Validate(reqs []model.Requirement) []Issue {
	var issues []Issue
	seen := make(map[string]int)

	for i, r := range reqs {
		add := func(field string, sev model.SignalSeverity, format string, args ...interface{}) {
			issues = append(issues, Issue{
				Index:    i,
				Code:     r.Code,
				Field:    field,
				Severity: sev,
				Message:  fmt.Sprintf(format, args...),
			})
		}

		if r.Metric == "" {
			add("metric", model.SeverityCritical, "metric is empty")
		}

		switch {
		case r.Code == "":
			add("code", model.SeverityWarning, "code is empty")
		case !v.code.MatchString(r.Code):
			add("code", model.SeverityWarning, "code %q does not match %s", r.Code, v.code.String())
		default:
			if first, dup := seen[r.Code]; dup {
				add("code", model.SeverityWarning, "duplicate of requirement #%d", first+1)
			} else {
				seen[r.Code] = i
			}
		}

		if _, err := model.ParseCategory(string(r.Category)); err != nil {
			add("category", model.SeverityWarning, "unknown category %q", r.Category)
		}

		if r.IsQuantitative() && !r.HasUnit() {
			add("unit", model.SeverityWarning, "quantitative metric without a standard unit")
		}
	}

	return issues
}

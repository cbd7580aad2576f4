package model

import (
	"fmt"
	"strings"
)

// Category classifies a requirement as measured or narrative
type Category string

const (
	CategoryQuantitative Category = "quantitative"
	CategoryQualitative  Category = "qualitative"
)

// ParseCategory maps a table cell onto a Category (case-insensitive)
func ParseCategory(raw string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "quantitative":
		return CategoryQuantitative, nil
	case "qualitative", "discussion and analysis":
		return CategoryQualitative, nil
	default:
		return "", fmt.Errorf("unknown category %q", raw)
	}
}

// Requirement is one regulatory disclosure metric to be checked against a report.
// Values are built once by the requirement parser and passed by value afterwards.
type Requirement struct {
	Topic        string   `json:"topic" yaml:"topic"`
	Metric       string   `json:"metric" yaml:"metric"`
	Category     Category `json:"category" yaml:"category"`
	UnitStandard string   `json:"unit_standard" yaml:"unit_standard"`
	Code         string   `json:"code" yaml:"code"`
}

// IsQuantitative reports whether the requirement expects a measured value
func (r Requirement) IsQuantitative() bool {
	return r.Category == CategoryQuantitative
}

// HasUnit reports whether a standard unit is defined ("n/a" counts as none)
func (r Requirement) HasUnit() bool {
	u := strings.ToLower(strings.TrimSpace(r.UnitStandard))
	return u != "" && u != "n/a"
}

package correlate

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/disclose/internal/model"
)

// Category names
const (
	CategoryEmissions  = "emissions"
	CategoryEnergy     = "energy"
	CategoryPercentage = "percentage"
	CategoryCurrency   = "currency"
)

const number = `(\d+(?:,\d+)*(?:\.\d+)?)`

// Category selects a group of value patterns by keywords in the metric text.
// Every pattern captures the number in group 1 and the unit in group 2.
type Category struct {
	Name     string
	Keywords []string
	Patterns []*regexp.Regexp
}

func quantity(unit string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + number + `\s*` + unit)
}

// DefaultCategories returns the built-in categories in search order
func DefaultCategories() []Category {
	co2 := `CO(?:2|₂)(?:-?eq?)?`
	of := `(?:de|d['’]|of)`
	return []Category{
		{
			Name:     CategoryEmissions,
			Keywords: []string{"emission", "carbon", "co2", "ghg"},
			Patterns: []*regexp.Regexp{
				quantity(`((?:millions?|milliards?|billions?|thousands?|milliers?)\s+(?:de\s+|d['’]|of\s+)?(?:tonnes?|t)\b(?:\s+` + of + `\s*` + co2 + `)?)`),
				quantity(`(t` + co2 + `(?:\s*/\s*(?:M€|EURm|€m))?)`),
				quantity(`(tonnes?(?:\s+` + of + `\s*` + co2 + `)?|t\b)`),
			},
		},
		{
			Name:     CategoryEnergy,
			Keywords: []string{"energy", "electricity", "power"},
			Patterns: []*regexp.Regexp{
				quantity(`(GWh\s*/\s*(?:M€|EURm)|(?:GWh|MWh|kWh|TJ|GJ)\b)`),
				quantity(`(%)`),
			},
		},
		{
			Name:     CategoryPercentage,
			Keywords: []string{"percentage", "ratio", "rate"},
			Patterns: []*regexp.Regexp{
				quantity(`(%|pour\s*cent\b|percent\b)`),
			},
		},
		{
			Name:     CategoryCurrency,
			Keywords: []string{"monetary", "premium", "loss", "exposure"},
			Patterns: []*regexp.Regexp{
				quantity(`((?:millions?|milliards?|billions?)\s*(?:d['’]|de\s+|of\s+)?(?:€|euros?\b|EUR\b)|Md€|M€|EURm\b|€)`),
			},
		},
	}
}

// Candidate is one value/unit occurrence in the report text
type Candidate struct {
	Category string
	Value    string
	Unit     string
	Text     string // full match
	Start    int    // byte offsets of the full match
	End      int
}

// PatternStrategy finds a numeric value and unit in the report text with
// regular expressions.
type PatternStrategy struct {
	categories []Category
	units      []UnitMapping
	ranker     Ranker
}

// PatternOption configures a PatternStrategy
type PatternOption func(*PatternStrategy)

// WithRanker replaces the default first-match ranker
func WithRanker(r Ranker) PatternOption {
	return func(s *PatternStrategy) {
		if r != nil {
			s.ranker = r
		}
	}
}

// WithCategories replaces the built-in categories
func WithCategories(c []Category) PatternOption {
	return func(s *PatternStrategy) { s.categories = c }
}

// WithUnitMappings replaces the built-in unit mappings
func WithUnitMappings(m []UnitMapping) PatternOption {
	return func(s *PatternStrategy) { s.units = m }
}

// NewPatternStrategy creates a pattern strategy with the built-in tables
func NewPatternStrategy(opts ...PatternOption) *PatternStrategy {
	s := &PatternStrategy{
		categories: DefaultCategories(),
		units:      DefaultUnitMappings(),
		ranker:     FirstMatch{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Method implements Strategy
func (s *PatternStrategy) Method() model.Method { return model.MethodPattern }

// Select returns the categories whose keywords appear in the metric, in
// table order. With no keyword hit every category is returned.
func (s *PatternStrategy) Select(metric string) []Category {
	text := NormalizeUnit(metric)
	var selected []Category
	for _, c := range s.categories {
		for _, kw := range c.Keywords {
			if strings.Contains(text, kw) {
				selected = append(selected, c)
				break
			}
		}
	}
	if len(selected) == 0 {
		return s.categories
	}
	return selected
}

// Candidates lists every match of the selected categories, grouped by
// category then pattern, each group in text order.
func (s *PatternStrategy) Candidates(cats []Category, text string) []Candidate {
	var out []Candidate
	for _, c := range cats {
		for _, re := range c.Patterns {
			for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
				if len(m) < 6 || m[2] < 0 || m[4] < 0 {
					continue
				}
				out = append(out, Candidate{
					Category: c.Name,
					Value:    text[m[2]:m[3]],
					Unit:     strings.TrimSpace(text[m[4]:m[5]]),
					Text:     text[m[0]:m[1]],
					Start:    m[0],
					End:      m[1],
				})
			}
		}
	}
	return out
}

// Match implements Strategy
func (s *PatternStrategy) Match(_ context.Context, req model.Requirement, text string) model.CorrelationResult {
	candidates := s.Candidates(s.Select(req.Metric), text)
	if len(candidates) == 0 {
		return model.NotFound(req, model.MethodPattern, "no value with a recognised unit in report text")
	}

	best, ok := s.ranker.Rank(req, text, candidates)
	if !ok {
		return model.NotFound(req, model.MethodPattern, "no candidate ranked")
	}
	if crossCategory(best, req.Metric) {
		return model.NotFound(req, model.MethodPattern, "emissions value found but the requirement is not about emissions")
	}

	return model.CorrelationResult{
		Requirement: req,
		Found:       true,
		Value:       best.Value,
		UnitActual:  best.Unit,
		UnitMatch:   UnitMatches(req.UnitStandard, best.Unit, s.units),
		Method:      model.MethodPattern,
		Explanation: fmt.Sprintf("%s pattern matched %q", best.Category, best.Text),
	}
}

// crossCategory reports an emissions-labeled candidate for a requirement
// that is not about emissions.
func crossCategory(c Candidate, metric string) bool {
	m := NormalizeUnit(metric)
	if strings.Contains(NormalizeUnit(c.Unit), "emission") && !strings.Contains(m, "emission") {
		return true
	}
	return c.Category == CategoryEmissions && !emissionsRelated(m)
}

func emissionsRelated(normalizedMetric string) bool {
	for _, kw := range []string{"emission", "carbon", "co2", "ghg"} {
		if strings.Contains(normalizedMetric, kw) {
			return true
		}
	}
	return false
}

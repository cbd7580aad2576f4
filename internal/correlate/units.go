package correlate

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// UnitMapping lists the report spellings accepted for one standard unit
type UnitMapping struct {
	Standard string
	Variants []string
}

// DefaultUnitMappings covers the units used by financed-emissions disclosures
func DefaultUnitMappings() []UnitMapping {
	return []UnitMapping{
		{Standard: "Metric tonnes (t) CO2-e", Variants: []string{"tco2", "tonnes", "t", "millions de tonnes"}},
		{Standard: "Presentation currency", Variants: []string{"€", "m€", "eurm", "millions €"}},
		{Standard: "Reporting currency", Variants: []string{"€", "m€", "eurm", "millions €"}},
		{Standard: "Percentage (%)", Variants: []string{"%"}},
		{Standard: "Rate", Variants: []string{"%", "ratio"}},
		{Standard: "Gigajoules (GJ)", Variants: []string{"gj", "tj", "gwh", "mwh", "kwh"}},
	}
}

// subscripts folds chemical-formula digits so "CO₂" and "CO2" compare equal
var subscripts = strings.NewReplacer("₀", "0", "₁", "1", "₂", "2", "₃", "3", "₄", "4")

// NormalizeUnit lowercases, strips accents, drops parentheses and collapses
// whitespace.
func NormalizeUnit(s string) string {
	// transformers carry state, so build them per call
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = cases.Fold().String(subscripts.Replace(folded))
	folded = strings.NewReplacer("(", " ", ")", " ").Replace(folded)
	return strings.Join(strings.Fields(folded), " ")
}

// UnitMatches reports whether actual is an accepted spelling of standard.
// Mapping keys match the standard by containment in either direction, so
// "Metric tonnes (t) CO2-e per EUR m" still resolves to the tonnes entry.
func UnitMatches(standard, actual string, mappings []UnitMapping) bool {
	std := NormalizeUnit(standard)
	act := NormalizeUnit(actual)
	if std == "" || act == "" {
		return false
	}
	if std == act {
		return true
	}

	for _, m := range mappings {
		key := NormalizeUnit(m.Standard)
		if !strings.Contains(key, std) && !strings.Contains(std, key) {
			continue
		}
		for _, v := range m.Variants {
			if strings.Contains(act, NormalizeUnit(v)) {
				return true
			}
		}
	}
	return false
}

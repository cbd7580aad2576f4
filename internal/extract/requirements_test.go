package extract

import (
	"testing"

	"github.com/ppiankov/disclose/internal/model"
	"github.com/ppiankov/disclose/internal/table"
)

func newExtractor(t *testing.T, layout string, quantitativeOnly bool) *RequirementExtractor {
	t.Helper()
	parser, err := table.NewParser(model.TableConfig{Layout: layout})
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}
	return NewRequirementExtractor(parser, quantitativeOnly)
}

const requirementsMarkdown = `## SASB Insurance

| TOPIC | METRIC | CATEGORY | UNIT OF MEASURE | CODE |
|---|---|---|---|---|
| Transparent Information | Complaints-to-claims ratio | Quantitative | Rate | FN-IN-270a.2 |
| | Customer retention rate | Quantitative | Rate | FN-IN-270a.3 |
| | Description of approach | Discussion and Analysis | n/a | FN-IN-270a.4 |
| Physical Risk Exposure | Absolute gross financed emissions | Quantitative | Metric tonnes (t) CO2-e | FN-IN-410c.1 |
| Physical Risk Exposure | Number of policies | Quantitative | n/a | FN-IN-450a.3 |
`

func TestRequirementExtractor_QuantitativeOnly(t *testing.T) {
	reqs := newExtractor(t, "", true).Extract(requirementsMarkdown)

	if len(reqs) != 3 {
		t.Fatalf("Expected 3 quantitative requirements, got %d: %+v", len(reqs), reqs)
	}

	if reqs[1].Topic != "Transparent Information" {
		t.Errorf("Expected topic carried forward, got %q", reqs[1].Topic)
	}
	if reqs[2].Code != "FN-IN-410c.1" {
		t.Errorf("Expected code FN-IN-410c.1, got %s", reqs[2].Code)
	}
	if reqs[2].UnitStandard != "Metric tonnes (t) CO2-e" {
		t.Errorf("Unexpected unit: %s", reqs[2].UnitStandard)
	}
	for _, r := range reqs {
		if r.Category != model.CategoryQuantitative {
			t.Errorf("Expected quantitative category, got %s", r.Category)
		}
	}
}

func TestRequirementExtractor_All(t *testing.T) {
	reqs := newExtractor(t, "", false).Extract(requirementsMarkdown)

	if len(reqs) != 5 {
		t.Fatalf("Expected 5 requirements, got %d", len(reqs))
	}
	if reqs[2].Category != model.CategoryQualitative {
		t.Errorf("Expected qualitative category, got %s", reqs[2].Category)
	}
}

func TestRequirementExtractor_SingleLineCodeAnchor(t *testing.T) {
	content := "| TOPIC | METRIC | CATEGORY | UNIT OF MEASURE | CODE | --- | --- | --- | --- | --- |" +
		" Physical Risk | Probable maximum loss | Quantitative | Presentation currency | FN-IN-450a.1 |" +
		" Total losses | Quantitative | Presentation currency | FN-IN-450a.2 |"

	reqs := newExtractor(t, table.LayoutCodeAnchor, true).Extract(content)

	if len(reqs) != 2 {
		t.Fatalf("Expected 2 requirements, got %d", len(reqs))
	}
	if reqs[1].Topic != "Physical Risk" {
		t.Errorf("Expected inherited topic, got %q", reqs[1].Topic)
	}
}

func TestRequirementExtractor_NoTable(t *testing.T) {
	reqs := newExtractor(t, "", true).Extract("No table in this document.")
	if len(reqs) != 0 {
		t.Errorf("Expected no requirements, got %d", len(reqs))
	}
}

func TestFromTable_PositionalFallback(t *testing.T) {
	tbl := model.Table{
		Headers: []string{"A", "B", "C", "D", "E"},
		Rows: []model.Row{
			{"A": "Energy", "B": "Total energy consumed", "C": "quantitative", "D": "GWh", "E": "FN-IN-000a.1"},
		},
	}

	reqs := FromTable(tbl, true)
	if len(reqs) != 1 {
		t.Fatalf("Expected 1 requirement, got %d", len(reqs))
	}
	if reqs[0].Metric != "Total energy consumed" || reqs[0].UnitStandard != "GWh" {
		t.Errorf("Unexpected requirement: %+v", reqs[0])
	}
}

func TestFromTable_TooNarrow(t *testing.T) {
	tbl := model.Table{
		Headers: []string{"A", "B"},
		Rows:    []model.Row{{"A": "x", "B": "y"}},
	}
	if reqs := FromTable(tbl, false); reqs != nil {
		t.Errorf("Expected nil, got %+v", reqs)
	}
}

func TestFromTable_UnknownCategoryKept(t *testing.T) {
	tbl := model.Table{
		Headers: model.RequirementHeaders(),
		Rows: []model.Row{
			{"TOPIC": "T", "METRIC": "M", "CATEGORY": "Mixed", "UNIT OF MEASURE": "%", "CODE": "FN-IN-1a.1"},
		},
	}

	reqs := FromTable(tbl, false)
	if len(reqs) != 1 || reqs[0].Category != "mixed" {
		t.Fatalf("Expected raw lowercased category, got %+v", reqs)
	}
	if reqs := FromTable(tbl, true); len(reqs) != 0 {
		t.Errorf("Expected unknown category filtered, got %d", len(reqs))
	}
}

package extract

import (
	"strings"

	"github.com/ppiankov/disclose/internal/model"
	"github.com/ppiankov/disclose/internal/table"
)

// RequirementExtractor turns a requirement table into Requirement values
type RequirementExtractor struct {
	parser           *table.Parser
	quantitativeOnly bool
}

// NewRequirementExtractor creates an extractor on top of a table parser.
// With quantitativeOnly, only quantitative requirements with a unit are kept.
func NewRequirementExtractor(parser *table.Parser, quantitativeOnly bool) *RequirementExtractor {
	return &RequirementExtractor{
		parser:           parser,
		quantitativeOnly: quantitativeOnly,
	}
}

// Extract parses content and returns its requirements in table order.
// Content without a usable table yields no requirements.
func (e *RequirementExtractor) Extract(content string) []model.Requirement {
	return FromTable(e.parser.Parse(content), e.quantitativeOnly)
}

// columns holds the header name used for each requirement field
type columns struct {
	topic, metric, category, unit, code string
}

// resolveColumns maps headers onto requirement fields by name; a table
// without a METRIC column falls back to the positional 5-column layout.
func resolveColumns(headers []string) (columns, bool) {
	var c columns
	for _, h := range headers {
		upper := strings.ToUpper(h)
		switch {
		case c.topic == "" && strings.Contains(upper, "TOPIC"):
			c.topic = h
		case c.metric == "" && strings.Contains(upper, "METRIC"):
			c.metric = h
		case c.category == "" && strings.Contains(upper, "CATEGORY"):
			c.category = h
		case c.unit == "" && strings.HasPrefix(upper, "UNIT"):
			c.unit = h
		case c.code == "" && strings.Contains(upper, "CODE"):
			c.code = h
		}
	}
	if c.metric != "" {
		return c, true
	}

	if len(headers) < 5 {
		return c, false
	}
	return columns{
		topic:    headers[0],
		metric:   headers[1],
		category: headers[2],
		unit:     headers[3],
		code:     headers[4],
	}, true
}

// FromTable maps table rows onto requirements. Rows without metric and code
// are skipped; a row with an empty topic inherits the previous row's topic.
func FromTable(t model.Table, quantitativeOnly bool) []model.Requirement {
	cols, ok := resolveColumns(t.Headers)
	if !ok {
		return nil
	}

	var reqs []model.Requirement
	topic := ""

	for _, row := range t.Rows {
		r := model.Requirement{
			Topic:        row[cols.topic],
			Metric:       row[cols.metric],
			UnitStandard: row[cols.unit],
			Code:         row[cols.code],
		}
		if r.Metric == "" && r.Code == "" {
			continue
		}

		if r.Topic == "" {
			r.Topic = topic
		}
		topic = r.Topic

		raw := row[cols.category]
		category, err := model.ParseCategory(raw)
		if err != nil {
			category = model.Category(strings.ToLower(strings.TrimSpace(raw)))
		}
		r.Category = category

		if quantitativeOnly && (!r.IsQuantitative() || !r.HasUnit()) {
			continue
		}
		reqs = append(reqs, r)
	}

	return reqs
}

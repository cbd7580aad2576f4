package model

// Canonical header names of the requirement table dialect
const (
	HeaderTopic    = "TOPIC"
	HeaderMetric   = "METRIC"
	HeaderCategory = "CATEGORY"
	HeaderUnit     = "UNIT OF MEASURE"
	HeaderCode     = "CODE"
)

// RequirementHeaders is the fixed 5-column layout of a requirement table
func RequirementHeaders() []string {
	return []string{HeaderTopic, HeaderMetric, HeaderCategory, HeaderUnit, HeaderCode}
}

// Row maps header name to cell value. Every row of a Table carries every header.
type Row map[string]string

// Table is the recovered structure of one Markdown table.
// Headers fixes the column order; rows share that header set.
type Table struct {
	Headers []string `json:"headers" yaml:"headers"`
	Rows    []Row    `json:"rows" yaml:"rows"`
}

// Empty reports whether no usable table was recovered
func (t Table) Empty() bool {
	return len(t.Headers) == 0
}

// Values returns the cells of row i in header order
func (t Table) Values(i int) []string {
	values := make([]string, len(t.Headers))
	for j, h := range t.Headers {
		values[j] = t.Rows[i][h]
	}
	return values
}

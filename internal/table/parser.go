package table

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/disclose/internal/model"
	"github.com/ppiankov/disclose/internal/observe"
)

// Single-line layouts
const (
	LayoutChunked    = "chunked"
	LayoutTopicBlock = "topic-block"
	LayoutCodeAnchor = "code-anchor"
)

// Defaults of the requirement table dialect
const (
	DefaultWidth                = 5
	DefaultTopicMinLength       = 20
	DefaultTopicMetricMaxLength = 50
)

// Parser recovers a model.Table from raw Markdown. Multi-line content is
// parsed line by line; a table collapsed onto one line is rebuilt with the
// configured header locators and layout. Parser is safe for concurrent use.
type Parser struct {
	cfg      model.TableConfig
	locators []HeaderLocator
	code     *regexp.Regexp
	observer observe.Observer
}

// Option configures a Parser
type Option func(*Parser)

// WithObserver attaches an event observer
func WithObserver(o observe.Observer) Option {
	return func(p *Parser) {
		p.observer = o
	}
}

// NewParser creates a parser. Zero-valued settings take the defaults of the
// requirement dialect; unknown locator or layout names are errors.
func NewParser(cfg model.TableConfig, opts ...Option) (*Parser, error) {
	cfg = withDefaults(cfg)

	switch cfg.Layout {
	case LayoutChunked, LayoutTopicBlock, LayoutCodeAnchor:
	default:
		return nil, fmt.Errorf("unknown table layout: %s (supported: %s, %s, %s)",
			cfg.Layout, LayoutChunked, LayoutTopicBlock, LayoutCodeAnchor)
	}

	p := &Parser{cfg: cfg, observer: observe.Nop}

	for _, name := range cfg.Locators {
		loc, err := NewLocator(name, cfg)
		if err != nil {
			return nil, err
		}
		p.locators = append(p.locators, loc)
	}

	code, err := regexp.Compile(cfg.CodePattern)
	if err != nil {
		return nil, fmt.Errorf("compile code pattern: %w", err)
	}
	p.code = code

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

func withDefaults(cfg model.TableConfig) model.TableConfig {
	def := model.DefaultConfig().Table
	if cfg.Layout == "" {
		cfg.Layout = LayoutChunked
	}
	cfg.Layout = strings.ToLower(cfg.Layout)
	if len(cfg.Locators) == 0 {
		cfg.Locators = def.Locators
	}
	if len(cfg.HeaderKeywords) == 0 {
		cfg.HeaderKeywords = def.HeaderKeywords
	}
	if len(cfg.TitleMarkers) == 0 {
		cfg.TitleMarkers = def.TitleMarkers
	}
	if cfg.Width <= 0 {
		cfg.Width = DefaultWidth
	}
	if cfg.MaxKeywordLength <= 0 {
		cfg.MaxKeywordLength = def.MaxKeywordLength
	}
	if cfg.TopicMinLength <= 0 {
		cfg.TopicMinLength = DefaultTopicMinLength
	}
	if cfg.TopicMetricMaxLength <= 0 {
		cfg.TopicMetricMaxLength = DefaultTopicMetricMaxLength
	}
	if cfg.CodePattern == "" {
		cfg.CodePattern = def.CodePattern
	}
	return cfg
}

// Config returns the effective configuration
func (p *Parser) Config() model.TableConfig {
	return p.cfg
}

// Parse tokenizes content and recovers its table
func (p *Parser) Parse(content string) model.Table {
	return p.Recover(Tokenize(content, p.cfg.StopAtProse))
}

// Recover builds a table from tokens. When no headers can be found it
// returns an empty Table; it never fails.
func (p *Parser) Recover(tokens Tokens) model.Table {
	var t model.Table
	var path string

	switch len(tokens.Rows) {
	case 0:
		return p.fail("no table lines")
	case 1:
		path = "single-line"
		t = p.singleLine(flatten(tokens.Rows[0]))
	default:
		path = "multi-line"
		t = p.multiLine(tokens.Rows)
	}

	if t.Empty() {
		return p.fail("headers not located (" + path + ")")
	}

	for i := range t.Rows {
		observe.Emit(p.observer, observe.RowParsed, observe.Fields{"index": i, "values": t.Values(i)})
	}
	observe.Emit(p.observer, observe.TableParsed, observe.Fields{
		"path":    path,
		"layout":  p.cfg.Layout,
		"headers": len(t.Headers),
		"rows":    len(t.Rows),
	})

	return t
}

func (p *Parser) fail(reason string) model.Table {
	observe.Emit(p.observer, observe.ParseFailed, observe.Fields{"reason": reason})
	return model.Table{}
}

// multiLine: the first non-separator row is the header, every following
// non-separator row is data. Short rows are padded with empty cells.
func (p *Parser) multiLine(rows [][]string) model.Table {
	headerIdx := -1
	for i, row := range rows {
		if !IsSeparator(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return model.Table{}
	}

	headers := uniqueHeaders(rows[headerIdx])
	t := model.Table{Headers: headers, Rows: []model.Row{}}

	for _, row := range rows[headerIdx+1:] {
		if IsSeparator(row) {
			continue
		}
		t.Rows = append(t.Rows, zip(headers, row))
	}

	return t
}

func (p *Parser) singleLine(cells []string) model.Table {
	switch p.cfg.Layout {
	case LayoutTopicBlock:
		return p.topicBlock(cells)
	case LayoutCodeAnchor:
		return p.codeAnchor(cells)
	}

	start, end, ok := p.locate(cells)
	if !ok {
		return model.Table{}
	}

	headers := uniqueHeaders(cells[start:end])
	t := model.Table{Headers: headers, Rows: []model.Row{}}

	// Only complete chunks become rows; pure filler chunks are dropped
	rest := cells[end:]
	width := len(headers)
	for i := 0; i+width <= len(rest); i += width {
		chunk := rest[i : i+width]
		if IsSeparator(chunk) {
			continue
		}
		t.Rows = append(t.Rows, zip(headers, chunk))
	}

	return t
}

// locate tries each configured locator in order
func (p *Parser) locate(cells []string) (int, int, bool) {
	for _, loc := range p.locators {
		if start, end, ok := loc.Locate(cells, p.cfg.Width); ok && end > start {
			return start, end, true
		}
	}
	return 0, 0, false
}

// dataCells returns the cells following a header keyword span, or following
// a leading title cell when there is none. Filler cells are removed.
func (p *Parser) dataCells(cells []string) []string {
	data := cells
	if _, end, ok := p.locateKeyword(cells); ok {
		data = cells[end:]
	} else if len(cells) > 0 && p.isTitle(cells[0]) {
		data = cells[1:]
	}

	out := make([]string, 0, len(data))
	for _, c := range data {
		if !IsFiller(c) {
			out = append(out, c)
		}
	}
	return out
}

// locateKeyword is locate restricted to locators that match header names
func (p *Parser) locateKeyword(cells []string) (int, int, bool) {
	for _, loc := range p.locators {
		if _, title := loc.(*TitleMarkerLocator); title {
			continue
		}
		if start, end, ok := loc.Locate(cells, p.cfg.Width); ok && end > start {
			return start, end, true
		}
	}
	return 0, 0, false
}

func (p *Parser) isTitle(cell string) bool {
	for _, m := range p.cfg.TitleMarkers {
		if m != "" && strings.Contains(cell, m) {
			return true
		}
	}
	return false
}

// topicBlock rebuilds tables laid out as a long topic cell followed by
// metric/category/unit/code quadruples. The topic is written only on rows
// whose metric is shorter than TopicMetricMaxLength.
func (p *Parser) topicBlock(cells []string) model.Table {
	data := p.dataCells(cells)
	headers := model.RequirementHeaders()
	t := model.Table{Headers: headers, Rows: []model.Row{}}

	isTopic := func(c string) bool {
		return utf8.RuneCountInString(c) > p.cfg.TopicMinLength
	}

	i := 0
	for i < len(data) {
		if !isTopic(data[i]) {
			i++
			continue
		}
		topic := data[i]
		i++

		for i+3 < len(data) {
			metric := data[i]
			row := model.Row{
				model.HeaderTopic:    "",
				model.HeaderMetric:   metric,
				model.HeaderCategory: data[i+1],
				model.HeaderUnit:     data[i+2],
				model.HeaderCode:     data[i+3],
			}
			if utf8.RuneCountInString(metric) < p.cfg.TopicMetricMaxLength {
				row[model.HeaderTopic] = topic
			}
			t.Rows = append(t.Rows, row)
			i += 4

			if i < len(data) && isTopic(data[i]) {
				break
			}
		}
	}

	return t
}

// codeAnchor cuts rows at regulatory codes. The cells between two codes
// are the metric, category and unit of the second code, optionally preceded
// by a topic; anything before that is ignored.
func (p *Parser) codeAnchor(cells []string) model.Table {
	headers := model.RequirementHeaders()
	skip := make(map[string]bool, len(headers))
	for _, h := range headers {
		skip[h] = true
	}

	var fields []string
	for _, c := range cells {
		if skip[strings.ToUpper(c)] || IsFiller(c) {
			continue
		}
		fields = append(fields, c)
	}

	t := model.Table{Headers: headers, Rows: []model.Row{}}
	prev := -1
	for i, f := range fields {
		if !p.code.MatchString(f) {
			continue
		}
		seg := fields[prev+1 : i]
		prev = i

		switch {
		case len(seg) >= 4:
			row := append([]string{}, seg[len(seg)-4:]...)
			t.Rows = append(t.Rows, zip(headers, append(row, f)))
		case len(seg) == 3:
			t.Rows = append(t.Rows, zip(headers, []string{"", seg[0], seg[1], seg[2], f}))
		}
	}

	return t
}

// zip maps headers onto row positionally, padding with empty strings
func zip(headers, row []string) model.Row {
	r := make(model.Row, len(headers))
	for j, h := range headers {
		if j < len(row) {
			r[h] = row[j]
		} else {
			r[h] = ""
		}
	}
	return r
}

// uniqueHeaders names empty header cells "COLUMN n" and suffixes repeats
// with " (2)", " (3)" so every header is distinct.
func uniqueHeaders(cells []string) []string {
	seen := make(map[string]bool, len(cells))
	headers := make([]string, len(cells))

	for i, c := range cells {
		name := c
		if name == "" {
			name = fmt.Sprintf("COLUMN %d", i+1)
		}
		candidate := name
		for n := 2; seen[candidate]; n++ {
			candidate = fmt.Sprintf("%s (%d)", name, n)
		}
		seen[candidate] = true
		headers[i] = candidate
	}

	return headers
}

package correlate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/ppiankov/disclose/internal/llm"
	"github.com/ppiankov/disclose/internal/model"
)

// Generator is the text-generation collaborator used by the model strategy
type Generator interface {
	Generate(ctx context.Context, req llm.Request) llm.Result
}

// GeneratorFunc adapts a function to Generator
type GeneratorFunc func(ctx context.Context, req llm.Request) llm.Result

// Generate implements Generator
func (f GeneratorFunc) Generate(ctx context.Context, req llm.Request) llm.Result { return f(ctx, req) }

const systemPrompt = "You are an expert at analyzing sustainability reports and correlating metrics with data. Always respond with valid JSON only."

var matchPromptTmpl = template.Must(template.New("match").Parse(`You are analyzing a sustainability report to find specific metrics and their values.

REQUIREMENT TO FIND:
- Topic: {{.Topic}}
- Metric: {{.Metric}}
- Standard Unit: {{.UnitStandard}}
- Code: {{.Code}}

REPORT DATA:
{{.Report}}

TASK:
1. Search the report data for information related to this metric
2. If found, extract the exact value and unit
3. Determine if the unit matches the standard unit (considering common variations)
4. Provide a brief explanation

RESPONSE FORMAT (JSON only):
{
    "found": true/false,
    "value": "extracted value or empty string",
    "unit_actual": "unit found in report or empty string",
    "unit_match": true/false,
    "explanation": "brief explanation of what was found or why not found"
}`))

type promptData struct {
	model.Requirement
	Report string
}

// RenderPrompt fills the requirement and report text into the prompt
func RenderPrompt(req model.Requirement, report string) (string, error) {
	var buf bytes.Buffer
	if err := matchPromptTmpl.Execute(&buf, promptData{Requirement: req, Report: report}); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return buf.String(), nil
}

// ModelStrategy asks the collaborator to locate the value and trusts its
// verdict as returned.
type ModelStrategy struct {
	gen         Generator
	temperature float64
	maxTokens   int
}

// Default sampling parameters for the model strategy
const (
	DefaultTemperature = 0.1
	DefaultMaxTokens   = 1000
)

// NewModelStrategy creates a model strategy; zero sampling values use the defaults
func NewModelStrategy(gen Generator, temperature float64, maxTokens int) *ModelStrategy {
	if temperature <= 0 {
		temperature = DefaultTemperature
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &ModelStrategy{gen: gen, temperature: temperature, maxTokens: maxTokens}
}

// Method implements Strategy
func (s *ModelStrategy) Method() model.Method { return model.MethodModel }

// Match implements Strategy
func (s *ModelStrategy) Match(ctx context.Context, req model.Requirement, text string) model.CorrelationResult {
	prompt, err := RenderPrompt(req, text)
	if err != nil {
		return model.NotFound(req, model.MethodModel, err.Error())
	}

	res := s.gen.Generate(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: prompt},
		},
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
	})
	if !res.Success {
		return model.NotFound(req, model.MethodModel, "LLM error: "+res.Error)
	}

	v, err := parseVerdict(res.Content)
	if err != nil {
		return model.NotFound(req, model.MethodModel, "Could not parse LLM response")
	}

	return model.CorrelationResult{
		Requirement: req,
		Found:       v.Found,
		Value:       string(v.Value),
		UnitActual:  string(v.UnitActual),
		UnitMatch:   v.UnitMatch,
		Method:      model.MethodModel,
		Explanation: v.Explanation,
	}
}

type verdict struct {
	Found       bool        `json:"found"`
	Value       looseString `json:"value"`
	UnitActual  looseString `json:"unit_actual"`
	UnitMatch   bool        `json:"unit_match"`
	Explanation string      `json:"explanation"`
}

// looseString accepts a JSON string, number or null
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*s = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = looseString(strings.TrimSpace(str))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("value is neither string nor number: %s", raw)
	}
	*s = looseString(n.String())
	return nil
}

// parseVerdict decodes the span from the first '{' to the last '}'
func parseVerdict(content string) (verdict, error) {
	var v verdict
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return v, fmt.Errorf("no JSON object in response")
	}
	if err := json.Unmarshal([]byte(content[start:end+1]), &v); err != nil {
		return v, fmt.Errorf("decode response: %w", err)
	}
	return v, nil
}

// Package correlate matches disclosure requirements against report text,
// either with value/unit regular expressions or by asking a language model.
package correlate

import (
	"context"

	"github.com/ppiankov/disclose/internal/model"
	"github.com/ppiankov/disclose/internal/observe"
)

// Strategy finds the value for one requirement. Implementations never fail:
// problems are reported as a not-found result with an explanation.
type Strategy interface {
	Method() model.Method
	Match(ctx context.Context, req model.Requirement, text string) model.CorrelationResult
}

// Options selects and configures the strategy a Matcher dispatches to
type Options struct {
	UseModel bool

	// Generator backs the model strategy. Nil with UseModel set falls back
	// to pattern matching.
	Generator Generator

	// GeneratorErr explains why no generator could be built
	GeneratorErr error

	Ranker      Ranker
	Temperature float64
	MaxTokens   int
	Observer    observe.Observer
}

// Matcher dispatches every requirement to one strategy for the whole run
type Matcher struct {
	strategy Strategy
	fallback bool
	observer observe.Observer
}

// NewMatcher picks the model strategy when requested and available,
// otherwise the pattern strategy. A requested but unavailable model emits
// a FallbackTriggered event.
func NewMatcher(opts Options) *Matcher {
	m := &Matcher{observer: opts.Observer}

	if opts.UseModel && opts.Generator != nil {
		m.strategy = NewModelStrategy(opts.Generator, opts.Temperature, opts.MaxTokens)
		return m
	}

	m.strategy = NewPatternStrategy(WithRanker(opts.Ranker))
	if opts.UseModel {
		m.fallback = true
		reason := "no text-generation collaborator configured"
		if opts.GeneratorErr != nil {
			reason = opts.GeneratorErr.Error()
		}
		observe.Emit(m.observer, observe.FallbackTriggered, observe.Fields{
			"from":   string(model.MethodModel),
			"to":     string(model.MethodPattern),
			"reason": reason,
		})
	}
	return m
}

// NewMatcherWithStrategy wraps an explicit strategy
func NewMatcherWithStrategy(s Strategy, observer observe.Observer) *Matcher {
	return &Matcher{strategy: s, observer: observer}
}

// Method reports the strategy in use
func (m *Matcher) Method() model.Method { return m.strategy.Method() }

// FellBack reports whether a requested model strategy was replaced
func (m *Matcher) FellBack() bool { return m.fallback }

// Match correlates one requirement and emits RequirementMatched
func (m *Matcher) Match(ctx context.Context, req model.Requirement, text string) model.CorrelationResult {
	res := m.strategy.Match(ctx, req, text)
	observe.Emit(m.observer, observe.RequirementMatched, observe.Fields{
		"code":       req.Code,
		"metric":     req.Metric,
		"found":      res.Found,
		"unit_match": res.UnitMatch,
		"method":     string(res.Method),
	})
	return res
}

// MatchAll correlates requirements in order, one result per requirement
func (m *Matcher) MatchAll(ctx context.Context, reqs []model.Requirement, text string) []model.CorrelationResult {
	out := make([]model.CorrelationResult, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, m.Match(ctx, req, text))
	}
	return out
}

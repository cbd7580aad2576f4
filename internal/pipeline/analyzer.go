package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ppiankov/disclose/internal/cache"
	"github.com/ppiankov/disclose/internal/correlate"
	"github.com/ppiankov/disclose/internal/extract"
	"github.com/ppiankov/disclose/internal/llm"
	"github.com/ppiankov/disclose/internal/model"
	"github.com/ppiankov/disclose/internal/observe"
	"github.com/ppiankov/disclose/internal/score"
	"github.com/ppiankov/disclose/internal/table"
	"github.com/ppiankov/disclose/internal/validate"
	"github.com/ppiankov/disclose/internal/worker"
)

// Analyzer orchestrates a correlation run: load both sources, recover the
// requirement table, match every requirement and summarize.
type Analyzer struct {
	cfg       *model.Config
	logger    *logrus.Logger
	observer  observe.Observer
	loader    *Loader
	extractor *extract.RequirementExtractor
	validator *validate.Validator
	matcher   *correlate.Matcher
	scorer    *score.Scorer

	generator correlate.Generator
	provider  string
}

// Option configures an Analyzer
type Option func(*Analyzer)

// WithGenerator supplies the text-generation collaborator instead of
// building one from the LLM configuration
func WithGenerator(gen correlate.Generator, provider string) Option {
	return func(a *Analyzer) {
		a.generator = gen
		a.provider = provider
	}
}

// WithObserver attaches an observer to the parser and matcher, next to
// the log observer
func WithObserver(o observe.Observer) Option {
	return func(a *Analyzer) {
		a.observer = o
	}
}

// WithLoader replaces the default file/URL loader
func WithLoader(l *Loader) Option {
	return func(a *Analyzer) {
		a.loader = l
	}
}

// NewAnalyzer creates an analyzer. Invalid table or ranker settings are
// errors; an unusable LLM configuration only degrades to pattern matching.
func NewAnalyzer(cfg *model.Config, logger *logrus.Logger, opts ...Option) (*Analyzer, error) {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	a := &Analyzer{cfg: cfg, logger: logger, scorer: score.NewScorer()}
	for _, opt := range opts {
		opt(a)
	}
	if a.observer == nil {
		a.observer = observe.NewLogObserver(logger)
	} else {
		a.observer = observe.Multi(observe.NewLogObserver(logger), a.observer)
	}
	if a.loader == nil {
		a.loader = NewLoader(cfg.HTTP)
	}

	reqTable := cfg.Table
	if reqTable.Layout == "" {
		reqTable.Layout = table.LayoutCodeAnchor
	}
	parser, err := table.NewParser(reqTable, table.WithObserver(a.observer))
	if err != nil {
		return nil, fmt.Errorf("table parser: %w", err)
	}
	a.extractor = extract.NewRequirementExtractor(parser, cfg.Match.QuantitativeOnly)

	a.validator, err = validate.NewValidator(cfg.Table.CodePattern)
	if err != nil {
		return nil, fmt.Errorf("validator: %w", err)
	}

	ranker, err := correlate.NewRanker(cfg.Match.Ranker)
	if err != nil {
		return nil, fmt.Errorf("ranker: %w", err)
	}

	var genErr error
	if cfg.Match.UseModel && a.generator == nil {
		a.generator, a.provider, genErr = a.newGenerator()
		if genErr != nil {
			logger.WithError(genErr).Warn("LLM provider unavailable, using pattern matching")
		}
	}

	a.matcher = correlate.NewMatcher(correlate.Options{
		UseModel:     cfg.Match.UseModel,
		Generator:    a.generator,
		GeneratorErr: genErr,
		Ranker:       ranker,
		Temperature:  cfg.Match.Temperature,
		MaxTokens:    cfg.Match.MaxTokens,
		Observer:     a.observer,
	})

	return a, nil
}

func (a *Analyzer) newGenerator() (correlate.Generator, string, error) {
	client, err := llm.NewClient(
		llm.ConfigFromModel(a.cfg.LLM, a.cfg.Match.MaxTokens),
		llm.WithCache(cache.New(a.cfg.Cache), a.cfg.Cache.TTL),
		llm.WithLimiter(worker.NewLimiter(a.cfg.LLM.RequestsPerSecond, 1)),
	)
	if err != nil {
		if errors.Is(err, llm.ErrDisabled) {
			return nil, "", fmt.Errorf("no LLM provider configured: %w", err)
		}
		return nil, "", err
	}
	return client, client.ProviderName(), nil
}

// Method reports the strategy this analyzer matches with
func (a *Analyzer) Method() model.Method { return a.matcher.Method() }

// Requirements loads src and returns its requirements with lint issues
func (a *Analyzer) Requirements(ctx context.Context, src string) ([]model.Requirement, []validate.Issue, error) {
	doc, err := a.loader.Load(ctx, src)
	if err != nil {
		return nil, nil, fmt.Errorf("load requirements: %w", err)
	}
	reqs := a.extractor.Extract(doc.Content)
	return reqs, a.validator.Validate(reqs), nil
}

// Run correlates the requirement table at reqSrc with the report at
// reportSrc. Sources may be file paths or http(s) URLs.
func (a *Analyzer) Run(ctx context.Context, reqSrc, reportSrc string) (*model.Report, error) {
	reqs, err := a.LoadRequirements(ctx, reqSrc)
	if err != nil {
		return nil, err
	}
	return a.RunRequirements(ctx, reqSrc, reqs, reportSrc)
}

// LoadRequirements is Requirements with every lint issue logged as a
// warning
func (a *Analyzer) LoadRequirements(ctx context.Context, reqSrc string) ([]model.Requirement, error) {
	reqs, issues, err := a.Requirements(ctx, reqSrc)
	if err != nil {
		return nil, err
	}
	for _, issue := range issues {
		a.logger.WithFields(logrus.Fields{
			"code":  issue.Code,
			"field": issue.Field,
		}).Warn(issue.Message)
	}
	if len(reqs) == 0 {
		a.logger.WithField("source", reqSrc).Warn("No requirements recovered")
	}
	return reqs, nil
}

// RunRequirements correlates already recovered requirements with the
// report at reportSrc; reqSrc only labels the result.
func (a *Analyzer) RunRequirements(ctx context.Context, reqSrc string, reqs []model.Requirement, reportSrc string) (*model.Report, error) {
	doc, err := a.loader.Load(ctx, reportSrc)
	if err != nil {
		return nil, fmt.Errorf("load report: %w", err)
	}
	if doc.Truncated {
		a.logger.WithField("source", doc.Source).Warn("Report body truncated at size limit")
	}

	a.logger.WithFields(logrus.Fields{
		"requirements": len(reqs),
		"report_chars": len(doc.Content),
		"method":       a.matcher.Method(),
	}).Info("Starting correlation analysis")

	results := MatchAll(ctx, a.matcher, reqs, doc.Content, a.cfg.Concurrency.Workers)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("correlation cancelled: %w", err)
	}

	report := &model.Report{
		RunID:              uuid.NewString(),
		GeneratedAt:        time.Now().UTC(),
		RequirementsSource: reqSrc,
		ReportSource:       reportSrc,
		Strategy:           a.matcher.Method(),
		Fallback:           a.matcher.FellBack(),
		Results:            results,
	}
	if report.Strategy == model.MethodModel {
		report.Provider = a.provider
	}
	report.Summary = a.scorer.Summarize(results, report.Fallback)

	return report, nil
}

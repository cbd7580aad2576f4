package pipeline

import (
	"context"

	"github.com/ppiankov/disclose/internal/correlate"
	"github.com/ppiankov/disclose/internal/model"
	"github.com/ppiankov/disclose/internal/worker"
)

// MatchAll correlates every requirement against text with up to workers
// concurrent matches. Results keep requirement order. Requirements not
// reached before ctx is cancelled come back as not found.
func MatchAll(ctx context.Context, m *correlate.Matcher, reqs []model.Requirement, text string, workers int) []model.CorrelationResult {
	if workers <= 1 {
		return m.MatchAll(ctx, reqs, text)
	}

	results := worker.Ordered(ctx, workers, len(reqs), func(ctx context.Context, i int) model.CorrelationResult {
		return m.Match(ctx, reqs[i], text)
	})

	for i := range results {
		if results[i].Method == "" {
			results[i] = model.NotFound(reqs[i], m.Method(), "not evaluated: run cancelled")
		}
	}
	return results
}

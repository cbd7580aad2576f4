package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/ppiankov/disclose/internal/correlate"
	"github.com/ppiankov/disclose/internal/model"
)

// echoStrategy reports each requirement's code as its value
type echoStrategy struct{}

func (echoStrategy) Method() model.Method { return model.MethodModel }

func (echoStrategy) Match(ctx context.Context, req model.Requirement, text string) model.CorrelationResult {
	return model.CorrelationResult{Requirement: req, Found: true, Value: req.Code, Method: model.MethodModel}
}

func requirements(n int) []model.Requirement {
	reqs := make([]model.Requirement, n)
	for i := range reqs {
		reqs[i] = model.Requirement{Code: fmt.Sprintf("FN-IN-%03da.1", i), Metric: "Metric"}
	}
	return reqs
}

func TestMatchAll_PreservesOrder(t *testing.T) {
	m := correlate.NewMatcherWithStrategy(echoStrategy{}, nil)
	reqs := requirements(25)

	for _, workers := range []int{1, 4} {
		results := MatchAll(context.Background(), m, reqs, "text", workers)
		if len(results) != len(reqs) {
			t.Fatalf("workers=%d: expected %d results, got %d", workers, len(reqs), len(results))
		}
		for i, res := range results {
			if res.Requirement.Code != reqs[i].Code || res.Value != reqs[i].Code {
				t.Errorf("workers=%d: result %d out of order: %+v", workers, i, res)
			}
		}
	}
}

func TestMatchAll_Empty(t *testing.T) {
	m := correlate.NewMatcherWithStrategy(echoStrategy{}, nil)
	if results := MatchAll(context.Background(), m, nil, "text", 4); len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
}

func TestMatchAll_CancelledFillsNotFound(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := correlate.NewMatcherWithStrategy(echoStrategy{}, nil)
	reqs := requirements(10)

	results := MatchAll(ctx, m, reqs, "text", 3)
	if len(results) != len(reqs) {
		t.Fatalf("Expected %d results, got %d", len(reqs), len(results))
	}
	for i, res := range results {
		if res.Requirement.Code != reqs[i].Code {
			t.Errorf("Result %d has wrong requirement %s", i, res.Requirement.Code)
		}
		if res.Method != model.MethodModel {
			t.Errorf("Result %d has no method", i)
		}
	}
}

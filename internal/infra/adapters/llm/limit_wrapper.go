package llm

import (
	"context"

	"interview-ai-memo/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.SummaryAdapter = (*limitedSummary)(nil)

type limitedSummary struct {
	inner adapter.SummaryAdapter
	sem   chan struct{}
}

// NewLimitedSummary bounds concurrent generate calls across all pipeline
// invocations sharing the adapter.
func NewLimitedSummary(inner adapter.SummaryAdapter, maxConcurrent int) adapter.SummaryAdapter {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedSummary{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedSummary) Generate(ctx context.Context, req adapter.GenerateRequest) (string, error) {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	defer func() { <-l.sem }()
	return l.inner.Generate(ctx, req)
}

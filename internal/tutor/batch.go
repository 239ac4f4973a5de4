package tutor

import (
	"context"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/geulmoi/geulssaem/internal/model"
)

// EvaluateBatch scores submissions concurrently, at most parallel at a
// time. Results come back in input order. Each item is total, so the
// batch as a whole never fails.
func (t *Tutor) EvaluateBatch(ctx context.Context, reqs []EvaluateRequest, parallel int) []model.EvaluationResult {
	ctx, span := tracer.Start(ctx, "evaluate_batch",
		trace.WithAttributes(
			attribute.Int("batch.size", len(reqs)),

			// Langfuse trace-level attributes
			attribute.String("langfuse.trace.name", "geulssaem-batch"),
			attribute.StringSlice("langfuse.trace.tags", []string{"geulssaem", "batch"}),
		))
	defer span.End()

	if len(reqs) == 0 {
		return nil
	}

	parallel = clampParallel(parallel, len(reqs))
	results := make([]model.EvaluationResult, len(reqs))
	fallbacks := int64(0)

	var wg sync.WaitGroup
	sem := make(chan struct{}, parallel)

	for i, req := range reqs {
		wg.Add(1)
		go func(idx int, r EvaluateRequest) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			res := t.Evaluate(ctx, r)
			if res.Fallback != "" {
				atomic.AddInt64(&fallbacks, 1)
			}
			results[idx] = res
		}(i, req)
	}
	wg.Wait()

	span.SetAttributes(
		attribute.Int("batch.total", len(results)),
		attribute.Int("batch.fallbacks", int(fallbacks)),
	)
	return results
}

func clampParallel(parallel, n int) int {
	if parallel < 1 {
		return 1
	}
	if parallel > n {
		return n
	}
	return parallel
}

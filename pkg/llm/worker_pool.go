package llm

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// WorkerPool bounds the number of concurrent LLM call pipelines.
// The bound exists to cap simultaneous outbound API requests; overflow
// items simply queue on the semaphore.
type WorkerPool struct {
	maxConcurrent int
	logger        *zap.Logger
}

// NewWorkerPool creates a pool with the given concurrency bound.
func NewWorkerPool(maxConcurrent int, logger *zap.Logger) *WorkerPool {
	if maxConcurrent < 1 {
		maxConcurrent = 5
	}
	return &WorkerPool{
		maxConcurrent: maxConcurrent,
		logger:        logger.Named("llm-worker-pool"),
	}
}

// WorkItem is a unit of work tagged with its submission index.
type WorkItem[T any] struct {
	Index   int
	Execute func(ctx context.Context) (T, error)
}

// WorkResult pairs a completed item's output with its submission index.
// Callers that need deterministic ordering sort by Index.
type WorkResult[T any] struct {
	Index  int
	Result T
	Err    error
}

// Process executes all work items with bounded parallelism.
// Results arrive in completion order, not submission order. All items run
// even if some fail; cancel the context to stop early.
func Process[T any](ctx context.Context, pool *WorkerPool, items []WorkItem[T]) []WorkResult[T] {
	if len(items) == 0 {
		return nil
	}

	resultsChan := make(chan WorkResult[T], len(items))
	sem := make(chan struct{}, pool.maxConcurrent)

	var wg sync.WaitGroup
	for _, item := range items {
		wg.Add(1)
		go func(item WorkItem[T]) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				var zero T
				resultsChan <- WorkResult[T]{Index: item.Index, Result: zero, Err: ctx.Err()}
				return
			}

			result, err := item.Execute(ctx)
			resultsChan <- WorkResult[T]{Index: item.Index, Result: result, Err: err}
		}(item)
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	results := make([]WorkResult[T], 0, len(items))
	for result := range resultsChan {
		results = append(results, result)
	}
	return results
}

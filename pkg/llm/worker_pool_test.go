package llm

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestWorkerPool_Process_Success(t *testing.T) {
	pool := NewWorkerPool(2, zap.NewNop())

	items := []WorkItem[string]{
		{Index: 0, Execute: func(ctx context.Context) (string, error) { return "a", nil }},
		{Index: 1, Execute: func(ctx context.Context) (string, error) { return "b", nil }},
		{Index: 2, Execute: func(ctx context.Context) (string, error) { return "c", nil }},
	}

	results := Process(context.Background(), pool, items)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })
	for i, want := range []string{"a", "b", "c"} {
		if results[i].Err != nil {
			t.Errorf("item %d failed: %v", i, results[i].Err)
		}
		if results[i].Result != want {
			t.Errorf("item %d = %q, want %q", i, results[i].Result, want)
		}
	}
}

func TestWorkerPool_Process_ErrorsDoNotStopOthers(t *testing.T) {
	pool := NewWorkerPool(2, zap.NewNop())
	wantErr := errors.New("boom")

	items := []WorkItem[string]{
		{Index: 0, Execute: func(ctx context.Context) (string, error) { return "ok", nil }},
		{Index: 1, Execute: func(ctx context.Context) (string, error) { return "", wantErr }},
		{Index: 2, Execute: func(ctx context.Context) (string, error) { return "ok", nil }},
	}

	results := Process(context.Background(), pool, items)

	byIndex := make(map[int]WorkResult[string])
	for _, r := range results {
		byIndex[r.Index] = r
	}
	if byIndex[0].Err != nil || byIndex[2].Err != nil {
		t.Error("successful items should not report errors")
	}
	if !errors.Is(byIndex[1].Err, wantErr) {
		t.Errorf("item 1 err = %v, want %v", byIndex[1].Err, wantErr)
	}
}

func TestWorkerPool_Process_BoundsConcurrency(t *testing.T) {
	const bound = 3
	pool := NewWorkerPool(bound, zap.NewNop())

	var inFlight, peak int64
	var mu sync.Mutex

	items := make([]WorkItem[int], 10)
	for i := range items {
		items[i] = WorkItem[int]{Index: i, Execute: func(ctx context.Context) (int, error) {
			n := atomic.AddInt64(&inFlight, 1)
			mu.Lock()
			if n > peak {
				peak = n
			}
			mu.Unlock()
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt64(&inFlight, -1)
			return 0, nil
		}}
	}

	Process(context.Background(), pool, items)

	if peak > bound {
		t.Errorf("peak concurrency %d exceeded bound %d", peak, bound)
	}
}

func TestWorkerPool_Process_ContextCancelled(t *testing.T) {
	pool := NewWorkerPool(1, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})
	items := []WorkItem[string]{
		{Index: 0, Execute: func(ctx context.Context) (string, error) {
			close(started)
			<-ctx.Done()
			return "", ctx.Err()
		}},
		{Index: 1, Execute: func(ctx context.Context) (string, error) { return "never", nil }},
	}

	go func() {
		<-started
		cancel()
	}()

	results := Process(ctx, pool, items)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if r.Err == nil {
			t.Errorf("item %d should have failed after cancellation", r.Index)
		}
	}
}

func TestWorkerPool_Process_Empty(t *testing.T) {
	pool := NewWorkerPool(2, zap.NewNop())
	if results := Process[int](context.Background(), pool, nil); results != nil {
		t.Errorf("expected nil results for empty items, got %v", results)
	}
}

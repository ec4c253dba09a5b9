package jobs

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/ladle-labs/ladle-engine/pkg/llm"
	"github.com/ladle-labs/ladle-engine/pkg/models"
)

type ctxKey int

const (
	jobCtxKey ctxKey = iota
	stepCtxKey
)

// JobContext accumulates metadata for one workflow invocation. It rides the
// context so any code running under Run can attach usage or ad-hoc keys
// without threading the job through every signature. Safe for concurrent use.
type JobContext struct {
	JobID uuid.UUID

	mu    sync.Mutex
	usage llm.UsageStats
	used  bool
	extra map[string]any
}

// AddUsage folds token usage into the job's running total.
func (j *JobContext) AddUsage(u llm.UsageStats) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.usage.Add(u)
	j.used = true
}

// SetMeta records an ad-hoc metadata key on the job. Last write wins.
func (j *JobContext) SetMeta(key string, value any) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.extra == nil {
		j.extra = make(map[string]any)
	}
	j.extra[key] = value
}

func (j *JobContext) snapshot() models.AuditMetadata {
	j.mu.Lock()
	defer j.mu.Unlock()
	var meta models.AuditMetadata
	if j.used {
		usage := j.usage
		meta.Usage = &usage
	}
	if len(j.extra) > 0 {
		meta.Extra = make(map[string]any, len(j.extra))
		for k, v := range j.extra {
			meta.Extra[k] = v
		}
	}
	return meta
}

// StepContext carries the identity and metadata of the step currently
// executing. Safe for concurrent use.
type StepContext struct {
	StepID uuid.UUID
	Name   string

	mu    sync.Mutex
	usage llm.UsageStats
	used  bool
	extra map[string]any
}

// AddUsage folds token usage into the step's metadata.
func (s *StepContext) AddUsage(u llm.UsageStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usage.Add(u)
	s.used = true
}

// SetMeta records an ad-hoc metadata key on the step. Last write wins.
func (s *StepContext) SetMeta(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.extra == nil {
		s.extra = make(map[string]any)
	}
	s.extra[key] = value
}

func (s *StepContext) snapshot() models.AuditMetadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	var meta models.AuditMetadata
	if s.used {
		usage := s.usage
		meta.Usage = &usage
	}
	if len(s.extra) > 0 {
		meta.Extra = make(map[string]any, len(s.extra))
		for k, v := range s.extra {
			meta.Extra[k] = v
		}
	}
	return meta
}

func withJob(ctx context.Context, jc *JobContext) context.Context {
	return context.WithValue(ctx, jobCtxKey, jc)
}

func withStep(ctx context.Context, sc *StepContext) context.Context {
	return context.WithValue(ctx, stepCtxKey, sc)
}

// CurrentJob returns the running job's context, or nil when the caller is
// not executing under Run.
func CurrentJob(ctx context.Context) *JobContext {
	jc, _ := ctx.Value(jobCtxKey).(*JobContext)
	return jc
}

// CurrentStep returns the innermost running step's context, or nil when the
// caller is not executing under Step.
func CurrentStep(ctx context.Context) *StepContext {
	sc, _ := ctx.Value(stepCtxKey).(*StepContext)
	return sc
}

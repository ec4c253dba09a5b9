package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ladle-labs/ladle-engine/pkg/llm"
	"github.com/ladle-labs/ladle-engine/pkg/models"
	"github.com/ladle-labs/ladle-engine/pkg/repositories"
)

// Runner records workflow executions in the audit log. The log is write-only
// instrumentation: jobs and steps are never resumed or replayed from it.
type Runner struct {
	repo   repositories.JobRepository
	logger *zap.Logger
}

// NewRunner creates a new Runner.
func NewRunner(repo repositories.JobRepository, logger *zap.Logger) *Runner {
	return &Runner{
		repo:   repo,
		logger: logger.Named("jobs"),
	}
}

// Run executes fn as an audited workflow invocation. A job row is written
// before fn runs and finalized after it returns, success or failure. The
// context passed to fn carries the JobContext, so nested Step calls and
// usage accounting attach to this job. fn's error propagates unchanged.
//
// Run is a package function because methods cannot have type parameters.
func Run[T any](ctx context.Context, r *Runner, workflow string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	job := &models.Job{
		ID:           uuid.New(),
		WorkflowName: workflow,
		CreatedAt:    time.Now().UTC(),
	}
	if err := r.repo.CreateJob(ctx, job); err != nil {
		return zero, fmt.Errorf("failed to record job start: %w", err)
	}

	jc := &JobContext{JobID: job.ID}
	result, err := fn(withJob(ctx, jc))
	if err != nil {
		jc.SetMeta("error", err.Error())
	}

	// Finalize even when fn's failure canceled the context.
	finCtx := context.WithoutCancel(ctx)
	if finErr := r.repo.CompleteJob(finCtx, job.ID, time.Now().UTC(), jc.snapshot()); finErr != nil {
		r.logger.Error("failed to record job completion",
			zap.String("job_id", job.ID.String()),
			zap.String("workflow", workflow),
			zap.Error(finErr))
	}
	return result, err
}

// Step executes fn as an audited step of the current job. The step row is
// written with the JSON-marshaled input before fn runs and finalized with
// its output or error message after. When ctx carries no job, fn runs
// unrecorded.
func Step[In, Out any](ctx context.Context, r *Runner, name string, input In, fn func(ctx context.Context) (Out, error)) (Out, error) {
	var zero Out
	jc := CurrentJob(ctx)
	if jc == nil {
		return fn(ctx)
	}

	inputJSON, err := json.Marshal(input)
	if err != nil {
		r.logger.Warn("failed to marshal step input",
			zap.String("step", name),
			zap.Error(err))
		inputJSON = nil
	}
	step := &models.Step{
		ID:        uuid.New(),
		JobID:     jc.JobID,
		Name:      name,
		Input:     inputJSON,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.repo.CreateStep(ctx, step); err != nil {
		return zero, fmt.Errorf("failed to record step start: %w", err)
	}

	sc := &StepContext{StepID: step.ID, Name: name}
	result, fnErr := fn(withStep(ctx, sc))

	finCtx := context.WithoutCancel(ctx)
	now := time.Now().UTC()
	if fnErr != nil {
		stepErr := &models.StepError{Message: fnErr.Error()}
		if finErr := r.repo.FinishStep(finCtx, step.ID, now, nil, stepErr, sc.snapshot()); finErr != nil {
			r.logger.Error("failed to record step failure",
				zap.String("step", name),
				zap.Error(finErr))
		}
		return zero, fnErr
	}

	outputJSON, err := json.Marshal(result)
	if err != nil {
		r.logger.Warn("failed to marshal step output",
			zap.String("step", name),
			zap.Error(err))
		outputJSON = nil
	}
	if finErr := r.repo.FinishStep(finCtx, step.ID, now, outputJSON, nil, sc.snapshot()); finErr != nil {
		r.logger.Error("failed to record step completion",
			zap.String("step", name),
			zap.Error(finErr))
	}
	return result, nil
}

// LLMStep is Step for functions that report token usage. The usage lands in
// the step's metadata and is folded into the parent job's running total,
// even when fn fails after the model call.
func LLMStep[In, Out any](ctx context.Context, r *Runner, name string, input In, fn func(ctx context.Context) (Out, llm.UsageStats, error)) (Out, llm.UsageStats, error) {
	var usage llm.UsageStats
	result, err := Step(ctx, r, name, input, func(ctx context.Context) (Out, error) {
		out, u, fnErr := fn(ctx)
		usage = u
		if sc := CurrentStep(ctx); sc != nil {
			sc.AddUsage(u)
		}
		if jc := CurrentJob(ctx); jc != nil {
			jc.AddUsage(u)
		}
		return out, fnErr
	})
	return result, usage, err
}

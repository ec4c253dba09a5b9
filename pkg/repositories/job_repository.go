package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ladle-labs/ladle-engine/pkg/apperrors"
	"github.com/ladle-labs/ladle-engine/pkg/database"
	"github.com/ladle-labs/ladle-engine/pkg/models"
)

// JobRepository persists workflow audit records. Rows are written as the
// workflow runs: a job row at start, a step row per step start, and both
// finalized with completion timestamps and payloads.
type JobRepository interface {
	CreateJob(ctx context.Context, job *models.Job) error
	CompleteJob(ctx context.Context, id uuid.UUID, completedAt time.Time, metadata models.AuditMetadata) error
	CreateStep(ctx context.Context, step *models.Step) error
	FinishStep(ctx context.Context, id uuid.UUID, completedAt time.Time, output json.RawMessage, stepErr *models.StepError, metadata models.AuditMetadata) error
	GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error)
	ListRecent(ctx context.Context, limit int) ([]models.Job, error)
	ListSteps(ctx context.Context, jobID uuid.UUID) ([]models.Step, error)
}

type jobRepository struct {
	db *database.DB
}

// NewJobRepository creates a new JobRepository.
func NewJobRepository(db *database.DB) JobRepository {
	return &jobRepository{db: db}
}

var _ JobRepository = (*jobRepository)(nil)

func metadataJSON(m models.AuditMetadata) (any, error) {
	if m.IsZero() {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}
	return data, nil
}

func (r *jobRepository) CreateJob(ctx context.Context, job *models.Job) error {
	meta, err := metadataJSON(job.Metadata)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO jobs (id, workflow_name, metadata, created_at)
		VALUES ($1, $2, $3, $4)`,
		job.ID, job.WorkflowName, meta, job.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

func (r *jobRepository) CompleteJob(ctx context.Context, id uuid.UUID, completedAt time.Time, metadata models.AuditMetadata) error {
	meta, err := metadataJSON(metadata)
	if err != nil {
		return err
	}
	result, err := r.db.Exec(ctx, `
		UPDATE jobs SET completed_at = $2, metadata = $3 WHERE id = $1`,
		id, completedAt, meta,
	)
	if err != nil {
		return fmt.Errorf("failed to complete job %s: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *jobRepository) CreateStep(ctx context.Context, step *models.Step) error {
	meta, err := metadataJSON(step.Metadata)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO steps (id, job_id, name, input, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		step.ID, step.JobID, step.Name, step.Input, meta, step.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create step: %w", err)
	}
	return nil
}

func (r *jobRepository) FinishStep(ctx context.Context, id uuid.UUID, completedAt time.Time, output json.RawMessage, stepErr *models.StepError, metadata models.AuditMetadata) error {
	meta, err := metadataJSON(metadata)
	if err != nil {
		return err
	}
	var errJSON any
	if stepErr != nil {
		data, err := json.Marshal(stepErr)
		if err != nil {
			return fmt.Errorf("failed to marshal step error: %w", err)
		}
		errJSON = data
	}
	result, err := r.db.Exec(ctx, `
		UPDATE steps SET completed_at = $2, output = $3, error = $4, metadata = $5
		WHERE id = $1`,
		id, completedAt, output, errJSON, meta,
	)
	if err != nil {
		return fmt.Errorf("failed to finish step %s: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *jobRepository) GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	var job models.Job
	var meta []byte
	err := r.db.QueryRow(ctx, `
		SELECT id, workflow_name, metadata, created_at, completed_at
		FROM jobs WHERE id = $1`, id,
	).Scan(&job.ID, &job.WorkflowName, &meta, &job.CreatedAt, &job.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job %s: %w", id, err)
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &job.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal job metadata: %w", err)
		}
	}
	return &job, nil
}

func (r *jobRepository) ListRecent(ctx context.Context, limit int) ([]models.Job, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, workflow_name, metadata, created_at, completed_at
		FROM jobs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []models.Job
	for rows.Next() {
		var job models.Job
		var meta []byte
		if err := rows.Scan(&job.ID, &job.WorkflowName, &meta, &job.CreatedAt, &job.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &job.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal job metadata: %w", err)
			}
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (r *jobRepository) ListSteps(ctx context.Context, jobID uuid.UUID) ([]models.Step, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, job_id, name, input, output, error, metadata, created_at, completed_at
		FROM steps WHERE job_id = $1 ORDER BY created_at`, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list steps: %w", err)
	}
	defer rows.Close()

	var steps []models.Step
	for rows.Next() {
		var step models.Step
		var errData, meta []byte
		if err := rows.Scan(&step.ID, &step.JobID, &step.Name, &step.Input, &step.Output, &errData, &meta, &step.CreatedAt, &step.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}
		if len(errData) > 0 {
			step.Error = &models.StepError{}
			if err := json.Unmarshal(errData, step.Error); err != nil {
				return nil, fmt.Errorf("failed to unmarshal step error: %w", err)
			}
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &step.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal step metadata: %w", err)
			}
		}
		steps = append(steps, step)
	}
	return steps, rows.Err()
}

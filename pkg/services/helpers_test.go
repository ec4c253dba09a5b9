package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ladle-labs/ladle-engine/pkg/apperrors"
	"github.com/ladle-labs/ladle-engine/pkg/jobs"
	"github.com/ladle-labs/ladle-engine/pkg/models"
	"github.com/ladle-labs/ladle-engine/pkg/repositories"
)

// fakeIngredientRepo is an in-memory catalog for tests. Lookup semantics
// mirror the SQL implementation: normalized exact match for FindByName,
// word containment for FindSimilar.
type fakeIngredientRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*models.StandardizedIngredient
	subs   map[int64][]string
}

func newFakeIngredientRepo() *fakeIngredientRepo {
	return &fakeIngredientRepo{
		nextID: 1,
		rows:   make(map[int64]*models.StandardizedIngredient),
		subs:   make(map[int64][]string),
	}
}

func (f *fakeIngredientRepo) seed(names ...string) {
	for _, name := range names {
		_, _ = f.Create(context.Background(), name)
	}
}

func (f *fakeIngredientRepo) GetByID(_ context.Context, id int64) (*models.StandardizedIngredient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *row
	return &copied, nil
}

func (f *fakeIngredientRepo) FindByName(_ context.Context, name string) (*models.StandardizedIngredient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	normalized := repositories.NormalizeIngredientName(name)
	for _, row := range f.rows {
		if strings.ToLower(row.Name) == normalized {
			copied := *row
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeIngredientRepo) FindSimilar(_ context.Context, name string, limit int) ([]models.IngredientRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	words := strings.Fields(repositories.NormalizeIngredientName(name))
	var refs []models.IngredientRef
	for id := int64(1); id < f.nextID && len(refs) < limit; id++ {
		row, ok := f.rows[id]
		if !ok {
			continue
		}
		for _, word := range words {
			if strings.Contains(strings.ToLower(row.Name), word) {
				refs = append(refs, models.IngredientRef{ID: row.ID, Name: row.Name})
				break
			}
		}
	}
	return refs, nil
}

func (f *fakeIngredientRepo) Create(_ context.Context, name string) (*models.StandardizedIngredient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row := &models.StandardizedIngredient{ID: f.nextID, Name: name, CreatedAt: time.Now()}
	f.rows[row.ID] = row
	f.nextID++
	copied := *row
	return &copied, nil
}

func (f *fakeIngredientRepo) Rename(_ context.Context, id int64, name string) (*models.StandardizedIngredient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	row.Name = name
	copied := *row
	return &copied, nil
}

func (f *fakeIngredientRepo) List(_ context.Context) ([]models.StandardizedIngredient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.StandardizedIngredient
	for id := int64(1); id < f.nextID; id++ {
		if row, ok := f.rows[id]; ok {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeIngredientRepo) ReplaceSubstitutions(_ context.Context, ingredientID int64, substitutions []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs[ingredientID] = append([]string(nil), substitutions...)
	return nil
}

func (f *fakeIngredientRepo) ListSubstitutions(_ context.Context, ingredientID int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.subs[ingredientID]...), nil
}

var _ repositories.IngredientRepository = (*fakeIngredientRepo)(nil)

// fakeJobRepo records audit writes in memory.
type fakeJobRepo struct {
	mu    sync.Mutex
	jobs  map[uuid.UUID]*models.Job
	steps []*models.Step
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[uuid.UUID]*models.Job)}
}

func (f *fakeJobRepo) CreateJob(_ context.Context, job *models.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *job
	f.jobs[job.ID] = &copied
	return nil
}

func (f *fakeJobRepo) CompleteJob(_ context.Context, id uuid.UUID, completedAt time.Time, metadata models.AuditMetadata) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return errors.New("job not found")
	}
	job.CompletedAt = &completedAt
	job.Metadata = metadata
	return nil
}

func (f *fakeJobRepo) CreateStep(_ context.Context, step *models.Step) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *step
	f.steps = append(f.steps, &copied)
	return nil
}

func (f *fakeJobRepo) FinishStep(_ context.Context, id uuid.UUID, completedAt time.Time, output json.RawMessage, stepErr *models.StepError, metadata models.AuditMetadata) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, step := range f.steps {
		if step.ID == id {
			step.CompletedAt = &completedAt
			step.Output = output
			step.Error = stepErr
			step.Metadata = metadata
			return nil
		}
	}
	return errors.New("step not found")
}

func (f *fakeJobRepo) GetJob(_ context.Context, id uuid.UUID) (*models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return job, nil
}

func (f *fakeJobRepo) ListRecent(_ context.Context, _ int) ([]models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Job
	for _, job := range f.jobs {
		out = append(out, *job)
	}
	return out, nil
}

func (f *fakeJobRepo) ListSteps(_ context.Context, jobID uuid.UUID) ([]models.Step, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Step
	for _, step := range f.steps {
		if step.JobID == jobID {
			out = append(out, *step)
		}
	}
	return out, nil
}

func (f *fakeJobRepo) stepNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, len(f.steps))
	for i, step := range f.steps {
		names[i] = step.Name
	}
	return names
}

var _ repositories.JobRepository = (*fakeJobRepo)(nil)

func testRunner() *jobs.Runner {
	return jobs.NewRunner(newFakeJobRepo(), zap.NewNop())
}

func newRunnerWith(repo repositories.JobRepository) *jobs.Runner {
	return jobs.NewRunner(repo, zap.NewNop())
}

// runWorkflow wraps fn in a recorded job so audit steps have a parent.
func runWorkflow(runner *jobs.Runner, fn func(ctx context.Context) error) (int, error) {
	return jobs.Run(context.Background(), runner, "test-workflow", func(ctx context.Context) (int, error) {
		return 0, fn(ctx)
	})
}

// parsedJSON renders a parser response for the mock client.
func parsedJSON(quantity, unit, name, note string) string {
	enc := func(s string) string {
		if s == "" {
			return "null"
		}
		data, _ := json.Marshal(s)
		return string(data)
	}
	return fmt.Sprintf(`{"quantity": %s, "unit": %s, "name": %s, "note": %s}`,
		enc(quantity), enc(unit), enc(name), enc(note))
}

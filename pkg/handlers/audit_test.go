package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ladle-labs/ladle-engine/pkg/apperrors"
	"github.com/ladle-labs/ladle-engine/pkg/models"
	"github.com/ladle-labs/ladle-engine/pkg/repositories"
)

type fakeJobRepo struct {
	jobs  map[uuid.UUID]*models.Job
	steps map[uuid.UUID][]models.Step
	order []uuid.UUID
}

var _ repositories.JobRepository = (*fakeJobRepo)(nil)

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{
		jobs:  map[uuid.UUID]*models.Job{},
		steps: map[uuid.UUID][]models.Step{},
	}
}

func (f *fakeJobRepo) addJob(workflow string, steps ...models.Step) uuid.UUID {
	id := uuid.New()
	now := time.Now().UTC()
	f.jobs[id] = &models.Job{ID: id, WorkflowName: workflow, CreatedAt: now, CompletedAt: &now}
	f.steps[id] = steps
	f.order = append(f.order, id)
	return id
}

func (f *fakeJobRepo) CreateJob(ctx context.Context, job *models.Job) error { return nil }

func (f *fakeJobRepo) CompleteJob(ctx context.Context, id uuid.UUID, completedAt time.Time, metadata models.AuditMetadata) error {
	return nil
}

func (f *fakeJobRepo) CreateStep(ctx context.Context, step *models.Step) error { return nil }

func (f *fakeJobRepo) FinishStep(ctx context.Context, id uuid.UUID, completedAt time.Time, output json.RawMessage, stepErr *models.StepError, metadata models.AuditMetadata) error {
	return nil
}

func (f *fakeJobRepo) GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	job, ok := f.jobs[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return job, nil
}

func (f *fakeJobRepo) ListRecent(ctx context.Context, limit int) ([]models.Job, error) {
	var out []models.Job
	for i := len(f.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *f.jobs[f.order[i]])
	}
	return out, nil
}

func (f *fakeJobRepo) ListSteps(ctx context.Context, jobID uuid.UUID) ([]models.Step, error) {
	return f.steps[jobID], nil
}

func newAuditMux(repo *fakeJobRepo) *http.ServeMux {
	mux := http.NewServeMux()
	NewAuditHandler(repo, zap.NewNop()).RegisterRoutes(mux)
	return mux
}

func TestAuditList(t *testing.T) {
	repo := newFakeJobRepo()
	jobID := repo.addJob("add-recipe", models.Step{
		ID:    uuid.New(),
		JobID: uuid.Nil,
		Name:  "scrape-data",
	})
	repo.addJob("add-recipe")

	rec := httptest.NewRecorder()
	newAuditMux(repo).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body []JobDetailResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 2)
	// Most recent first; the older job carries the step
	assert.Equal(t, jobID, body[1].Job.ID)
	require.Len(t, body[1].Steps, 1)
	assert.Equal(t, "scrape-data", body[1].Steps[0].Name)
	assert.NotNil(t, body[0].Steps)
}

func TestAuditListInvalidLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	newAuditMux(newFakeJobRepo()).ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/api/jobs?limit=zero", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuditGet(t *testing.T) {
	repo := newFakeJobRepo()
	jobID := repo.addJob("add-recipe", models.Step{ID: uuid.New(), Name: "extract-recipe"})

	rec := httptest.NewRecorder()
	newAuditMux(repo).ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/api/jobs/"+jobID.String(), nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body JobDetailResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, jobID, body.Job.ID)
	require.Len(t, body.Steps, 1)
	assert.Equal(t, "extract-recipe", body.Steps[0].Name)
}

func TestAuditGetNotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	newAuditMux(newFakeJobRepo()).ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/api/jobs/"+uuid.NewString(), nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuditGetInvalidID(t *testing.T) {
	rec := httptest.NewRecorder()
	newAuditMux(newFakeJobRepo()).ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/api/jobs/not-a-uuid", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

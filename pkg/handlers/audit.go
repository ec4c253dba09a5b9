package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/ladle-labs/ladle-engine/pkg/models"
	"github.com/ladle-labs/ladle-engine/pkg/repositories"
)

// JobDetailResponse is a job with its recorded steps.
type JobDetailResponse struct {
	Job   *models.Job   `json:"job"`
	Steps []models.Step `json:"steps"`
}

// AuditHandler exposes the workflow audit log: recent jobs and the step
// breakdown of one job, usage and errors included.
type AuditHandler struct {
	jobs   repositories.JobRepository
	logger *zap.Logger
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(jobs repositories.JobRepository, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{jobs: jobs, logger: logger}
}

// RegisterRoutes registers the audit handler's routes on the given mux.
func (h *AuditHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/jobs", h.List)
	mux.HandleFunc("GET /api/jobs/{jid}", h.Get)
}

// List handles GET /api/jobs. Accepts an optional limit query parameter.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			_ = ErrorResponse(w, http.StatusBadRequest, "invalid_limit", "Invalid limit parameter")
			return
		}
		limit = parsed
	}

	jobs, err := h.jobs.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list jobs", zap.Error(err))
		_ = ServiceError(w, err)
		return
	}

	detail := make([]JobDetailResponse, 0, len(jobs))
	for i := range jobs {
		steps, err := h.jobs.ListSteps(r.Context(), jobs[i].ID)
		if err != nil {
			h.logger.Error("Failed to list steps", zap.Error(err))
			_ = ServiceError(w, err)
			return
		}
		if steps == nil {
			steps = []models.Step{}
		}
		detail = append(detail, JobDetailResponse{Job: &jobs[i], Steps: steps})
	}
	if err := WriteJSON(w, http.StatusOK, detail); err != nil {
		h.logger.Error("Failed to encode jobs response", zap.Error(err))
	}
}

// Get handles GET /api/jobs/{jid}.
func (h *AuditHandler) Get(w http.ResponseWriter, r *http.Request) {
	jobID, ok := ParseJobID(w, r, h.logger)
	if !ok {
		return
	}

	job, err := h.jobs.GetJob(r.Context(), jobID)
	if err != nil {
		_ = ServiceError(w, err)
		return
	}
	steps, err := h.jobs.ListSteps(r.Context(), jobID)
	if err != nil {
		h.logger.Error("Failed to list steps", zap.Error(err))
		_ = ServiceError(w, err)
		return
	}
	if steps == nil {
		steps = []models.Step{}
	}

	if err := WriteJSON(w, http.StatusOK, JobDetailResponse{Job: job, Steps: steps}); err != nil {
		h.logger.Error("Failed to encode job response", zap.Error(err))
	}
}

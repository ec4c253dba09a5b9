package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ParseID extracts and validates a numeric id from the request path.
// Returns the parsed id and true on success, or 0 and false after writing
// an error response.
func ParseID(w http.ResponseWriter, r *http.Request, param string, logger *zap.Logger) (int64, bool) {
	raw := r.PathValue(param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_id", "Invalid "+param+" format"); err != nil {
			logger.Error("Failed to encode error response", zap.Error(err))
		}
		return 0, false
	}
	return id, true
}

// ParseJobID extracts and validates a job UUID from the request path.
// Expects path parameter: jid
func ParseJobID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("jid"))
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_job_id", "Invalid job ID format"); err != nil {
			logger.Error("Failed to encode error response", zap.Error(err))
		}
		return uuid.Nil, false
	}
	return id, true
}

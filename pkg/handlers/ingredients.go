package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/ladle-labs/ladle-engine/pkg/services"
)

// RenameIngredientRequest is the body of PATCH /api/ingredients/{id}.
type RenameIngredientRequest struct {
	Name string `json:"name"`
}

// SubstitutionsRequest is the body of PUT /api/ingredients/{id}/substitution.
type SubstitutionsRequest struct {
	Substitutions []string `json:"substitutions"`
}

// IngredientsHandler handles standardized ingredient catalog requests.
type IngredientsHandler struct {
	catalog *services.CatalogService
	logger  *zap.Logger
}

// NewIngredientsHandler creates a new ingredients handler.
func NewIngredientsHandler(catalog *services.CatalogService, logger *zap.Logger) *IngredientsHandler {
	return &IngredientsHandler{catalog: catalog, logger: logger}
}

// RegisterRoutes registers the ingredients handler's routes on the given mux.
func (h *IngredientsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/ingredients", h.List)
	mux.HandleFunc("PATCH /api/ingredients/{id}", h.Rename)
	mux.HandleFunc("GET /api/ingredients/{id}/substitution", h.GetSubstitutions)
	mux.HandleFunc("PUT /api/ingredients/{id}/substitution", h.SetSubstitutions)
}

// List handles GET /api/ingredients.
func (h *IngredientsHandler) List(w http.ResponseWriter, r *http.Request) {
	ingredients, err := h.catalog.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list ingredients", zap.Error(err))
		_ = ServiceError(w, err)
		return
	}
	if err := WriteJSON(w, http.StatusOK, ingredients); err != nil {
		h.logger.Error("Failed to encode ingredients response", zap.Error(err))
	}
}

// Rename handles PATCH /api/ingredients/{id}.
func (h *IngredientsHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req RenameIngredientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if req.Name == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_name", "Name must not be empty")
		return
	}

	renamed, err := h.catalog.Rename(r.Context(), id, req.Name)
	if err != nil {
		_ = ServiceError(w, err)
		return
	}
	if err := WriteJSON(w, http.StatusOK, renamed); err != nil {
		h.logger.Error("Failed to encode rename response", zap.Error(err))
	}
}

// GetSubstitutions handles GET /api/ingredients/{id}/substitution.
func (h *IngredientsHandler) GetSubstitutions(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(w, r, "id", h.logger)
	if !ok {
		return
	}

	subs, err := h.catalog.GetSubstitutions(r.Context(), id)
	if err != nil {
		_ = ServiceError(w, err)
		return
	}
	if subs == nil {
		subs = []string{}
	}
	if err := WriteJSON(w, http.StatusOK, map[string][]string{"substitutions": subs}); err != nil {
		h.logger.Error("Failed to encode substitutions response", zap.Error(err))
	}
}

// SetSubstitutions handles PUT /api/ingredients/{id}/substitution.
func (h *IngredientsHandler) SetSubstitutions(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req SubstitutionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	stored, err := h.catalog.SetSubstitutions(r.Context(), id, req.Substitutions)
	if err != nil {
		_ = ServiceError(w, err)
		return
	}
	if err := WriteJSON(w, http.StatusOK, map[string][]string{"substitutions": stored}); err != nil {
		h.logger.Error("Failed to encode substitutions response", zap.Error(err))
	}
}

package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/ladle-labs/ladle-engine/pkg/services"
)

// FetchRecipeRequest is the body of POST /api/recipes/fetch.
type FetchRecipeRequest struct {
	URL string `json:"url"`
}

// FetchRecipeResponse reports the imported recipe's id.
type FetchRecipeResponse struct {
	Status string `json:"status"`
	ID     int64  `json:"id"`
}

// RecipesHandler handles recipe-related HTTP requests.
type RecipesHandler struct {
	importService *services.RecipeImportService
	recipeService *services.RecipeService
	logger        *zap.Logger
}

// NewRecipesHandler creates a new recipes handler.
func NewRecipesHandler(importService *services.RecipeImportService, recipeService *services.RecipeService, logger *zap.Logger) *RecipesHandler {
	return &RecipesHandler{
		importService: importService,
		recipeService: recipeService,
		logger:        logger,
	}
}

// RegisterRoutes registers the recipes handler's routes on the given mux.
func (h *RecipesHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/recipes/fetch", h.Fetch)
	mux.HandleFunc("GET /api/recipes", h.List)
	mux.HandleFunc("GET /api/recipes/{id}", h.Get)
	mux.HandleFunc("DELETE /api/recipes/{id}", h.Delete)
}

// Fetch handles POST /api/recipes/fetch.
// Imports the recipe at the given URL through the full pipeline.
func (h *RecipesHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	var req FetchRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	req.URL = strings.TrimSpace(req.URL)
	parsed, err := url.Parse(req.URL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_url", "A valid http(s) URL is required")
		return
	}

	id, err := h.importService.ImportFromURL(r.Context(), req.URL)
	if err != nil {
		h.logger.Error("Recipe import failed",
			zap.String("url", req.URL),
			zap.Error(err))
		_ = ServiceError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, FetchRecipeResponse{Status: "created", ID: id}); err != nil {
		h.logger.Error("Failed to encode fetch response", zap.Error(err))
	}
}

// List handles GET /api/recipes.
func (h *RecipesHandler) List(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.recipeService.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list recipes", zap.Error(err))
		_ = ServiceError(w, err)
		return
	}
	if err := WriteJSON(w, http.StatusOK, recipes); err != nil {
		h.logger.Error("Failed to encode recipes response", zap.Error(err))
	}
}

// Get handles GET /api/recipes/{id}.
func (h *RecipesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(w, r, "id", h.logger)
	if !ok {
		return
	}

	recipe, err := h.recipeService.Get(r.Context(), id)
	if err != nil {
		_ = ServiceError(w, err)
		return
	}
	if err := WriteJSON(w, http.StatusOK, recipe); err != nil {
		h.logger.Error("Failed to encode recipe response", zap.Error(err))
	}
}

// Delete handles DELETE /api/recipes/{id}.
func (h *RecipesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.recipeService.Delete(r.Context(), id); err != nil {
		_ = ServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

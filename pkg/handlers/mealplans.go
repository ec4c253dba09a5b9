package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/ladle-labs/ladle-engine/pkg/models"
	"github.com/ladle-labs/ladle-engine/pkg/repositories"
	"github.com/ladle-labs/ladle-engine/pkg/services"
)

// AddMealRequest is the body of POST /api/meal-plan/meals.
type AddMealRequest struct {
	Day      models.DayOfWeek `json:"day"`
	MealType models.MealType  `json:"mealType"`
	RecipeID int64            `json:"recipeId"`
}

// UpdateMealPlanRequest is the body of PATCH /api/meal-plan.
type UpdateMealPlanRequest struct {
	WeekStartDay models.DayOfWeek `json:"weekStartDay"`
}

// MealPlansHandler handles weekly meal plan requests. Requests act on the
// default user's plan.
type MealPlansHandler struct {
	mealPlans *services.MealPlanService
	users     repositories.UserRepository
	logger    *zap.Logger
}

// NewMealPlansHandler creates a new meal plans handler.
func NewMealPlansHandler(mealPlans *services.MealPlanService, users repositories.UserRepository, logger *zap.Logger) *MealPlansHandler {
	return &MealPlansHandler{
		mealPlans: mealPlans,
		users:     users,
		logger:    logger,
	}
}

// RegisterRoutes registers the meal plans handler's routes on the given mux.
func (h *MealPlansHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/meal-plan", h.Get)
	mux.HandleFunc("PATCH /api/meal-plan/settings", h.Update)
	mux.HandleFunc("POST /api/meal-plan/meals", h.AddMeal)
	mux.HandleFunc("DELETE /api/meal-plan/meals/{id}", h.RemoveMeal)
}

func (h *MealPlansHandler) plan(w http.ResponseWriter, r *http.Request) (*models.MealPlan, bool) {
	user, err := h.users.GetDefault(r.Context())
	if err != nil {
		h.logger.Error("Failed to resolve default user", zap.Error(err))
		_ = ServiceError(w, err)
		return nil, false
	}
	plan, err := h.mealPlans.GetPlan(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("Failed to load meal plan", zap.Error(err))
		_ = ServiceError(w, err)
		return nil, false
	}
	return plan, true
}

// Get handles GET /api/meal-plan.
func (h *MealPlansHandler) Get(w http.ResponseWriter, r *http.Request) {
	plan, ok := h.plan(w, r)
	if !ok {
		return
	}
	if err := WriteJSON(w, http.StatusOK, plan); err != nil {
		h.logger.Error("Failed to encode meal plan response", zap.Error(err))
	}
}

// Update handles PATCH /api/meal-plan.
func (h *MealPlansHandler) Update(w http.ResponseWriter, r *http.Request) {
	plan, ok := h.plan(w, r)
	if !ok {
		return
	}

	var req UpdateMealPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if !models.ValidDayOfWeek(req.WeekStartDay) {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_day", "Invalid week start day")
		return
	}

	if err := h.mealPlans.SetWeekStart(r.Context(), plan.ID, req.WeekStartDay); err != nil {
		_ = ServiceError(w, err)
		return
	}

	updated, ok := h.plan(w, r)
	if !ok {
		return
	}
	if err := WriteJSON(w, http.StatusOK, updated); err != nil {
		h.logger.Error("Failed to encode meal plan response", zap.Error(err))
	}
}

// AddMeal handles POST /api/meal-plan/meals.
func (h *MealPlansHandler) AddMeal(w http.ResponseWriter, r *http.Request) {
	plan, ok := h.plan(w, r)
	if !ok {
		return
	}

	var req AddMealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	mealID, err := h.mealPlans.AddMeal(r.Context(), plan.ID, req.Day, req.MealType, req.RecipeID)
	if err != nil {
		_ = ServiceError(w, err)
		return
	}
	if err := WriteJSON(w, http.StatusCreated, map[string]int64{"id": mealID}); err != nil {
		h.logger.Error("Failed to encode add meal response", zap.Error(err))
	}
}

// RemoveMeal handles DELETE /api/meal-plan/meals/{id}.
func (h *MealPlansHandler) RemoveMeal(w http.ResponseWriter, r *http.Request) {
	plan, ok := h.plan(w, r)
	if !ok {
		return
	}

	mealID, ok := ParseID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.mealPlans.RemoveMeal(r.Context(), plan.ID, mealID); err != nil {
		_ = ServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/ladle-labs/ladle-engine/pkg/models"
	"github.com/ladle-labs/ladle-engine/pkg/repositories"
	"github.com/ladle-labs/ladle-engine/pkg/services"
)

// ReplaceShoppingListRequest is the body of PUT /api/shopping-list.
type ReplaceShoppingListRequest struct {
	Items []models.NewShoppingListItem `json:"items"`
}

// CheckItemRequest is the body of PATCH /api/shopping-list/items/{id}.
type CheckItemRequest struct {
	Checked bool `json:"checked"`
}

// ShoppingListsHandler handles shopping list requests for the default
// user's meal plan.
type ShoppingListsHandler struct {
	shoppingLists *services.ShoppingListService
	mealPlans     *services.MealPlanService
	users         repositories.UserRepository
	logger        *zap.Logger
}

// NewShoppingListsHandler creates a new shopping lists handler.
func NewShoppingListsHandler(shoppingLists *services.ShoppingListService, mealPlans *services.MealPlanService, users repositories.UserRepository, logger *zap.Logger) *ShoppingListsHandler {
	return &ShoppingListsHandler{
		shoppingLists: shoppingLists,
		mealPlans:     mealPlans,
		users:         users,
		logger:        logger,
	}
}

// RegisterRoutes registers the shopping lists handler's routes on the mux.
func (h *ShoppingListsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/shopping-list", h.Get)
	mux.HandleFunc("POST /api/shopping-list", h.Replace)
	mux.HandleFunc("DELETE /api/shopping-list", h.Clear)
	mux.HandleFunc("PATCH /api/shopping-list/items/{id}", h.SetChecked)
}

func (h *ShoppingListsHandler) resolve(w http.ResponseWriter, r *http.Request) (userID, planID int64, ok bool) {
	user, err := h.users.GetDefault(r.Context())
	if err != nil {
		h.logger.Error("Failed to resolve default user", zap.Error(err))
		_ = ServiceError(w, err)
		return 0, 0, false
	}
	plan, err := h.mealPlans.GetPlan(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("Failed to load meal plan", zap.Error(err))
		_ = ServiceError(w, err)
		return 0, 0, false
	}
	return user.ID, plan.ID, true
}

// Get handles GET /api/shopping-list.
func (h *ShoppingListsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, planID, ok := h.resolve(w, r)
	if !ok {
		return
	}

	list, err := h.shoppingLists.Get(r.Context(), userID, planID)
	if err != nil {
		_ = ServiceError(w, err)
		return
	}
	if err := WriteJSON(w, http.StatusOK, list); err != nil {
		h.logger.Error("Failed to encode shopping list response", zap.Error(err))
	}
}

// Replace handles PUT /api/shopping-list.
func (h *ShoppingListsHandler) Replace(w http.ResponseWriter, r *http.Request) {
	userID, planID, ok := h.resolve(w, r)
	if !ok {
		return
	}

	var req ReplaceShoppingListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	list, err := h.shoppingLists.Replace(r.Context(), userID, planID, req.Items)
	if err != nil {
		_ = ServiceError(w, err)
		return
	}
	if err := WriteJSON(w, http.StatusOK, list); err != nil {
		h.logger.Error("Failed to encode shopping list response", zap.Error(err))
	}
}

// Clear handles DELETE /api/shopping-list.
func (h *ShoppingListsHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, planID, ok := h.resolve(w, r)
	if !ok {
		return
	}

	if err := h.shoppingLists.Clear(r.Context(), userID, planID); err != nil {
		_ = ServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetChecked handles PATCH /api/shopping-list/items/{id}.
func (h *ShoppingListsHandler) SetChecked(w http.ResponseWriter, r *http.Request) {
	userID, planID, ok := h.resolve(w, r)
	if !ok {
		return
	}

	itemID, ok := ParseID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req CheckItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	if err := h.shoppingLists.SetChecked(r.Context(), userID, planID, itemID, req.Checked); err != nil {
		_ = ServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/larder/internal/auth"
	"github.com/dukerupert/larder/internal/service"
	"github.com/dukerupert/larder/internal/websocket"
)

type RecipeHandler struct {
	recipes *service.RecipeService
	hub     *websocket.Hub
	logger  *slog.Logger
}

func NewRecipeHandler(rs *service.RecipeService, hub *websocket.Hub, logger *slog.Logger) *RecipeHandler {
	return &RecipeHandler{recipes: rs, hub: hub, logger: logger}
}

func (h *RecipeHandler) notify(householdID, recipeID int64, action string) {
	if h.hub != nil {
		h.hub.Broadcast(householdID, websocket.NewMessage("recipe", action, recipeID, nil))
	}
}

// List handles GET /api/households/{id}/recipes.
func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	householdID, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid household id")
		return
	}

	recipes, err := h.recipes.List(householdID, auth.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"recipes": recipes})
}

// Create handles POST /api/households/{id}/recipes.
func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	householdID, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid household id")
		return
	}

	var req service.RecipeInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidJSON(w)
		return
	}

	recipe, err := h.recipes.Create(householdID, auth.UserID(r.Context()), req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.notify(householdID, recipe.ID, "created")
	writeJSON(w, http.StatusCreated, map[string]any{"recipe": recipe})
}

// Get handles GET /api/households/{id}/recipes/{recipeId}.
func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	householdID, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid household id")
		return
	}
	recipeID, err := parseIDParam(r, "recipeId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid recipe id")
		return
	}

	recipe, err := h.recipes.Get(householdID, auth.UserID(r.Context()), recipeID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"recipe": recipe})
}

// Update handles PUT /api/households/{id}/recipes/{recipeId}.
func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	householdID, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid household id")
		return
	}
	recipeID, err := parseIDParam(r, "recipeId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid recipe id")
		return
	}

	var req service.RecipeInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidJSON(w)
		return
	}

	recipe, err := h.recipes.Update(householdID, auth.UserID(r.Context()), recipeID, req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.notify(householdID, recipeID, "updated")
	writeJSON(w, http.StatusOK, map[string]any{"recipe": recipe})
}

// Delete handles DELETE /api/households/{id}/recipes/{recipeId}.
func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	householdID, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid household id")
		return
	}
	recipeID, err := parseIDParam(r, "recipeId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid recipe id")
		return
	}

	if err := h.recipes.Delete(householdID, auth.UserID(r.Context()), recipeID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.notify(householdID, recipeID, "deleted")
	w.WriteHeader(http.StatusNoContent)
}

// Generate handles POST /api/households/{id}/recipes/generate.
func (h *RecipeHandler) Generate(w http.ResponseWriter, r *http.Request) {
	householdID, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid household id")
		return
	}

	var req service.GenerateInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidJSON(w)
		return
	}

	recipe, err := h.recipes.Generate(r.Context(), householdID, auth.UserID(r.Context()), req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.notify(householdID, recipe.ID, "created")
	writeJSON(w, http.StatusCreated, map[string]any{"recipe": recipe})
}

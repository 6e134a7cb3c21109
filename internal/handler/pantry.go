package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/larder/internal/auth"
	"github.com/dukerupert/larder/internal/service"
	"github.com/dukerupert/larder/internal/websocket"
)

type PantryHandler struct {
	pantry *service.PantryService
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewPantryHandler(ps *service.PantryService, hub *websocket.Hub, logger *slog.Logger) *PantryHandler {
	return &PantryHandler{pantry: ps, hub: hub, logger: logger}
}

func (h *PantryHandler) notify(householdID, itemID int64, action string) {
	if h.hub != nil {
		h.hub.Broadcast(householdID, websocket.NewMessage("pantry_item", action, itemID, nil))
	}
}

// Get handles GET /api/households/{id}/pantry.
func (h *PantryHandler) Get(w http.ResponseWriter, r *http.Request) {
	householdID, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid household id")
		return
	}

	pantry, items, err := h.pantry.Get(householdID, auth.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pantry": pantry, "items": items})
}

type addItemsRequest struct {
	Items []service.ItemInput `json:"items"`
}

// AddItems handles POST /api/households/{id}/pantry/items.
func (h *PantryHandler) AddItems(w http.ResponseWriter, r *http.Request) {
	householdID, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid household id")
		return
	}

	var req addItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidJSON(w)
		return
	}

	items, err := h.pantry.AddItems(householdID, auth.UserID(r.Context()), req.Items)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.notify(householdID, 0, "created")
	writeJSON(w, http.StatusCreated, map[string]any{"items": items})
}

type updateItemRequest struct {
	Quantity *float64 `json:"quantity"`
	Unit     *string  `json:"unit"`
}

// UpdateItem handles PATCH /api/households/{id}/pantry/items/{itemId}.
func (h *PantryHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	householdID, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid household id")
		return
	}
	itemID, err := parseIDParam(r, "itemId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid item id")
		return
	}

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidJSON(w)
		return
	}

	item, err := h.pantry.UpdateItem(householdID, auth.UserID(r.Context()), itemID, req.Quantity, req.Unit)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.notify(householdID, itemID, "updated")
	writeJSON(w, http.StatusOK, map[string]any{"item": item})
}

// DeleteItem handles DELETE /api/households/{id}/pantry/items/{itemId}.
func (h *PantryHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	householdID, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid household id")
		return
	}
	itemID, err := parseIDParam(r, "itemId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid item id")
		return
	}

	if err := h.pantry.DeleteItem(householdID, auth.UserID(r.Context()), itemID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.notify(householdID, itemID, "deleted")
	w.WriteHeader(http.StatusNoContent)
}

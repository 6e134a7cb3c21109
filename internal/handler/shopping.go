package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dukerupert/larder/internal/auth"
	"github.com/dukerupert/larder/internal/push"
	"github.com/dukerupert/larder/internal/service"
	"github.com/dukerupert/larder/internal/store"
	"github.com/dukerupert/larder/internal/websocket"
)

type ShoppingHandler struct {
	shopping  *service.ShoppingListService
	hub       *websocket.Hub
	pushStore *store.PushStore
	pushSvc   *push.Service
	logger    *slog.Logger
}

func NewShoppingHandler(ss *service.ShoppingListService, hub *websocket.Hub, ps *store.PushStore, svc *push.Service, logger *slog.Logger) *ShoppingHandler {
	return &ShoppingHandler{shopping: ss, hub: hub, pushStore: ps, pushSvc: svc, logger: logger}
}

// notify broadcasts a shopping list change over the hub and fans out a
// web push to the household's other devices. Both are best-effort.
func (h *ShoppingHandler) notify(householdID, actorID int64, action, body string) {
	if h.hub != nil {
		h.hub.Broadcast(householdID, websocket.NewMessage("shopping_item", action, 0, nil))
	}
	if h.pushSvc == nil || !h.pushSvc.Configured() || h.pushStore == nil {
		return
	}

	subs, err := h.pushStore.ListByHousehold(householdID)
	if err != nil {
		h.logger.Error("list push subscriptions", "error", err)
		return
	}
	payload := push.Payload{Title: "Shopping list updated", Body: body, Tag: "shopping-list"}
	for i := range subs {
		sub := &subs[i]
		if sub.UserID == actorID {
			continue
		}
		if err := h.pushSvc.Send(sub, payload); err != nil {
			if errors.Is(err, push.ErrExpired) {
				if derr := h.pushStore.DeleteByEndpoint(sub.Endpoint); derr != nil {
					h.logger.Error("delete expired subscription", "error", derr)
				}
				continue
			}
			h.logger.Warn("send push", "subscription_id", sub.ID, "error", err)
		}
	}
}

// Get handles GET /api/households/{id}/shopping-list.
func (h *ShoppingHandler) Get(w http.ResponseWriter, r *http.Request) {
	householdID, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid household id")
		return
	}

	list, items, err := h.shopping.Get(householdID, auth.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"shopping_list": list, "items": items})
}

// AddItems handles POST /api/households/{id}/shopping-list/items.
func (h *ShoppingHandler) AddItems(w http.ResponseWriter, r *http.Request) {
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

	userID := auth.UserID(r.Context())
	items, err := h.shopping.AddItems(householdID, userID, req.Items)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.notify(householdID, userID, "created", fmt.Sprintf("%d item(s) added", len(items)))
	writeJSON(w, http.StatusCreated, map[string]any{"items": items})
}

type updateShoppingItemRequest struct {
	Quantity    *float64 `json:"quantity"`
	Unit        *string  `json:"unit"`
	IsPurchased *bool    `json:"is_purchased"`
}

// UpdateItem handles PATCH /api/households/{id}/shopping-list/items/{itemId}.
// Setting is_purchased to true moves the item into the pantry.
func (h *ShoppingHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
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

	var req updateShoppingItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidJSON(w)
		return
	}

	userID := auth.UserID(r.Context())
	result, err := h.shopping.UpdateItem(householdID, userID, itemID, req.Quantity, req.Unit, req.IsPurchased)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if result.Transferred != nil {
		h.notify(householdID, userID, "purchased", "An item was purchased")
		writeJSON(w, http.StatusOK, map[string]any{"transferred": result.Transferred})
		return
	}
	h.notify(householdID, userID, "updated", "An item was updated")
	writeJSON(w, http.StatusOK, map[string]any{"item": result.Item})
}

// DeleteItem handles DELETE /api/households/{id}/shopping-list/items/{itemId}.
func (h *ShoppingHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
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

	userID := auth.UserID(r.Context())
	if err := h.shopping.DeleteItem(householdID, userID, itemID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.notify(householdID, userID, "deleted", "An item was removed")
	w.WriteHeader(http.StatusNoContent)
}

type bulkRequest struct {
	ItemIDs []int64 `json:"item_ids"`
}

// BulkPurchase handles POST /api/households/{id}/shopping-list/bulk-purchase.
// Always 200: the per-item accounting lives in the body.
func (h *ShoppingHandler) BulkPurchase(w http.ResponseWriter, r *http.Request) {
	householdID, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid household id")
		return
	}

	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidJSON(w)
		return
	}

	userID := auth.UserID(r.Context())
	result, err := h.shopping.BulkPurchase(householdID, userID, req.ItemIDs)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if len(result.Success) > 0 {
		h.notify(householdID, userID, "purchased", fmt.Sprintf("%d item(s) purchased", len(result.Success)))
	}
	writeJSON(w, http.StatusOK, result)
}

// BulkDelete handles POST /api/households/{id}/shopping-list/bulk-delete.
func (h *ShoppingHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	householdID, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid household id")
		return
	}

	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidJSON(w)
		return
	}

	userID := auth.UserID(r.Context())
	result, err := h.shopping.BulkDelete(householdID, userID, req.ItemIDs)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if len(result.Success) > 0 {
		h.notify(householdID, userID, "deleted", fmt.Sprintf("%d item(s) removed", len(result.Success)))
	}
	writeJSON(w, http.StatusOK, result)
}

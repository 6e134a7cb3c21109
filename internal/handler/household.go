package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/larder/internal/auth"
	"github.com/dukerupert/larder/internal/service"
	"github.com/dukerupert/larder/internal/websocket"
)

type HouseholdHandler struct {
	households *service.HouseholdService
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewHouseholdHandler(hs *service.HouseholdService, hub *websocket.Hub, logger *slog.Logger) *HouseholdHandler {
	return &HouseholdHandler{households: hs, hub: hub, logger: logger}
}

func (h *HouseholdHandler) notify(householdID int64, action string) {
	if h.hub != nil {
		h.hub.Broadcast(householdID, websocket.NewMessage("household", action, householdID, nil))
	}
}

// GetCurrent handles GET /api/households/current.
func (h *HouseholdHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	summary, err := h.households.GetUserHousehold(auth.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if summary == nil {
		writeJSON(w, http.StatusOK, map[string]any{"household": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"household": summary})
}

type createHouseholdRequest struct {
	Name string `json:"name"`
}

// Create handles POST /api/households.
func (h *HouseholdHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createHouseholdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidJSON(w)
		return
	}

	household, err := h.households.Create(auth.UserID(r.Context()), req.Name)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"household": household})
}

// Get handles GET /api/households/{id}.
func (h *HouseholdHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid household id")
		return
	}

	household, members, err := h.households.Get(id, auth.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"household": household, "members": members})
}

// Update handles PATCH /api/households/{id}.
func (h *HouseholdHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid household id")
		return
	}

	var req createHouseholdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidJSON(w)
		return
	}

	household, err := h.households.UpdateName(id, auth.UserID(r.Context()), req.Name)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.notify(id, "updated")
	writeJSON(w, http.StatusOK, map[string]any{"household": household})
}

// Delete handles DELETE /api/households/{id}.
func (h *HouseholdHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid household id")
		return
	}

	if err := h.households.Delete(id, auth.UserID(r.Context())); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.notify(id, "deleted")
	w.WriteHeader(http.StatusNoContent)
}

type inviteMemberRequest struct {
	Email string `json:"email"`
}

// Invite handles POST /api/households/{id}/invite, the older invitation
// path. POST /api/households/{id}/invitations is the preferred route.
func (h *HouseholdHandler) Invite(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid household id")
		return
	}

	var req inviteMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidJSON(w)
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Email is required")
		return
	}

	invitation, err := h.households.InviteMember(id, auth.UserID(r.Context()), req.Email)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if h.hub != nil {
		h.hub.Broadcast(id, websocket.NewMessage("invitation", "created", invitation.ID, nil))
	}
	writeJSON(w, http.StatusCreated, map[string]any{"invitation": invitation})
}

// ListMembers handles GET /api/households/{id}/members.
func (h *HouseholdHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid household id")
		return
	}

	members, err := h.households.ListMembers(id, auth.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"members": members})
}

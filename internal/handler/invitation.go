package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/larder/internal/auth"
	"github.com/dukerupert/larder/internal/service"
	"github.com/dukerupert/larder/internal/websocket"
)

type InvitationHandler struct {
	invitations *service.InvitationService
	hub         *websocket.Hub
	logger      *slog.Logger
}

func NewInvitationHandler(is *service.InvitationService, hub *websocket.Hub, logger *slog.Logger) *InvitationHandler {
	return &InvitationHandler{invitations: is, hub: hub, logger: logger}
}

func (h *InvitationHandler) notify(householdID, invitationID int64, action string) {
	if h.hub != nil {
		h.hub.Broadcast(householdID, websocket.NewMessage("invitation", action, invitationID, nil))
	}
}

// List handles GET /api/households/{id}/invitations.
func (h *InvitationHandler) List(w http.ResponseWriter, r *http.Request) {
	householdID, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid household id")
		return
	}

	invs, err := h.invitations.List(householdID, auth.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"invitations": invs})
}

type createInvitationRequest struct {
	Email string `json:"email"`
}

// Create handles POST /api/households/{id}/invitations.
func (h *InvitationHandler) Create(w http.ResponseWriter, r *http.Request) {
	householdID, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid household id")
		return
	}

	var req createInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidJSON(w)
		return
	}

	inv, err := h.invitations.Create(householdID, auth.UserID(r.Context()), req.Email)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.notify(householdID, inv.ID, "created")
	writeJSON(w, http.StatusCreated, map[string]any{"invitation": inv})
}

// Cancel handles DELETE /api/households/{id}/invitations/{invitationId}.
func (h *InvitationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	householdID, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid household id")
		return
	}
	invitationID, err := parseIDParam(r, "invitationId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid invitation id")
		return
	}

	if err := h.invitations.Cancel(householdID, invitationID, auth.UserID(r.Context())); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.notify(householdID, invitationID, "cancelled")
	w.WriteHeader(http.StatusNoContent)
}

// Inbox handles GET /api/invitations/current: pending, unexpired
// invitations addressed to the caller's own email.
func (h *InvitationHandler) Inbox(w http.ResponseWriter, r *http.Request) {
	inbox, err := h.invitations.Inbox(auth.Email(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": inbox})
}

type acceptInvitationRequest struct {
	Token string `json:"token"`
}

// Accept handles PATCH /api/invitations/accept. The token comes from the
// query string or the body; a body token must match the query token when
// both are present.
func (h *InvitationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	if r.Body != nil && r.ContentLength != 0 {
		var req acceptInvitationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeInvalidJSON(w)
			return
		}
		if token == "" {
			token = req.Token
		} else if req.Token != "" && req.Token != token {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Token mismatch")
			return
		}
	}
	if token == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Token is required")
		return
	}

	ac, _ := auth.FromContext(r.Context())
	member, err := h.invitations.Accept(token, ac.UserID, ac.Email)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.notify(member.HouseholdID, 0, "accepted")

	writeJSON(w, http.StatusOK, map[string]any{
		"membership": map[string]any{
			"householdId": member.HouseholdID,
			"userId":      member.UserID,
			"role":        member.Role,
			"joinedAt":    member.JoinedAt,
		},
	})
}

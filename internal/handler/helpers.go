package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/larder/internal/recipegen"
	"github.com/dukerupert/larder/internal/service"
)

func parseIDParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// errorResponse is the envelope every error takes on the wire. Clients
// branch on both the HTTP status and the code string.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

func writeInvalidJSON(w http.ResponseWriter) {
	writeError(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON")
}

// writeServiceError maps a service-layer error onto the wire envelope.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var dup *service.DuplicateItemError
	var val *service.ValidationError

	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	case errors.Is(err, service.ErrItemNotFound):
		writeError(w, http.StatusNotFound, "ITEM_NOT_FOUND", "Item not found")
	case errors.Is(err, service.ErrNotOwner):
		writeError(w, http.StatusForbidden, "NOT_OWNER", "Only the household owner can do this")
	case errors.Is(err, service.ErrEmailMismatch):
		writeError(w, http.StatusForbidden, "EMAIL_MISMATCH", "This invitation was sent to a different email address")
	case errors.Is(err, service.ErrAlreadyOwner):
		writeError(w, http.StatusConflict, "ALREADY_OWNER", "You already own a household")
	case errors.Is(err, service.ErrAlreadyMember):
		writeError(w, http.StatusConflict, "ALREADY_MEMBER", "Already a member of this household")
	case errors.Is(err, service.ErrInvitationExists):
		writeError(w, http.StatusConflict, "INVITATION_ALREADY_EXISTS", "A pending invitation for this email already exists")
	case errors.Is(err, service.ErrHasOtherMembers):
		writeError(w, http.StatusConflict, "HAS_OTHER_MEMBERS", "Remove other members before deleting the household")
	case errors.Is(err, service.ErrInvitationExpired):
		writeError(w, http.StatusBadRequest, "INVITATION_EXPIRED", "This invitation has expired")
	case errors.Is(err, service.ErrInvitationUsed):
		writeError(w, http.StatusBadRequest, "INVALID_TOKEN", "This invitation has already been used")
	case errors.Is(err, service.ErrEmptyUpdate):
		writeError(w, http.StatusBadRequest, "EMPTY_UPDATE", "At least one field must be provided")
	case errors.As(err, &dup):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "DUPLICATE_ITEM",
			Message: dup.Error(),
			Details: dup.Names,
		})
	case errors.As(err, &val):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "VALIDATION_ERROR",
			Message: "Validation failed",
			Details: val.Fields,
		})
	case errors.Is(err, recipegen.ErrNotConfigured):
		writeError(w, http.StatusInternalServerError, "AI_NOT_CONFIGURED", "Recipe generation is not configured")
	case errors.Is(err, recipegen.ErrAuth):
		writeError(w, http.StatusInternalServerError, "AI_AUTH_FAILED", "Recipe generation failed")
	case errors.Is(err, recipegen.ErrRateLimited):
		writeError(w, http.StatusInternalServerError, "AI_RATE_LIMITED", "Recipe generation is temporarily unavailable")
	case errors.Is(err, recipegen.ErrTimeout):
		writeError(w, http.StatusInternalServerError, "AI_TIMEOUT", "Recipe generation timed out")
	case errors.Is(err, recipegen.ErrMalformed), errors.Is(err, recipegen.ErrSchema):
		writeError(w, http.StatusInternalServerError, "AI_INVALID_RESPONSE", "Recipe generation returned an unusable result")
	default:
		logger.Error("internal error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
	}
}

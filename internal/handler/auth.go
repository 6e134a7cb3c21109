package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/larder/internal/auth"
	"github.com/dukerupert/larder/internal/email"
	"github.com/dukerupert/larder/internal/middleware"
	"github.com/dukerupert/larder/internal/store"
)

const maxCodeAttempts = 5

type AuthHandler struct {
	userStore    *store.UserStore
	sessionStore *store.SessionStore
	codeStore    *store.LoginCodeStore
	emailClient  *email.Client
	secureCookie bool
	logger       *slog.Logger
}

func NewAuthHandler(
	us *store.UserStore,
	ss *store.SessionStore,
	cs *store.LoginCodeStore,
	ec *email.Client,
	secureCookie bool,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		userStore:    us,
		sessionStore: ss,
		codeStore:    cs,
		emailClient:  ec,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

type registerRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Register handles POST /auth/register. The response never reveals
// whether the email was already registered.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidJSON(w)
		return
	}

	emailAddr := store.NormalizeEmail(req.Email)
	if emailAddr == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Email is required")
		return
	}

	// Validated before the lookup so known and unknown emails answer alike.
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Name is required")
		return
	}

	user, err := h.userStore.GetByEmail(emailAddr)
	if err != nil {
		h.logger.Error("register lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
		return
	}
	purpose := "login"
	if user == nil {
		if user, err = h.userStore.Create(emailAddr, name); err != nil {
			h.logger.Error("register create user", "error", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
			return
		}
		purpose = "register"
	}

	h.issueCode(emailAddr, purpose)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Check your email for a sign-in code"})
}

type loginRequest struct {
	Email string `json:"email"`
}

// Login handles POST /auth/login. Unknown emails get the same response
// as known ones to prevent enumeration.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidJSON(w)
		return
	}

	emailAddr := store.NormalizeEmail(req.Email)
	if emailAddr == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Email is required")
		return
	}

	user, err := h.userStore.GetByEmail(emailAddr)
	if err != nil {
		h.logger.Error("login lookup", "error", err)
	}
	if user != nil {
		h.issueCode(emailAddr, "login")
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Check your email for a sign-in code"})
}

func (h *AuthHandler) issueCode(emailAddr, purpose string) {
	lc, code, err := h.codeStore.Create(emailAddr, purpose)
	if err != nil {
		h.logger.Error("create login code", "error", err)
		return
	}
	if h.emailClient == nil || !h.emailClient.Configured() {
		h.logger.Warn("email not configured, login code not delivered", "login_code_id", lc.ID)
		return
	}
	if err := h.emailClient.SendLoginCode(emailAddr, code, purpose); err != nil {
		h.logger.Error("send login code", "error", err)
	}
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// Verify handles POST /auth/verify: checks the emailed code and opens a
// session on success.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidJSON(w)
		return
	}

	emailAddr := store.NormalizeEmail(req.Email)
	code := strings.TrimSpace(req.Code)
	if emailAddr == "" || code == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Email and code are required")
		return
	}

	lc, err := h.codeStore.GetLatestByEmail(emailAddr)
	if err != nil {
		h.logger.Error("verify lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
		return
	}
	if lc == nil || lc.UsedAt != nil || time.Now().UTC().After(lc.ExpiresAt) {
		writeError(w, http.StatusBadRequest, "INVALID_CODE", "Invalid or expired code")
		return
	}
	if lc.Attempts >= maxCodeAttempts {
		writeError(w, http.StatusBadRequest, "TOO_MANY_ATTEMPTS", "Too many attempts, request a new code")
		return
	}

	if !store.CompareCode(lc, code) {
		attempts, err := h.codeStore.IncrementAttempts(lc.ID)
		if err != nil {
			h.logger.Error("increment attempts", "error", err)
		}
		if attempts >= maxCodeAttempts {
			writeError(w, http.StatusBadRequest, "TOO_MANY_ATTEMPTS", "Too many attempts, request a new code")
			return
		}
		writeError(w, http.StatusBadRequest, "INVALID_CODE", "Invalid or expired code")
		return
	}

	if err := h.codeStore.MarkUsed(lc.ID); err != nil {
		h.logger.Error("mark code used", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
		return
	}

	user, err := h.userStore.GetByEmail(emailAddr)
	if err != nil || user == nil {
		h.logger.Error("verify user lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
		return
	}

	sess, err := h.sessionStore.Create(user.ID)
	if err != nil {
		h.logger.Error("create session", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if ok {
		if err := h.sessionStore.Delete(ac.SessionID); err != nil {
			h.logger.Error("delete session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	user, err := h.userStore.GetByID(ac.UserID)
	if err != nil || user == nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

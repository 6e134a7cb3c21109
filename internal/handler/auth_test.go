package handler

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dukerupert/larder/internal/database"
	"github.com/dukerupert/larder/internal/store"
)

func newTestAuthHandler(t *testing.T) (*AuthHandler, *store.UserStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	userStore := store.NewUserStore(db)
	h := NewAuthHandler(userStore, store.NewSessionStore(db), store.NewLoginCodeStore(db), nil, false, logger)
	return h, userStore
}

func postRegister(t *testing.T, h *AuthHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Register(rec, req)
	return rec
}

func TestRegisterRequiresNameForAnyEmail(t *testing.T) {
	h, userStore := newTestAuthHandler(t)
	if _, err := userStore.Create("known@example.com", "Known User"); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	// The missing-name rejection is the same for registered and
	// unregistered emails.
	unknown := postRegister(t, h, `{"email":"unknown@example.com"}`)
	known := postRegister(t, h, `{"email":"known@example.com"}`)

	for _, rec := range []*httptest.ResponseRecorder{unknown, known} {
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
		if !strings.Contains(rec.Body.String(), "VALIDATION_ERROR") {
			t.Errorf("body = %q, want VALIDATION_ERROR", rec.Body.String())
		}
	}
	if unknown.Body.String() != known.Body.String() {
		t.Errorf("responses differ: %q vs %q", unknown.Body.String(), known.Body.String())
	}
}

func TestRegisterResponseDoesNotRevealExistingEmail(t *testing.T) {
	h, userStore := newTestAuthHandler(t)
	if _, err := userStore.Create("known@example.com", "Known User"); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	unknown := postRegister(t, h, `{"email":"new@example.com","name":"New User"}`)
	known := postRegister(t, h, `{"email":"known@example.com","name":"Whatever"}`)

	for _, rec := range []*httptest.ResponseRecorder{unknown, known} {
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
		}
	}
	if unknown.Body.String() != known.Body.String() {
		t.Errorf("responses differ: %q vs %q", unknown.Body.String(), known.Body.String())
	}

	// The new user exists afterwards; the known one kept its name.
	u, err := userStore.GetByEmail("new@example.com")
	if err != nil || u == nil {
		t.Fatalf("expected new user, got %v, %v", u, err)
	}
	u, err = userStore.GetByEmail("known@example.com")
	if err != nil || u == nil {
		t.Fatalf("expected known user, got %v, %v", u, err)
	}
	if u.Name != "Known User" {
		t.Errorf("name = %q, want unchanged", u.Name)
	}
}

package store

import (
	"testing"
	"time"
)

func TestSessionCreateAndGetByToken(t *testing.T) {
	ts := openTestDB(t)
	userID := ts.user(t, "alice@example.com")

	sess, err := ts.sessions.Create(userID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if len(sess.Token) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(sess.Token))
	}
	if !sess.ExpiresAt.After(time.Now().Add(80 * 24 * time.Hour)) {
		t.Errorf("expiry %v not ~90 days out", sess.ExpiresAt)
	}

	got, err := ts.sessions.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if got == nil || got.UserID != userID {
		t.Fatalf("got %+v, want session for user %d", got, userID)
	}
}

func TestSessionGetByTokenUnknown(t *testing.T) {
	ts := openTestDB(t)

	got, err := ts.sessions.GetByToken("no-such-token")
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if got != nil {
		t.Error("expected nil for unknown token")
	}
}

func TestSessionDelete(t *testing.T) {
	ts := openTestDB(t)
	userID := ts.user(t, "alice@example.com")

	sess, err := ts.sessions.Create(userID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := ts.sessions.Delete(sess.ID); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	got, err := ts.sessions.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if got != nil {
		t.Error("expected session to be gone")
	}
}

func TestSessionTokensUnique(t *testing.T) {
	ts := openTestDB(t)
	userID := ts.user(t, "alice@example.com")

	a, err := ts.sessions.Create(userID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	b, err := ts.sessions.Create(userID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if a.Token == b.Token {
		t.Error("expected distinct tokens")
	}
}

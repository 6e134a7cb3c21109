package store

import (
	"testing"
)

func TestLoginCodeCreateAndCompare(t *testing.T) {
	ts := openTestDB(t)

	lc, code, err := ts.codes.Create("alice@example.com", "login")
	if err != nil {
		t.Fatalf("create code: %v", err)
	}
	if len(code) != 6 {
		t.Errorf("code length = %d, want 6", len(code))
	}
	if lc.CodeHash == code {
		t.Error("code must not be stored in plaintext")
	}

	if !CompareCode(lc, code) {
		t.Error("expected code to match its hash")
	}
	if CompareCode(lc, "000000") && code != "000000" {
		t.Error("wrong code must not match")
	}
}

func TestLoginCodeSupersedesPrevious(t *testing.T) {
	ts := openTestDB(t)

	_, first, err := ts.codes.Create("alice@example.com", "login")
	if err != nil {
		t.Fatalf("create first code: %v", err)
	}
	_, second, err := ts.codes.Create("alice@example.com", "login")
	if err != nil {
		t.Fatalf("create second code: %v", err)
	}

	latest, err := ts.codes.GetLatestByEmail("alice@example.com")
	if err != nil {
		t.Fatalf("get latest: %v", err)
	}
	if latest == nil {
		t.Fatal("expected a latest code")
	}
	if !CompareCode(latest, second) {
		t.Error("latest code should be the second one issued")
	}
	if first != second && CompareCode(latest, first) {
		t.Error("first code should no longer verify")
	}
}

func TestLoginCodeAttempts(t *testing.T) {
	ts := openTestDB(t)

	lc, _, err := ts.codes.Create("alice@example.com", "login")
	if err != nil {
		t.Fatalf("create code: %v", err)
	}

	for want := 1; want <= 3; want++ {
		got, err := ts.codes.IncrementAttempts(lc.ID)
		if err != nil {
			t.Fatalf("increment attempts: %v", err)
		}
		if got != want {
			t.Errorf("attempts = %d, want %d", got, want)
		}
	}
}

func TestLoginCodeMarkUsed(t *testing.T) {
	ts := openTestDB(t)

	lc, _, err := ts.codes.Create("alice@example.com", "login")
	if err != nil {
		t.Fatalf("create code: %v", err)
	}
	if err := ts.codes.MarkUsed(lc.ID); err != nil {
		t.Fatalf("mark used: %v", err)
	}

	latest, err := ts.codes.GetLatestByEmail("alice@example.com")
	if err != nil {
		t.Fatalf("get latest: %v", err)
	}
	if latest.UsedAt == nil {
		t.Error("expected used_at to be set")
	}
}

package email

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func captureServer(t *testing.T, got *postmarkEmail, token *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*token = r.Header.Get("X-Postmark-Server-Token")
		if err := json.NewDecoder(r.Body).Decode(got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.Write([]byte(`{"ErrorCode":0,"Message":"OK"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSendLoginCode(t *testing.T) {
	var got postmarkEmail
	var token string
	srv := captureServer(t, &got, &token)
	client := NewClient("server-token", "noreply@larder.test", "https://larder.test", WithAPIURL(srv.URL))

	if err := client.SendLoginCode("frodo@example.com", "482913", "login"); err != nil {
		t.Fatalf("send login code: %v", err)
	}
	if token != "server-token" {
		t.Errorf("server token header = %q", token)
	}
	if got.To != "frodo@example.com" {
		t.Errorf("to = %q", got.To)
	}
	if got.From != "noreply@larder.test" {
		t.Errorf("from = %q", got.From)
	}
	if got.Subject != "Sign in to Larder" {
		t.Errorf("subject = %q", got.Subject)
	}
	if !strings.Contains(got.TextBody, "482913") {
		t.Errorf("text body missing code: %s", got.TextBody)
	}
	if !strings.Contains(got.TextBody, "15 minutes") {
		t.Errorf("text body missing expiry: %s", got.TextBody)
	}
}

func TestSendLoginCodeRegisterSubject(t *testing.T) {
	var got postmarkEmail
	var token string
	srv := captureServer(t, &got, &token)
	client := NewClient("server-token", "noreply@larder.test", "https://larder.test", WithAPIURL(srv.URL))

	if err := client.SendLoginCode("frodo@example.com", "482913", "register"); err != nil {
		t.Fatalf("send login code: %v", err)
	}
	if got.Subject != "Welcome to Larder" {
		t.Errorf("subject = %q", got.Subject)
	}
}

func TestSendInvitation(t *testing.T) {
	var got postmarkEmail
	var token string
	srv := captureServer(t, &got, &token)
	client := NewClient("server-token", "noreply@larder.test", "https://larder.test", WithAPIURL(srv.URL))

	if err := client.SendInvitation("sam@example.com", "abc123token", "Bag End"); err != nil {
		t.Fatalf("send invitation: %v", err)
	}
	if got.Subject != "You've been invited to Bag End on Larder" {
		t.Errorf("subject = %q", got.Subject)
	}
	wantLink := "https://larder.test/invitations/accept?token=abc123token"
	if !strings.Contains(got.TextBody, wantLink) {
		t.Errorf("text body missing link %q: %s", wantLink, got.TextBody)
	}
	if !strings.Contains(got.HtmlBody, wantLink) {
		t.Errorf("html body missing link %q: %s", wantLink, got.HtmlBody)
	}
	if !strings.Contains(got.TextBody, "7 days") {
		t.Errorf("text body missing expiry: %s", got.TextBody)
	}
}

func TestSendUnconfigured(t *testing.T) {
	client := NewClient("", "noreply@larder.test", "https://larder.test")
	if client.Configured() {
		t.Error("Configured() = true without a token")
	}
	if err := client.SendLoginCode("frodo@example.com", "482913", "login"); err == nil {
		t.Error("expected error when token is empty")
	}
}

func TestSendAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	t.Cleanup(srv.Close)
	client := NewClient("server-token", "noreply@larder.test", "https://larder.test", WithAPIURL(srv.URL))

	if err := client.SendLoginCode("frodo@example.com", "482913", "login"); err == nil {
		t.Error("expected error on API failure status")
	}
}

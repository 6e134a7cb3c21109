package recipegen

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func chatCompletion(content string) string {
	body, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
	return string(body)
}

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{APIKey: "test-key", BaseURL: srv.URL})
}

func TestGenerateSuccess(t *testing.T) {
	var captured chatRequest
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q, want /chat/completions", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(chatCompletion(`{"title":"Seed Cake","ingredients":[{"name":"Flour","quantity":2,"unit":"cups"}],"instructions":"Bake it."}`)))
	})

	recipe, err := client.Generate(context.Background(), Request{
		Hint:        "something sweet",
		MealType:    "dessert",
		PantryItems: []string{"Flour", "Butter"},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if recipe.Title != "Seed Cake" {
		t.Errorf("title = %q", recipe.Title)
	}
	if len(recipe.Ingredients) != 1 || recipe.Ingredients[0].Name != "Flour" {
		t.Errorf("ingredients = %v", recipe.Ingredients)
	}

	if len(captured.Messages) != 2 {
		t.Fatalf("messages = %d, want system + user", len(captured.Messages))
	}
	user := captured.Messages[1].Content
	for _, want := range []string{"dessert", "something sweet", "Flour, Butter"} {
		if !strings.Contains(user, want) {
			t.Errorf("user prompt missing %q: %s", want, user)
		}
	}
	if captured.ResponseFormat == nil || captured.ResponseFormat.Type != "json_object" {
		t.Errorf("response_format = %+v", captured.ResponseFormat)
	}
}

func TestGenerateNotConfigured(t *testing.T) {
	client := NewClient(Config{})
	if _, err := client.Generate(context.Background(), Request{Hint: "anything"}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
	if client.Configured() {
		t.Error("Configured() = true without an API key")
	}
}

func TestGenerateAuthFailure(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	if _, err := client.Generate(context.Background(), Request{Hint: "x"}); !errors.Is(err, ErrAuth) {
		t.Fatalf("err = %v, want ErrAuth", err)
	}
}

func TestGenerateRateLimited(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	if _, err := client.Generate(context.Background(), Request{Hint: "x"}); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
}

func TestGenerateMalformedBody(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})
	if _, err := client.Generate(context.Background(), Request{Hint: "x"}); !errors.Is(err, ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
}

func TestGenerateMalformedInnerJSON(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatCompletion("Sure! Here is a recipe: Seed Cake")))
	})
	if _, err := client.Generate(context.Background(), Request{Hint: "x"}); !errors.Is(err, ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
}

func TestGenerateSchemaViolation(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatCompletion(`{"title":"Seed Cake","ingredients":[],"instructions":"Bake it."}`)))
	})
	if _, err := client.Generate(context.Background(), Request{Hint: "x"}); !errors.Is(err, ErrSchema) {
		t.Fatalf("err = %v, want ErrSchema", err)
	}
}

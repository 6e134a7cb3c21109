// Package recipegen calls an OpenAI-compatible chat completions API to
// generate structured recipes.
package recipegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/larder/internal/model"
)

var (
	// ErrNotConfigured means no API key was provided.
	ErrNotConfigured = errors.New("recipe generation is not configured")
	// ErrAuth means the provider rejected our credentials.
	ErrAuth = errors.New("provider rejected credentials")
	// ErrRateLimited means the provider throttled the request.
	ErrRateLimited = errors.New("provider rate limit exceeded")
	// ErrTimeout means the provider did not answer within the deadline.
	ErrTimeout = errors.New("provider request timed out")
	// ErrMalformed means the provider response was not parseable JSON.
	ErrMalformed = errors.New("provider returned malformed response")
	// ErrSchema means the parsed response did not match the recipe shape.
	ErrSchema = errors.New("provider response failed schema validation")
)

// Config holds provider configuration from environment variables.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Request describes what to generate.
type Request struct {
	Hint        string
	MealType    string
	PantryItems []string
}

// GeneratedRecipe is the validated provider output.
type GeneratedRecipe struct {
	Title        string             `json:"title"`
	Ingredients  []model.Ingredient `json:"ingredients"`
	Instructions string             `json:"instructions"`
	MealType     *string            `json:"meal_type,omitempty"`
	PrepTimeMin  *int               `json:"prep_time_minutes,omitempty"`
	CookTimeMin  *int               `json:"cook_time_minutes,omitempty"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client talks to the text-generation provider. A client with no API key
// is valid but refuses to generate.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the transport, used in tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a provider client.
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

const systemPrompt = `You are a recipe assistant. Respond with a single JSON object:
{"title": string, "ingredients": [{"name": string, "quantity": number, "unit": string|null}], "instructions": string, "meal_type": string|null, "prep_time_minutes": number|null, "cook_time_minutes": number|null}
Ingredients must have at least one entry. Respond with JSON only, no prose.`

func buildUserPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("Generate a recipe")
	if req.MealType != "" {
		fmt.Fprintf(&b, " for %s", req.MealType)
	}
	if req.Hint != "" {
		fmt.Fprintf(&b, ". Request: %s", req.Hint)
	}
	if len(req.PantryItems) > 0 {
		fmt.Fprintf(&b, ". Prefer using these pantry items: %s", strings.Join(req.PantryItems, ", "))
	}
	b.WriteString(".")
	return b.String()
}

// Generate asks the provider for one recipe matching the request.
func (c *Client) Generate(ctx context.Context, genReq Request) (*GeneratedRecipe, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildUserPrompt(genReq)},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("provider request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrAuth
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	default:
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, ErrMalformed
	}
	if len(cr.Choices) == 0 {
		return nil, ErrMalformed
	}

	var recipe GeneratedRecipe
	if err := json.Unmarshal([]byte(cr.Choices[0].Message.Content), &recipe); err != nil {
		return nil, ErrMalformed
	}
	if err := validateRecipe(&recipe); err != nil {
		return nil, err
	}
	return &recipe, nil
}

func validateRecipe(r *GeneratedRecipe) error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("%w: missing title", ErrSchema)
	}
	if len(r.Ingredients) == 0 {
		return fmt.Errorf("%w: no ingredients", ErrSchema)
	}
	for _, ing := range r.Ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			return fmt.Errorf("%w: ingredient missing name", ErrSchema)
		}
	}
	if strings.TrimSpace(r.Instructions) == "" {
		return fmt.Errorf("%w: missing instructions", ErrSchema)
	}
	return nil
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

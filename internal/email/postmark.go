package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

const postmarkURL = "https://api.postmarkapp.com/email"

type Client struct {
	serverToken string
	fromEmail   string
	baseURL     string
	apiURL      string
	httpClient  *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithAPIURL overrides the Postmark endpoint, used in tests.
func WithAPIURL(url string) Option {
	return func(cl *Client) {
		cl.apiURL = url
	}
}

func NewClient(serverToken, fromEmail, baseURL string, opts ...Option) *Client {
	c := &Client{
		serverToken: serverToken,
		fromEmail:   fromEmail,
		baseURL:     baseURL,
		apiURL:      postmarkURL,
		httpClient:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns true if the server token is set.
func (c *Client) Configured() bool {
	return c.serverToken != ""
}

type postmarkEmail struct {
	From     string `json:"From"`
	To       string `json:"To"`
	Subject  string `json:"Subject"`
	HtmlBody string `json:"HtmlBody"`
	TextBody string `json:"TextBody"`
}

// SendLoginCode emails a one-time sign-in code.
func (c *Client) SendLoginCode(toEmail, code, purpose string) error {
	var subject string
	switch purpose {
	case "register":
		subject = "Welcome to Larder"
	default:
		subject = "Sign in to Larder"
	}

	textBody := fmt.Sprintf("Your sign-in code is: %s\n\nThis code expires in 15 minutes.", code)
	htmlBody := fmt.Sprintf(
		`<p>Your sign-in code is:</p><p style="font-size:24px;font-weight:bold;letter-spacing:4px">%s</p><p>This code expires in 15 minutes.</p>`,
		code,
	)
	return c.send(toEmail, subject, htmlBody, textBody)
}

// SendInvitation emails a household invitation with its acceptance link.
func (c *Client) SendInvitation(toEmail, token, householdName string) error {
	subject := fmt.Sprintf("You've been invited to %s on Larder", householdName)
	if householdName == "" {
		subject = "You've been invited to a household on Larder"
	}

	link := fmt.Sprintf("%s/invitations/accept?token=%s", c.baseURL, token)
	textBody := fmt.Sprintf("Click the link below to accept your invitation:\n\n%s\n\nThis invitation expires in 7 days.", link)
	htmlBody := fmt.Sprintf(
		`<p>Click the link below to accept your invitation:</p><p><a href="%s">Accept invitation</a></p><p>This invitation expires in 7 days.</p>`,
		link,
	)
	return c.send(toEmail, subject, htmlBody, textBody)
}

func (c *Client) send(toEmail, subject, htmlBody, textBody string) error {
	if !c.Configured() {
		return fmt.Errorf("email client not configured: missing server token")
	}

	payload := postmarkEmail{
		From:     c.fromEmail,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlBody,
		TextBody: textBody,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequest("POST", c.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Postmark-Server-Token", c.serverToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("postmark API error: status %d", resp.StatusCode)
	}

	return nil
}

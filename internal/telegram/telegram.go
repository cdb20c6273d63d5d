// Package telegram is a minimal Bot API client for channel posting.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultAPIBase = "https://api.telegram.org"
	sendTimeout    = 25 * time.Second

	// maxBodyBytes bounds how much of an API response we keep for logging.
	maxBodyBytes = 4096
)

// Client talks to the Telegram Bot API.
type Client struct {
	token   string
	apiBase string
	client  *http.Client
}

// NewClient builds a client for the given bot token.
func NewClient(token string) *Client {
	return &Client{
		token:   token,
		apiBase: defaultAPIBase,
		client:  &http.Client{Timeout: sendTimeout},
	}
}

// SendMessage posts HTML-formatted text to a chat or channel. It returns the
// raw HTTP status and response body from the API; 200 is the only success
// signal and anything else is a publish failure the caller handles. The error
// is non-nil only for transport-level problems.
func (c *Client) SendMessage(ctx context.Context, chatID, text string) (int, string, error) {
	payload := map[string]any{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return 0, "", fmt.Errorf("marshal sendMessage payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.apiBase, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, "", fmt.Errorf("build sendMessage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("telegram request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	return resp.StatusCode, string(respBody), nil
}

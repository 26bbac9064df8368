// Package transport delivers gesture events to the command server.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ayusman/gesturify/internal/gesture"
)

// Values of CommandResponse.Status.
const (
	StatusSuccess = "success"
	StatusIgnored = "ignored"
	StatusError   = "error"
)

// CommandRequest is the body of POST /command.
type CommandRequest struct {
	Gesture gesture.Label `json:"gesture"`
}

// CommandResponse is the command server's answer.
type CommandResponse struct {
	Status          string `json:"status"`
	CommandExecuted string `json:"command_executed,omitempty"`
	Message         string `json:"message,omitempty"`
}

// Client posts gestures to a command endpoint.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a Client for the command endpoint at url. Each request is
// bounded by timeout.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// URL returns the command endpoint.
func (c *Client) URL() string {
	return c.url
}

// Send posts label and decodes the response. A non-2xx status is an error.
func (c *Client) Send(ctx context.Context, label gesture.Label) (*CommandResponse, error) {
	body, err := json.Marshal(CommandRequest{Gesture: label})
	if err != nil {
		return nil, fmt.Errorf("failed to encode command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send command: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("command server returned status %d", resp.StatusCode)
	}

	var result CommandResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode command response: %w", err)
	}

	return &result, nil
}

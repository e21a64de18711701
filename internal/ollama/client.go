// Package ollama is a thin HTTP client for a locally running Ollama server.
// The server is treated as an opaque dependency: one request, one response,
// no retries and no streaming.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	// DefaultBaseURL uses the explicit IPv4 loopback address; "localhost" can
	// resolve to IPv6 first on some hosts while Ollama only binds IPv4.
	DefaultBaseURL = "http://127.0.0.1:11434"

	defaultTimeout = 120 * time.Second
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the Ollama server at baseURL. An empty
// baseURL falls back to DefaultBaseURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// Chat sends the full message list to /api/chat and returns the assistant
// reply. Non-200 responses are turned into errors carrying the server's own
// error message when it provides one.
func (c *Client) Chat(ctx context.Context, model string, messages []Message) (*ChatResponse, error) {
	body, err := json.Marshal(ChatRequest{
		Model:    model,
		Messages: messages,
		Stream:   false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("chat request rejected: %s", apiErr.Error)
		}
		return nil, fmt.Errorf("chat request rejected: %s", resp.Status)
	}

	var result ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode chat response: %w", err)
	}

	return &result, nil
}

// ListModels fetches the local model registry from /api/tags. A server with
// zero installed models yields an empty slice, not an error.
func (c *Client) ListModels(ctx context.Context) ([]LocalModel, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create list request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list request rejected: %s", resp.Status)
	}

	var result ListModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode model list: %w", err)
	}

	if result.Models == nil {
		result.Models = []LocalModel{}
	}
	return result.Models, nil
}

// CheckRunning verifies that the server answers on its base URL.
func (c *Client) CheckRunning(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create health request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ollama is not reachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status from ollama: %s", resp.Status)
	}
	return nil
}

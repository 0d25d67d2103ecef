package apiclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// APIClient handles all communication with the threads API.
type APIClient struct {
	BaseURL    string
	HttpClient *http.Client
}

func New(baseURL string) *APIClient {
	return &APIClient{
		BaseURL:    baseURL,
		HttpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// do is the single helper for API requests. The caller closes the body.
func (c *APIClient) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create API request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend unavailable: %w", err)
	}
	return resp, nil
}

// statusError reads the body of a failed response into an error message
func statusError(resp *http.Response, what string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return fmt.Errorf("%s: backend returned %d: %s", what, resp.StatusCode, string(body))
}

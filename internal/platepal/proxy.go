package platepal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultProxyTimeout bounds a single call to the proxy endpoint.
const DefaultProxyTimeout = 60 * time.Second

// RequestError is a non-2xx answer from the proxy.
type RequestError struct {
	StatusCode int
	// Message is the proxy's error field, when it sent one.
	Message string
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("Request failed: %d (%s)", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("Request failed: %d", e.StatusCode)
}

// ProxyClient calls the PlatePal proxy endpoint.
type ProxyClient struct {
	endpoint string
	client   *http.Client
}

// NewProxyClient targets baseURL + "/api/platepal". A nil client gets a
// default with DefaultProxyTimeout.
func NewProxyClient(baseURL string, client *http.Client) *ProxyClient {
	if client == nil {
		client = &http.Client{Timeout: DefaultProxyTimeout}
	}
	return &ProxyClient{
		endpoint: strings.TrimRight(baseURL, "/") + "/api/platepal",
		client:   client,
	}
}

type proxyRequest struct {
	Prompt string `json:"prompt"`
}

type proxyResponse struct {
	Text  string `json:"text"`
	Error string `json:"error"`
}

// Generate sends prompt to the proxy and returns the generated text.
func (p *ProxyClient) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(proxyRequest{Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach proxy: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var decoded proxyResponse
	decodeErr := json.Unmarshal(raw, &decoded)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &RequestError{StatusCode: resp.StatusCode, Message: decoded.Error}
	}
	if decodeErr != nil {
		return "", fmt.Errorf("failed to decode response: %w", decodeErr)
	}
	return decoded.Text, nil
}

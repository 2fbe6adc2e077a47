package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/platepal/backend/internal/logger"
	"github.com/pageza/platepal/backend/internal/metrics"
)

// ErrAPIKeyNotConfigured is returned when no upstream credential is set.
var ErrAPIKeyNotConfigured = errors.New("API key not configured")

// UpstreamError is a non-2xx response from the generation API.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("Gemini request failed: %d - %s", e.StatusCode, e.Body)
}

// GeminiConfig configures a GeminiService.
type GeminiConfig struct {
	APIKey string
	APIURL string
	// Timeout bounds a whole upstream call. Zero means no timeout.
	Timeout time.Duration
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// GeminiService forwards single-turn prompts to the Gemini generateContent API.
type GeminiService struct {
	apiKey string
	apiURL string
	client *http.Client
	logger *zap.Logger
}

// NewGeminiService creates a new GeminiService instance. An empty API key is
// allowed; GenerateText then fails with ErrAPIKeyNotConfigured.
func NewGeminiService(cfg GeminiConfig, log *zap.Logger) *GeminiService {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &GeminiService{
		apiKey: cfg.APIKey,
		apiURL: cfg.APIURL,
		client: client,
		logger: logger.OrNop(log),
	}
}

// Configured reports whether an API key is present.
func (s *GeminiService) Configured() bool {
	return s.apiKey != ""
}

type generateContentRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

// GenerateText sends prompt upstream and returns the first text fragment of
// the first candidate, or "" when the response has no such fragment.
func (s *GeminiService) GenerateText(ctx context.Context, prompt string) (string, error) {
	if !s.Configured() {
		s.logger.Error("GEMINI_API_KEY environment variable is not set")
		return "", ErrAPIKeyNotConfigured
	}

	s.logger.Info("Making request to Gemini", zap.String("prompt", logger.Truncate(prompt, 100)))

	endpoint, err := s.endpoint()
	if err != nil {
		return "", err
	}

	reqBody := generateContentRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		metrics.UpstreamDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()
	metrics.UpstreamDuration.WithLabelValues(strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())

	s.logger.Info("Gemini response status", zap.Int("status", resp.StatusCode))

	body, err := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		upstreamErr := &UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
		s.logger.Error("Gemini API error", zap.Int("status", resp.StatusCode), zap.ByteString("body", body))
		return "", upstreamErr
	}
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	s.logger.Debug("Gemini response data", zap.ByteString("body", body))

	return ExtractText(data), nil
}

func (s *GeminiService) endpoint() (string, error) {
	u, err := url.Parse(s.apiURL)
	if err != nil {
		return "", fmt.Errorf("invalid Gemini API URL: %w", err)
	}
	q := u.Query()
	q.Set("key", s.apiKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ExtractText walks candidates[0].content.parts[0].text of a decoded
// generateContent response. Any missing or mistyped segment yields "".
func ExtractText(data any) string {
	path := []any{"candidates", 0, "content", "parts", 0, "text"}

	cur := data
	for _, seg := range path {
		switch key := seg.(type) {
		case string:
			obj, ok := cur.(map[string]any)
			if !ok {
				return ""
			}
			cur = obj[key]
		case int:
			arr, ok := cur.([]any)
			if !ok || len(arr) <= key {
				return ""
			}
			cur = arr[key]
		}
	}

	text, _ := cur.(string)
	return text
}

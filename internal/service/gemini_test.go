package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestGemini(t *testing.T, apiKey, apiURL string) *GeminiService {
	t.Helper()
	return NewGeminiService(GeminiConfig{APIKey: apiKey, APIURL: apiURL}, zaptest.NewLogger(t))
}

func TestGeminiService_MissingKeyMakesNoCall(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer ts.Close()

	svc := newTestGemini(t, "", ts.URL)
	assert.False(t, svc.Configured())

	text, err := svc.GenerateText(context.Background(), "find vegan food")
	assert.ErrorIs(t, err, ErrAPIKeyNotConfigured)
	assert.Empty(t, text)
	assert.Equal(t, int32(0), atomic.LoadInt32(&hits))
}

func TestGeminiService_ForwardsPrompt(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/models/gemini-2.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"contents":[{"parts":[{"text":"find vegan food"}]}]}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"[{\"name\":\"Green Bowl\"}]"},{"text":"ignored"}]}}]}`)
	}))
	defer ts.Close()

	svc := newTestGemini(t, "secret", ts.URL+"/v1/models/gemini-2.5-flash:generateContent")
	text, err := svc.GenerateText(context.Background(), "find vegan food")
	require.NoError(t, err)
	assert.Equal(t, `[{"name":"Green Bowl"}]`, text)
}

func TestGeminiService_UpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":{"message":"API key not valid"}}`)
	}))
	defer ts.Close()

	svc := newTestGemini(t, "bad", ts.URL)
	_, err := svc.GenerateText(context.Background(), "prompt")
	require.Error(t, err)

	var upstreamErr *UpstreamError
	require.True(t, errors.As(err, &upstreamErr))
	assert.Equal(t, http.StatusForbidden, upstreamErr.StatusCode)
	assert.Equal(t, `{"error":{"message":"API key not valid"}}`, upstreamErr.Body)
	assert.Equal(t, `Gemini request failed: 403 - {"error":{"message":"API key not valid"}}`, err.Error())
}

func TestGeminiService_UndecodableResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>oops</html>`)
	}))
	defer ts.Close()

	svc := newTestGemini(t, "secret", ts.URL)
	_, err := svc.GenerateText(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode response")
}

func TestGeminiService_TransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	svc := newTestGemini(t, "secret", url)
	_, err := svc.GenerateText(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send request")
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"full path", `{"candidates":[{"content":{"parts":[{"text":"hello"}]}}]}`, "hello"},
		{"first part only", `{"candidates":[{"content":{"parts":[{"text":"a"},{"text":"b"}]}},{"content":{"parts":[{"text":"c"}]}}]}`, "a"},
		{"no candidates", `{}`, ""},
		{"empty candidates", `{"candidates":[]}`, ""},
		{"no content", `{"candidates":[{"finishReason":"SAFETY"}]}`, ""},
		{"null content", `{"candidates":[{"content":null}]}`, ""},
		{"no parts", `{"candidates":[{"content":{}}]}`, ""},
		{"empty parts", `{"candidates":[{"content":{"parts":[]}}]}`, ""},
		{"no text", `{"candidates":[{"content":{"parts":[{"inlineData":{}}]}}]}`, ""},
		{"candidates not an array", `{"candidates":{"0":{}}}`, ""},
		{"text not a string", `{"candidates":[{"content":{"parts":[{"text":42}]}}]}`, ""},
		{"top level array", `[1,2]`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var data any
			require.NoError(t, json.Unmarshal([]byte(tt.body), &data))
			assert.Equal(t, tt.want, ExtractText(data))
		})
	}
}

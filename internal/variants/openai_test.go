package variants

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const variantsJSON = `{"variants":[{"tone":"punchy","text":"Hook line."},{"tone":"open-question","text":"Why?"}]}`

func chatResponse(t *testing.T, content string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"id":     "chatcmpl-test",
		"object": "chat.completion",
		"model":  "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	})
	require.NoError(t, err)
	return body
}

func newOpenAIGenerator(t *testing.T, url string, timeout time.Duration) *Generator {
	t.Helper()
	cfg := remoteConfig()
	cfg.BaseURL = url + "/v1"
	cfg.Timeout = timeout
	g, err := New(context.Background(), cfg)
	require.NoError(t, err)
	return g
}

func TestOpenAIGenerateSuccess(t *testing.T) {
	var request map[string]any
	var auth, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &request)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(chatResponse(t, variantsJSON))
	}))
	defer srv.Close()

	got, err := newOpenAIGenerator(t, srv.URL, time.Second).Generate(context.Background(), "Excerpt", "Book", "Author")

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, "/v1/chat/completions", path)
	assert.Equal(t, "gpt-4o-mini", request["model"])
	assert.InDelta(t, 0.8, request["temperature"], 1e-6)
	assert.InDelta(t, 0.9, request["top_p"], 1e-6)
	assert.EqualValues(t, 1600, request["max_tokens"])
	assert.Equal(t, map[string]any{"type": "json_object"}, request["response_format"])

	messages, ok := request["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, SystemPrompt, messages[0].(map[string]any)["content"])
}

func TestOpenAIStatusTaxonomy(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   error
	}{
		{http.StatusUnauthorized, `{"error":{"message":"Incorrect API key","type":"invalid_request_error"}}`, ErrInvalidAPIKey},
		{http.StatusRequestTimeout, `{"error":{"message":"timeout","type":"server_error"}}`, ErrTimeout},
		{http.StatusTooManyRequests, `{"error":{"message":"Rate limit reached","type":"requests"}}`, ErrRateLimit},
		{http.StatusBadRequest, `{"error":{"message":"content_filter","type":"invalid_request_error"}}`, ErrContentPolicy},
		{http.StatusForbidden, `forbidden`, ErrContentPolicy},
		{http.StatusInternalServerError, `{"error":{"message":"boom","type":"server_error"}}`, ErrInvalidResponse},
		{http.StatusBadGateway, `<html>bad gateway</html>`, ErrInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			got, err := newOpenAIGenerator(t, srv.URL, time.Second).Generate(context.Background(), "Excerpt", "", "")

			assert.Nil(t, got)
			assert.ErrorIs(t, err, tt.want)
			var genErr *GenerationError
			require.ErrorAs(t, err, &genErr)
			assert.Equal(t, tt.status, genErr.StatusCode)
		})
	}
}

func TestOpenAIMalformedBodies(t *testing.T) {
	tests := []struct {
		name string
		body func(t *testing.T) []byte
	}{
		{"not json", func(*testing.T) []byte { return []byte("definitely not json") }},
		{"no choices", func(*testing.T) []byte { return []byte(`{"id":"x","choices":[]}`) }},
		{"inner content not json", func(t *testing.T) []byte { return chatResponse(t, "Here you go!") }},
		{"inner content unknown tones", func(t *testing.T) []byte {
			return chatResponse(t, `[{"tone":"grumpy","text":"x"}]`)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write(tt.body(t))
			}))
			defer srv.Close()

			_, err := newOpenAIGenerator(t, srv.URL, time.Second).Generate(context.Background(), "Excerpt", "", "")

			assert.ErrorIs(t, err, ErrInvalidResponse)
		})
	}
}

func TestOpenAITimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	_, err := newOpenAIGenerator(t, srv.URL, 50*time.Millisecond).Generate(context.Background(), "Excerpt", "", "")

	assert.ErrorIs(t, err, ErrTimeout)
}

func TestOpenAITransportFailureIsTimeout(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newOpenAIGenerator(t, url, time.Second).Generate(context.Background(), "Excerpt", "", "")

	assert.ErrorIs(t, err, ErrTimeout)
}

func TestOpenAICallerCancellation(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := newOpenAIGenerator(t, srv.URL, 5*time.Second).Generate(ctx, "Excerpt", "", "")

	assert.ErrorIs(t, err, ErrCanceled)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/training-factory/pkg/types"
)

func messagesServer(t *testing.T, status int, content []map[string]string, seen *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		if seen != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":          "msg_1",
			"type":        "message",
			"role":        "assistant",
			"model":       "test-model",
			"content":     content,
			"stop_reason": "end_turn",
			"usage":       map[string]int{"input_tokens": 12, "output_tokens": 5},
		})
	}))
}

func testClaude(url string) *ClaudeLLM {
	return NewClaudeLLM(types.AIConfig{APIKey: "test-key", Model: "test-model", MaxTokens: 256}, nil,
		option.WithBaseURL(url), option.WithMaxRetries(0))
}

func TestClaudeLLM_Complete(t *testing.T) {
	var body map[string]any
	srv := messagesServer(t, http.StatusOK, []map[string]string{
		{"type": "text", "text": `{"deck": `},
		{"type": "text", "text": `[]}`},
	}, &body)
	defer srv.Close()

	got, err := testClaude(srv.URL).Complete(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, `{"deck": []}`, got)

	assert.Equal(t, "test-model", body["model"])
	assert.Equal(t, 256.0, body["max_tokens"])
	msgs, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 1)
	assert.Equal(t, "user", msgs[0].(map[string]any)["role"])
}

func TestClaudeLLM_Errors(t *testing.T) {
	t.Run("http error", func(t *testing.T) {
		srv := messagesServer(t, http.StatusBadRequest, nil, nil)
		defer srv.Close()
		_, err := testClaude(srv.URL).Complete(context.Background(), "hello")
		assert.Error(t, err)
	})
	t.Run("no text", func(t *testing.T) {
		srv := messagesServer(t, http.StatusOK, []map[string]string{}, nil)
		defer srv.Close()
		_, err := testClaude(srv.URL).Complete(context.Background(), "hello")
		assert.ErrorContains(t, err, "no text content")
	})
}

func TestNewClaudeLLM_Defaults(t *testing.T) {
	c := NewClaudeLLM(types.AIConfig{APIKey: "k"}, nil)
	assert.Equal(t, defaultModel, c.Model)
	assert.Equal(t, int64(defaultMaxTokens), c.MaxTokens)
}

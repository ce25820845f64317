package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatReply(content any) map[string]any {
	return map[string]any{
		"choices": []any{
			map[string]any{
				"message": map[string]any{"role": "assistant", "content": content},
			},
		},
	}
}

func TestCompleteSendsChatRequest(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		require.NotEmpty(t, r.Header.Get("X-Request-Id"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(chatReply("hello"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "key", "test-model")
	content, err := client.Complete(context.Background(), []Message{
		{Role: "system", Content: "sys"},
		{Role: "user", Content: "usr"},
	}, 0.1, time.Second)

	require.NoError(t, err)
	assert.Equal(t, "hello", content)
	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, 0.1, got.Temperature)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	require.Len(t, got.Messages, 2)
}

func TestCompleteRetriesWithoutResponseFormat(t *testing.T) {
	var formats []*ResponseFormat
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		formats = append(formats, req.ResponseFormat)
		if req.ResponseFormat != nil {
			http.Error(w, "response_format not supported", http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(chatReply("fallback ok"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "key", "m")
	content, err := client.Complete(context.Background(), []Message{{Role: "user", Content: "x"}}, 0, time.Second)

	require.NoError(t, err)
	assert.Equal(t, "fallback ok", content)
	require.Len(t, formats, 2)
	assert.NotNil(t, formats[0])
	assert.Nil(t, formats[1])
}

func TestCompleteDoesNotRetryServerErrors(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "overloaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "key", "m")
	_, err := client.Complete(context.Background(), []Message{{Role: "user", Content: "x"}}, 0, time.Second)

	var modelErr *ModelError
	require.ErrorAs(t, err, &modelErr)
	assert.Equal(t, http.StatusInternalServerError, modelErr.Status)
	assert.Equal(t, 1, calls)
}

func TestMessageContentShapes(t *testing.T) {
	tests := []struct {
		name    string
		content any
		want    string
	}{
		{name: "plain string", content: "hello", want: "hello"},
		{
			name:    "array of text parts",
			content: []any{map[string]any{"type": "text", "text": "part one"}, map[string]any{"text": "part two"}},
			want:    "part one\npart two",
		},
		{
			name:    "array of strings",
			content: []any{"a", "b"},
			want:    "a\nb",
		},
		{name: "empty choices", content: nil, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(chatReply(tt.content))
			require.NoError(t, err)
			var resp chatResponse
			require.NoError(t, json.Unmarshal(raw, &resp))
			assert.Equal(t, tt.want, messageContent(resp))
		})
	}
}

func TestMessageContentNoChoices(t *testing.T) {
	assert.Empty(t, messageContent(chatResponse{}))
}

// Package ai talks to a chat-completions-style text-generation
// endpoint and orchestrates the plan-generation round trip.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/agisilaos/todoist-planner/internal/api"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ResponseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Temperature    float64         `json:"temperature"`
	Messages       []Message       `json:"messages"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string          `json:"role"`
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type ModelError struct {
	Status  int
	Message string
}

func (e *ModelError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("model endpoint error: status %d", e.Status)
	}
	return fmt.Sprintf("model endpoint error: status %d: %s", e.Status, e.Message)
}

// Client issues chat-completion requests. Calls request JSON-only
// output; endpoints that reject the structured-output mode with 400 or
// 422 get exactly one retry without the hint.
type Client struct {
	URL    string
	Key    string
	Model  string
	HTTP   *http.Client
	Logger *zap.Logger
}

func NewClient(url, key, model string) *Client {
	return &Client{
		URL:   strings.TrimSpace(url),
		Key:   strings.TrimSpace(key),
		Model: strings.TrimSpace(model),
		HTTP:  &http.Client{},
	}
}

func (c *Client) configured() bool {
	return c != nil && c.URL != "" && c.Key != "" && c.Model != ""
}

// Complete sends the messages with temperature and a per-call timeout
// and returns the assistant message content.
func (c *Client) Complete(ctx context.Context, messages []Message, temperature float64, timeout time.Duration) (string, error) {
	body := chatRequest{
		Model:          c.Model,
		Temperature:    temperature,
		Messages:       messages,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	}

	resp, err := c.post(ctx, body, timeout)
	if err != nil {
		var modelErr *ModelError
		if isStructuredOutputReject(err, &modelErr) {
			if c.Logger != nil {
				c.Logger.Debug("structured output rejected, retrying without response_format", zap.Int("status", modelErr.Status))
			}
			body.ResponseFormat = nil
			resp, err = c.post(ctx, body, timeout)
		}
		if err != nil {
			return "", err
		}
	}

	return messageContent(resp), nil
}

func (c *Client) post(ctx context.Context, body chatRequest, timeout time.Duration) (chatResponse, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return chatResponse{}, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(payload))
	if err != nil {
		return chatResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Key)
	req.Header.Set("X-Request-Id", api.NewRequestID())

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return chatResponse{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return chatResponse{}, err
	}
	if resp.StatusCode >= 400 {
		return chatResponse{}, &ModelError{Status: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}

	var decoded chatResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		return chatResponse{}, fmt.Errorf("decode response: %w", err)
	}
	return decoded, nil
}

func isStructuredOutputReject(err error, out **ModelError) bool {
	modelErr, ok := err.(*ModelError)
	if !ok {
		return false
	}
	*out = modelErr
	return modelErr.Status == http.StatusBadRequest || modelErr.Status == http.StatusUnprocessableEntity
}

// messageContent extracts the assistant content, which may be a plain
// string or an array of content parts joined by newlines.
func messageContent(resp chatResponse) string {
	if len(resp.Choices) == 0 {
		return ""
	}
	raw := resp.Choices[0].Message.Content
	if len(raw) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}

	var parts []any
	if err := json.Unmarshal(raw, &parts); err != nil {
		return ""
	}
	var joined []string
	for _, part := range parts {
		switch v := part.(type) {
		case string:
			joined = append(joined, v)
		case map[string]any:
			if s, ok := v["text"].(string); ok {
				joined = append(joined, s)
			}
		}
	}
	return strings.TrimSpace(strings.Join(joined, "\n"))
}

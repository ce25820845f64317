package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"testing"
	"time"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func jsonResponse(status int, body any) *http.Response {
	payload, _ := json.Marshal(body)
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader(payload)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func noSleep(t *testing.T) {
	t.Helper()
	orig := waitForRetry
	waitForRetry = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	t.Cleanup(func() { waitForRetry = orig })
}

func TestClientGetSendsAuthAndQuery(t *testing.T) {
	client := NewClient("https://example.com", "token", 2*time.Second)
	client.HTTP = &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if r.Header.Get("Authorization") != "Bearer token" {
			t.Fatalf("missing auth header: %q", r.Header.Get("Authorization"))
		}
		if r.URL.Query().Get("limit") != "5" {
			t.Fatalf("unexpected query: %s", r.URL.RawQuery)
		}
		return jsonResponse(http.StatusOK, map[string]string{"ok": "yes"}), nil
	})}

	query := url.Values{}
	query.Set("limit", "5")
	var out map[string]string
	if _, err := client.Get(context.Background(), "/test", query, &out); err != nil {
		t.Fatalf("get: %v", err)
	}
	if out["ok"] != "yes" {
		t.Fatalf("unexpected body: %v", out)
	}
}

func TestNewClientDefaultsZeroTimeout(t *testing.T) {
	client := NewClient("", "token", 0)
	if client.HTTP.Timeout != defaultTimeout {
		t.Fatalf("expected %v timeout for zero input, got %v", defaultTimeout, client.HTTP.Timeout)
	}
	client = NewClient("", "token", 5*time.Second)
	if client.HTTP.Timeout != 5*time.Second {
		t.Fatalf("expected explicit timeout to be kept, got %v", client.HTTP.Timeout)
	}
}

func TestClientPostSendsRequestID(t *testing.T) {
	client := NewClient("https://example.com", "token", 2*time.Second)
	client.HTTP = &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if r.Header.Get("X-Request-Id") == "" {
			t.Fatalf("missing request id header")
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Fatalf("missing content type")
		}
		return jsonResponse(http.StatusOK, map[string]string{}), nil
	})}

	requestID, err := client.Post(context.Background(), "/tasks", nil, map[string]any{"content": "x"}, nil, true)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if requestID == "" {
		t.Fatalf("expected request id to be returned")
	}
}

func TestClientRetriesIdempotentRequests(t *testing.T) {
	noSleep(t)
	attempts := 0
	client := NewClient("https://example.com", "token", 2*time.Second)
	client.HTTP = &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		attempts++
		if attempts < 3 {
			return jsonResponse(http.StatusServiceUnavailable, map[string]string{}), nil
		}
		return jsonResponse(http.StatusOK, map[string]string{"ok": "yes"}), nil
	})}

	var out map[string]string
	if _, err := client.Get(context.Background(), "/projects", nil, &out); err != nil {
		t.Fatalf("get: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestClientDoesNotRetryPostWithoutRequestID(t *testing.T) {
	noSleep(t)
	attempts := 0
	client := NewClient("https://example.com", "token", 2*time.Second)
	client.HTTP = &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		attempts++
		return jsonResponse(http.StatusServiceUnavailable, map[string]string{}), nil
	})}

	_, err := client.Post(context.Background(), "/tasks", nil, map[string]any{}, nil, false)
	if err == nil {
		t.Fatalf("expected error")
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestClientAPIError(t *testing.T) {
	client := NewClient("https://example.com", "token", 2*time.Second)
	client.HTTP = &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusForbidden,
			Body:       io.NopCloser(bytes.NewReader([]byte("denied"))),
			Header:     http.Header{},
		}, nil
	})}

	_, err := client.Get(context.Background(), "/projects", nil, nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusForbidden || apiErr.Message != "denied" {
		t.Fatalf("unexpected error: %+v", apiErr)
	}
}

func TestRetryDelayHonorsRetryAfter(t *testing.T) {
	if got := retryDelay(0, "2"); got != 2*time.Second {
		t.Fatalf("expected 2s, got %v", got)
	}
	if got := retryDelay(0, "30"); got != 3*time.Second {
		t.Fatalf("expected cap at 3s, got %v", got)
	}
	if got := retryDelay(0, ""); got != 200*time.Millisecond {
		t.Fatalf("expected base delay, got %v", got)
	}
	if got := retryDelay(5, ""); got != 1200*time.Millisecond {
		t.Fatalf("expected backoff cap, got %v", got)
	}
}

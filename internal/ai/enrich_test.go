package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agisilaos/todoist-planner/internal/app/planner"
)

func TestEnrichLabelsClassifiesPerItem(t *testing.T) {
	var prompts []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		prompts = append(prompts, req.Messages[1].Content)
		reply := `{"labels": ["работа"]}`
		if strings.Contains(req.Messages[1].Content, "breathing") {
			reply = `{"labels": ["Жизнь"]}`
		}
		_ = json.NewEncoder(w).Encode(chatReply(reply))
	}))
	defer server.Close()

	p := &Planner{Client: NewClient(server.URL, "key", "m"), Rules: DefaultRules()}
	resolved := planner.ResolvedPlan{
		Tasks: []planner.ResolvedTask{
			{Ref: "t1", Content: "Fix deployment pipeline"},
		},
		Subtasks: []planner.ResolvedSubtask{
			{Ref: "s1", ParentRef: "t1", Content: "Morning breathing exercise"},
		},
	}

	got := p.EnrichLabels(context.Background(), resolved, testLabels, "original request")

	require.Len(t, got.Tasks, 1)
	// Canonical casing comes from the account labels, not the reply.
	assert.Equal(t, []string{"Работа"}, got.Tasks[0].Labels)
	require.Len(t, got.Subtasks, 1)
	assert.Equal(t, []string{"Жизнь"}, got.Subtasks[0].Labels)
	assert.Empty(t, got.Warnings)

	require.Len(t, prompts, 2)
	assert.Contains(t, prompts[0], "Item type: task")
	assert.Contains(t, prompts[1], "Parent task text: Fix deployment pipeline")
	assert.Contains(t, prompts[1], "Original user request: original request")
}

func TestEnrichLabelsFailureKeepsExisting(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()

	p := &Planner{Client: NewClient(server.URL, "key", "m")}
	resolved := planner.ResolvedPlan{
		Tasks: []planner.ResolvedTask{{Ref: "t1", Content: "x", Labels: []string{"Работа"}}},
	}

	got := p.EnrichLabels(context.Background(), resolved, testLabels, "")

	assert.Equal(t, []string{"Работа"}, got.Tasks[0].Labels)
	require.Len(t, got.Warnings, 1)
	assert.True(t, strings.HasPrefix(got.Warnings[0], "AI label pass failed for t1:"))
}

func TestEnrichLabelsIncompleteConfig(t *testing.T) {
	p := &Planner{Client: NewClient("", "", "")}
	got := p.EnrichLabels(context.Background(), planner.ResolvedPlan{}, testLabels, "")
	assert.Equal(t, []string{"AI label pass skipped: incomplete config"}, got.Warnings)
}

func TestEnrichLabelsNoLabelsIsNoop(t *testing.T) {
	p := &Planner{Client: NewClient("http://unused", "k", "m")}
	resolved := planner.ResolvedPlan{
		Tasks: []planner.ResolvedTask{{Ref: "t1", Content: "x", Labels: []string{"keep"}}},
	}
	got := p.EnrichLabels(context.Background(), resolved, nil, "")
	assert.Equal(t, []string{"keep"}, got.Tasks[0].Labels)
	assert.Empty(t, got.Warnings)
}

func TestEnrichLabelsDoesNotMutateInput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(chatReply(`{"labels": ["Жизнь"]}`))
	}))
	defer server.Close()

	p := &Planner{Client: NewClient(server.URL, "key", "m")}
	resolved := planner.ResolvedPlan{
		Tasks:    []planner.ResolvedTask{{Ref: "t1", Content: "x", Labels: []string{"Работа"}}},
		Subtasks: []planner.ResolvedSubtask{{Ref: "s1", ParentRef: "t1", Content: "y", Labels: []string{"Работа"}}},
	}

	got := p.EnrichLabels(context.Background(), resolved, testLabels, "")

	assert.Equal(t, []string{"Жизнь"}, got.Tasks[0].Labels)
	assert.Equal(t, []string{"Жизнь"}, got.Subtasks[0].Labels)
	// The input plan keeps its original labels.
	assert.Equal(t, []string{"Работа"}, resolved.Tasks[0].Labels)
	assert.Equal(t, []string{"Работа"}, resolved.Subtasks[0].Labels)
}

func TestEnrichLabelsCachesIdenticalContent(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_ = json.NewEncoder(w).Encode(chatReply(`{"labels": ["Работа"]}`))
	}))
	defer server.Close()

	p := &Planner{Client: NewClient(server.URL, "key", "m")}
	resolved := planner.ResolvedPlan{
		Tasks: []planner.ResolvedTask{
			{Ref: "t1", Content: "Weekly sync"},
			{Ref: "t2", Content: "Weekly sync"},
		},
	}

	got := p.EnrichLabels(context.Background(), resolved, testLabels, "")

	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"Работа"}, got.Tasks[0].Labels)
	assert.Equal(t, []string{"Работа"}, got.Tasks[1].Labels)
}

func TestDecodeLabelDecisionShapes(t *testing.T) {
	lookup := map[string]string{"работа": "Работа", "жизнь": "Жизнь"}

	tests := []struct {
		name string
		in   map[string]any
		want []string
	}{
		{name: "array", in: map[string]any{"labels": []any{"Работа", "работа", "Жизнь"}}, want: []string{"Работа", "Жизнь"}},
		{name: "single string", in: map[string]any{"labels": "Работа"}, want: []string{"Работа"}},
		{name: "label key", in: map[string]any{"label": "жизнь"}, want: []string{"Жизнь"}},
		{name: "invented label dropped", in: map[string]any{"labels": []any{"Invented"}}, want: nil},
		{name: "empty", in: map[string]any{}, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeLabelDecision(tt.in, lookup))
		})
	}
}

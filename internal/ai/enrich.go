package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/agisilaos/todoist-planner/internal/api"
	"github.com/agisilaos/todoist-planner/internal/app/planner"
	"github.com/agisilaos/todoist-planner/internal/plan"
)

const (
	labelTemperature = 0.0

	// Ceiling on model calls per enrichment pass; items beyond it keep
	// their resolved labels.
	maxEnrichItems = 200
)

// EnrichLabels runs a second model pass that classifies labels per
// task and subtask. Any per-item failure keeps that item's existing
// labels and appends a warning; the pass never fails the plan.
func (p *Planner) EnrichLabels(ctx context.Context, resolved planner.ResolvedPlan, availableLabels []api.Label, sourceText string) planner.ResolvedPlan {
	labelNames := make([]string, 0, len(availableLabels))
	for _, l := range availableLabels {
		if name := strings.TrimSpace(l.Name); name != "" {
			labelNames = append(labelNames, name)
		}
	}
	labelNames = plan.UniqueStrings(labelNames)
	if len(labelNames) == 0 {
		return resolved
	}
	if !p.Client.configured() {
		resolved.Warnings = plan.UniqueStrings(append(resolved.Warnings, "AI label pass skipped: incomplete config"))
		return resolved
	}

	lookup := make(map[string]string, len(labelNames))
	for _, name := range labelNames {
		lookup[strings.ToLower(name)] = name
	}
	contentByRef := make(map[string]string, len(resolved.Tasks))
	for _, task := range resolved.Tasks {
		contentByRef[task.Ref] = task.Content
	}

	system := labelSystemPrompt(labelNames, p.Rules)
	warnings := append([]string{}, resolved.Warnings...)
	cache := make(map[string][]string)
	processed := 0

	classify := func(itemType, content, parentContent string, existing []string, ref string) []string {
		if processed >= maxEnrichItems {
			return existing
		}
		cacheKey := itemType + "|" + strings.ToLower(strings.TrimSpace(content)) + "|" + strings.ToLower(strings.TrimSpace(parentContent))
		if cached, ok := cache[cacheKey]; ok {
			return cached
		}

		processed++
		decided, err := p.classifyLabels(ctx, system, itemType, content, parentContent, sourceText, lookup)
		if err != nil {
			p.logger().Warn("label pass failed", zap.String("ref", ref), zap.Error(err))
			warnings = append(warnings, fmt.Sprintf("AI label pass failed for %s: %s", ref, err.Error()))
			cache[cacheKey] = existing
			return existing
		}
		final := decided
		if len(final) == 0 {
			final = plan.UniqueStrings(existing)
		}
		cache[cacheKey] = final
		return final
	}

	// Write into copies so the caller's plan is left untouched.
	tasks := make([]planner.ResolvedTask, len(resolved.Tasks))
	copy(tasks, resolved.Tasks)
	for i, task := range tasks {
		ref := task.Ref
		if ref == "" {
			ref = task.Content
		}
		tasks[i].Labels = plan.UniqueStrings(classify("task", task.Content, "", task.Labels, ref))
	}
	resolved.Tasks = tasks

	subtasks := make([]planner.ResolvedSubtask, len(resolved.Subtasks))
	copy(subtasks, resolved.Subtasks)
	for i, sub := range subtasks {
		parentContent := contentByRef[sub.ParentRef]
		if parentContent == "" {
			parentContent = contentByRef[sub.ParentTaskID]
		}
		ref := sub.Ref
		if ref == "" {
			ref = sub.Content
		}
		subtasks[i].Labels = plan.UniqueStrings(classify("subtask", sub.Content, parentContent, sub.Labels, ref))
	}
	resolved.Subtasks = subtasks

	resolved.Warnings = plan.UniqueStrings(warnings)
	return resolved
}

// classifyLabels asks the model for labels for one item and maps the
// reply onto the allowed set, dropping anything it invented.
func (p *Planner) classifyLabels(ctx context.Context, system, itemType, content, parentContent, sourceText string, lookup map[string]string) ([]string, error) {
	messages := []Message{
		{Role: "system", Content: system},
		{Role: "user", Content: labelUserPrompt(itemType, content, parentContent, sourceText)},
	}
	raw, err := p.Client.Complete(ctx, messages, labelTemperature, p.labelTimeout())
	if err != nil {
		return nil, err
	}

	candidate := plan.Extract(raw)
	if candidate == nil {
		return nil, ErrNoJSON
	}
	return decodeLabelDecision(candidate, lookup), nil
}

// decodeLabelDecision accepts labels as an array, a single string, or
// a "label" key, tolerating the shapes models actually produce.
func decodeLabelDecision(candidate map[string]any, lookup map[string]string) []string {
	var raw []string
	switch v := candidate["labels"].(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			} else if s := stringifyScalar(item); s != "" {
				raw = append(raw, s)
			}
		}
	case string:
		raw = append(raw, v)
	}
	if s, ok := candidate["label"].(string); ok {
		raw = append(raw, s)
	}

	var out []string
	seen := make(map[string]bool)
	for _, item := range raw {
		s := strings.TrimSpace(item)
		if s == "" {
			continue
		}
		name, ok := lookup[strings.ToLower(s)]
		if !ok {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	return out
}

func stringifyScalar(value any) string {
	switch v := value.(type) {
	case float64:
		data, _ := json.Marshal(v)
		return string(data)
	case bool:
		return fmt.Sprintf("%t", v)
	}
	return ""
}

package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/agisilaos/todoist-planner/internal/api"
	"github.com/agisilaos/todoist-planner/internal/plan"
	"github.com/agisilaos/todoist-planner/internal/schedule"
)

var (
	// ErrConfigIncomplete means one of the endpoint URL, API key, or
	// model name is missing; nothing was sent.
	ErrConfigIncomplete = errors.New("ai config incomplete: url, key, and model are required")

	// ErrNoJSON means the model replied but no JSON object could be
	// extracted from the reply.
	ErrNoJSON = errors.New("no JSON object found in model response")
)

// SchemaError reports a model reply that parsed as JSON but failed
// plan validation.
type SchemaError struct {
	Errors []string
}

func (e *SchemaError) Error() string {
	return "plan schema invalid: " + plan.SummarizeErrors(e.Errors)
}

const (
	planTemperature = 0.1

	defaultPlanTimeout  = 120 * time.Second
	defaultLabelTimeout = 45 * time.Second
)

// Planner turns a free-form request into a validated, normalized plan
// document.
type Planner struct {
	Client *Client
	Rules  Rules
	Logger *zap.Logger

	// Zero values fall back to the defaults.
	PlanTimeout  time.Duration
	LabelTimeout time.Duration
}

// PlanResult carries the normalized plan, the day context it was
// computed against, and the raw model output for debugging. Resolution
// should reuse Today so prompt and due-date math agree on the date.
type PlanResult struct {
	Plan  plan.Plan
	Today schedule.DayInfo
	Raw   string
}

func (p *Planner) logger() *zap.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return zap.NewNop()
}

func (p *Planner) planTimeout() time.Duration {
	if p.PlanTimeout > 0 {
		return p.PlanTimeout
	}
	return defaultPlanTimeout
}

func (p *Planner) labelTimeout() time.Duration {
	if p.LabelTimeout > 0 {
		return p.LabelTimeout
	}
	return defaultLabelTimeout
}

// RequestPlan asks the model for a task plan for text, anchored at the
// given timezone, with the projects and labels offered as the only
// valid routing targets.
func (p *Planner) RequestPlan(ctx context.Context, text, timezone string, projects []api.Project, labels []api.Label) (PlanResult, error) {
	if !p.Client.configured() {
		return PlanResult{}, ErrConfigIncomplete
	}

	today := schedule.Today(timezone)
	messages := []Message{
		{Role: "system", Content: systemPrompt(projects, labels, p.Rules, today, time.Now())},
		{Role: "user", Content: userPrompt(text)},
	}

	p.logger().Debug("requesting plan",
		zap.String("model", p.Client.Model),
		zap.String("timezone", today.Timezone),
		zap.Int("projects", len(projects)),
		zap.Int("labels", len(labels)))

	raw, err := p.Client.Complete(ctx, messages, planTemperature, p.planTimeout())
	if err != nil {
		return PlanResult{}, fmt.Errorf("request plan: %w", err)
	}

	candidate := plan.Extract(raw)
	if candidate == nil {
		return PlanResult{Raw: raw}, ErrNoJSON
	}
	if errs := plan.Validate(candidate); len(errs) > 0 {
		return PlanResult{Raw: raw}, &SchemaError{Errors: errs}
	}

	doc := plan.Normalize(candidate)
	p.logger().Debug("plan accepted",
		zap.String("mode", doc.Mode),
		zap.Int("add_task", len(doc.AddTask)),
		zap.Int("create_subtask", len(doc.CreateSubtask)),
		zap.Int("warnings", len(doc.Warnings)))

	return PlanResult{Plan: doc, Today: today, Raw: raw}, nil
}

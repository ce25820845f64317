package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agisilaos/todoist-planner/internal/api"
	"github.com/agisilaos/todoist-planner/internal/plan"
	"github.com/agisilaos/todoist-planner/internal/schedule"
)

var (
	testProjects = []api.Project{{ID: "p1", Name: "Срочные задачи"}, {ID: "p2", Name: "Work"}}
	testLabels   = []api.Label{{ID: "l1", Name: "Работа"}, {ID: "l2", Name: "Жизнь"}}
)

func modelServer(t *testing.T, reply string, capture *chatRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if capture != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(capture))
		}
		_ = json.NewEncoder(w).Encode(chatReply(reply))
	}))
}

func TestRequestPlanRoundTrip(t *testing.T) {
	reply := `Plan ready:
` + "```json\n" + `{
		"schema": "task_plan_v1",
		"mode": "single_task",
		"addTask": [{"ref": "t1", "content": "Review PR", "project_name": "Work"}],
		"updateTaskLabels": [],
		"updateTaskDue": [],
		"createSubtask": []
	}` + "\n```"

	var captured chatRequest
	server := modelServer(t, reply, &captured)
	defer server.Close()

	p := &Planner{Client: NewClient(server.URL, "key", "m"), Rules: DefaultRules()}
	result, err := p.RequestPlan(context.Background(), "создай задачу Review PR", "UTC", testProjects, testLabels)

	require.NoError(t, err)
	assert.Equal(t, plan.ModeSingleTask, result.Plan.Mode)
	require.Len(t, result.Plan.AddTask, 1)
	assert.Equal(t, "Review PR", result.Plan.AddTask[0].Content)
	assert.Equal(t, "UTC", result.Today.Timezone)
	assert.Contains(t, result.Raw, "Plan ready")

	require.Len(t, captured.Messages, 2)
	system := captured.Messages[0].Content
	assert.Contains(t, system, "Schema id: task_plan_v1")
	assert.Contains(t, system, "- Срочные задачи")
	assert.Contains(t, system, "- Работа")
	assert.Contains(t, system, "TODAY CONTEXT: date="+result.Today.ISODate)
	assert.Contains(t, captured.Messages[1].Content, "создай задачу Review PR")
	assert.Equal(t, 0.1, captured.Temperature)
}

func TestRequestPlanConfigIncomplete(t *testing.T) {
	p := &Planner{Client: NewClient("", "key", "m")}
	_, err := p.RequestPlan(context.Background(), "text", "UTC", nil, nil)
	assert.ErrorIs(t, err, ErrConfigIncomplete)
}

func TestRequestPlanNoJSON(t *testing.T) {
	server := modelServer(t, "I could not produce a plan, sorry.", nil)
	defer server.Close()

	p := &Planner{Client: NewClient(server.URL, "key", "m")}
	result, err := p.RequestPlan(context.Background(), "text", "UTC", nil, nil)

	assert.ErrorIs(t, err, ErrNoJSON)
	assert.Equal(t, "I could not produce a plan, sorry.", result.Raw)
}

func TestRequestPlanSchemaInvalid(t *testing.T) {
	server := modelServer(t, `{"schema": "wrong", "mode": "batch"}`, nil)
	defer server.Close()

	p := &Planner{Client: NewClient(server.URL, "key", "m")}
	_, err := p.RequestPlan(context.Background(), "text", "UTC", nil, nil)

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.NotEmpty(t, schemaErr.Errors)
	assert.True(t, strings.HasPrefix(schemaErr.Error(), "plan schema invalid: "))
}

func TestSystemPromptIncludesRules(t *testing.T) {
	rules := Rules{
		PriorityProject: "Срочные задачи",
		LabelHints: []LabelHint{
			{Label: "Работа", Topic: "work tasks"},
		},
	}
	today := schedule.DayInfo{Timezone: "UTC", ISODate: "2024-06-04", WeekdayISO: 2}

	prompt := systemPrompt(testProjects, testLabels, rules, today, time.Date(2024, 6, 4, 12, 0, 0, 0, time.UTC))
	assert.Contains(t, prompt, "PROJECT RULE: set project_name to 'Срочные задачи'")
	assert.Contains(t, prompt, "if label 'Работа' exists, use it for work tasks.")
	assert.Contains(t, prompt, "Available projects JSON (source of truth):")
}

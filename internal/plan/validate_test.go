package plan

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

func validDocument(t *testing.T) map[string]any {
	return decode(t, `{
		"schema": "task_plan_v1",
		"mode": "single_task",
		"addTask": [
			{"ref": "t1", "content": "Write report", "project_name": "Work",
			 "schedule": {"anchor": "next_weekday", "weekday_iso": 3, "week_offset": 0},
			 "labels": ["Work"]}
		],
		"updateTaskLabels": [{"task_ref": "t1", "labels": ["Work"]}],
		"updateTaskDue": [{"task_ref": "999", "due_string": "tomorrow"}],
		"createSubtask": [
			{"ref": "s1", "parent_ref": "t1", "content": "Draft outline"}
		]
	}`)
}

func TestValidateAcceptsConformingDocument(t *testing.T) {
	assert.Empty(t, Validate(validDocument(t)))
}

func TestValidateRejectsNonObject(t *testing.T) {
	assert.Equal(t, []string{"Root must be a JSON object"}, Validate("nope"))
	assert.Equal(t, []string{"Root must be a JSON object"}, Validate([]any{}))
	assert.Equal(t, []string{"Root must be a JSON object"}, Validate(nil))
}

func TestValidateRequiredArrays(t *testing.T) {
	doc := validDocument(t)
	delete(doc, "updateTaskDue")
	doc["createSubtask"] = "oops"

	errs := Validate(doc)
	assert.Contains(t, errs, "Root.updateTaskDue must be an array")
	assert.Contains(t, errs, "Root.createSubtask must be an array")
}

func TestValidateSchemaAndMode(t *testing.T) {
	doc := validDocument(t)
	doc["schema"] = "task_plan_v2"
	doc["mode"] = "yearly_plan"

	errs := Validate(doc)
	assert.Contains(t, errs, "Root.schema must be 'task_plan_v1'")
	assert.Contains(t, errs, "Root.mode must be one of: single_task, weekly_plan, monthly_plan, batch")
}

func TestValidateUnknownKeysSorted(t *testing.T) {
	doc := validDocument(t)
	doc["zebra"] = 1
	doc["alpha"] = 1

	errs := Validate(doc)
	assert.Contains(t, errs, "Root has unknown keys: alpha, zebra")
}

func TestValidateItemErrors(t *testing.T) {
	doc := validDocument(t)
	doc["addTask"] = []any{
		map[string]any{"ref": "t1", "content": "  ", "extra": true},
		"not an object",
	}
	doc["createSubtask"] = []any{
		map[string]any{"ref": "s1", "content": "orphan"},
	}

	errs := Validate(doc)
	assert.Contains(t, errs, "addTask[0].content must be a non-empty string")
	assert.Contains(t, errs, "addTask[0] unknown keys: extra")
	assert.Contains(t, errs, "addTask[1] must be an object")
	assert.Contains(t, errs, "createSubtask[0] requires parent_ref or parent_task_id")
}

func TestValidateScheduleRules(t *testing.T) {
	tests := []struct {
		name     string
		schedule map[string]any
		want     string
	}{
		{
			name:     "bad anchor",
			schedule: map[string]any{"anchor": "someday", "weekday_iso": 1},
			want:     "addTask[0].schedule.anchor must be one of: next_weekday, absolute_date",
		},
		{
			name:     "weekday out of range",
			schedule: map[string]any{"weekday_iso": 9},
			want:     "addTask[0].schedule.weekday_iso must be integer 1..7",
		},
		{
			name:     "fractional weekday",
			schedule: map[string]any{"weekday_iso": 2.5},
			want:     "addTask[0].schedule.weekday_iso must be integer 1..7",
		},
		{
			name:     "offset out of range",
			schedule: map[string]any{"weekday_iso": 1, "week_offset": 13},
			want:     "addTask[0].schedule.week_offset must be integer 0..12",
		},
		{
			name:     "bad date",
			schedule: map[string]any{"date": "06/15/2024"},
			want:     "addTask[0].schedule.date must be YYYY-MM-DD",
		},
		{
			name:     "bad time",
			schedule: map[string]any{"weekday_iso": 1, "time_hhmm": "25:00"},
			want:     "addTask[0].schedule.time_hhmm must be HH:MM",
		},
		{
			name:     "next_weekday without weekday",
			schedule: map[string]any{"anchor": "next_weekday"},
			want:     "addTask[0].schedule.weekday_iso is required when anchor=next_weekday",
		},
		{
			name:     "absolute_date without date",
			schedule: map[string]any{"anchor": "absolute_date"},
			want:     "addTask[0].schedule.date is required when anchor=absolute_date",
		},
		{
			name:     "empty schedule",
			schedule: map[string]any{},
			want:     "addTask[0].schedule requires at least weekday_iso or date",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validDocument(t)
			doc["addTask"] = []any{
				map[string]any{"ref": "t1", "content": "x", "schedule": tt.schedule},
			}
			assert.Contains(t, Validate(doc), tt.want)
		})
	}
}

func TestValidatePlanModesRequireSchedule(t *testing.T) {
	doc := validDocument(t)
	doc["mode"] = "weekly_plan"
	doc["addTask"] = []any{
		map[string]any{"ref": "t1", "content": "no schedule"},
	}

	errs := Validate(doc)
	assert.Contains(t, errs, "addTask[0].schedule is required for mode='weekly_plan'")
}

func TestSummarizeErrors(t *testing.T) {
	assert.Equal(t, "Unknown schema error", SummarizeErrors(nil))
	assert.Equal(t, "a; b", SummarizeErrors([]string{"a", "b"}))

	many := []string{"e1", "e2", "e3", "e4", "e5", "e6", "e7", "e8", "e9", "e10"}
	assert.Equal(t, "e1; e2; e3; e4; e5; e6; e7; e8; and 2 more", SummarizeErrors(many))
}

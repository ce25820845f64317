package plan

import (
	"fmt"
	"strings"
)

// Normalize repairs a schema-valid-but-messy candidate into the
// canonical Plan shape. It never fails: items missing a truly required
// field are dropped with a warning instead of propagating.
func Normalize(raw map[string]any) Plan {
	var warnings []string
	src := raw
	if src == nil {
		src = map[string]any{}
	}

	normalized := Plan{
		Schema:           defaultString(asString(src["schema"]), Schema),
		Mode:             defaultString(asString(src["mode"]), ModeBatch),
		RequestID:        asString(src["request_id"]),
		Timezone:         asString(src["timezone"]),
		AddTask:          []AddTask{},
		UpdateTaskLabels: []UpdateLabels{},
		UpdateTaskDue:    []UpdateDue{},
		CreateSubtask:    []CreateSubtask{},
		Warnings:         uniqueAnyStrings(asSlice(src["warnings"])),
	}

	for idx, raw := range asSlice(src["addTask"]) {
		item, _ := asMap(raw)
		content := asString(item["content"])
		if content == "" {
			warnings = append(warnings, fmt.Sprintf("addTask[%d] skipped: empty content", idx))
			continue
		}
		normalized.AddTask = append(normalized.AddTask, AddTask{
			Ref:         defaultString(asString(item["ref"]), fmt.Sprintf("task_%d", idx+1)),
			ProjectName: asString(item["project_name"]),
			Content:     content,
			DueString:   asString(item["due_string"]),
			Schedule:    normalizeSchedule(item["schedule"]),
			Labels:      uniqueAnyStrings(asSlice(item["labels"])),
		})
	}

	for idx, raw := range asSlice(src["updateTaskLabels"]) {
		item, _ := asMap(raw)
		taskRef := asString(item["task_ref"])
		if taskRef == "" {
			warnings = append(warnings, fmt.Sprintf("updateTaskLabels[%d] skipped: empty task_ref", idx))
			continue
		}
		normalized.UpdateTaskLabels = append(normalized.UpdateTaskLabels, UpdateLabels{
			TaskRef: taskRef,
			Labels:  uniqueAnyStrings(asSlice(item["labels"])),
		})
	}

	for idx, raw := range asSlice(src["updateTaskDue"]) {
		item, _ := asMap(raw)
		taskRef := asString(item["task_ref"])
		dueString := asString(item["due_string"])
		if taskRef == "" || dueString == "" {
			warnings = append(warnings, fmt.Sprintf("updateTaskDue[%d] skipped: empty task_ref or due_string", idx))
			continue
		}
		normalized.UpdateTaskDue = append(normalized.UpdateTaskDue, UpdateDue{
			TaskRef:   taskRef,
			DueString: dueString,
		})
	}

	for idx, raw := range asSlice(src["createSubtask"]) {
		item, _ := asMap(raw)
		content := asString(item["content"])
		if content == "" {
			warnings = append(warnings, fmt.Sprintf("createSubtask[%d] skipped: empty content", idx))
			continue
		}
		parentRef := asString(item["parent_ref"])
		parentTaskID := asString(item["parent_task_id"])
		if parentRef == "" && parentTaskID == "" {
			warnings = append(warnings, fmt.Sprintf("createSubtask[%d] skipped: parent_ref or parent_task_id is required", idx))
			continue
		}
		normalized.CreateSubtask = append(normalized.CreateSubtask, CreateSubtask{
			Ref:          defaultString(asString(item["ref"]), fmt.Sprintf("subtask_%d", idx+1)),
			ParentRef:    parentRef,
			ParentTaskID: parentTaskID,
			Content:      content,
			DueString:    asString(item["due_string"]),
			Schedule:     normalizeSchedule(item["schedule"]),
			Labels:       uniqueAnyStrings(asSlice(item["labels"])),
		})
	}

	normalized.Warnings = UniqueStrings(append(normalized.Warnings, warnings...))
	return normalized
}

// normalizeSchedule coerces a raw schedule value, inferring the anchor
// from whichever fields are present when it is missing or invalid.
func normalizeSchedule(value any) *Schedule {
	m, ok := asMap(value)
	if !ok {
		return nil
	}

	anchorRaw := strings.ToLower(asString(m["anchor"]))
	weekday, hasWeekday := toInt(m["weekday_iso"])
	offset, hasOffset := toInt(m["week_offset"])
	date := asString(m["date"])
	timeHHMM := asString(m["time_hhmm"])

	anchor := ""
	switch {
	case contains(AnchorValues, anchorRaw):
		anchor = anchorRaw
	case isISODate(date):
		anchor = AnchorAbsoluteDate
	case hasWeekday:
		anchor = AnchorNextWeekday
	}

	if !hasWeekday {
		weekday = 0
	}
	if !hasOffset {
		offset = 0
	}

	return &Schedule{
		Anchor:     anchor,
		WeekdayISO: weekday,
		WeekOffset: offset,
		Date:       date,
		TimeHHMM:   timeHHMM,
	}
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

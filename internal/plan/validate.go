package plan

import (
	"fmt"
	"sort"
	"strings"
)

const summarizeLimit = 8

// Validate checks a decoded candidate against the plan schema and
// returns every violation it finds. An empty result means the candidate
// conforms. The candidate is typically the output of Extract.
func Validate(candidate any) []string {
	root, ok := asMap(candidate)
	if !ok {
		return []string{"Root must be a JSON object"}
	}

	var errs []string

	if invalid := unknownKeys(root, RootAllowedKeys); len(invalid) > 0 {
		errs = append(errs, fmt.Sprintf("Root has unknown keys: %s", strings.Join(invalid, ", ")))
	}

	for _, key := range RequiredArrayKeys {
		if _, ok := root[key].([]any); !ok {
			errs = append(errs, fmt.Sprintf("Root.%s must be an array", key))
		}
	}

	if schema, ok := root["schema"].(string); !ok || schema != Schema {
		errs = append(errs, fmt.Sprintf("Root.schema must be '%s'", Schema))
	}

	mode, modeOK := root["mode"].(string)
	if !modeOK || !contains(ModeValues, mode) {
		errs = append(errs, fmt.Sprintf("Root.mode must be one of: %s", strings.Join(ModeValues, ", ")))
	}

	if v, ok := root["request_id"]; ok && v != nil {
		if _, ok := v.(string); !ok {
			errs = append(errs, "Root.request_id must be a string")
		}
	}
	if v, ok := root["timezone"]; ok && v != nil {
		if _, ok := v.(string); !ok {
			errs = append(errs, "Root.timezone must be a string")
		}
	}
	if v, ok := root["warnings"]; ok && v != nil && !isStringSlice(v) {
		errs = append(errs, "Root.warnings must be an array of strings")
	}

	requiresSchedule := mode == ModeWeeklyPlan || mode == ModeMonthlyPlan

	for idx, raw := range asSlice(root["addTask"]) {
		ctx := fmt.Sprintf("addTask[%d]", idx)
		item, ok := asMap(raw)
		if !ok {
			errs = append(errs, ctx+" must be an object")
			continue
		}
		if invalid := unknownKeys(item, AddTaskAllowedKeys); len(invalid) > 0 {
			errs = append(errs, fmt.Sprintf("%s unknown keys: %s", ctx, strings.Join(invalid, ", ")))
		}
		errs = appendRequiredString(errs, item, "ref", ctx)
		errs = appendRequiredString(errs, item, "content", ctx)
		errs = appendOptionalString(errs, item, "project_name", ctx)
		errs = appendOptionalString(errs, item, "due_string", ctx)
		errs = validateSchedule(errs, item["schedule"], ctx)
		if requiresSchedule && item["schedule"] == nil {
			errs = append(errs, fmt.Sprintf("%s.schedule is required for mode='%s'", ctx, mode))
		}
		errs = appendOptionalStringArray(errs, item, "labels", ctx)
	}

	for idx, raw := range asSlice(root["updateTaskLabels"]) {
		ctx := fmt.Sprintf("updateTaskLabels[%d]", idx)
		item, ok := asMap(raw)
		if !ok {
			errs = append(errs, ctx+" must be an object")
			continue
		}
		if invalid := unknownKeys(item, UpdateLabelsAllowedKeys); len(invalid) > 0 {
			errs = append(errs, fmt.Sprintf("%s unknown keys: %s", ctx, strings.Join(invalid, ", ")))
		}
		errs = appendRequiredString(errs, item, "task_ref", ctx)
		if !isStringSlice(item["labels"]) {
			errs = append(errs, fmt.Sprintf("%s.labels must be an array of strings", ctx))
		}
	}

	for idx, raw := range asSlice(root["updateTaskDue"]) {
		ctx := fmt.Sprintf("updateTaskDue[%d]", idx)
		item, ok := asMap(raw)
		if !ok {
			errs = append(errs, ctx+" must be an object")
			continue
		}
		if invalid := unknownKeys(item, UpdateDueAllowedKeys); len(invalid) > 0 {
			errs = append(errs, fmt.Sprintf("%s unknown keys: %s", ctx, strings.Join(invalid, ", ")))
		}
		errs = appendRequiredString(errs, item, "task_ref", ctx)
		errs = appendRequiredString(errs, item, "due_string", ctx)
	}

	for idx, raw := range asSlice(root["createSubtask"]) {
		ctx := fmt.Sprintf("createSubtask[%d]", idx)
		item, ok := asMap(raw)
		if !ok {
			errs = append(errs, ctx+" must be an object")
			continue
		}
		if invalid := unknownKeys(item, CreateSubtaskAllowedKeys); len(invalid) > 0 {
			errs = append(errs, fmt.Sprintf("%s unknown keys: %s", ctx, strings.Join(invalid, ", ")))
		}
		errs = appendRequiredString(errs, item, "ref", ctx)
		errs = appendRequiredString(errs, item, "content", ctx)
		errs = appendOptionalString(errs, item, "due_string", ctx)
		errs = validateSchedule(errs, item["schedule"], ctx)
		errs = appendOptionalStringArray(errs, item, "labels", ctx)

		parentRef, _ := item["parent_ref"].(string)
		parentTaskID, _ := item["parent_task_id"].(string)
		if strings.TrimSpace(parentRef) == "" && strings.TrimSpace(parentTaskID) == "" {
			errs = append(errs, ctx+" requires parent_ref or parent_task_id")
		}
		errs = appendOptionalString(errs, item, "parent_ref", ctx)
		errs = appendOptionalString(errs, item, "parent_task_id", ctx)
	}

	return errs
}

func validateSchedule(errs []string, raw any, ctx string) []string {
	if raw == nil {
		return errs
	}
	sched, ok := asMap(raw)
	if !ok {
		return append(errs, ctx+".schedule must be an object")
	}

	if invalid := unknownKeys(sched, ScheduleAllowedKeys); len(invalid) > 0 {
		errs = append(errs, fmt.Sprintf("%s.schedule unknown keys: %s", ctx, strings.Join(invalid, ", ")))
	}

	anchor := asString(sched["anchor"])
	weekday, hasWeekday := toInt(sched["weekday_iso"])
	date := asString(sched["date"])

	if anchor != "" && !contains(AnchorValues, anchor) {
		errs = append(errs, fmt.Sprintf("%s.schedule.anchor must be one of: %s", ctx, strings.Join(AnchorValues, ", ")))
	}

	if hasWeekday {
		if weekday < 1 || weekday > 7 {
			errs = append(errs, fmt.Sprintf("%s.schedule.weekday_iso must be integer 1..7", ctx))
		}
	} else if v, ok := sched["weekday_iso"]; ok && v != nil {
		errs = append(errs, fmt.Sprintf("%s.schedule.weekday_iso must be integer 1..7", ctx))
	}

	if v, ok := sched["week_offset"]; ok && v != nil {
		if offset, ok := toInt(v); !ok || offset < 0 || offset > 12 {
			errs = append(errs, fmt.Sprintf("%s.schedule.week_offset must be integer 0..12", ctx))
		}
	}

	if date != "" && !isISODate(date) {
		errs = append(errs, fmt.Sprintf("%s.schedule.date must be YYYY-MM-DD", ctx))
	}

	if v, ok := sched["time_hhmm"]; ok && v != nil && !isTimeHHMM(asString(v)) {
		errs = append(errs, fmt.Sprintf("%s.schedule.time_hhmm must be HH:MM", ctx))
	}

	if anchor == AnchorNextWeekday && !hasWeekday {
		errs = append(errs, fmt.Sprintf("%s.schedule.weekday_iso is required when anchor=%s", ctx, AnchorNextWeekday))
	}
	if anchor == AnchorAbsoluteDate && date == "" {
		errs = append(errs, fmt.Sprintf("%s.schedule.date is required when anchor=%s", ctx, AnchorAbsoluteDate))
	}

	if anchor == "" && !hasWeekday && date == "" {
		errs = append(errs, fmt.Sprintf("%s.schedule requires at least weekday_iso or date", ctx))
	}

	return errs
}

// SummarizeErrors compresses a validation error list into a bounded,
// presentable message.
func SummarizeErrors(errs []string) string {
	if len(errs) == 0 {
		return "Unknown schema error"
	}
	if len(errs) <= summarizeLimit {
		return strings.Join(errs, "; ")
	}
	head := strings.Join(errs[:summarizeLimit], "; ")
	return fmt.Sprintf("%s; and %d more", head, len(errs)-summarizeLimit)
}

func unknownKeys(obj map[string]any, allowed []string) []string {
	var invalid []string
	for key := range obj {
		if !contains(allowed, key) {
			invalid = append(invalid, key)
		}
	}
	sort.Strings(invalid)
	return invalid
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}

func appendRequiredString(errs []string, item map[string]any, key, ctx string) []string {
	value, ok := item[key].(string)
	if !ok || strings.TrimSpace(value) == "" {
		return append(errs, fmt.Sprintf("%s.%s must be a non-empty string", ctx, key))
	}
	return errs
}

func appendOptionalString(errs []string, item map[string]any, key, ctx string) []string {
	if v, ok := item[key]; ok && v != nil {
		if _, ok := v.(string); !ok {
			return append(errs, fmt.Sprintf("%s.%s must be a string", ctx, key))
		}
	}
	return errs
}

func appendOptionalStringArray(errs []string, item map[string]any, key, ctx string) []string {
	if v, ok := item[key]; ok && v != nil && !isStringSlice(v) {
		return append(errs, fmt.Sprintf("%s.%s must be an array of strings", ctx, key))
	}
	return errs
}

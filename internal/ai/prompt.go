package ai

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/agisilaos/todoist-planner/internal/api"
	"github.com/agisilaos/todoist-planner/internal/plan"
	"github.com/agisilaos/todoist-planner/internal/schedule"
)

type namedEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func bulletList(names []string) string {
	if len(names) == 0 {
		return "- (none)"
	}
	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, "- "+name)
	}
	return strings.Join(lines, "\n")
}

func entriesJSON(entries []namedEntry) string {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(data)
}

// systemPrompt states the plan contract: schema, allowed keys,
// schedule semantics, project and label routing, and the current-day
// context the model must anchor relative dates against.
func systemPrompt(projects []api.Project, labels []api.Label, rules Rules, today schedule.DayInfo, now time.Time) string {
	projectNames := make([]string, 0, len(projects))
	projectEntries := make([]namedEntry, 0, len(projects))
	for _, p := range projects {
		projectNames = append(projectNames, p.Name)
		projectEntries = append(projectEntries, namedEntry{ID: p.ID, Name: p.Name})
	}
	labelNames := make([]string, 0, len(labels))
	labelEntries := make([]namedEntry, 0, len(labels))
	for _, l := range labels {
		labelNames = append(labelNames, l.Name)
		labelEntries = append(labelEntries, namedEntry{ID: l.ID, Name: l.Name})
	}

	lines := []string{
		"You are a Todoist planner. Return JSON object only.",
		"Schema id: " + plan.Schema,
		"Allowed top-level keys only: schema, mode, request_id, timezone, addTask, updateTaskLabels, updateTaskDue, createSubtask, warnings.",
		"STRICT REQUIREMENTS: include schema, mode, addTask, updateTaskLabels, updateTaskDue, createSubtask.",
		"STRICT REQUIREMENTS: no unknown keys anywhere (additionalProperties=false).",
		"STRICT REQUIREMENTS: addTask items require ref + content.",
		"STRICT REQUIREMENTS: createSubtask items require ref + content + (parent_ref or parent_task_id).",
		"STRICT REQUIREMENTS: updateTaskLabels items require task_ref + labels[].",
		"STRICT REQUIREMENTS: updateTaskDue items require task_ref + due_string.",
		"STRICT REQUIREMENTS: for date planning use schedule object in addTask/createSubtask items.",
		"STRICT REQUIREMENTS: schedule keys only: anchor, weekday_iso, week_offset, date, time_hhmm.",
		"STRICT REQUIREMENTS: schedule.anchor must be next_weekday or absolute_date.",
		"STRICT REQUIREMENTS: schedule.anchor=next_weekday requires weekday_iso (1..7).",
		"STRICT REQUIREMENTS: schedule.anchor=absolute_date requires date (YYYY-MM-DD).",
		"STRICT REQUIREMENTS: schedule.time_hhmm, when used, must be HH:MM (24h).",
		"STRICT REQUIREMENTS: schedule.week_offset (0..12) means extra weeks after first matching future weekday.",
		"STRICT REQUIREMENTS: project_name must exactly match one of Available projects names.",
		"STRICT REQUIREMENTS: each label in labels[] must exactly match one of Available labels names.",
		"STRICT REQUIREMENTS: choose labels by theme of EACH individual task text, not by global plan.",
	}
	for _, hint := range rules.LabelHints {
		lines = append(lines, fmt.Sprintf("STRICT REQUIREMENTS: if label '%s' exists, use it for %s.", hint.Label, hint.Topic))
	}
	lines = append(lines,
		"STRICT REQUIREMENTS: if no clear thematic label match, keep labels as empty array.",
		"STRICT REQUIREMENTS: do not invent tasks or topics not explicitly present in user request.",
		"STRICT REQUIREMENTS: keep task wording close to user text; avoid generic summaries.",
		"STRICT REQUIREMENTS: for weekly_plan/monthly_plan, every addTask item must include schedule.",
		"STRICT REQUIREMENTS: updateTaskDue should be [] for newly created tasks (use schedule on addTask/createSubtask).",
		"STRICT REQUIREMENTS: when user gives weekday set (e.g. Monday, Wednesday, Friday), due weekday must be exactly one of those weekdays.",
		"STRICT REQUIREMENTS: never replace requested weekdays with neighboring weekdays.",
		"STRICT REQUIREMENTS: before output, self-check each schedule.weekday_iso against source text weekday.",
		"DATE RULE: compute schedule relative to Current datetime and User timezone.",
		"DATE RULE: weekday mention => anchor=next_weekday and weekday_iso by exact weekday mapping.",
		"DATE RULE: week_offset=0 means first strictly future occurrence of that weekday.",
		"DATE RULE: if today is Tuesday and task says Wednesday -> weekday_iso=3 and week_offset=0.",
		"DATE RULE: if today is after Monday and task says Monday -> weekday_iso=1 and week_offset=0 (next week).",
		"DATE RULE: for monthly_plan expand recurring weekday activities into concrete tasks for 4 weeks using week_offset=0..3.",
		"DATE RULE: do not use a single end-of-month due date for all tasks unless user explicitly asks so.",
		"WEEKDAY MAP (ISO): Monday=1 Tuesday=2 Wednesday=3 Thursday=4 Friday=5 Saturday=6 Sunday=7.",
		"WEEKDAY MAP (RU): понедельник=1, вторник=2, среда=3, четверг=4, пятница=5, суббота=6, воскресенье=7.",
		fmt.Sprintf("TODAY CONTEXT: date=%s, weekday_iso_mon1=%d.", today.ISODate, today.WeekdayISO),
	)
	if rules.PriorityProject != "" {
		lines = append(lines, fmt.Sprintf("PROJECT RULE: set project_name to '%s' for all addTask items when this project exists.", rules.PriorityProject))
	}
	lines = append(lines,
		"Never create projects or labels. Use only existing project_name and labels from provided lists.",
		"If label is uncertain, use an empty labels array.",
		"For due_string: leave empty when schedule is provided. due_string is reserved for explicit absolute date text if needed.",
		"For createSubtask use parent_ref (from addTask.ref) or parent_task_id (existing Todoist task id).",
		fmt.Sprintf("Current datetime: %s. User timezone: %s.", now.UTC().Format(time.RFC3339), today.Timezone),
		"Available projects:",
		bulletList(projectNames),
		"Available projects JSON (source of truth):",
		entriesJSON(projectEntries),
		"Available labels:",
		bulletList(labelNames),
		"Available labels JSON (source of truth):",
		entriesJSON(labelEntries),
	)
	return strings.Join(lines, "\n")
}

func userPrompt(text string) string {
	return strings.Join([]string{
		"Convert user request into Todoist JSON plan.",
		"Return JSON only.",
		"Use only what user explicitly requested. No extra goals.",
		"User request:",
		text,
	}, "\n")
}

func labelSystemPrompt(labelNames []string, rules Rules) string {
	present := make(map[string]bool, len(labelNames))
	for _, name := range labelNames {
		present[strings.ToLower(name)] = true
	}

	lines := []string{
		"You classify Todoist labels for ONE task.",
		"Return JSON object only.",
		"Allowed top-level keys only: labels.",
		"labels must be an array of strings.",
		"Use ONLY labels from the allowed list below. Never invent labels.",
		"Classify by the topic of THIS task text.",
		"Prefer at least one label if any allowed label is semantically close.",
		"Return empty array only when there is truly no thematic match.",
		"Prefer a small set of labels (0-2).",
	}
	for _, hint := range rules.LabelHints {
		if present[strings.ToLower(hint.Label)] {
			lines = append(lines, fmt.Sprintf("If task is about %s, prefer label '%s'.", hint.Topic, hint.Label))
		}
	}
	lines = append(lines, "Allowed labels:")
	for _, name := range labelNames {
		lines = append(lines, "- "+name)
	}
	return strings.Join(lines, "\n")
}

func labelUserPrompt(itemType, content, parentContent, sourceText string) string {
	return strings.Join([]string{
		"Classify labels for this item.",
		"Item type: " + itemType,
		"Item text: " + content,
		"Parent task text: " + orDash(parentContent),
		"Original user request: " + orDash(sourceText),
	}, "\n")
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

package planner

import (
	"fmt"
	"strings"
)

const (
	maxPreviewItems  = 40
	maxReportDetails = 30
	maxContentRunes  = 120
)

// PreviewText renders a resolved plan as plain text for confirmation.
func PreviewText(p ResolvedPlan) string {
	var lines []string
	lines = append(lines, "AI: plan preview")
	lines = append(lines, "Schema: "+orDash(p.Schema))
	lines = append(lines, "Mode: "+orDash(p.Mode))
	if p.RequestID != "" {
		lines = append(lines, "Request ID: "+p.RequestID)
	}
	if p.Timezone != "" {
		lines = append(lines, "Timezone: "+p.Timezone)
	}
	lines = append(lines, "")

	if len(p.Tasks) == 0 {
		lines = append(lines, "Tasks: none")
	} else {
		lines = append(lines, fmt.Sprintf("Tasks (%d):", len(p.Tasks)))
		limit := min(len(p.Tasks), maxPreviewItems)
		for i := 0; i < limit; i++ {
			task := p.Tasks[i]
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, truncate(task.Content)))
			lines = append(lines, "   ref: "+task.Ref)
			lines = append(lines, "   project: "+orDash(task.ProjectName))
			lines = append(lines, "   labels: "+labelList(task.Labels))
			lines = append(lines, "   due: "+orDash(task.DueString))
		}
		if len(p.Tasks) > limit {
			lines = append(lines, fmt.Sprintf("... and %d more tasks", len(p.Tasks)-limit))
		}
	}

	lines = append(lines, "")
	if len(p.Subtasks) == 0 {
		lines = append(lines, "Subtasks: none")
	} else {
		lines = append(lines, fmt.Sprintf("Subtasks (%d):", len(p.Subtasks)))
		limit := min(len(p.Subtasks), maxPreviewItems)
		for i := 0; i < limit; i++ {
			sub := p.Subtasks[i]
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, truncate(sub.Content)))
			lines = append(lines, "   ref: "+sub.Ref)
			if sub.ParentRef != "" {
				lines = append(lines, "   parent: ref:"+sub.ParentRef)
			} else {
				lines = append(lines, "   parent: id:"+sub.ParentTaskID)
			}
			lines = append(lines, "   labels: "+labelList(sub.Labels))
			lines = append(lines, "   due: "+orDash(sub.DueString))
		}
		if len(p.Subtasks) > limit {
			lines = append(lines, fmt.Sprintf("... and %d more subtasks", len(p.Subtasks)-limit))
		}
	}

	if len(p.Warnings) > 0 {
		lines = append(lines, "")
		lines = append(lines, "Warnings:")
		limit := min(len(p.Warnings), maxPreviewItems)
		for i := 0; i < limit; i++ {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, p.Warnings[i]))
		}
		if len(p.Warnings) > limit {
			lines = append(lines, fmt.Sprintf("... and %d more warnings", len(p.Warnings)-limit))
		}
	}

	lines = append(lines, "")
	lines = append(lines, "Confirm creation?")
	return strings.Join(lines, "\n")
}

// ReportText renders an execution report as plain text.
func ReportText(r Report) string {
	var lines []string
	lines = append(lines, "AI: execution report")
	lines = append(lines, fmt.Sprintf("Tasks created: %d", len(r.CreatedTasks)))
	lines = append(lines, fmt.Sprintf("Task errors: %d", len(r.FailedTasks)))
	lines = append(lines, fmt.Sprintf("Subtasks created: %d", len(r.CreatedSubtasks)))
	lines = append(lines, fmt.Sprintf("Subtask errors: %d", len(r.FailedSubtasks)))
	lines = append(lines, fmt.Sprintf("Due updates: %d", len(r.UpdatedDue)))
	lines = append(lines, fmt.Sprintf("Due errors: %d", len(r.FailedDue)))
	lines = append(lines, fmt.Sprintf("Label updates: %d", len(r.UpdatedLabels)))
	lines = append(lines, fmt.Sprintf("Label errors: %d", len(r.FailedLabels)))

	lines = appendDetails(lines, "Task errors:", len(r.FailedTasks), func(i int) string {
		x := r.FailedTasks[i]
		return fmt.Sprintf("[%s] %s -> %s", x.Ref, x.Content, x.Reason)
	})
	lines = appendDetails(lines, "Subtask errors:", len(r.FailedSubtasks), func(i int) string {
		x := r.FailedSubtasks[i]
		return fmt.Sprintf("[%s] %s (parent: %s) -> %s", x.Ref, x.Content, x.Parent, x.Reason)
	})
	lines = appendDetails(lines, "Due errors:", len(r.FailedDue), func(i int) string {
		x := r.FailedDue[i]
		return fmt.Sprintf("[%s] %s -> %s", x.Ref, x.DueString, x.Reason)
	})
	lines = appendDetails(lines, "Label errors:", len(r.FailedLabels), func(i int) string {
		x := r.FailedLabels[i]
		return fmt.Sprintf("[%s] %s -> %s", x.Ref, strings.Join(x.Labels, ", "), x.Reason)
	})
	lines = appendDetails(lines, "Warnings:", len(r.Warnings), func(i int) string {
		return r.Warnings[i]
	})

	return strings.Join(lines, "\n")
}

func appendDetails(lines []string, title string, count int, format func(int) string) []string {
	if count == 0 {
		return lines
	}
	lines = append(lines, "", title)
	limit := min(count, maxReportDetails)
	for i := 0; i < limit; i++ {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, format(i)))
	}
	if count > limit {
		lines = append(lines, fmt.Sprintf("... and %d more", count-limit))
	}
	return lines
}

func truncate(value string) string {
	runes := []rune(strings.TrimSpace(value))
	if len(runes) <= maxContentRunes {
		return string(runes)
	}
	return string(runes[:maxContentRunes-3]) + "..."
}

func labelList(labels []string) string {
	if len(labels) == 0 {
		return "-"
	}
	tagged := make([]string, len(labels))
	for i, label := range labels {
		tagged[i] = "#" + label
	}
	return strings.Join(tagged, ", ")
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

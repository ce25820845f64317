package planner

import (
	"fmt"
	"strings"

	"github.com/agisilaos/todoist-planner/internal/api"
	"github.com/agisilaos/todoist-planner/internal/plan"
	"github.com/agisilaos/todoist-planner/internal/schedule"
)

// Options controls reference resolution policy.
type Options struct {
	// PriorityProject names the designated fallback project. When it is
	// unset or missing from the list, the first available project is the
	// fallback.
	PriorityProject string
	// ForceProject routes every task onto the priority project
	// regardless of what the plan requested.
	ForceProject bool
}

// Resolve turns a normalized plan into a resolved plan: concrete due
// dates computed in the plan's timezone, project and label names
// validated against the authoritative lists. Resolution never creates
// projects or labels.
func Resolve(p plan.Plan, projects []api.Project, labels []api.Label, opts Options) ResolvedPlan {
	return ResolveAt(p, projects, labels, schedule.Today(p.Timezone), opts)
}

// ResolveAt is Resolve anchored at an explicit day. Callers that
// already computed the day context, such as the plan request itself,
// pass it here so prompt and due-date math agree on the date.
func ResolveAt(p plan.Plan, projects []api.Project, labels []api.Label, today schedule.DayInfo, opts Options) ResolvedPlan {
	warnings := append([]string{}, p.Warnings...)

	dueByRef := make(map[string]string)
	for _, op := range p.UpdateTaskDue {
		if op.TaskRef != "" && op.DueString != "" {
			dueByRef[op.TaskRef] = op.DueString
		}
	}

	labelsByRef := make(map[string][]string)
	for _, op := range p.UpdateTaskLabels {
		labelsByRef[op.TaskRef] = plan.UniqueStrings(op.Labels)
	}

	requiresDue := p.Mode == plan.ModeWeeklyPlan || p.Mode == plan.ModeMonthlyPlan

	tasks := make([]ResolvedTask, 0, len(p.AddTask))
	for _, task := range p.AddTask {
		res := resolveProject(task.ProjectName, projects, opts)
		switch {
		case res.project == nil:
			warnings = append(warnings, fmt.Sprintf("No available projects for task '%s'", task.Content))
		case res.usedFallback && res.requested != "":
			warnings = append(warnings, fmt.Sprintf("Project '%s' not found, %s fallback to '%s'", res.requested, task.Ref, res.project.Name))
		}

		merged := plan.UniqueStrings(append(append([]string{}, task.Labels...), labelsByRef[task.Ref]...))
		computed, schedWarnings := schedule.DueString(task.Schedule, today, refOrContent(task.Ref, task.Content))
		warnings = append(warnings, schedWarnings...)

		due := computed
		if due == "" {
			due = dueByRef[task.Ref]
		}
		if due == "" {
			due = task.DueString
		}
		if requiresDue && due == "" {
			warnings = append(warnings, fmt.Sprintf("No due date resolved for %s", refOrContent(task.Ref, task.Content)))
		}

		resolvedLabels, labelWarnings := resolveLabels(merged, labels, task.Ref)
		warnings = append(warnings, labelWarnings...)

		resolved := ResolvedTask{
			Ref:       task.Ref,
			Content:   task.Content,
			DueString: due,
			Schedule:  task.Schedule,
			Labels:    resolvedLabels,
		}
		if res.project != nil {
			resolved.ProjectName = res.project.Name
			resolved.ProjectID = res.project.ID
		}
		tasks = append(tasks, resolved)
	}

	subtasks := make([]ResolvedSubtask, 0, len(p.CreateSubtask))
	for _, sub := range p.CreateSubtask {
		merged := plan.UniqueStrings(append(append([]string{}, sub.Labels...), labelsByRef[sub.Ref]...))
		computed, schedWarnings := schedule.DueString(sub.Schedule, today, refOrContent(sub.Ref, sub.Content))
		warnings = append(warnings, schedWarnings...)

		due := computed
		if due == "" {
			due = dueByRef[sub.Ref]
		}
		if due == "" {
			due = sub.DueString
		}

		resolvedLabels, labelWarnings := resolveLabels(merged, labels, sub.Ref)
		warnings = append(warnings, labelWarnings...)

		subtasks = append(subtasks, ResolvedSubtask{
			Ref:          sub.Ref,
			ParentRef:    sub.ParentRef,
			ParentTaskID: sub.ParentTaskID,
			Content:      sub.Content,
			DueString:    due,
			Schedule:     sub.Schedule,
			Labels:       resolvedLabels,
		})
	}

	schemaID := p.Schema
	if schemaID == "" {
		schemaID = plan.Schema
	}
	mode := p.Mode
	if mode == "" {
		mode = plan.ModeBatch
	}

	return ResolvedPlan{
		Schema:    schemaID,
		Mode:      mode,
		RequestID: p.RequestID,
		Timezone:  today.Timezone,
		Tasks:     tasks,
		Subtasks:  subtasks,
		Warnings:  plan.UniqueStrings(warnings),
	}
}

type projectResolution struct {
	project      *api.Project
	usedFallback bool
	requested    string
}

// resolveProject applies the lookup policy: exact case-insensitive
// match, else a single substring match, else the fallback project.
func resolveProject(name string, projects []api.Project, opts Options) projectResolution {
	requested := strings.TrimSpace(name)
	fallback := fallbackProject(projects, opts.PriorityProject)

	if opts.ForceProject {
		return projectResolution{project: fallback, requested: requested}
	}

	if requested == "" {
		return projectResolution{project: fallback, usedFallback: true}
	}

	lower := strings.ToLower(requested)
	var partial []*api.Project
	for i := range projects {
		candidate := strings.ToLower(strings.TrimSpace(projects[i].Name))
		if candidate == lower {
			return projectResolution{project: &projects[i], requested: requested}
		}
		if strings.Contains(candidate, lower) {
			partial = append(partial, &projects[i])
		}
	}
	if len(partial) == 1 {
		return projectResolution{project: partial[0], usedFallback: true, requested: requested}
	}

	return projectResolution{project: fallback, usedFallback: true, requested: requested}
}

func fallbackProject(projects []api.Project, priorityName string) *api.Project {
	if priorityName != "" {
		lower := strings.ToLower(strings.TrimSpace(priorityName))
		for i := range projects {
			if strings.ToLower(strings.TrimSpace(projects[i].Name)) == lower {
				return &projects[i]
			}
		}
	}
	if len(projects) > 0 {
		return &projects[0]
	}
	return nil
}

// resolveLabels maps requested labels onto the authoritative list,
// preserving the authoritative casing. Unmatched labels are dropped
// with a warning.
func resolveLabels(names []string, labels []api.Label, ref string) ([]string, []string) {
	lookup := make(map[string]string, len(labels))
	for _, label := range labels {
		lookup[strings.ToLower(strings.TrimSpace(label.Name))] = strings.TrimSpace(label.Name)
	}

	var warnings []string
	resolved := make([]string, 0, len(names))
	for _, name := range plan.UniqueStrings(names) {
		canonical, ok := lookup[strings.ToLower(name)]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("Label '%s' not found for %s, skipped", name, ref))
			continue
		}
		resolved = append(resolved, canonical)
	}
	return plan.UniqueStrings(resolved), warnings
}

func refOrContent(ref, content string) string {
	if ref != "" {
		return ref
	}
	return content
}

// Package planner resolves a normalized plan against authoritative
// project/label lists and executes it against the task API.
package planner

import "github.com/agisilaos/todoist-planner/internal/plan"

// ResolvedTask is a plan task after project, label, and due-date
// resolution. ProjectID empty means no project could be resolved.
type ResolvedTask struct {
	Ref         string         `json:"ref"`
	Content     string         `json:"content"`
	ProjectName string         `json:"projectName,omitempty"`
	ProjectID   string         `json:"projectId,omitempty"`
	DueString   string         `json:"dueString,omitempty"`
	Schedule    *plan.Schedule `json:"schedule,omitempty"`
	Labels      []string       `json:"labels,omitempty"`
}

// ResolvedSubtask carries exactly one of ParentRef/ParentTaskID.
type ResolvedSubtask struct {
	Ref          string         `json:"ref"`
	ParentRef    string         `json:"parentRef,omitempty"`
	ParentTaskID string         `json:"parentTaskId,omitempty"`
	Content      string         `json:"content"`
	DueString    string         `json:"dueString,omitempty"`
	Schedule     *plan.Schedule `json:"schedule,omitempty"`
	Labels       []string       `json:"labels,omitempty"`
}

type ResolvedPlan struct {
	Schema    string            `json:"schema"`
	Mode      string            `json:"mode"`
	RequestID string            `json:"requestId,omitempty"`
	Timezone  string            `json:"timezone"`
	Tasks     []ResolvedTask    `json:"tasks"`
	Subtasks  []ResolvedSubtask `json:"subtasks"`
	Warnings  []string          `json:"warnings,omitempty"`
}

// HasWork reports whether executing the plan would touch anything.
func (p ResolvedPlan) HasWork() bool {
	return len(p.Tasks) > 0 || len(p.Subtasks) > 0
}

type CreatedTask struct {
	Ref     string `json:"ref"`
	ID      string `json:"id"`
	Content string `json:"content"`
	Project string `json:"project,omitempty"`
}

type FailedTask struct {
	Ref     string `json:"ref"`
	Content string `json:"content"`
	Reason  string `json:"reason"`
}

type CreatedSubtask struct {
	Ref     string `json:"ref"`
	ID      string `json:"id"`
	Content string `json:"content"`
	Parent  string `json:"parent"`
}

type FailedSubtask struct {
	Ref     string `json:"ref"`
	Content string `json:"content"`
	Parent  string `json:"parent"`
	Reason  string `json:"reason"`
}

type DueUpdate struct {
	TaskID    string `json:"taskId"`
	Ref       string `json:"ref"`
	DueString string `json:"dueString"`
}

type FailedDue struct {
	TaskID    string `json:"taskId"`
	Ref       string `json:"ref"`
	DueString string `json:"dueString"`
	Reason    string `json:"reason"`
}

type LabelUpdate struct {
	TaskID string   `json:"taskId"`
	Ref    string   `json:"ref"`
	Labels []string `json:"labels"`
}

type FailedLabels struct {
	TaskID string   `json:"taskId"`
	Ref    string   `json:"ref"`
	Labels []string `json:"labels"`
	Reason string   `json:"reason"`
}

// Report covers the outcome of every item in an executed plan.
type Report struct {
	CreatedTasks    []CreatedTask    `json:"createdTasks"`
	FailedTasks     []FailedTask     `json:"failedTasks"`
	CreatedSubtasks []CreatedSubtask `json:"createdSubtasks"`
	FailedSubtasks  []FailedSubtask  `json:"failedSubtasks"`
	UpdatedDue      []DueUpdate      `json:"updatedDue"`
	FailedDue       []FailedDue      `json:"failedDue"`
	UpdatedLabels   []LabelUpdate    `json:"updatedLabels"`
	FailedLabels    []FailedLabels   `json:"failedLabels"`
	Warnings        []string         `json:"warnings,omitempty"`
}

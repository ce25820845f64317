package planner

import (
	"context"

	"go.uber.org/zap"

	"github.com/agisilaos/todoist-planner/internal/api"
)

// TaskAPI is the executor's view of the task service. *api.Client
// satisfies it. Every method may fail per call; the executor isolates
// such failures per item.
type TaskAPI interface {
	AddTask(ctx context.Context, projectID, content, dueString, parentID string) (api.Task, error)
	CreateSubtask(ctx context.Context, parentTaskID, content, dueString string) (api.Task, error)
	UpdateTaskDue(ctx context.Context, taskID, dueString string) error
	UpdateTaskLabels(ctx context.Context, taskID string, labels []string) error
}

const (
	reasonProjectNotFound   = "project_not_found"
	reasonMissingCreatedID  = "missing_created_id"
	reasonParentNotResolved = "parent_not_resolved"
)

type Executor struct {
	API    TaskAPI
	Logger *zap.Logger
}

// Execute applies a resolved plan: tasks first, then subtasks via a
// bounded worklist (subtasks may chain off tasks or other subtasks),
// then due/label updates for everything created. Calls are sequential;
// no single item's failure aborts any other item.
func (e Executor) Execute(ctx context.Context, resolved ResolvedPlan) Report {
	logger := e.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	report := Report{
		CreatedTasks:    []CreatedTask{},
		FailedTasks:     []FailedTask{},
		CreatedSubtasks: []CreatedSubtask{},
		FailedSubtasks:  []FailedSubtask{},
		UpdatedDue:      []DueUpdate{},
		FailedDue:       []FailedDue{},
		UpdatedLabels:   []LabelUpdate{},
		FailedLabels:    []FailedLabels{},
		Warnings:        append([]string{}, resolved.Warnings...),
	}

	refToID := make(map[string]string)

	for _, task := range resolved.Tasks {
		if task.ProjectID == "" {
			report.FailedTasks = append(report.FailedTasks, FailedTask{Ref: task.Ref, Content: task.Content, Reason: reasonProjectNotFound})
			continue
		}
		created, err := e.API.AddTask(ctx, task.ProjectID, task.Content, "", "")
		if err != nil {
			logger.Warn("task creation failed", zap.String("ref", task.Ref), zap.Error(err))
			report.FailedTasks = append(report.FailedTasks, FailedTask{Ref: task.Ref, Content: task.Content, Reason: err.Error()})
			continue
		}
		if created.ID == "" {
			report.FailedTasks = append(report.FailedTasks, FailedTask{Ref: task.Ref, Content: task.Content, Reason: reasonMissingCreatedID})
			continue
		}
		refToID[task.Ref] = created.ID
		report.CreatedTasks = append(report.CreatedTasks, CreatedTask{Ref: task.Ref, ID: created.ID, Content: task.Content, Project: task.ProjectName})
		logger.Debug("task created", zap.String("ref", task.Ref), zap.String("id", created.ID))
	}

	pending := append([]ResolvedSubtask{}, resolved.Subtasks...)
	attemptsLeft := len(pending) + 2

	for len(pending) > 0 && attemptsLeft > 0 {
		attemptsLeft--

		ready, still := resolveReadySubtasks(pending, refToID)
		if len(ready) == 0 {
			break
		}
		pending = still

		for _, sub := range ready {
			parentID := sub.ParentTaskID
			if parentID == "" {
				parentID = refToID[sub.ParentRef]
			}
			created, err := e.API.CreateSubtask(ctx, parentID, sub.Content, "")
			if err != nil {
				logger.Warn("subtask creation failed", zap.String("ref", sub.Ref), zap.Error(err))
				report.FailedSubtasks = append(report.FailedSubtasks, FailedSubtask{Ref: sub.Ref, Content: sub.Content, Parent: parentLabel(sub), Reason: err.Error()})
				continue
			}
			if created.ID == "" {
				report.FailedSubtasks = append(report.FailedSubtasks, FailedSubtask{Ref: sub.Ref, Content: sub.Content, Parent: parentLabel(sub), Reason: reasonMissingCreatedID})
				continue
			}
			refToID[sub.Ref] = created.ID
			report.CreatedSubtasks = append(report.CreatedSubtasks, CreatedSubtask{Ref: sub.Ref, ID: created.ID, Content: sub.Content, Parent: parentLabel(sub)})
			logger.Debug("subtask created", zap.String("ref", sub.Ref), zap.String("id", created.ID))
		}
	}

	for _, sub := range pending {
		report.FailedSubtasks = append(report.FailedSubtasks, FailedSubtask{Ref: sub.Ref, Content: sub.Content, Parent: parentLabel(sub), Reason: reasonParentNotResolved})
	}

	type entity struct {
		ref       string
		dueString string
		labels    []string
	}
	var entities []entity
	for _, task := range resolved.Tasks {
		entities = append(entities, entity{ref: task.Ref, dueString: task.DueString, labels: task.Labels})
	}
	for _, sub := range resolved.Subtasks {
		entities = append(entities, entity{ref: sub.Ref, dueString: sub.DueString, labels: sub.Labels})
	}

	for _, item := range entities {
		taskID := resolveTaskID(item.ref, refToID)
		if taskID == "" {
			continue
		}

		if item.dueString != "" {
			if err := e.API.UpdateTaskDue(ctx, taskID, item.dueString); err != nil {
				logger.Warn("due update failed", zap.String("ref", item.ref), zap.Error(err))
				report.FailedDue = append(report.FailedDue, FailedDue{TaskID: taskID, Ref: item.ref, DueString: item.dueString, Reason: err.Error()})
			} else {
				report.UpdatedDue = append(report.UpdatedDue, DueUpdate{TaskID: taskID, Ref: item.ref, DueString: item.dueString})
			}
		}

		if len(item.labels) > 0 {
			if err := e.API.UpdateTaskLabels(ctx, taskID, item.labels); err != nil {
				logger.Warn("label update failed", zap.String("ref", item.ref), zap.Error(err))
				report.FailedLabels = append(report.FailedLabels, FailedLabels{TaskID: taskID, Ref: item.ref, Labels: item.labels, Reason: err.Error()})
			} else {
				report.UpdatedLabels = append(report.UpdatedLabels, LabelUpdate{TaskID: taskID, Ref: item.ref, Labels: item.labels})
			}
		}
	}

	return report
}

// resolveReadySubtasks is one worklist step: it splits the pending set
// into subtasks whose parent id is already known and the rest.
func resolveReadySubtasks(pending []ResolvedSubtask, refToID map[string]string) (ready, still []ResolvedSubtask) {
	for _, sub := range pending {
		if sub.ParentTaskID != "" || refToID[sub.ParentRef] != "" {
			ready = append(ready, sub)
		} else {
			still = append(still, sub)
		}
	}
	return ready, still
}

// resolveTaskID maps a plan-local ref to a created task id; a ref with
// no mapping is treated as a literal external task id.
func resolveTaskID(ref string, refToID map[string]string) string {
	if ref == "" {
		return ""
	}
	if id, ok := refToID[ref]; ok {
		return id
	}
	return ref
}

func parentLabel(sub ResolvedSubtask) string {
	if sub.ParentRef != "" {
		return sub.ParentRef
	}
	return sub.ParentTaskID
}

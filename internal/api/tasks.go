package api

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

const listPageLimit = 200

// AddTask creates a task. Empty dueString/parentID are omitted from the
// payload; subtasks pass parentID and no project.
func (c *Client) AddTask(ctx context.Context, projectID, content, dueString, parentID string) (Task, error) {
	body := map[string]any{"content": content}
	if strings.TrimSpace(projectID) != "" {
		body["project_id"] = projectID
	}
	if strings.TrimSpace(dueString) != "" {
		body["due_string"] = dueString
	}
	if strings.TrimSpace(parentID) != "" {
		body["parent_id"] = parentID
	}
	var task Task
	_, err := c.Post(ctx, "/tasks", nil, body, &task, true)
	if err != nil {
		return Task{}, err
	}
	return task, nil
}

func (c *Client) CreateSubtask(ctx context.Context, parentTaskID, content, dueString string) (Task, error) {
	return c.AddTask(ctx, "", content, dueString, parentTaskID)
}

func (c *Client) UpdateTaskDue(ctx context.Context, taskID, dueString string) error {
	body := map[string]any{"due_string": dueString}
	_, err := c.Post(ctx, "/tasks/"+taskID, nil, body, nil, true)
	return err
}

func (c *Client) UpdateTaskLabels(ctx context.Context, taskID string, labels []string) error {
	body := map[string]any{"labels": labels}
	_, err := c.Post(ctx, "/tasks/"+taskID, nil, body, nil, true)
	return err
}

func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var out []Project
	cursor := ""
	for {
		var page Paginated[Project]
		if _, err := c.Get(ctx, "/projects", listQuery(cursor), &page); err != nil {
			return nil, err
		}
		out = append(out, page.Results...)
		if page.NextCursor == "" {
			return out, nil
		}
		cursor = page.NextCursor
	}
}

func (c *Client) ListLabels(ctx context.Context) ([]Label, error) {
	var out []Label
	cursor := ""
	for {
		var page Paginated[Label]
		if _, err := c.Get(ctx, "/labels", listQuery(cursor), &page); err != nil {
			return nil, err
		}
		out = append(out, page.Results...)
		if page.NextCursor == "" {
			return out, nil
		}
		cursor = page.NextCursor
	}
}

func listQuery(cursor string) url.Values {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(listPageLimit))
	if cursor != "" {
		query.Set("cursor", cursor)
	}
	return query
}

package api

type Paginated[T any] struct {
	Results    []T    `json:"results"`
	NextCursor string `json:"next_cursor"`
}

type Task struct {
	ID        string   `json:"id"`
	Content   string   `json:"content"`
	ProjectID string   `json:"project_id"`
	ParentID  string   `json:"parent_id"`
	Labels    []string `json:"labels"`
	Checked   bool     `json:"checked"`
	AddedAt   string   `json:"added_at"`
}

type Project struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ParentID   string `json:"parent_id"`
	IsArchived bool   `json:"is_archived"`
	IsInbox    bool   `json:"inbox_project"`
}

type Label struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Order int    `json:"order"`
}

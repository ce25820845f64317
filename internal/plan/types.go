// Package plan defines the task-plan document produced by the model,
// its schema validation, extraction from raw model output, and
// normalization into a canonical shape.
package plan

// Schema is the fixed schema id every plan document must carry.
const Schema = "task_plan_v1"

const (
	ModeSingleTask  = "single_task"
	ModeWeeklyPlan  = "weekly_plan"
	ModeMonthlyPlan = "monthly_plan"
	ModeBatch       = "batch"
)

const (
	AnchorNextWeekday  = "next_weekday"
	AnchorAbsoluteDate = "absolute_date"
)

// Key sets are declared data so the validator and the prompt builder
// stay in sync.
var (
	RequiredArrayKeys = []string{"addTask", "updateTaskLabels", "updateTaskDue", "createSubtask"}

	RootAllowedKeys = []string{
		"schema",
		"mode",
		"request_id",
		"timezone",
		"addTask",
		"updateTaskLabels",
		"updateTaskDue",
		"createSubtask",
		"warnings",
	}

	ModeValues = []string{ModeSingleTask, ModeWeeklyPlan, ModeMonthlyPlan, ModeBatch}

	AddTaskAllowedKeys       = []string{"ref", "project_name", "content", "due_string", "schedule", "labels"}
	UpdateLabelsAllowedKeys  = []string{"task_ref", "labels"}
	UpdateDueAllowedKeys     = []string{"task_ref", "due_string"}
	CreateSubtaskAllowedKeys = []string{"ref", "parent_ref", "parent_task_id", "content", "due_string", "schedule", "labels"}
	ScheduleAllowedKeys      = []string{"anchor", "weekday_iso", "week_offset", "date", "time_hhmm"}
	AnchorValues             = []string{AnchorNextWeekday, AnchorAbsoluteDate}
)

// Plan is the normalized plan document. Every string is trimmed, refs
// are always populated, and label lists hold no case-insensitive
// duplicates.
type Plan struct {
	Schema           string          `json:"schema"`
	Mode             string          `json:"mode"`
	RequestID        string          `json:"request_id,omitempty"`
	Timezone         string          `json:"timezone,omitempty"`
	AddTask          []AddTask       `json:"addTask"`
	UpdateTaskLabels []UpdateLabels  `json:"updateTaskLabels"`
	UpdateTaskDue    []UpdateDue     `json:"updateTaskDue"`
	CreateSubtask    []CreateSubtask `json:"createSubtask"`
	Warnings         []string        `json:"warnings,omitempty"`
}

type AddTask struct {
	Ref         string    `json:"ref"`
	ProjectName string    `json:"project_name,omitempty"`
	Content     string    `json:"content"`
	DueString   string    `json:"due_string,omitempty"`
	Schedule    *Schedule `json:"schedule,omitempty"`
	Labels      []string  `json:"labels,omitempty"`
}

type UpdateLabels struct {
	TaskRef string   `json:"task_ref"`
	Labels  []string `json:"labels"`
}

type UpdateDue struct {
	TaskRef   string `json:"task_ref"`
	DueString string `json:"due_string"`
}

type CreateSubtask struct {
	Ref          string    `json:"ref"`
	ParentRef    string    `json:"parent_ref,omitempty"`
	ParentTaskID string    `json:"parent_task_id,omitempty"`
	Content      string    `json:"content"`
	DueString    string    `json:"due_string,omitempty"`
	Schedule     *Schedule `json:"schedule,omitempty"`
	Labels       []string  `json:"labels,omitempty"`
}

// Schedule is an abstract due-date descriptor. WeekdayISO uses ISO
// numbering (Monday=1..Sunday=7); zero means absent.
type Schedule struct {
	Anchor     string `json:"anchor,omitempty"`
	WeekdayISO int    `json:"weekday_iso,omitempty"`
	WeekOffset int    `json:"week_offset,omitempty"`
	Date       string `json:"date,omitempty"`
	TimeHHMM   string `json:"time_hhmm,omitempty"`
}

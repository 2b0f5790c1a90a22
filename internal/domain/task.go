package domain

import "time"

type TaskStatus string

const (
	TaskPending    TaskStatus = "PENDING"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskCompleted  TaskStatus = "COMPLETED"
)

// TaskAttachment is an inline-encoded file carried inside the task
// document itself; there is no blob store on the terminal.
type TaskAttachment struct {
	Name    string `json:"name"`
	Type    string `json:"type,omitempty"`
	DataURL string `json:"dataUrl"`
}

// Task is a work assignment addressed either to one person by display
// name or to a whole department; exactly one of the two is set.
type Task struct {
	ID               string           `json:"id"`
	Title            string           `json:"title" validate:"required"`
	Description      string           `json:"description,omitempty"`
	AssigneeName     string           `json:"assigneeName,omitempty"`
	TargetDepartment string           `json:"targetDepartment,omitempty"`
	Priority         Priority         `json:"priority"`
	Status           TaskStatus       `json:"status"`
	Progress         int              `json:"progress"`
	ProgressNotes    string           `json:"progressNotes,omitempty"`
	DueDate          string           `json:"dueDate,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
	CompletedAt      *time.Time       `json:"completedAt,omitempty"`
	Attachments      []TaskAttachment `json:"attachments,omitempty"`
	DeletedAt        *time.Time       `json:"deletedAt,omitempty"`
}

package task

import (
	"errors"
	"fmt"
	"time"

	"factorydesk/internal/domain"
	"factorydesk/internal/modules/notification"
	"factorydesk/internal/pkg/authz"
	"factorydesk/internal/store"
)

var (
	ErrNotFound  = errors.New("task not found")
	ErrForbidden = errors.New("insufficient permissions")
	ErrNoTarget  = errors.New("task needs an assignee or a target department")
)

type Service struct {
	tasks  *store.Collection[domain.Task]
	notifs *notification.Service
}

func NewService(tasks *store.Collection[domain.Task], notifs *notification.Service) *Service {
	return &Service{tasks: tasks, notifs: notifs}
}

func (s *Service) List() []domain.Task {
	var out []domain.Task
	for _, t := range s.tasks.LoadAll() {
		if t.DeletedAt == nil {
			out = append(out, t)
		}
	}
	return out
}

// Create registers a new assignment and notifies the target. Only the
// administrator hands out tasks.
func (s *Service) Create(actor *domain.User, t domain.Task) (*domain.Task, error) {
	if !authz.CanPerform(actor, authz.ActionEdit, authz.KindTask) {
		return nil, ErrForbidden
	}
	if t.AssigneeName == "" && t.TargetDepartment == "" {
		return nil, ErrNoTarget
	}
	t.ID = fmt.Sprintf("T-%d", time.Now().UnixMilli())
	t.Status = domain.TaskPending
	t.Progress = 0
	t.CreatedAt = time.Now()
	t.CompletedAt = nil
	if t.Priority == "" {
		t.Priority = domain.PriorityMedium
	}

	_, err := s.tasks.Write(actor.EffectiveID(), func(prev []domain.Task) []domain.Task {
		return append([]domain.Task{t}, prev...)
	})
	if err != nil {
		return nil, err
	}

	_, _ = s.notifs.Push(actor, domain.Notification{
		Title:            "คุณได้รับมอบหมายงานใหม่",
		Message:          fmt.Sprintf("งาน: %s กำหนดส่ง %s", t.Title, t.DueDate),
		Priority:         t.Priority,
		Category:         domain.CategoryTask,
		TargetUserName:   t.AssigneeName,
		TargetDepartment: t.TargetDepartment,
	})
	return &t, nil
}

// UpdateRequest carries the mutable task fields of a status or
// progress update.
type UpdateRequest struct {
	Status        *domain.TaskStatus       `json:"status,omitempty"`
	Progress      *int                     `json:"progress,omitempty"`
	ProgressNotes *string                  `json:"progressNotes,omitempty"`
	Attachments   *[]domain.TaskAttachment `json:"attachments,omitempty"`
}

// Update applies a status/progress change. When a non-admin actor
// moves a task forward, the control room is notified of the
// transition: acknowledgements and progress reports at LOW priority,
// completion at MEDIUM.
func (s *Service) Update(actor *domain.User, id string, req UpdateRequest) (*domain.Task, error) {
	var (
		updated *domain.Task
		before  domain.Task
		found   bool
	)
	_, err := s.tasks.Write(actor.EffectiveID(), func(prev []domain.Task) []domain.Task {
		for i := range prev {
			if prev[i].ID != id || prev[i].DeletedAt != nil {
				continue
			}
			found = true
			before = prev[i]
			t := prev[i]
			if req.Status != nil {
				t.Status = *req.Status
			}
			if req.Progress != nil {
				t.Progress = *req.Progress
			}
			if req.ProgressNotes != nil {
				t.ProgressNotes = *req.ProgressNotes
			}
			if req.Attachments != nil {
				t.Attachments = *req.Attachments
			}
			if t.Progress >= 100 {
				t.Progress = 100
				t.Status = domain.TaskCompleted
			}
			if t.Status == domain.TaskCompleted && t.CompletedAt == nil {
				now := time.Now()
				t.CompletedAt = &now
			}
			prev[i] = t
			updated = &t
			return prev
		}
		return prev
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}

	if actor.Role != domain.RoleAdmin {
		s.notifyTransition(actor, before, *updated)
	}
	return updated, nil
}

func (s *Service) notifyTransition(actor *domain.User, before, after domain.Task) {
	var (
		title    string
		priority domain.Priority
	)
	switch {
	case before.Status == domain.TaskPending && after.Status == domain.TaskInProgress:
		title = "รับทราบงานแล้ว"
		priority = domain.PriorityLow
	case before.Status != domain.TaskCompleted && after.Status == domain.TaskCompleted:
		title = "งานเสร็จสมบูรณ์"
		priority = domain.PriorityMedium
	case after.Progress != before.Progress:
		title = "รายงานความคืบหน้างาน"
		priority = domain.PriorityLow
	default:
		return
	}

	_, _ = s.notifs.Push(actor, domain.Notification{
		Title:            title,
		Message:          fmt.Sprintf("งาน: %s (%d%%) โดย %s", after.Title, after.Progress, actor.Name),
		Priority:         priority,
		Category:         domain.CategoryTask,
		TargetUserName:   domain.AdminDisplayName,
		TargetDepartment: "Control",
	})
}

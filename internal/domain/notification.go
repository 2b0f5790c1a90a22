package domain

import (
	"strings"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

type NotificationCategory string

const (
	CategorySystem  NotificationCategory = "system"
	CategoryTask    NotificationCategory = "task"
	CategoryChat    NotificationCategory = "chat"
	CategoryMachine NotificationCategory = "machine"
	CategoryTrash   NotificationCategory = "trash"
)

// Notification is stored globally; visibility is a view-time filter,
// never a storage-time partition.
type Notification struct {
	ID               string               `json:"id"`
	Title            string               `json:"title"`
	Message          string               `json:"message"`
	Priority         Priority             `json:"priority"`
	Category         NotificationCategory `json:"category"`
	TargetUserName   string               `json:"targetUserName,omitempty"`
	TargetDepartment string               `json:"targetDepartment,omitempty"`
	TargetID         string               `json:"targetId,omitempty"`
	SenderID         string               `json:"senderId,omitempty"`
	Timestamp        time.Time            `json:"timestamp"`
	Read             bool                 `json:"read"`
}

// VisibleTo decides whether a viewer should see the notification:
// system category is visible to everyone, otherwise any of target id,
// target user name (case-insensitive, with the admin display-name
// alias) or target department must match.
func (n Notification) VisibleTo(viewer *User) bool {
	if viewer == nil {
		return false
	}
	if n.Category == CategorySystem {
		return true
	}
	if n.TargetID != "" && n.TargetID == viewer.EffectiveID() {
		return true
	}
	if target := strings.ToLower(strings.TrimSpace(n.TargetUserName)); target != "" {
		if target == strings.ToLower(strings.TrimSpace(viewer.Name)) {
			return true
		}
		if viewer.Role == RoleAdmin && target == strings.ToLower(AdminDisplayName) {
			return true
		}
	}
	if n.TargetDepartment != "" && n.TargetDepartment == viewer.Department {
		return true
	}
	return false
}

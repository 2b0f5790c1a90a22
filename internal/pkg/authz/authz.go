// Package authz keeps the whole role/action matrix in one place so
// every mutating entry point consults the same rules.
package authz

import "factorydesk/internal/domain"

type Action string

const (
	ActionTrash   Action = "trash"   // move a live entity to the trash bin
	ActionRestore Action = "restore" // bring a trashed entity back
	ActionPurge   Action = "purge"   // permanent delete from the trash bin
	ActionEdit    Action = "edit"    // create or update a live entity
)

type EntityKind string

const (
	KindMachine          EntityKind = "machine"
	KindInspectionRecord EntityKind = "inspection_record"
	KindTask             EntityKind = "task"
	KindPersonnel        EntityKind = "personnel"
)

// CanPerform decides whether the actor may run the action on the
// entity kind. Inspection records and machines can be trashed and
// edited by the admin, supervisors and engineers; tasks and personnel
// management stays admin-only. Restore and purge follow the same
// per-kind rules as trash.
func CanPerform(actor *domain.User, action Action, kind EntityKind) bool {
	if actor == nil {
		return false
	}
	if actor.Role == domain.RoleAdmin {
		return true
	}

	senior := actor.PersonnelRole == domain.RoleSupervisor ||
		actor.PersonnelRole == domain.RoleEngineer

	switch kind {
	case KindInspectionRecord:
		switch action {
		case ActionTrash, ActionRestore, ActionPurge, ActionEdit:
			return senior
		}
	case KindMachine:
		switch action {
		case ActionTrash, ActionRestore, ActionPurge:
			return senior
		case ActionEdit:
			return false
		}
	case KindTask, KindPersonnel:
		// admin-only, already handled above
		return false
	}
	return false
}

// RequiredRoles names the roles allowed to run the action, for
// user-facing rejection messages.
func RequiredRoles(action Action, kind EntityKind) []string {
	switch kind {
	case KindInspectionRecord:
		return []string{"ADMIN", "SUPERVISOR", "ENGINEER"}
	case KindMachine:
		if action == ActionEdit {
			return []string{"ADMIN"}
		}
		return []string{"ADMIN", "SUPERVISOR", "ENGINEER"}
	}
	return []string{"ADMIN"}
}

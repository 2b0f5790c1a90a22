package domain

import "time"

type PersonnelRole string

const (
	RoleOperator   PersonnelRole = "OPERATOR"
	RoleSupervisor PersonnelRole = "SUPERVISOR"
	RoleEngineer   PersonnelRole = "ENGINEER"
)

// Personnel is one roster entry. Name is the display form composed
// from title + first + last and is what task assignment and
// notification addressing match against.
type Personnel struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Title     string        `json:"title,omitempty"`
	FirstName string        `json:"firstName,omitempty"`
	LastName  string        `json:"lastName,omitempty"`
	Role      PersonnelRole `json:"role"`
	Info      string        `json:"info"` // department
	DeletedAt *time.Time    `json:"deletedAt,omitempty"`
}

// ComposeName builds the display name the rest of the system keys on.
func ComposeName(title, firstName, lastName string) string {
	name := title + firstName
	if lastName != "" {
		name += " " + lastName
	}
	return name
}

package domain

type UserRole string

const (
	RoleAdmin UserRole = "ADMIN"
	RoleUser  UserRole = "USER"
)

const (
	// AdminID is the fixed sentinel used for addressing and
	// authorization instead of a personal id.
	AdminID          = "ADMIN"
	AdminDisplayName = "Admin TMC"
)

// User is the active terminal session identity. It lives in the
// dedicated session slot, not in a collection.
type User struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Email         string        `json:"email,omitempty"`
	Role          UserRole      `json:"role"`
	Department    string        `json:"department,omitempty"`
	PersonnelRole PersonnelRole `json:"personnelRole,omitempty"`
}

// EffectiveID returns the identifier used for addressing: the ADMIN
// sentinel for administrators, the personnel id otherwise.
func (u *User) EffectiveID() string {
	if u == nil {
		return ""
	}
	if u.Role == RoleAdmin {
		return AdminID
	}
	return u.ID
}

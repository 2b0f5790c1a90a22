package session

import (
	"errors"

	"factorydesk/internal/domain"
	"factorydesk/internal/modules/notification"
	jwtsvc "factorydesk/internal/pkg/jwt"
	"factorydesk/internal/store"
)

var (
	ErrPersonnelNotFound = errors.New("personnel not found")
	ErrNoSession         = errors.New("no active session")
)

// Service owns the single session slot. Login is a role picker, not an
// authentication step: the admin entry and the personnel roster are
// the only identities, and no credential is verified.
type Service struct {
	slot      *store.Slot[domain.User]
	personnel *store.Collection[domain.Personnel]
	notifs    *notification.Service
	tokens    *jwtsvc.Service
}

func NewService(
	slot *store.Slot[domain.User],
	personnel *store.Collection[domain.Personnel],
	notifs *notification.Service,
	tokens *jwtsvc.Service,
) *Service {
	return &Service{slot: slot, personnel: personnel, notifs: notifs, tokens: tokens}
}

func (s *Service) LoginAdmin() (*domain.User, string, error) {
	user := &domain.User{
		ID:         domain.AdminID,
		Name:       domain.AdminDisplayName,
		Email:      "admin@factory.local",
		Role:       domain.RoleAdmin,
		Department: "Control",
	}
	return s.open(user)
}

func (s *Service) LoginPersonnel(personnelID string) (*domain.User, string, error) {
	var person *domain.Personnel
	for _, p := range s.personnel.LoadAll() {
		if p.ID == personnelID && p.DeletedAt == nil {
			person = &p
			break
		}
	}
	if person == nil {
		return nil, "", ErrPersonnelNotFound
	}
	user := &domain.User{
		ID:            person.ID,
		Name:          person.Name,
		Role:          domain.RoleUser,
		Department:    person.Info,
		PersonnelRole: person.Role,
	}
	return s.open(user)
}

func (s *Service) open(user *domain.User) (*domain.User, string, error) {
	if err := s.slot.Set(user.EffectiveID(), *user); err != nil {
		return nil, "", err
	}
	token, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, "", err
	}
	_, _ = s.notifs.Push(user, domain.Notification{
		Title:    "การแจ้งเตือนความปลอดภัย: เข้าสู่ระบบใหม่",
		Message:  "ผู้ใช้: " + user.Name + " (" + string(user.Role) + ") ได้เริ่มต้นเซสชันการใช้งานใหม่",
		Priority: domain.PriorityMedium,
		Category: domain.CategorySystem,
		SenderID: user.EffectiveID(),
	})
	return user, token, nil
}

func (s *Service) Logout(actor *domain.User) error {
	if actor != nil {
		_, _ = s.notifs.Push(actor, domain.Notification{
			Title:    "การแจ้งเตือนความปลอดภัย: ออกจากระบบ",
			Message:  "ผู้ใช้: " + actor.Name + " (" + string(actor.Role) + ") ได้สิ้นสุดเซสชันการใช้งานแล้ว",
			Priority: domain.PriorityLow,
			Category: domain.CategorySystem,
			SenderID: actor.EffectiveID(),
		})
	}
	return s.slot.Clear()
}

// Current returns the persisted session, if any.
func (s *Service) Current() (*domain.User, bool) {
	u, ok := s.slot.Get()
	if !ok {
		return nil, false
	}
	return &u, true
}

// ReconcileRoster refreshes the stored session after roster edits so a
// renamed or transferred employee does not keep a stale identity.
func (s *Service) ReconcileRoster() error {
	current, ok := s.slot.Get()
	if !ok || current.Role == domain.RoleAdmin {
		return nil
	}
	for _, p := range s.personnel.Snapshot() {
		if p.ID != current.ID || p.DeletedAt != nil {
			continue
		}
		if p.Name == current.Name && p.Info == current.Department && p.Role == current.PersonnelRole {
			return nil
		}
		current.Name = p.Name
		current.Department = p.Info
		current.PersonnelRole = p.Role
		return s.slot.Set(current.EffectiveID(), current)
	}
	return nil
}

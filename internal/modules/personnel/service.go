package personnel

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
	ErrNotFound         = errors.New("personnel not found")
	ErrForbidden        = errors.New("insufficient permissions")
	ErrDuplicateID      = errors.New("personnel id already in use")
	ErrDepartmentExists = errors.New("department already exists")
	ErrDepartmentInUse  = errors.New("department still has members")
	ErrNoDepartment     = errors.New("department not found")
)

// Service manages the roster and the department list. Roster edits
// ripple into the stored session through the reconcile hook so a
// logged-in employee never carries a stale name or department.
type Service struct {
	roster      *store.Collection[domain.Personnel]
	departments *store.Collection[string]
	notifs      *notification.Service
	reconcile   func() error
}

func NewService(
	roster *store.Collection[domain.Personnel],
	departments *store.Collection[string],
	notifs *notification.Service,
) *Service {
	return &Service{roster: roster, departments: departments, notifs: notifs}
}

// OnRosterChange registers the session-reconcile hook, called after
// every roster or department mutation.
func (s *Service) OnRosterChange(fn func() error) {
	s.reconcile = fn
}

func (s *Service) List() []domain.Personnel {
	var out []domain.Personnel
	for _, p := range s.roster.LoadAll() {
		if p.DeletedAt == nil {
			out = append(out, p)
		}
	}
	return out
}

func (s *Service) Add(actor *domain.User, p domain.Personnel) (*domain.Personnel, error) {
	if !authz.CanPerform(actor, authz.ActionEdit, authz.KindPersonnel) {
		return nil, ErrForbidden
	}
	if p.ID == "" {
		p.ID = fmt.Sprintf("P-%d", time.Now().UnixMilli())
	}
	p.Name = domain.ComposeName(p.Title, p.FirstName, p.LastName)

	duplicate := false
	_, err := s.roster.Write(actor.EffectiveID(), func(prev []domain.Personnel) []domain.Personnel {
		for i := range prev {
			if prev[i].ID == p.ID {
				duplicate = true
				return prev
			}
		}
		return append(prev, p)
	})
	if err != nil {
		return nil, err
	}
	if duplicate {
		return nil, ErrDuplicateID
	}

	s.notifySystem(actor, "เพิ่มบุคลากรใหม่",
		fmt.Sprintf("บุคลากร: %s (%s) แผนก %s", p.Name, p.Role, p.Info))
	return &p, s.runReconcile()
}

func (s *Service) Update(actor *domain.User, p domain.Personnel) (*domain.Personnel, error) {
	if !authz.CanPerform(actor, authz.ActionEdit, authz.KindPersonnel) {
		return nil, ErrForbidden
	}
	p.Name = domain.ComposeName(p.Title, p.FirstName, p.LastName)

	found := false
	_, err := s.roster.Write(actor.EffectiveID(), func(prev []domain.Personnel) []domain.Personnel {
		for i := range prev {
			if prev[i].ID == p.ID && prev[i].DeletedAt == nil {
				prev[i] = p
				found = true
				return prev
			}
		}
		return prev
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}

	s.notifySystem(actor, "แก้ไขข้อมูลบุคลากร",
		fmt.Sprintf("บุคลากร: %s (%s) แผนก %s", p.Name, p.Role, p.Info))
	return &p, s.runReconcile()
}

func (s *Service) Departments() []string {
	return s.departments.LoadAll()
}

func (s *Service) AddDepartment(actor *domain.User, name string) error {
	if !authz.CanPerform(actor, authz.ActionEdit, authz.KindPersonnel) {
		return ErrForbidden
	}
	exists := false
	_, err := s.departments.Write(actor.EffectiveID(), func(prev []string) []string {
		for _, d := range prev {
			if d == name {
				exists = true
				return prev
			}
		}
		return append(prev, name)
	})
	if err != nil {
		return err
	}
	if exists {
		return ErrDepartmentExists
	}
	return nil
}

// RenameDepartment changes a department name and cascades the rename
// into every roster entry that carried the old name.
func (s *Service) RenameDepartment(actor *domain.User, oldName, newName string) error {
	if !authz.CanPerform(actor, authz.ActionEdit, authz.KindPersonnel) {
		return ErrForbidden
	}
	found := false
	_, err := s.departments.Write(actor.EffectiveID(), func(prev []string) []string {
		for i, d := range prev {
			if d == oldName {
				prev[i] = newName
				found = true
				return prev
			}
		}
		return prev
	})
	if err != nil {
		return err
	}
	if !found {
		return ErrNoDepartment
	}

	_, err = s.roster.Write(actor.EffectiveID(), func(prev []domain.Personnel) []domain.Personnel {
		for i := range prev {
			if prev[i].Info == oldName {
				prev[i].Info = newName
			}
		}
		return prev
	})
	if err != nil {
		return err
	}
	return s.runReconcile()
}

func (s *Service) DeleteDepartment(actor *domain.User, name string) error {
	if !authz.CanPerform(actor, authz.ActionEdit, authz.KindPersonnel) {
		return ErrForbidden
	}
	for _, p := range s.roster.LoadAll() {
		if p.DeletedAt == nil && p.Info == name {
			return ErrDepartmentInUse
		}
	}
	found := false
	_, err := s.departments.Write(actor.EffectiveID(), func(prev []string) []string {
		out := prev[:0]
		for _, d := range prev {
			if d == name {
				found = true
				continue
			}
			out = append(out, d)
		}
		return out
	})
	if err != nil {
		return err
	}
	if !found {
		return ErrNoDepartment
	}
	return nil
}

func (s *Service) notifySystem(actor *domain.User, title, message string) {
	_, _ = s.notifs.Push(actor, domain.Notification{
		Title:    title,
		Message:  message,
		Priority: domain.PriorityLow,
		Category: domain.CategorySystem,
	})
}

func (s *Service) runReconcile() error {
	if s.reconcile == nil {
		return nil
	}
	return s.reconcile()
}

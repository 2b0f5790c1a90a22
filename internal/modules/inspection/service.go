package inspection

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"factorydesk/internal/domain"
	"factorydesk/internal/modules/machine"
	"factorydesk/internal/modules/notification"
	"factorydesk/internal/pkg/authz"
	"factorydesk/internal/store"
)

var (
	ErrNoMachine           = errors.New("machine not selected")
	ErrChecklistIncomplete = errors.New("checklist incomplete")
	ErrMissingAbnormalNote = errors.New("abnormal item requires a note")
	ErrMissingOperatorSign = errors.New("operator signature required")
	ErrRecordNotFound      = errors.New("inspection record not found")
	ErrEditForbidden       = errors.New("insufficient permissions to edit records")
)

type Service struct {
	records  *store.Collection[domain.InspectionRecord]
	machines *machine.Service
	notifs   *notification.Service
}

func NewService(
	records *store.Collection[domain.InspectionRecord],
	machines *machine.Service,
	notifs *notification.Service,
) *Service {
	return &Service{records: records, machines: machines, notifs: notifs}
}

// Submit validates and stores a completed checklist run, then refreshes
// the derived fields of the inspected machine. A request carrying the
// id of an existing record is an in-place correction and needs the
// record-edit permission.
func (s *Service) Submit(actor *domain.User, rec domain.InspectionRecord) (*domain.InspectionRecord, error) {
	if rec.MachineID == "" {
		return nil, ErrNoMachine
	}
	m, err := s.machines.Get(rec.MachineID)
	if err != nil {
		return nil, ErrNoMachine
	}
	if len(rec.Sections) == 0 {
		rec.Sections = m.ChecklistTemplate
	}
	if err := validateValues(rec.Sections, rec.Values); err != nil {
		return nil, err
	}
	if rec.OperatorSignature == "" {
		return nil, ErrMissingOperatorSign
	}

	rec.OverallStatus = domain.ComputeOverallStatus(rec.Values)
	rec.ApprovalStatus = domain.ComputeApprovalStatus(
		rec.OperatorSignature, rec.SupervisorSignature, rec.EngineerSignature)
	if rec.Date.IsZero() {
		rec.Date = time.Now()
	}

	editing := false
	if rec.ID != "" {
		for _, existing := range s.records.LoadAll() {
			if existing.ID == rec.ID {
				editing = true
				break
			}
		}
	}
	if editing {
		if !authz.CanPerform(actor, authz.ActionEdit, authz.KindInspectionRecord) {
			return nil, ErrEditForbidden
		}
	} else if rec.ID == "" {
		rec.ID = fmt.Sprintf("REC-%d", time.Now().UnixMilli())
	}

	_, err = s.records.Write(actor.EffectiveID(), func(prev []domain.InspectionRecord) []domain.InspectionRecord {
		if editing {
			for i := range prev {
				if prev[i].ID == rec.ID {
					prev[i] = rec
					return prev
				}
			}
		}
		return append([]domain.InspectionRecord{rec}, prev...)
	})
	if err != nil {
		return nil, err
	}

	if err := s.machines.SyncDerived(actor.EffectiveID()); err != nil {
		return nil, err
	}

	priority := domain.PriorityLow
	switch rec.OverallStatus {
	case domain.StatusCritical:
		priority = domain.PriorityHigh
	case domain.StatusWarning:
		priority = domain.PriorityMedium
	}
	_, _ = s.notifs.Push(actor, domain.Notification{
		Title:    "บันทึกผลการตรวจเช็คเครื่องจักร",
		Message:  fmt.Sprintf("เครื่องจักร %s สถานะ %s โดย %s", m.Name, rec.OverallStatus, actor.Name),
		Priority: priority,
		Category: domain.CategoryMachine,
	})

	return &rec, nil
}

// History lists the non-deleted records, newest first. A non-empty
// machineID narrows the listing to one machine.
func (s *Service) History(machineID string) []domain.InspectionRecord {
	var out []domain.InspectionRecord
	for _, r := range s.records.LoadAll() {
		if r.DeletedAt != nil {
			continue
		}
		if machineID != "" && r.MachineID != machineID {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

func (s *Service) Get(id string) (*domain.InspectionRecord, error) {
	for _, r := range s.records.LoadAll() {
		if r.ID == id && r.DeletedAt == nil {
			return &r, nil
		}
	}
	return nil, ErrRecordNotFound
}

// validateValues checks that every checklist item carries a value and
// that every abnormal status item carries a note.
func validateValues(sections []domain.ChecklistSection, values map[string]domain.ItemValue) error {
	for _, sec := range sections {
		for _, item := range sec.Items {
			v, ok := values[item.ID]
			if !ok {
				return ErrChecklistIncomplete
			}
			switch item.Type {
			case domain.ItemTypeNumeric:
				if v.Number == "" {
					return ErrChecklistIncomplete
				}
			default:
				if !v.IsStatus() {
					return ErrChecklistIncomplete
				}
				if v.Status != domain.ItemStatusNormal && v.Note == "" {
					return ErrMissingAbnormalNote
				}
			}
		}
	}
	return nil
}

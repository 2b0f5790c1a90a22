package machine

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"factorydesk/internal/domain"
	"factorydesk/internal/modules/notification"
	"factorydesk/internal/pkg/authz"
	"factorydesk/internal/store"
)

var (
	ErrNotFound  = errors.New("machine not found")
	ErrForbidden = errors.New("insufficient permissions")
)

type Service struct {
	machines *store.Collection[domain.Machine]
	records  *store.Collection[domain.InspectionRecord]
	notifs   *notification.Service
}

func NewService(
	machines *store.Collection[domain.Machine],
	records *store.Collection[domain.InspectionRecord],
	notifs *notification.Service,
) *Service {
	return &Service{machines: machines, records: records, notifs: notifs}
}

// List returns the registered machines, deleted ones excluded.
func (s *Service) List() []domain.Machine {
	var out []domain.Machine
	for _, m := range s.machines.LoadAll() {
		if m.DeletedAt == nil {
			out = append(out, m)
		}
	}
	return out
}

func (s *Service) Get(id string) (*domain.Machine, error) {
	for _, m := range s.machines.LoadAll() {
		if m.ID == id && m.DeletedAt == nil {
			return &m, nil
		}
	}
	return nil, ErrNotFound
}

// Save upserts a machine definition. New machines go to the front of
// the list; existing ones are replaced in place.
func (s *Service) Save(actor *domain.User, m domain.Machine) (*domain.Machine, error) {
	if !authz.CanPerform(actor, authz.ActionEdit, authz.KindMachine) {
		return nil, ErrForbidden
	}
	if m.Status == "" {
		m.Status = domain.StatusOperational
	}
	created := true
	_, err := s.machines.Write(actor.EffectiveID(), func(prev []domain.Machine) []domain.Machine {
		for i := range prev {
			if prev[i].ID == m.ID {
				prev[i] = m
				created = false
				return prev
			}
		}
		return append([]domain.Machine{m}, prev...)
	})
	if err != nil {
		return nil, err
	}

	title := "อัปเดตข้อมูลเครื่องจักร"
	if created {
		title = "เพิ่มเครื่องจักรใหม่"
	}
	_, _ = s.notifs.Push(actor, domain.Notification{
		Title:    title,
		Message:  fmt.Sprintf("เครื่องจักร %s (%s) โดย %s", m.Name, m.ID, actor.Name),
		Priority: domain.PriorityLow,
		Category: domain.CategoryMachine,
	})
	return &m, nil
}

// Duplicate clones a machine under a derived id so a template can be
// reused without re-entering the checklist.
func (s *Service) Duplicate(actor *domain.User, id string) (*domain.Machine, error) {
	if !authz.CanPerform(actor, authz.ActionEdit, authz.KindMachine) {
		return nil, ErrForbidden
	}
	src, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	ms := fmt.Sprintf("%d", time.Now().UnixMilli())
	copyMachine := *src
	copyMachine.ID = fmt.Sprintf("%s-COPY-%s", src.ID, ms[len(ms)-4:])
	copyMachine.Name = src.Name + " (Copy)"
	copyMachine.Status = domain.StatusOperational
	copyMachine.Efficiency = 100
	copyMachine.LastInspection = "-"
	copyMachine.ChecklistTemplate = cloneTemplate(src.ChecklistTemplate)

	_, err = s.machines.Write(actor.EffectiveID(), func(prev []domain.Machine) []domain.Machine {
		return append([]domain.Machine{copyMachine}, prev...)
	})
	if err != nil {
		return nil, err
	}
	return &copyMachine, nil
}

func cloneTemplate(in []domain.ChecklistSection) []domain.ChecklistSection {
	out := make([]domain.ChecklistSection, len(in))
	for i, sec := range in {
		out[i] = sec
		out[i].Items = append([]domain.ChecklistItem(nil), sec.Items...)
	}
	return out
}

// SyncDerived recomputes the derived machine fields from the latest
// non-deleted inspection record of each machine. A machine with no
// surviving record falls back to OPERATIONAL, 100% and "-". The write
// is skipped entirely when nothing changed.
func (s *Service) SyncDerived(actorID string) error {
	latest := latestRecords(s.records.LoadAll())

	dirty := false
	for _, m := range s.machines.LoadAll() {
		next := applyDerived(m, latest)
		if m.Status != next.Status ||
			m.LastInspection != next.LastInspection ||
			m.Efficiency != next.Efficiency {
			dirty = true
			break
		}
	}
	if !dirty {
		return nil
	}

	_, err := s.machines.Write(actorID, func(prev []domain.Machine) []domain.Machine {
		for i := range prev {
			prev[i] = applyDerived(prev[i], latest)
		}
		return prev
	})
	return err
}

func applyDerived(m domain.Machine, latest map[string]domain.InspectionRecord) domain.Machine {
	rec, ok := latest[m.ID]
	if !ok {
		m.Status = domain.StatusOperational
		m.Efficiency = 100
		m.LastInspection = "-"
		return m
	}
	m.Status = rec.OverallStatus
	m.LastInspection = rec.Date.Format("2006-01-02")
	m.Efficiency = recordEfficiency(rec)
	return m
}

func latestRecords(records []domain.InspectionRecord) map[string]domain.InspectionRecord {
	sorted := append([]domain.InspectionRecord(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})
	latest := make(map[string]domain.InspectionRecord)
	for _, r := range sorted {
		if r.DeletedAt != nil {
			continue
		}
		if _, seen := latest[r.MachineID]; !seen {
			latest[r.MachineID] = r
		}
	}
	return latest
}

// recordEfficiency is the share of status items that came back NORMAL,
// rounded to a whole percent. Records with no status items count as
// fully efficient.
func recordEfficiency(rec domain.InspectionRecord) int {
	total, normal := 0, 0
	for _, v := range rec.Values {
		if !v.IsStatus() {
			continue
		}
		total++
		if v.Status == domain.ItemStatusNormal {
			normal++
		}
	}
	if total == 0 {
		return 100
	}
	return int(float64(normal)/float64(total)*100 + 0.5)
}

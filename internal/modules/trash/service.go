package trash

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
	ErrNotFound    = errors.New("item not found")
	ErrForbidden   = errors.New("insufficient permissions")
	ErrUnknownKind = errors.New("unknown trash kind")
)

// Kind names one of the soft-deletable entity families, matching the
// URL segment of the trash endpoints.
type Kind string

const (
	KindRecords   Kind = "records"
	KindTasks     Kind = "tasks"
	KindMachines  Kind = "machines"
	KindPersonnel Kind = "personnel"
)

// Entry is one trashed item with its remaining time before it becomes
// eligible for permanent deletion.
type Entry struct {
	Item        any       `json:"item"`
	DeletedAt   time.Time `json:"deletedAt"`
	RemainingMs int64     `json:"remainingMs"`
}

// Service moves entities between their live collection and the paired
// trash collection. A move always re-reads the live collection first
// so a stale mirror can never resurrect an item another terminal
// already changed.
type Service struct {
	bins      map[Kind]bin
	retention time.Duration
	notifs    *notification.Service
	recompute func(actorID string) error
}

type bin interface {
	entity() authz.EntityKind
	move(actorID, id string) (string, bool, error)
	restore(actorID, id string) (bool, error)
	purge(actorID, id string) (bool, error)
	entries(retention time.Duration) []Entry
	sweep(actorID string, retention time.Duration) (int, error)
}

func NewService(
	records *store.Collection[domain.InspectionRecord],
	trashRecords *store.Collection[domain.InspectionRecord],
	tasks *store.Collection[domain.Task],
	trashTasks *store.Collection[domain.Task],
	machines *store.Collection[domain.Machine],
	trashMachines *store.Collection[domain.Machine],
	personnel *store.Collection[domain.Personnel],
	trashPersonnel *store.Collection[domain.Personnel],
	retention time.Duration,
	notifs *notification.Service,
) *Service {
	return &Service{
		retention: retention,
		notifs:    notifs,
		bins: map[Kind]bin{
			KindRecords: &typedBin[domain.InspectionRecord]{
				live: records, trash: trashRecords,
				kind: authz.KindInspectionRecord,
				id:   func(r domain.InspectionRecord) string { return r.ID },
				label: func(r domain.InspectionRecord) string {
					return fmt.Sprintf("ใบตรวจเช็ค %s (เครื่อง %s)", r.ID, r.MachineID)
				},
				deletedAt:  func(r domain.InspectionRecord) *time.Time { return r.DeletedAt },
				setDeleted: func(r *domain.InspectionRecord, t *time.Time) { r.DeletedAt = t },
			},
			KindTasks: &typedBin[domain.Task]{
				live: tasks, trash: trashTasks,
				kind: authz.KindTask,
				id:   func(t domain.Task) string { return t.ID },
				label: func(t domain.Task) string {
					return fmt.Sprintf("งาน %s", t.Title)
				},
				deletedAt:  func(t domain.Task) *time.Time { return t.DeletedAt },
				setDeleted: func(t *domain.Task, ts *time.Time) { t.DeletedAt = ts },
			},
			KindMachines: &typedBin[domain.Machine]{
				live: machines, trash: trashMachines,
				kind: authz.KindMachine,
				id:   func(m domain.Machine) string { return m.ID },
				label: func(m domain.Machine) string {
					return fmt.Sprintf("เครื่องจักร %s (%s)", m.Name, m.ID)
				},
				deletedAt:  func(m domain.Machine) *time.Time { return m.DeletedAt },
				setDeleted: func(m *domain.Machine, t *time.Time) { m.DeletedAt = t },
			},
			KindPersonnel: &typedBin[domain.Personnel]{
				live: personnel, trash: trashPersonnel,
				kind: authz.KindPersonnel,
				id:   func(p domain.Personnel) string { return p.ID },
				label: func(p domain.Personnel) string {
					return fmt.Sprintf("บุคลากร %s (%s)", p.Name, p.ID)
				},
				deletedAt:  func(p domain.Personnel) *time.Time { return p.DeletedAt },
				setDeleted: func(p *domain.Personnel, t *time.Time) { p.DeletedAt = t },
			},
		},
	}
}

// OnRecordsChange registers the derived-machine recompute hook, called
// after any trash operation that can change which inspection record is
// a machine's latest, and after a machine returns from the trash.
func (s *Service) OnRecordsChange(fn func(actorID string) error) {
	s.recompute = fn
}

func (s *Service) runRecompute(actorID string, kind Kind, restored bool) error {
	if s.recompute == nil {
		return nil
	}
	if kind != KindRecords && !(kind == KindMachines && restored) {
		return nil
	}
	return s.recompute(actorID)
}

func (s *Service) Retention() time.Duration {
	return s.retention
}

// Remaining reports how long a trashed item has left inside the
// retention window; zero or negative means it is eligible for purge.
func (s *Service) Remaining(deletedAt time.Time) time.Duration {
	return time.Until(deletedAt.Add(s.retention))
}

func (s *Service) List(kind Kind) ([]Entry, error) {
	b, ok := s.bins[kind]
	if !ok {
		return nil, ErrUnknownKind
	}
	return b.entries(s.retention), nil
}

// Move soft-deletes one item: stamps DeletedAt, removes it from the
// live collection and prepends it to the trash bin.
func (s *Service) Move(actor *domain.User, kind Kind, id string) error {
	b, ok := s.bins[kind]
	if !ok {
		return ErrUnknownKind
	}
	if !authz.CanPerform(actor, authz.ActionTrash, b.entity()) {
		return ErrForbidden
	}
	label, found, err := b.move(actor.EffectiveID(), id)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	s.notifyMove(actor, kind, label)
	return s.runRecompute(actor.EffectiveID(), kind, false)
}

// Restore clears DeletedAt and puts the item back at the front of the
// live collection.
func (s *Service) Restore(actor *domain.User, kind Kind, id string) error {
	b, ok := s.bins[kind]
	if !ok {
		return ErrUnknownKind
	}
	if !authz.CanPerform(actor, authz.ActionRestore, b.entity()) {
		return ErrForbidden
	}
	found, err := b.restore(actor.EffectiveID(), id)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return s.runRecompute(actor.EffectiveID(), kind, true)
}

// Purge permanently deletes a trashed item, regardless of how much of
// the retention window is left.
func (s *Service) Purge(actor *domain.User, kind Kind, id string) error {
	b, ok := s.bins[kind]
	if !ok {
		return ErrUnknownKind
	}
	if !authz.CanPerform(actor, authz.ActionPurge, b.entity()) {
		return ErrForbidden
	}
	found, err := b.purge(actor.EffectiveID(), id)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

// SweepExpired purges every trashed item whose retention window has
// elapsed and returns how many were removed.
func (s *Service) SweepExpired(actorID string) (int, error) {
	total := 0
	for _, b := range s.bins {
		n, err := b.sweep(actorID, s.retention)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (s *Service) notifyMove(actor *domain.User, kind Kind, label string) {
	priority := domain.PriorityMedium
	if kind == KindPersonnel {
		priority = domain.PriorityHigh
	}
	_, _ = s.notifs.Push(actor, domain.Notification{
		Title:    "ย้ายรายการไปถังขยะ",
		Message:  fmt.Sprintf("%s โดย %s", label, actor.Name),
		Priority: priority,
		Category: domain.CategoryTrash,
	})
}

// typedBin implements the per-kind mechanics over one live/trash
// collection pair.
type typedBin[T any] struct {
	live       *store.Collection[T]
	trash      *store.Collection[T]
	kind       authz.EntityKind
	id         func(T) string
	label      func(T) string
	deletedAt  func(T) *time.Time
	setDeleted func(*T, *time.Time)
}

func (b *typedBin[T]) entity() authz.EntityKind {
	return b.kind
}

func (b *typedBin[T]) move(actorID, id string) (string, bool, error) {
	// fresh read before moving: the item may have changed or vanished
	// on another terminal since this mirror was last refreshed
	var (
		item  T
		found bool
	)
	for _, it := range b.live.LoadAll() {
		if b.id(it) == id && b.deletedAt(it) == nil {
			item = it
			found = true
			break
		}
	}
	if !found {
		return "", false, nil
	}

	// destination first: a failure at any point leaves the item in at
	// least one of the two collections, never lost
	now := time.Now()
	b.setDeleted(&item, &now)
	if _, err := b.trash.Write(actorID, func(prev []T) []T {
		return append([]T{item}, prev...)
	}); err != nil {
		return "", false, err
	}
	if err := b.drop(b.live, actorID, id); err != nil {
		_ = b.drop(b.trash, actorID, id)
		return "", false, err
	}
	return b.label(item), true, nil
}

func (b *typedBin[T]) restore(actorID, id string) (bool, error) {
	var (
		item  T
		found bool
	)
	for _, it := range b.trash.LoadAll() {
		if b.id(it) == id {
			item = it
			found = true
			break
		}
	}
	if !found {
		return false, nil
	}

	b.setDeleted(&item, nil)
	if _, err := b.live.Write(actorID, func(prev []T) []T {
		return append([]T{item}, prev...)
	}); err != nil {
		return false, err
	}
	if err := b.drop(b.trash, actorID, id); err != nil {
		_ = b.drop(b.live, actorID, id)
		return false, err
	}
	return true, nil
}

// drop removes every entry with the given id from one collection.
func (b *typedBin[T]) drop(col *store.Collection[T], actorID, id string) error {
	_, err := col.Write(actorID, func(prev []T) []T {
		out := prev[:0]
		for _, it := range prev {
			if b.id(it) == id {
				continue
			}
			out = append(out, it)
		}
		return out
	})
	return err
}

func (b *typedBin[T]) purge(actorID, id string) (bool, error) {
	found := false
	_, err := b.trash.Write(actorID, func(prev []T) []T {
		out := prev[:0]
		for _, it := range prev {
			if !found && b.id(it) == id {
				found = true
				continue
			}
			out = append(out, it)
		}
		return out
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

func (b *typedBin[T]) entries(retention time.Duration) []Entry {
	var out []Entry
	for _, it := range b.trash.LoadAll() {
		deleted := time.Now()
		if ts := b.deletedAt(it); ts != nil {
			deleted = *ts
		}
		out = append(out, Entry{
			Item:        it,
			DeletedAt:   deleted,
			RemainingMs: time.Until(deleted.Add(retention)).Milliseconds(),
		})
	}
	return out
}

func (b *typedBin[T]) sweep(actorID string, retention time.Duration) (int, error) {
	expired := 0
	for _, it := range b.trash.LoadAll() {
		if ts := b.deletedAt(it); ts != nil && time.Since(*ts) >= retention {
			expired++
		}
	}
	if expired == 0 {
		return 0, nil
	}
	_, err := b.trash.Write(actorID, func(prev []T) []T {
		out := prev[:0]
		for _, it := range prev {
			if ts := b.deletedAt(it); ts != nil && time.Since(*ts) >= retention {
				continue
			}
			out = append(out, it)
		}
		return out
	})
	if err != nil {
		return 0, err
	}
	return expired, nil
}

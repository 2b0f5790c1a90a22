package notification

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"factorydesk/internal/bus"
	"factorydesk/internal/domain"
	"factorydesk/internal/store"
)

// maxStored caps the notification log; older entries fall off the end.
const maxStored = 100

var ErrNotFound = errors.New("notification not found")

// Service owns the notification collection and the fan-out to other
// contexts. The publishing context surfaces its own toast locally; the
// bus never loops a message back to it.
type Service struct {
	notifs *store.Collection[domain.Notification]
	pub    bus.Publisher

	mu     sync.RWMutex
	toasts []func(domain.Notification)
}

func NewService(notifs *store.Collection[domain.Notification], pub bus.Publisher) *Service {
	return &Service{notifs: notifs, pub: pub}
}

// OnToast registers a sink for locally produced notifications.
func (s *Service) OnToast(fn func(domain.Notification)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toasts = append(s.toasts, fn)
}

// Push stores the notification (newest first, capped), broadcasts
// NEW_NOTIFICATION to other contexts and raises the local toast.
func (s *Service) Push(actor *domain.User, n domain.Notification) (*domain.Notification, error) {
	if n.ID == "" {
		n.ID = fmt.Sprintf("NOTIF-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}
	if n.SenderID == "" {
		n.SenderID = actor.EffectiveID()
	}
	if n.SenderID == "" {
		n.SenderID = "SYSTEM"
	}

	_, err := s.notifs.Write(n.SenderID, func(prev []domain.Notification) []domain.Notification {
		next := append([]domain.Notification{n}, prev...)
		if len(next) > maxStored {
			next = next[:maxStored]
		}
		return next
	})
	if err != nil {
		return nil, err
	}

	if s.pub != nil {
		s.pub.Publish(bus.NewNotification(n.SenderID, n))
	}

	s.mu.RLock()
	toasts := append([]func(domain.Notification){}, s.toasts...)
	s.mu.RUnlock()
	for _, fn := range toasts {
		fn(n)
	}
	return &n, nil
}

// ListVisible filters the stored log down to what the viewer may see
// and reports the unread count among those.
func (s *Service) ListVisible(viewer *domain.User) ([]domain.Notification, int) {
	var visible []domain.Notification
	unread := 0
	for _, n := range s.notifs.Snapshot() {
		if !n.VisibleTo(viewer) {
			continue
		}
		visible = append(visible, n)
		if !n.Read {
			unread++
		}
	}
	return visible, unread
}

func (s *Service) MarkRead(actor *domain.User, id string) error {
	found := false
	_, err := s.notifs.Write(actor.EffectiveID(), func(prev []domain.Notification) []domain.Notification {
		for i := range prev {
			if prev[i].ID == id {
				prev[i].Read = true
				found = true
			}
		}
		return prev
	})
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

// ClearAll empties the log for every viewer; the log is a shared
// terminal resource, not a per-user inbox.
func (s *Service) ClearAll(actor *domain.User) error {
	_, err := s.notifs.Write(actor.EffectiveID(), func(prev []domain.Notification) []domain.Notification {
		return []domain.Notification{}
	})
	return err
}

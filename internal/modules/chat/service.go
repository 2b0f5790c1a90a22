package chat

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"factorydesk/internal/domain"
	"factorydesk/internal/modules/notification"
	"factorydesk/internal/store"
)

var ErrEmptyMessage = errors.New("message has no text and no attachments")

const previewRunes = 30

type Service struct {
	messages *store.Collection[domain.ChatMessage]
	notifs   *notification.Service
}

func NewService(messages *store.Collection[domain.ChatMessage], notifs *notification.Service) *Service {
	return &Service{messages: messages, notifs: notifs}
}

// Send appends a direct message and notifies the receiver with a short
// preview.
func (s *Service) Send(actor *domain.User, receiverID, receiverName, text string, attachments []domain.TaskAttachment) (*domain.ChatMessage, error) {
	if text == "" && len(attachments) == 0 {
		return nil, ErrEmptyMessage
	}
	msg := domain.ChatMessage{
		ID:          fmt.Sprintf("MSG-%d", time.Now().UnixMilli()),
		SenderID:    actor.EffectiveID(),
		SenderName:  actor.Name,
		ReceiverID:  receiverID,
		Text:        text,
		Attachments: attachments,
		Timestamp:   time.Now(),
	}

	_, err := s.messages.Write(actor.EffectiveID(), func(prev []domain.ChatMessage) []domain.ChatMessage {
		return append(prev, msg)
	})
	if err != nil {
		return nil, err
	}

	_, _ = s.notifs.Push(actor, domain.Notification{
		Title:          "ข้อความใหม่จาก " + actor.Name,
		Message:        preview(msg),
		Priority:       domain.PriorityMedium,
		Category:       domain.CategoryChat,
		TargetID:       receiverID,
		TargetUserName: receiverName,
	})
	return &msg, nil
}

// Conversation lists the messages between the actor and one peer, in
// stored order.
func (s *Service) Conversation(actor *domain.User, otherID string) []domain.ChatMessage {
	me := actor.EffectiveID()
	var out []domain.ChatMessage
	for _, m := range s.messages.LoadAll() {
		if (m.SenderID == me && m.ReceiverID == otherID) ||
			(m.SenderID == otherID && m.ReceiverID == me) {
			out = append(out, m)
		}
	}
	return out
}

// MarkRead flags every message from the peer to the actor as read.
// Nothing is written when all of them already are.
func (s *Service) MarkRead(actor *domain.User, otherID string) error {
	me := actor.EffectiveID()
	dirty := false
	for _, m := range s.messages.LoadAll() {
		if m.SenderID == otherID && m.ReceiverID == me && !m.Read {
			dirty = true
			break
		}
	}
	if !dirty {
		return nil
	}
	_, err := s.messages.Write(me, func(prev []domain.ChatMessage) []domain.ChatMessage {
		for i := range prev {
			if prev[i].SenderID == otherID && prev[i].ReceiverID == me {
				prev[i].Read = true
			}
		}
		return prev
	})
	return err
}

// UnreadCounts maps each peer id to the number of unread messages they
// sent the actor.
func (s *Service) UnreadCounts(actor *domain.User) map[string]int {
	me := actor.EffectiveID()
	counts := make(map[string]int)
	for _, m := range s.messages.LoadAll() {
		if m.ReceiverID == me && !m.Read {
			counts[m.SenderID]++
		}
	}
	return counts
}

func preview(msg domain.ChatMessage) string {
	if msg.Text == "" {
		return "ส่งไฟล์แนบ"
	}
	if utf8.RuneCountInString(msg.Text) <= previewRunes {
		return msg.Text
	}
	runes := []rune(msg.Text)
	return string(runes[:previewRunes]) + "..."
}

package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factorydesk/internal/domain"
	"factorydesk/internal/modules/notification"
	"factorydesk/internal/store"
)

func newTestService(t *testing.T) (*Service, *notification.Service) {
	t.Helper()
	kv := store.NewMemStore()
	messages := store.NewCollection[domain.ChatMessage](store.KeyChatMessages, kv, nil, nil)
	notifs := notification.NewService(
		store.NewCollection[domain.Notification](store.KeyNotifications, kv, nil, nil), nil)
	return NewService(messages, notifs), notifs
}

func sender() *domain.User {
	return &domain.User{ID: "P-001", Name: "สมศรี ใจดี", Role: domain.RoleUser}
}

func receiver() *domain.User {
	return &domain.User{ID: "P-002", Name: "สมหญิง รักงาน", Role: domain.RoleUser}
}

func TestSendRejectsEmptyMessage(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Send(sender(), "P-002", "สมหญิง รักงาน", "", nil)
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestSendNotifiesReceiverWithPreview(t *testing.T) {
	svc, notifs := newTestService(t)

	msg, err := svc.Send(sender(), "P-002", "สมหญิง รักงาน", "สวัสดีครับ", nil)
	require.NoError(t, err)
	assert.Contains(t, msg.ID, "MSG-")
	assert.Equal(t, "P-001", msg.SenderID)

	visible, unread := notifs.ListVisible(receiver())
	require.Len(t, visible, 1)
	assert.Equal(t, 1, unread)
	assert.Equal(t, domain.CategoryChat, visible[0].Category)
	assert.Equal(t, "สวัสดีครับ", visible[0].Message)

	// chat notifications are addressed, not broadcast
	bystander := &domain.User{ID: "P-003", Name: "สมชาย", Role: domain.RoleUser}
	visible, _ = notifs.ListVisible(bystander)
	assert.Empty(t, visible)
}

func TestSendTruncatesLongPreview(t *testing.T) {
	svc, notifs := newTestService(t)

	long := strings.Repeat("ก", 50)
	_, err := svc.Send(sender(), "P-002", "สมหญิง รักงาน", long, nil)
	require.NoError(t, err)

	visible, _ := notifs.ListVisible(receiver())
	require.Len(t, visible, 1)
	assert.Equal(t, strings.Repeat("ก", previewRunes)+"...", visible[0].Message)
}

func TestSendAttachmentOnlyPreview(t *testing.T) {
	svc, notifs := newTestService(t)

	_, err := svc.Send(sender(), "P-002", "สมหญิง รักงาน", "", []domain.TaskAttachment{
		{Name: "manual.pdf", Type: "application/pdf", DataURL: "data:application/pdf;base64,xx"},
	})
	require.NoError(t, err)

	visible, _ := notifs.ListVisible(receiver())
	require.Len(t, visible, 1)
	assert.Equal(t, "ส่งไฟล์แนบ", visible[0].Message)
}

func TestConversationAndMarkRead(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Send(sender(), "P-002", "สมหญิง รักงาน", "หนึ่ง", nil)
	require.NoError(t, err)
	_, err = svc.Send(receiver(), "P-001", "สมศรี ใจดี", "สอง", nil)
	require.NoError(t, err)
	_, err = svc.Send(sender(), "P-003", "สมชาย", "อื่น", nil)
	require.NoError(t, err)

	conv := svc.Conversation(sender(), "P-002")
	require.Len(t, conv, 2)
	assert.Equal(t, "หนึ่ง", conv[0].Text)
	assert.Equal(t, "สอง", conv[1].Text)

	counts := svc.UnreadCounts(sender())
	assert.Equal(t, 1, counts["P-002"])

	require.NoError(t, svc.MarkRead(sender(), "P-002"))
	assert.Empty(t, svc.UnreadCounts(sender()))

	// idempotent when nothing is unread
	require.NoError(t, svc.MarkRead(sender(), "P-002"))
}

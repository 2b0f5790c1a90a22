package domain

import "time"

// ChatMessage is one direct message between two terminal users.
// ReceiverID addresses the effective id of the recipient (the ADMIN
// sentinel for the administrator).
type ChatMessage struct {
	ID          string           `json:"id"`
	SenderID    string           `json:"senderId"`
	SenderName  string           `json:"senderName"`
	ReceiverID  string           `json:"receiverId"`
	Text        string           `json:"text,omitempty"`
	Attachments []TaskAttachment `json:"attachments,omitempty"`
	Timestamp   time.Time        `json:"timestamp"`
	Read        bool             `json:"read"`
}

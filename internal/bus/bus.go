// Package bus is the same-terminal publish/subscribe channel used to
// tell other contexts about a write. Delivery is best effort: no
// ordering across message kinds, no delivery guarantee, and a message
// is never delivered back to the publishing context.
package bus

import (
	"encoding/json"

	"factorydesk/internal/domain"
)

const (
	KindSyncReload      = "SYNC_RELOAD"
	KindNewNotification = "NEW_NOTIFICATION"
)

// Message is the single wire shape for both kinds. OriginID carries
// the publishing actor's effective id so receivers can drop their own
// echoes even if a transport loops a message back.
type Message struct {
	Kind          string               `json:"kind"`
	OriginID      string               `json:"originId"`
	CollectionKey string               `json:"collectionKey,omitempty"`
	Payload       json.RawMessage      `json:"payload,omitempty"`
	Notification  *domain.Notification `json:"notification,omitempty"`
}

func SyncReload(originID, collectionKey string, payload json.RawMessage) Message {
	return Message{
		Kind:          KindSyncReload,
		OriginID:      originID,
		CollectionKey: collectionKey,
		Payload:       payload,
	}
}

func NewNotification(originID string, n domain.Notification) Message {
	return Message{
		Kind:         KindNewNotification,
		OriginID:     originID,
		Notification: &n,
	}
}

// Publisher is the narrow side used by writers.
type Publisher interface {
	Publish(Message)
}

// Conn is one subscriber context on the bus. Messages published
// through a Conn are delivered to every other Conn on the same bus.
type Conn interface {
	Publisher
	Receive() <-chan Message
	Close()
}

// Bus hands out connections. Implementations must never deliver a
// message to the Conn that published it.
type Bus interface {
	Connect() Conn
}

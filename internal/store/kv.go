package store

import "errors"

// ErrQuotaExceeded is returned by Set when a document would exceed the
// configured storage budget. Callers must surface it to the user; the
// write is abandoned, never partially applied.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// KeyValueStore is the single shared resource of the terminal: one
// JSON document per logical key, whole-document replace on every
// write. Get reports absence via ok=false rather than an error.
type KeyValueStore interface {
	Get(key string) (value []byte, ok bool, err error)
	Set(key string, value []byte) error
	Remove(key string) error

	// Watch registers a callback fired when a key is changed by a
	// writer other than this store handle (another process sharing the
	// same database). The returned func unregisters the callback.
	Watch(fn func(key string, value []byte)) (stop func())
}

// Logical document keys. Each holds the full current collection, or a
// single object for the session/preference slots.
const (
	KeyMachines       = "machines"
	KeyRecords        = "inspection-records"
	KeyTrashRecords   = "trash-records"
	KeyTrashTasks     = "trash-tasks"
	KeyTrashMachines  = "trash-machines"
	KeyTrashPersonnel = "trash-personnel"
	KeyPersonnel      = "personnel"
	KeyDepartments    = "departments"
	KeyNotifications  = "notifications"
	KeyTasks          = "tasks"
	KeyChatMessages   = "chat-messages"
	KeySession        = "session"
	KeyLanguage       = "language-preference"
	KeyAppURL         = "app-url-override"

	// KeyAllSync is not a document: it is the synthetic collection key
	// broadcast after a backup import to tell every context to reload
	// everything.
	KeyAllSync = "ALL_SYNC"
)

// AllKeys lists every persisted document, in export order.
func AllKeys() []string {
	return []string{
		KeyMachines,
		KeyRecords,
		KeyTrashRecords,
		KeyTrashTasks,
		KeyTrashMachines,
		KeyTrashPersonnel,
		KeyPersonnel,
		KeyDepartments,
		KeyNotifications,
		KeyTasks,
		KeyChatMessages,
		KeySession,
		KeyLanguage,
		KeyAppURL,
	}
}

package amqp

import (
	"encoding/json"
	"time"
)

// LedgerSyncMessage tells the mirror worker that a group's ledger changed.
// It carries only the group title and the operation; the worker fetches the
// current state from storage, so a stale or duplicated message is harmless.
type LedgerSyncMessage struct {
	GroupTitle string    `json:"group_title"`
	Op         string    `json:"op"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewLedgerSyncMessage(groupTitle, op string) *LedgerSyncMessage {
	return &LedgerSyncMessage{
		GroupTitle: groupTitle,
		Op:         op,
		Timestamp:  time.Now(),
	}
}

func (m *LedgerSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerSyncMessageFromJSON(data []byte) (*LedgerSyncMessage, error) {
	var msg LedgerSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

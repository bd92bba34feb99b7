package amqp

import (
	"encoding/json"
	"time"
)

// Message kinds carried on the export queue.
const (
	KindSync   = "sync"
	KindDelete = "delete"
)

// Message is the lightweight envelope published after a transaction
// mutation. It carries only the id and version; the worker fetches the
// full record from storage when handling it.
type Message struct {
	Kind      string    `json:"kind"`
	ID        string    `json:"id"`
	Version   int64     `json:"version,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewSyncMessage builds an envelope for a created or updated transaction.
func NewSyncMessage(id string, version int64) *Message {
	return &Message{Kind: KindSync, ID: id, Version: version, Timestamp: time.Now()}
}

// NewDeleteMessage builds an envelope for a deleted transaction.
func NewDeleteMessage(id string) *Message {
	return &Message{Kind: KindDelete, ID: id, Timestamp: time.Now()}
}

// ToJSON converts the message to JSON bytes.
func (m *Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MessageFromJSON parses a message from JSON bytes.
func MessageFromJSON(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

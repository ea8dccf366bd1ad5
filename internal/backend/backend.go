// Package backend wires the ledger service to a persistence choice.
package backend

import "divvy/internal/services"

// Type selects how the ledger snapshot is persisted.
type Type string

const (
	// SQLiteBackend loads the snapshot from SQLite at startup and rewrites
	// it after every mutation, optionally publishing sync messages.
	SQLiteBackend Type = "sqlite"
	// MemoryBackend keeps the ledger in memory only. Useful for tests and
	// throwaway sessions.
	MemoryBackend Type = "memory"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// Config holds what the factory needs to build a backend.
type Config struct {
	Type Type

	// SQLite specific
	SQLiteDBPath string

	// AMQP mirror pipeline (optional, sqlite backend only)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// CleanupFunc releases the backend's resources.
type CleanupFunc func() error

// Result is a ready ledger service plus its cleanup.
type Result struct {
	Service *services.LedgerService
	Cleanup CleanupFunc
}

// Package storage provides persistence for conversations and messages.
package storage

import (
	"strings"

	"github.com/kopibot/kopi/internal/core"
)

// Storage defines the interface for conversation persistence.
type Storage interface {
	// Initialize sets up the storage (creates tables, etc.)
	Initialize() error

	// Close closes the storage connection.
	Close() error

	// Conversation operations
	CreateConversation(conv *core.Conversation) error
	GetConversation(id string) (*core.Conversation, error)
	DeleteConversation(id string) error
	ListConversations(limit, offset int) ([]*core.ConversationSummary, error)

	// Message operations. GetMessages returns the most recent `limit`
	// messages in chronological order.
	AddMessage(msg *core.Message) error
	GetMessages(conversationID string, limit int) ([]*core.Message, error)
}

// Open creates a storage backend for the given database URL. A postgres://
// or postgresql:// URL selects Postgres; anything else is treated as a
// SQLite file path (empty means the default path).
func Open(databaseURL string) (Storage, error) {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		return NewPostgresStorage(databaseURL)
	}

	path := databaseURL
	if path == "" {
		path = DefaultDBPath()
	}
	return NewSQLiteStorage(path)
}

package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kopibot/kopi/internal/core"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &SQLiteStorage{
		db:   db,
		path: dbPath,
	}, nil
}

// Initialize creates the database schema.
func (s *SQLiteStorage) Initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		topic TEXT NOT NULL,
		topic_key TEXT NOT NULL,
		stance TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		conversation_id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (conversation_id) REFERENCES conversations(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_messages_conversation_id ON messages(conversation_id);
	CREATE INDEX IF NOT EXISTS idx_conversations_created_at ON conversations(created_at DESC);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// CreateConversation creates a new conversation.
func (s *SQLiteStorage) CreateConversation(conv *core.Conversation) error {
	query := `
	INSERT INTO conversations (id, topic, topic_key, stance, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		conv.ID,
		conv.Topic,
		conv.TopicKey,
		string(conv.Stance),
		conv.CreatedAt,
		conv.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert conversation: %w", err)
	}

	return nil
}

// GetConversation retrieves a conversation by ID.
func (s *SQLiteStorage) GetConversation(id string) (*core.Conversation, error) {
	query := `
	SELECT id, topic, topic_key, stance, created_at, updated_at
	FROM conversations
	WHERE id = ?
	`

	var conv core.Conversation
	var stance string

	err := s.db.QueryRow(query, id).Scan(
		&conv.ID,
		&conv.Topic,
		&conv.TopicKey,
		&stance,
		&conv.CreatedAt,
		&conv.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	parsed, err := core.ParseStance(stance)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored stance: %w", err)
	}
	conv.Stance = parsed

	return &conv, nil
}

// DeleteConversation deletes a conversation and its messages.
func (s *SQLiteStorage) DeleteConversation(id string) error {
	_, err := s.db.Exec("DELETE FROM conversations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	return nil
}

// ListConversations returns a list of conversation summaries.
func (s *SQLiteStorage) ListConversations(limit, offset int) ([]*core.ConversationSummary, error) {
	query := `
	SELECT c.id, c.topic, c.topic_key, c.stance, c.created_at,
		   (SELECT COUNT(*) FROM messages WHERE conversation_id = c.id) as message_count
	FROM conversations c
	ORDER BY c.created_at DESC
	LIMIT ? OFFSET ?
	`

	rows, err := s.db.Query(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var summaries []*core.ConversationSummary
	for rows.Next() {
		var summary core.ConversationSummary
		var stance string

		err := rows.Scan(
			&summary.ID,
			&summary.Topic,
			&summary.TopicKey,
			&stance,
			&summary.CreatedAt,
			&summary.MessageCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversation summary: %w", err)
		}

		summary.Stance = core.Stance(stance)
		summaries = append(summaries, &summary)
	}

	return summaries, nil
}

// AddMessage appends a message to a conversation's log.
func (s *SQLiteStorage) AddMessage(msg *core.Message) error {
	query := `
	INSERT INTO messages (conversation_id, role, content, created_at)
	VALUES (?, ?, ?, ?)
	`

	result, err := s.db.Exec(query,
		msg.ConversationID,
		string(msg.Role),
		msg.Content,
		msg.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		msg.ID = id
	}

	return nil
}

// GetMessages returns the most recent messages in chronological order.
func (s *SQLiteStorage) GetMessages(conversationID string, limit int) ([]*core.Message, error) {
	query := `
	SELECT id, conversation_id, role, content, created_at
	FROM messages
	WHERE conversation_id = ?
	ORDER BY id DESC
	LIMIT ?
	`

	rows, err := s.db.Query(query, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	defer rows.Close()

	var messages []*core.Message
	for rows.Next() {
		var msg core.Message
		var role string
		err := rows.Scan(
			&msg.ID,
			&msg.ConversationID,
			&role,
			&msg.Content,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.Role = core.Role(role)
		messages = append(messages, &msg)
	}

	// Reverse into chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// DefaultDBPath returns the default database path.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "kopi.db"
	}
	return filepath.Join(home, ".kopi", "kopi.db")
}

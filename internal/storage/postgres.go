package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kopibot/kopi/internal/core"
)

// PostgresStorage implements Storage using PostgreSQL via pgx. The Storage
// interface carries no contexts, so operations run under context.Background;
// cancellation belongs to the transport layer.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresStorage creates a new Postgres storage instance.
func NewPostgresStorage(databaseURL string) (*PostgresStorage, error) {
	ctx := context.Background()

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &PostgresStorage{pool: pool}, nil
}

// Initialize creates the database schema.
func (s *PostgresStorage) Initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		topic TEXT NOT NULL,
		topic_key TEXT NOT NULL,
		stance TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS messages (
		id BIGSERIAL PRIMARY KEY,
		conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_messages_conversation_id ON messages(conversation_id);
	CREATE INDEX IF NOT EXISTS idx_conversations_created_at ON conversations(created_at DESC);
	`

	if _, err := s.pool.Exec(context.Background(), schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the connection pool.
func (s *PostgresStorage) Close() error {
	s.pool.Close()
	return nil
}

// CreateConversation creates a new conversation.
func (s *PostgresStorage) CreateConversation(conv *core.Conversation) error {
	query := `
	INSERT INTO conversations (id, topic, topic_key, stance, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.pool.Exec(context.Background(), query,
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
func (s *PostgresStorage) GetConversation(id string) (*core.Conversation, error) {
	query := `
	SELECT id, topic, topic_key, stance, created_at, updated_at
	FROM conversations
	WHERE id = $1
	`

	var conv core.Conversation
	var stance string

	err := s.pool.QueryRow(context.Background(), query, id).Scan(
		&conv.ID,
		&conv.Topic,
		&conv.TopicKey,
		&stance,
		&conv.CreatedAt,
		&conv.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
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
func (s *PostgresStorage) DeleteConversation(id string) error {
	_, err := s.pool.Exec(context.Background(), "DELETE FROM conversations WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	return nil
}

// ListConversations returns a list of conversation summaries.
func (s *PostgresStorage) ListConversations(limit, offset int) ([]*core.ConversationSummary, error) {
	query := `
	SELECT c.id, c.topic, c.topic_key, c.stance, c.created_at,
		   (SELECT COUNT(*) FROM messages WHERE conversation_id = c.id) as message_count
	FROM conversations c
	ORDER BY c.created_at DESC
	LIMIT $1 OFFSET $2
	`

	rows, err := s.pool.Query(context.Background(), query, limit, offset)
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

	return summaries, rows.Err()
}

// AddMessage appends a message to a conversation's log.
func (s *PostgresStorage) AddMessage(msg *core.Message) error {
	query := `
	INSERT INTO messages (conversation_id, role, content, created_at)
	VALUES ($1, $2, $3, $4)
	RETURNING id
	`

	err := s.pool.QueryRow(context.Background(), query,
		msg.ConversationID,
		string(msg.Role),
		msg.Content,
		msg.CreatedAt,
	).Scan(&msg.ID)

	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	return nil
}

// GetMessages returns the most recent messages in chronological order.
func (s *PostgresStorage) GetMessages(conversationID string, limit int) ([]*core.Message, error) {
	query := `
	SELECT id, conversation_id, role, content, created_at
	FROM messages
	WHERE conversation_id = $1
	ORDER BY id DESC
	LIMIT $2
	`

	rows, err := s.pool.Query(context.Background(), query, conversationID, limit)
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
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse into chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// Package core contains the core domain types for kopi.
package core

import (
	"fmt"
	"time"
)

// Stance represents the fixed polarity the bot argues for a topic.
type Stance string

const (
	StanceStronglyFor     Stance = "strongly_for"
	StanceFor             Stance = "for"
	StanceAgainst         Stance = "against"
	StanceStronglyAgainst Stance = "strongly_against"
)

// Valid reports whether the stance is one of the four known values.
func (s Stance) Valid() bool {
	switch s {
	case StanceStronglyFor, StanceFor, StanceAgainst, StanceStronglyAgainst:
		return true
	}
	return false
}

// ParseStance converts a stored string back into a Stance.
func ParseStance(s string) (Stance, error) {
	stance := Stance(s)
	if !stance.Valid() {
		return "", fmt.Errorf("unknown stance: %s", s)
	}
	return stance, nil
}

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// DebateTopic represents a debate subject together with the bot's position.
// The stance is immutable once the topic is assigned to a conversation.
type DebateTopic struct {
	Topic            string            `json:"topic"`
	Stance           Stance            `json:"stance"`
	KeyArguments     []string          `json:"key_arguments"`
	CounterResponses map[string]string `json:"counter_responses"`
}

// Clone returns a deep copy so knowledge-base templates stay read-only.
func (t *DebateTopic) Clone() *DebateTopic {
	if t == nil {
		return nil
	}
	clone := &DebateTopic{
		Topic:  t.Topic,
		Stance: t.Stance,
	}
	if t.KeyArguments != nil {
		clone.KeyArguments = make([]string, len(t.KeyArguments))
		copy(clone.KeyArguments, t.KeyArguments)
	}
	if t.CounterResponses != nil {
		clone.CounterResponses = make(map[string]string, len(t.CounterResponses))
		for k, v := range t.CounterResponses {
			clone.CounterResponses[k] = v
		}
	}
	return clone
}

// Conversation represents a persisted debate conversation. The (TopicKey,
// Stance) pair is fixed at creation and reused on every subsequent turn.
type Conversation struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	TopicKey  string    `json:"topic_key"`
	Stance    Stance    `json:"stance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message represents a single entry in a conversation's message log.
type Message struct {
	ID             int64     `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           Role      `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// ConversationSummary is a lightweight representation for listing conversations.
type ConversationSummary struct {
	ID           string    `json:"id"`
	Topic        string    `json:"topic"`
	TopicKey     string    `json:"topic_key"`
	Stance       Stance    `json:"stance"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
}

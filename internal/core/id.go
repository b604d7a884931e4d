package core

import "github.com/google/uuid"

// NewID generates a new conversation identifier.
func NewID() string {
	return uuid.NewString()
}

package store

import "github.com/google/uuid"

// NewID returns a random (v4) UUID for tasks, subtasks, team members and resources.
func NewID() string {
	return uuid.NewString()
}

// LooksLikeID reports whether s parses as a UUID.
func LooksLikeID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

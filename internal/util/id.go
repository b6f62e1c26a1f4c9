package util

import "github.com/google/uuid"

// NewID generates a new unique identifier for runs and function calls.
func NewID() string { return uuid.NewString() }

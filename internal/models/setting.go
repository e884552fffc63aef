package models

import (
	"time"

	"github.com/google/uuid"
)

// Setting is a per-user preference. The (UserID, Key) pair is unique.
type Setting struct {
	ID     uuid.UUID
	UserID uuid.UUID

	Key   string
	Value string

	CreatedAt time.Time
	UpdatedAt time.Time
}

package domain

import "time"

// Event types published on the user stream.
const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

// UserEvent describes a mutation of the users table for stream subscribers.
// User is nil for deletions; only the ID survives the row.
type UserEvent struct {
	Type       string    `json:"type"`
	UserID     int64     `json:"user_id"`
	User       *User     `json:"user,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

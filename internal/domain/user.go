package domain

import "time"

// User represents a row in the users table. ID and CreatedAt are assigned
// by the database and never change afterwards.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

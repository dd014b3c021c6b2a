package model

import "time"

// User represents a local account. Authentication happens entirely against
// the local store; the rest of the application only ever sees the ID.
type User struct {
	CreatedAt    time.Time
	Username     string
	PasswordHash string
	ID           int64
}

package domain

import "time"

// User represents a registered account of the system. PasswordHash holds
// the stored salt:digest credential and must never reach API responses.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

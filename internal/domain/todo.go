package domain

import "time"

// Todo represents a single to-do item owned by exactly one user. Every
// read or mutation is scoped by UserID; items are invisible to other users.
type Todo struct {
	ID        int64
	UserID    int64
	Text      string
	Completed bool
	CreatedAt time.Time
	UpdatedAt time.Time
	// DueDate is an opaque client-supplied string, stored and returned
	// verbatim. Nil when the item has no due date.
	DueDate *string
}

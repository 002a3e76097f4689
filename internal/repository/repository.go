package repository

import "errors"

// ErrNotFound is returned when a requested row does not exist or is not
// visible to the requesting user.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a uniqueness
// constraint (username or email already taken).
var ErrDuplicate = errors.New("already exists")

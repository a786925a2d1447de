// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios without depending on driver-specific errors.
package repository

import "errors"

// ErrNotFound is returned when a requested row does not exist.  Services
// translate this into their own typed errors (e.g. unknown campaign) and
// handlers into HTTP 404 responses.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when inserting a user whose email is
// already taken.
var ErrEmailExists = errors.New("email already exists")

// ErrConflict is returned when an insert or update cannot proceed
// because of conflicting state, such as a duplicate external campaign
// id. Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

package repository

import "errors"

// This file defines the errors of the repository layer. The service layer
// translates them into the application sentinels in internal/errors.

// ErrNotFound is returned when no session has the requested id.
var ErrNotFound = errors.New("repository: not found")

// ErrConflict is returned by Save when the session was saved by someone else
// after the caller read it, and by Create when the id is already taken.
var ErrConflict = errors.New("repository: conflict")

package repo

import "errors"

// ErrNoSuchRef is returned when a ref (e.g. HEAD) cannot be resolved.
var ErrNoSuchRef = errors.New("no such ref")

// ErrLocked is returned when the staging area lock is already held.
var ErrLocked = errors.New("staging area is locked")

// ErrNotLocked is returned when Unlock is called without a matching Lock.
var ErrNotLocked = errors.New("staging area is not locked")

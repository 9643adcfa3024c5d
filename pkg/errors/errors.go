package errors

import "errors"

// ErrOptimisticLock is returned when a versioned row was modified by another
// writer between read and write. Services retry the whole operation once
// before surfacing the conflict to the caller.
var ErrOptimisticLock = errors.New("record was modified by a concurrent operation")

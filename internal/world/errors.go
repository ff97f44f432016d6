package world

import "errors"

// Sentinel errors for the world coordinator.
var (
	ErrBatchMismatch     = errors.New("objects and positions differ in length")
	ErrInvalidPosition   = errors.New("cannot insert object at invalid position")
	ErrAlreadyInserted   = errors.New("object already has an id")
	ErrNilObject         = errors.New("cannot insert nil object")
	ErrDuplicateObject   = errors.New("object appears twice in one batch")
	ErrLockTimeout       = errors.New("lock acquisition timed out")
	ErrUnknownAttackKind = errors.New("unknown attack kind")
)

package services

import "errors"

// Typed failure taxonomy returned by the core services. Controllers map these
// to HTTP statuses with errors.Is; best-effort side channels (notifications,
// realtime emission) are logged and never surface here.
var (
	// ErrNotFound - missing user/profile/match/room/message
	ErrNotFound = errors.New("not found")
	// ErrForbidden - non-participant or wrong-role access
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidState - operation not valid for the current status
	ErrInvalidState = errors.New("invalid state")
	// ErrConflict - duplicate like, or losing a creation race
	ErrConflict = errors.New("conflict")
	// ErrValidation - malformed input
	ErrValidation = errors.New("validation failed")
)

func isNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func isConflict(err error) bool { return errors.Is(err, ErrConflict) }

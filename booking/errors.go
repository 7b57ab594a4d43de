package booking

import "errors"

// Expected, caller-recoverable booking failures. Handlers map each of these to
// a distinct HTTP response; anything else is an internal error.
var (
	ErrSlotTaken        = errors.New("this time slot is no longer available")
	ErrForbidden        = errors.New("reservation belongs to another customer")
	ErrAlreadyCancelled = errors.New("reservation is already cancelled")
	ErrCompleted        = errors.New("cannot cancel a completed reservation")
	ErrTooLate          = errors.New("cannot cancel less than 2 hours before the appointment")
)

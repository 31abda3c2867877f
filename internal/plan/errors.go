package plan

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds returned by schedule operations. Callers match them with errors.Is.
var (
	ErrInvalidDateFormat = errors.New("invalid date format")
	ErrAlreadyExists     = errors.New("day plan already exists")
	ErrUnknownDate       = errors.New("day plan not initialized")
	ErrUnknownSlot       = errors.New("unknown time slot")
)

// UnknownSlotError carries the slots that would have been accepted.
// It matches ErrUnknownSlot.
type UnknownSlotError struct {
	Date  string
	Slot  string
	Valid []string
}

func (e *UnknownSlotError) Error() string {
	return fmt.Sprintf("%s %q on %s (valid: %s)", ErrUnknownSlot, e.Slot, e.Date, strings.Join(e.Valid, ", "))
}

func (e *UnknownSlotError) Unwrap() error {
	return ErrUnknownSlot
}

package plan

import (
	"fmt"
	"time"

	"plancal/internal/model"
)

// ParseDate validates a YYYY-MM-DD date string.
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, date)
	}
	return t, nil
}

// InitDay inserts a fresh DayPlan for date. It fails with ErrAlreadyExists if
// the date is already present; the schedule is left untouched in that case.
func InitDay(s *model.Schedule, date string) error {
	if s.Has(date) {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, date)
	}
	s.Put(date, model.NewDayPlan())
	return nil
}

// SetSlot overwrites a slot's task with text, verbatim.
func SetSlot(s *model.Schedule, date, slot, text string) error {
	day, err := lookupSlot(s, date, slot)
	if err != nil {
		return err
	}
	day.Set(slot, text)
	return nil
}

// CompleteSlot prepends model.DoneMarker to the slot's current task.
//
// The marker is not deduplicated: completing a slot twice yields two markers.
func CompleteSlot(s *model.Schedule, date, slot string) error {
	day, err := lookupSlot(s, date, slot)
	if err != nil {
		return err
	}
	current, _ := day.Get(slot)
	day.Set(slot, model.DoneMarker+current)
	return nil
}

// lookupSlot checks the slot against the day's own keys, which for any day
// created by InitDay is exactly model.Slots.
func lookupSlot(s *model.Schedule, date, slot string) (*model.DayPlan, error) {
	day, ok := s.Day(date)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDate, date)
	}
	if !day.Has(slot) {
		return nil, &UnknownSlotError{Date: date, Slot: slot, Valid: day.Labels()}
	}
	return day, nil
}

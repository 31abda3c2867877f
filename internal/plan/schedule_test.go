package plan

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plancal/internal/model"
)

func TestParseDate(t *testing.T) {
	_, err := ParseDate("2024-06-15")
	require.NoError(t, err)

	for _, bad := range []string{"2024/06/15", "2024-6-15", "2024-02-30", "tomorrow", ""} {
		_, err := ParseDate(bad)
		assert.ErrorIs(t, err, ErrInvalidDateFormat, bad)
	}
}

func TestInitDay_Twice(t *testing.T) {
	s := model.NewSchedule()
	require.NoError(t, InitDay(s, "2024-06-01"))
	require.NoError(t, SetSlot(s, "2024-06-01", "8-10時", "run"))

	before, err := s.MarshalJSON()
	require.NoError(t, err)

	err = InitDay(s, "2024-06-01")
	assert.ErrorIs(t, err, ErrAlreadyExists)

	after, err := s.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestSetSlot(t *testing.T) {
	s := model.NewSchedule()
	require.NoError(t, InitDay(s, "2024-06-01"))

	require.NoError(t, SetSlot(s, "2024-06-01", "10-12時", "  write report  "))
	day, _ := s.Day("2024-06-01")
	task, _ := day.Get("10-12時")
	assert.Equal(t, "  write report  ", task)

	err := SetSlot(s, "2024-06-02", "10-12時", "x")
	assert.ErrorIs(t, err, ErrUnknownDate)
}

func TestSetSlot_UnknownSlotLeavesDayUnchanged(t *testing.T) {
	s := model.NewSchedule()
	require.NoError(t, InitDay(s, "2024-06-01"))
	before := s.Clone()

	err := SetSlot(s, "2024-06-01", "9-11時", "x")
	require.ErrorIs(t, err, ErrUnknownSlot)

	var slotErr *UnknownSlotError
	require.True(t, errors.As(err, &slotErr))
	assert.Equal(t, "9-11時", slotErr.Slot)
	assert.Equal(t, model.SlotLabels(), slotErr.Valid)

	day, _ := s.Day("2024-06-01")
	want, _ := before.Day("2024-06-01")
	assert.Equal(t, want.Entries(), day.Entries())
}

func TestCompleteSlot_DoublesMarker(t *testing.T) {
	s := model.NewSchedule()
	require.NoError(t, InitDay(s, "2024-06-01"))
	require.NoError(t, SetSlot(s, "2024-06-01", "8-10時", "V"))

	require.NoError(t, CompleteSlot(s, "2024-06-01", "8-10時"))
	day, _ := s.Day("2024-06-01")
	task, _ := day.Get("8-10時")
	assert.Equal(t, model.DoneMarker+"V", task)

	require.NoError(t, CompleteSlot(s, "2024-06-01", "8-10時"))
	task, _ = day.Get("8-10時")
	assert.Equal(t, model.DoneMarker+model.DoneMarker+"V", task)
}

func TestCompleteSlot_Errors(t *testing.T) {
	s := model.NewSchedule()
	assert.ErrorIs(t, CompleteSlot(s, "2024-06-01", "8-10時"), ErrUnknownDate)

	require.NoError(t, InitDay(s, "2024-06-01"))
	assert.ErrorIs(t, CompleteSlot(s, "2024-06-01", "8-10"), ErrUnknownSlot)
}

package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlots_FixedAscendingSet(t *testing.T) {
	want := []string{"8-10時", "10-12時", "12-14時", "14-16時", "16-18時", "18-20時", "20-22時", "22-24時"}
	assert.Equal(t, want, SlotLabels())

	slot, ok := LookupSlot("22-24時")
	require.True(t, ok)
	assert.Equal(t, 22, slot.StartHour)
	assert.Equal(t, 24, slot.EndHour)

	_, ok = LookupSlot("7-9時")
	assert.False(t, ok)
}

func TestNewDayPlan_AllSlotsEmpty(t *testing.T) {
	plan := NewDayPlan()
	require.Equal(t, 8, plan.Len())
	assert.Equal(t, SlotLabels(), plan.Labels())
	for _, e := range plan.Entries() {
		assert.Equal(t, NoTask, e.Task, e.Slot)
	}
}

func TestDayPlan_SetKeepsPosition(t *testing.T) {
	plan := NewDayPlan()
	plan.Set("12-14時", "lunch")

	assert.Equal(t, SlotLabels(), plan.Labels())
	task, ok := plan.Get("12-14時")
	require.True(t, ok)
	assert.Equal(t, "lunch", task)
}

func TestSchedule_CloneIsDeep(t *testing.T) {
	s := NewSchedule()
	s.Put("2024-06-01", NewDayPlan())

	c := s.Clone()
	day, _ := c.Day("2024-06-01")
	day.Set("8-10時", "changed")

	orig, _ := s.Day("2024-06-01")
	task, _ := orig.Get("8-10時")
	assert.Equal(t, NoTask, task)
}

func TestSchedule_JSONPreservesOrder(t *testing.T) {
	raw := `{"2024-06-02":{"10-12時":"b","8-10時":"a"},"2024-06-01":{"8-10時":"<x> & y"}}`

	var s Schedule
	require.NoError(t, json.Unmarshal([]byte(raw), &s))
	assert.Equal(t, []string{"2024-06-02", "2024-06-01"}, s.Dates())

	day, ok := s.Day("2024-06-02")
	require.True(t, ok)
	assert.Equal(t, []string{"10-12時", "8-10時"}, day.Labels())

	out, err := s.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, raw, string(out))
}

func TestSchedule_DuplicateKeyKeepsFirstPosition(t *testing.T) {
	raw := `{"a":{"8-10時":"1"},"b":{"8-10時":"2"},"a":{"8-10時":"3"}}`

	var s Schedule
	require.NoError(t, json.Unmarshal([]byte(raw), &s))
	assert.Equal(t, []string{"a", "b"}, s.Dates())

	day, _ := s.Day("a")
	task, _ := day.Get("8-10時")
	assert.Equal(t, "3", task)
}

func TestSchedule_RejectsNonObjects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "array", raw: `[]`},
		{name: "null day", raw: `{"2024-06-01":null}`},
		{name: "numeric task", raw: `{"2024-06-01":{"8-10時":1}}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var s Schedule
			assert.Error(t, json.Unmarshal([]byte(tc.raw), &s))
		})
	}
}

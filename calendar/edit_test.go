package calendar

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleManualSlot(t *testing.T) {
	c, err := ToggleManualSlot(nil, "2025-03-10", Morning)
	require.NoError(t, err)
	assert.Equal(t, Calendar{"2025-03-10": Day{Morning: {Reason: ReasonManual}}}, c)

	c, err = ToggleManualSlot(c, "2025-03-10", Morning)
	require.NoError(t, err)
	assert.Nil(t, c, "an empty calendar collapses to nil")
}

func TestToggleManualSlotRefusesJobSlot(t *testing.T) {
	booked, err := BookJobSlot(nil, "2025-03-10", Afternoon, "job-1")
	require.NoError(t, err)
	before := booked.Clone()

	after, err := ToggleManualSlot(booked, "2025-03-10", Afternoon)
	assert.ErrorIs(t, err, ErrJobSlot)
	assert.Empty(t, cmp.Diff(before, after))
	assert.Empty(t, cmp.Diff(before, booked), "input must not be mutated")
}

func TestToggleManualSlotValidatesInput(t *testing.T) {
	_, err := ToggleManualSlot(nil, "2025-03-10", Slot("night"))
	assert.ErrorIs(t, err, ErrUnknownSlot)

	_, err = ToggleManualSlot(nil, "10/03/2025", Morning)
	assert.ErrorIs(t, err, ErrInvalidDateKey)
}

func TestToggleDoesNotMutateInput(t *testing.T) {
	orig := Calendar{"2025-03-10": Day{Morning: {Reason: ReasonManual}}}
	_, err := ToggleManualSlot(orig, "2025-03-10", Evening)
	require.NoError(t, err)
	assert.Len(t, orig["2025-03-10"], 1)
}

func TestBlockRangePreservesJobSlots(t *testing.T) {
	c, err := BookJobSlot(nil, "2025-03-12", Evening, "job-9")
	require.NoError(t, err)

	c, err = BlockRange(c, "2025-03-10", SpanWeek)
	require.NoError(t, err)

	assert.Len(t, c, 7)
	assert.Contains(t, c, "2025-03-16")
	assert.NotContains(t, c, "2025-03-17")
	for key, day := range c {
		assert.Len(t, day, 3, key)
	}
	assert.Equal(t, Entry{Reason: ReasonJob, JobID: "job-9"}, c["2025-03-12"][Evening])
	assert.Equal(t, Entry{Reason: ReasonManual}, c["2025-03-12"][Morning])
}

func TestBlockRangeMonthCrossesYear(t *testing.T) {
	span, err := MonthSpan("2025-12-20")
	require.NoError(t, err)

	c, err := BlockRange(nil, "2025-12-20", span)
	require.NoError(t, err)
	assert.Len(t, c, 31)
	assert.Contains(t, c, "2026-01-19")
}

func TestClearRange(t *testing.T) {
	c, err := BlockRange(nil, "2025-03-10", 3)
	require.NoError(t, err)
	c, err = BookJobSlot(c, "2025-03-11", Morning, "job-3")
	require.NoError(t, err)

	cleared, preserved, err := ClearRange(c, "2025-03-10", 3)
	require.NoError(t, err)
	assert.True(t, preserved)
	assert.Equal(t, Calendar{"2025-03-11": Day{Morning: {Reason: ReasonJob, JobID: "job-3"}}}, cleared)

	cleared, preserved, err = ClearRange(cleared, "2025-03-12", SpanDay)
	require.NoError(t, err)
	assert.False(t, preserved)
	assert.Len(t, cleared, 1)
}

func TestClearRangeEmptiesCalendar(t *testing.T) {
	c, err := BlockRange(nil, "2025-03-10", SpanDay)
	require.NoError(t, err)

	cleared, preserved, err := ClearRange(c, "2025-03-10", SpanWeek)
	require.NoError(t, err)
	assert.False(t, preserved)
	assert.Nil(t, cleared)
}

func TestBookJobSlotOverwrites(t *testing.T) {
	c, err := BookJobSlot(nil, "2025-03-10", Morning, "job-a")
	require.NoError(t, err)
	c, err = BookJobSlot(c, "2025-03-10", Morning, "job-b")
	require.NoError(t, err)

	entry, ok := c.Lookup("2025-03-10", Morning)
	require.True(t, ok)
	assert.Equal(t, "job-b", entry.JobID)
}

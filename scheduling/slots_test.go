package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slot(id string, day int, start, end string, active bool) AvailabilitySlot {
	return AvailabilitySlot{ID: id, DayOfWeek: day, StartTime: start, EndTime: end, IsActive: active}
}

func TestNewSlot_Defaults(t *testing.T) {
	t.Parallel()

	s := NewSlot(3)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, 3, s.DayOfWeek)
	assert.Equal(t, "09:00", s.StartTime)
	assert.Equal(t, "17:00", s.EndTime)
	assert.True(t, s.IsActive)

	assert.NotEqual(t, s.ID, NewSlot(3).ID, "ids must be unique")
}

func TestAddSlot_DoesNotTouchInput(t *testing.T) {
	t.Parallel()

	orig := []AvailabilitySlot{slot("a", 1, "08:00", "10:00", true)}
	out := AddSlot(orig, 2)

	require.Len(t, out, 2)
	assert.Len(t, orig, 1)
	assert.Equal(t, 2, out[1].DayOfWeek)
}

func TestRemoveSlot_ThenAddNeverResurrects(t *testing.T) {
	t.Parallel()

	slots := []AvailabilitySlot{
		slot("a", 1, "07:30", "11:00", false),
		slot("b", 1, "13:00", "15:00", true),
	}

	slots, removed := RemoveSlot(slots, "a")
	require.True(t, removed)
	require.Len(t, slots, 1)

	slots = AddSlot(slots, 1)
	require.Len(t, slots, 2)
	added := slots[1]
	assert.Equal(t, "09:00", added.StartTime, "new slot always gets the default window")
	assert.Equal(t, "17:00", added.EndTime)
	assert.True(t, added.IsActive)
	assert.NotEqual(t, "a", added.ID)
}

func TestRemoveSlot_UnknownID(t *testing.T) {
	t.Parallel()

	slots := []AvailabilitySlot{slot("a", 0, "09:00", "17:00", true)}
	out, removed := RemoveSlot(slots, "nope")
	assert.False(t, removed)
	assert.Equal(t, slots, out)
}

func TestUpdateSlot_PatchesOnlyTargetField(t *testing.T) {
	t.Parallel()

	slots := []AvailabilitySlot{
		slot("a", 1, "09:00", "12:00", true),
		slot("b", 1, "14:00", "18:00", false),
	}

	start := "10:30"
	out, ok := UpdateSlot(slots, "a", SlotPatch{StartTime: &start})
	require.True(t, ok)

	assert.Equal(t, "10:30", out[0].StartTime)
	assert.Equal(t, "12:00", out[0].EndTime)
	assert.True(t, out[0].IsActive)
	assert.Equal(t, slots[1], out[1], "other slots untouched")
	assert.Equal(t, "09:00", slots[0].StartTime, "input not aliased")
}

func TestUpdateSlot_UnknownID(t *testing.T) {
	t.Parallel()

	active := false
	_, ok := UpdateSlot([]AvailabilitySlot{slot("a", 1, "09:00", "12:00", true)}, "zzz", SlotPatch{IsActive: &active})
	assert.False(t, ok)
}

func TestToggleDay_MixedThenAllThenNone(t *testing.T) {
	t.Parallel()

	const mon = 1
	slots := []AvailabilitySlot{
		slot("a", mon, "09:00", "12:00", true),
		slot("b", mon, "14:00", "18:00", false),
	}

	// Mixed: not all active, so everything turns on.
	slots = ToggleDay(slots, mon)
	assert.True(t, slots[0].IsActive)
	assert.True(t, slots[1].IsActive)

	// All active: everything turns off.
	slots = ToggleDay(slots, mon)
	assert.False(t, slots[0].IsActive)
	assert.False(t, slots[1].IsActive)
}

func TestToggleDay_EmptyDayAddsDefaultSlot(t *testing.T) {
	t.Parallel()

	slots := []AvailabilitySlot{slot("a", 1, "09:00", "12:00", true)}
	out := ToggleDay(slots, 4)

	require.Len(t, out, 2)
	added := out[1]
	assert.Equal(t, 4, added.DayOfWeek)
	assert.Equal(t, "09:00", added.StartTime)
	assert.Equal(t, "17:00", added.EndTime)
	assert.True(t, added.IsActive)
}

func TestToggleDay_DoesNotAffectOtherDays(t *testing.T) {
	t.Parallel()

	slots := []AvailabilitySlot{
		slot("a", 1, "09:00", "12:00", true),
		slot("b", 2, "09:00", "12:00", true),
	}
	out := ToggleDay(slots, 1)
	assert.False(t, out[0].IsActive)
	assert.True(t, out[1].IsActive)
}

func TestGroupByDay(t *testing.T) {
	t.Parallel()

	slots := []AvailabilitySlot{
		slot("a", 1, "09:00", "12:00", true),
		slot("b", 3, "09:00", "12:00", true),
		slot("c", 1, "14:00", "18:00", false),
	}
	grouped := GroupByDay(slots)

	require.Len(t, grouped[1], 2)
	assert.Equal(t, "a", grouped[1][0].ID)
	assert.Equal(t, "c", grouped[1][1].ID)
	require.Len(t, grouped[3], 1)
	assert.Empty(t, grouped[0])
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		slots     []AvailabilitySlot
		wantCount int
		wantField string
	}{
		{"empty ok", nil, 0, ""},
		{"valid split shift", []AvailabilitySlot{
			slot("a", 1, "09:00", "12:00", true),
			slot("b", 1, "14:00", "18:00", true),
		}, 0, ""},
		{"day out of range", []AvailabilitySlot{slot("a", 7, "09:00", "17:00", true)}, 1, "dayOfWeek"},
		{"bad clock", []AvailabilitySlot{slot("a", 1, "9am", "17:00", true)}, 1, "startTime"},
		{"start equals end", []AvailabilitySlot{slot("a", 1, "09:00", "09:00", true)}, 1, "endTime"},
		{"start after end", []AvailabilitySlot{slot("a", 1, "18:00", "09:00", true)}, 1, "endTime"},
		{"active overlap same day", []AvailabilitySlot{
			slot("a", 1, "09:00", "12:00", true),
			slot("b", 1, "11:00", "14:00", true),
		}, 1, "startTime"},
		{"inactive overlap allowed", []AvailabilitySlot{
			slot("a", 1, "09:00", "12:00", true),
			slot("b", 1, "11:00", "14:00", false),
		}, 0, ""},
		{"overlap across days allowed", []AvailabilitySlot{
			slot("a", 1, "09:00", "12:00", true),
			slot("b", 2, "09:00", "12:00", true),
		}, 0, ""},
		{"touching windows allowed", []AvailabilitySlot{
			slot("a", 1, "09:00", "12:00", true),
			slot("b", 1, "12:00", "15:00", true),
		}, 0, ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			errs := Validate(tt.slots)
			require.Len(t, errs, tt.wantCount)
			if tt.wantCount > 0 {
				assert.Equal(t, tt.wantField, errs[0].Field)
				assert.NotEmpty(t, errs[0].Error())
			}
		})
	}
}

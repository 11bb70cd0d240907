package scheduling

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// AvailabilitySlot is one bookable weekly time window on an agenda.
// DayOfWeek is Sunday-first (0=Sun .. 6=Sat); times are "HH:MM".
type AvailabilitySlot struct {
	ID        string `json:"id" bson:"id"`
	DayOfWeek int    `json:"dayOfWeek" bson:"dayOfWeek"`
	StartTime string `json:"startTime" bson:"startTime"`
	EndTime   string `json:"endTime" bson:"endTime"`
	IsActive  bool   `json:"isActive" bson:"isActive"`
}

const (
	DefaultStartTime = "09:00"
	DefaultEndTime   = "17:00"
)

// NewSlot creates a slot for a day with the default window. Every slot gets
// a stable id at creation; all mutations address slots by id, never by
// position in the collection.
func NewSlot(day int) AvailabilitySlot {
	return AvailabilitySlot{
		ID:        uuid.NewString(),
		DayOfWeek: day,
		StartTime: DefaultStartTime,
		EndTime:   DefaultEndTime,
		IsActive:  true,
	}
}

// AddSlot appends a fresh default slot for day. The input slice is not
// modified; callers swap in the returned collection.
func AddSlot(slots []AvailabilitySlot, day int) []AvailabilitySlot {
	out := make([]AvailabilitySlot, len(slots), len(slots)+1)
	copy(out, slots)
	return append(out, NewSlot(day))
}

// RemoveSlot drops the slot with the given id. The second return reports
// whether anything was removed.
func RemoveSlot(slots []AvailabilitySlot, id string) ([]AvailabilitySlot, bool) {
	out := make([]AvailabilitySlot, 0, len(slots))
	removed := false
	for _, s := range slots {
		if s.ID == id {
			removed = true
			continue
		}
		out = append(out, s)
	}
	return out, removed
}

// SlotPatch carries the fields UpdateSlot may change. Nil fields are left
// untouched.
type SlotPatch struct {
	StartTime *string `json:"startTime,omitempty"`
	EndTime   *string `json:"endTime,omitempty"`
	IsActive  *bool   `json:"isActive,omitempty"`
}

// UpdateSlot patches exactly one slot, leaving every other slot and field
// unchanged. Returns false if no slot has that id.
func UpdateSlot(slots []AvailabilitySlot, id string, patch SlotPatch) ([]AvailabilitySlot, bool) {
	out := make([]AvailabilitySlot, len(slots))
	copy(out, slots)
	for i := range out {
		if out[i].ID != id {
			continue
		}
		if patch.StartTime != nil {
			out[i].StartTime = *patch.StartTime
		}
		if patch.EndTime != nil {
			out[i].EndTime = *patch.EndTime
		}
		if patch.IsActive != nil {
			out[i].IsActive = *patch.IsActive
		}
		return out, true
	}
	return out, false
}

// ToggleDay flips a whole day at once. If every slot on the day is active,
// all are deactivated; otherwise all are activated. A day with no slots
// gets one default slot.
func ToggleDay(slots []AvailabilitySlot, day int) []AvailabilitySlot {
	count := 0
	allActive := true
	for _, s := range slots {
		if s.DayOfWeek != day {
			continue
		}
		count++
		if !s.IsActive {
			allActive = false
		}
	}
	if count == 0 {
		return AddSlot(slots, day)
	}

	out := make([]AvailabilitySlot, len(slots))
	copy(out, slots)
	for i := range out {
		if out[i].DayOfWeek == day {
			out[i].IsActive = !allActive
		}
	}
	return out
}

// GroupByDay returns the slots bucketed by day of week, preserving the
// collection order within each day.
func GroupByDay(slots []AvailabilitySlot) map[int][]AvailabilitySlot {
	grouped := make(map[int][]AvailabilitySlot)
	for _, s := range slots {
		grouped[s.DayOfWeek] = append(grouped[s.DayOfWeek], s)
	}
	return grouped
}

// ParseClock turns "HH:MM" into minutes since midnight.
func ParseClock(v string) (int, error) {
	parts := strings.Split(v, ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("invalid time %q, want HH:MM", v)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", v)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", v)
	}
	return h*60 + m, nil
}

// ValidationError points at one bad slot field.
type ValidationError struct {
	SlotID  string `json:"slotId"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("slot %s: %s: %s", e.SlotID, e.Field, e.Message)
}

// Validate checks a whole collection before it is persisted: day range,
// clock format, start strictly before end, and no overlap between active
// windows on the same day. Inactive slots may overlap freely.
func Validate(slots []AvailabilitySlot) []ValidationError {
	var errs []ValidationError

	type window struct {
		id         string
		start, end int
	}
	active := make(map[int][]window)

	for _, s := range slots {
		if s.DayOfWeek < 0 || s.DayOfWeek > 6 {
			errs = append(errs, ValidationError{s.ID, "dayOfWeek", "must be 0-6 (Sunday-first)"})
			continue
		}
		start, err := ParseClock(s.StartTime)
		if err != nil {
			errs = append(errs, ValidationError{s.ID, "startTime", err.Error()})
			continue
		}
		end, err := ParseClock(s.EndTime)
		if err != nil {
			errs = append(errs, ValidationError{s.ID, "endTime", err.Error()})
			continue
		}
		if start >= end {
			errs = append(errs, ValidationError{s.ID, "endTime", "must be after startTime"})
			continue
		}
		if s.IsActive {
			active[s.DayOfWeek] = append(active[s.DayOfWeek], window{s.ID, start, end})
		}
	}

	for _, windows := range active {
		for i := 0; i < len(windows); i++ {
			for j := i + 1; j < len(windows); j++ {
				a, b := windows[i], windows[j]
				if a.start < b.end && b.start < a.end {
					errs = append(errs, ValidationError{b.id, "startTime", "overlaps another active window on the same day"})
				}
			}
		}
	}

	return errs
}

package calendar

import "time"

// SearchHorizonDays bounds NextAvailable.
const SearchHorizonDays = 365

// SlotAt returns the slot covering t's local hour. Before 08:00 and from
// 20:00 there is no slot.
func SlotAt(t time.Time) (Slot, bool) {
	switch h := t.Hour(); {
	case h >= 8 && h < 12:
		return Morning, true
	case h >= 12 && h < 17:
		return Afternoon, true
	case h >= 17 && h < 20:
		return Evening, true
	}
	return "", false
}

// IsUnavailableNow reports whether the slot covering now is blocked.
// Outside the three windows it is always false.
func IsUnavailableNow(c Calendar, now time.Time) bool {
	return CurrentUnavailabilityReason(c, now) != nil
}

// CurrentUnavailabilityReason returns the entry blocking the slot covering
// now, or nil.
func CurrentUnavailabilityReason(c Calendar, now time.Time) *Entry {
	slot, ok := SlotAt(now)
	if !ok {
		return nil
	}
	entry, ok := c.Lookup(DateKey(now), slot)
	if !ok {
		return nil
	}
	return &entry
}

// ReferenceSlot is the slot the hiring feed checks: the current slot, or
// morning outside working hours.
func ReferenceSlot(now time.Time) Slot {
	if slot, ok := SlotAt(now); ok {
		return slot
	}
	return Morning
}

// IsUnavailableForHire applies the hiring feed rule for now.
func IsUnavailableForHire(c Calendar, now time.Time) bool {
	_, blocked := c.Lookup(DateKey(now), ReferenceSlot(now))
	return blocked
}

// Opening is the next bookable slot.
type Opening struct {
	Date    time.Time `json:"date"`
	Slot    Slot      `json:"timeSlot"`
	DateKey string    `json:"dateKey"`
}

// NextAvailable scans forward from now for the first open slot, skipping
// today's slots that have already started. It returns nil when nothing is
// open within SearchHorizonDays.
func NextAvailable(c Calendar, now time.Time) *Opening {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	for i := 0; i < SearchHorizonDays; i++ {
		day := midnight.AddDate(0, 0, i)
		key := DateKey(day)
		for _, slot := range Slots {
			if i == 0 && !slotStillAhead(slot, now) {
				continue
			}
			if _, blocked := c.Lookup(key, slot); blocked {
				continue
			}
			return &Opening{
				Date:    time.Date(day.Year(), day.Month(), day.Day(), slot.StartHour(), 0, 0, 0, day.Location()),
				Slot:    slot,
				DateKey: key,
			}
		}
	}
	return nil
}

// slotStillAhead reports whether slot on now's date has not started yet.
func slotStillAhead(slot Slot, now time.Time) bool {
	if current, ok := SlotAt(now); ok {
		return slot.index() > current.index()
	}
	return now.Hour() < Morning.StartHour()
}

// DaysInMonth returns the number of days in t's month.
func DaysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

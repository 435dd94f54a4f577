package calendar

import "time"

// Span lengths for range operations.
const (
	SpanDay  = 1
	SpanWeek = 7
)

// MonthSpan returns the number of days in the month containing dateKey.
func MonthSpan(dateKey string) (int, error) {
	start, err := ParseDateKey(dateKey, time.UTC)
	if err != nil {
		return 0, err
	}
	return DaysInMonth(start), nil
}

// ToggleManualSlot flips slot on dateKey between manually blocked and open.
// Job-booked slots are refused with ErrJobSlot and c is returned unchanged.
func ToggleManualSlot(c Calendar, dateKey string, slot Slot) (Calendar, error) {
	if !slot.Valid() {
		return c, ErrUnknownSlot
	}
	if _, err := ParseDateKey(dateKey, time.UTC); err != nil {
		return c, err
	}

	entry, blocked := c.Lookup(dateKey, slot)
	if blocked && entry.Reason == ReasonJob {
		return c, ErrJobSlot
	}

	out := c.Clone()
	if blocked {
		delete(out[dateKey], slot)
		return out.compact(), nil
	}
	if out == nil {
		out = Calendar{}
	}
	if out[dateKey] == nil {
		out[dateKey] = Day{}
	}
	out[dateKey][slot] = Entry{Reason: ReasonManual}
	return out, nil
}

// BlockRange blocks every slot for span days from startKey. Job-booked slots
// are left as they are.
func BlockRange(c Calendar, startKey string, span int) (Calendar, error) {
	keys, err := rangeKeys(startKey, span)
	if err != nil {
		return c, err
	}

	out := c.Clone()
	if out == nil {
		out = Calendar{}
	}
	for _, key := range keys {
		day := out[key]
		if day == nil {
			day = Day{}
			out[key] = day
		}
		for _, slot := range Slots {
			if entry, ok := day[slot]; ok && entry.Reason == ReasonJob {
				continue
			}
			day[slot] = Entry{Reason: ReasonManual}
		}
	}
	return out, nil
}

// ClearRange removes manual blocks for span days from startKey. The bool
// reports whether any job-booked slot in the range was kept.
func ClearRange(c Calendar, startKey string, span int) (Calendar, bool, error) {
	keys, err := rangeKeys(startKey, span)
	if err != nil {
		return c, false, err
	}

	out := c.Clone()
	preserved := false
	for _, key := range keys {
		day, ok := out[key]
		if !ok {
			continue
		}
		for slot, entry := range day {
			if entry.Reason == ReasonJob {
				preserved = true
				continue
			}
			delete(day, slot)
		}
	}
	return out.compact(), preserved, nil
}

// BookJobSlot marks slot on dateKey as taken by jobID, replacing whatever
// was there.
func BookJobSlot(c Calendar, dateKey string, slot Slot, jobID string) (Calendar, error) {
	if !slot.Valid() {
		return c, ErrUnknownSlot
	}
	if _, err := ParseDateKey(dateKey, time.UTC); err != nil {
		return c, err
	}

	out := c.Clone()
	if out == nil {
		out = Calendar{}
	}
	if out[dateKey] == nil {
		out[dateKey] = Day{}
	}
	out[dateKey][slot] = Entry{Reason: ReasonJob, JobID: jobID}
	return out, nil
}

func rangeKeys(startKey string, span int) ([]string, error) {
	start, err := ParseDateKey(startKey, time.UTC)
	if err != nil {
		return nil, err
	}
	if span < 1 {
		span = 1
	}
	keys := make([]string, 0, span)
	for i := 0; i < span; i++ {
		keys = append(keys, DateKey(start.AddDate(0, 0, i)))
	}
	return keys, nil
}

// Package calendar models a tradesperson's availability: per date, which of
// the three daily slots are blocked and why.
package calendar

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type Slot string

const (
	Morning   Slot = "morning"
	Afternoon Slot = "afternoon"
	Evening   Slot = "evening"
)

// Slots in booking order.
var Slots = []Slot{Morning, Afternoon, Evening}

func (s Slot) Valid() bool {
	return s == Morning || s == Afternoon || s == Evening
}

// StartHour is the local hour the slot opens.
func (s Slot) StartHour() int {
	switch s {
	case Morning:
		return 8
	case Afternoon:
		return 12
	case Evening:
		return 17
	}
	return 0
}

func (s Slot) index() int {
	for i, slot := range Slots {
		if slot == s {
			return i
		}
	}
	return -1
}

type Reason string

const (
	ReasonManual Reason = "manual"
	ReasonJob    Reason = "job"
)

// Entry marks a slot as unavailable.
type Entry struct {
	Reason Reason `json:"reason"`
	JobID  string `json:"jobId,omitempty"`
}

// Day holds the blocked slots of a single date. Open slots are absent.
type Day map[Slot]Entry

// Calendar maps a date key (YYYY-MM-DD) to its blocked slots. A nil
// calendar means fully available.
type Calendar map[string]Day

const dateKeyLayout = "2006-01-02"

var (
	ErrJobSlot        = errors.New("cannot remove job-booked time slots")
	ErrUnknownSlot    = errors.New("unknown time slot")
	ErrInvalidDateKey = errors.New("invalid date key")
)

// DateKey formats t's calendar date in t's own location.
func DateKey(t time.Time) string {
	return t.Format(dateKeyLayout)
}

// ParseDateKey returns midnight of key in loc.
func ParseDateKey(key string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dateKeyLayout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateKey, key)
	}
	return t, nil
}

// UnmarshalJSON accepts both the map form and the legacy form, where a day
// is a list of slot names that are all blocked for a manual reason.
func (d *Day) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*d = nil
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var legacy []Slot
		if err := json.Unmarshal(trimmed, &legacy); err != nil {
			return err
		}
		day := Day{}
		for _, slot := range legacy {
			if slot.Valid() {
				day[slot] = Entry{Reason: ReasonManual}
			}
		}
		*d = day
		return nil
	}

	var raw map[Slot]Entry
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}
	day := Day{}
	for slot, entry := range raw {
		if !slot.Valid() {
			continue
		}
		if entry.Reason == "" {
			entry.Reason = ReasonManual
		}
		day[slot] = entry
	}
	*d = day
	return nil
}

// UnmarshalJSON drops days that end up with no blocked slot.
func (c *Calendar) UnmarshalJSON(data []byte) error {
	var raw map[string]Day
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Calendar(raw).compact()
	return nil
}

// Value stores the canonical map form; an empty calendar is stored as NULL.
func (c Calendar) Value() (driver.Value, error) {
	out := make(map[string]Day, len(c))
	for key, day := range c {
		if len(day) > 0 {
			out[key] = day
		}
	}
	if len(out) == 0 {
		return nil, nil
	}
	return json.Marshal(out)
}

func (c *Calendar) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*c = nil
		return nil
	case []byte:
		return c.UnmarshalJSON(v)
	case string:
		return c.UnmarshalJSON([]byte(v))
	}
	return fmt.Errorf("calendar: unsupported scan type %T", src)
}

func (Calendar) GormDataType() string {
	return "jsonb"
}

// Lookup returns the entry blocking slot on dateKey, if any.
func (c Calendar) Lookup(dateKey string, slot Slot) (Entry, bool) {
	day, ok := c[dateKey]
	if !ok {
		return Entry{}, false
	}
	entry, ok := day[slot]
	return entry, ok
}

// Clone returns a deep copy.
func (c Calendar) Clone() Calendar {
	if c == nil {
		return nil
	}
	out := make(Calendar, len(c))
	for key, day := range c {
		d := make(Day, len(day))
		for slot, entry := range day {
			d[slot] = entry
		}
		out[key] = d
	}
	return out
}

// compact removes empty days and returns nil for an empty calendar.
func (c Calendar) compact() Calendar {
	for key, day := range c {
		if len(day) == 0 {
			delete(c, key)
		}
	}
	if len(c) == 0 {
		return nil
	}
	return c
}

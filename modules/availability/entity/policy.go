package entity

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time within a day, in minutes since midnight.
type TimeOfDay int

func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || minute < 0 || minute > 59 || hour > 24 || (hour == 24 && minute != 0) {
		return 0, fmt.Errorf("invalid time of day %02d:%02d", hour, minute)
	}
	return TimeOfDay(hour*60 + minute), nil
}

// ParseTimeOfDay parses "HH:MM". "24:00" denotes the end of the day.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return NewTimeOfDay(h, m)
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// On returns the instant at this wall-clock time on the given date in loc.
func (t TimeOfDay) On(year int, month time.Month, day int, loc *time.Location) time.Time {
	return time.Date(year, month, day, t.Hour(), t.Minute(), 0, 0, loc)
}

type WorkingHoursPolicy struct {
	DayStart               TimeOfDay `json:"day_start"`
	DayEnd                 TimeOfDay `json:"day_end"`
	IncludeWeekends        bool      `json:"include_weekends"`
	SlotGranularityMinutes int       `json:"slot_granularity_minutes"`
	// AllDayBlocks makes all-day busy events block the whole day.
	AllDayBlocks bool `json:"all_day_blocks"`
}

func (p WorkingHoursPolicy) Validate() error {
	if p.SlotGranularityMinutes <= 0 {
		return fmt.Errorf("slot granularity must be positive, got %d", p.SlotGranularityMinutes)
	}
	if p.DayEnd < p.DayStart {
		return fmt.Errorf("day end %s is before day start %s", p.DayEnd, p.DayStart)
	}
	return nil
}

func (p WorkingHoursPolicy) Granularity() time.Duration {
	return time.Duration(p.SlotGranularityMinutes) * time.Minute
}

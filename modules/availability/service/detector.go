package service

import (
	"fmt"
	"strings"
	"time"

	"slotshare/modules/availability/entity"
)

// WeekWindow returns the seven days containing date, beginning at midnight
// of weekStart in loc.
func WeekWindow(date time.Time, loc *time.Location, weekStart time.Weekday) entity.Interval {
	d := date.In(loc)
	offset := (int(d.Weekday()) - int(weekStart) + 7) % 7
	start := time.Date(d.Year(), d.Month(), d.Day()-offset, 0, 0, 0, 0, loc)
	end := time.Date(start.Year(), start.Month(), start.Day()+7, 0, 0, 0, 0, loc)
	return entity.Interval{Start: start, End: end}
}

func ParseWeekday(s string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(s, d.String()) {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", s)
}

// Detector finds free time inside working hours.
type Detector struct {
	Policy entity.WorkingHoursPolicy
}

func NewDetector(policy entity.WorkingHoursPolicy) *Detector {
	return &Detector{Policy: policy}
}

// Detect walks each included day of week in granularity steps and returns
// maximal runs of candidates that overlap nothing in busy. Days are taken in
// the location of week.Start.
func (d *Detector) Detect(week entity.Interval, busy []entity.Interval) []entity.Interval {
	step := d.Policy.Granularity()
	if step <= 0 {
		return nil
	}
	loc := week.Start.Location()

	var free []entity.Interval
	for day := week.Start; day.Before(week.End); day = nextMidnight(day, loc) {
		if !d.Policy.IncludeWeekends && isWeekend(day.Weekday()) {
			continue
		}
		free = append(free, d.detectDay(day, loc, step, busy)...)
	}
	return free
}

func (d *Detector) detectDay(day time.Time, loc *time.Location, step time.Duration, busy []entity.Interval) []entity.Interval {
	dayStart := d.Policy.DayStart.On(day.Year(), day.Month(), day.Day(), loc)
	dayEnd := d.Policy.DayEnd.On(day.Year(), day.Month(), day.Day(), loc)

	var (
		out    []entity.Interval
		run    entity.Interval
		hasRun bool
	)
	flush := func() {
		if hasRun {
			out = append(out, run)
			hasRun = false
		}
	}

	for t := dayStart; !t.Add(step).After(dayEnd); t = t.Add(step) {
		candidate := entity.Interval{Start: t, End: t.Add(step)}
		if overlapsAny(candidate, busy) {
			flush()
			continue
		}
		if hasRun {
			if merged, ok := run.MergeIfAdjacent(candidate); ok {
				run = merged
				continue
			}
			flush()
		}
		run, hasRun = candidate, true
	}
	flush()
	return out
}

func overlapsAny(candidate entity.Interval, busy []entity.Interval) bool {
	for _, b := range busy {
		if candidate.Overlaps(b) {
			return true
		}
	}
	return false
}

func isWeekend(d time.Weekday) bool {
	return d == time.Saturday || d == time.Sunday
}

func nextMidnight(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, loc)
}

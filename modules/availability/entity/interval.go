package entity

import (
	"errors"
	"time"
)

var ErrInvalidInterval = errors.New("interval start must be before end")

// Interval is a half-open span [Start, End) of absolute instants.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func NewInterval(start, end time.Time) (Interval, error) {
	if !start.Before(end) {
		return Interval{}, ErrInvalidInterval
	}
	return Interval{Start: start, End: end}, nil
}

// Overlaps reports whether a and b share any instant. Touching intervals
// do not overlap.
func (a Interval) Overlaps(b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// MergeIfAdjacent joins a and b when b starts exactly where a ends.
// Overlapping or gapped intervals are left alone.
func (a Interval) MergeIfAdjacent(b Interval) (Interval, bool) {
	if !a.End.Equal(b.Start) {
		return Interval{}, false
	}
	return Interval{Start: a.Start, End: b.End}, true
}

func (a Interval) Contains(t time.Time) bool {
	return !t.Before(a.Start) && t.Before(a.End)
}

func (a Interval) Duration() time.Duration {
	return a.End.Sub(a.Start)
}

func (a Interval) In(loc *time.Location) Interval {
	return Interval{Start: a.Start.In(loc), End: a.End.In(loc)}
}

package service

import (
	"slotshare/modules/availability/entity"
)

// BusyView is the set of busy events for the current week and attendees.
// Every refresh replaces it wholesale.
type BusyView struct {
	window    entity.Interval
	attendees []string
	events    []entity.BusyEvent
	failed    []string
}

func NewBusyView() *BusyView {
	return &BusyView{}
}

// Replace installs a fresh fetch result. Transparent events are dropped;
// all-day events are kept and flagged.
func (v *BusyView) Replace(attendees []string, window entity.Interval, result *entity.FetchResult) {
	v.window = window
	v.attendees = append([]string(nil), attendees...)
	v.events = v.events[:0:0]
	v.failed = nil

	if result == nil {
		return
	}
	for _, ev := range result.Events {
		if !ev.Blocks() {
			continue
		}
		v.events = append(v.events, ev)
	}
	v.failed = append([]string(nil), result.Failed...)
}

func (v *BusyView) Clear() {
	v.Replace(nil, entity.Interval{}, nil)
}

func (v *BusyView) Events() []entity.BusyEvent {
	out := make([]entity.BusyEvent, len(v.events))
	copy(out, v.events)
	return out
}

// Intervals returns the spans the detector treats as busy.
func (v *BusyView) Intervals(includeAllDay bool) []entity.Interval {
	out := make([]entity.Interval, 0, len(v.events))
	for _, ev := range v.events {
		if ev.AllDay && !includeAllDay {
			continue
		}
		out = append(out, ev.Interval)
	}
	return out
}

func (v *BusyView) Attendees() []string {
	return append([]string(nil), v.attendees...)
}

// Failed lists attendees whose calendars could not be read on the last refresh.
func (v *BusyView) Failed() []string {
	return append([]string(nil), v.failed...)
}

func (v *BusyView) Window() entity.Interval {
	return v.window
}

package service

import (
	"fmt"

	"slotshare/modules/availability/entity"
)

// goldenAngleMilli is the hue step between attendees, in thousandths of a
// degree (137.508 degrees).
const goldenAngleMilli = 137508

// ColorRegistry hands out a stable color per attendee email. Entries are
// never removed, so an email keeps its color for the whole session even if
// it is deselected and later re-added.
type ColorRegistry struct {
	colors map[string]string
	order  []string
}

func NewColorRegistry() *ColorRegistry {
	return &ColorRegistry{colors: make(map[string]string)}
}

func (r *ColorRegistry) ColorFor(email string) string {
	if c, ok := r.colors[email]; ok {
		return c
	}
	c := hueColor(len(r.order))
	r.colors[email] = c
	r.order = append(r.order, email)
	return c
}

// Known returns emails in the order they were first seen.
func (r *ColorRegistry) Known() []string {
	return append([]string(nil), r.order...)
}

func hueColor(n int) string {
	milli := (n * goldenAngleMilli) % 360000
	return fmt.Sprintf("hsl(%d.%03d, 70%%, 60%%)", milli/1000, milli%1000)
}

// Compose lists availability slots first, then busy events.
func Compose(slots []entity.AvailabilitySlot, busy []entity.BusyEvent, colors *ColorRegistry) []entity.DisplayEvent {
	out := make([]entity.DisplayEvent, 0, len(slots)+len(busy))
	for _, s := range slots {
		out = append(out, entity.AvailabilityDisplay(s))
	}
	for _, ev := range busy {
		out = append(out, entity.BusyDisplay(ev, colors.ColorFor(ev.AttendeeEmail)))
	}
	return out
}

type LegendEntry struct {
	Label string `json:"label"`
	Email string `json:"email,omitempty"`
	Color string `json:"color"`
}

// Legend describes the colors currently on screen: availability first, then
// each included attendee with the signed-in user marked.
func Legend(self string, attendees []string, colors *ColorRegistry) []LegendEntry {
	out := []LegendEntry{{Label: "Your Availability", Color: entity.AvailabilityColor}}
	for _, email := range attendees {
		label := email
		if email == self {
			label = email + " (You)"
		}
		out = append(out, LegendEntry{Label: label, Email: email, Color: colors.ColorFor(email)})
	}
	return out
}

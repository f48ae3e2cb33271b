package entity

import "fmt"

type DisplayKind int

const (
	KindAvailability DisplayKind = iota
	KindBusy
)

func (k DisplayKind) String() string {
	switch k {
	case KindAvailability:
		return "availability"
	case KindBusy:
		return "busy"
	default:
		return fmt.Sprintf("DisplayKind(%d)", int(k))
	}
}

const (
	AvailabilityColor   = "green"
	AvailabilityTooltip = "Your availability"
)

// DisplayEvent is one block on the week timeline. Exactly one of Slot and
// Busy is set, matching Kind.
type DisplayEvent struct {
	Kind  DisplayKind
	Slot  *AvailabilitySlot
	Busy  *BusyEvent
	Color string
}

func AvailabilityDisplay(slot AvailabilitySlot) DisplayEvent {
	return DisplayEvent{Kind: KindAvailability, Slot: &slot, Color: AvailabilityColor}
}

func BusyDisplay(event BusyEvent, color string) DisplayEvent {
	return DisplayEvent{Kind: KindBusy, Busy: &event, Color: color}
}

func (d DisplayEvent) IsEditable() bool {
	switch d.Kind {
	case KindAvailability:
		return true
	case KindBusy:
		return false
	default:
		panic(fmt.Sprintf("unhandled display kind %s", d.Kind))
	}
}

func (d DisplayEvent) RenderColor() string {
	switch d.Kind {
	case KindAvailability:
		return AvailabilityColor
	case KindBusy:
		return d.Color
	default:
		panic(fmt.Sprintf("unhandled display kind %s", d.Kind))
	}
}

func (d DisplayEvent) Tooltip() string {
	switch d.Kind {
	case KindAvailability:
		return AvailabilityTooltip
	case KindBusy:
		return fmt.Sprintf("%s (%s)", d.Busy.Title, d.Busy.AttendeeEmail)
	default:
		panic(fmt.Sprintf("unhandled display kind %s", d.Kind))
	}
}

func (d DisplayEvent) ID() string {
	switch d.Kind {
	case KindAvailability:
		return d.Slot.ID
	case KindBusy:
		return d.Busy.ID
	default:
		panic(fmt.Sprintf("unhandled display kind %s", d.Kind))
	}
}

func (d DisplayEvent) Title() string {
	switch d.Kind {
	case KindAvailability:
		return d.Slot.Title
	case KindBusy:
		return d.Busy.Title
	default:
		panic(fmt.Sprintf("unhandled display kind %s", d.Kind))
	}
}

func (d DisplayEvent) Span() Interval {
	switch d.Kind {
	case KindAvailability:
		return d.Slot.Interval
	case KindBusy:
		return d.Busy.Interval
	default:
		panic(fmt.Sprintf("unhandled display kind %s", d.Kind))
	}
}

func (d DisplayEvent) IsAllDay() bool {
	return d.Kind == KindBusy && d.Busy.AllDay
}

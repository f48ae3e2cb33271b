package entity

const (
	TransparencyOpaque      = "opaque"
	TransparencyTransparent = "transparent"
)

// BusyEvent is a read-only event fetched from an attendee's calendar.
type BusyEvent struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Interval      Interval `json:"interval"`
	AllDay        bool     `json:"all_day"`
	AttendeeEmail string   `json:"attendee_email"`
	Transparency  string   `json:"transparency,omitempty"`
	Visibility    string   `json:"visibility,omitempty"`
	// TimeZone is the zone of the calendar the event was read from.
	TimeZone string `json:"time_zone,omitempty"`
}

// Blocks reports whether the event marks its attendee as busy.
func (e BusyEvent) Blocks() bool {
	return e.Transparency != TransparencyTransparent
}

// FetchResult is what a calendar read returns for a set of attendees.
// Failed lists attendees whose calendars could not be read; their absence
// is not an error for the batch.
type FetchResult struct {
	Events []BusyEvent
	Failed []string
}

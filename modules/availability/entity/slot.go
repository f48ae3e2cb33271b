package entity

const AvailableTitle = "Available"

// AvailabilitySlot is a user-declared free interval. It lives only in memory
// for the duration of a session.
type AvailabilitySlot struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Interval Interval `json:"interval"`
}

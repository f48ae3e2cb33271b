package dto

import "time"

// EventsQuery is the query string of the events proxy. Start and End accept
// RFC3339 or YYYY-MM-DD; Emails is comma separated and defaults to the
// signed-in user.
type EventsQuery struct {
	Start  string `query:"start"`
	End    string `query:"end"`
	Emails string `query:"emails"`
}

type EventResponse struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	AllDay       bool      `json:"all_day"`
	Email        string    `json:"email"`
	Transparency string    `json:"transparency,omitempty"`
	Visibility   string    `json:"visibility,omitempty"`
	TimeZone     string    `json:"time_zone,omitempty"`
}

type EventListResponse struct {
	Events []EventResponse `json:"events"`
	// Failed lists calendars that could not be read.
	Failed []string `json:"failed,omitempty"`
}

package dto

import "time"

// ===================== Request DTOs =====================

// NavigateRequest moves the visible week. Date is YYYY-MM-DD or RFC3339;
// when empty, Step moves by whole weeks and Step 0 returns to today.
type NavigateRequest struct {
	Date string `json:"date"`
	Step int    `json:"step"`
}

type PeopleRequest struct {
	Emails []string `json:"emails"`
}

type IncludeSelfRequest struct {
	IncludeSelf bool `json:"include_self"`
}

type TimezoneRequest struct {
	Timezone string `json:"timezone"`
}

// SlotRequest creates, moves or resizes a slot.
type SlotRequest struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// AutoPopulateRequest overrides the configured working hours for one run.
// Confirm must be set when slots already exist.
type AutoPopulateRequest struct {
	Confirm                bool    `json:"confirm"`
	DayStart               *string `json:"day_start"`
	DayEnd                 *string `json:"day_end"`
	IncludeWeekends        *bool   `json:"include_weekends"`
	SlotGranularityMinutes *int    `json:"slot_granularity_minutes"`
	AllDayBlocks           *bool   `json:"all_day_blocks"`
}

// ===================== Response DTOs =====================

type WorkspaceResponse struct {
	WeekStart          time.Time               `json:"week_start"`
	WeekEnd            time.Time               `json:"week_end"`
	DisplayTimezone    string                  `json:"display_timezone"`
	ShareTimezone      string                  `json:"share_timezone"`
	ShareTimezoneLabel string                  `json:"share_timezone_label"`
	People             []string                `json:"people"`
	IncludeSelf        bool                    `json:"include_self"`
	Attendees          []string                `json:"attendees"`
	MissingAttendees   []string                `json:"missing_attendees"`
	Slots              []SlotResponse          `json:"slots"`
	Timeline           []TimelineEventResponse `json:"timeline"`
	Legend             []LegendEntryResponse   `json:"legend"`
	AvailabilityText   string                  `json:"availability_text"`
	Policy             PolicyResponse          `json:"policy"`
}

type SlotResponse struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type TimelineEventResponse struct {
	ID            string    `json:"id"`
	Kind          string    `json:"kind"`
	Title         string    `json:"title"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	AllDay        bool      `json:"all_day"`
	Color         string    `json:"color"`
	Editable      bool      `json:"editable"`
	Tooltip       string    `json:"tooltip"`
	AttendeeEmail string    `json:"attendee_email,omitempty"`
}

type LegendEntryResponse struct {
	Label string `json:"label"`
	Email string `json:"email,omitempty"`
	Color string `json:"color"`
}

type PolicyResponse struct {
	DayStart               string `json:"day_start"`
	DayEnd                 string `json:"day_end"`
	IncludeWeekends        bool   `json:"include_weekends"`
	SlotGranularityMinutes int    `json:"slot_granularity_minutes"`
	AllDayBlocks           bool   `json:"all_day_blocks"`
}

type SlotMutationResponse struct {
	Slot      *SlotResponse      `json:"slot,omitempty"`
	Changed   bool               `json:"changed"`
	Workspace *WorkspaceResponse `json:"workspace"`
}

type AutoPopulateResponse struct {
	Created   int                `json:"created"`
	Workspace *WorkspaceResponse `json:"workspace"`
}

type ShareResponse struct {
	TextURL   string    `json:"text_url"`
	ICSURL    string    `json:"ics_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type TimezoneResponse struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

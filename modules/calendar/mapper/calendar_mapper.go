package mapper

import (
	"strings"
	"time"

	"slotshare/modules/availability/entity"
	"slotshare/modules/calendar/dto"
)

func ToEventListResponse(result *entity.FetchResult) *dto.EventListResponse {
	if result == nil {
		return &dto.EventListResponse{Events: []dto.EventResponse{}}
	}
	events := make([]dto.EventResponse, 0, len(result.Events))
	for _, e := range result.Events {
		events = append(events, dto.EventResponse{
			ID:           e.ID,
			Title:        e.Title,
			Start:        e.Interval.Start,
			End:          e.Interval.End,
			AllDay:       e.AllDay,
			Email:        e.AttendeeEmail,
			Transparency: e.Transparency,
			Visibility:   e.Visibility,
			TimeZone:     e.TimeZone,
		})
	}
	return &dto.EventListResponse{Events: events, Failed: result.Failed}
}

// ParseEmails splits a comma separated list, lowercasing and dropping blanks
// and repeats.
func ParseEmails(value string) []string {
	var emails []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(value, ",") {
		email := strings.ToLower(strings.TrimSpace(part))
		if email == "" || seen[email] {
			continue
		}
		seen[email] = true
		emails = append(emails, email)
	}
	return emails
}

// ParseBound reads an RFC3339 instant or a YYYY-MM-DD date at midnight UTC.
func ParseBound(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, value)
}

package mapper

import (
	"fmt"
	"time"

	"slotshare/modules/availability/dto"
	"slotshare/modules/availability/entity"
	"slotshare/modules/availability/service"
)

func ToWorkspaceResponse(view service.View) *dto.WorkspaceResponse {
	slots := make([]dto.SlotResponse, len(view.Slots))
	for i, s := range view.Slots {
		slots[i] = ToSlotResponse(s)
	}

	timeline := make([]dto.TimelineEventResponse, len(view.Timeline))
	for i, d := range view.Timeline {
		timeline[i] = toTimelineEventResponse(d)
	}

	legend := make([]dto.LegendEntryResponse, len(view.Legend))
	for i, l := range view.Legend {
		legend[i] = dto.LegendEntryResponse{Label: l.Label, Email: l.Email, Color: l.Color}
	}

	return &dto.WorkspaceResponse{
		WeekStart:          view.Week.Start,
		WeekEnd:            view.Week.End,
		DisplayTimezone:    view.DisplayZone,
		ShareTimezone:      view.ShareZone,
		ShareTimezoneLabel: view.ShareZoneLabel,
		People:             orEmpty(view.People),
		IncludeSelf:        view.IncludeSelf,
		Attendees:          orEmpty(view.Attendees),
		MissingAttendees:   orEmpty(view.MissingAttendees),
		Slots:              slots,
		Timeline:           timeline,
		Legend:             legend,
		AvailabilityText:   view.AvailabilityText,
		Policy:             ToPolicyResponse(view.Policy),
	}
}

func ToSlotResponse(s entity.AvailabilitySlot) dto.SlotResponse {
	return dto.SlotResponse{
		ID:    s.ID,
		Title: s.Title,
		Start: s.Interval.Start,
		End:   s.Interval.End,
	}
}

func toTimelineEventResponse(d entity.DisplayEvent) dto.TimelineEventResponse {
	span := d.Span()
	resp := dto.TimelineEventResponse{
		ID:       d.ID(),
		Kind:     d.Kind.String(),
		Title:    d.Title(),
		Start:    span.Start,
		End:      span.End,
		AllDay:   d.IsAllDay(),
		Color:    d.RenderColor(),
		Editable: d.IsEditable(),
		Tooltip:  d.Tooltip(),
	}
	if d.Busy != nil {
		resp.AttendeeEmail = d.Busy.AttendeeEmail
	}
	return resp
}

func ToPolicyResponse(p entity.WorkingHoursPolicy) dto.PolicyResponse {
	return dto.PolicyResponse{
		DayStart:               p.DayStart.String(),
		DayEnd:                 p.DayEnd.String(),
		IncludeWeekends:        p.IncludeWeekends,
		SlotGranularityMinutes: p.SlotGranularityMinutes,
		AllDayBlocks:           p.AllDayBlocks,
	}
}

// ToPolicy applies the request's overrides on top of the defaults.
func ToPolicy(req *dto.AutoPopulateRequest, defaults entity.WorkingHoursPolicy) (entity.WorkingHoursPolicy, error) {
	p := defaults
	if req.DayStart != nil {
		t, err := entity.ParseTimeOfDay(*req.DayStart)
		if err != nil {
			return p, fmt.Errorf("day_start: %w", err)
		}
		p.DayStart = t
	}
	if req.DayEnd != nil {
		t, err := entity.ParseTimeOfDay(*req.DayEnd)
		if err != nil {
			return p, fmt.Errorf("day_end: %w", err)
		}
		p.DayEnd = t
	}
	if req.IncludeWeekends != nil {
		p.IncludeWeekends = *req.IncludeWeekends
	}
	if req.SlotGranularityMinutes != nil {
		p.SlotGranularityMinutes = *req.SlotGranularityMinutes
	}
	if req.AllDayBlocks != nil {
		p.AllDayBlocks = *req.AllDayBlocks
	}
	return p, p.Validate()
}

func ToSlotInterval(req *dto.SlotRequest) (entity.Interval, error) {
	return entity.NewInterval(req.Start, req.End)
}

// ParseDate accepts YYYY-MM-DD (read in loc) or RFC3339.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(time.DateOnly, value, loc); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

func ToShareResponse(link *service.ShareLink) *dto.ShareResponse {
	return &dto.ShareResponse{
		TextURL:   link.TextURL,
		ICSURL:    link.ICSURL,
		ExpiresAt: link.ExpiresAt,
	}
}

func ToTimezoneResponses(now time.Time) []dto.TimezoneResponse {
	zones := service.SelectableZones()
	out := make([]dto.TimezoneResponse, 0, len(zones))
	for _, id := range zones {
		loc, err := service.LoadZone(id)
		if err != nil {
			continue
		}
		out = append(out, dto.TimezoneResponse{ID: id, Label: service.ZoneLabel(loc, now)})
	}
	return out
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

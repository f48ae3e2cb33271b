package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"slotshare/core/errors"
	"slotshare/core/logger"
	"slotshare/modules/availability/entity"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	maxConcurrentCalendars = 8
	eventsPageSize         = 250

	// MaxEventWindow bounds a single events read.
	MaxEventWindow = 62 * 24 * time.Hour

	untitledEvent = "Busy"
)

// TokenProvider hands out Google credentials for a signed-in user.
type TokenProvider interface {
	TokenSource(ctx context.Context, userID uuid.UUID) (oauth2.TokenSource, *errors.AppError)
	MarkCredentialInvalid(ctx context.Context, userID uuid.UUID)
}

type CalendarServiceInterface interface {
	FetchEvents(ctx context.Context, ownerID uuid.UUID, emails []string, window entity.Interval) (*entity.FetchResult, error)
	ListEvents(ctx context.Context, ownerID uuid.UUID, emails []string, window entity.Interval) (*entity.FetchResult, *errors.AppError)
}

// CalendarService reads events from Google Calendar with the owner's
// credential. Each email is read as its own calendar id, so colleagues'
// calendars are visible only as far as they are shared with the owner.
type CalendarService struct {
	tokens TokenProvider

	// extra client options, set by tests
	options []option.ClientOption
}

func NewCalendarService(tokens TokenProvider, opts ...option.ClientOption) *CalendarService {
	return &CalendarService{
		tokens:  tokens,
		options: opts,
	}
}

// FetchEvents satisfies the availability workspace's EventFetcher.
func (s *CalendarService) FetchEvents(ctx context.Context, ownerID uuid.UUID, emails []string, window entity.Interval) (*entity.FetchResult, error) {
	result, appErr := s.ListEvents(ctx, ownerID, emails, window)
	if appErr != nil {
		return nil, appErr
	}
	return result, nil
}

// ListEvents reads every calendar concurrently. Calendars that cannot be read
// are reported in Failed; the call fails only when Google rejects the owner's
// credential or when no calendar could be read at all.
func (s *CalendarService) ListEvents(ctx context.Context, ownerID uuid.UUID, emails []string, window entity.Interval) (*entity.FetchResult, *errors.AppError) {
	if len(emails) == 0 {
		return &entity.FetchResult{}, nil
	}
	if !window.Start.Before(window.End) {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "start must be before end", nil)
	}
	if window.End.Sub(window.Start) > MaxEventWindow {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "requested range is too long", nil)
	}

	ts, appErr := s.tokens.TokenSource(ctx, ownerID)
	if appErr != nil {
		return nil, appErr
	}

	opts := append([]option.ClientOption{option.WithTokenSource(ts)}, s.options...)
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		logger.Error("CalendarService:ListEvents:NewService:Error", "error", err)
		return nil, errors.NewAppError(errors.ErrTransportFailure, "failed to create calendar client", err)
	}

	events := make([][]entity.BusyEvent, len(emails))
	failures := make([]error, len(emails))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentCalendars)
	for i, email := range emails {
		g.Go(func() error {
			list, err := listCalendar(gctx, svc, email, window)
			if err != nil {
				if credentialRejected(err) {
					return err
				}
				failures[i] = err
				return nil
			}
			events[i] = list
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.tokens.MarkCredentialInvalid(ctx, ownerID)
		logger.Warn("CalendarService:ListEvents:CredentialRejected", "user_id", ownerID, "error", err)
		return nil, errors.NewAppError(errors.ErrAuthExpired, "Google credential expired. Please sign in again", err)
	}

	result := &entity.FetchResult{}
	for i, email := range emails {
		if failures[i] != nil {
			logger.Warn("CalendarService:ListEvents:CalendarFailed", "user_id", ownerID, "email", email, "error", failures[i])
			result.Failed = append(result.Failed, email)
			continue
		}
		result.Events = append(result.Events, events[i]...)
	}

	if len(result.Failed) == len(emails) {
		return nil, errors.NewAppError(errors.ErrTransportFailure, "failed to read calendars", failures[0])
	}

	logger.Debug("CalendarService:ListEvents:Success",
		"user_id", ownerID,
		"calendars", len(emails),
		"events", len(result.Events),
		"failed", len(result.Failed))
	return result, nil
}

func listCalendar(ctx context.Context, svc *calendar.Service, email string, window entity.Interval) ([]entity.BusyEvent, error) {
	var events []entity.BusyEvent

	call := svc.Events.List(email).
		ShowDeleted(false).
		SingleEvents(true).
		OrderBy("startTime").
		TimeMin(window.Start.UTC().Format(time.RFC3339)).
		TimeMax(window.End.UTC().Format(time.RFC3339)).
		MaxResults(eventsPageSize)

	err := call.Pages(ctx, func(page *calendar.Events) error {
		loc := loadLocation(page.TimeZone, time.UTC)
		for _, item := range page.Items {
			event, err := toBusyEvent(item, email, page.TimeZone, loc)
			if err != nil {
				logger.Debug("CalendarService:ListEvents:SkipEvent", "email", email, "error", err)
				continue
			}
			events = append(events, event)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// credentialRejected reports whether err means the owner's Google credential
// is no longer usable, as opposed to one calendar being unreadable.
func credentialRejected(err error) bool {
	if errors.Is(err, errors.ErrAuthExpired) {
		return true
	}
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusUnauthorized
}

func toBusyEvent(item *calendar.Event, email, calendarZone string, calendarLoc *time.Location) (entity.BusyEvent, error) {
	if item == nil || item.Start == nil || item.End == nil {
		return entity.BusyEvent{}, fmt.Errorf("event has no start or end")
	}
	if item.Status == "cancelled" {
		return entity.BusyEvent{}, fmt.Errorf("event %s is cancelled", item.Id)
	}

	zone := calendarZone
	loc := calendarLoc
	if item.Start.TimeZone != "" {
		zone = item.Start.TimeZone
		loc = loadLocation(item.Start.TimeZone, calendarLoc)
	}

	start, allDay, err := parseEventTime(item.Start, loc)
	if err != nil {
		return entity.BusyEvent{}, err
	}
	end, _, err := parseEventTime(item.End, loc)
	if err != nil {
		return entity.BusyEvent{}, err
	}
	interval, err := entity.NewInterval(start, end)
	if err != nil {
		return entity.BusyEvent{}, fmt.Errorf("event %s: %w", item.Id, err)
	}

	title := item.Summary
	if title == "" {
		title = untitledEvent
	}

	return entity.BusyEvent{
		ID:            item.Id,
		Title:         title,
		Interval:      interval,
		AllDay:        allDay,
		AttendeeEmail: email,
		Transparency:  item.Transparency,
		Visibility:    item.Visibility,
		TimeZone:      zone,
	}, nil
}

// parseEventTime reads a timed value as an instant and an all-day date as
// midnight in loc.
func parseEventTime(t *calendar.EventDateTime, loc *time.Location) (time.Time, bool, error) {
	switch {
	case t.DateTime != "":
		v, err := time.Parse(time.RFC3339, t.DateTime)
		return v, false, err
	case t.Date != "":
		v, err := time.ParseInLocation(time.DateOnly, t.Date, loc)
		return v, true, err
	default:
		return time.Time{}, false, fmt.Errorf("event time has neither dateTime nor date")
	}
}

func loadLocation(name string, fallback *time.Location) *time.Location {
	if name == "" {
		return fallback
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fallback
	}
	return loc
}

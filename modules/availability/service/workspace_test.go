package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"slotshare/core/errors"
	"slotshare/modules/availability/entity"

	"github.com/google/uuid"
)

type fetcherFunc func(ctx context.Context, ownerID uuid.UUID, emails []string, window entity.Interval) (*entity.FetchResult, error)

func (f fetcherFunc) FetchEvents(ctx context.Context, ownerID uuid.UUID, emails []string, window entity.Interval) (*entity.FetchResult, error) {
	return f(ctx, ownerID, emails, window)
}

func staticFetcher(events ...entity.BusyEvent) fetcherFunc {
	return func(_ context.Context, _ uuid.UUID, emails []string, _ entity.Interval) (*entity.FetchResult, error) {
		want := map[string]bool{}
		for _, e := range emails {
			want[e] = true
		}
		var out []entity.BusyEvent
		for _, ev := range events {
			if want[ev.AttendeeEmail] {
				out = append(out, ev)
			}
		}
		return &entity.FetchResult{Events: out}, nil
	}
}

func testSettings() Settings {
	return Settings{
		Policy:      policy(9, 17, 30, false),
		WeekStart:   time.Sunday,
		DefaultZone: time.UTC,
	}
}

func newTestWorkspace(f EventFetcher) *Workspace {
	return NewWorkspace(uuid.New(), "Me@X.com", f, testSettings(), utc(2024, 6, 5, 12, 0), "")
}

func TestWorkspaceAttendees(t *testing.T) {
	ws := newTestWorkspace(staticFetcher())
	view := ws.SetPeople([]string{" A@x.com", "b@x.com", "a@x.com", "me@x.com", ""})

	want := []string{"me@x.com", "a@x.com", "b@x.com"}
	if fmt.Sprint(view.Attendees) != fmt.Sprint(want) {
		t.Errorf("attendees = %v, want %v", view.Attendees, want)
	}

	view = ws.SetIncludeSelf(false)
	if fmt.Sprint(view.Attendees) != fmt.Sprint([]string{"a@x.com", "b@x.com"}) {
		t.Errorf("attendees without self = %v", view.Attendees)
	}
}

func TestWorkspaceRefreshBuildsTimeline(t *testing.T) {
	ws := newTestWorkspace(staticFetcher(
		entity.BusyEvent{ID: "1", Title: "Sync", AttendeeEmail: "a@x.com", Interval: span(utc(2024, 6, 3, 10, 0), utc(2024, 6, 3, 11, 0))},
		entity.BusyEvent{ID: "2", Title: "Gym", AttendeeEmail: "a@x.com", Transparency: entity.TransparencyTransparent,
			Interval: span(utc(2024, 6, 3, 12, 0), utc(2024, 6, 3, 13, 0))},
	))
	ws.SetPeople([]string{"a@x.com"})
	ws.CreateSlot(span(utc(2024, 6, 4, 9, 0), utc(2024, 6, 4, 10, 0)))

	view, superseded, err := ws.Refresh(context.Background())
	if err != nil || superseded {
		t.Fatalf("Refresh = %v, %v", superseded, err)
	}
	if len(view.Timeline) != 2 {
		t.Fatalf("timeline = %+v", view.Timeline)
	}
	if view.Timeline[0].Kind != entity.KindAvailability || view.Timeline[1].Busy.ID != "1" {
		t.Errorf("unexpected timeline order")
	}
	if len(view.Legend) != 3 {
		t.Errorf("legend = %+v", view.Legend)
	}
}

func TestWorkspaceStaleRefreshIsDiscarded(t *testing.T) {
	type call struct {
		emails []string
		reply  chan *entity.FetchResult
	}
	calls := make(chan call)
	f := fetcherFunc(func(_ context.Context, _ uuid.UUID, emails []string, _ entity.Interval) (*entity.FetchResult, error) {
		c := call{emails: emails, reply: make(chan *entity.FetchResult)}
		calls <- c
		return <-c.reply, nil
	})

	ws := newTestWorkspace(f)
	ws.SetIncludeSelf(false)
	ws.SetPeople([]string{"a@x.com"})

	type outcome struct {
		view       View
		superseded bool
	}
	first := make(chan outcome, 1)
	go func() {
		v, s, _ := ws.Refresh(context.Background())
		first <- outcome{v, s}
	}()
	c1 := <-calls

	// Edits are not blocked by an in-flight read.
	created, _ := ws.CreateSlot(span(utc(2024, 6, 4, 9, 0), utc(2024, 6, 4, 10, 0)))

	ws.SetPeople([]string{"b@x.com"})
	second := make(chan outcome, 1)
	go func() {
		v, s, _ := ws.Refresh(context.Background())
		second <- outcome{v, s}
	}()
	c2 := <-calls

	c2.reply <- &entity.FetchResult{Events: []entity.BusyEvent{{ID: "b1", AttendeeEmail: "b@x.com",
		Interval: span(utc(2024, 6, 3, 9, 0), utc(2024, 6, 3, 10, 0))}}}
	if got := <-second; got.superseded {
		t.Fatal("latest refresh must be applied")
	}

	c1.reply <- &entity.FetchResult{Events: []entity.BusyEvent{{ID: "a1", AttendeeEmail: "a@x.com",
		Interval: span(utc(2024, 6, 3, 14, 0), utc(2024, 6, 3, 15, 0))}}}
	got := <-first
	if !got.superseded {
		t.Fatal("older refresh must report superseded")
	}

	view := ws.Snapshot()
	var busyIDs []string
	for _, d := range view.Timeline {
		if d.Kind == entity.KindBusy {
			busyIDs = append(busyIDs, d.Busy.ID)
		}
	}
	if fmt.Sprint(busyIDs) != "[b1]" {
		t.Errorf("busy events = %v, want only the latest read", busyIDs)
	}
	if len(view.Slots) != 1 || view.Slots[0].ID != created.ID {
		t.Errorf("slot created during the read was lost: %+v", view.Slots)
	}
}

func TestWorkspaceTransportFailureKeepsPriorState(t *testing.T) {
	fail := false
	f := fetcherFunc(func(_ context.Context, _ uuid.UUID, _ []string, _ entity.Interval) (*entity.FetchResult, error) {
		if fail {
			return nil, errors.NewAppError(errors.ErrTransportFailure, "network down", nil)
		}
		return &entity.FetchResult{Events: []entity.BusyEvent{{ID: "1", AttendeeEmail: "me@x.com",
			Interval: span(utc(2024, 6, 3, 9, 0), utc(2024, 6, 3, 10, 0))}}}, nil
	})
	ws := newTestWorkspace(f)

	if _, _, err := ws.Refresh(context.Background()); err != nil {
		t.Fatalf("first refresh: %v", err)
	}

	fail = true
	view, _, err := ws.Refresh(context.Background())
	if !errors.Is(err, errors.ErrTransportFailure) {
		t.Fatalf("err = %v", err)
	}
	if len(view.Timeline) != 1 {
		t.Errorf("prior busy events must be kept, timeline = %+v", view.Timeline)
	}
}

func TestWorkspacePartialFetchReportsMissing(t *testing.T) {
	f := fetcherFunc(func(_ context.Context, _ uuid.UUID, emails []string, _ entity.Interval) (*entity.FetchResult, error) {
		return &entity.FetchResult{Failed: []string{"ghost@x.com"}}, nil
	})
	ws := newTestWorkspace(f)
	ws.SetPeople([]string{"ghost@x.com"})

	view, _, err := ws.Refresh(context.Background())
	if err != nil {
		t.Fatalf("partial failure must not be an error: %v", err)
	}
	if fmt.Sprint(view.MissingAttendees) != "[ghost@x.com]" {
		t.Errorf("missing = %v", view.MissingAttendees)
	}
}

func TestWorkspaceRemoveUnknownSlotIsNoop(t *testing.T) {
	ws := newTestWorkspace(staticFetcher())
	a, _ := ws.CreateSlot(span(utc(2024, 6, 3, 9, 0), utc(2024, 6, 3, 10, 0)))

	view, ok := ws.RemoveSlot(a.ID)
	if !ok || len(view.Slots) != 0 {
		t.Fatalf("first remove = %v, %d slots", ok, len(view.Slots))
	}
	view, ok = ws.RemoveSlot(a.ID)
	if ok || len(view.Slots) != 0 {
		t.Errorf("second remove = %v, %d slots", ok, len(view.Slots))
	}

	if _, ok := ws.UpdateSlot("nope", span(utc(2024, 6, 3, 9, 0), utc(2024, 6, 3, 10, 0))); ok {
		t.Error("updating an unknown slot must report false")
	}
}

func TestWorkspaceAutoPopulateNeedsConfirmation(t *testing.T) {
	ws := newTestWorkspace(staticFetcher(
		entity.BusyEvent{ID: "1", AttendeeEmail: "me@x.com", Interval: span(utc(2024, 6, 3, 10, 0), utc(2024, 6, 3, 11, 0))},
	))
	if _, _, err := ws.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	slots, _, err := ws.AutoPopulate(policy(9, 17, 30, false), false)
	if err != nil {
		t.Fatalf("empty store should not need confirmation: %v", err)
	}
	if len(slots) != 6 {
		t.Fatalf("got %d slots, want 2 on Monday and 1 on each other weekday", len(slots))
	}

	ws.CreateSlot(span(utc(2024, 6, 8, 9, 0), utc(2024, 6, 8, 10, 0)))
	_, view, err := ws.AutoPopulate(policy(9, 17, 30, false), false)
	if !errors.Is(err, errors.ErrConfirmationRequired) {
		t.Fatalf("err = %v, want confirmation required", err)
	}
	if len(view.Slots) != 7 {
		t.Errorf("unconfirmed auto-populate changed slots: %d", len(view.Slots))
	}

	slots, view, err = ws.AutoPopulate(policy(9, 17, 30, false), true)
	if err != nil || len(slots) != 6 || len(view.Slots) != 6 {
		t.Errorf("confirmed auto-populate = %d slots, %v", len(slots), err)
	}
}

func TestWorkspaceAllDayPolicy(t *testing.T) {
	ws := newTestWorkspace(staticFetcher(
		entity.BusyEvent{ID: "pto", AllDay: true, AttendeeEmail: "me@x.com", Interval: span(utc(2024, 6, 3, 0, 0), utc(2024, 6, 4, 0, 0))},
	))
	if _, _, err := ws.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	p := policy(9, 17, 30, false)
	slots, _, _ := ws.AutoPopulate(p, true)
	if len(slots) != 5 {
		t.Errorf("non-blocking all-day: %d slots, want 5", len(slots))
	}

	p.AllDayBlocks = true
	slots, _, _ = ws.AutoPopulate(p, true)
	if len(slots) != 4 {
		t.Errorf("blocking all-day: %d slots, want 4", len(slots))
	}
}

func TestWorkspaceDisplayZoneFollowsEvents(t *testing.T) {
	ws := newTestWorkspace(staticFetcher(
		entity.BusyEvent{ID: "1", AttendeeEmail: "me@x.com", TimeZone: "Asia/Tokyo",
			Interval: span(utc(2024, 6, 3, 1, 0), utc(2024, 6, 3, 2, 0))},
	))
	view, _, err := ws.Refresh(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if view.DisplayZone != "Asia/Tokyo" {
		t.Errorf("display zone = %s", view.DisplayZone)
	}
	if view.Week.Start.Location().String() != "Asia/Tokyo" {
		t.Errorf("week is not in the display zone: %v", view.Week.Start)
	}
}

func TestWorkspaceShareZoneChangesText(t *testing.T) {
	ws := newTestWorkspace(staticFetcher())
	ws.CreateSlot(span(utc(2024, 6, 3, 9, 0), utc(2024, 6, 3, 9, 30)))

	view, err := ws.SetShareZone("America/New_York")
	if err != nil {
		t.Fatal(err)
	}
	want := "Availability (EDT (America/New_York)):\n\nJune 3, 2024\n• 5:00 AM - 5:30 AM"
	if view.AvailabilityText != want {
		t.Errorf("text = %q", view.AvailabilityText)
	}

	if _, err := ws.SetShareZone("Nowhere/Special"); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("bad zone err = %v", err)
	}
}

func TestWorkspaceStep(t *testing.T) {
	ws := newTestWorkspace(staticFetcher())
	view := ws.Step(1)
	if !view.Week.Start.Equal(utc(2024, 6, 9, 0, 0)) {
		t.Errorf("next week starts %v", view.Week.Start)
	}
	view = ws.Step(-2)
	if !view.Week.Start.Equal(utc(2024, 5, 26, 0, 0)) {
		t.Errorf("two weeks back starts %v", view.Week.Start)
	}
}

func TestWorkspaceConcurrentEdits(t *testing.T) {
	ws := newTestWorkspace(staticFetcher())
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			start := utc(2024, 6, 3, 9, 0).Add(time.Duration(i) * time.Minute)
			ws.CreateSlot(span(start, start.Add(30*time.Minute)))
		}(i)
	}
	wg.Wait()
	if got := len(ws.Snapshot().Slots); got != 50 {
		t.Errorf("got %d slots after concurrent creates", got)
	}
}

// windowedFetcher answers like Google does: only events overlapping the
// requested window come back. Every requested window is recorded.
type windowedFetcher struct {
	events  []entity.BusyEvent
	windows []entity.Interval
}

func (f *windowedFetcher) FetchEvents(_ context.Context, _ uuid.UUID, _ []string, window entity.Interval) (*entity.FetchResult, error) {
	f.windows = append(f.windows, window)
	var out []entity.BusyEvent
	for _, ev := range f.events {
		if ev.Interval.Overlaps(window) {
			out = append(out, ev)
		}
	}
	return &entity.FetchResult{Events: out}, nil
}

func TestWorkspaceRefreshReadsWeekMovedByZone(t *testing.T) {
	sydney, err := time.LoadLocation("Australia/Sydney")
	if err != nil {
		t.Skip("zone database unavailable")
	}
	at := func(d, h int) time.Time { return time.Date(2024, 6, d, h, 0, 0, 0, sydney) }

	standup := entity.BusyEvent{ID: "standup", AttendeeEmail: "me@x.com", TimeZone: "Australia/Sydney",
		Interval: span(at(3, 9), at(3, 10))}
	planning := entity.BusyEvent{ID: "planning", AttendeeEmail: "me@x.com", TimeZone: "Australia/Sydney",
		Interval: span(at(4, 10), at(4, 11))}
	f := &windowedFetcher{events: []entity.BusyEvent{standup, planning}}

	settings := testSettings()
	settings.WeekStart = time.Monday
	ws := NewWorkspace(uuid.New(), "me@x.com", f, settings, utc(2024, 6, 5, 12, 0), "")

	view, _, err := ws.Refresh(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if view.DisplayZone != "Australia/Sydney" || !view.Week.Start.Equal(at(3, 0)) {
		t.Fatalf("week = %v in %s", view.Week.Start, view.DisplayZone)
	}
	last := f.windows[len(f.windows)-1]
	if !last.Start.Equal(view.Week.Start) || !last.End.Equal(view.Week.End) {
		t.Errorf("last read %v..%v, displayed week %v..%v", last.Start, last.End, view.Week.Start, view.Week.End)
	}
	if ws.NeedsRefresh() {
		t.Error("displayed week should be fully read")
	}

	slots, _, err := ws.AutoPopulate(policy(9, 17, 30, false), true)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range slots {
		if s.Interval.Overlaps(standup.Interval) {
			t.Errorf("slot %v..%v covers the standup", s.Interval.Start, s.Interval.End)
		}
	}
}

func TestWorkspaceAutoPopulateRefusesUnreadWeek(t *testing.T) {
	ws := newTestWorkspace(staticFetcher())

	slots, view, err := ws.AutoPopulate(policy(9, 17, 30, false), true)
	if !errors.Is(err, errors.ErrTransportFailure) || len(slots) != 0 || len(view.Slots) != 0 {
		t.Fatalf("unread week: slots = %d, err = %v", len(slots), err)
	}

	if _, _, err := ws.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := ws.SetBaseZone("Australia/Sydney"); err != nil {
		t.Fatal(err)
	}
	if !ws.NeedsRefresh() {
		t.Fatal("moving the week to another zone should leave part of it unread")
	}
	if _, _, err := ws.AutoPopulate(policy(9, 17, 30, false), true); !errors.Is(err, errors.ErrTransportFailure) {
		t.Errorf("err = %v, want transport failure", err)
	}
}

func TestWorkspaceClientZoneSetsShareZone(t *testing.T) {
	tests := []struct {
		name       string
		clientZone string
		want       string
	}{
		{name: "client zone", clientZone: "America/New_York", want: "America/New_York"},
		{name: "unknown zone", clientZone: "Nowhere/Special", want: "UTC"},
		{name: "no zone", want: "UTC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := NewWorkspace(uuid.New(), "me@x.com", staticFetcher(), testSettings(), utc(2024, 6, 5, 12, 0), tt.clientZone)
			view := ws.Snapshot()
			if view.ShareZone != tt.want {
				t.Errorf("share zone = %s, want %s", view.ShareZone, tt.want)
			}
			if view.DisplayZone != "UTC" {
				t.Errorf("display zone = %s", view.DisplayZone)
			}
		})
	}
}

package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"slotshare/core/errors"
	authDto "slotshare/modules/auth/dto"
	"slotshare/modules/availability/entity"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
)

type fakeSessions struct {
	valid bool
}

func (f *fakeSessions) Session(_ context.Context, userID uuid.UUID) (*authDto.SessionInfo, *errors.AppError) {
	return &authDto.SessionInfo{Authenticated: true, UserID: userID, CredentialValid: f.valid}, nil
}

func newTestService(f EventFetcher, sessions SessionProvider, publisher *SharePublisher) *AvailabilityService {
	s := NewAvailabilityService(f, sessions, publisher, testSettings(), time.Hour)
	s.now = func() time.Time { return utc(2024, 6, 5, 12, 0) }
	return s
}

func TestRefreshWithExpiredCredential(t *testing.T) {
	calls := 0
	f := fetcherFunc(func(context.Context, uuid.UUID, []string, entity.Interval) (*entity.FetchResult, error) {
		calls++
		return &entity.FetchResult{}, nil
	})
	svc := newTestService(f, &fakeSessions{valid: false}, nil)
	owner := Owner{UserID: uuid.New(), Email: "me@x.com"}

	_, appErr := svc.Refresh(context.Background(), owner)
	if appErr == nil || appErr.Code != errors.ErrAuthExpired {
		t.Fatalf("err = %v, want auth expired", appErr)
	}
	if calls != 0 {
		t.Error("calendar must not be read with an expired credential")
	}
}

func TestFetcherErrorsBecomeTransportFailures(t *testing.T) {
	f := fetcherFunc(func(context.Context, uuid.UUID, []string, entity.Interval) (*entity.FetchResult, error) {
		return nil, context.DeadlineExceeded
	})
	svc := newTestService(f, &fakeSessions{valid: true}, nil)

	_, appErr := svc.Refresh(context.Background(), Owner{UserID: uuid.New(), Email: "me@x.com"})
	if appErr == nil || appErr.Code != errors.ErrTransportFailure {
		t.Errorf("err = %v", appErr)
	}
}

func TestStepWeekZeroReturnsToToday(t *testing.T) {
	svc := newTestService(staticFetcher(), &fakeSessions{valid: true}, nil)
	owner := Owner{UserID: uuid.New(), Email: "me@x.com"}

	svc.StepWeek(context.Background(), owner, 3)
	view, appErr := svc.StepWeek(context.Background(), owner, 0)
	if appErr != nil {
		t.Fatal(appErr)
	}
	if !view.Week.Start.Equal(utc(2024, 6, 2, 0, 0)) {
		t.Errorf("week = %v", view.Week.Start)
	}
}

func TestWorkspacesAreIsolatedPerOwner(t *testing.T) {
	svc := newTestService(staticFetcher(), &fakeSessions{valid: true}, nil)
	a := Owner{UserID: uuid.New(), Email: "a@x.com"}
	b := Owner{UserID: uuid.New(), Email: "b@x.com"}

	svc.CreateSlot(context.Background(), a, span(utc(2024, 6, 3, 9, 0), utc(2024, 6, 3, 10, 0)))
	if got := len(svc.Snapshot(context.Background(), b).Slots); got != 0 {
		t.Errorf("b sees %d of a's slots", got)
	}

	svc.EndSession(a.UserID)
	if got := len(svc.Snapshot(context.Background(), a).Slots); got != 0 {
		t.Error("signing out must discard the workspace")
	}
}

func TestExportICSWithoutSlots(t *testing.T) {
	svc := newTestService(staticFetcher(), &fakeSessions{valid: true}, nil)
	_, appErr := svc.ExportICS(context.Background(), Owner{UserID: uuid.New(), Email: "me@x.com"})
	if appErr == nil || appErr.Code != errors.ErrNotFound {
		t.Errorf("err = %v", appErr)
	}
}

func TestShareDisabledWithoutStore(t *testing.T) {
	svc := newTestService(staticFetcher(), &fakeSessions{valid: true}, nil)
	_, appErr := svc.Share(context.Background(), Owner{UserID: uuid.New(), Email: "me@x.com"})
	if appErr == nil || appErr.Code != errors.ErrFeatureDisabled {
		t.Errorf("err = %v", appErr)
	}
}

func TestSharePublishesTextAndICS(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(staticFetcher(), &fakeSessions{valid: true}, NewSharePublisher(store, time.Hour))
	owner := Owner{UserID: uuid.New(), Email: "me@x.com"}
	svc.CreateSlot(context.Background(), owner, span(utc(2024, 6, 3, 9, 0), utc(2024, 6, 3, 10, 0)))

	link, appErr := svc.Share(context.Background(), owner)
	if appErr != nil {
		t.Fatal(appErr)
	}
	if link.TextURL == "" || link.ICSURL == "" {
		t.Errorf("link = %+v", link)
	}
	if len(store.objects) != 2 {
		t.Errorf("stored %d objects", len(store.objects))
	}
}

func TestShareBuildsBothFilesFromOneSnapshot(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(staticFetcher(), &fakeSessions{valid: true}, NewSharePublisher(store, time.Hour))
	owner := Owner{UserID: uuid.New(), Email: "me@x.com"}
	svc.CreateSlot(context.Background(), owner, span(utc(2024, 6, 3, 9, 0), utc(2024, 6, 3, 10, 0)))

	// An edit that lands while the calendar file is being built.
	edited := false
	svc.now = func() time.Time {
		if !edited {
			edited = true
			svc.CreateSlot(context.Background(), owner, span(utc(2024, 6, 4, 9, 0), utc(2024, 6, 4, 10, 0)))
		}
		return utc(2024, 6, 5, 12, 0)
	}

	if _, appErr := svc.Share(context.Background(), owner); appErr != nil {
		t.Fatal(appErr)
	}

	var text string
	var events int
	for key, body := range store.objects {
		switch {
		case strings.HasSuffix(key, ".txt"):
			text = string(body)
		case strings.HasSuffix(key, ".ics"):
			cal, err := ical.NewDecoder(bytes.NewReader(body)).Decode()
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			events = len(cal.Events())
		}
	}
	if lines := strings.Count(text, "•"); lines != 1 || events != 1 {
		t.Errorf("text has %d slots, calendar file has %d events", lines, events)
	}
}

func TestSetCalendarTimezoneReadsMovedWeek(t *testing.T) {
	calls := 0
	f := fetcherFunc(func(context.Context, uuid.UUID, []string, entity.Interval) (*entity.FetchResult, error) {
		calls++
		return &entity.FetchResult{}, nil
	})
	svc := newTestService(f, &fakeSessions{valid: true}, nil)
	owner := Owner{UserID: uuid.New(), Email: "me@x.com"}

	if _, appErr := svc.Refresh(context.Background(), owner); appErr != nil {
		t.Fatal(appErr)
	}
	view, appErr := svc.SetCalendarTimezone(context.Background(), owner, "Australia/Sydney")
	if appErr != nil {
		t.Fatal(appErr)
	}
	if calls != 2 {
		t.Errorf("calendar read %d times, want a second read for the moved week", calls)
	}
	if view.DisplayZone != "Australia/Sydney" || svc.workspace(owner).NeedsRefresh() {
		t.Errorf("display zone = %s, needs refresh = %v", view.DisplayZone, svc.workspace(owner).NeedsRefresh())
	}
}

func TestAutoPopulateReadsWeekFirst(t *testing.T) {
	calls := 0
	f := fetcherFunc(func(context.Context, uuid.UUID, []string, entity.Interval) (*entity.FetchResult, error) {
		calls++
		return &entity.FetchResult{}, nil
	})
	svc := newTestService(f, &fakeSessions{valid: true}, nil)

	slots, _, appErr := svc.AutoPopulate(context.Background(), Owner{UserID: uuid.New(), Email: "me@x.com"}, policy(9, 17, 30, false), false)
	if appErr != nil {
		t.Fatal(appErr)
	}
	if calls != 1 || len(slots) != 5 {
		t.Errorf("reads = %d, slots = %d", calls, len(slots))
	}
}

func TestClientZoneSeedsShareZone(t *testing.T) {
	svc := newTestService(staticFetcher(), &fakeSessions{valid: true}, nil)
	owner := Owner{UserID: uuid.New(), Email: "me@x.com", Zone: "Europe/Berlin"}

	if view := svc.Snapshot(context.Background(), owner); view.ShareZone != "Europe/Berlin" {
		t.Errorf("share zone = %s", view.ShareZone)
	}
	owner.Zone = "Asia/Tokyo"
	if view := svc.Snapshot(context.Background(), owner); view.ShareZone != "Europe/Berlin" {
		t.Errorf("an existing workspace keeps its share zone, got %s", view.ShareZone)
	}
}

func TestEvictIdle(t *testing.T) {
	svc := newTestService(staticFetcher(), &fakeSessions{valid: true}, nil)
	clock := utc(2024, 6, 5, 12, 0)
	svc.registry.now = func() time.Time { return clock }

	svc.Snapshot(context.Background(), Owner{UserID: uuid.New(), Email: "a@x.com"})
	clock = clock.Add(30 * time.Minute)
	svc.Snapshot(context.Background(), Owner{UserID: uuid.New(), Email: "b@x.com"})
	clock = clock.Add(45 * time.Minute)

	if n := svc.EvictIdle(context.Background()); n != 1 {
		t.Errorf("evicted %d, want 1", n)
	}
	if svc.registry.Len() != 1 {
		t.Errorf("remaining %d", svc.registry.Len())
	}
}

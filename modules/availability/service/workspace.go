package service

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"slotshare/core/errors"
	"slotshare/core/logger"
	"slotshare/modules/availability/entity"

	"github.com/google/uuid"
)

// EventFetcher reads busy events for a set of attendees on behalf of owner.
type EventFetcher interface {
	FetchEvents(ctx context.Context, ownerID uuid.UUID, emails []string, window entity.Interval) (*entity.FetchResult, error)
}

type Settings struct {
	Policy      entity.WorkingHoursPolicy
	WeekStart   time.Weekday
	DefaultZone *time.Location
}

// maxWeekRefetches bounds how often one Refresh re-reads after the derived
// display zone moved the visible week.
const maxWeekRefetches = 2

// View is the derived state shown to the user. It is rebuilt after every
// committed change.
type View struct {
	Week             entity.Interval
	DisplayZone      string
	ShareZone        string
	ShareZoneLabel   string
	People           []string
	IncludeSelf      bool
	Attendees        []string
	MissingAttendees []string
	Slots            []entity.AvailabilitySlot
	Timeline         []entity.DisplayEvent
	Legend           []LegendEntry
	AvailabilityText string
	Policy           entity.WorkingHoursPolicy
}

// Workspace is one user's editing session. All mutations run under one lock
// so each is atomic with respect to the others. Calendar reads happen outside
// the lock and are applied only if no newer read was issued meanwhile.
type Workspace struct {
	mu sync.Mutex

	ownerID    uuid.UUID
	ownerEmail string
	fetcher    EventFetcher
	settings   Settings

	currentDate time.Time
	people      []string
	includeSelf bool
	baseZone    *time.Location
	displayZone *time.Location
	shareZone   *time.Location

	store  *SlotStore
	busy   *BusyView
	colors *ColorRegistry

	fetchSeq uint64
	view     View
}

// NewWorkspace starts a session in the configured default zone. A non-empty
// clientZone that names a known zone becomes the initial share zone.
func NewWorkspace(ownerID uuid.UUID, ownerEmail string, fetcher EventFetcher, settings Settings, now time.Time, clientZone string) *Workspace {
	zone := settings.DefaultZone
	if zone == nil {
		zone = time.UTC
	}
	shareZone := zone
	if clientZone != "" {
		if loc, err := LoadZone(clientZone); err == nil {
			shareZone = loc
		} else {
			logger.Debug("Workspace:New:UnknownClientZone", "owner", ownerID, "zone", clientZone)
		}
	}
	w := &Workspace{
		ownerID:     ownerID,
		ownerEmail:  strings.ToLower(ownerEmail),
		fetcher:     fetcher,
		settings:    settings,
		currentDate: now,
		includeSelf: true,
		baseZone:    zone,
		displayZone: zone,
		shareZone:   shareZone,
		store:       NewSlotStore(),
		busy:        NewBusyView(),
		colors:      NewColorRegistry(),
	}
	w.commitLocked()
	return w
}

func (w *Workspace) OwnerID() uuid.UUID {
	return w.ownerID
}

func (w *Workspace) Snapshot() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.view
}

// Refresh reads busy events for the current attendees and week. A read that
// was overtaken by a newer one is dropped and reports superseded. On failure
// the previous busy view is kept. When the events move the display zone far
// enough to shift the visible week, the new week is read again.
func (w *Workspace) Refresh(ctx context.Context) (view View, superseded bool, err error) {
	for attempt := 0; ; attempt++ {
		var moved bool
		view, superseded, moved, err = w.refreshOnce(ctx)
		if err != nil || superseded || !moved || attempt == maxWeekRefetches {
			return view, superseded, err
		}
		logger.Debug("Workspace:Refresh:WeekMoved", "owner", w.ownerID, "zone", view.DisplayZone, "week_start", view.Week.Start)
	}
}

func (w *Workspace) refreshOnce(ctx context.Context) (view View, superseded, moved bool, err error) {
	w.mu.Lock()
	w.fetchSeq++
	seq := w.fetchSeq
	attendees := w.attendeesLocked()
	window := w.weekLocked()
	w.mu.Unlock()

	result := &entity.FetchResult{}
	if len(attendees) > 0 {
		result, err = w.fetcher.FetchEvents(ctx, w.ownerID, attendees, window)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if seq != w.fetchSeq {
		logger.Debug("Workspace:Refresh:Superseded", "owner", w.ownerID, "seq", seq, "latest", w.fetchSeq)
		return w.view, true, false, nil
	}
	if err != nil {
		logger.Warn("Workspace:Refresh:FetchFailed", "owner", w.ownerID, "code", errors.CodeOf(err), "error", err)
		return w.view, false, false, err
	}

	if result == nil {
		result = &entity.FetchResult{}
	}
	w.busy.Replace(attendees, window, result)
	if len(result.Failed) > 0 {
		logger.Info("Workspace:Refresh:PartialFetch", "owner", w.ownerID, "missing", result.Failed)
	}
	w.deriveDisplayZoneLocked()
	w.commitLocked()
	return w.view, false, w.needsFetchLocked(), nil
}

// NeedsRefresh reports whether part of the visible week, or one of the
// current attendees, has not been read from the calendar yet.
func (w *Workspace) NeedsRefresh() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.needsFetchLocked()
}

// Navigate moves the visible week to the one containing date. In-flight reads
// for the old week become stale.
func (w *Workspace) Navigate(date time.Time) View {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.currentDate = date
	w.fetchSeq++
	w.commitLocked()
	return w.view
}

// Step moves the visible week by the given number of weeks.
func (w *Workspace) Step(weeks int) View {
	w.mu.Lock()
	defer w.mu.Unlock()
	d := w.currentDate.In(w.displayZone)
	w.currentDate = time.Date(d.Year(), d.Month(), d.Day()+7*weeks, d.Hour(), d.Minute(), 0, 0, w.displayZone)
	w.fetchSeq++
	w.commitLocked()
	return w.view
}

func (w *Workspace) SetPeople(emails []string) View {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.people = normalizeEmails(emails)
	w.fetchSeq++
	w.commitLocked()
	return w.view
}

func (w *Workspace) SetIncludeSelf(include bool) View {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.includeSelf = include
	w.fetchSeq++
	w.commitLocked()
	return w.view
}

func (w *Workspace) SetShareZone(zoneID string) (View, error) {
	loc, err := LoadZone(zoneID)
	if err != nil {
		return View{}, errors.NewAppError(errors.ErrInvalidInput, "unknown time zone", err)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.shareZone = loc
	w.commitLocked()
	return w.view, nil
}

// SetBaseZone sets the zone the calendar falls back to when fetched events
// carry none. If that moves the visible week, NeedsRefresh reports true
// until the new week is read.
func (w *Workspace) SetBaseZone(zoneID string) (View, error) {
	loc, err := LoadZone(zoneID)
	if err != nil {
		return View{}, errors.NewAppError(errors.ErrInvalidInput, "unknown time zone", err)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.baseZone = loc
	w.deriveDisplayZoneLocked()
	if w.needsFetchLocked() {
		w.fetchSeq++
	}
	w.commitLocked()
	return w.view, nil
}

func (w *Workspace) CreateSlot(interval entity.Interval) (entity.AvailabilitySlot, View) {
	w.mu.Lock()
	defer w.mu.Unlock()
	slot := w.store.Create(interval)
	w.commitLocked()
	return slot, w.view
}

// UpdateSlot moves or resizes a slot. An unknown id changes nothing and
// reports false.
func (w *Workspace) UpdateSlot(id string, interval entity.Interval) (View, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.store.Update(id, interval); err != nil {
		logger.Debug("Workspace:UpdateSlot:NotFound", "owner", w.ownerID, "slot_id", id)
		return w.view, false
	}
	w.commitLocked()
	return w.view, true
}

// RemoveSlot deletes a slot. An unknown id changes nothing and reports false.
func (w *Workspace) RemoveSlot(id string) (View, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.store.Remove(id); err != nil {
		logger.Debug("Workspace:RemoveSlot:NotFound", "owner", w.ownerID, "slot_id", id)
		return w.view, false
	}
	w.commitLocked()
	return w.view, true
}

func (w *Workspace) RemoveAllSlots() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.store.RemoveAll()
	w.commitLocked()
	return w.view
}

// AutoPopulate replaces all slots with the free time found in the visible
// week. Existing slots are only discarded when confirm is set. It refuses to
// run while part of the week is unread, since unread time is not free time.
func (w *Workspace) AutoPopulate(policy entity.WorkingHoursPolicy, confirm bool) ([]entity.AvailabilitySlot, View, error) {
	if err := policy.Validate(); err != nil {
		return nil, View{}, errors.NewAppError(errors.ErrInvalidInput, err.Error(), err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.store.Len() > 0 && !confirm {
		return nil, w.view, errors.NewAppError(errors.ErrConfirmationRequired,
			"auto-populate replaces the existing availability slots; resend with confirm=true", nil)
	}
	if w.needsFetchLocked() {
		return nil, w.view, errors.NewAppError(errors.ErrTransportFailure,
			"busy time for this week has not been read; refresh and try again", nil)
	}

	detector := NewDetector(policy)
	free := detector.Detect(w.weekLocked(), w.busy.Intervals(policy.AllDayBlocks))
	slots := w.store.Replace(free)
	w.settings.Policy = policy
	w.commitLocked()

	logger.Info("Workspace:AutoPopulate:Done", "owner", w.ownerID, "slots", len(slots))
	return slots, w.view, nil
}

func (w *Workspace) attendeesLocked() []string {
	var out []string
	if w.includeSelf && w.ownerEmail != "" {
		out = append(out, w.ownerEmail)
	}
	for _, p := range w.people {
		if p != w.ownerEmail {
			out = append(out, p)
		}
	}
	return out
}

func (w *Workspace) weekLocked() entity.Interval {
	return WeekWindow(w.currentDate, w.displayZone, w.settings.WeekStart)
}

func (w *Workspace) needsFetchLocked() bool {
	attendees := w.attendeesLocked()
	if len(attendees) == 0 {
		return false
	}
	if !slices.Equal(w.busy.Attendees(), attendees) {
		return true
	}
	fetched, week := w.busy.Window(), w.weekLocked()
	return fetched.Start.After(week.Start) || fetched.End.Before(week.End)
}

// deriveDisplayZoneLocked follows the zone of the first fetched event that
// names one.
func (w *Workspace) deriveDisplayZoneLocked() {
	w.displayZone = w.baseZone
	for _, ev := range w.busy.Events() {
		if ev.TimeZone == "" {
			continue
		}
		if loc, err := LoadZone(ev.TimeZone); err == nil {
			w.displayZone = loc
		}
		return
	}
}

func (w *Workspace) commitLocked() {
	week := w.weekLocked()
	slots := w.store.List()
	attendees := w.attendeesLocked()

	ref := week.Start
	w.view = View{
		Week:             week,
		DisplayZone:      w.displayZone.String(),
		ShareZone:        w.shareZone.String(),
		ShareZoneLabel:   ZoneLabel(w.shareZone, ref),
		People:           append([]string(nil), w.people...),
		IncludeSelf:      w.includeSelf,
		Attendees:        attendees,
		MissingAttendees: w.busy.Failed(),
		Slots:            slots,
		Timeline:         Compose(slots, w.busy.Events(), w.colors),
		Legend:           Legend(w.ownerEmail, attendees, w.colors),
		AvailabilityText: FormatAvailability(slots, w.shareZone, ref),
		Policy:           w.settings.Policy,
	}
}

func normalizeEmails(emails []string) []string {
	seen := make(map[string]bool, len(emails))
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" || seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}

package service

import (
	"context"
	"time"

	"slotshare/core/constants"
	"slotshare/core/errors"
	"slotshare/core/logger"
	authDto "slotshare/modules/auth/dto"
	"slotshare/modules/availability/entity"

	"github.com/google/uuid"
)

// SessionProvider reports whether the owner's calendar credential is usable.
type SessionProvider interface {
	Session(ctx context.Context, userID uuid.UUID) (*authDto.SessionInfo, *errors.AppError)
}

// Owner identifies the signed-in user. Zone is the client's local zone, used
// as the share zone when the workspace is first created.
type Owner struct {
	UserID uuid.UUID
	Email  string
	Zone   string
}

type AvailabilityServiceInterface interface {
	Snapshot(ctx context.Context, owner Owner) View
	Refresh(ctx context.Context, owner Owner) (View, *errors.AppError)
	NavigateTo(ctx context.Context, owner Owner, date time.Time) (View, *errors.AppError)
	StepWeek(ctx context.Context, owner Owner, weeks int) (View, *errors.AppError)
	SetPeople(ctx context.Context, owner Owner, emails []string) (View, *errors.AppError)
	SetIncludeSelf(ctx context.Context, owner Owner, include bool) (View, *errors.AppError)
	SetShareTimezone(ctx context.Context, owner Owner, zoneID string) (View, *errors.AppError)
	SetCalendarTimezone(ctx context.Context, owner Owner, zoneID string) (View, *errors.AppError)
	CreateSlot(ctx context.Context, owner Owner, interval entity.Interval) (entity.AvailabilitySlot, View)
	UpdateSlot(ctx context.Context, owner Owner, id string, interval entity.Interval) (View, bool)
	DeleteSlot(ctx context.Context, owner Owner, id string) (View, bool)
	DeleteAllSlots(ctx context.Context, owner Owner) View
	AutoPopulate(ctx context.Context, owner Owner, policy entity.WorkingHoursPolicy, confirm bool) ([]entity.AvailabilitySlot, View, *errors.AppError)
	ExportICS(ctx context.Context, owner Owner) ([]byte, *errors.AppError)
	Share(ctx context.Context, owner Owner) (*ShareLink, *errors.AppError)
	DefaultPolicy() entity.WorkingHoursPolicy
	EndSession(ownerID uuid.UUID)
	EvictIdle(ctx context.Context) int
}

type AvailabilityService struct {
	registry  *Registry
	sessions  SessionProvider
	publisher *SharePublisher
	settings  Settings
	idleTTL   time.Duration
	now       func() time.Time
}

func NewAvailabilityService(fetcher EventFetcher, sessions SessionProvider, publisher *SharePublisher, settings Settings, idleTTL time.Duration) *AvailabilityService {
	s := &AvailabilityService{
		sessions:  sessions,
		publisher: publisher,
		settings:  settings,
		idleTTL:   idleTTL,
		now:       time.Now,
	}
	s.registry = NewRegistry(func(owner Owner) *Workspace {
		return NewWorkspace(owner.UserID, owner.Email, fetcher, settings, s.now(), owner.Zone)
	})
	return s
}

func (s *AvailabilityService) workspace(owner Owner) *Workspace {
	return s.registry.Get(owner)
}

func (s *AvailabilityService) DefaultPolicy() entity.WorkingHoursPolicy {
	return s.settings.Policy
}

func (s *AvailabilityService) Snapshot(ctx context.Context, owner Owner) View {
	return s.workspace(owner).Snapshot()
}

// refresh re-reads busy time unless the stored Google credential is known to
// be invalid, in which case the caller must sign in again.
func (s *AvailabilityService) refresh(ctx context.Context, ws *Workspace) (View, *errors.AppError) {
	session, appErr := s.sessions.Session(ctx, ws.OwnerID())
	if appErr != nil {
		return ws.Snapshot(), appErr
	}
	if !session.Authenticated || !session.CredentialValid {
		return ws.Snapshot(), errors.NewAppError(errors.ErrAuthExpired, "Google credential expired. Please sign in again", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DefaultTimeout)
	defer cancel()

	view, superseded, err := ws.Refresh(ctx)
	if err != nil {
		var ae *errors.AppError
		if errors.As(err, &ae) {
			return view, ae
		}
		return view, errors.NewAppError(errors.ErrTransportFailure, "failed to read calendars", err)
	}
	if superseded {
		logger.Debug("AvailabilityService:Refresh:Superseded", "owner", ws.OwnerID())
	}
	return view, nil
}

func (s *AvailabilityService) Refresh(ctx context.Context, owner Owner) (View, *errors.AppError) {
	return s.refresh(ctx, s.workspace(owner))
}

func (s *AvailabilityService) NavigateTo(ctx context.Context, owner Owner, date time.Time) (View, *errors.AppError) {
	ws := s.workspace(owner)
	ws.Navigate(date)
	return s.refresh(ctx, ws)
}

func (s *AvailabilityService) StepWeek(ctx context.Context, owner Owner, weeks int) (View, *errors.AppError) {
	ws := s.workspace(owner)
	if weeks == 0 {
		ws.Navigate(s.now())
	} else {
		ws.Step(weeks)
	}
	return s.refresh(ctx, ws)
}

func (s *AvailabilityService) SetPeople(ctx context.Context, owner Owner, emails []string) (View, *errors.AppError) {
	ws := s.workspace(owner)
	ws.SetPeople(emails)
	return s.refresh(ctx, ws)
}

func (s *AvailabilityService) SetIncludeSelf(ctx context.Context, owner Owner, include bool) (View, *errors.AppError) {
	ws := s.workspace(owner)
	ws.SetIncludeSelf(include)
	return s.refresh(ctx, ws)
}

func (s *AvailabilityService) SetShareTimezone(ctx context.Context, owner Owner, zoneID string) (View, *errors.AppError) {
	view, err := s.workspace(owner).SetShareZone(zoneID)
	if err != nil {
		return view, toAppError(err)
	}
	return view, nil
}

// SetCalendarTimezone re-reads busy time when the new zone moves the visible
// week.
func (s *AvailabilityService) SetCalendarTimezone(ctx context.Context, owner Owner, zoneID string) (View, *errors.AppError) {
	ws := s.workspace(owner)
	view, err := ws.SetBaseZone(zoneID)
	if err != nil {
		return view, toAppError(err)
	}
	if ws.NeedsRefresh() {
		return s.refresh(ctx, ws)
	}
	return view, nil
}

func (s *AvailabilityService) CreateSlot(ctx context.Context, owner Owner, interval entity.Interval) (entity.AvailabilitySlot, View) {
	return s.workspace(owner).CreateSlot(interval)
}

func (s *AvailabilityService) UpdateSlot(ctx context.Context, owner Owner, id string, interval entity.Interval) (View, bool) {
	return s.workspace(owner).UpdateSlot(id, interval)
}

func (s *AvailabilityService) DeleteSlot(ctx context.Context, owner Owner, id string) (View, bool) {
	return s.workspace(owner).RemoveSlot(id)
}

func (s *AvailabilityService) DeleteAllSlots(ctx context.Context, owner Owner) View {
	return s.workspace(owner).RemoveAllSlots()
}

// AutoPopulate reads the visible week first if any of it is still unread.
func (s *AvailabilityService) AutoPopulate(ctx context.Context, owner Owner, policy entity.WorkingHoursPolicy, confirm bool) ([]entity.AvailabilitySlot, View, *errors.AppError) {
	ws := s.workspace(owner)
	if ws.NeedsRefresh() {
		if view, appErr := s.refresh(ctx, ws); appErr != nil {
			return nil, view, appErr
		}
	}
	slots, view, err := ws.AutoPopulate(policy, confirm)
	if err != nil {
		return nil, view, toAppError(err)
	}
	return slots, view, nil
}

func (s *AvailabilityService) ExportICS(ctx context.Context, owner Owner) ([]byte, *errors.AppError) {
	return s.buildICS(s.workspace(owner).Snapshot(), owner)
}

func (s *AvailabilityService) buildICS(view View, owner Owner) ([]byte, *errors.AppError) {
	data, err := BuildICS(view.Slots, owner.Email, s.now())
	if err == ErrNothingToExport {
		return nil, errors.NewAppError(errors.ErrNotFound, err.Error(), nil)
	}
	if err != nil {
		logger.Error("AvailabilityService:ExportICS:BuildICS:Error", "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to build calendar file", err)
	}
	return data, nil
}

// Share publishes the text and the calendar file built from one snapshot.
func (s *AvailabilityService) Share(ctx context.Context, owner Owner) (*ShareLink, *errors.AppError) {
	if s.publisher == nil {
		return nil, errors.NewAppError(errors.ErrFeatureDisabled, "share links are not configured", nil)
	}

	view := s.workspace(owner).Snapshot()
	ics, appErr := s.buildICS(view, owner)
	if appErr != nil {
		return nil, appErr
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DefaultTimeout)
	defer cancel()

	link, err := s.publisher.Publish(ctx, owner.Email, view.Week.Start, view.AvailabilityText, ics)
	if err != nil {
		logger.Error("AvailabilityService:Share:Publish:Error", "error", err, "owner", owner.UserID)
		return nil, errors.NewAppError(errors.ErrTransportFailure, "failed to publish availability", err)
	}
	return link, nil
}

func (s *AvailabilityService) EndSession(ownerID uuid.UUID) {
	s.registry.Drop(ownerID)
}

func (s *AvailabilityService) EvictIdle(ctx context.Context) int {
	n := s.registry.EvictIdle(s.idleTTL)
	if n > 0 {
		logger.Info("AvailabilityService:EvictIdle", "evicted", n, "remaining", s.registry.Len())
	}
	return n
}

func toAppError(err error) *errors.AppError {
	var ae *errors.AppError
	if errors.As(err, &ae) {
		return ae
	}
	return errors.NewAppError(errors.ErrInternalServer, err.Error(), err)
}

package service

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"slotshare/core/cache"
	"slotshare/core/config"
	"slotshare/core/constants"
	"slotshare/core/errors"
	"slotshare/core/logger"
	"slotshare/modules/directory/entity"
	"slotshare/modules/directory/mapper"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	people "google.golang.org/api/people/v1"
)

const (
	readMask     = "names,emailAddresses"
	sourceDomain = "DIRECTORY_SOURCE_TYPE_DOMAIN_PROFILE"
	mergeContact = "DIRECTORY_MERGE_SOURCE_TYPE_CONTACT"
)

// TokenProvider hands out Google credentials for a signed-in user.
type TokenProvider interface {
	TokenSource(ctx context.Context, userID uuid.UUID) (oauth2.TokenSource, *errors.AppError)
	MarkCredentialInvalid(ctx context.Context, userID uuid.UUID)
}

type DirectoryServiceInterface interface {
	Search(ctx context.Context, userID uuid.UUID, query string) (*entity.SearchResult, *errors.AppError)
	Forget(userID uuid.UUID)
}

type DirectoryService struct {
	tokens    TokenProvider
	cache     cache.Cache
	quiet     time.Duration
	minLength int
	pageSize  int64
	cacheTTL  time.Duration

	// extra client options, set by tests
	options []option.ClientOption

	mu         sync.Mutex
	debouncers map[uuid.UUID]*Debouncer
}

func NewDirectoryService(tokens TokenProvider, cache cache.Cache, cfg config.DirectoryConfig) *DirectoryService {
	s := &DirectoryService{
		tokens:     tokens,
		cache:      cache,
		quiet:      cfg.Debounce(),
		minLength:  cfg.MinQueryLength,
		pageSize:   cfg.PageSize,
		cacheTTL:   cfg.CacheTTL,
		debouncers: make(map[uuid.UUID]*Debouncer),
	}
	if s.minLength <= 0 {
		s.minLength = 3
	}
	if s.pageSize <= 0 {
		s.pageSize = 30
	}
	return s
}

func (s *DirectoryService) debouncer(userID uuid.UUID) *Debouncer {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.debouncers[userID]
	if !ok {
		d = NewDebouncer(s.quiet)
		s.debouncers[userID] = d
	}
	return d
}

// Forget drops the user's pending searches. Called on sign-out.
func (s *DirectoryService) Forget(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.debouncers, userID)
}

// Search looks up people in the user's domain directory. Queries shorter
// than the minimum length return no people without calling Google. A query
// overtaken by a newer one from the same user returns Superseded and no
// people.
func (s *DirectoryService) Search(ctx context.Context, userID uuid.UUID, query string) (*entity.SearchResult, *errors.AppError) {
	query = strings.TrimSpace(query)
	d := s.debouncer(userID)
	ticket := d.Issue(query)

	if utf8.RuneCountInString(query) < s.minLength {
		d.Skip(ticket)
		return &entity.SearchResult{People: []entity.Person{}}, nil
	}

	result, fired, err := d.Await(ctx, ticket, func(ctx context.Context, q string) (*entity.SearchResult, error) {
		return s.lookup(ctx, userID, q)
	})
	if !fired && err == nil {
		logger.Debug("DirectoryService:Search:Superseded", "user_id", userID, "ticket", ticket.ID)
		return &entity.SearchResult{People: []entity.Person{}, Superseded: true}, nil
	}
	if err != nil {
		var appErr *errors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, errors.NewAppError(errors.ErrTransportFailure, "failed to search directory", err)
	}
	return result, nil
}

func (s *DirectoryService) cacheKey(userID uuid.UUID, query string) string {
	return constants.RedisKeyDirectorySearch + userID.String() + ":" + strings.ToLower(query)
}

func (s *DirectoryService) lookup(ctx context.Context, userID uuid.UUID, query string) (*entity.SearchResult, error) {
	key := s.cacheKey(userID, query)
	if s.cache != nil {
		var cached entity.SearchResult
		hit, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			logger.Warn("DirectoryService:Search:CacheGet:Error", "error", err)
		}
		if hit {
			return &cached, nil
		}
	}

	result, err := s.searchPeople(ctx, userID, query)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && s.cacheTTL > 0 {
		if err := s.cache.SetJSON(ctx, key, result, s.cacheTTL); err != nil {
			logger.Warn("DirectoryService:Search:CacheSet:Error", "error", err)
		}
	}
	return result, nil
}

func (s *DirectoryService) searchPeople(ctx context.Context, userID uuid.UUID, query string) (*entity.SearchResult, error) {
	ts, appErr := s.tokens.TokenSource(ctx, userID)
	if appErr != nil {
		return nil, appErr
	}

	opts := append([]option.ClientOption{option.WithTokenSource(ts)}, s.options...)
	svc, err := people.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrTransportFailure, "failed to create people client", err)
	}

	resp, err := svc.People.SearchDirectoryPeople().
		Query(query).
		ReadMask(readMask).
		Sources(sourceDomain).
		MergeSources(mergeContact).
		PageSize(s.pageSize).
		Context(ctx).
		Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.Is(err, errors.ErrAuthExpired) || (errors.As(err, &apiErr) && apiErr.Code == http.StatusUnauthorized) {
			s.tokens.MarkCredentialInvalid(ctx, userID)
			return nil, errors.NewAppError(errors.ErrAuthExpired, "Google credential expired. Please sign in again", err)
		}
		logger.Error("DirectoryService:Search:SearchDirectoryPeople:Error", "error", err, "user_id", userID)
		return nil, errors.NewAppError(errors.ErrTransportFailure, "failed to search directory", err)
	}

	result := &entity.SearchResult{
		People:        make([]entity.Person, 0, len(resp.People)),
		NextPageToken: resp.NextPageToken,
	}
	for _, p := range resp.People {
		if p == nil {
			continue
		}
		result.People = append(result.People, mapper.ToPerson(p))
	}

	logger.Info("DirectoryService:Search:Found", "user_id", userID, "count", len(result.People))
	return result, nil
}

package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"slotshare/core/cache"
	"slotshare/core/config"
	"slotshare/core/errors"
	"slotshare/modules/directory/entity"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
)

type fakeTokens struct {
	marked atomic.Int32
}

func (f *fakeTokens) TokenSource(context.Context, uuid.UUID) (oauth2.TokenSource, *errors.AppError) {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "access"}), nil
}

func (f *fakeTokens) MarkCredentialInvalid(context.Context, uuid.UUID) {
	f.marked.Add(1)
}

type peopleStub struct {
	status int
	hits   atomic.Int32
	// onRequest runs before the response is written.
	onRequest func()
}

func (s *peopleStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.hits.Add(1)
	if s.onRequest != nil {
		s.onRequest()
	}
	w.Header().Set("Content-Type", "application/json")
	if s.status != 0 {
		w.WriteHeader(s.status)
		json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"code": s.status, "message": http.StatusText(s.status)}})
		return
	}

	q := r.URL.Query()
	if r.URL.Path != "/v1/people:searchDirectoryPeople" ||
		q.Get("readMask") != readMask ||
		q.Get("sources") != sourceDomain ||
		q.Get("mergeSources") != mergeContact ||
		q.Get("pageSize") != "30" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	json.NewEncoder(w).Encode(map[string]any{
		"people": []any{
			map[string]any{
				"names":          []any{map[string]any{"displayName": "Alice Smith"}},
				"emailAddresses": []any{map[string]any{"value": "alice@x.com"}},
			},
			map[string]any{
				"emailAddresses": []any{map[string]any{"value": "nameless@x.com"}},
			},
			map[string]any{
				"names": []any{map[string]any{"displayName": "No Address"}},
			},
		},
		"nextPageToken": "next",
	})
}

func newTestDirectoryService(t *testing.T, stub *peopleStub, tokens *fakeTokens) *DirectoryService {
	t.Helper()
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	svc := NewDirectoryService(tokens, cache.NewMemoryCache(), config.DirectoryConfig{
		MinQueryLength: 3,
		PageSize:       30,
		CacheTTL:       time.Minute,
	})
	svc.options = []option.ClientOption{option.WithEndpoint(srv.URL + "/"), option.WithHTTPClient(srv.Client())}
	return svc
}

func TestSearchShortQuery(t *testing.T) {
	stub := &peopleStub{}
	svc := newTestDirectoryService(t, stub, &fakeTokens{})

	for _, q := range []string{"", "al", "  al  "} {
		result, appErr := svc.Search(context.Background(), uuid.New(), q)
		if appErr != nil {
			t.Fatal(appErr)
		}
		if len(result.People) != 0 || result.Superseded {
			t.Errorf("%q: result = %+v", q, result)
		}
	}
	if stub.hits.Load() != 0 {
		t.Error("short queries must not reach Google")
	}
}

func TestSearchMapsDirectoryPeople(t *testing.T) {
	stub := &peopleStub{}
	svc := newTestDirectoryService(t, stub, &fakeTokens{})
	userID := uuid.New()

	result, appErr := svc.Search(context.Background(), userID, "ali")
	if appErr != nil {
		t.Fatal(appErr)
	}
	want := []entity.Person{
		{DisplayName: "Alice Smith", Email: "alice@x.com"},
		{DisplayName: entity.NoName, Email: "nameless@x.com"},
		{DisplayName: "No Address", Email: entity.NoEmail},
	}
	if len(result.People) != len(want) {
		t.Fatalf("people = %+v", result.People)
	}
	for i := range want {
		if result.People[i] != want[i] {
			t.Errorf("people[%d] = %+v, want %+v", i, result.People[i], want[i])
		}
	}
	if result.NextPageToken != "next" {
		t.Errorf("next page token = %q", result.NextPageToken)
	}

	if _, appErr := svc.Search(context.Background(), userID, "ALI"); appErr != nil {
		t.Fatal(appErr)
	}
	if stub.hits.Load() != 1 {
		t.Errorf("hits = %d, repeated query should be served from cache", stub.hits.Load())
	}
}

func TestSearchSupersededWhileRunning(t *testing.T) {
	stub := &peopleStub{}
	svc := newTestDirectoryService(t, stub, &fakeTokens{})
	userID := uuid.New()
	stub.onRequest = func() { svc.debouncer(userID).Issue("alicia") }

	result, appErr := svc.Search(context.Background(), userID, "alic")
	if appErr != nil {
		t.Fatal(appErr)
	}
	if !result.Superseded || len(result.People) != 0 {
		t.Errorf("result = %+v", result)
	}
}

func TestSearchErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantCode   errors.ErrorCode
		wantMarked int32
	}{
		{name: "credential rejected", status: http.StatusUnauthorized, wantCode: errors.ErrAuthExpired, wantMarked: 1},
		{name: "server error", status: http.StatusInternalServerError, wantCode: errors.ErrTransportFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := &fakeTokens{}
			svc := newTestDirectoryService(t, &peopleStub{status: tt.status}, tokens)

			_, appErr := svc.Search(context.Background(), uuid.New(), "alice")
			if appErr == nil || appErr.Code != tt.wantCode {
				t.Fatalf("err = %v, want %s", appErr, tt.wantCode)
			}
			if tokens.marked.Load() != tt.wantMarked {
				t.Errorf("marked = %d", tokens.marked.Load())
			}
		})
	}
}

func TestForgetDropsDebouncer(t *testing.T) {
	svc := NewDirectoryService(&fakeTokens{}, nil, config.DirectoryConfig{})
	userID := uuid.New()
	first := svc.debouncer(userID)
	svc.Forget(userID)
	if svc.debouncer(userID) == first {
		t.Error("Forget should discard the user's debouncer")
	}
}

package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type memoryStore struct {
	objects map[string][]byte
	types   map[string]string
	putErr  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memoryStore) Put(_ context.Context, key, contentType string, body []byte) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.objects[key] = body
	m.types[key] = contentType
	return nil
}

func (m *memoryStore) PresignGet(_ context.Context, key string, ttl time.Duration) (string, error) {
	return "https://bucket.example/" + key + "?ttl=" + ttl.String(), nil
}

func TestShareKey(t *testing.T) {
	got := shareKey("Jane.Doe@x.com", utc(2024, 6, 2, 0, 0), "k1")
	if got != "availability/jane-doe/2024-06-02-k1" {
		t.Errorf("shareKey = %q", got)
	}
}

func TestPublish(t *testing.T) {
	store := newMemoryStore()
	p := NewSharePublisher(store, time.Hour)
	p.now = func() time.Time { return utc(2024, 6, 1, 0, 0) }

	link, err := p.Publish(context.Background(), "me@x.com", utc(2024, 6, 2, 0, 0), "Availability (UTC (UTC)):", []byte("BEGIN:VCALENDAR"))
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(store.objects) != 2 {
		t.Fatalf("stored %d objects", len(store.objects))
	}
	if !strings.HasSuffix(strings.SplitN(link.TextURL, "?", 2)[0], ".txt") ||
		!strings.HasSuffix(strings.SplitN(link.ICSURL, "?", 2)[0], ".ics") {
		t.Errorf("links = %+v", link)
	}
	if !link.ExpiresAt.Equal(utc(2024, 6, 1, 1, 0)) {
		t.Errorf("expires = %v", link.ExpiresAt)
	}
	for key, ct := range store.types {
		if strings.HasSuffix(key, ".ics") && !strings.HasPrefix(ct, "text/calendar") {
			t.Errorf("%s content type = %q", key, ct)
		}
	}
}

func TestPublishStoreFailure(t *testing.T) {
	store := newMemoryStore()
	store.putErr = errors.New("bucket gone")
	p := NewSharePublisher(store, time.Hour)
	if _, err := p.Publish(context.Background(), "me@x.com", utc(2024, 6, 2, 0, 0), "x", nil); err == nil {
		t.Error("expected store error")
	}
}

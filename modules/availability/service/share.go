package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"slotshare/core/storage"
	"slotshare/core/utils"

	"github.com/gosimple/slug"
)

type ShareLink struct {
	TextURL   string
	ICSURL    string
	ExpiresAt time.Time
}

// SharePublisher uploads a rendered availability block and its iCalendar
// twin, then hands back time-limited links to both.
type SharePublisher struct {
	store storage.ObjectStore
	ttl   time.Duration
	now   func() time.Time
}

func NewSharePublisher(store storage.ObjectStore, ttl time.Duration) *SharePublisher {
	return &SharePublisher{store: store, ttl: ttl, now: time.Now}
}

func shareKey(ownerEmail string, weekStart time.Time, id string) string {
	local := ownerEmail
	if at := strings.IndexByte(ownerEmail, '@'); at > 0 {
		local = ownerEmail[:at]
	}
	return fmt.Sprintf("availability/%s/%s-%s", slug.Make(local), weekStart.Format("2006-01-02"), id)
}

func (p *SharePublisher) Publish(ctx context.Context, ownerEmail string, weekStart time.Time, text string, ics []byte) (*ShareLink, error) {
	base := shareKey(ownerEmail, weekStart, utils.GenerateIDOfLength(8))

	if err := p.store.Put(ctx, base+".txt", "text/plain; charset=utf-8", []byte(text)); err != nil {
		return nil, err
	}
	if err := p.store.Put(ctx, base+".ics", "text/calendar; charset=utf-8", ics); err != nil {
		return nil, err
	}

	textURL, err := p.store.PresignGet(ctx, base+".txt", p.ttl)
	if err != nil {
		return nil, err
	}
	icsURL, err := p.store.PresignGet(ctx, base+".ics", p.ttl)
	if err != nil {
		return nil, err
	}

	return &ShareLink{
		TextURL:   textURL,
		ICSURL:    icsURL,
		ExpiresAt: p.now().Add(p.ttl),
	}, nil
}

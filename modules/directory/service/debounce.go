package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"slotshare/modules/directory/entity"
)

type DebounceState int

const (
	StateIdle DebounceState = iota
	StatePending
	StateFired
	StateSuperseded
)

func (s DebounceState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateFired:
		return "fired"
	case StateSuperseded:
		return "superseded"
	default:
		return fmt.Sprintf("DebounceState(%d)", int(s))
	}
}

// Ticket identifies one issued query.
type Ticket struct {
	ID       uint64
	Query    string
	Deadline time.Time
}

type SearchFunc func(ctx context.Context, query string) (*entity.SearchResult, error)

// Debouncer holds back a query until no newer one has been issued for the
// quiet period. Only the most recently issued query may fire, and its
// results are dropped if another query is issued while the search runs.
type Debouncer struct {
	quiet time.Duration
	now   func() time.Time

	mu     sync.Mutex
	latest uint64
	state  DebounceState
}

func NewDebouncer(quiet time.Duration) *Debouncer {
	return &Debouncer{quiet: quiet, now: time.Now}
}

// Issue records query as the latest one. Any pending or running query
// becomes superseded.
func (d *Debouncer) Issue(query string) Ticket {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.latest++
	d.state = StatePending
	return Ticket{ID: d.latest, Query: query, Deadline: d.now().Add(d.quiet)}
}

// Await waits out the quiet period for t and runs search if t is still the
// latest query. fired is false when t was superseded, before or during the
// search; the result is nil then.
func (d *Debouncer) Await(ctx context.Context, t Ticket, search SearchFunc) (result *entity.SearchResult, fired bool, err error) {
	if wait := t.Deadline.Sub(d.now()); wait > 0 {
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, false, ctx.Err()
		case <-timer.C:
		}
	}

	if !d.transition(t, StateFired) {
		return nil, false, nil
	}

	result, err = search(ctx, t.Query)

	if d.Status(t) == StateSuperseded {
		return nil, false, nil
	}
	return result, true, err
}

// Skip settles t without searching, for queries too short to look up.
func (d *Debouncer) Skip(t Ticket) {
	d.transition(t, StateIdle)
}

func (d *Debouncer) transition(t Ticket, to DebounceState) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t.ID != d.latest {
		return false
	}
	d.state = to
	return true
}

// Status reports where t stands. Any ticket older than the latest one is
// superseded.
func (d *Debouncer) Status(t Ticket) DebounceState {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t.ID != d.latest {
		return StateSuperseded
	}
	return d.state
}

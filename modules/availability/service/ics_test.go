package service

import (
	"bytes"
	"testing"
	"time"

	"slotshare/modules/availability/entity"

	"github.com/emersion/go-ical"
)

func TestBuildICS(t *testing.T) {
	slots := []entity.AvailabilitySlot{
		slot("abc", utc(2024, 6, 3, 9, 0), utc(2024, 6, 3, 10, 0)),
		slot("def", utc(2024, 6, 4, 13, 30), utc(2024, 6, 4, 14, 0)),
	}

	data, err := BuildICS(slots, "me@x.com", utc(2024, 6, 1, 8, 0))
	if err != nil {
		t.Fatalf("BuildICS: %v", err)
	}

	cal, err := ical.NewDecoder(bytes.NewReader(data)).Decode()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	events := cal.Events()
	if len(events) != 2 {
		t.Fatalf("got %d events", len(events))
	}

	for i, ev := range events {
		uid, _ := ev.Props.Text(ical.PropUID)
		if uid != slots[i].ID+"@slotshare" {
			t.Errorf("event %d uid = %q", i, uid)
		}
		summary, _ := ev.Props.Text(ical.PropSummary)
		if summary != entity.AvailableTitle {
			t.Errorf("event %d summary = %q", i, summary)
		}
		transp, _ := ev.Props.Text(ical.PropTransparency)
		if transp != "TRANSPARENT" {
			t.Errorf("event %d transparency = %q", i, transp)
		}
		start, err := ev.DateTimeStart(time.UTC)
		if err != nil || !start.Equal(slots[i].Interval.Start) {
			t.Errorf("event %d start = %v, %v", i, start, err)
		}
		end, err := ev.DateTimeEnd(time.UTC)
		if err != nil || !end.Equal(slots[i].Interval.End) {
			t.Errorf("event %d end = %v, %v", i, end, err)
		}
		if org := ev.Props.Get(ical.PropOrganizer); org == nil || org.Value != "mailto:me@x.com" {
			t.Errorf("event %d organizer = %+v", i, org)
		}
	}
}

func TestBuildICSEmpty(t *testing.T) {
	if _, err := BuildICS(nil, "me@x.com", utc(2024, 6, 1, 8, 0)); err != ErrNothingToExport {
		t.Errorf("err = %v, want ErrNothingToExport", err)
	}
}

package service

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"slotshare/modules/availability/entity"

	"github.com/emersion/go-ical"
)

var ErrNothingToExport = errors.New("no availability slots to export")

const icsProductID = "-//slotshare//availability//EN"

// BuildICS encodes slots as transparent VEVENTs so importing them does not
// mark the recipient busy.
func BuildICS(slots []entity.AvailabilitySlot, organizer string, stamp time.Time) ([]byte, error) {
	if len(slots) == 0 {
		return nil, ErrNothingToExport
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, icsProductID)

	for _, s := range slots {
		ev := ical.NewComponent(ical.CompEvent)
		ev.Props.SetText(ical.PropUID, s.ID+"@slotshare")
		ev.Props.SetText(ical.PropSummary, s.Title)
		ev.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
		ev.Props.SetDateTime(ical.PropDateTimeStart, s.Interval.Start.UTC())
		ev.Props.SetDateTime(ical.PropDateTimeEnd, s.Interval.End.UTC())
		ev.Props.SetText(ical.PropTransparency, "TRANSPARENT")
		if organizer != "" {
			p := ical.NewProp(ical.PropOrganizer)
			p.Value = "mailto:" + organizer
			ev.Props.Add(p)
		}
		cal.Children = append(cal.Children, ev)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("encode ics: %w", err)
	}
	return buf.Bytes(), nil
}

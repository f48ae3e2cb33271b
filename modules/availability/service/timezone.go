package service

import (
	"fmt"
	"sync"
	"time"
	_ "time/tzdata"
)

var commonZones = []string{
	"America/New_York",
	"America/Chicago",
	"America/Denver",
	"America/Los_Angeles",
	"America/Anchorage",
	"Pacific/Honolulu",
	"Europe/London",
	"Europe/Paris",
	"Asia/Tokyo",
	"Australia/Sydney",
}

var (
	selectableOnce  sync.Once
	selectableZones []string

	locations sync.Map // zone id -> *time.Location
)

// SelectableZones is the curated zone list followed by every fixed-offset
// Etc/GMT zone, west to east. Etc/GMT+N is N hours behind UTC.
func SelectableZones() []string {
	selectableOnce.Do(func() {
		zones := append([]string(nil), commonZones...)
		for n := 12; n >= 1; n-- {
			zones = append(zones, fmt.Sprintf("Etc/GMT+%d", n))
		}
		zones = append(zones, "Etc/GMT")
		for n := 1; n <= 14; n++ {
			zones = append(zones, fmt.Sprintf("Etc/GMT-%d", n))
		}
		selectableZones = zones
	})
	return append([]string(nil), selectableZones...)
}

func LoadZone(zoneID string) (*time.Location, error) {
	if loc, ok := locations.Load(zoneID); ok {
		return loc.(*time.Location), nil
	}
	loc, err := time.LoadLocation(zoneID)
	if err != nil {
		return nil, fmt.Errorf("unknown time zone %q: %w", zoneID, err)
	}
	locations.Store(zoneID, loc)
	return loc, nil
}

// AbbreviationFor returns the zone's abbreviation in effect at ref, which
// changes across daylight-saving transitions.
func AbbreviationFor(zoneID string, ref time.Time) (string, error) {
	loc, err := LoadZone(zoneID)
	if err != nil {
		return "", err
	}
	return abbreviation(loc, ref), nil
}

func abbreviation(loc *time.Location, ref time.Time) string {
	name, _ := ref.In(loc).Zone()
	return name
}

// ZoneLabel renders "EDT (America/New_York)".
func ZoneLabel(loc *time.Location, ref time.Time) string {
	return fmt.Sprintf("%s (%s)", abbreviation(loc, ref), loc.String())
}

package service

import (
	"testing"
	"time"
)

func TestSelectableZones(t *testing.T) {
	zones := SelectableZones()
	if len(zones) != 10+12+1+14 {
		t.Fatalf("got %d zones", len(zones))
	}
	if zones[0] != "America/New_York" {
		t.Errorf("curated zones come first, got %s", zones[0])
	}

	seen := map[string]bool{}
	for _, z := range zones {
		if seen[z] {
			t.Errorf("duplicate zone %s", z)
		}
		seen[z] = true
		if _, err := LoadZone(z); err != nil {
			t.Errorf("zone %s does not load: %v", z, err)
		}
	}
	for _, z := range []string{"Etc/GMT+12", "Etc/GMT", "Etc/GMT-14", "Pacific/Honolulu"} {
		if !seen[z] {
			t.Errorf("missing %s", z)
		}
	}

	zones[0] = "mutated"
	if SelectableZones()[0] != "America/New_York" {
		t.Error("SelectableZones must return a copy")
	}
}

func TestAbbreviationFor(t *testing.T) {
	tests := []struct {
		zone string
		ref  [3]int
		want string
	}{
		{"America/New_York", [3]int{2024, 6, 3}, "EDT"},
		{"America/New_York", [3]int{2024, 1, 3}, "EST"},
		{"Europe/London", [3]int{2024, 7, 1}, "BST"},
		{"UTC", [3]int{2024, 7, 1}, "UTC"},
		{"Etc/GMT+5", [3]int{2024, 7, 1}, "-05"},
	}
	for _, tt := range tests {
		ref := utc(tt.ref[0], time.Month(tt.ref[1]), tt.ref[2], 12, 0)
		got, err := AbbreviationFor(tt.zone, ref)
		if err != nil {
			t.Errorf("%s: %v", tt.zone, err)
			continue
		}
		if got != tt.want {
			t.Errorf("AbbreviationFor(%s, %v) = %q, want %q", tt.zone, ref, got, tt.want)
		}
	}

	if _, err := AbbreviationFor("Mars/Olympus", utc(2024, 1, 1, 0, 0)); err == nil {
		t.Error("unknown zone should fail")
	}
}

package service

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"slotshare/modules/availability/entity"
)

// Month names and the 12-hour clock come from fixed tables so output does not
// depend on the host locale.
var monthNames = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// Date is a calendar day with no zone attached.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func dateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

func (d Date) String() string {
	return fmt.Sprintf("%s %d, %d", monthNames[d.Month-1], d.Day, d.Year)
}

func clock12(t time.Time) string {
	h := t.Hour() % 12
	if h == 0 {
		h = 12
	}
	suffix := "AM"
	if t.Hour() >= 12 {
		suffix = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", h, t.Minute(), suffix)
}

type dayGroup struct {
	date  Date
	slots []entity.Interval
}

// FormatAvailability renders slots as a plain-text list grouped by calendar
// day in loc. The header abbreviation is taken at the earliest slot, or at
// fallbackRef when there are none.
func FormatAvailability(slots []entity.AvailabilitySlot, loc *time.Location, fallbackRef time.Time) string {
	sorted := make([]entity.AvailabilitySlot, len(slots))
	copy(sorted, slots)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Interval, sorted[j].Interval
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		if !a.End.Equal(b.End) {
			return a.End.Before(b.End)
		}
		return sorted[i].ID < sorted[j].ID
	})

	ref := fallbackRef
	if len(sorted) > 0 {
		ref = sorted[0].Interval.Start
	}

	var groups []*dayGroup
	byDate := make(map[Date]*dayGroup)
	for _, s := range sorted {
		local := s.Interval.In(loc)
		key := dateOf(local.Start)
		g, ok := byDate[key]
		if !ok {
			g = &dayGroup{date: key}
			byDate[key] = g
			groups = append(groups, g)
		}
		g.slots = append(g.slots, local)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].date.Before(groups[j].date)
	})

	var b strings.Builder
	fmt.Fprintf(&b, "Availability (%s):\n\n", ZoneLabel(loc, ref))
	for _, g := range groups {
		b.WriteString(g.date.String())
		b.WriteString("\n")
		for _, iv := range g.slots {
			fmt.Fprintf(&b, "• %s - %s\n", clock12(iv.Start), clock12(iv.End))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), " \t\r\n")
}

var dayHeading = regexp.MustCompile(`^([A-Z][a-z]+) (\d{1,2}), (\d{4})$`)

// ParseDayHeadings recovers the day headings of a formatted block in order.
func ParseDayHeadings(text string) []Date {
	var out []Date
	for _, line := range strings.Split(text, "\n") {
		m := dayHeading.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		month := monthIndex(m[1])
		if month == 0 {
			continue
		}
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		out = append(out, Date{Year: year, Month: month, Day: day})
	}
	return out
}

func monthIndex(name string) time.Month {
	for i, n := range monthNames {
		if n == name {
			return time.Month(i + 1)
		}
	}
	return 0
}

package service

import (
	"fmt"

	"slotshare/core/config"
	"slotshare/modules/availability/entity"
)

// SettingsFromConfig builds workspace defaults from the availability section.
func SettingsFromConfig(cfg config.AvailabilityConfig) (Settings, error) {
	start, err := entity.ParseTimeOfDay(cfg.DayStart)
	if err != nil {
		return Settings{}, fmt.Errorf("availability.day_start: %w", err)
	}
	end, err := entity.ParseTimeOfDay(cfg.DayEnd)
	if err != nil {
		return Settings{}, fmt.Errorf("availability.day_end: %w", err)
	}
	weekStart, err := ParseWeekday(cfg.WeekStart)
	if err != nil {
		return Settings{}, fmt.Errorf("availability.week_start: %w", err)
	}
	zone, err := LoadZone(cfg.DefaultTimezone)
	if err != nil {
		return Settings{}, fmt.Errorf("availability.default_timezone: %w", err)
	}

	policy := entity.WorkingHoursPolicy{
		DayStart:               start,
		DayEnd:                 end,
		IncludeWeekends:        cfg.IncludeWeekends,
		SlotGranularityMinutes: cfg.SlotGranularityMinutes,
		AllDayBlocks:           cfg.AllDayBlocks,
	}
	if err := policy.Validate(); err != nil {
		return Settings{}, err
	}

	return Settings{
		Policy:      policy,
		WeekStart:   weekStart,
		DefaultZone: zone,
	}, nil
}

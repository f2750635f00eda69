package parts

import (
	"time"

	"github.com/reelplan/reelplan/internal/types"
)

// ScheduleConfig fixes the publication cadence: one part per day at a
// fixed time of day, starting an offset after the base date.
type ScheduleConfig struct {
	BaseDate        time.Time
	PublishHour     int
	PublishMinute   int
	FirstPartOffset int // days
}

// Schedule stamps each part with its publish time: part i (0-indexed)
// goes out at base + offset + i days, time of day fixed. Mutates the
// parts in place and returns them for chaining.
func Schedule(parts []types.Part, cfg ScheduleConfig) []types.Part {
	base := cfg.BaseDate
	if base.IsZero() {
		base = time.Now().UTC()
	}
	for i := range parts {
		day := base.AddDate(0, 0, cfg.FirstPartOffset+i)
		parts[i].PublishAt = time.Date(
			day.Year(), day.Month(), day.Day(),
			cfg.PublishHour, cfg.PublishMinute, 0, 0, day.Location(),
		)
	}
	return parts
}

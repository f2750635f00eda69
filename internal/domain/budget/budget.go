// Package budget reconciles the selected clip set's total duration with
// the run's target: trimming overshoot, topping up shortfall.
package budget

import (
	"sort"

	"github.com/reelplan/reelplan/internal/types"
)

// Config tunes the reconciler. Zero values fall back to defaults.
type Config struct {
	TargetDuration float64
	// Tolerance is the acceptable overshoot factor on the target.
	Tolerance float64
	// TrimSlack: trimming only starts once the overshoot exceeds this
	// fraction of the target beyond tolerance.
	TrimSlack float64
	// MaxTrimFraction caps how much of a single clip may be trimmed.
	MaxTrimFraction float64
	// MinDurationGuard is the floor no clip may be trimmed below; clips
	// already under it are dropped.
	MinDurationGuard float64
	// HardClipCap bounds the clip count during top-up.
	HardClipCap int
	// MinClipDuration is the normal selection floor; top-up relaxes it
	// to 60%.
	MinClipDuration float64
	MinTimeGap      float64
	// TopUpCeiling bounds total duration during top-up.
	TopUpCeiling float64
}

func (c Config) withDefaults() Config {
	if c.Tolerance == 0 {
		c.Tolerance = 1.1
	}
	if c.TrimSlack == 0 {
		c.TrimSlack = 0.05
	}
	if c.MaxTrimFraction == 0 {
		c.MaxTrimFraction = 0.15
	}
	if c.MinDurationGuard == 0 {
		c.MinDurationGuard = 10
	}
	if c.HardClipCap == 0 {
		c.HardClipCap = 40
	}
	if c.MinClipDuration == 0 {
		c.MinClipDuration = 15
	}
	if c.MinTimeGap == 0 {
		c.MinTimeGap = 30
	}
	if c.TopUpCeiling == 0 {
		c.TopUpCeiling = 1.15
	}
	return c
}

// Reconcile trims or tops up the clip set so its total duration lands
// within tolerance of the target. pool is the broader pre-filter
// segment pool top-up draws from. Returns a fresh, chronologically
// ordered slice.
func Reconcile(clips []types.Clip, pool []types.Segment, cfg Config) []types.Clip {
	cfg = cfg.withDefaults()
	if cfg.TargetDuration <= 0 || len(clips) == 0 {
		return clips
	}

	out := make([]types.Clip, len(clips))
	copy(out, clips)

	ceiling := cfg.TargetDuration * cfg.Tolerance
	if types.TotalDuration(out) > ceiling+cfg.TrimSlack*cfg.TargetDuration {
		out = trim(out, ceiling, cfg)
	}
	if types.TotalDuration(out) < cfg.TargetDuration {
		out = topUp(out, pool, cfg)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// trim shaves the longest clips first until total duration fits under
// the ceiling. Per-clip trim is capped; clips under the guard floor are
// dropped rather than shortened further.
func trim(clips []types.Clip, ceiling float64, cfg Config) []types.Clip {
	var kept []types.Clip
	for _, c := range clips {
		if c.Duration < cfg.MinDurationGuard {
			continue
		}
		kept = append(kept, c)
	}

	// Longest first, so a handful of trims absorbs most of the overshoot.
	order := make([]int, len(kept))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		if kept[order[a]].Duration != kept[order[b]].Duration {
			return kept[order[a]].Duration > kept[order[b]].Duration
		}
		return kept[order[a]].Start < kept[order[b]].Start
	})

	overshoot := types.TotalDuration(kept) - ceiling
	for _, i := range order {
		if overshoot <= 0 {
			break
		}
		c := &kept[i]
		allowed := cfg.MaxTrimFraction * c.Duration
		if room := c.Duration - cfg.MinDurationGuard; room < allowed {
			allowed = room
		}
		if allowed > overshoot {
			allowed = overshoot
		}
		if allowed <= 0 {
			continue
		}
		c.End -= allowed
		c.Duration = c.End - c.Start
		overshoot -= allowed
	}
	return kept
}

// topUp pulls additional non-overlapping candidates from the broader
// pool, relaxing the minimum duration to 60% of normal, until the
// target is reached or a cap is hit. Never exceeds the top-up ceiling.
func topUp(clips []types.Clip, pool []types.Segment, cfg Config) []types.Clip {
	relaxedMin := 0.6 * cfg.MinClipDuration
	ceiling := cfg.TargetDuration * cfg.TopUpCeiling

	ranked := make([]types.Segment, len(pool))
	copy(ranked, pool)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].FinalScore != ranked[j].FinalScore {
			return ranked[i].FinalScore > ranked[j].FinalScore
		}
		return ranked[i].Start < ranked[j].Start
	})

	have := make(map[string]bool, len(clips))
	for _, c := range clips {
		have[c.ID] = true
	}

	total := types.TotalDuration(clips)
	for _, s := range ranked {
		if total >= cfg.TargetDuration || len(clips) >= cfg.HardClipCap {
			break
		}
		if have[s.ID] {
			continue
		}
		d := s.End - s.Start
		if d < relaxedMin {
			continue
		}
		if total+d > ceiling {
			continue
		}
		if overlapsAny(clips, s, cfg.MinTimeGap) {
			continue
		}
		clips = append(clips, types.Clip{
			ID:         s.ID,
			Start:      s.Start,
			End:        s.End,
			Duration:   d,
			Transcript: s.Transcript,
			Score:      s.FinalScore,
		})
		have[s.ID] = true
		total += d
	}
	return clips
}

func overlapsAny(clips []types.Clip, s types.Segment, gap float64) bool {
	for _, c := range clips {
		if s.Start < c.End+gap && s.End > c.Start-gap {
			return true
		}
	}
	return false
}

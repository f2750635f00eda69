// Package coverage re-shapes a clip set so no single region of the
// source timeline dominates the output.
package coverage

import (
	"sort"

	"github.com/reelplan/reelplan/internal/types"
)

// Config tunes the balancer. Zero values fall back to defaults.
type Config struct {
	PositionBins   int
	MaxClipsPerBin int
	// MinClipFloor is the hard lower bound on output size; diversity is
	// only a soft preference.
	MinClipFloor   int
	SourceDuration float64
}

func (c Config) withDefaults() Config {
	if c.PositionBins == 0 {
		c.PositionBins = 5
	}
	if c.MaxClipsPerBin == 0 {
		c.MaxClipsPerBin = 3
	}
	if c.MinClipFloor == 0 {
		c.MinClipFloor = 5
	}
	return c
}

// binCap scales the per-bin cap up for long sources so they do not get
// under-filled by the diversity constraint.
func binCap(base int, sourceDuration float64) int {
	switch {
	case sourceDuration >= 12*3600:
		if base < 8 {
			return 8
		}
	case sourceDuration >= 6*3600:
		if base < 6 {
			return 6
		}
	}
	return base
}

// clipFloor scales the minimum output size with source length.
func clipFloor(base int, sourceDuration float64) int {
	switch {
	case sourceDuration >= 12*3600:
		return base * 3
	case sourceDuration >= 6*3600:
		return base * 2
	}
	return base
}

// Balance partitions the timeline into equal windows, keeps only the
// highest-scoring clips per window, and backfills from the full input
// pool when the result would fall below the clip-count floor.
func Balance(clips []types.Clip, cfg Config) []types.Clip {
	cfg = cfg.withDefaults()
	if len(clips) == 0 || cfg.SourceDuration <= 0 {
		return clips
	}

	perBin := binCap(cfg.MaxClipsPerBin, cfg.SourceDuration)
	binWidth := cfg.SourceDuration / float64(cfg.PositionBins)

	bins := make([][]types.Clip, cfg.PositionBins)
	for _, c := range clips {
		b := int(c.Start / binWidth)
		if b >= cfg.PositionBins {
			b = cfg.PositionBins - 1
		}
		if b < 0 {
			b = 0
		}
		bins[b] = append(bins[b], c)
	}

	kept := make([]types.Clip, 0, len(clips))
	for _, bin := range bins {
		sort.SliceStable(bin, func(i, j int) bool {
			if bin[i].Score != bin[j].Score {
				return bin[i].Score > bin[j].Score
			}
			return bin[i].Start < bin[j].Start
		})
		if len(bin) > perBin {
			bin = bin[:perBin]
		}
		kept = append(kept, bin...)
	}

	floor := clipFloor(cfg.MinClipFloor, cfg.SourceDuration)
	if floor > len(clips) {
		floor = len(clips)
	}
	if len(kept) < floor {
		kept = backfill(kept, clips, floor)
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Start < kept[j].Start })
	return kept
}

// backfill re-ranks the entire pre-balance pool by score and takes the
// top clips until the floor is met. Minimum output size wins over
// coverage diversity.
func backfill(kept, pool []types.Clip, floor int) []types.Clip {
	have := make(map[string]bool, len(kept))
	for _, c := range kept {
		have[c.ID] = true
	}

	ranked := make([]types.Clip, len(pool))
	copy(ranked, pool)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Start < ranked[j].Start
	})

	for _, c := range ranked {
		if len(kept) >= floor {
			break
		}
		if have[c.ID] {
			continue
		}
		kept = append(kept, c)
		have[c.ID] = true
	}
	return kept
}

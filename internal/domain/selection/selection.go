// Package selection turns scored segments into a non-overlapping,
// temporally diverse, duration-bounded clip set.
package selection

import (
	"sort"
	"strings"

	"github.com/reelplan/reelplan/internal/types"
)

// Config tunes the selector. Zero values fall back to defaults.
type Config struct {
	// Segments shorter than this are merged with time-adjacent
	// neighbors before any filtering.
	MinSegmentDuration float64
	MergeGap           float64
	ScoreThreshold     float64
	// Percentile cut used when the score filter yields nothing.
	FallbackPercentile float64
	MinClipDuration    float64
	MaxClipDuration    float64
	TargetDuration     float64
	MaxClips           int
	MinTimeGap         float64
	// A neighbor must score at least this to be merged into a clip.
	MergeQualityFloor float64
	// Pool-size floor below which the score threshold is relaxed once.
	MinPoolSize int
}

func (c Config) withDefaults() Config {
	if c.MinSegmentDuration == 0 {
		c.MinSegmentDuration = 8
	}
	if c.MergeGap == 0 {
		c.MergeGap = 10
	}
	if c.FallbackPercentile == 0 {
		c.FallbackPercentile = 0.80
	}
	if c.MinClipDuration == 0 {
		c.MinClipDuration = 15
	}
	if c.MaxClipDuration == 0 {
		c.MaxClipDuration = 90
	}
	if c.MaxClips == 0 {
		c.MaxClips = 40
	}
	if c.MinTimeGap == 0 {
		c.MinTimeGap = 30
	}
	if c.MergeQualityFloor == 0 {
		c.MergeQualityFloor = 0.40
	}
	if c.MinPoolSize == 0 {
		c.MinPoolSize = 30
	}
	return c
}

// Result carries the selected clips plus the merged pre-filter pool the
// reconciler draws on when topping up.
type Result struct {
	Clips []types.Clip
	Pool  []types.Segment
}

// Select runs the full selection state machine. Deterministic: the same
// scored segments and config always produce the same clip list.
func Select(segs []types.Segment, cfg Config) Result {
	cfg = cfg.withDefaults()
	if len(segs) == 0 {
		return Result{}
	}

	pool := mergeShortBursts(segs, cfg)

	threshold := cfg.ScoreThreshold
	filtered := filterByScore(pool, threshold, cfg.FallbackPercentile)
	bounded := filterByDuration(filtered, cfg.MinClipDuration, cfg.MaxClipDuration)

	// One relaxation round when the candidate pool is starved.
	if len(bounded) < cfg.MinPoolSize || totalSegDuration(bounded) < 0.5*cfg.TargetDuration {
		threshold -= 0.10
		filtered = filterByScore(pool, threshold, cfg.FallbackPercentile)
		bounded = filterByDuration(filtered, cfg.MinClipDuration, cfg.MaxClipDuration)
	}

	accepted := greedyNMS(bounded, cfg)
	merged := smartMerge(accepted, cfg, cfg.MaxClipDuration)
	if types.TotalDuration(merged) < 0.7*cfg.TargetDuration {
		// Force pass: relaxed ceiling recovers coverage on sources where
		// strong moments cluster tightly.
		merged = smartMerge(merged, cfg, cfg.MaxClipDuration*1.1)
	}

	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Start < merged[j].Start })
	return Result{Clips: merged, Pool: pool}
}

// mergeShortBursts greedily absorbs sub-minimum segments into their
// time-adjacent neighbors while the gap permits. Merged score is the
// mean of the constituents.
func mergeShortBursts(segs []types.Segment, cfg Config) []types.Segment {
	sorted := make([]types.Segment, len(segs))
	copy(sorted, segs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var out []types.Segment
	i := 0
	for i < len(sorted) {
		cur := sorted[i]
		ids := []string{cur.ID}
		scoreSum := cur.FinalScore
		texts := []string{cur.Transcript}
		j := i + 1
		for cur.End-cur.Start < cfg.MinSegmentDuration && j < len(sorted) {
			gap := sorted[j].Start - cur.End
			if gap > cfg.MergeGap {
				break
			}
			cur.End = sorted[j].End
			ids = append(ids, sorted[j].ID)
			scoreSum += sorted[j].FinalScore
			if t := strings.TrimSpace(sorted[j].Transcript); t != "" {
				texts = append(texts, t)
			}
			j++
		}
		if len(ids) > 1 {
			cur.ID = strings.Join(ids, "+")
			cur.FinalScore = scoreSum / float64(len(ids))
			cur.Transcript = strings.Join(texts, " ")
		}
		cur.Duration = cur.End - cur.Start
		out = append(out, cur)
		i = j
	}
	return out
}

// filterByScore keeps segments at or above the threshold. When that
// yields nothing, a dynamic percentile cut keeps the pipeline from
// producing an empty candidate set while any segment exists.
func filterByScore(segs []types.Segment, threshold, percentile float64) []types.Segment {
	var out []types.Segment
	for _, s := range segs {
		if s.FinalScore >= threshold {
			out = append(out, s)
		}
	}
	if len(out) > 0 || len(segs) == 0 {
		return out
	}

	cut := percentileScore(segs, percentile)
	for _, s := range segs {
		if s.FinalScore >= cut {
			out = append(out, s)
		}
	}
	return out
}

// percentileScore returns the nearest-rank percentile of all final
// scores.
func percentileScore(segs []types.Segment, p float64) float64 {
	scores := make([]float64, len(segs))
	for i, s := range segs {
		scores[i] = s.FinalScore
	}
	sort.Float64s(scores)
	rank := int(p * float64(len(scores)))
	if rank >= len(scores) {
		rank = len(scores) - 1
	}
	return scores[rank]
}

func filterByDuration(segs []types.Segment, min, max float64) []types.Segment {
	var out []types.Segment
	for _, s := range segs {
		d := s.End - s.Start
		if d >= min && d <= max {
			out = append(out, s)
		}
	}
	return out
}

// greedyNMS accepts candidates best-first, rejecting any that would
// overlap or crowd an already-accepted clip's corridor
// [start-gap, end+gap]. Total duration stops at the target; the 1.2x
// factor only bounds the incidental overshoot of the last accept.
func greedyNMS(segs []types.Segment, cfg Config) []types.Clip {
	ranked := make([]types.Segment, len(segs))
	copy(ranked, segs)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].FinalScore != ranked[j].FinalScore {
			return ranked[i].FinalScore > ranked[j].FinalScore
		}
		return ranked[i].Start < ranked[j].Start
	})

	var accepted []types.Clip
	var total float64
	for _, s := range ranked {
		if len(accepted) >= cfg.MaxClips {
			break
		}
		if total >= cfg.TargetDuration {
			break
		}
		d := s.End - s.Start
		if total+d > cfg.TargetDuration*1.2 {
			continue
		}
		if conflicts(accepted, s, cfg.MinTimeGap) {
			continue
		}
		accepted = append(accepted, segmentToClip(s))
		total += d
	}
	return accepted
}

func conflicts(accepted []types.Clip, s types.Segment, gap float64) bool {
	for _, c := range accepted {
		if s.Start < c.End+gap && s.End > c.Start-gap {
			return true
		}
	}
	return false
}

// smartMerge walks the time-sorted clips and merges adjacent pairs when
// the gap is small enough and the gap-inclusive combined duration fits
// under the ceiling. The gap must count toward the combined duration or
// downstream duration accounting silently drifts.
func smartMerge(clips []types.Clip, cfg Config, maxDuration float64) []types.Clip {
	if len(clips) < 2 {
		return clips
	}
	sorted := make([]types.Clip, len(clips))
	copy(sorted, clips)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	out := []types.Clip{sorted[0]}
	for _, next := range sorted[1:] {
		last := &out[len(out)-1]
		gap := next.Start - last.End
		combined := last.Duration + gap + next.Duration
		if gap >= 0 && gap <= cfg.MergeGap && combined <= maxDuration && next.Score >= cfg.MergeQualityFloor {
			if len(last.MergedFrom) == 0 {
				last.MergedFrom = []string{last.ID}
			}
			last.MergedFrom = append(last.MergedFrom, next.ID)
			last.ID = last.ID + "+" + next.ID
			last.End = next.End
			last.Duration = last.End - last.Start
			last.Score = (last.Score + next.Score) / 2
			if t := strings.TrimSpace(next.Transcript); t != "" {
				last.Transcript = strings.TrimSpace(last.Transcript + " " + t)
			}
			continue
		}
		out = append(out, next)
	}
	return out
}

func segmentToClip(s types.Segment) types.Clip {
	return types.Clip{
		ID:         s.ID,
		Start:      s.Start,
		End:        s.End,
		Duration:   s.End - s.Start,
		Transcript: s.Transcript,
		Score:      s.FinalScore,
	}
}

func totalSegDuration(segs []types.Segment) float64 {
	var t float64
	for _, s := range segs {
		t += s.End - s.Start
	}
	return t
}

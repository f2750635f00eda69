// Package parts plans how a final clip set is divided into releasable
// output parts and when each part publishes.
package parts

import (
	"fmt"
	"math"

	"github.com/reelplan/reelplan/internal/types"
)

const (
	partMinDuration = 720.0
	partMaxDuration = 1200.0
	maxParts        = 6

	longSource     = 4 * 3600.0
	veryLongSource = 8 * 3600.0
)

// Overrides carries manual caller decisions that beat the computed
// split.
type Overrides struct {
	NumParts          int
	TargetPerPart     float64
	MinScoreThreshold float64
}

// ComputeSplitPlan derives the split strategy from the source duration.
// Pure function, computed exactly once per run: recomputing mid-run
// would invalidate selection decisions already made against it.
func ComputeSplitPlan(sourceDuration float64, ov *Overrides) types.SplitPlan {
	num, reason := partCount(sourceDuration)
	if ov != nil && ov.NumParts > 0 {
		num = ov.NumParts
		reason = fmt.Sprintf("manual override: %d parts", num)
	}

	target := clampF(0.10*sourceDuration/float64(num), partMinDuration, partMaxDuration)
	if ov != nil && ov.TargetPerPart > 0 {
		target = ov.TargetPerPart
	}

	threshold := scoreThreshold(sourceDuration)
	if ov != nil && ov.MinScoreThreshold > 0 {
		threshold = ov.MinScoreThreshold
	}

	total := target * float64(num)
	plan := types.SplitPlan{
		SourceDuration:        sourceDuration,
		NumParts:              num,
		TargetDurationPerPart: target,
		TotalTargetDuration:   total,
		MinScoreThreshold:     threshold,
		Reason: fmt.Sprintf("%s; %.0fs per part, threshold %.2f",
			reason, target, threshold),
	}
	if sourceDuration > 0 {
		plan.CompressionRatio = total / sourceDuration
	}
	return plan
}

// partCount is a duration-threshold ladder. Beyond six hours parts
// track roughly two hours of source each, capped so very long sources
// do not fragment into unwatchable slivers.
func partCount(d float64) (int, string) {
	h := d / 3600
	switch {
	case d < 1*3600:
		return 1, fmt.Sprintf("short source (%.1fh): single part", h)
	case d < 2*3600:
		return 2, fmt.Sprintf("medium source (%.1fh): two parts", h)
	case d < 6*3600:
		return 3, fmt.Sprintf("long source (%.1fh): three parts", h)
	default:
		n := int(math.Ceil(d / (2 * 3600)))
		if n > maxParts {
			n = maxParts
		}
		return n, fmt.Sprintf("very long source (%.1fh): %d parts", h, n)
	}
}

// scoreThreshold scales upward with source length: longer sources can
// afford to be pickier.
func scoreThreshold(d float64) float64 {
	switch {
	case d < longSource:
		return 0.45
	case d < veryLongSource:
		return 0.50
	default:
		return 0.55
	}
}

func clampF(x, a, b float64) float64 {
	if x < a {
		return a
	}
	if x > b {
		return b
	}
	return x
}

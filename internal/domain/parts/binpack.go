package parts

import (
	"math"

	"github.com/reelplan/reelplan/internal/types"
)

const (
	fillWeight    = 0.7
	qualityWeight = 0.3
	// Parts past this factor of their time target stop receiving clips.
	overfillFactor = 1.15
)

// Pack assigns clips to parts with a streaming single-pass heuristic:
// chronological clip order, each clip to the part whose fill/quality
// balance it improves most. Not optimal, but deterministic and
// O(parts x clips).
func Pack(clips []types.Clip, plan types.SplitPlan) []types.Part {
	n := plan.NumParts
	if n < 1 {
		n = 1
	}
	out := make([]types.Part, n)
	for i := range out {
		out[i] = types.Part{Number: i + 1}
	}
	if len(clips) == 0 {
		return out
	}

	meanScore := 0.0
	for _, c := range clips {
		meanScore += c.Score
	}
	meanScore /= float64(len(clips))

	for _, c := range clips {
		best := 0
		bestCost := math.Inf(1)
		for i := range out {
			cost := assignCost(&out[i], plan.TargetDurationPerPart, meanScore)
			if cost < bestCost {
				bestCost = cost
				best = i
			}
		}
		if math.IsInf(bestCost, 1) {
			// Every part is overfull; the clip still belongs to exactly
			// one part, so the least-filled one takes it.
			for i := range out {
				if out[i].Duration < out[best].Duration {
					best = i
				}
			}
		}
		p := &out[best]
		p.Clips = append(p.Clips, c)
		p.Duration += c.Duration
	}

	for i := range out {
		out[i].AvgScore = avgScore(out[i].Clips)
	}
	return out
}

// assignCost favors under-filled parts and parts whose average quality
// sits far from the pool mean. Overfull parts cost infinity.
func assignCost(p *types.Part, target, meanScore float64) float64 {
	if target > 0 && p.Duration > target*overfillFactor {
		return math.Inf(1)
	}
	fill := 0.0
	if target > 0 {
		fill = p.Duration / target
	}
	quality := 0.0
	if len(p.Clips) > 0 {
		quality = math.Abs(avgScore(p.Clips) - meanScore)
	}
	return fillWeight*fill + qualityWeight*quality
}

func avgScore(clips []types.Clip) float64 {
	if len(clips) == 0 {
		return 0
	}
	var sum float64
	for _, c := range clips {
		sum += c.Score
	}
	return sum / float64(len(clips))
}

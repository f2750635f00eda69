package scoring

import (
	"math"

	"github.com/reelplan/reelplan/internal/types"
)

const (
	// Trailing window before a segment used as the baseline chat rate.
	chatBaselineWindowSec = 180
	// Reactions lag the moment that caused them; extend the peak window.
	chatPeakExtensionSec = 10
)

// ChatBurstScore maps the peak-to-baseline chat rate around a segment
// onto a fixed monotonic bucket scale. An empty histogram always yields
// 0: no chat data is a legitimate state, not an error.
func ChatBurstScore(hist types.ChatHistogram, start, end float64) float64 {
	if len(hist) == 0 {
		return 0
	}

	s := int(start)
	e := int(end)

	var sum, n int
	for t := s - chatBaselineWindowSec; t < s; t++ {
		if t < 0 {
			continue
		}
		sum += hist[t]
		n++
	}
	var baseline float64
	if n > 0 {
		baseline = float64(sum) / float64(n)
	}

	peak := 0
	for t := s; t <= e+chatPeakExtensionSec; t++ {
		if hist[t] > peak {
			peak = hist[t]
		}
	}

	// Floor the baseline at 1 msg/s so quiet chats cannot inflate the
	// multiplier into absurd territory.
	multiplier := float64(peak) / math.Max(baseline, 1)

	switch {
	case multiplier >= 15:
		return 1.00
	case multiplier >= 10:
		return 0.95
	case multiplier >= 7:
		return 0.85
	case multiplier >= 5:
		return 0.70
	case multiplier >= 3:
		return 0.50
	case multiplier >= 2:
		return 0.30
	default:
		return 0.10
	}
}

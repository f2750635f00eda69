package selection

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelplan/reelplan/internal/types"
)

func seg(id string, start, end, score float64) types.Segment {
	return types.Segment{ID: id, Start: start, End: end, Duration: end - start, FinalScore: score}
}

func TestSelect_UniformPoolFillsTargetExactly(t *testing.T) {
	// 100 segments, uniform score, 30s each, spaced well apart.
	segs := make([]types.Segment, 100)
	for i := range segs {
		start := float64(i) * 120
		segs[i] = seg(fmt.Sprintf("s%03d", i), start, start+30, 0.9)
	}

	res := Select(segs, Config{
		ScoreThreshold: 0.5,
		TargetDuration: 900,
		MaxClips:       40,
	})

	require.Len(t, res.Clips, 30, "900s target / 30s clips")
	for i := 1; i < len(res.Clips); i++ {
		assert.Greater(t, res.Clips[i].Start, res.Clips[i-1].End, "chronological, non-overlapping")
	}
	assert.InDelta(t, 900, types.TotalDuration(res.Clips), 1e-9)
}

func TestSelect_ShortBurstMergeIsGapInclusive(t *testing.T) {
	// Both segments are below the 8s minimum; gap 2s within the merge
	// gap. The merged span must cover the gap: 14s, not 5+7=12.
	segs := []types.Segment{
		seg("a", 0, 5, 0.9),
		seg("b", 7, 14, 0.8),
	}

	res := Select(segs, Config{
		ScoreThreshold:  0.5,
		TargetDuration:  100,
		MinClipDuration: 10,
		MaxClipDuration: 60,
	})

	require.Len(t, res.Clips, 1)
	c := res.Clips[0]
	assert.Equal(t, "a+b", c.ID)
	assert.Equal(t, 0.0, c.Start)
	assert.Equal(t, 14.0, c.End)
	assert.InDelta(t, 14.0, c.Duration, 1e-9)
	assert.InDelta(t, 0.85, c.Score, 1e-9, "merged score is the mean of constituents")
}

func TestSelect_SmartMergeCountsGapInDuration(t *testing.T) {
	segs := []types.Segment{
		seg("a", 0, 20, 0.9),
		seg("b", 25, 45, 0.8),
	}

	res := Select(segs, Config{
		ScoreThreshold:  0.5,
		TargetDuration:  100,
		MinClipDuration: 10,
		MaxClipDuration: 60,
		MinTimeGap:      4,
		MergeGap:        10,
	})

	require.Len(t, res.Clips, 1)
	c := res.Clips[0]
	assert.Equal(t, 0.0, c.Start)
	assert.Equal(t, 45.0, c.End)
	assert.InDelta(t, 45.0, c.Duration, 1e-9, "gap-inclusive: 20+5+20")
	assert.Equal(t, []string{"a", "b"}, c.MergedFrom)
}

func TestSelect_SmartMergeRespectsQualityFloor(t *testing.T) {
	segs := []types.Segment{
		seg("a", 0, 20, 0.9),
		seg("b", 25, 45, 0.2), // below the merge-quality floor
	}

	res := Select(segs, Config{
		ScoreThreshold:  0.1,
		TargetDuration:  100,
		MinClipDuration: 10,
		MaxClipDuration: 60,
		MinTimeGap:      4,
		MergeGap:        10,
	})

	require.Len(t, res.Clips, 2, "low-quality neighbor must not be absorbed")
}

func TestSelect_PercentileFallbackNeverEmpty(t *testing.T) {
	segs := make([]types.Segment, 20)
	for i := range segs {
		start := float64(i) * 100
		segs[i] = seg(fmt.Sprintf("s%d", i), start, start+30, 0.05+float64(i)*0.01)
	}

	res := Select(segs, Config{
		ScoreThreshold: 0.9, // nothing clears this
		TargetDuration: 300,
	})

	assert.NotEmpty(t, res.Clips, "percentile fallback must rescue the candidate set")
}

func TestSelect_NMSKeepsCorridorClear(t *testing.T) {
	// Strong clip surrounded by overlapping and too-close neighbors.
	segs := []types.Segment{
		seg("best", 100, 130, 0.95),
		seg("overlap", 120, 150, 0.90),
		seg("crowded", 140, 170, 0.85), // within the 30s corridor of best
		seg("clear", 200, 230, 0.80),
	}

	res := Select(segs, Config{
		ScoreThreshold: 0.5,
		TargetDuration: 300,
		MergeGap:       5,
	})

	ids := make([]string, 0, len(res.Clips))
	for _, c := range res.Clips {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"best", "clear"}, ids)
}

func TestSelect_Idempotent(t *testing.T) {
	segs := make([]types.Segment, 50)
	for i := range segs {
		start := float64(i) * 80
		segs[i] = seg(fmt.Sprintf("s%d", i), start, start+20+float64(i%4)*10, 0.3+float64(i%7)*0.1)
	}
	cfg := Config{ScoreThreshold: 0.5, TargetDuration: 600}

	a := Select(segs, cfg)
	b := Select(segs, cfg)
	assert.Equal(t, a.Clips, b.Clips)
	assert.Equal(t, a.Pool, b.Pool)
}

func TestSelect_ThresholdRelaxationOnStarvedPool(t *testing.T) {
	// Only 3 segments clear 0.60 but plenty sit at 0.55: the pool is
	// starved (< 30 candidates), so one 0.10 relaxation round runs.
	var segs []types.Segment
	for i := 0; i < 3; i++ {
		start := float64(i) * 200
		segs = append(segs, seg(fmt.Sprintf("hi%d", i), start, start+30, 0.65))
	}
	for i := 0; i < 30; i++ {
		start := 1000 + float64(i)*200
		segs = append(segs, seg(fmt.Sprintf("lo%d", i), start, start+30, 0.55))
	}

	res := Select(segs, Config{
		ScoreThreshold: 0.60,
		TargetDuration: 600,
	})

	var relaxed int
	for _, c := range res.Clips {
		if c.Score < 0.60 {
			relaxed++
		}
	}
	assert.Greater(t, relaxed, 0, "relaxed threshold should admit 0.55 segments")
}

func TestSelect_EmptyInput(t *testing.T) {
	res := Select(nil, Config{TargetDuration: 600})
	assert.Empty(t, res.Clips)
	assert.Empty(t, res.Pool)
}

package scoring

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelplan/reelplan/internal/ports"
	"github.com/reelplan/reelplan/internal/types"
)

type fakeScorer struct {
	batches [][]ports.TranscriptItem
	score   func(id string) float64
	err     error
}

func (f *fakeScorer) ScoreBatch(_ context.Context, items []ports.TranscriptItem) ([]ports.SemanticScore, error) {
	f.batches = append(f.batches, items)
	if f.err != nil {
		return nil, f.err
	}
	// Reverse order on purpose: results must be matched by ID, not by
	// batch position.
	out := make([]ports.SemanticScore, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		out = append(out, ports.SemanticScore{ID: items[i].ID, Score: f.score(items[i].ID)})
	}
	return out, nil
}

func testSegments(n int, spacing, dur float64) []types.Segment {
	segs := make([]types.Segment, n)
	for i := range segs {
		start := float64(i) * spacing
		segs[i] = types.Segment{
			ID:         string(rune('a' + i%26)),
			Start:      start,
			End:        start + dur,
			Duration:   dur,
			Transcript: "the vote on the amendment was a scandal",
			Features:   map[string]float64{"acoustic_energy": 0.5},
		}
	}
	for i := range segs {
		segs[i].ID = segs[i].ID + "-" + string(rune('0'+i/26))
	}
	return segs
}

func TestScore_EmptyChatStreamMode(t *testing.T) {
	agg := NewAggregator(Config{Strategy: NewStreamStrategy()}, nil, nil, zerolog.Nop())

	segs := testSegments(10, 100, 30)
	scored, err := agg.Score(context.Background(), segs, types.ChatHistogram{}, 1000)
	require.NoError(t, err)

	for _, s := range scored {
		assert.Equal(t, 0.0, s.Subscores.ChatBurst)
	}
	w := agg.EffectiveWeights(false)
	assert.Equal(t, 0.0, w.ChatBurst)
	assert.InDelta(t, 1.0, w.Sum(), 1e-9)
	assert.InDelta(t, 0.85, w.Acoustic+w.Semantic, 1e-9)
}

func TestScore_BatchFailureFallsBackToNeutral(t *testing.T) {
	scorer := &fakeScorer{err: errors.New("boom")}
	agg := NewAggregator(Config{Strategy: NewSessionStrategy(), BatchSize: 4},
		scorer, nil, zerolog.Nop())

	segs := testSegments(6, 100, 30)
	scored, err := agg.Score(context.Background(), segs, nil, 1000)
	require.NoError(t, err, "collaborator failure must not abort the run")

	for _, s := range scored {
		assert.Equal(t, 0.5, s.Subscores.Semantic)
	}
	assert.Len(t, scorer.batches, 2, "6 segments at batch size 4")
}

func TestScore_MatchesResultsByID(t *testing.T) {
	scorer := &fakeScorer{score: func(id string) float64 {
		if id == "c-0" {
			return 0.9
		}
		return 0.1
	}}
	agg := NewAggregator(Config{Strategy: NewSessionStrategy()}, scorer, nil, zerolog.Nop())

	segs := testSegments(5, 100, 30)
	scored, err := agg.Score(context.Background(), segs, nil, 1000)
	require.NoError(t, err)

	for _, s := range scored {
		if s.ID == "c-0" {
			assert.Equal(t, 0.9, s.Subscores.Semantic)
		} else {
			assert.Equal(t, 0.1, s.Subscores.Semantic)
		}
	}
}

func TestScore_NoCollaboratorUsesKeywordDensity(t *testing.T) {
	agg := NewAggregator(Config{Strategy: NewSessionStrategy()}, nil, nil, zerolog.Nop())

	segs := testSegments(3, 100, 30)
	scored, err := agg.Score(context.Background(), segs, nil, 1000)
	require.NoError(t, err)

	for _, s := range scored {
		assert.Greater(t, s.Subscores.Semantic, 0.0,
			"transcript with scandal/vote/amendment should approximate > 0")
	}
}

func TestScore_DiversityBonusFavorsCenter(t *testing.T) {
	agg := NewAggregator(Config{Strategy: NewSessionStrategy()}, nil, nil, zerolog.Nop())

	segs := []types.Segment{
		{ID: "edge", Start: 0, End: 30, Transcript: "the vote was a scandal", Features: map[string]float64{"acoustic_energy": 0.5}},
		{ID: "center", Start: 485, End: 515, Transcript: "the vote was a scandal", Features: map[string]float64{"acoustic_energy": 0.5}},
	}
	scored, err := agg.Score(context.Background(), segs, nil, 1000)
	require.NoError(t, err)

	byID := map[string]types.Segment{}
	for _, s := range scored {
		byID[s.ID] = s
	}
	assert.Greater(t, byID["center"].FinalScore, byID["edge"].FinalScore)
}

func TestScore_Deterministic(t *testing.T) {
	agg := NewAggregator(Config{Strategy: NewStreamStrategy()}, nil, nil, zerolog.Nop())

	segs := testSegments(20, 50, 30)
	hist := types.ChatHistogram{100: 12, 300: 4}

	a, err := agg.Score(context.Background(), segs, hist, 1000)
	require.NoError(t, err)
	b, err := agg.Score(context.Background(), segs, hist, 1000)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestScore_InputNotMutated(t *testing.T) {
	agg := NewAggregator(Config{Strategy: NewSessionStrategy()}, nil, nil, zerolog.Nop())

	segs := testSegments(3, 100, 30)
	_, err := agg.Score(context.Background(), segs, nil, 1000)
	require.NoError(t, err)
	for _, s := range segs {
		assert.Equal(t, 0.0, s.FinalScore)
	}
}

func TestPrefilter_ForceIncludesKeywordHits(t *testing.T) {
	agg := NewAggregator(Config{Strategy: NewSessionStrategy(), PrefilterTop: 1, KeywordForceThreshold: 0.5},
		nil, nil, zerolog.Nop())

	segs := []types.Segment{
		{ID: "loud", Subscores: types.Subscores{Acoustic: 0.9, Keyword: 0.1}},
		{ID: "quiet-scandal", Subscores: types.Subscores{Acoustic: 0.1, Keyword: 0.9}},
		{ID: "dull", Subscores: types.Subscores{Acoustic: 0.2, Keyword: 0.1}},
	}
	idxs := agg.prefilter(segs)
	assert.Equal(t, []int{0, 1}, idxs, "top-1 by pre-score plus the forced keyword hit")
}

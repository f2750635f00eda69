package scoring

import (
	"context"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/reelplan/reelplan/internal/ports"
	"github.com/reelplan/reelplan/internal/types"
)

const (
	// Neutral score assigned to a batch when the collaborator fails.
	neutralSemanticScore = 0.5

	defaultDiversityBonus  = 0.10
	defaultPrefilterTop    = 50
	defaultForceThreshold  = 0.80
	defaultSemanticBatchSz = 10
)

// Config tunes the aggregator. Zero values fall back to defaults.
type Config struct {
	Strategy       Strategy
	DiversityBonus float64
	// PrefilterTop caps how many segments receive a semantic score.
	PrefilterTop int
	// KeywordForceThreshold force-includes a segment into the semantic
	// candidate subset regardless of its prefilter rank.
	KeywordForceThreshold float64
	BatchSize             int
	Prompt                string
}

func (c Config) withDefaults() Config {
	if c.DiversityBonus == 0 {
		c.DiversityBonus = defaultDiversityBonus
	}
	if c.PrefilterTop <= 0 {
		c.PrefilterTop = defaultPrefilterTop
	}
	if c.KeywordForceThreshold == 0 {
		c.KeywordForceThreshold = defaultForceThreshold
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaultSemanticBatchSz
	}
	return c
}

// Aggregator merges the independent per-segment signals into one
// composite score under the active strategy's weight profile.
type Aggregator struct {
	cfg      Config
	semantic ports.SemanticScorer // nil when the collaborator is unavailable
	prompt   ports.PromptScorer   // nil disables prompt similarity
	log      zerolog.Logger
}

func NewAggregator(cfg Config, semantic ports.SemanticScorer, prompt ports.PromptScorer, log zerolog.Logger) *Aggregator {
	return &Aggregator{cfg: cfg.withDefaults(), semantic: semantic, prompt: prompt, log: log}
}

// EffectiveWeights returns the weight profile actually used for a run,
// after the missing-chat renormalization.
func (a *Aggregator) EffectiveWeights(chatAvailable bool) types.WeightProfile {
	w := a.cfg.Strategy.Weights()
	if !a.cfg.Strategy.ExpectsChat() {
		return w
	}
	return Renormalize(w, chatAvailable)
}

// Score fills every segment's subscores and final score. It returns a
// fresh slice; the input is not mutated. The only error it can return
// is context cancellation — collaborator failures degrade to fallbacks.
func (a *Aggregator) Score(ctx context.Context, segs []types.Segment, chat types.ChatHistogram, sourceDuration float64) ([]types.Segment, error) {
	out := make([]types.Segment, len(segs))
	copy(out, segs)

	weights := a.EffectiveWeights(len(chat) > 0)

	for i := range out {
		out[i].Subscores.Keyword = KeywordScore(out[i].Transcript)
		out[i].Subscores.Acoustic = clamp(acousticFeature(out[i].Features), 0, 1)
		out[i].Subscores.ChatBurst = ChatBurstScore(chat, out[i].Start, out[i].End)
	}

	candidates := a.prefilter(out)
	if err := a.scoreSemantic(ctx, out, candidates); err != nil {
		return nil, err
	}
	if err := a.scorePrompt(ctx, out, candidates); err != nil {
		return nil, err
	}

	for i := range out {
		s := &out[i]
		final := s.Subscores.ChatBurst*weights.ChatBurst +
			s.Subscores.Acoustic*weights.Acoustic +
			s.Subscores.Semantic*weights.Semantic +
			s.Subscores.PromptSimilarity*weights.PromptBoost
		final = clamp(final, 0, 1)

		// Mild boost for non-edge segments: intros and outros of long
		// recordings are rarely highlight material.
		if sourceDuration > 0 {
			pos := ((s.Start + s.End) / 2) / sourceDuration
			final *= 1 + a.cfg.DiversityBonus*(1-math.Abs(pos-0.5))
		}
		s.FinalScore = final
	}
	return out, nil
}

// prefilter picks the subset that earns a semantic score: the top-N by
// a cheap acoustic+keyword pre-score, plus every segment whose keyword
// score clears the force threshold regardless of rank. Returns indexes
// into segs, sorted ascending for deterministic batching.
func (a *Aggregator) prefilter(segs []types.Segment) []int {
	type ranked struct {
		idx int
		pre float64
	}
	rs := make([]ranked, 0, len(segs))
	for i, s := range segs {
		rs = append(rs, ranked{idx: i, pre: 0.6*s.Subscores.Acoustic + 0.4*s.Subscores.Keyword})
	}
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].pre != rs[j].pre {
			return rs[i].pre > rs[j].pre
		}
		return rs[i].idx < rs[j].idx
	})

	picked := make(map[int]bool, a.cfg.PrefilterTop)
	for i := 0; i < len(rs) && i < a.cfg.PrefilterTop; i++ {
		picked[rs[i].idx] = true
	}
	for i, s := range segs {
		if s.Subscores.Keyword >= a.cfg.KeywordForceThreshold {
			picked[i] = true
		}
	}

	idxs := make([]int, 0, len(picked))
	for i := range picked {
		idxs = append(idxs, i)
	}
	sort.Ints(idxs)
	return idxs
}

// scoreSemantic assigns semantic scores to the candidate subset in
// batches. A failed batch gets the neutral fallback and the run
// continues. Without a collaborator, keyword density stands in.
func (a *Aggregator) scoreSemantic(ctx context.Context, segs []types.Segment, candidates []int) error {
	if a.semantic == nil {
		for _, i := range candidates {
			segs[i].Subscores.Semantic = KeywordDensity(segs[i].Transcript)
		}
		return nil
	}

	for lo := 0; lo < len(candidates); lo += a.cfg.BatchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		hi := lo + a.cfg.BatchSize
		if hi > len(candidates) {
			hi = len(candidates)
		}
		batch := candidates[lo:hi]

		items := make([]ports.TranscriptItem, 0, len(batch))
		byID := make(map[string]int, len(batch))
		for _, i := range batch {
			items = append(items, ports.TranscriptItem{ID: segs[i].ID, Text: segs[i].Transcript})
			byID[segs[i].ID] = i
		}

		scores, err := a.semantic.ScoreBatch(ctx, items)
		if err != nil {
			a.log.Warn().Err(err).Int("batch_size", len(batch)).Msg("semantic batch failed, using neutral fallback")
			for _, i := range batch {
				segs[i].Subscores.Semantic = neutralSemanticScore
			}
			continue
		}
		for _, sc := range scores {
			if i, ok := byID[sc.ID]; ok {
				segs[i].Subscores.Semantic = clamp(sc.Score, 0, 1)
			}
		}
	}
	return nil
}

func (a *Aggregator) scorePrompt(ctx context.Context, segs []types.Segment, candidates []int) error {
	if a.prompt == nil || a.cfg.Prompt == "" {
		return nil
	}
	for _, i := range candidates {
		if err := ctx.Err(); err != nil {
			return err
		}
		sim, err := a.prompt.Similarity(ctx, a.cfg.Prompt, segs[i].Transcript)
		if err != nil {
			a.log.Warn().Err(err).Str("segment", segs[i].ID).Msg("prompt similarity failed, using 0")
			continue
		}
		segs[i].Subscores.PromptSimilarity = clamp(sim, 0, 1)
	}
	return nil
}

// acousticFeature reads the acoustic energy signal from the feature
// map; feature sources differ on the key name.
func acousticFeature(features map[string]float64) float64 {
	for _, key := range []string{"acoustic_energy", "rms_energy", "energy"} {
		if v, ok := features[key]; ok {
			return v
		}
	}
	return 0
}

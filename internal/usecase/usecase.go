package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/reelplan/reelplan/internal/domain/budget"
	"github.com/reelplan/reelplan/internal/domain/coverage"
	"github.com/reelplan/reelplan/internal/domain/parts"
	"github.com/reelplan/reelplan/internal/domain/scoring"
	"github.com/reelplan/reelplan/internal/domain/selection"
	"github.com/reelplan/reelplan/internal/ports"
	"github.com/reelplan/reelplan/internal/types"
)

type Deps struct {
	Segments ports.SegmentSource
	Chat     ports.ChatSource     // optional
	Semantic ports.SemanticScorer // optional; nil degrades to keyword density
	Prompt   ports.PromptScorer   // optional
	Log      zerolog.Logger
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase { return Usecase{d: d} }

type Input struct {
	Mode   string // "session" or "stream"
	Prompt string

	// Manual overrides; zero means computed.
	NumParts       int
	TargetDuration float64
	WeightOverride *types.WeightProfile

	MaxClips        int
	MinClipDuration float64
	MaxClipDuration float64
	MinTimeGap      float64
	MergeGap        float64

	Schedule parts.ScheduleConfig
}

// Outcome distinguishes a plan from the legitimate empty result.
type Outcome int

const (
	OutcomeOK Outcome = iota
	// OutcomeNoCandidates: the segment pool was empty. A business
	// outcome, not an error; the caller should add source signal or
	// lower upstream filters.
	OutcomeNoCandidates
)

type Result struct {
	Outcome Outcome
	Clips   []types.Clip
	Plan    types.SplitPlan
}

// Run executes the pipeline: aggregate, select, balance, reconcile,
// plan. Every stage returns a fresh list and cancellation is observed
// at each stage boundary, so an aborted run never leaves
// partially-mutated shared state behind.
func (u Usecase) Run(ctx context.Context, in Input) (Result, error) {
	segs, sourceDuration, err := u.d.Segments.Load(ctx)
	if err != nil {
		return Result{}, err
	}
	if len(segs) == 0 {
		u.d.Log.Info().Msg("segment pool is empty, nothing to plan")
		return Result{Outcome: OutcomeNoCandidates}, nil
	}

	// The split plan is the single source of truth for the run. It is
	// computed here, once, and only its Parts are filled in later.
	plan := parts.ComputeSplitPlan(sourceDuration, &parts.Overrides{NumParts: in.NumParts})
	if in.TargetDuration > 0 {
		plan.TargetDurationPerPart = in.TargetDuration / float64(plan.NumParts)
		plan.TotalTargetDuration = in.TargetDuration
		if sourceDuration > 0 {
			plan.CompressionRatio = in.TargetDuration / sourceDuration
		}
		plan.Reason += "; target duration overridden by caller"
	}
	u.d.Log.Info().
		Int("parts", plan.NumParts).
		Float64("target_total", plan.TotalTargetDuration).
		Str("reason", plan.Reason).
		Msg("split plan computed")

	chat := types.ChatHistogram{}
	if u.d.Chat != nil {
		chat, err = u.d.Chat.Histogram(ctx)
		if err != nil {
			// Chat is an enrichment signal; a broken export degrades to
			// the no-chat path.
			u.d.Log.Warn().Err(err).Msg("chat histogram unavailable, scoring without chat signal")
			chat = types.ChatHistogram{}
		}
	}

	strategy, err := scoring.StrategyFor(in.Mode, in.WeightOverride)
	if err != nil {
		return Result{}, err
	}

	agg := scoring.NewAggregator(scoring.Config{
		Strategy: strategy,
		Prompt:   in.Prompt,
	}, u.d.Semantic, u.d.Prompt, u.d.Log)

	scored, err := agg.Score(ctx, segs, chat, sourceDuration)
	if err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	sel := selection.Select(scored, selection.Config{
		ScoreThreshold:  plan.MinScoreThreshold,
		TargetDuration:  plan.TotalTargetDuration,
		MaxClips:        in.MaxClips,
		MinClipDuration: in.MinClipDuration,
		MaxClipDuration: in.MaxClipDuration,
		MinTimeGap:      in.MinTimeGap,
		MergeGap:        in.MergeGap,
	})
	u.d.Log.Debug().Int("clips", len(sel.Clips)).Int("pool", len(sel.Pool)).Msg("selection done")
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	balanced := coverage.Balance(sel.Clips, coverage.Config{
		SourceDuration: sourceDuration,
	})
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	final := budget.Reconcile(balanced, sel.Pool, budget.Config{
		TargetDuration:  plan.TotalTargetDuration,
		MinClipDuration: in.MinClipDuration,
		MinTimeGap:      in.MinTimeGap,
		HardClipCap:     in.MaxClips,
	})
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	packed := parts.Pack(final, plan)
	packed = parts.Schedule(packed, in.Schedule)
	packed = parts.Titles(packed, plan.NumParts)
	plan.Parts = packed

	u.d.Log.Info().
		Int("clips", len(final)).
		Float64("total_duration", types.TotalDuration(final)).
		Msg("plan ready")
	return Result{Outcome: OutcomeOK, Clips: final, Plan: plan}, nil
}

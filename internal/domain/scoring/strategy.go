package scoring

import (
	"fmt"

	"github.com/reelplan/reelplan/internal/types"
)

// Strategy selects the weight profile and signal expectations for a
// processing mode. Injected into the Aggregator so mode handling stays
// out of the scoring math.
type Strategy interface {
	Name() string
	Weights() types.WeightProfile
	// ExpectsChat reports whether this mode normally has a chat signal.
	// When it does and none is available, the chat weight mass is
	// redistributed (see Renormalize).
	ExpectsChat() bool
}

// SessionStrategy scores political-session recordings: no live chat,
// semantic interest dominates.
type SessionStrategy struct {
	Profile types.WeightProfile
}

func NewSessionStrategy() SessionStrategy {
	return SessionStrategy{Profile: types.WeightProfile{
		Name:        "session",
		ChatBurst:   0,
		Acoustic:    0.35,
		Semantic:    0.45,
		PromptBoost: 0.20,
	}}
}

func (s SessionStrategy) Name() string                 { return "session" }
func (s SessionStrategy) Weights() types.WeightProfile { return s.Profile }
func (s SessionStrategy) ExpectsChat() bool            { return false }

// StreamStrategy scores live-stream VODs: chat bursts are the strongest
// single signal when present.
type StreamStrategy struct {
	Profile types.WeightProfile
}

func NewStreamStrategy() StreamStrategy {
	return StreamStrategy{Profile: types.WeightProfile{
		Name:        "stream",
		ChatBurst:   0.35,
		Acoustic:    0.20,
		Semantic:    0.30,
		PromptBoost: 0.15,
	}}
}

func (s StreamStrategy) Name() string                 { return "stream" }
func (s StreamStrategy) Weights() types.WeightProfile { return s.Profile }
func (s StreamStrategy) ExpectsChat() bool            { return true }

// StrategyFor returns the built-in strategy for a mode name, with an
// optional profile override replacing the built-in weights.
func StrategyFor(mode string, override *types.WeightProfile) (Strategy, error) {
	switch mode {
	case "session":
		s := NewSessionStrategy()
		if override != nil {
			s.Profile = *override
		}
		return s, nil
	case "stream":
		s := NewStreamStrategy()
		if override != nil {
			s.Profile = *override
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown mode %q (want session or stream)", mode)
	}
}

// ValidateProfile rejects weight profiles the pipeline cannot score
// with. Called at configuration time, before any segment processing.
func ValidateProfile(w types.WeightProfile) error {
	if w.ChatBurst < 0 || w.Acoustic < 0 || w.Semantic < 0 || w.PromptBoost < 0 {
		return fmt.Errorf("weight profile %q has a negative weight", w.Name)
	}
	if w.Sum() == 0 {
		return fmt.Errorf("weight profile %q has zero total mass", w.Name)
	}
	return nil
}

// Renormalize handles the missing-chat case: when the mode expects a
// chat signal and none is available, the chat weight is zeroed and its
// mass redistributed proportionally across acoustic and semantic. If
// both are zero the freed mass is split evenly. Total mass is conserved.
func Renormalize(w types.WeightProfile, chatAvailable bool) types.WeightProfile {
	if chatAvailable || w.ChatBurst == 0 {
		return w
	}
	freed := w.ChatBurst
	w.ChatBurst = 0
	base := w.Acoustic + w.Semantic
	if base == 0 {
		w.Acoustic += freed / 2
		w.Semantic += freed / 2
		return w
	}
	w.Acoustic += freed * w.Acoustic / base
	w.Semantic += freed * w.Semantic / base
	return w
}

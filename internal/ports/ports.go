package ports

import (
	"context"

	"github.com/reelplan/reelplan/internal/types"
)

// TranscriptItem is one unit of text sent to the semantic collaborator.
type TranscriptItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// SemanticScore is the collaborator's verdict for one item. Scores are
// matched back to segments by ID, never by batch position.
type SemanticScore struct {
	ID    string  `json:"id"`
	Score float64 `json:"semantic_score"`
}

// SemanticScorer assesses semantic interest for a batch of transcripts.
// An error applies to the whole batch; callers degrade to a neutral
// fallback rather than aborting.
type SemanticScorer interface {
	ScoreBatch(ctx context.Context, items []TranscriptItem) ([]SemanticScore, error)
}

// PromptScorer rates how well a transcript matches a free-text prompt.
type PromptScorer interface {
	Similarity(ctx context.Context, prompt, transcript string) (float64, error)
}

// SegmentSource supplies feature-annotated segments and the source
// duration. The core never recomputes features.
type SegmentSource interface {
	Load(ctx context.Context) ([]types.Segment, float64, error)
}

// ChatSource supplies the per-second chat message histogram. An empty
// histogram is valid.
type ChatSource interface {
	Histogram(ctx context.Context) (types.ChatHistogram, error)
}

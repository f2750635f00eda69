package types

import "time"

// Subscores are the independent per-segment signals the aggregator
// combines into a final score. All values live in [0,1].
type Subscores struct {
	Acoustic         float64 `json:"acoustic"`
	Keyword          float64 `json:"keyword"`
	Semantic         float64 `json:"semantic"`
	ChatBurst        float64 `json:"chat_burst"`
	PromptSimilarity float64 `json:"prompt_similarity"`
}

// Segment is the atomic scored unit of source time. IDs may become
// composite after merges ("a+b").
type Segment struct {
	ID         string             `json:"id"`
	Start      float64            `json:"start"`
	End        float64            `json:"end"`
	Duration   float64            `json:"duration"`
	Transcript string             `json:"transcript"`
	Features   map[string]float64 `json:"features,omitempty"`
	Subscores  Subscores          `json:"subscores"`
	FinalScore float64            `json:"final_score"`
}

// Valid reports whether the segment has a usable time span.
func (s Segment) Valid() bool {
	return s.ID != "" && s.End > s.Start
}

// Clip is a segment (or merge of segments) promoted into the output set.
type Clip struct {
	ID         string   `json:"id"`
	Start      float64  `json:"start"`
	End        float64  `json:"end"`
	Duration   float64  `json:"duration"`
	Transcript string   `json:"transcript"`
	Score      float64  `json:"score"`
	MergedFrom []string `json:"merged_from,omitempty"`
}

// TotalDuration sums clip durations.
func TotalDuration(clips []Clip) float64 {
	var t float64
	for _, c := range clips {
		t += c.Duration
	}
	return t
}

// WeightProfile is a named set of non-negative signal weights.
type WeightProfile struct {
	Name        string  `json:"name" yaml:"name"`
	ChatBurst   float64 `json:"chat_burst" yaml:"chat_burst"`
	Acoustic    float64 `json:"acoustic" yaml:"acoustic"`
	Semantic    float64 `json:"semantic" yaml:"semantic"`
	PromptBoost float64 `json:"prompt_boost" yaml:"prompt_boost"`
}

// Sum returns the total weight mass.
func (w WeightProfile) Sum() float64 {
	return w.ChatBurst + w.Acoustic + w.Semantic + w.PromptBoost
}

// Part is one releasable output unit inside a SplitPlan.
type Part struct {
	Number    int       `json:"number"`
	Clips     []Clip    `json:"clips"`
	Duration  float64   `json:"duration"`
	AvgScore  float64   `json:"avg_score"`
	PublishAt time.Time `json:"publish_at"`
	Title     string    `json:"title"`
}

// SplitPlan is the single source of truth for part-splitting. It is
// computed once per run from the source duration and never recomputed
// mid-run; Parts are filled in after the final clip set exists.
type SplitPlan struct {
	SourceDuration        float64 `json:"source_duration"`
	NumParts              int     `json:"num_parts"`
	TargetDurationPerPart float64 `json:"target_duration_per_part"`
	TotalTargetDuration   float64 `json:"total_target_duration"`
	MinScoreThreshold     float64 `json:"min_score_threshold"`
	CompressionRatio      float64 `json:"compression_ratio"`
	Reason                string  `json:"reason"`
	Parts                 []Part  `json:"parts,omitempty"`
}

// ChatHistogram maps a second offset into the source to the number of
// chat messages observed during that second. May be empty.
type ChatHistogram map[int]int

package scoring

import (
	"regexp"
	"strings"
)

var (
	reConflict = regexp.MustCompile(`(?i)\b(scandal|outrage|resign|corrupt|liar|shame|unacceptable|betray|disgrace)\b`)
	reDebate   = regexp.MustCompile(`(?i)\b(amendment|motion|vote|veto|answer\s+the\s+question|point\s+of\s+order|yield)\b`)
	reHype     = regexp.MustCompile(`(?i)\b(insane|unbelievable|no\s+way|clutch|let'?s\s+go|what\s+just\s+happened|did\s+you\s+see)\b`)
	reNumber   = regexp.MustCompile(`\b\d+(?:[\.,]\d+)?\b`)
)

// KeywordScore is the cheap lexical signal in [0,1]. Deterministic and
// good enough for pre-ranking before the semantic collaborator makes
// final calls on the candidate subset.
func KeywordScore(text string) float64 {
	t := strings.TrimSpace(text)
	if t == "" {
		return 0
	}
	lower := strings.ToLower(t)

	score := float64(len(reConflict.FindAllStringIndex(lower, -1))) * 0.25
	score += float64(len(reDebate.FindAllStringIndex(lower, -1))) * 0.15
	score += float64(len(reHype.FindAllStringIndex(lower, -1))) * 0.20
	score += float64(strings.Count(t, "?")) * 0.08
	score += float64(strings.Count(t, "!")) * 0.05
	// Numbers correlate with substantive claims in session transcripts.
	score += float64(len(reNumber.FindAllStringIndex(t, -1))) * 0.04

	return clamp(score, 0, 1)
}

// KeywordDensity approximates semantic interest from lexical hits per
// word. Used only when the semantic collaborator is entirely
// unavailable.
func KeywordDensity(text string) float64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}
	hits := len(reConflict.FindAllStringIndex(text, -1)) +
		len(reDebate.FindAllStringIndex(text, -1)) +
		len(reHype.FindAllStringIndex(text, -1))
	return clamp(float64(hits)/float64(len(words))*12, 0, 1)
}

func clamp(x, a, b float64) float64 {
	if x < a {
		return a
	}
	if x > b {
		return b
	}
	return x
}

package parts

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/reelplan/reelplan/internal/types"
)

// Hard external character limit imposed by publishing platforms.
const titleMaxRunes = 100

// Lowercased words that look like entities but are not.
var entityStopwords = map[string]bool{
	"the": true, "and": true, "but": true, "with": true, "this": true,
	"that": true, "what": true, "when": true, "here": true, "there": true,
	"mister": true, "madam": true, "president": true, "chairman": true,
	"step": true, "part": true, "ok": true, "okay": true, "yes": true, "no": true,
}

// Titles generates a rule-based title for every part and truncates it
// to the platform limit. Mutates the parts in place.
func Titles(parts []types.Part, total int) []types.Part {
	for i := range parts {
		head := headline(parts[i].Clips)
		suffix := fmt.Sprintf(" | Part %d/%d — %s", parts[i].Number, total, parts[i].PublishAt.Format("2006-01-02"))
		parts[i].Title = truncateTitle(head+suffix, titleMaxRunes)
	}
	return parts
}

// headline prefers a confrontation between two named entities, then a
// single-entity line, then a keyword line, then the generic fallback.
func headline(clips []types.Clip) string {
	ents := topEntities(clips, 2)
	kws := topKeywords(clips, 3)
	switch {
	case len(ents) >= 2:
		return fmt.Sprintf("%s vs %s: the key exchanges", ents[0], ents[1])
	case len(ents) == 1:
		return fmt.Sprintf("%s: the moments everyone is quoting", ents[0])
	case len(kws) > 0:
		return "Highlights: " + strings.Join(kws, ", ")
	default:
		return "Session highlights"
	}
}

// topEntities counts capitalized mid-sentence tokens across the
// highest-scoring clips and returns the most frequent distinct ones.
func topEntities(clips []types.Clip, n int) []string {
	top := topClips(clips, 3)
	counts := map[string]int{}
	for _, c := range top {
		words := strings.Fields(c.Transcript)
		for i, w := range words {
			w = strings.Trim(w, ".,!?;:\"'()")
			if utf8.RuneCountInString(w) < 3 {
				continue
			}
			r, _ := utf8.DecodeRuneInString(w)
			if !unicode.IsUpper(r) {
				continue
			}
			// Sentence-initial capitals are grammar, not names.
			if i == 0 || endsSentence(words[i-1]) {
				continue
			}
			if entityStopwords[strings.ToLower(w)] {
				continue
			}
			counts[w]++
		}
	}
	return rankedKeys(counts, n, 2)
}

func topKeywords(clips []types.Clip, n int) []string {
	top := topClips(clips, 3)
	counts := map[string]int{}
	for _, c := range top {
		for _, w := range strings.Fields(strings.ToLower(c.Transcript)) {
			w = strings.Trim(w, ".,!?;:\"'()")
			if utf8.RuneCountInString(w) < 5 || entityStopwords[w] {
				continue
			}
			counts[w]++
		}
	}
	return rankedKeys(counts, n, 2)
}

// rankedKeys returns up to n keys seen at least minCount times, most
// frequent first, ties alphabetical for determinism.
func rankedKeys(counts map[string]int, n, minCount int) []string {
	keys := make([]string, 0, len(counts))
	for k, c := range counts {
		if c >= minCount {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

func topClips(clips []types.Clip, n int) []types.Clip {
	ranked := make([]types.Clip, len(clips))
	copy(ranked, clips)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func endsSentence(word string) bool {
	return strings.HasSuffix(word, ".") || strings.HasSuffix(word, "!") || strings.HasSuffix(word, "?")
}

// truncateTitle enforces the hard limit in runes, keeping an ellipsis
// marker when anything was cut.
func truncateTitle(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

// Package matching maps BOQ item descriptions to label texts (exact,
// synonym, fuzzy) and resolves each matched label to a region through a
// ranked list of spatial strategies, computing the item's quantity from
// the region's attributes. Both stages share one control-flow shape:
// try strategies in priority order, keep the first success.
package matching

import (
	"regexp"
	"sort"
	"strings"

	"github.com/xrash/smetrics"
)

// LLMFallback is an optional, non-deterministic last resort for the
// semantic matcher. It must return a label that is
// present in candidates; callers never gate tests on its output.
type LLMFallback func(description string, candidates []string) (label string, ok bool)

const (
	scoreExact    = 1.0
	scoreSynonym  = 0.95
	wordBonusCap  = 0.3
	defaultThresh = 0.5
)

var normalizeNonWord = regexp.MustCompile(`[^\w\s]`)
var normalizeSpace = regexp.MustCompile(`\s+`)

// Normalize canonicalizes a description or label: lowercase,
// strip non-word characters, collapse whitespace.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = normalizeNonWord.ReplaceAllString(s, "")
	s = normalizeSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// LabelMatch is one candidate label with its match score.
type LabelMatch struct {
	Label string
	Score float64
}

// MatchLabels scores description against every candidate label and
// returns all that clear threshold, sorted descending by score.
func MatchLabels(description string, labels []string, threshold float64, llm LLMFallback) []LabelMatch {
	if threshold <= 0 {
		threshold = defaultThresh
	}
	normDesc := Normalize(description)

	var matches []LabelMatch
	for _, label := range labels {
		score := scoreLabel(normDesc, Normalize(label))
		if score >= threshold {
			matches = append(matches, LabelMatch{Label: label, Score: score})
		}
	}

	if len(matches) == 0 && llm != nil {
		if label, ok := llm(description, labels); ok && labelPresent(label, labels) {
			matches = append(matches, LabelMatch{Label: label, Score: threshold})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	return matches
}

// scoreLabel tries exact, synonym, then fuzzy matching in order,
// taking the first strategy that fires.
func scoreLabel(normDesc, normLabel string) float64 {
	if normDesc == normLabel {
		return scoreExact
	}
	if synonymHit(normDesc, normLabel) {
		return scoreSynonym
	}
	return fuzzyScore(normDesc, normLabel)
}

// fuzzyScore is a sequence similarity ratio, 2·LCS/(len(a)+len(b)),
// read off the insert/delete edit distance (a substitution costs 2),
// plus the shared-word bonus, capped at 1.
func fuzzyScore(a, b string) float64 {
	base := 1 - float64(smetrics.WagnerFischer(a, b, 1, 1, 2))/float64(len(a)+len(b))
	bonus := wordOverlapBonus(a, b)
	score := base + bonus
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// wordOverlapBonus rewards shared whole words beyond what character-
// level similarity already credits, capped at +0.3.
func wordOverlapBonus(a, b string) float64 {
	wordsA := strings.Fields(a)
	wordsB := strings.Fields(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}
	setB := make(map[string]bool, len(wordsB))
	for _, w := range wordsB {
		setB[w] = true
	}
	shared := 0
	for _, w := range wordsA {
		if setB[w] {
			shared++
		}
	}
	if shared == 0 {
		return 0
	}
	denom := len(wordsA)
	if len(wordsB) > denom {
		denom = len(wordsB)
	}
	bonus := float64(shared) / float64(denom) * wordBonusCap
	if bonus > wordBonusCap {
		bonus = wordBonusCap
	}
	return bonus
}

func labelPresent(label string, labels []string) bool {
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}

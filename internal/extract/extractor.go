// Package extract implements rule-based candidate term extraction over
// transcript text. It is pure: no I/O, deterministic for a given input.
package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// ConfidenceGlossary is assigned to candidates backed by the user's
	// glossary (previously confirmed vocabulary).
	ConfidenceGlossary = 0.9
	// ConfidencePattern is assigned to candidates found only by the
	// proper-noun/acronym pattern.
	ConfidencePattern = 0.6

	contextWindow = 40 // runes either side of the first occurrence
)

// tokenPattern matches probable proper nouns and acronyms: starts uppercase,
// at least three characters, letters/digits/hyphens.
var tokenPattern = regexp.MustCompile(`\b[A-Z][A-Za-z0-9-]{2,}\b`)

type Candidate struct {
	Term       string
	Confidence float64
	Source     string // "rule"
	Context    string // empty when the term cannot be located verbatim
}

// Terms merges two candidate sources, deduplicated case-insensitively with
// first occurrence winning: glossary terms appearing verbatim in the
// transcript, then pattern-matched tokens. A pattern token that also matches
// the glossary set keeps the glossary confidence.
//
// Zero glossary terms and zero matches are both fine; the result is simply
// empty.
func Terms(transcriptText string, glossaryTerms []string) []Candidate {
	candidates := make([]Candidate, 0)
	seen := make(map[string]struct{})

	glossarySet := make(map[string]struct{}, len(glossaryTerms))
	for _, t := range glossaryTerms {
		glossarySet[strings.ToLower(t)] = struct{}{}
	}

	for _, term := range glossaryTerms {
		key := strings.ToLower(term)
		if term == "" || !strings.Contains(transcriptText, term) {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		candidates = append(candidates, Candidate{
			Term:       term,
			Confidence: ConfidenceGlossary,
			Source:     "rule",
			Context:    contextAround(transcriptText, term),
		})
	}

	for _, match := range tokenPattern.FindAllString(transcriptText, -1) {
		key := strings.ToLower(match)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		confidence := ConfidencePattern
		if _, ok := glossarySet[key]; ok {
			confidence = ConfidenceGlossary
		}
		candidates = append(candidates, Candidate{
			Term:       match,
			Confidence: confidence,
			Source:     "rule",
			Context:    contextAround(transcriptText, match),
		})
	}

	return candidates
}

// contextAround returns a bounded-width snippet centered on the first
// occurrence of term, or "" when the term is not found verbatim (e.g. a case
// mismatch against a glossary entry).
func contextAround(text, term string) string {
	byteIdx := strings.Index(text, term)
	if byteIdx < 0 {
		return ""
	}
	runes := []rune(text)
	start := utf8.RuneCountInString(text[:byteIdx])
	end := start + utf8.RuneCountInString(term)

	from := start - contextWindow
	if from < 0 {
		from = 0
	}
	to := end + contextWindow
	if to > len(runes) {
		to = len(runes)
	}
	return string(runes[from:to])
}

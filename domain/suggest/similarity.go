// Package suggest implements the name-similarity heuristics behind tag
// merge suggestions. Everything here is best effort: a match is a hint for
// a reviewer, never a decision, so false positives and negatives are
// acceptable.
package suggest

import (
	"sort"
	"strings"
	"unicode"
)

// Scores assigned per heuristic. Heuristics run strongest first and the
// first hit wins for a pair.
const (
	ScoreExact      = 1.0
	ScoreNormalized = 0.95
	ScorePlural     = 0.90
	ScoreAcronym    = 0.85
	ScoreSubstring  = 0.80
)

// sharedWordScale damps the token-overlap fallback so it always ranks
// below the literal-substring heuristic.
const sharedWordScale = 0.75

// Match is one scored pairing between a candidate name and an existing
// name from the corpus.
type Match struct {
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

// Config tunes the suggester.
type Config struct {
	// MinScore is the reporting floor. Pairs scoring below it are dropped.
	MinScore float64
}

// DefaultConfig returns the standard reporting floor.
func DefaultConfig() *Config {
	return &Config{MinScore: 0.5}
}

// Suggester scores candidate tag names against an existing corpus. It
// holds configuration only, so a single instance is safe for concurrent
// use and every call is restartable.
type Suggester struct {
	config *Config
}

// NewSuggester creates a suggester. A nil config selects the defaults.
func NewSuggester(config *Config) *Suggester {
	if config == nil {
		config = DefaultConfig()
	}
	return &Suggester{config: config}
}

// FindSimilar scores candidate against every name in corpus and returns
// the matches at or above the reporting floor, strongest first. Ties keep
// corpus order. The corpus is not modified.
func (s *Suggester) FindSimilar(candidate string, corpus []string) []Match {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return nil
	}

	matches := make([]Match, 0)
	for _, existing := range corpus {
		existing = strings.TrimSpace(existing)
		if existing == "" {
			continue
		}
		score, reason := s.score(candidate, existing)
		if score >= s.config.MinScore {
			matches = append(matches, Match{Name: existing, Score: score, Reason: reason})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

// score runs the heuristics strongest first and returns the first hit.
func (s *Suggester) score(a, b string) (float64, string) {
	if strings.EqualFold(a, b) {
		return ScoreExact, "exact match"
	}
	if normalizeName(a) == normalizeName(b) {
		return ScoreNormalized, "formatting difference"
	}
	if isPluralPair(a, b) {
		return ScorePlural, "plural form"
	}
	if isAcronymPair(a, b) {
		return ScoreAcronym, "acronym"
	}
	if isSubstringPair(a, b) {
		return ScoreSubstring, "substring"
	}
	if overlap := tokenOverlap(a, b); overlap > 0 {
		return overlap * sharedWordScale, "shared words"
	}
	return 0, ""
}

// normalizeName lowers the name and strips the separators people disagree
// about, so "machine-learning" and "Machine Learning" compare equal.
func normalizeName(name string) string {
	name = strings.ToLower(name)
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(name)
}

// isPluralPair reports whether one name is the other plus a trailing "s".
func isPluralPair(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	return la == lb+"s" || lb == la+"s"
}

// isAcronymPair reports whether the capitalized initials of one name spell
// the other. The multi-word side needs at least two words so single words
// never self-match.
func isAcronymPair(a, b string) bool {
	return initialsMatch(a, b) || initialsMatch(b, a)
}

func initialsMatch(phrase, acronym string) bool {
	words := strings.Fields(phrase)
	if len(words) < 2 {
		return false
	}
	var initials strings.Builder
	for _, word := range words {
		for _, r := range word {
			initials.WriteRune(unicode.ToUpper(r))
			break
		}
	}
	return strings.EqualFold(initials.String(), acronym)
}

// isSubstringPair reports whether one name literally contains the other,
// case-insensitively.
func isSubstringPair(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	return strings.Contains(la, lb) || strings.Contains(lb, la)
}

// tokenOverlap computes the Jaccard index of the two names' word sets:
// the size of the intersection over the size of the union.
func tokenOverlap(a, b string) float64 {
	setA, setB := tokenize(a), tokenize(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	union := make(map[string]bool, len(setA)+len(setB))
	for word := range setA {
		union[word] = true
		if setB[word] {
			intersection++
		}
	}
	for word := range setB {
		union[word] = true
	}
	if len(union) == 0 {
		return 0
	}
	return float64(intersection) / float64(len(union))
}

// tokenize breaks a name into a set of lowercase words, splitting on
// anything that is not a letter or digit.
func tokenize(name string) map[string]bool {
	words := make(map[string]bool)
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			words[current.String()] = true
			current.Reset()
		}
	}
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			current.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return words
}

package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindSimilar_RanksExactMatchAboveSubstring(t *testing.T) {
	s := NewSuggester(nil)

	matches := s.FindSimilar("API", []string{"api", "Api", "REST API"})

	require.Len(t, matches, 3)
	assert.Equal(t, Match{Name: "api", Score: ScoreExact, Reason: "exact match"}, matches[0])
	assert.Equal(t, Match{Name: "Api", Score: ScoreExact, Reason: "exact match"}, matches[1])
	assert.Equal(t, Match{Name: "REST API", Score: ScoreSubstring, Reason: "substring"}, matches[2])
}

func TestFindSimilar_Heuristics(t *testing.T) {
	s := NewSuggester(nil)

	tests := []struct {
		name       string
		candidate  string
		existing   string
		wantScore  float64
		wantReason string
	}{
		{
			name:       "case insensitive exact",
			candidate:  "golang",
			existing:   "GoLang",
			wantScore:  ScoreExact,
			wantReason: "exact match",
		},
		{
			name:       "separator formatting",
			candidate:  "machine-learning",
			existing:   "Machine Learning",
			wantScore:  ScoreNormalized,
			wantReason: "formatting difference",
		},
		{
			name:       "underscore formatting",
			candidate:  "unit_testing",
			existing:   "Unit Testing",
			wantScore:  ScoreNormalized,
			wantReason: "formatting difference",
		},
		{
			name:       "trailing s plural",
			candidate:  "Test",
			existing:   "Tests",
			wantScore:  ScorePlural,
			wantReason: "plural form",
		},
		{
			name:       "plural in either direction",
			candidate:  "Databases",
			existing:   "database",
			wantScore:  ScorePlural,
			wantReason: "plural form",
		},
		{
			name:       "acronym of a phrase",
			candidate:  "CI",
			existing:   "Continuous Integration",
			wantScore:  ScoreAcronym,
			wantReason: "acronym",
		},
		{
			name:       "phrase against its acronym",
			candidate:  "Test Driven Development",
			existing:   "tdd",
			wantScore:  ScoreAcronym,
			wantReason: "acronym",
		},
		{
			name:       "substring containment",
			candidate:  "script",
			existing:   "JavaScript",
			wantScore:  ScoreSubstring,
			wantReason: "substring",
		},
		{
			name:       "single word scores as substring not acronym",
			candidate:  "G",
			existing:   "Golang",
			wantScore:  ScoreSubstring,
			wantReason: "substring",
		},
		{
			name:       "reordered words",
			candidate:  "advanced python",
			existing:   "Python Advanced",
			wantScore:  0.75,
			wantReason: "shared words",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := s.FindSimilar(tt.candidate, []string{tt.existing})

			require.Len(t, matches, 1)
			assert.Equal(t, tt.existing, matches[0].Name)
			assert.InDelta(t, tt.wantScore, matches[0].Score, 0.0001)
			assert.Equal(t, tt.wantReason, matches[0].Reason)
		})
	}
}

func TestFindSimilar_DropsWeakMatches(t *testing.T) {
	s := NewSuggester(nil)

	tests := []struct {
		name      string
		candidate string
		corpus    []string
	}{
		{name: "unrelated names", candidate: "Python", corpus: []string{"Kubernetes"}},
		{name: "small word overlap", candidate: "REST API design", corpus: []string{"REST API guide patterns"}},
		{name: "no shared words", candidate: "Go", corpus: []string{"Rust"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, s.FindSimilar(tt.candidate, tt.corpus))
		})
	}
}

func TestFindSimilar_StrongestHeuristicWinsPerPair(t *testing.T) {
	s := NewSuggester(nil)

	// "api" is simultaneously an exact match and a substring of the
	// candidate. Only the strongest score may be reported.
	matches := s.FindSimilar("api", []string{"API"})

	require.Len(t, matches, 1)
	assert.Equal(t, ScoreExact, matches[0].Score)
	assert.Equal(t, "exact match", matches[0].Reason)
}

func TestFindSimilar_TiesKeepCorpusOrder(t *testing.T) {
	s := NewSuggester(nil)

	matches := s.FindSimilar("Go", []string{"golang go", "go tooling", "GO"})

	require.Len(t, matches, 3)
	assert.Equal(t, "GO", matches[0].Name, "exact match sorts first")
	assert.Equal(t, "golang go", matches[1].Name)
	assert.Equal(t, "go tooling", matches[2].Name)
}

func TestFindSimilar_IsPureAndRestartable(t *testing.T) {
	s := NewSuggester(nil)
	corpus := []string{"api", "Api", "REST API"}

	first := s.FindSimilar("API", corpus)
	second := s.FindSimilar("API", corpus)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"api", "Api", "REST API"}, corpus, "corpus must not be modified")
}

func TestFindSimilar_EmptyInputs(t *testing.T) {
	s := NewSuggester(nil)

	assert.Nil(t, s.FindSimilar("", []string{"api"}))
	assert.Nil(t, s.FindSimilar("   ", []string{"api"}))
	assert.Empty(t, s.FindSimilar("api", nil))
	assert.Empty(t, s.FindSimilar("api", []string{"", "  "}))
}

func TestFindSimilar_CustomFloor(t *testing.T) {
	s := NewSuggester(&Config{MinScore: 0.9})

	matches := s.FindSimilar("API", []string{"api", "REST API"})

	require.Len(t, matches, 1)
	assert.Equal(t, "api", matches[0].Name)
}

// Package problem holds the coding challenge catalog entries that tags
// classify.
package problem

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"codekata-backend/domain/tag"
	appErrors "codekata-backend/pkg/errors"
)

// Difficulty grades a challenge.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// IsValid reports whether d is a known difficulty.
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

func (d Difficulty) String() string {
	return string(d)
}

// ParseDifficulty validates a raw difficulty string. Unlike tag types,
// an unknown difficulty is rejected: it changes how a challenge is
// scheduled, so silently defaulting would hide author mistakes.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if !d.IsValid() {
		return "", appErrors.NewValidationError("difficulty must be one of easy, medium, hard")
	}
	return d, nil
}

// Problem is one challenge in the catalog.
type Problem struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Statement   string     `json:"statement"`
	Difficulty  Difficulty `json:"difficulty"`
	TagIDs      []tag.ID   `json:"tag_ids"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewProblem creates an unpublished challenge. The slug is derived from
// the title.
func NewProblem(title, statement string, difficulty Difficulty, tagIDs []tag.ID) (*Problem, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, appErrors.NewValidationError("problem title is required")
	}
	if strings.TrimSpace(statement) == "" {
		return nil, appErrors.NewValidationError("problem statement is required")
	}
	if !difficulty.IsValid() {
		return nil, appErrors.NewValidationError("difficulty must be one of easy, medium, hard")
	}

	ids := make([]tag.ID, 0, len(tagIDs))
	for _, id := range tagIDs {
		if !id.IsZero() {
			ids = append(ids, id)
		}
	}

	now := time.Now()
	return &Problem{
		ID:         uuid.New().String(),
		Slug:       Slugify(title),
		Title:      title,
		Statement:  statement,
		Difficulty: difficulty,
		TagIDs:     ids,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// IsPublished reports whether the challenge is visible to readers.
func (p *Problem) IsPublished() bool {
	return p.PublishedAt != nil
}

// Publish makes the challenge visible. Publishing twice keeps the original
// publication time.
func (p *Problem) Publish() {
	if p.PublishedAt != nil {
		return
	}
	now := time.Now()
	p.PublishedAt = &now
	p.UpdatedAt = now
}

// HasTag reports whether the challenge carries the given tag.
func (p *Problem) HasTag(id tag.ID) bool {
	for _, tagID := range p.TagIDs {
		if tagID.Equals(id) {
			return true
		}
	}
	return false
}

// AddTag attaches a tag to the challenge. Adding a tag it already carries
// is a no-op.
func (p *Problem) AddTag(id tag.ID) {
	if id.IsZero() || p.HasTag(id) {
		return
	}
	p.TagIDs = append(p.TagIDs, id)
	p.UpdatedAt = time.Now()
}

// RemoveTag detaches a tag. Removing an absent tag is a no-op.
func (p *Problem) RemoveTag(id tag.ID) {
	for i, tagID := range p.TagIDs {
		if tagID.Equals(id) {
			p.TagIDs = append(p.TagIDs[:i], p.TagIDs[i+1:]...)
			p.UpdatedAt = time.Now()
			return
		}
	}
}

// Slugify lowercases a title and collapses every run of non-alphanumeric
// characters into a single hyphen.
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteRune('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// Package review holds the normalization suggestions that the pipeline
// raises and an admin later accepts or rejects.
package review

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"codekata-backend/domain/suggest"
	"codekata-backend/domain/tag"
	appErrors "codekata-backend/pkg/errors"
)

// Status is the review state of a suggestion.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// HighConfidenceThreshold marks suggestions the UI surfaces first.
const HighConfidenceThreshold = 0.8

// Suggestion is a proposed canonical tag produced by the normalization
// pipeline. It stays pending until a reviewer decides.
type Suggestion struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	TagType     tag.Type        `json:"tag_type"`
	Confidence  float64         `json:"confidence"`
	SourceNames []string        `json:"source_names"`
	Matches     []suggest.Match `json:"matches,omitempty"`
	Status      Status          `json:"status"`
	ReviewedBy  string          `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time      `json:"reviewed_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewSuggestion creates a pending suggestion. Confidence is clamped to
// [0, 1] rather than rejected: the pipeline's scores are advisory.
func NewSuggestion(name string, tagType tag.Type, confidence float64, sourceNames []string) (*Suggestion, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, appErrors.NewValidationError("suggestion name is required")
	}
	if !tagType.IsValid() {
		tagType = tag.DefaultType
	}
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	now := time.Now()
	return &Suggestion{
		ID:          uuid.New().String(),
		Name:        name,
		TagType:     tagType,
		Confidence:  confidence,
		SourceNames: append([]string{}, sourceNames...),
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// IsPending reports whether the suggestion still awaits review.
func (s *Suggestion) IsPending() bool {
	return s.Status == StatusPending
}

// IsHighConfidence reports whether the pipeline scored this suggestion at
// or above the surfacing threshold.
func (s *Suggestion) IsHighConfidence() bool {
	return s.Confidence >= HighConfidenceThreshold
}

// Accept marks the suggestion accepted and records who decided. Only a
// pending suggestion can be reviewed; a second review is a conflict.
func (s *Suggestion) Accept(reviewer string) error {
	return s.review(StatusAccepted, reviewer)
}

// Reject marks the suggestion rejected.
func (s *Suggestion) Reject(reviewer string) error {
	return s.review(StatusRejected, reviewer)
}

func (s *Suggestion) review(outcome Status, reviewer string) error {
	if !s.IsPending() {
		return appErrors.NewConflictError("suggestion has already been reviewed")
	}
	now := time.Now()
	s.Status = outcome
	s.ReviewedBy = strings.TrimSpace(reviewer)
	s.ReviewedAt = &now
	s.UpdatedAt = now
	return nil
}

// AttachMatches records the close existing names found for this
// suggestion's proposed name.
func (s *Suggestion) AttachMatches(matches []suggest.Match) {
	s.Matches = append([]suggest.Match{}, matches...)
	s.UpdatedAt = time.Now()
}

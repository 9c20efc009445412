package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"codekata-backend/application/ports"
	"codekata-backend/domain/events"
	"codekata-backend/domain/review"
	"codekata-backend/domain/tag"
	appErrors "codekata-backend/pkg/errors"
)

// RaiseSuggestionRequest proposes a canonical tag name for review.
type RaiseSuggestionRequest struct {
	Name        string   `json:"name" validate:"required,min=1,max=100"`
	Type        string   `json:"type"`
	Confidence  float64  `json:"confidence"`
	SourceNames []string `json:"source_names"`
}

// NormalizationService defines the interface for the suggestion review
// workflow: the pipeline raises suggestions, an admin accepts or rejects
// them, and accepting creates the tag.
type NormalizationService interface {
	// RaiseSuggestion records a proposed tag name. Raising a name that
	// already has a pending suggestion merges the source names instead of
	// creating a double.
	RaiseSuggestion(ctx context.Context, req RaiseSuggestionRequest) (*review.Suggestion, error)

	// GetSuggestion retrieves a suggestion by ID
	GetSuggestion(ctx context.Context, id string) (*review.Suggestion, error)

	// ListSuggestions retrieves suggestions, optionally filtered by status
	ListSuggestions(ctx context.Context, status review.Status) ([]*review.Suggestion, error)

	// AcceptSuggestion creates the proposed tag and marks the suggestion
	// accepted, recording who decided
	AcceptSuggestion(ctx context.Context, id, reviewer string) (*tag.Tag, error)

	// RejectSuggestion marks the suggestion rejected
	RejectSuggestion(ctx context.Context, id, reviewer string) error
}

// normalizationService implements NormalizationService.
type normalizationService struct {
	suggestions ports.SuggestionRepository
	taxonomy    TaxonomyService
	eventBus    ports.EventBus
	logger      *zap.Logger
}

// NewNormalizationService creates the normalization service.
func NewNormalizationService(
	suggestions ports.SuggestionRepository,
	taxonomy TaxonomyService,
	eventBus ports.EventBus,
	logger *zap.Logger,
) NormalizationService {
	return &normalizationService{
		suggestions: suggestions,
		taxonomy:    taxonomy,
		eventBus:    eventBus,
		logger:      logger,
	}
}

// RaiseSuggestion records a proposed tag name for review, attaching the
// close existing names so the reviewer sees what it would collide with.
func (s *normalizationService) RaiseSuggestion(ctx context.Context, req RaiseSuggestionRequest) (*review.Suggestion, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, appErrors.NewValidationError("suggestion name is required")
	}

	pending, err := s.suggestions.FindByStatus(ctx, review.StatusPending)
	if err != nil {
		return nil, err
	}
	for _, existing := range pending {
		if strings.EqualFold(existing.Name, name) {
			return s.mergeSources(ctx, existing, req.SourceNames)
		}
	}

	suggestion, err := review.NewSuggestion(name, tag.ParseType(req.Type), req.Confidence, req.SourceNames)
	if err != nil {
		return nil, err
	}

	matches, err := s.taxonomy.SuggestSimilar(ctx, name)
	if err != nil {
		return nil, err
	}
	suggestion.AttachMatches(matches)

	if err := s.suggestions.Save(ctx, suggestion); err != nil {
		return nil, err
	}

	s.logger.Info("suggestion raised",
		zap.String("suggestionId", suggestion.ID),
		zap.String("name", suggestion.Name),
		zap.Float64("confidence", suggestion.Confidence),
		zap.Int("matches", len(matches)),
	)
	return suggestion, nil
}

// GetSuggestion retrieves a suggestion.
func (s *normalizationService) GetSuggestion(ctx context.Context, id string) (*review.Suggestion, error) {
	if id == "" {
		return nil, appErrors.NewValidationError("suggestion id is required")
	}
	return s.suggestions.FindByID(ctx, id)
}

// ListSuggestions retrieves suggestions. An empty status returns all of
// them.
func (s *normalizationService) ListSuggestions(ctx context.Context, status review.Status) ([]*review.Suggestion, error) {
	if status == "" {
		return s.suggestions.FindAll(ctx)
	}
	switch status {
	case review.StatusPending, review.StatusAccepted, review.StatusRejected:
	default:
		return nil, appErrors.NewValidationError("status must be one of pending, accepted, rejected")
	}
	return s.suggestions.FindByStatus(ctx, status)
}

// AcceptSuggestion creates the proposed tag and marks the suggestion
// accepted. The near-duplicate guard is skipped: the reviewer has already
// seen the attached matches and decided. An exact name collision still
// fails, and the suggestion then stays pending for another pass.
func (s *normalizationService) AcceptSuggestion(ctx context.Context, id, reviewer string) (*tag.Tag, error) {
	suggestion, err := s.GetSuggestion(ctx, id)
	if err != nil {
		return nil, err
	}
	if !suggestion.IsPending() {
		return nil, appErrors.NewConflictError("suggestion has already been reviewed")
	}

	created, err := s.taxonomy.CreateTag(ctx, CreateTagRequest{
		Name:        suggestion.Name,
		Type:        suggestion.TagType.String(),
		Description: describeOrigin(suggestion),
		Force:       true,
	})
	if err != nil {
		return nil, err
	}

	if err := suggestion.Accept(reviewer); err != nil {
		return nil, err
	}
	if err := s.suggestions.Save(ctx, suggestion); err != nil {
		return nil, err
	}

	s.logger.Info("suggestion accepted",
		zap.String("suggestionId", suggestion.ID),
		zap.String("name", suggestion.Name),
		zap.String("reviewer", suggestion.ReviewedBy),
	)
	s.publishReview(ctx, suggestion, created.ID.String())
	return created, nil
}

// RejectSuggestion marks the suggestion rejected.
func (s *normalizationService) RejectSuggestion(ctx context.Context, id, reviewer string) error {
	suggestion, err := s.GetSuggestion(ctx, id)
	if err != nil {
		return err
	}
	if err := suggestion.Reject(reviewer); err != nil {
		return err
	}
	if err := s.suggestions.Save(ctx, suggestion); err != nil {
		return err
	}

	s.logger.Info("suggestion rejected",
		zap.String("suggestionId", suggestion.ID),
		zap.String("name", suggestion.Name),
		zap.String("reviewer", suggestion.ReviewedBy),
	)
	s.publishReview(ctx, suggestion, "")
	return nil
}

// mergeSources folds new source names into an existing pending suggestion.
func (s *normalizationService) mergeSources(ctx context.Context, suggestion *review.Suggestion, sources []string) (*review.Suggestion, error) {
	merged := false
	for _, source := range sources {
		source = strings.TrimSpace(source)
		if source == "" || containsFold(suggestion.SourceNames, source) {
			continue
		}
		suggestion.SourceNames = append(suggestion.SourceNames, source)
		merged = true
	}
	if !merged {
		return suggestion, nil
	}
	if err := s.suggestions.Save(ctx, suggestion); err != nil {
		return nil, err
	}
	return suggestion, nil
}

func (s *normalizationService) publishReview(ctx context.Context, suggestion *review.Suggestion, createdTagID string) {
	if s.eventBus == nil {
		return
	}
	event := events.NewSuggestionReviewed(
		suggestion.ID, suggestion.Name, string(suggestion.Status), createdTagID, time.Now())
	if err := s.eventBus.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed",
			zap.String("eventType", event.GetEventType()),
			zap.String("suggestionId", suggestion.ID),
			zap.Error(err),
		)
	}
}

// describeOrigin summarizes where an accepted suggestion came from, for the
// created tag's description.
func describeOrigin(suggestion *review.Suggestion) string {
	if len(suggestion.SourceNames) == 0 {
		return ""
	}
	return "Normalized from: " + strings.Join(suggestion.SourceNames, ", ")
}

func containsFold(haystack []string, needle string) bool {
	for _, s := range haystack {
		if strings.EqualFold(s, needle) {
			return true
		}
	}
	return false
}

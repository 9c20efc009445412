package memory

import (
	"context"
	"sort"
	"sync"

	"codekata-backend/application/ports"
	"codekata-backend/domain/review"
	"codekata-backend/domain/suggest"
	appErrors "codekata-backend/pkg/errors"
)

// SuggestionRepository is an in-memory ports.SuggestionRepository.
type SuggestionRepository struct {
	mu          sync.RWMutex
	suggestions map[string]*review.Suggestion
}

var _ ports.SuggestionRepository = (*SuggestionRepository)(nil)

// NewSuggestionRepository creates an empty in-memory suggestion
// repository.
func NewSuggestionRepository() *SuggestionRepository {
	return &SuggestionRepository{
		suggestions: make(map[string]*review.Suggestion),
	}
}

func copySuggestion(s *review.Suggestion) *review.Suggestion {
	clone := *s
	clone.SourceNames = append([]string{}, s.SourceNames...)
	clone.Matches = append([]suggest.Match{}, s.Matches...)
	if s.ReviewedAt != nil {
		t := *s.ReviewedAt
		clone.ReviewedAt = &t
	}
	return &clone
}

// Save persists a suggestion (create or update).
func (r *SuggestionRepository) Save(ctx context.Context, s *review.Suggestion) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.suggestions[s.ID] = copySuggestion(s)
	return nil
}

// FindByID retrieves a suggestion by its ID.
func (r *SuggestionRepository) FindByID(ctx context.Context, id string) (*review.Suggestion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.suggestions[id]
	if !ok {
		return nil, appErrors.NewNotFoundError("suggestion")
	}
	return copySuggestion(s), nil
}

// FindByStatus retrieves suggestions in the given review state, oldest
// first.
func (r *SuggestionRepository) FindByStatus(ctx context.Context, status review.Status) ([]*review.Suggestion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*review.Suggestion, 0)
	for _, s := range r.suggestions {
		if s.Status == status {
			matched = append(matched, copySuggestion(s))
		}
	}
	sortSuggestions(matched)
	return matched, nil
}

// FindAll retrieves every suggestion, oldest first.
func (r *SuggestionRepository) FindAll(ctx context.Context) ([]*review.Suggestion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*review.Suggestion, 0, len(r.suggestions))
	for _, s := range r.suggestions {
		all = append(all, copySuggestion(s))
	}
	sortSuggestions(all)
	return all, nil
}

// Delete removes a suggestion. Deleting an absent one is a no-op.
func (r *SuggestionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.suggestions, id)
	return nil
}

func sortSuggestions(suggestions []*review.Suggestion) {
	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].CreatedAt.Equal(suggestions[j].CreatedAt) {
			return suggestions[i].ID < suggestions[j].ID
		}
		return suggestions[i].CreatedAt.Before(suggestions[j].CreatedAt)
	})
}

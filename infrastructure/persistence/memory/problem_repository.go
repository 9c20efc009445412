package memory

import (
	"context"
	"sort"
	"sync"

	"codekata-backend/application/ports"
	"codekata-backend/domain/problem"
	"codekata-backend/domain/tag"
	appErrors "codekata-backend/pkg/errors"
)

// ProblemRepository is an in-memory ports.ProblemRepository.
type ProblemRepository struct {
	mu       sync.RWMutex
	problems map[string]*problem.Problem
}

var _ ports.ProblemRepository = (*ProblemRepository)(nil)

// NewProblemRepository creates an empty in-memory problem repository.
func NewProblemRepository() *ProblemRepository {
	return &ProblemRepository{
		problems: make(map[string]*problem.Problem),
	}
}

func copyProblem(p *problem.Problem) *problem.Problem {
	clone := *p
	clone.TagIDs = append([]tag.ID{}, p.TagIDs...)
	if p.PublishedAt != nil {
		t := *p.PublishedAt
		clone.PublishedAt = &t
	}
	return &clone
}

// Save persists a problem (create or update).
func (r *ProblemRepository) Save(ctx context.Context, p *problem.Problem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.problems[p.ID] = copyProblem(p)
	return nil
}

// FindByID retrieves a problem by its ID.
func (r *ProblemRepository) FindByID(ctx context.Context, id string) (*problem.Problem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.problems[id]
	if !ok {
		return nil, appErrors.NewNotFoundError("problem")
	}
	return copyProblem(p), nil
}

// FindBySlug retrieves a problem by its URL slug.
func (r *ProblemRepository) FindBySlug(ctx context.Context, slug string) (*problem.Problem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.problems {
		if p.Slug == slug {
			return copyProblem(p), nil
		}
	}
	return nil, appErrors.NewNotFoundError("problem")
}

// FindAll retrieves problems matching the filter, oldest first.
func (r *ProblemRepository) FindAll(ctx context.Context, filter ports.ProblemFilter) ([]*problem.Problem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*problem.Problem, 0)
	for _, p := range r.problems {
		if matchesFilter(p, filter) {
			matched = append(matched, copyProblem(p))
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})
	return matched, nil
}

// Delete removes a problem. Deleting an absent one is a no-op.
func (r *ProblemRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.problems, id)
	return nil
}

func matchesFilter(p *problem.Problem, filter ports.ProblemFilter) bool {
	if filter.Difficulty != "" && p.Difficulty != filter.Difficulty {
		return false
	}
	if !filter.TagID.IsZero() && !p.HasTag(filter.TagID) {
		return false
	}
	if filter.PublishedOnly && !p.IsPublished() {
		return false
	}
	return true
}

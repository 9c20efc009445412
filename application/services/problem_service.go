package services

import (
	"context"

	"go.uber.org/zap"

	"codekata-backend/application/ports"
	"codekata-backend/domain/problem"
	"codekata-backend/domain/tag"
	appErrors "codekata-backend/pkg/errors"
)

// CreateProblemRequest carries the fields for a new challenge.
type CreateProblemRequest struct {
	Title      string   `json:"title" validate:"required,min=1,max=200"`
	Statement  string   `json:"statement" validate:"required"`
	Difficulty string   `json:"difficulty" validate:"required,oneof=easy medium hard"`
	TagIDs     []string `json:"tag_ids"`
	Publish    bool     `json:"publish"`
}

// ListProblemsQuery narrows a catalog listing.
type ListProblemsQuery struct {
	Difficulty    string
	TagID         string
	IncludeDrafts bool
}

// ProblemService defines the interface for the challenge catalog.
type ProblemService interface {
	// CreateProblem adds a challenge to the catalog
	CreateProblem(ctx context.Context, req CreateProblemRequest) (*problem.Problem, error)

	// GetProblem retrieves a challenge by ID or slug
	GetProblem(ctx context.Context, idOrSlug string) (*problem.Problem, error)

	// ListProblems retrieves challenges matching the query
	ListProblems(ctx context.Context, query ListProblemsQuery) ([]*problem.Problem, error)

	// PublishProblem makes a challenge visible to readers
	PublishProblem(ctx context.Context, id string) (*problem.Problem, error)

	// TagProblem attaches an existing tag to a challenge
	TagProblem(ctx context.Context, id, tagID string) (*problem.Problem, error)

	// UntagProblem detaches a tag from a challenge
	UntagProblem(ctx context.Context, id, tagID string) (*problem.Problem, error)

	// DeleteProblem removes a challenge from the catalog
	DeleteProblem(ctx context.Context, id string) error
}

// problemService implements ProblemService.
type problemService struct {
	problems ports.ProblemRepository
	tags     ports.TagRepository
	logger   *zap.Logger
}

// NewProblemService creates the problem service.
func NewProblemService(problems ports.ProblemRepository, tags ports.TagRepository, logger *zap.Logger) ProblemService {
	return &problemService{
		problems: problems,
		tags:     tags,
		logger:   logger,
	}
}

// CreateProblem adds a challenge. Every referenced tag must exist: the
// catalog never points at tags the taxonomy does not know.
func (s *problemService) CreateProblem(ctx context.Context, req CreateProblemRequest) (*problem.Problem, error) {
	difficulty, err := problem.ParseDifficulty(req.Difficulty)
	if err != nil {
		return nil, err
	}

	tagIDs := make([]tag.ID, 0, len(req.TagIDs))
	for _, raw := range req.TagIDs {
		id, err := tag.ParseID(raw)
		if err != nil {
			return nil, appErrors.NewValidationError("tag id is required")
		}
		if _, err := s.tags.FindByID(ctx, id); err != nil {
			return nil, err
		}
		tagIDs = append(tagIDs, id)
	}

	p, err := problem.NewProblem(req.Title, req.Statement, difficulty, tagIDs)
	if err != nil {
		return nil, err
	}

	if other, err := s.problems.FindBySlug(ctx, p.Slug); err == nil && other != nil {
		return nil, appErrors.NewConflictError("a problem with this title already exists").
			WithDetails(map[string]interface{}{"existing_id": other.ID})
	} else if err != nil && !appErrors.IsNotFound(err) {
		return nil, err
	}

	if req.Publish {
		p.Publish()
	}
	if err := s.problems.Save(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("problem created",
		zap.String("problemId", p.ID),
		zap.String("slug", p.Slug),
		zap.String("difficulty", p.Difficulty.String()),
	)
	return p, nil
}

// GetProblem retrieves a challenge, first by ID, then by slug.
func (s *problemService) GetProblem(ctx context.Context, idOrSlug string) (*problem.Problem, error) {
	if idOrSlug == "" {
		return nil, appErrors.NewValidationError("problem id is required")
	}
	p, err := s.problems.FindByID(ctx, idOrSlug)
	if appErrors.IsNotFound(err) {
		return s.problems.FindBySlug(ctx, idOrSlug)
	}
	return p, err
}

// ListProblems retrieves challenges matching the query. Drafts stay hidden
// unless explicitly asked for.
func (s *problemService) ListProblems(ctx context.Context, query ListProblemsQuery) ([]*problem.Problem, error) {
	filter := ports.ProblemFilter{PublishedOnly: !query.IncludeDrafts}

	if query.Difficulty != "" {
		difficulty, err := problem.ParseDifficulty(query.Difficulty)
		if err != nil {
			return nil, err
		}
		filter.Difficulty = difficulty
	}
	if query.TagID != "" {
		id, err := tag.ParseID(query.TagID)
		if err != nil {
			return nil, appErrors.NewValidationError("tag id is required")
		}
		filter.TagID = id
	}

	return s.problems.FindAll(ctx, filter)
}

// PublishProblem makes a challenge visible.
func (s *problemService) PublishProblem(ctx context.Context, id string) (*problem.Problem, error) {
	p, err := s.problems.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.IsPublished() {
		return p, nil
	}
	p.Publish()
	if err := s.problems.Save(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("problem published", zap.String("problemId", p.ID), zap.String("slug", p.Slug))
	return p, nil
}

// TagProblem attaches an existing tag to a challenge.
func (s *problemService) TagProblem(ctx context.Context, id, tagID string) (*problem.Problem, error) {
	parsed, err := tag.ParseID(tagID)
	if err != nil {
		return nil, appErrors.NewValidationError("tag id is required")
	}
	if _, err := s.tags.FindByID(ctx, parsed); err != nil {
		return nil, err
	}

	p, err := s.problems.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.AddTag(parsed)
	if err := s.problems.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// UntagProblem detaches a tag. Detaching an absent tag is a no-op.
func (s *problemService) UntagProblem(ctx context.Context, id, tagID string) (*problem.Problem, error) {
	parsed, err := tag.ParseID(tagID)
	if err != nil {
		return nil, appErrors.NewValidationError("tag id is required")
	}

	p, err := s.problems.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.RemoveTag(parsed)
	if err := s.problems.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteProblem removes a challenge.
func (s *problemService) DeleteProblem(ctx context.Context, id string) error {
	if _, err := s.problems.FindByID(ctx, id); err != nil {
		return err
	}
	return s.problems.Delete(ctx, id)
}

package ports

import (
	"context"

	"codekata-backend/domain/problem"
	"codekata-backend/domain/review"
	"codekata-backend/domain/subscription"
	"codekata-backend/domain/tag"
)

// TagRepository defines the interface for tag persistence.
// This is a port in hexagonal architecture - the domain doesn't know about
// the implementation.
type TagRepository interface {
	// Save persists a tag record (create or update)
	Save(ctx context.Context, record *tag.Tag) error

	// SaveWithParentCheck persists a tag record and, in the same
	// transaction, verifies the given parent still exists. Committing an
	// edge uses this so the edge can never land on a concurrently
	// deleted parent.
	SaveWithParentCheck(ctx context.Context, record *tag.Tag, parentID tag.ID) error

	// FindByID retrieves a tag by its ID
	FindByID(ctx context.Context, id tag.ID) (*tag.Tag, error)

	// FindByName retrieves a tag by name, matched case-insensitively
	FindByName(ctx context.Context, name string) (*tag.Tag, error)

	// FindAll retrieves the full tag corpus
	FindAll(ctx context.Context) ([]*tag.Tag, error)

	// Delete removes a tag record
	Delete(ctx context.Context, id tag.ID) error
}

// SuggestionRepository defines the interface for normalization suggestion
// persistence.
type SuggestionRepository interface {
	// Save persists a suggestion (create or update)
	Save(ctx context.Context, suggestion *review.Suggestion) error

	// FindByID retrieves a suggestion by its ID
	FindByID(ctx context.Context, id string) (*review.Suggestion, error)

	// FindByStatus retrieves all suggestions in the given review state
	FindByStatus(ctx context.Context, status review.Status) ([]*review.Suggestion, error)

	// FindAll retrieves every suggestion
	FindAll(ctx context.Context) ([]*review.Suggestion, error)

	// Delete removes a suggestion
	Delete(ctx context.Context, id string) error
}

// ProblemFilter narrows a problem listing.
type ProblemFilter struct {
	Difficulty    problem.Difficulty
	TagID         tag.ID
	PublishedOnly bool
}

// ProblemRepository defines the interface for challenge catalog persistence.
type ProblemRepository interface {
	// Save persists a problem (create or update)
	Save(ctx context.Context, p *problem.Problem) error

	// FindByID retrieves a problem by its ID
	FindByID(ctx context.Context, id string) (*problem.Problem, error)

	// FindBySlug retrieves a problem by its URL slug
	FindBySlug(ctx context.Context, slug string) (*problem.Problem, error)

	// FindAll retrieves problems matching the filter
	FindAll(ctx context.Context, filter ProblemFilter) ([]*problem.Problem, error)

	// Delete removes a problem
	Delete(ctx context.Context, id string) error
}

// SubscriptionRepository defines the interface for mailing list persistence.
type SubscriptionRepository interface {
	// Save persists a subscription (create or update)
	Save(ctx context.Context, sub *subscription.Subscription) error

	// FindByID retrieves a subscription by its ID
	FindByID(ctx context.Context, id string) (*subscription.Subscription, error)

	// FindByEmail retrieves a subscription by normalized email
	FindByEmail(ctx context.Context, email string) (*subscription.Subscription, error)

	// FindAll retrieves every subscription
	FindAll(ctx context.Context) ([]*subscription.Subscription, error)
}

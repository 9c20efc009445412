package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"codekata-backend/application/ports"
	"codekata-backend/application/services"
	"codekata-backend/domain/problem"
	"codekata-backend/domain/review"
	"codekata-backend/domain/subscription"
	"codekata-backend/domain/suggest"
	"codekata-backend/domain/tag"
)

// MockTaxonomyService is a testify mock of services.TaxonomyService.
type MockTaxonomyService struct {
	mock.Mock
}

func (m *MockTaxonomyService) CreateTag(ctx context.Context, req services.CreateTagRequest) (*tag.Tag, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tag.Tag), args.Error(1)
}

func (m *MockTaxonomyService) GetTag(ctx context.Context, id string) (*tag.Tag, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tag.Tag), args.Error(1)
}

func (m *MockTaxonomyService) ListTags(ctx context.Context) ([]*tag.Tag, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*tag.Tag), args.Error(1)
}

func (m *MockTaxonomyService) UpdateTag(ctx context.Context, id string, req services.UpdateTagRequest) (*tag.Tag, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tag.Tag), args.Error(1)
}

func (m *MockTaxonomyService) DeleteTag(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaxonomyService) GetHierarchy(ctx context.Context) (*services.HierarchyView, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.HierarchyView), args.Error(1)
}

func (m *MockTaxonomyService) AddRelationship(ctx context.Context, parentID, childID string) error {
	args := m.Called(ctx, parentID, childID)
	return args.Error(0)
}

func (m *MockTaxonomyService) RemoveRelationship(ctx context.Context, parentID, childID string) error {
	args := m.Called(ctx, parentID, childID)
	return args.Error(0)
}

func (m *MockTaxonomyService) ValidateRelationship(ctx context.Context, parentID, childID string) error {
	args := m.Called(ctx, parentID, childID)
	return args.Error(0)
}

func (m *MockTaxonomyService) SuggestSimilar(ctx context.Context, name string) ([]suggest.Match, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]suggest.Match), args.Error(1)
}

// MockNormalizationService is a testify mock of services.NormalizationService.
type MockNormalizationService struct {
	mock.Mock
}

func (m *MockNormalizationService) RaiseSuggestion(ctx context.Context, req services.RaiseSuggestionRequest) (*review.Suggestion, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*review.Suggestion), args.Error(1)
}

func (m *MockNormalizationService) GetSuggestion(ctx context.Context, id string) (*review.Suggestion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*review.Suggestion), args.Error(1)
}

func (m *MockNormalizationService) ListSuggestions(ctx context.Context, status review.Status) ([]*review.Suggestion, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*review.Suggestion), args.Error(1)
}

func (m *MockNormalizationService) AcceptSuggestion(ctx context.Context, id, reviewer string) (*tag.Tag, error) {
	args := m.Called(ctx, id, reviewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tag.Tag), args.Error(1)
}

func (m *MockNormalizationService) RejectSuggestion(ctx context.Context, id, reviewer string) error {
	args := m.Called(ctx, id, reviewer)
	return args.Error(0)
}

// MockPipelineService is a testify mock of services.PipelineService.
type MockPipelineService struct {
	mock.Mock
}

func (m *MockPipelineService) TriggerRun(ctx context.Context, kind, requestedBy string) (string, error) {
	args := m.Called(ctx, kind, requestedBy)
	return args.String(0), args.Error(1)
}

func (m *MockPipelineService) GetOperation(ctx context.Context, id string) (*ports.Operation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.Operation), args.Error(1)
}

func (m *MockPipelineService) WaitForCompletion(ctx context.Context, id string, timeout time.Duration) (*ports.Operation, error) {
	args := m.Called(ctx, id, timeout)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.Operation), args.Error(1)
}

// MockProblemService is a testify mock of services.ProblemService.
type MockProblemService struct {
	mock.Mock
}

func (m *MockProblemService) CreateProblem(ctx context.Context, req services.CreateProblemRequest) (*problem.Problem, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*problem.Problem), args.Error(1)
}

func (m *MockProblemService) GetProblem(ctx context.Context, idOrSlug string) (*problem.Problem, error) {
	args := m.Called(ctx, idOrSlug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*problem.Problem), args.Error(1)
}

func (m *MockProblemService) ListProblems(ctx context.Context, query services.ListProblemsQuery) ([]*problem.Problem, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*problem.Problem), args.Error(1)
}

func (m *MockProblemService) PublishProblem(ctx context.Context, id string) (*problem.Problem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*problem.Problem), args.Error(1)
}

func (m *MockProblemService) TagProblem(ctx context.Context, id, tagID string) (*problem.Problem, error) {
	args := m.Called(ctx, id, tagID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*problem.Problem), args.Error(1)
}

func (m *MockProblemService) UntagProblem(ctx context.Context, id, tagID string) (*problem.Problem, error) {
	args := m.Called(ctx, id, tagID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*problem.Problem), args.Error(1)
}

func (m *MockProblemService) DeleteProblem(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockSubscriptionService is a testify mock of services.SubscriptionService.
type MockSubscriptionService struct {
	mock.Mock
}

func (m *MockSubscriptionService) Subscribe(ctx context.Context, req services.SubscribeRequest) (*subscription.Subscription, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

func (m *MockSubscriptionService) UpdateSubscription(ctx context.Context, id string, req services.UpdateSubscriptionRequest) (*subscription.Subscription, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

func (m *MockSubscriptionService) CancelSubscription(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSubscriptionService) GetSubscription(ctx context.Context, id string) (*subscription.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

func (m *MockSubscriptionService) ListSubscriptions(ctx context.Context) ([]*subscription.Subscription, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*subscription.Subscription), args.Error(1)
}

func testTag(t *testing.T, name string) *tag.Tag {
	t.Helper()
	record, err := tag.NewTag(name, tag.TypeConcept, "")
	require.NoError(t, err)
	return record
}

func testProblem(t *testing.T, title string) *problem.Problem {
	t.Helper()
	record, err := problem.NewProblem(title, "Given a graph, find the shortest path.", problem.DifficultyMedium, nil)
	require.NoError(t, err)
	return record
}

func testSuggestion(t *testing.T, name string) *review.Suggestion {
	t.Helper()
	record, err := review.NewSuggestion(name, tag.TypeConcept, 0.9, []string{name})
	require.NoError(t, err)
	return record
}

func testSubscription(t *testing.T, email string) *subscription.Subscription {
	t.Helper()
	record, err := subscription.NewSubscription(email, subscription.TierFree)
	require.NoError(t, err)
	return record
}

package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"codekata-backend/application/ports"
	"codekata-backend/domain/events"
	"codekata-backend/domain/problem"
	"codekata-backend/domain/review"
	"codekata-backend/domain/subscription"
	"codekata-backend/domain/suggest"
	"codekata-backend/domain/tag"
	appErrors "codekata-backend/pkg/errors"
)

func mustTagID(t testing.TB, raw string) tag.ID {
	t.Helper()
	id, err := tag.ParseID(raw)
	require.NoError(t, err)
	return id
}

// testTag builds a tag record with a fixed ID for mock expectations.
func testTag(t testing.TB, id, name string, parentIDs ...string) *tag.Tag {
	t.Helper()
	record, err := tag.NewTag(name, tag.TypeTopic, "")
	require.NoError(t, err)
	record.ID = mustTagID(t, id)
	for _, p := range parentIDs {
		record.AddParent(mustTagID(t, p))
	}
	return record
}

// MockTagRepository mocks ports.TagRepository.
type MockTagRepository struct {
	mock.Mock
}

func (m *MockTagRepository) Save(ctx context.Context, record *tag.Tag) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockTagRepository) SaveWithParentCheck(ctx context.Context, record *tag.Tag, parentID tag.ID) error {
	args := m.Called(ctx, record, parentID)
	return args.Error(0)
}

func (m *MockTagRepository) FindByID(ctx context.Context, id tag.ID) (*tag.Tag, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tag.Tag), args.Error(1)
}

func (m *MockTagRepository) FindByName(ctx context.Context, name string) (*tag.Tag, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tag.Tag), args.Error(1)
}

func (m *MockTagRepository) FindAll(ctx context.Context) ([]*tag.Tag, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*tag.Tag), args.Error(1)
}

func (m *MockTagRepository) Delete(ctx context.Context, id tag.ID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockSuggestionRepository mocks ports.SuggestionRepository.
type MockSuggestionRepository struct {
	mock.Mock
}

func (m *MockSuggestionRepository) Save(ctx context.Context, suggestion *review.Suggestion) error {
	args := m.Called(ctx, suggestion)
	return args.Error(0)
}

func (m *MockSuggestionRepository) FindByID(ctx context.Context, id string) (*review.Suggestion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*review.Suggestion), args.Error(1)
}

func (m *MockSuggestionRepository) FindByStatus(ctx context.Context, status review.Status) ([]*review.Suggestion, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*review.Suggestion), args.Error(1)
}

func (m *MockSuggestionRepository) FindAll(ctx context.Context) ([]*review.Suggestion, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*review.Suggestion), args.Error(1)
}

func (m *MockSuggestionRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockProblemRepository mocks ports.ProblemRepository.
type MockProblemRepository struct {
	mock.Mock
}

func (m *MockProblemRepository) Save(ctx context.Context, p *problem.Problem) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProblemRepository) FindByID(ctx context.Context, id string) (*problem.Problem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*problem.Problem), args.Error(1)
}

func (m *MockProblemRepository) FindBySlug(ctx context.Context, slug string) (*problem.Problem, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*problem.Problem), args.Error(1)
}

func (m *MockProblemRepository) FindAll(ctx context.Context, filter ports.ProblemFilter) ([]*problem.Problem, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*problem.Problem), args.Error(1)
}

func (m *MockProblemRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockSubscriptionRepository mocks ports.SubscriptionRepository.
type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) Save(ctx context.Context, sub *subscription.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) FindByID(ctx context.Context, id string) (*subscription.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) FindByEmail(ctx context.Context, email string) (*subscription.Subscription, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) FindAll(ctx context.Context) ([]*subscription.Subscription, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*subscription.Subscription), args.Error(1)
}

// MockEventBus mocks ports.EventBus.
type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(ctx context.Context, event events.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventBus) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

// MockTaxonomyService mocks TaxonomyService for the services layered on
// top of it.
type MockTaxonomyService struct {
	mock.Mock
}

func (m *MockTaxonomyService) CreateTag(ctx context.Context, req CreateTagRequest) (*tag.Tag, error) {
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

func (m *MockTaxonomyService) UpdateTag(ctx context.Context, id string, req UpdateTagRequest) (*tag.Tag, error) {
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

func (m *MockTaxonomyService) GetHierarchy(ctx context.Context) (*HierarchyView, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*HierarchyView), args.Error(1)
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

// MockNormalizationService mocks NormalizationService for the pipeline
// tests.
type MockNormalizationService struct {
	mock.Mock
}

func (m *MockNormalizationService) RaiseSuggestion(ctx context.Context, req RaiseSuggestionRequest) (*review.Suggestion, error) {
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

// fakeOperationStore is a thread-safe in-memory store for exercising the
// pipeline's asynchronous run end to end.
type fakeOperationStore struct {
	mu  sync.Mutex
	ops map[string]ports.Operation
}

func newFakeOperationStore() *fakeOperationStore {
	return &fakeOperationStore{ops: make(map[string]ports.Operation)}
}

func (f *fakeOperationStore) Put(_ context.Context, op *ports.Operation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops[op.ID] = *op
	return nil
}

func (f *fakeOperationStore) Get(_ context.Context, id string) (*ports.Operation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	op, ok := f.ops[id]
	if !ok {
		return nil, appErrors.NewNotFoundError("operation")
	}
	copied := op
	return &copied, nil
}

func (f *fakeOperationStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.ops, id)
	return nil
}

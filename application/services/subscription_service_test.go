package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"codekata-backend/domain/events"
	"codekata-backend/domain/subscription"
	"codekata-backend/domain/tag"
	appErrors "codekata-backend/pkg/errors"
)

func newSubscriptionFixture() (*MockSubscriptionRepository, *MockTagRepository, *MockEventBus, SubscriptionService) {
	subscriptions := new(MockSubscriptionRepository)
	tags := new(MockTagRepository)
	bus := new(MockEventBus)
	svc := NewSubscriptionService(subscriptions, tags, bus, zap.NewNop())
	return subscriptions, tags, bus, svc
}

func testSubscription(t *testing.T, id, email string) *subscription.Subscription {
	t.Helper()
	sub, err := subscription.NewSubscription(email, subscription.TierFree)
	require.NoError(t, err)
	sub.ID = id
	return sub
}

func TestSubscriptionService_Subscribe_Success(t *testing.T) {
	// Arrange
	subscriptions, _, bus, svc := newSubscriptionFixture()
	subscriptions.On("FindByEmail", mock.Anything, "dev@example.com").
		Return(nil, appErrors.NewNotFoundError("subscription"))
	subscriptions.On("Save", mock.Anything, mock.AnythingOfType("*subscription.Subscription")).Return(nil)
	bus.On("Publish", mock.Anything, mock.MatchedBy(func(e events.SubscriptionCreated) bool {
		return e.Email == "dev@example.com" && e.Tier == "pro"
	})).Return(nil)

	// Act
	sub, err := svc.Subscribe(context.Background(), SubscribeRequest{
		Email: "  Dev@Example.COM ",
		Tier:  "pro",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "dev@example.com", sub.Email)
	assert.Equal(t, subscription.TierPro, sub.Tier)
	assert.True(t, sub.IsActive())
	subscriptions.AssertExpectations(t)
	bus.AssertExpectations(t)
}

func TestSubscriptionService_Subscribe_ActiveEmailConflict(t *testing.T) {
	// Arrange
	subscriptions, _, _, svc := newSubscriptionFixture()
	existing := testSubscription(t, "s1", "dev@example.com")
	subscriptions.On("FindByEmail", mock.Anything, "dev@example.com").Return(existing, nil)

	// Act
	sub, err := svc.Subscribe(context.Background(), SubscribeRequest{Email: "dev@example.com"})

	// Assert
	assert.Nil(t, sub)
	assert.True(t, appErrors.IsConflict(err))
	subscriptions.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSubscriptionService_Subscribe_ReactivatesCancelled(t *testing.T) {
	// Arrange
	subscriptions, _, bus, svc := newSubscriptionFixture()
	existing := testSubscription(t, "s1", "dev@example.com")
	existing.Cancel()
	subscriptions.On("FindByEmail", mock.Anything, "dev@example.com").Return(existing, nil)
	subscriptions.On("Save", mock.Anything, existing).Return(nil)
	bus.On("Publish", mock.Anything, mock.AnythingOfType("events.SubscriptionCreated")).Return(nil)

	// Act
	sub, err := svc.Subscribe(context.Background(), SubscribeRequest{
		Email: "dev@example.com",
		Tier:  "pro",
	})

	// Assert
	require.NoError(t, err)
	assert.Same(t, existing, sub)
	assert.True(t, sub.IsActive())
	assert.Equal(t, subscription.TierPro, sub.Tier)
	assert.Nil(t, sub.CancelledAt)
	subscriptions.AssertExpectations(t)
	bus.AssertExpectations(t)
}

func TestSubscriptionService_Subscribe_InvalidEmail(t *testing.T) {
	// Arrange
	subscriptions, _, _, svc := newSubscriptionFixture()
	subscriptions.On("FindByEmail", mock.Anything, "not-an-email").
		Return(nil, appErrors.NewNotFoundError("subscription"))

	// Act
	sub, err := svc.Subscribe(context.Background(), SubscribeRequest{Email: "not-an-email"})

	// Assert
	assert.Nil(t, sub)
	assert.True(t, appErrors.IsValidation(err))
	subscriptions.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSubscriptionService_Subscribe_UnknownTierDefaultsToFree(t *testing.T) {
	// Arrange
	subscriptions, _, bus, svc := newSubscriptionFixture()
	subscriptions.On("FindByEmail", mock.Anything, "dev@example.com").
		Return(nil, appErrors.NewNotFoundError("subscription"))
	subscriptions.On("Save", mock.Anything, mock.AnythingOfType("*subscription.Subscription")).Return(nil)
	bus.On("Publish", mock.Anything, mock.AnythingOfType("events.SubscriptionCreated")).Return(nil)

	// Act
	sub, err := svc.Subscribe(context.Background(), SubscribeRequest{
		Email: "dev@example.com",
		Tier:  "platinum",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, subscription.TierFree, sub.Tier)
}

func TestSubscriptionService_CancelSubscription(t *testing.T) {
	// Arrange
	subscriptions, _, bus, svc := newSubscriptionFixture()
	sub := testSubscription(t, "s1", "dev@example.com")
	subscriptions.On("FindByID", mock.Anything, "s1").Return(sub, nil)
	subscriptions.On("Save", mock.Anything, sub).Return(nil)
	bus.On("Publish", mock.Anything, mock.MatchedBy(func(e events.SubscriptionCancelled) bool {
		return e.SubscriptionID == "s1" && e.Email == "dev@example.com"
	})).Return(nil)

	// Act
	err := svc.CancelSubscription(context.Background(), "s1")

	// Assert
	require.NoError(t, err)
	assert.False(t, sub.IsActive())
	assert.NotNil(t, sub.CancelledAt)
	subscriptions.AssertExpectations(t)
	bus.AssertExpectations(t)
}

func TestSubscriptionService_CancelSubscription_AlreadyCancelled(t *testing.T) {
	// Arrange
	subscriptions, _, bus, svc := newSubscriptionFixture()
	sub := testSubscription(t, "s1", "dev@example.com")
	sub.Cancel()
	first := *sub.CancelledAt
	subscriptions.On("FindByID", mock.Anything, "s1").Return(sub, nil)

	// Act
	err := svc.CancelSubscription(context.Background(), "s1")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, first, *sub.CancelledAt)
	subscriptions.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	bus.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestSubscriptionService_CancelSubscription_Unknown(t *testing.T) {
	// Arrange
	subscriptions, _, _, svc := newSubscriptionFixture()
	subscriptions.On("FindByID", mock.Anything, "missing").
		Return(nil, appErrors.NewNotFoundError("subscription"))

	// Act
	err := svc.CancelSubscription(context.Background(), "missing")

	// Assert
	assert.True(t, appErrors.IsNotFound(err))
}

func TestSubscriptionService_GetSubscription_EmptyID(t *testing.T) {
	// Arrange
	_, _, _, svc := newSubscriptionFixture()

	// Act
	sub, err := svc.GetSubscription(context.Background(), "")

	// Assert
	assert.Nil(t, sub)
	assert.True(t, appErrors.IsValidation(err))
}

func TestSubscriptionService_ListSubscriptions(t *testing.T) {
	// Arrange
	subscriptions, _, _, svc := newSubscriptionFixture()
	listed := []*subscription.Subscription{testSubscription(t, "s1", "dev@example.com")}
	subscriptions.On("FindAll", mock.Anything).Return(listed, nil)

	// Act
	result, err := svc.ListSubscriptions(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, listed, result)
}

func TestSubscriptionService_Subscribe_WithInterests(t *testing.T) {
	// Arrange
	subscriptions, tags, bus, svc := newSubscriptionFixture()
	tags.On("FindByID", mock.Anything, mustTagID(t, "a")).Return(testTag(t, "a", "graphs"), nil)
	subscriptions.On("FindByEmail", mock.Anything, "dev@example.com").
		Return(nil, appErrors.NewNotFoundError("subscription"))
	subscriptions.On("Save", mock.Anything, mock.AnythingOfType("*subscription.Subscription")).Return(nil)
	bus.On("Publish", mock.Anything, mock.AnythingOfType("events.SubscriptionCreated")).Return(nil)

	// Act
	sub, err := svc.Subscribe(context.Background(), SubscribeRequest{
		Email:          "dev@example.com",
		InterestTagIDs: []string{"a"},
	})

	// Assert
	require.NoError(t, err)
	require.Len(t, sub.InterestTagIDs, 1)
	assert.True(t, sub.IsInterestedIn(mustTagID(t, "a")))
	assert.False(t, sub.IsInterestedIn(mustTagID(t, "b")))
	tags.AssertExpectations(t)
}

func TestSubscriptionService_Subscribe_UnknownInterestTag(t *testing.T) {
	// Arrange
	subscriptions, tags, _, svc := newSubscriptionFixture()
	tags.On("FindByID", mock.Anything, mustTagID(t, "missing")).
		Return(nil, appErrors.NewNotFoundError("tag"))

	// Act
	sub, err := svc.Subscribe(context.Background(), SubscribeRequest{
		Email:          "dev@example.com",
		InterestTagIDs: []string{"missing"},
	})

	// Assert
	assert.Nil(t, sub)
	assert.True(t, appErrors.IsNotFound(err))
	subscriptions.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSubscriptionService_UpdateSubscription_ChangesTier(t *testing.T) {
	// Arrange
	subscriptions, _, _, svc := newSubscriptionFixture()
	sub := testSubscription(t, "s1", "dev@example.com")
	subscriptions.On("FindByID", mock.Anything, "s1").Return(sub, nil)
	subscriptions.On("Save", mock.Anything, sub).Return(nil)
	tier := "pro"

	// Act
	updated, err := svc.UpdateSubscription(context.Background(), "s1", UpdateSubscriptionRequest{Tier: &tier})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, subscription.TierPro, updated.Tier)
	subscriptions.AssertExpectations(t)
}

func TestSubscriptionService_UpdateSubscription_RejectsUnknownTier(t *testing.T) {
	// Arrange
	subscriptions, _, _, svc := newSubscriptionFixture()
	sub := testSubscription(t, "s1", "dev@example.com")
	subscriptions.On("FindByID", mock.Anything, "s1").Return(sub, nil)
	tier := "platinum"

	// Act
	updated, err := svc.UpdateSubscription(context.Background(), "s1", UpdateSubscriptionRequest{Tier: &tier})

	// Assert
	assert.Nil(t, updated)
	assert.True(t, appErrors.IsValidation(err))
	assert.Equal(t, subscription.TierFree, sub.Tier, "tier must not change on rejection")
	subscriptions.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSubscriptionService_UpdateSubscription_ReplacesInterests(t *testing.T) {
	// Arrange
	subscriptions, tags, _, svc := newSubscriptionFixture()
	sub := testSubscription(t, "s1", "dev@example.com")
	sub.SetInterests([]tag.ID{mustTagID(t, "a")})
	subscriptions.On("FindByID", mock.Anything, "s1").Return(sub, nil)
	subscriptions.On("Save", mock.Anything, sub).Return(nil)
	tags.On("FindByID", mock.Anything, mustTagID(t, "b")).Return(testTag(t, "b", "trees"), nil)
	interests := []string{"b"}

	// Act
	updated, err := svc.UpdateSubscription(context.Background(), "s1", UpdateSubscriptionRequest{InterestTagIDs: &interests})

	// Assert
	require.NoError(t, err)
	require.Len(t, updated.InterestTagIDs, 1)
	assert.True(t, updated.IsInterestedIn(mustTagID(t, "b")))
	assert.False(t, updated.IsInterestedIn(mustTagID(t, "a")))
}

func TestSubscriptionService_UpdateSubscription_ClearsInterests(t *testing.T) {
	// Arrange
	subscriptions, _, _, svc := newSubscriptionFixture()
	sub := testSubscription(t, "s1", "dev@example.com")
	sub.SetInterests([]tag.ID{mustTagID(t, "a")})
	subscriptions.On("FindByID", mock.Anything, "s1").Return(sub, nil)
	subscriptions.On("Save", mock.Anything, sub).Return(nil)
	empty := []string{}

	// Act
	updated, err := svc.UpdateSubscription(context.Background(), "s1", UpdateSubscriptionRequest{InterestTagIDs: &empty})

	// Assert
	require.NoError(t, err)
	assert.Empty(t, updated.InterestTagIDs)
	assert.True(t, updated.IsInterestedIn(mustTagID(t, "a")), "empty set widens back to everything")
}

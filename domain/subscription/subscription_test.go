package subscription

import (
	"testing"

	"codekata-backend/domain/tag"
	appErrors "codekata-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSubscription(t *testing.T) {
	s, err := NewSubscription("  Dev@Example.COM ", TierPro)

	require.NoError(t, err)
	assert.Equal(t, "dev@example.com", s.Email, "email is normalized")
	assert.Equal(t, TierPro, s.Tier)
	assert.True(t, s.IsActive())
	assert.Nil(t, s.CancelledAt)
}

func TestNewSubscription_Validation(t *testing.T) {
	_, err := NewSubscription("  ", TierFree)
	assert.True(t, appErrors.IsValidation(err))

	_, err = NewSubscription("not-an-email", TierFree)
	assert.True(t, appErrors.IsValidation(err))

	s, err := NewSubscription("dev@example.com", Tier("platinum"))
	require.NoError(t, err)
	assert.Equal(t, DefaultTier, s.Tier, "unknown tier falls back to the default")
}

func TestParseTier(t *testing.T) {
	assert.Equal(t, TierPro, ParseTier(" PRO "))
	assert.Equal(t, TierFree, ParseTier("free"))
	assert.Equal(t, DefaultTier, ParseTier("gold"))
	assert.Equal(t, DefaultTier, ParseTier(""))
}

func TestSubscription_CancelIsIdempotent(t *testing.T) {
	s, err := NewSubscription("dev@example.com", TierFree)
	require.NoError(t, err)

	s.Cancel()
	require.False(t, s.IsActive())
	require.NotNil(t, s.CancelledAt)
	first := *s.CancelledAt

	s.Cancel()
	assert.Equal(t, first, *s.CancelledAt, "second cancel must not move the timestamp")
}

func TestSubscription_Reactivate(t *testing.T) {
	s, err := NewSubscription("dev@example.com", TierFree)
	require.NoError(t, err)
	s.Cancel()

	s.Reactivate(TierPro)

	assert.True(t, s.IsActive())
	assert.Equal(t, TierPro, s.Tier)
	assert.Nil(t, s.CancelledAt)

	// Reactivating an active subscription keeps its tier.
	s.Reactivate(TierFree)
	assert.Equal(t, TierPro, s.Tier)
}

func TestSubscription_ChangeTier(t *testing.T) {
	s, err := NewSubscription("dev@example.com", TierFree)
	require.NoError(t, err)
	before := s.UpdatedAt

	s.ChangeTier(TierPro)
	assert.Equal(t, TierPro, s.Tier)
	assert.True(t, s.UpdatedAt.After(before) || s.UpdatedAt.Equal(before))

	stamp := s.UpdatedAt
	s.ChangeTier(Tier("platinum"))
	assert.Equal(t, TierPro, s.Tier, "unknown tier is ignored")
	assert.Equal(t, stamp, s.UpdatedAt)

	s.ChangeTier(TierPro)
	assert.Equal(t, stamp, s.UpdatedAt, "same tier is a no-op")
}

func TestSubscription_SetInterests(t *testing.T) {
	s, err := NewSubscription("dev@example.com", TierFree)
	require.NoError(t, err)

	a := tag.NewID()
	b := tag.NewID()

	s.SetInterests([]tag.ID{a, b, a, {}})
	require.Len(t, s.InterestTagIDs, 2, "duplicates and zero IDs are dropped")
	assert.True(t, s.IsInterestedIn(a))
	assert.True(t, s.IsInterestedIn(b))
	assert.False(t, s.IsInterestedIn(tag.NewID()))
}

func TestSubscription_EmptyInterestsMeanEverything(t *testing.T) {
	s, err := NewSubscription("dev@example.com", TierFree)
	require.NoError(t, err)

	assert.True(t, s.IsInterestedIn(tag.NewID()))

	s.SetInterests([]tag.ID{tag.NewID()})
	s.SetInterests(nil)
	assert.True(t, s.IsInterestedIn(tag.NewID()), "clearing interests widens back to everything")
}

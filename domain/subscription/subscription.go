// Package subscription manages the daily challenge mailing list entries.
package subscription

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"codekata-backend/domain/tag"
	appErrors "codekata-backend/pkg/errors"
)

// Tier selects the challenge cadence a subscriber receives.
type Tier string

const (
	TierFree Tier = "free"
	TierPro  Tier = "pro"
)

// DefaultTier is what sign-ups get when they do not pick one.
const DefaultTier = TierFree

// IsValid reports whether t is a known tier.
func (t Tier) IsValid() bool {
	return t == TierFree || t == TierPro
}

func (t Tier) String() string {
	return string(t)
}

// ParseTier normalizes a raw tier string, falling back to the default for
// anything unknown. Sign-up forms send free text here, so rejecting would
// only lose subscribers.
func ParseTier(s string) Tier {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return DefaultTier
	}
	return t
}

// Status is the lifecycle state of a subscription.
type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
)

// Subscription is one mailing list entry. InterestTagIDs narrows which
// challenges the subscriber wants; empty means everything.
type Subscription struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	Tier           Tier       `json:"tier"`
	InterestTagIDs []tag.ID   `json:"interest_tag_ids,omitempty"`
	Status         Status     `json:"status"`
	CancelledAt    *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewSubscription creates an active subscription. The email is lowercased
// so lookups treat addresses case-insensitively.
func NewSubscription(email string, tier Tier) (*Subscription, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, appErrors.NewValidationError("email is required")
	}
	if !strings.Contains(email, "@") {
		return nil, appErrors.NewValidationError("email is not valid")
	}
	if !tier.IsValid() {
		tier = DefaultTier
	}

	now := time.Now()
	return &Subscription{
		ID:        uuid.New().String(),
		Email:     email,
		Tier:      tier,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsActive reports whether the subscriber still receives challenges.
func (s *Subscription) IsActive() bool {
	return s.Status == StatusActive
}

// Cancel stops delivery. Cancelling an already cancelled subscription is a
// no-op, so retried requests stay safe.
func (s *Subscription) Cancel() {
	if !s.IsActive() {
		return
	}
	now := time.Now()
	s.Status = StatusCancelled
	s.CancelledAt = &now
	s.UpdatedAt = now
}

// Reactivate resumes delivery for a cancelled subscription, optionally on
// a new tier.
func (s *Subscription) Reactivate(tier Tier) {
	if s.IsActive() {
		return
	}
	if tier.IsValid() {
		s.Tier = tier
	}
	s.Status = StatusActive
	s.CancelledAt = nil
	s.UpdatedAt = time.Now()
}

// ChangeTier switches the subscription to another tier.
func (s *Subscription) ChangeTier(tier Tier) {
	if !tier.IsValid() || tier == s.Tier {
		return
	}
	s.Tier = tier
	s.UpdatedAt = time.Now()
}

// SetInterests replaces the interest tag set, deduplicated. The caller is
// expected to have checked the IDs against the taxonomy.
func (s *Subscription) SetInterests(ids []tag.ID) {
	deduped := make([]tag.ID, 0, len(ids))
	for _, id := range ids {
		if id.IsZero() || containsID(deduped, id) {
			continue
		}
		deduped = append(deduped, id)
	}
	s.InterestTagIDs = deduped
	s.UpdatedAt = time.Now()
}

// IsInterestedIn reports whether the subscriber asked for this tag. An
// empty interest set means everything.
func (s *Subscription) IsInterestedIn(id tag.ID) bool {
	if len(s.InterestTagIDs) == 0 {
		return true
	}
	return containsID(s.InterestTagIDs, id)
}

func containsID(ids []tag.ID, id tag.ID) bool {
	for _, existing := range ids {
		if existing.Equals(id) {
			return true
		}
	}
	return false
}

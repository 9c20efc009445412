package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"codekata-backend/application/ports"
	"codekata-backend/domain/subscription"
	"codekata-backend/domain/tag"
	appErrors "codekata-backend/pkg/errors"
)

// SubscriptionRepository is an in-memory ports.SubscriptionRepository.
type SubscriptionRepository struct {
	mu   sync.RWMutex
	subs map[string]*subscription.Subscription
}

var _ ports.SubscriptionRepository = (*SubscriptionRepository)(nil)

// NewSubscriptionRepository creates an empty in-memory subscription
// repository.
func NewSubscriptionRepository() *SubscriptionRepository {
	return &SubscriptionRepository{
		subs: make(map[string]*subscription.Subscription),
	}
}

func copySubscription(s *subscription.Subscription) *subscription.Subscription {
	clone := *s
	if len(s.InterestTagIDs) > 0 {
		clone.InterestTagIDs = make([]tag.ID, len(s.InterestTagIDs))
		copy(clone.InterestTagIDs, s.InterestTagIDs)
	}
	if s.CancelledAt != nil {
		t := *s.CancelledAt
		clone.CancelledAt = &t
	}
	return &clone
}

// Save persists a subscription (create or update).
func (r *SubscriptionRepository) Save(ctx context.Context, s *subscription.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.subs[s.ID] = copySubscription(s)
	return nil
}

// FindByID retrieves a subscription by its ID.
func (r *SubscriptionRepository) FindByID(ctx context.Context, id string) (*subscription.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.subs[id]
	if !ok {
		return nil, appErrors.NewNotFoundError("subscription")
	}
	return copySubscription(s), nil
}

// FindByEmail retrieves a subscription by email, matched
// case-insensitively.
func (r *SubscriptionRepository) FindByEmail(ctx context.Context, email string) (*subscription.Subscription, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.subs {
		if s.Email == normalized {
			return copySubscription(s), nil
		}
	}
	return nil, appErrors.NewNotFoundError("subscription")
}

// FindAll retrieves every subscription, oldest first.
func (r *SubscriptionRepository) FindAll(ctx context.Context) ([]*subscription.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*subscription.Subscription, 0, len(r.subs))
	for _, s := range r.subs {
		all = append(all, copySubscription(s))
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})
	return all, nil
}

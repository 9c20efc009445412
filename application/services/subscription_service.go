package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"codekata-backend/application/ports"
	"codekata-backend/domain/events"
	"codekata-backend/domain/subscription"
	"codekata-backend/domain/tag"
	appErrors "codekata-backend/pkg/errors"
)

// SubscribeRequest signs an email up for the daily challenge.
type SubscribeRequest struct {
	Email          string   `json:"email" validate:"required,email"`
	Tier           string   `json:"tier"`
	InterestTagIDs []string `json:"interest_tag_ids"`
}

// UpdateSubscriptionRequest changes a subscription. Nil fields are left
// untouched; an empty interest list widens delivery back to every tag.
type UpdateSubscriptionRequest struct {
	Tier           *string   `json:"tier,omitempty"`
	InterestTagIDs *[]string `json:"interest_tag_ids,omitempty"`
}

// SubscriptionService defines the interface for the challenge mailing list.
type SubscriptionService interface {
	// Subscribe signs an email up. A cancelled subscription for the same
	// email is reactivated; an active one is a conflict.
	Subscribe(ctx context.Context, req SubscribeRequest) (*subscription.Subscription, error)

	// UpdateSubscription changes the tier or the interest tag set
	UpdateSubscription(ctx context.Context, id string, req UpdateSubscriptionRequest) (*subscription.Subscription, error)

	// CancelSubscription stops delivery; cancelling twice is a no-op
	CancelSubscription(ctx context.Context, id string) error

	// GetSubscription retrieves a subscription by ID
	GetSubscription(ctx context.Context, id string) (*subscription.Subscription, error)

	// ListSubscriptions retrieves every subscription
	ListSubscriptions(ctx context.Context) ([]*subscription.Subscription, error)
}

// subscriptionService implements SubscriptionService.
type subscriptionService struct {
	subscriptions ports.SubscriptionRepository
	tags          ports.TagRepository
	eventBus      ports.EventBus
	logger        *zap.Logger
}

// NewSubscriptionService creates the subscription service. The tag repository
// is used to check interest tag IDs against the taxonomy.
func NewSubscriptionService(
	subscriptions ports.SubscriptionRepository,
	tags ports.TagRepository,
	eventBus ports.EventBus,
	logger *zap.Logger,
) SubscriptionService {
	return &subscriptionService{
		subscriptions: subscriptions,
		tags:          tags,
		eventBus:      eventBus,
		logger:        logger,
	}
}

// Subscribe signs an email up for the mailing list.
func (s *subscriptionService) Subscribe(ctx context.Context, req SubscribeRequest) (*subscription.Subscription, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	tier := subscription.ParseTier(req.Tier)

	interests, err := s.resolveInterests(ctx, req.InterestTagIDs)
	if err != nil {
		return nil, err
	}

	existing, err := s.subscriptions.FindByEmail(ctx, email)
	if err != nil && !appErrors.IsNotFound(err) {
		return nil, err
	}
	if existing != nil {
		if existing.IsActive() {
			return nil, appErrors.NewConflictError("this email is already subscribed")
		}
		existing.Reactivate(tier)
		existing.SetInterests(interests)
		if err := s.subscriptions.Save(ctx, existing); err != nil {
			return nil, err
		}
		s.publishCreated(ctx, existing)
		return existing, nil
	}

	sub, err := subscription.NewSubscription(email, tier)
	if err != nil {
		return nil, err
	}
	sub.SetInterests(interests)
	if err := s.subscriptions.Save(ctx, sub); err != nil {
		return nil, err
	}

	s.logger.Info("subscription created",
		zap.String("subscriptionId", sub.ID),
		zap.String("tier", sub.Tier.String()),
	)
	s.publishCreated(ctx, sub)
	return sub, nil
}

// UpdateSubscription changes the tier or the interest tag set. Unlike
// Subscribe, an unknown tier here is rejected rather than defaulted.
func (s *subscriptionService) UpdateSubscription(ctx context.Context, id string, req UpdateSubscriptionRequest) (*subscription.Subscription, error) {
	sub, err := s.GetSubscription(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Tier != nil {
		tier := subscription.Tier(strings.ToLower(strings.TrimSpace(*req.Tier)))
		if !tier.IsValid() {
			return nil, appErrors.NewValidationError("unknown tier: " + *req.Tier)
		}
		sub.ChangeTier(tier)
	}

	if req.InterestTagIDs != nil {
		interests, err := s.resolveInterests(ctx, *req.InterestTagIDs)
		if err != nil {
			return nil, err
		}
		sub.SetInterests(interests)
	}

	if err := s.subscriptions.Save(ctx, sub); err != nil {
		return nil, err
	}

	s.logger.Info("subscription updated",
		zap.String("subscriptionId", sub.ID),
		zap.String("tier", sub.Tier.String()),
		zap.Int("interestCount", len(sub.InterestTagIDs)),
	)
	return sub, nil
}

// CancelSubscription stops delivery. A second cancel changes nothing and
// succeeds.
func (s *subscriptionService) CancelSubscription(ctx context.Context, id string) error {
	sub, err := s.GetSubscription(ctx, id)
	if err != nil {
		return err
	}
	if !sub.IsActive() {
		return nil
	}

	sub.Cancel()
	if err := s.subscriptions.Save(ctx, sub); err != nil {
		return err
	}

	if s.eventBus != nil {
		event := events.NewSubscriptionCancelled(sub.ID, sub.Email, time.Now())
		if err := s.eventBus.Publish(ctx, event); err != nil {
			s.logger.Warn("event publish failed",
				zap.String("eventType", event.GetEventType()),
				zap.String("subscriptionId", sub.ID),
				zap.Error(err),
			)
		}
	}
	return nil
}

// GetSubscription retrieves a subscription.
func (s *subscriptionService) GetSubscription(ctx context.Context, id string) (*subscription.Subscription, error) {
	if id == "" {
		return nil, appErrors.NewValidationError("subscription id is required")
	}
	return s.subscriptions.FindByID(ctx, id)
}

// ListSubscriptions retrieves every subscription.
func (s *subscriptionService) ListSubscriptions(ctx context.Context) ([]*subscription.Subscription, error) {
	return s.subscriptions.FindAll(ctx)
}

// resolveInterests parses the raw IDs and checks each one exists in the
// taxonomy before a subscription may narrow itself to it.
func (s *subscriptionService) resolveInterests(ctx context.Context, raw []string) ([]tag.ID, error) {
	interests := make([]tag.ID, 0, len(raw))
	for _, r := range raw {
		id, err := tag.ParseID(r)
		if err != nil {
			return nil, appErrors.NewValidationError("tag id is required")
		}
		if _, err := s.tags.FindByID(ctx, id); err != nil {
			return nil, err
		}
		interests = append(interests, id)
	}
	return interests, nil
}

func (s *subscriptionService) publishCreated(ctx context.Context, sub *subscription.Subscription) {
	if s.eventBus == nil {
		return
	}
	event := events.NewSubscriptionCreated(sub.ID, sub.Email, sub.Tier.String(), time.Now())
	if err := s.eventBus.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed",
			zap.String("eventType", event.GetEventType()),
			zap.String("subscriptionId", sub.ID),
			zap.Error(err),
		)
	}
}

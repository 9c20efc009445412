package dynamodb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"codekata-backend/application/ports"
	"codekata-backend/domain/subscription"
	"codekata-backend/domain/tag"
	appErrors "codekata-backend/pkg/errors"
)

// SubscriptionRepository implements ports.SubscriptionRepository. GSI1
// keys entries by email, which the domain already lowercases, so the
// sign-up uniqueness check is a single query.
type SubscriptionRepository struct {
	client    *dynamodb.Client
	tableName string
	indexName string
	logger    *zap.Logger
}

var _ ports.SubscriptionRepository = (*SubscriptionRepository)(nil)

// NewSubscriptionRepository creates a DynamoDB-backed subscription
// repository.
func NewSubscriptionRepository(client *dynamodb.Client, tableName, indexName string, logger *zap.Logger) *SubscriptionRepository {
	return &SubscriptionRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
	}
}

// subscriptionItem is the DynamoDB item shape for a mailing list entry.
type subscriptionItem struct {
	PK             string   `dynamodbav:"PK"`
	SK             string   `dynamodbav:"SK"`
	GSI1PK         string   `dynamodbav:"GSI1PK"`
	GSI1SK         string   `dynamodbav:"GSI1SK"`
	EntityType     string   `dynamodbav:"EntityType"`
	SubscriptionID string   `dynamodbav:"SubscriptionID"`
	Email          string   `dynamodbav:"Email"`
	Tier           string   `dynamodbav:"Tier"`
	Status         string   `dynamodbav:"Status"`
	InterestTagIDs []string `dynamodbav:"InterestTagIDs,stringset,omitempty"`
	CancelledAt    string   `dynamodbav:"CancelledAt,omitempty"`
	CreatedAt      string   `dynamodbav:"CreatedAt"`
	UpdatedAt      string   `dynamodbav:"UpdatedAt"`
}

func newSubscriptionItem(s *subscription.Subscription) subscriptionItem {
	item := subscriptionItem{
		PK:             fmt.Sprintf("SUBSCRIPTION#%s", s.ID),
		SK:             metadataSK,
		GSI1PK:         fmt.Sprintf("SUB_EMAIL#%s", s.Email),
		GSI1SK:         fmt.Sprintf("SUBSCRIPTION#%s", s.ID),
		EntityType:     entityTypeSubscription,
		SubscriptionID: s.ID,
		Email:          s.Email,
		Tier:           s.Tier.String(),
		Status:         string(s.Status),
		CreatedAt:      s.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:      s.UpdatedAt.Format(time.RFC3339Nano),
	}
	for _, id := range s.InterestTagIDs {
		item.InterestTagIDs = append(item.InterestTagIDs, id.String())
	}
	if s.CancelledAt != nil {
		item.CancelledAt = s.CancelledAt.Format(time.RFC3339Nano)
	}
	return item
}

func (i subscriptionItem) toDomain() *subscription.Subscription {
	s := &subscription.Subscription{
		ID:     i.SubscriptionID,
		Email:  i.Email,
		Tier:   subscription.Tier(i.Tier),
		Status: subscription.Status(i.Status),
	}
	for _, raw := range i.InterestTagIDs {
		if id, err := tag.ParseID(raw); err == nil {
			s.InterestTagIDs = append(s.InterestTagIDs, id)
		}
	}
	if i.CancelledAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, i.CancelledAt); err == nil {
			s.CancelledAt = &t
		}
	}
	if t, err := time.Parse(time.RFC3339Nano, i.CreatedAt); err == nil {
		s.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, i.UpdatedAt); err == nil {
		s.UpdatedAt = t
	}
	return s
}

// Save persists a subscription, overwriting any previous version.
func (r *SubscriptionRepository) Save(ctx context.Context, s *subscription.Subscription) error {
	av, err := attributevalue.MarshalMap(newSubscriptionItem(s))
	if err != nil {
		return appErrors.Wrap(err, "failed to marshal subscription")
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return translateError(err, "save subscription")
	}

	r.logger.Debug("subscription saved",
		zap.String("subscriptionId", s.ID),
		zap.String("status", string(s.Status)),
	)
	return nil
}

// FindByID retrieves a subscription by its ID.
func (r *SubscriptionRepository) FindByID(ctx context.Context, id string) (*subscription.Subscription, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       subscriptionKey(id),
	})
	if err != nil {
		return nil, translateError(err, "find subscription")
	}
	if out.Item == nil {
		return nil, appErrors.NewNotFoundError("subscription")
	}

	var item subscriptionItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, appErrors.Wrap(err, "failed to unmarshal subscription")
	}
	return item.toDomain(), nil
}

// FindByEmail retrieves a subscription by normalized email via GSI1.
func (r *SubscriptionRepository) FindByEmail(ctx context.Context, email string) (*subscription.Subscription, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(fmt.Sprintf("SUB_EMAIL#%s", normalized)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to build email query")
	}

	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.indexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, translateError(err, "find subscription by email")
	}
	if len(out.Items) == 0 {
		return nil, appErrors.NewNotFoundError("subscription")
	}

	var item subscriptionItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &item); err != nil {
		return nil, appErrors.Wrap(err, "failed to unmarshal subscription")
	}
	return item.toDomain(), nil
}

// FindAll retrieves every subscription.
func (r *SubscriptionRepository) FindAll(ctx context.Context) ([]*subscription.Subscription, error) {
	filt := expression.Name("EntityType").Equal(expression.Value(entityTypeSubscription))
	expr, err := expression.NewBuilder().WithFilter(filt).Build()
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to build scan expression")
	}

	input := &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	subs := make([]*subscription.Subscription, 0)
	paginator := dynamodb.NewScanPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, translateError(err, "list subscriptions")
		}
		for _, raw := range page.Items {
			var item subscriptionItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("skipping unreadable subscription item", zap.Error(err))
				continue
			}
			subs = append(subs, item.toDomain())
		}
	}
	return subs, nil
}

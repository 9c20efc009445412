package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"codekata-backend/application/ports"
	"codekata-backend/domain/review"
	"codekata-backend/domain/suggest"
	"codekata-backend/domain/tag"
	appErrors "codekata-backend/pkg/errors"
)

// SuggestionRepository implements ports.SuggestionRepository. GSI1 keys
// suggestions by review status so the pending queue is a single query,
// ordered oldest first.
type SuggestionRepository struct {
	client    *dynamodb.Client
	tableName string
	indexName string
	logger    *zap.Logger
}

var _ ports.SuggestionRepository = (*SuggestionRepository)(nil)

// NewSuggestionRepository creates a DynamoDB-backed suggestion repository.
func NewSuggestionRepository(client *dynamodb.Client, tableName, indexName string, logger *zap.Logger) *SuggestionRepository {
	return &SuggestionRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
	}
}

type suggestionMatchItem struct {
	Name   string  `dynamodbav:"Name"`
	Score  float64 `dynamodbav:"Score"`
	Reason string  `dynamodbav:"Reason"`
}

// suggestionItem is the DynamoDB item shape for a normalization
// suggestion.
type suggestionItem struct {
	PK           string                `dynamodbav:"PK"`
	SK           string                `dynamodbav:"SK"`
	GSI1PK       string                `dynamodbav:"GSI1PK"`
	GSI1SK       string                `dynamodbav:"GSI1SK"`
	EntityType   string                `dynamodbav:"EntityType"`
	SuggestionID string                `dynamodbav:"SuggestionID"`
	Name         string                `dynamodbav:"Name"`
	TagType      string                `dynamodbav:"TagType"`
	Confidence   float64               `dynamodbav:"Confidence"`
	SourceNames  []string              `dynamodbav:"SourceNames"`
	Matches      []suggestionMatchItem `dynamodbav:"Matches,omitempty"`
	Status       string                `dynamodbav:"Status"`
	ReviewedBy   string                `dynamodbav:"ReviewedBy,omitempty"`
	ReviewedAt   string                `dynamodbav:"ReviewedAt,omitempty"`
	CreatedAt    string                `dynamodbav:"CreatedAt"`
	UpdatedAt    string                `dynamodbav:"UpdatedAt"`
}

func newSuggestionItem(s *review.Suggestion) suggestionItem {
	matches := make([]suggestionMatchItem, 0, len(s.Matches))
	for _, m := range s.Matches {
		matches = append(matches, suggestionMatchItem{Name: m.Name, Score: m.Score, Reason: m.Reason})
	}

	item := suggestionItem{
		PK:           fmt.Sprintf("SUGGESTION#%s", s.ID),
		SK:           metadataSK,
		GSI1PK:       fmt.Sprintf("SUGGESTION_STATUS#%s", s.Status),
		GSI1SK:       fmt.Sprintf("CREATED#%s", s.CreatedAt.Format(time.RFC3339Nano)),
		EntityType:   entityTypeSuggestion,
		SuggestionID: s.ID,
		Name:         s.Name,
		TagType:      s.TagType.String(),
		Confidence:   s.Confidence,
		SourceNames:  s.SourceNames,
		Matches:      matches,
		Status:       string(s.Status),
		ReviewedBy:   s.ReviewedBy,
		CreatedAt:    s.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:    s.UpdatedAt.Format(time.RFC3339Nano),
	}
	if s.ReviewedAt != nil {
		item.ReviewedAt = s.ReviewedAt.Format(time.RFC3339Nano)
	}
	return item
}

func (i suggestionItem) toDomain() *review.Suggestion {
	matches := make([]suggest.Match, 0, len(i.Matches))
	for _, m := range i.Matches {
		matches = append(matches, suggest.Match{Name: m.Name, Score: m.Score, Reason: m.Reason})
	}

	s := &review.Suggestion{
		ID:          i.SuggestionID,
		Name:        i.Name,
		TagType:     tag.Type(i.TagType),
		Confidence:  i.Confidence,
		SourceNames: i.SourceNames,
		Matches:     matches,
		Status:      review.Status(i.Status),
		ReviewedBy:  i.ReviewedBy,
	}
	if i.ReviewedAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, i.ReviewedAt); err == nil {
			s.ReviewedAt = &t
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

// Save persists a suggestion. Reviews rewrite the item, which moves it
// to the new status partition on GSI1.
func (r *SuggestionRepository) Save(ctx context.Context, s *review.Suggestion) error {
	av, err := attributevalue.MarshalMap(newSuggestionItem(s))
	if err != nil {
		return appErrors.Wrap(err, "failed to marshal suggestion")
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return translateError(err, "save suggestion")
	}

	r.logger.Debug("suggestion saved",
		zap.String("suggestionId", s.ID),
		zap.String("status", string(s.Status)),
	)
	return nil
}

// FindByID retrieves a suggestion by its ID.
func (r *SuggestionRepository) FindByID(ctx context.Context, id string) (*review.Suggestion, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       suggestionKey(id),
	})
	if err != nil {
		return nil, translateError(err, "find suggestion")
	}
	if out.Item == nil {
		return nil, appErrors.NewNotFoundError("suggestion")
	}

	var item suggestionItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, appErrors.Wrap(err, "failed to unmarshal suggestion")
	}
	return item.toDomain(), nil
}

// FindByStatus retrieves suggestions in the given review state, oldest
// first.
func (r *SuggestionRepository) FindByStatus(ctx context.Context, status review.Status) ([]*review.Suggestion, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(fmt.Sprintf("SUGGESTION_STATUS#%s", status)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to build status query")
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.indexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(true),
	}

	suggestions := make([]*review.Suggestion, 0)
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, translateError(err, "list suggestions by status")
		}
		for _, raw := range page.Items {
			var item suggestionItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("skipping unreadable suggestion item", zap.Error(err))
				continue
			}
			suggestions = append(suggestions, item.toDomain())
		}
	}
	return suggestions, nil
}

// FindAll retrieves every suggestion regardless of status.
func (r *SuggestionRepository) FindAll(ctx context.Context) ([]*review.Suggestion, error) {
	filt := expression.Name("EntityType").Equal(expression.Value(entityTypeSuggestion))
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

	suggestions := make([]*review.Suggestion, 0)
	paginator := dynamodb.NewScanPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, translateError(err, "list suggestions")
		}
		for _, raw := range page.Items {
			var item suggestionItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("skipping unreadable suggestion item", zap.Error(err))
				continue
			}
			suggestions = append(suggestions, item.toDomain())
		}
	}
	return suggestions, nil
}

// Delete removes a suggestion.
func (r *SuggestionRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       suggestionKey(id),
	})
	if err != nil {
		return translateError(err, "delete suggestion")
	}
	return nil
}

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
	"codekata-backend/domain/problem"
	"codekata-backend/domain/tag"
	appErrors "codekata-backend/pkg/errors"
)

// ProblemRepository implements ports.ProblemRepository. GSI1 keys
// problems by slug for the public URL lookup. Tag IDs are stored as a
// string set so listing can filter membership server side.
type ProblemRepository struct {
	client    *dynamodb.Client
	tableName string
	indexName string
	logger    *zap.Logger
}

var _ ports.ProblemRepository = (*ProblemRepository)(nil)

// NewProblemRepository creates a DynamoDB-backed problem repository.
func NewProblemRepository(client *dynamodb.Client, tableName, indexName string, logger *zap.Logger) *ProblemRepository {
	return &ProblemRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
	}
}

// problemItem is the DynamoDB item shape for a catalog entry.
type problemItem struct {
	PK          string   `dynamodbav:"PK"`
	SK          string   `dynamodbav:"SK"`
	GSI1PK      string   `dynamodbav:"GSI1PK"`
	GSI1SK      string   `dynamodbav:"GSI1SK"`
	EntityType  string   `dynamodbav:"EntityType"`
	ProblemID   string   `dynamodbav:"ProblemID"`
	Slug        string   `dynamodbav:"Slug"`
	Title       string   `dynamodbav:"Title"`
	Statement   string   `dynamodbav:"Statement"`
	Difficulty  string   `dynamodbav:"Difficulty"`
	TagIDs      []string `dynamodbav:"TagIDs,stringset,omitempty"`
	PublishedAt string   `dynamodbav:"PublishedAt,omitempty"`
	CreatedAt   string   `dynamodbav:"CreatedAt"`
	UpdatedAt   string   `dynamodbav:"UpdatedAt"`
}

func newProblemItem(p *problem.Problem) problemItem {
	tagIDs := make([]string, 0, len(p.TagIDs))
	for _, id := range p.TagIDs {
		tagIDs = append(tagIDs, id.String())
	}

	item := problemItem{
		PK:         fmt.Sprintf("PROBLEM#%s", p.ID),
		SK:         metadataSK,
		GSI1PK:     fmt.Sprintf("PROBLEM_SLUG#%s", p.Slug),
		GSI1SK:     fmt.Sprintf("PROBLEM#%s", p.ID),
		EntityType: entityTypeProblem,
		ProblemID:  p.ID,
		Slug:       p.Slug,
		Title:      p.Title,
		Statement:  p.Statement,
		Difficulty: p.Difficulty.String(),
		TagIDs:     tagIDs,
		CreatedAt:  p.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:  p.UpdatedAt.Format(time.RFC3339Nano),
	}
	if p.PublishedAt != nil {
		item.PublishedAt = p.PublishedAt.Format(time.RFC3339Nano)
	}
	return item
}

func (i problemItem) toDomain() *problem.Problem {
	tagIDs := make([]tag.ID, 0, len(i.TagIDs))
	for _, raw := range i.TagIDs {
		id, err := tag.ParseID(raw)
		if err != nil {
			continue
		}
		tagIDs = append(tagIDs, id)
	}

	p := &problem.Problem{
		ID:         i.ProblemID,
		Slug:       i.Slug,
		Title:      i.Title,
		Statement:  i.Statement,
		Difficulty: problem.Difficulty(i.Difficulty),
		TagIDs:     tagIDs,
	}
	if i.PublishedAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, i.PublishedAt); err == nil {
			p.PublishedAt = &t
		}
	}
	if t, err := time.Parse(time.RFC3339Nano, i.CreatedAt); err == nil {
		p.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, i.UpdatedAt); err == nil {
		p.UpdatedAt = t
	}
	return p
}

// Save persists a problem, overwriting any previous version.
func (r *ProblemRepository) Save(ctx context.Context, p *problem.Problem) error {
	av, err := attributevalue.MarshalMap(newProblemItem(p))
	if err != nil {
		return appErrors.Wrap(err, "failed to marshal problem")
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return translateError(err, "save problem")
	}

	r.logger.Debug("problem saved",
		zap.String("problemId", p.ID),
		zap.String("slug", p.Slug),
	)
	return nil
}

// FindByID retrieves a problem by its ID.
func (r *ProblemRepository) FindByID(ctx context.Context, id string) (*problem.Problem, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       problemKey(id),
	})
	if err != nil {
		return nil, translateError(err, "find problem")
	}
	if out.Item == nil {
		return nil, appErrors.NewNotFoundError("problem")
	}

	var item problemItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, appErrors.Wrap(err, "failed to unmarshal problem")
	}
	return item.toDomain(), nil
}

// FindBySlug retrieves a problem by its URL slug via GSI1.
func (r *ProblemRepository) FindBySlug(ctx context.Context, slug string) (*problem.Problem, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(fmt.Sprintf("PROBLEM_SLUG#%s", slug)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to build slug query")
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
		return nil, translateError(err, "find problem by slug")
	}
	if len(out.Items) == 0 {
		return nil, appErrors.NewNotFoundError("problem")
	}

	var item problemItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &item); err != nil {
		return nil, appErrors.Wrap(err, "failed to unmarshal problem")
	}
	return item.toDomain(), nil
}

// FindAll retrieves problems matching the filter. The filter conditions
// are pushed into the scan so drafts and off-topic entries never leave
// the table.
func (r *ProblemRepository) FindAll(ctx context.Context, filter ports.ProblemFilter) ([]*problem.Problem, error) {
	filt := expression.Name("EntityType").Equal(expression.Value(entityTypeProblem))
	if filter.Difficulty != "" {
		filt = filt.And(expression.Name("Difficulty").Equal(expression.Value(filter.Difficulty.String())))
	}
	if !filter.TagID.IsZero() {
		filt = filt.And(expression.Name("TagIDs").Contains(filter.TagID.String()))
	}
	if filter.PublishedOnly {
		filt = filt.And(expression.Name("PublishedAt").AttributeExists())
	}

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

	problems := make([]*problem.Problem, 0)
	paginator := dynamodb.NewScanPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, translateError(err, "list problems")
		}
		for _, raw := range page.Items {
			var item problemItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("skipping unreadable problem item", zap.Error(err))
				continue
			}
			problems = append(problems, item.toDomain())
		}
	}
	return problems, nil
}

// Delete removes a problem.
func (r *ProblemRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       problemKey(id),
	})
	if err != nil {
		return translateError(err, "delete problem")
	}

	r.logger.Debug("problem deleted", zap.String("problemId", id))
	return nil
}

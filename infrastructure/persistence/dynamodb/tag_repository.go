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
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"codekata-backend/application/ports"
	"codekata-backend/domain/tag"
	appErrors "codekata-backend/pkg/errors"
)

// TagRepository implements ports.TagRepository on the single table.
// Items live at PK TAG#<id> / SK METADATA; GSI1 keys them by normalized
// name so lookups never depend on display casing.
type TagRepository struct {
	client        *dynamodb.Client
	tableName     string
	nameIndexName string
	logger        *zap.Logger
}

var _ ports.TagRepository = (*TagRepository)(nil)

// NewTagRepository creates a DynamoDB-backed tag repository.
func NewTagRepository(client *dynamodb.Client, tableName, nameIndexName string, logger *zap.Logger) *TagRepository {
	return &TagRepository{
		client:        client,
		tableName:     tableName,
		nameIndexName: nameIndexName,
		logger:        logger,
	}
}

// tagItem is the DynamoDB item shape for a tag record.
type tagItem struct {
	PK          string   `dynamodbav:"PK"`
	SK          string   `dynamodbav:"SK"`
	GSI1PK      string   `dynamodbav:"GSI1PK"`
	GSI1SK      string   `dynamodbav:"GSI1SK"`
	EntityType  string   `dynamodbav:"EntityType"`
	TagID       string   `dynamodbav:"TagID"`
	Name        string   `dynamodbav:"Name"`
	TagType     string   `dynamodbav:"TagType"`
	Description string   `dynamodbav:"Description,omitempty"`
	ParentIDs   []string `dynamodbav:"ParentIDs"`
	CreatedAt   string   `dynamodbav:"CreatedAt"`
	UpdatedAt   string   `dynamodbav:"UpdatedAt"`
}

func newTagItem(record *tag.Tag) tagItem {
	parents := make([]string, 0, len(record.ParentIDs))
	for _, p := range record.ParentIDs {
		parents = append(parents, p.String())
	}

	return tagItem{
		PK:          fmt.Sprintf("TAG#%s", record.ID.String()),
		SK:          metadataSK,
		GSI1PK:      fmt.Sprintf("TAGNAME#%s", strings.ToLower(record.Name)),
		GSI1SK:      fmt.Sprintf("TAG#%s", record.ID.String()),
		EntityType:  entityTypeTag,
		TagID:       record.ID.String(),
		Name:        record.Name,
		TagType:     record.Type.String(),
		Description: record.Description,
		ParentIDs:   parents,
		CreatedAt:   record.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:   record.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func (i tagItem) toDomain() (*tag.Tag, error) {
	id, err := tag.ParseID(i.TagID)
	if err != nil {
		return nil, appErrors.Wrap(err, "invalid tag item")
	}

	parents := make([]tag.ID, 0, len(i.ParentIDs))
	for _, raw := range i.ParentIDs {
		parentID, err := tag.ParseID(raw)
		if err != nil {
			continue
		}
		parents = append(parents, parentID)
	}

	record := &tag.Tag{
		ID:          id,
		Name:        i.Name,
		Type:        tag.Type(i.TagType),
		Description: i.Description,
		ParentIDs:   parents,
	}
	if t, err := time.Parse(time.RFC3339Nano, i.CreatedAt); err == nil {
		record.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, i.UpdatedAt); err == nil {
		record.UpdatedAt = t
	}
	record.Normalize()
	return record, nil
}

// Save persists a tag record, overwriting any previous version.
func (r *TagRepository) Save(ctx context.Context, record *tag.Tag) error {
	av, err := attributevalue.MarshalMap(newTagItem(record))
	if err != nil {
		return appErrors.Wrap(err, "failed to marshal tag")
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return translateError(err, "save tag")
	}

	r.logger.Debug("tag saved",
		zap.String("tagId", record.ID.String()),
		zap.String("name", record.Name),
	)
	return nil
}

// SaveWithParentCheck writes the child record and, in the same
// transaction, asserts the parent item still exists. A parent deleted
// between validation and commit cancels the whole write.
func (r *TagRepository) SaveWithParentCheck(ctx context.Context, record *tag.Tag, parentID tag.ID) error {
	av, err := attributevalue.MarshalMap(newTagItem(record))
	if err != nil {
		return appErrors.Wrap(err, "failed to marshal tag")
	}

	cond, err := expression.NewBuilder().
		WithCondition(expression.Name("PK").AttributeExists()).
		Build()
	if err != nil {
		return appErrors.Wrap(err, "failed to build parent check expression")
	}

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName: aws.String(r.tableName),
					Item:      av,
				},
			},
			{
				ConditionCheck: &types.ConditionCheck{
					TableName:                aws.String(r.tableName),
					Key:                      tagKey(parentID.String()),
					ConditionExpression:      cond.Condition(),
					ExpressionAttributeNames: cond.Names(),
				},
			},
		},
	})
	if err != nil {
		if transactionConditionFailed(err) {
			return appErrors.NewNotFoundError("parent tag")
		}
		return translateError(err, "save tag with parent check")
	}

	r.logger.Debug("tag saved with parent check",
		zap.String("tagId", record.ID.String()),
		zap.String("parentId", parentID.String()),
	)
	return nil
}

// FindByID retrieves a tag by its ID.
func (r *TagRepository) FindByID(ctx context.Context, id tag.ID) (*tag.Tag, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       tagKey(id.String()),
	})
	if err != nil {
		return nil, translateError(err, "find tag")
	}
	if out.Item == nil {
		return nil, appErrors.NewNotFoundError("tag")
	}

	var item tagItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, appErrors.Wrap(err, "failed to unmarshal tag")
	}
	return item.toDomain()
}

// FindByName retrieves a tag by name via the normalized-name index.
func (r *TagRepository) FindByName(ctx context.Context, name string) (*tag.Tag, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(fmt.Sprintf("TAGNAME#%s", normalized)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to build name query")
	}

	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.nameIndexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, translateError(err, "find tag by name")
	}
	if len(out.Items) == 0 {
		return nil, appErrors.NewNotFoundError("tag")
	}

	var item tagItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &item); err != nil {
		return nil, appErrors.Wrap(err, "failed to unmarshal tag")
	}
	return item.toDomain()
}

// FindAll retrieves the full tag corpus. The hierarchy and similarity
// services both work from a complete snapshot, so this pages through the
// whole table rather than exposing cursors.
func (r *TagRepository) FindAll(ctx context.Context) ([]*tag.Tag, error) {
	filt := expression.Name("EntityType").Equal(expression.Value(entityTypeTag))
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

	records := make([]*tag.Tag, 0)
	paginator := dynamodb.NewScanPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, translateError(err, "list tags")
		}
		for _, raw := range page.Items {
			var item tagItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("skipping unreadable tag item", zap.Error(err))
				continue
			}
			record, err := item.toDomain()
			if err != nil {
				r.logger.Warn("skipping invalid tag item", zap.String("tagId", item.TagID), zap.Error(err))
				continue
			}
			records = append(records, record)
		}
	}
	return records, nil
}

// Delete removes a tag record. Deleting an absent item is a no-op at
// this layer; existence checks happen in the service.
func (r *TagRepository) Delete(ctx context.Context, id tag.ID) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       tagKey(id.String()),
	})
	if err != nil {
		return translateError(err, "delete tag")
	}

	r.logger.Debug("tag deleted", zap.String("tagId", id.String()))
	return nil
}

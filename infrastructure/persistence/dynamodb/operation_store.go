package dynamodb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"codekata-backend/application/ports"
	appErrors "codekata-backend/pkg/errors"
)

// DefaultOperationTTL is how long finished pipeline runs stay pollable.
const DefaultOperationTTL = 24 * time.Hour

// OperationStore implements ports.OperationStore on the single table.
// Items carry a TTL attribute so DynamoDB expires old runs without a
// sweeper.
type OperationStore struct {
	client    *dynamodb.Client
	tableName string
	ttl       time.Duration
	logger    *zap.Logger
}

var _ ports.OperationStore = (*OperationStore)(nil)

// NewOperationStore creates a DynamoDB-backed operation store.
func NewOperationStore(client *dynamodb.Client, tableName string, ttl time.Duration, logger *zap.Logger) *OperationStore {
	if ttl <= 0 {
		ttl = DefaultOperationTTL
	}
	return &OperationStore{
		client:    client,
		tableName: tableName,
		ttl:       ttl,
		logger:    logger,
	}
}

// operationItem is the DynamoDB item shape for an operation record. The
// result map is stored as JSON text; its values are only ever read back
// into API responses.
type operationItem struct {
	PK          string `dynamodbav:"PK"`
	SK          string `dynamodbav:"SK"`
	EntityType  string `dynamodbav:"EntityType"`
	OperationID string `dynamodbav:"OperationID"`
	Kind        string `dynamodbav:"Kind"`
	Status      string `dynamodbav:"Status"`
	Result      string `dynamodbav:"Result,omitempty"`
	Error       string `dynamodbav:"Error,omitempty"`
	StartedAt   string `dynamodbav:"StartedAt"`
	CompletedAt string `dynamodbav:"CompletedAt,omitempty"`
	TTL         int64  `dynamodbav:"TTL"`
}

// Put persists an operation record, refreshing its expiry.
func (s *OperationStore) Put(ctx context.Context, op *ports.Operation) error {
	if op == nil || op.ID == "" {
		return appErrors.NewValidationError("operation id is required")
	}

	item := operationItem{
		PK:          fmt.Sprintf("OPERATION#%s", op.ID),
		SK:          metadataSK,
		EntityType:  entityTypeOperation,
		OperationID: op.ID,
		Kind:        op.Kind,
		Status:      string(op.Status),
		Error:       op.Error,
		StartedAt:   op.StartedAt.Format(time.RFC3339Nano),
		TTL:         time.Now().Add(s.ttl).Unix(),
	}
	if op.CompletedAt != nil {
		item.CompletedAt = op.CompletedAt.Format(time.RFC3339Nano)
	}
	if len(op.Result) > 0 {
		raw, err := json.Marshal(op.Result)
		if err != nil {
			return appErrors.Wrap(err, "failed to serialize operation result")
		}
		item.Result = string(raw)
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return appErrors.Wrap(err, "failed to marshal operation")
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	})
	if err != nil {
		return translateError(err, "put operation")
	}

	s.logger.Debug("operation stored",
		zap.String("operationId", op.ID),
		zap.String("status", string(op.Status)),
	)
	return nil
}

// Get retrieves an operation by its ID. TTL deletion can lag, so an
// item past its expiry is reported as missing rather than returned.
func (s *OperationStore) Get(ctx context.Context, id string) (*ports.Operation, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       operationKey(id),
	})
	if err != nil {
		return nil, translateError(err, "get operation")
	}
	if out.Item == nil {
		return nil, appErrors.NewNotFoundError("operation")
	}

	var item operationItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, appErrors.Wrap(err, "failed to unmarshal operation")
	}
	if item.TTL > 0 && time.Now().Unix() > item.TTL {
		return nil, appErrors.NewNotFoundError("operation")
	}

	op := &ports.Operation{
		ID:     item.OperationID,
		Kind:   item.Kind,
		Status: ports.OperationStatus(item.Status),
		Error:  item.Error,
	}
	if item.Result != "" {
		if err := json.Unmarshal([]byte(item.Result), &op.Result); err != nil {
			return nil, appErrors.Wrap(err, "failed to deserialize operation result")
		}
	}
	if t, err := time.Parse(time.RFC3339Nano, item.StartedAt); err == nil {
		op.StartedAt = t
	}
	if item.CompletedAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, item.CompletedAt); err == nil {
			op.CompletedAt = &t
		}
	}
	return op, nil
}

// Delete removes an operation record.
func (s *OperationStore) Delete(ctx context.Context, id string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       operationKey(id),
	})
	if err != nil {
		return translateError(err, "delete operation")
	}
	return nil
}

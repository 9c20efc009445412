// Package dynamodb implements the repository ports against a single
// DynamoDB table. Every entity lives under its own partition key prefix
// with SK "METADATA"; GSI1 carries the alternate lookups (tag name,
// problem slug, suggestion status, subscriber email).
package dynamodb

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Entity type discriminators stored on every item. Scans filter on these
// so one table can hold the whole catalog.
const (
	entityTypeTag          = "TAG"
	entityTypeSuggestion   = "SUGGESTION"
	entityTypeProblem      = "PROBLEM"
	entityTypeSubscription = "SUBSCRIPTION"
	entityTypeOperation    = "OPERATION"
)

const metadataSK = "METADATA"

func tagKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("TAG#%s", id)},
		"SK": &types.AttributeValueMemberS{Value: metadataSK},
	}
}

func suggestionKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("SUGGESTION#%s", id)},
		"SK": &types.AttributeValueMemberS{Value: metadataSK},
	}
}

func problemKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("PROBLEM#%s", id)},
		"SK": &types.AttributeValueMemberS{Value: metadataSK},
	}
}

func subscriptionKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("SUBSCRIPTION#%s", id)},
		"SK": &types.AttributeValueMemberS{Value: metadataSK},
	}
}

func operationKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("OPERATION#%s", id)},
		"SK": &types.AttributeValueMemberS{Value: metadataSK},
	}
}

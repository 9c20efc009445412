package dynamodb

import (
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	appErrors "codekata-backend/pkg/errors"
)

// translateError maps a DynamoDB SDK error onto the application error
// taxonomy. Anything unrecognized becomes a database error so handlers
// never leak raw SDK messages.
func translateError(err error, operation string) error {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return appErrors.NewConflictError("item was modified by another operation")
	}

	var ae smithy.APIError
	if errors.As(err, &ae) {
		switch ae.ErrorCode() {
		case "ConditionalCheckFailedException":
			return appErrors.NewConflictError("item was modified by another operation")
		case "ProvisionedThroughputExceededException", "RequestLimitExceeded", "ThrottlingException":
			return appErrors.NewUnavailableError("dynamodb")
		case "TransactionCanceledException":
			return appErrors.NewConflictError("transaction was canceled")
		}
	}

	return appErrors.NewDatabaseError(operation, err)
}

// transactionConditionFailed reports whether a TransactWriteItems call
// was canceled because one of its condition checks failed, as opposed to
// throttling or a transient fault.
func transactionConditionFailed(err error) bool {
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) {
		return false
	}
	for _, reason := range tce.CancellationReasons {
		if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
			return true
		}
	}
	return false
}

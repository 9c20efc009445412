package ports

import (
	"context"
	"time"
)

// OperationStatus is the lifecycle state of a long-running operation.
type OperationStatus string

const (
	OperationPending   OperationStatus = "pending"
	OperationRunning   OperationStatus = "running"
	OperationCompleted OperationStatus = "completed"
	OperationFailed    OperationStatus = "failed"
)

// IsTerminal reports whether the operation has finished, either way.
func (s OperationStatus) IsTerminal() bool {
	return s == OperationCompleted || s == OperationFailed
}

// Operation tracks one asynchronous run, such as a normalization pipeline
// pass. Records expire from the store after a retention window so the
// store never grows without bound.
type Operation struct {
	ID          string                 `json:"id"`
	Kind        string                 `json:"kind"`
	RequestedBy string                 `json:"requested_by,omitempty"`
	Status      OperationStatus        `json:"status"`
	Result      map[string]interface{} `json:"result,omitempty"`
	Error       string                 `json:"error,omitempty"`
	StartedAt   time.Time              `json:"started_at"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
}

// OperationStore defines the interface for operation tracking.
type OperationStore interface {
	// Put persists an operation record (create or update)
	Put(ctx context.Context, op *Operation) error

	// Get retrieves an operation by its ID
	Get(ctx context.Context, id string) (*Operation, error)

	// Delete removes an operation record
	Delete(ctx context.Context, id string) error
}

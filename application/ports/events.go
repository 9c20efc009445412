package ports

import (
	"context"

	"codekata-backend/domain/events"
)

// EventBus defines the interface for publishing domain events.
type EventBus interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, batch []events.DomainEvent) error
}

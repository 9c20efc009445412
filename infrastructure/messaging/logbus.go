// Package messaging holds event bus implementations that do not depend
// on AWS. The EventBridge publisher lives in the eventbridge subpackage.
package messaging

import (
	"context"

	"go.uber.org/zap"

	"codekata-backend/application/ports"
	"codekata-backend/domain/events"
)

// LogBus is an event bus that only logs. Development runs use it so the
// services keep their publish path without an EventBridge bus to talk
// to.
type LogBus struct {
	logger *zap.Logger
}

var _ ports.EventBus = (*LogBus)(nil)

// NewLogBus creates a logging event bus.
func NewLogBus(logger *zap.Logger) *LogBus {
	return &LogBus{logger: logger}
}

// Publish logs the event and drops it.
func (b *LogBus) Publish(ctx context.Context, event events.DomainEvent) error {
	b.logger.Debug("event published",
		zap.String("eventType", event.GetEventType()),
		zap.String("aggregateId", event.GetAggregateID()),
	)
	return nil
}

// PublishBatch logs each event and drops them.
func (b *LogBus) PublishBatch(ctx context.Context, domainEvents []events.DomainEvent) error {
	for _, event := range domainEvents {
		if err := b.Publish(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

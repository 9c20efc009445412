//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"codekata-backend/infrastructure/config"
)

// SuperSet is the provider set for the full application graph.
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideTagRepository,
	ProvideSuggestionRepository,
	ProvideProblemRepository,
	ProvideSubscriptionRepository,
	ProvideOperationStore,
	ProvideEventBus,
	ProvideJWTValidator,
	ProvideCollector,
	ProvideTaxonomyService,
	ProvideNormalizationService,
	ProvidePipelineService,
	ProvideProblemService,
	ProvideSubscriptionService,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}

// Package di wires the application graph. The store profile is picked by
// configuration: DynamoDB and EventBridge against AWS, the in-memory
// store and the log bus for local development.
package di

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"codekata-backend/application/ports"
	"codekata-backend/application/services"
	"codekata-backend/infrastructure/config"
	"codekata-backend/infrastructure/messaging"
	"codekata-backend/infrastructure/messaging/eventbridge"
	"codekata-backend/infrastructure/observability"
	"codekata-backend/infrastructure/persistence/dynamodb"
	"codekata-backend/infrastructure/persistence/memory"
	"codekata-backend/pkg/auth"
)

// operationTTL keeps finished pipeline runs queryable for a day.
const operationTTL = 24 * time.Hour

// Container holds every long-lived dependency the entrypoints need.
type Container struct {
	Config           *config.Config
	Logger           *zap.Logger
	TagRepo          ports.TagRepository
	SuggestionRepo   ports.SuggestionRepository
	ProblemRepo      ports.ProblemRepository
	SubscriptionRepo ports.SubscriptionRepository
	OperationStore   ports.OperationStore
	EventBus         ports.EventBus
	Collector        *observability.Collector
	Validator        *auth.JWTValidator
	Taxonomy         services.TaxonomyService
	Normalization    services.NormalizationService
	Pipeline         services.PipelineService
	Problems         services.ProblemService
	Subscriptions    services.SubscriptionService
}

// Close releases background resources owned by the container.
func (c *Container) Close() {
	if store, ok := c.OperationStore.(interface{ Stop() }); ok {
		store.Stop()
	}
}

// ProvideLogger builds the process logger. Production gets the JSON
// encoder, everything else the development console encoder, and LOG_LEVEL
// overrides the encoder default either way.
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Environment == "production" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	if cfg.LogLevel != "" {
		level, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
		}
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}

	return zapCfg.Build()
}

// ProvideAWSConfig loads the shared AWS configuration once; both service
// clients hang off it.
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideTagRepository picks the tag store for the profile. The traced
// wrapper goes on here so every caller sees the same spans.
func ProvideTagRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.TagRepository {
	var repo ports.TagRepository
	if cfg.UseMemoryStore {
		repo = memory.NewTagRepository()
	} else {
		repo = dynamodb.NewTagRepository(client, cfg.DynamoDBTable, cfg.NameIndexName, logger)
	}
	if cfg.EnableTracing {
		repo = observability.TraceTagRepository(repo, otel.Tracer("codekata-backend/persistence"))
	}
	return repo
}

// ProvideSuggestionRepository creates a suggestion repository
func ProvideSuggestionRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.SuggestionRepository {
	if cfg.UseMemoryStore {
		return memory.NewSuggestionRepository()
	}
	return dynamodb.NewSuggestionRepository(client, cfg.DynamoDBTable, cfg.NameIndexName, logger)
}

// ProvideProblemRepository creates a problem repository
func ProvideProblemRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.ProblemRepository {
	if cfg.UseMemoryStore {
		return memory.NewProblemRepository()
	}
	return dynamodb.NewProblemRepository(client, cfg.DynamoDBTable, cfg.NameIndexName, logger)
}

// ProvideSubscriptionRepository creates a subscription repository
func ProvideSubscriptionRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.SubscriptionRepository {
	if cfg.UseMemoryStore {
		return memory.NewSubscriptionRepository()
	}
	return dynamodb.NewSubscriptionRepository(client, cfg.DynamoDBTable, cfg.NameIndexName, logger)
}

// ProvideOperationStore creates the pipeline run tracker.
func ProvideOperationStore(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.OperationStore {
	if cfg.UseMemoryStore {
		return memory.NewInMemoryOperationStore(operationTTL)
	}
	return dynamodb.NewOperationStore(client, cfg.DynamoDBTable, operationTTL, logger)
}

// ProvideEventBus creates the event bus. The local profile logs events
// instead of publishing them.
func ProvideEventBus(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventBus {
	if cfg.UseMemoryStore {
		return messaging.NewLogBus(logger)
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideJWTValidator creates the token validator. Development falls back
// to a static secret so the API is usable before one is provisioned;
// production requires JWT_SECRET at config load.
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	secret := cfg.JWTSecret
	if secret == "" && !cfg.IsProduction() {
		secret = "dev-secret-change-me"
	}
	return auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: secret,
		Issuer:    cfg.JWTIssuer,
	})
}

// ProvideCollector creates the Prometheus metric set
func ProvideCollector() *observability.Collector {
	return observability.NewCollector("codekata")
}

// ProvideTaxonomyService creates the taxonomy service
func ProvideTaxonomyService(tags ports.TagRepository, eventBus ports.EventBus, logger *zap.Logger) services.TaxonomyService {
	return services.NewTaxonomyService(tags, eventBus, nil, logger)
}

// ProvideNormalizationService creates the review workflow service
func ProvideNormalizationService(
	suggestions ports.SuggestionRepository,
	taxonomy services.TaxonomyService,
	eventBus ports.EventBus,
	logger *zap.Logger,
) services.NormalizationService {
	return services.NewNormalizationService(suggestions, taxonomy, eventBus, logger)
}

// ProvidePipelineService creates the pipeline service
func ProvidePipelineService(
	tags ports.TagRepository,
	normalization services.NormalizationService,
	operations ports.OperationStore,
	eventBus ports.EventBus,
	logger *zap.Logger,
) services.PipelineService {
	return services.NewPipelineService(tags, normalization, operations, eventBus, nil, logger)
}

// ProvideProblemService creates the challenge catalog service
func ProvideProblemService(problems ports.ProblemRepository, tags ports.TagRepository, logger *zap.Logger) services.ProblemService {
	return services.NewProblemService(problems, tags, logger)
}

// ProvideSubscriptionService creates the mailing list service
func ProvideSubscriptionService(
	subscriptions ports.SubscriptionRepository,
	tags ports.TagRepository,
	eventBus ports.EventBus,
	logger *zap.Logger,
) services.SubscriptionService {
	return services.NewSubscriptionService(subscriptions, tags, eventBus, logger)
}

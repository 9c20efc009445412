package di

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codekata-backend/infrastructure/config"
	"codekata-backend/infrastructure/persistence/memory"
)

func memoryProfileConfig() *config.Config {
	return &config.Config{
		Environment:    "test",
		AWSRegion:      "us-east-1",
		JWTSecret:      "wire-test-secret",
		JWTIssuer:      "codekata-backend",
		LogLevel:       "error",
		UseMemoryStore: true,
	}
}

func TestInitializeContainer_MemoryProfile(t *testing.T) {
	// Arrange / Act
	container, err := InitializeContainer(context.Background(), memoryProfileConfig())

	// Assert
	require.NoError(t, err)
	require.NotNil(t, container)
	defer container.Close()

	assert.NotNil(t, container.Logger)
	assert.NotNil(t, container.EventBus)
	assert.NotNil(t, container.Validator)
	assert.NotNil(t, container.Collector)
	assert.NotNil(t, container.Taxonomy)
	assert.NotNil(t, container.Normalization)
	assert.NotNil(t, container.Pipeline)
	assert.NotNil(t, container.Problems)
	assert.NotNil(t, container.Subscriptions)

	_, ok := container.TagRepo.(*memory.TagRepository)
	assert.True(t, ok, "memory profile must use the in-memory tag store")
	_, ok = container.OperationStore.(*memory.InMemoryOperationStore)
	assert.True(t, ok, "memory profile must use the in-memory operation store")
}

func TestInitializeContainer_MissingJWTSecretInProduction(t *testing.T) {
	// Arrange
	cfg := memoryProfileConfig()
	cfg.Environment = "production"
	cfg.JWTSecret = ""

	// Act
	container, err := InitializeContainer(context.Background(), cfg)

	// Assert
	require.Error(t, err)
	assert.Nil(t, container)
}

func TestInitializeContainer_BadLogLevel(t *testing.T) {
	// Arrange
	cfg := memoryProfileConfig()
	cfg.LogLevel = "verbose"

	// Act
	container, err := InitializeContainer(context.Background(), cfg)

	// Assert
	require.Error(t, err)
	assert.Nil(t, container)
}

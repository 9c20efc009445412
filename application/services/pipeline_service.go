package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"codekata-backend/application/ports"
	"codekata-backend/domain/events"
	"codekata-backend/domain/suggest"
	appErrors "codekata-backend/pkg/errors"
)

const (
	// pipelineKind names the operation records this service creates.
	pipelineKind = "normalization"

	// runTimeout bounds a single pipeline pass.
	runTimeout = 5 * time.Minute

	// DefaultWaitTimeout bounds WaitForCompletion when the caller does not
	// pick a timeout.
	DefaultWaitTimeout = 30 * time.Second

	initialPollInterval = 100 * time.Millisecond
	maxPollInterval     = 2 * time.Second
)

// PipelineService defines the interface for running the normalization
// pipeline: scan the tag corpus, find near-duplicate names, and raise
// merge suggestions for review.
type PipelineService interface {
	// TriggerRun starts a pipeline pass of the given kind in the background
	// and returns its operation ID immediately. An empty kind runs the
	// normalization pass; an unregistered kind is a validation error.
	TriggerRun(ctx context.Context, kind, requestedBy string) (string, error)

	// GetOperation retrieves the state of a pipeline run
	GetOperation(ctx context.Context, id string) (*ports.Operation, error)

	// WaitForCompletion polls the operation until it finishes, backing off
	// between polls. It gives up after the timeout.
	WaitForCompletion(ctx context.Context, id string, timeout time.Duration) (*ports.Operation, error)
}

// pipelineService implements PipelineService.
type pipelineService struct {
	tags       ports.TagRepository
	normalizer NormalizationService
	operations ports.OperationStore
	eventBus   ports.EventBus
	suggester  *suggest.Suggester
	logger     *zap.Logger
}

// NewPipelineService creates the pipeline service.
func NewPipelineService(
	tags ports.TagRepository,
	normalizer NormalizationService,
	operations ports.OperationStore,
	eventBus ports.EventBus,
	suggester *suggest.Suggester,
	logger *zap.Logger,
) PipelineService {
	if suggester == nil {
		suggester = suggest.NewSuggester(nil)
	}
	return &pipelineService{
		tags:       tags,
		normalizer: normalizer,
		operations: operations,
		eventBus:   eventBus,
		suggester:  suggester,
		logger:     logger,
	}
}

// TriggerRun records a pending operation and starts the pass in the
// background. The pass runs on its own context so it survives the request
// that triggered it.
func (s *pipelineService) TriggerRun(ctx context.Context, kind, requestedBy string) (string, error) {
	if kind == "" {
		kind = pipelineKind
	}
	if kind != pipelineKind {
		return "", appErrors.NewValidationError("unknown pipeline kind: " + kind)
	}

	op := &ports.Operation{
		ID:          uuid.New().String(),
		Kind:        kind,
		RequestedBy: requestedBy,
		Status:      ports.OperationPending,
		StartedAt:   time.Now(),
	}
	if err := s.operations.Put(ctx, op); err != nil {
		return "", err
	}

	go s.run(op.ID)

	s.logger.Info("pipeline run triggered",
		zap.String("operationId", op.ID),
		zap.String("kind", kind),
		zap.String("requestedBy", requestedBy),
	)
	return op.ID, nil
}

// GetOperation retrieves the state of a run.
func (s *pipelineService) GetOperation(ctx context.Context, id string) (*ports.Operation, error) {
	if id == "" {
		return nil, appErrors.NewValidationError("operation id is required")
	}
	return s.operations.Get(ctx, id)
}

// WaitForCompletion polls the operation with exponential backoff until it
// reaches a terminal state, the timeout passes, or the context is
// cancelled.
func (s *pipelineService) WaitForCompletion(ctx context.Context, id string, timeout time.Duration) (*ports.Operation, error) {
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}
	deadline := time.Now().Add(timeout)
	backoff := initialPollInterval

	for {
		op, err := s.GetOperation(ctx, id)
		if err != nil {
			return nil, err
		}
		if op.Status.IsTerminal() {
			return op, nil
		}
		if time.Now().Add(backoff).After(deadline) {
			return op, appErrors.NewTimeoutError("pipeline run")
		}

		select {
		case <-time.After(backoff):
			backoff *= 2
			if backoff > maxPollInterval {
				backoff = maxPollInterval
			}
		case <-ctx.Done():
			return op, ctx.Err()
		}
	}
}

// run executes one pipeline pass and records the outcome on the operation.
func (s *pipelineService) run(operationID string) {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	s.setStatus(ctx, operationID, ports.OperationRunning, nil, "")

	scanned, raised, err := s.scan(ctx)
	status := ports.OperationCompleted
	errMsg := ""
	if err != nil {
		status = ports.OperationFailed
		errMsg = err.Error()
		s.logger.Error("pipeline run failed",
			zap.String("operationId", operationID),
			zap.Error(err),
		)
	} else {
		s.logger.Info("pipeline run completed",
			zap.String("operationId", operationID),
			zap.Int("tagsScanned", scanned),
			zap.Int("suggestionsRaised", raised),
		)
	}

	result := map[string]interface{}{
		"tags_scanned":       scanned,
		"suggestions_raised": raised,
	}
	s.setStatus(ctx, operationID, status, result, errMsg)

	if s.eventBus != nil {
		event := events.NewPipelineRunCompleted(operationID, string(status), scanned, raised, time.Now())
		if err := s.eventBus.Publish(ctx, event); err != nil {
			s.logger.Warn("event publish failed",
				zap.String("eventType", event.GetEventType()),
				zap.String("operationId", operationID),
				zap.Error(err),
			)
		}
	}
}

// scan walks every pair of tag names and raises a merge suggestion for the
// close ones. The shorter name is proposed as canonical; confidence is the
// pair's similarity score.
func (s *pipelineService) scan(ctx context.Context) (scanned, raised int, err error) {
	records, err := s.tags.FindAll(ctx)
	if err != nil {
		return 0, 0, err
	}

	names := make([]string, 0, len(records))
	for _, record := range records {
		names = append(names, record.Name)
	}

	for i, name := range names {
		for _, match := range s.suggester.FindSimilar(name, names[i+1:]) {
			if match.Score >= 1.0 {
				// Exact doubles are a storage defect, not a merge
				// candidate; skip so the suggestion does not propose a
				// name that already exists.
				continue
			}
			if match.Score < suggest.ScoreSubstring {
				continue
			}
			canonical := name
			if len(match.Name) < len(canonical) {
				canonical = match.Name
			}
			_, err := s.normalizer.RaiseSuggestion(ctx, RaiseSuggestionRequest{
				Name:        canonical,
				Confidence:  match.Score,
				SourceNames: []string{name, match.Name},
			})
			if err != nil {
				return len(names), raised, err
			}
			raised++
		}
	}
	return len(names), raised, nil
}

// setStatus updates the operation record, completing it on terminal states.
func (s *pipelineService) setStatus(ctx context.Context, id string, status ports.OperationStatus, result map[string]interface{}, errMsg string) {
	op, err := s.operations.Get(ctx, id)
	if err != nil {
		s.logger.Warn("operation lookup failed", zap.String("operationId", id), zap.Error(err))
		return
	}
	op.Status = status
	if result != nil {
		op.Result = result
	}
	op.Error = errMsg
	if status.IsTerminal() {
		now := time.Now()
		op.CompletedAt = &now
	}
	if err := s.operations.Put(ctx, op); err != nil {
		s.logger.Warn("operation update failed", zap.String("operationId", id), zap.Error(err))
	}
}

package memory

import (
	"context"
	"sync"
	"time"

	"codekata-backend/application/ports"
	appErrors "codekata-backend/pkg/errors"
)

const cleanupInterval = 5 * time.Minute

// InMemoryOperationStore is an in-memory ports.OperationStore with TTL
// expiry. A background sweep removes expired records; Get also treats
// an expired record as missing so callers never see stale runs between
// sweeps.
type InMemoryOperationStore struct {
	mu         sync.RWMutex
	operations map[string]operationEntry
	ttl        time.Duration
	stopCh     chan struct{}
	stopOnce   sync.Once
}

type operationEntry struct {
	op        *ports.Operation
	expiresAt time.Time
}

var _ ports.OperationStore = (*InMemoryOperationStore)(nil)

// NewInMemoryOperationStore creates an operation store whose records
// expire ttl after their last write.
func NewInMemoryOperationStore(ttl time.Duration) *InMemoryOperationStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	store := &InMemoryOperationStore{
		operations: make(map[string]operationEntry),
		ttl:        ttl,
		stopCh:     make(chan struct{}),
	}

	go store.cleanupLoop()

	return store
}

func copyOperation(op *ports.Operation) *ports.Operation {
	clone := *op
	if op.Result != nil {
		clone.Result = make(map[string]interface{}, len(op.Result))
		for k, v := range op.Result {
			clone.Result[k] = v
		}
	}
	if op.CompletedAt != nil {
		t := *op.CompletedAt
		clone.CompletedAt = &t
	}
	return &clone
}

// Put persists an operation record, refreshing its expiry.
func (s *InMemoryOperationStore) Put(ctx context.Context, op *ports.Operation) error {
	if op == nil || op.ID == "" {
		return appErrors.NewValidationError("operation id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.operations[op.ID] = operationEntry{
		op:        copyOperation(op),
		expiresAt: time.Now().Add(s.ttl),
	}
	return nil
}

// Get retrieves an operation by its ID.
func (s *InMemoryOperationStore) Get(ctx context.Context, id string) (*ports.Operation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.operations[id]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, appErrors.NewNotFoundError("operation")
	}
	return copyOperation(entry.op), nil
}

// Delete removes an operation record.
func (s *InMemoryOperationStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.operations, id)
	return nil
}

// Stop ends the background cleanup goroutine. Safe to call more than
// once.
func (s *InMemoryOperationStore) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}

func (s *InMemoryOperationStore) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.removeExpired()
		case <-s.stopCh:
			return
		}
	}
}

func (s *InMemoryOperationStore) removeExpired() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, entry := range s.operations {
		if now.After(entry.expiresAt) {
			delete(s.operations, id)
		}
	}
}

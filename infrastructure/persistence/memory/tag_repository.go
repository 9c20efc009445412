// Package memory provides in-memory repository implementations backing
// local development and tests. Every store hands out copies so callers
// can never mutate shared state through a returned record.
package memory

import (
	"context"
	"sort"
	"sync"

	"codekata-backend/application/ports"
	"codekata-backend/domain/tag"
	appErrors "codekata-backend/pkg/errors"
)

// TagRepository is an in-memory ports.TagRepository.
type TagRepository struct {
	mu      sync.RWMutex
	records map[string]*tag.Tag
}

var _ ports.TagRepository = (*TagRepository)(nil)

// NewTagRepository creates an empty in-memory tag repository.
func NewTagRepository() *TagRepository {
	return &TagRepository{
		records: make(map[string]*tag.Tag),
	}
}

// Save persists a tag record (create or update).
func (r *TagRepository) Save(ctx context.Context, record *tag.Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records[record.ID.String()] = record.Clone()
	return nil
}

// SaveWithParentCheck persists the child and verifies the parent still
// exists under the same lock, mirroring the transactional write of the
// DynamoDB implementation.
func (r *TagRepository) SaveWithParentCheck(ctx context.Context, record *tag.Tag, parentID tag.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[parentID.String()]; !ok {
		return appErrors.NewNotFoundError("parent tag")
	}
	r.records[record.ID.String()] = record.Clone()
	return nil
}

// FindByID retrieves a tag by its ID.
func (r *TagRepository) FindByID(ctx context.Context, id tag.ID) (*tag.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[id.String()]
	if !ok {
		return nil, appErrors.NewNotFoundError("tag")
	}
	return record.Clone(), nil
}

// FindByName retrieves a tag by name, matched case-insensitively.
func (r *TagRepository) FindByName(ctx context.Context, name string) (*tag.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, record := range r.records {
		if record.MatchesName(name) {
			return record.Clone(), nil
		}
	}
	return nil, appErrors.NewNotFoundError("tag")
}

// FindAll retrieves the full tag corpus ordered by creation time.
func (r *TagRepository) FindAll(ctx context.Context) ([]*tag.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]*tag.Tag, 0, len(r.records))
	for _, record := range r.records {
		records = append(records, record.Clone())
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID.String() < records[j].ID.String()
		}
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	return records, nil
}

// Delete removes a tag record. Deleting an absent record is a no-op.
func (r *TagRepository) Delete(ctx context.Context, id tag.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.records, id.String())
	return nil
}

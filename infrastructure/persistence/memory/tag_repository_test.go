package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codekata-backend/domain/tag"
	appErrors "codekata-backend/pkg/errors"
)

func newTestTag(t *testing.T, name string) *tag.Tag {
	t.Helper()
	record, err := tag.NewTag(name, tag.TypeTopic, "")
	require.NoError(t, err)
	return record
}

func TestTagRepository_SaveAndFindByID(t *testing.T) {
	// Arrange
	repo := NewTagRepository()
	ctx := context.Background()
	record := newTestTag(t, "Algorithms")

	// Act
	err := repo.Save(ctx, record)
	require.NoError(t, err)
	found, err := repo.FindByID(ctx, record.ID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, record.ID, found.ID)
	assert.Equal(t, "Algorithms", found.Name)
	assert.Equal(t, tag.TypeTopic, found.Type)
}

func TestTagRepository_FindByID_ReturnsCopy(t *testing.T) {
	// Arrange
	repo := NewTagRepository()
	ctx := context.Background()
	record := newTestTag(t, "Graphs")
	require.NoError(t, repo.Save(ctx, record))

	// Act
	found, err := repo.FindByID(ctx, record.ID)
	require.NoError(t, err)
	found.Name = "Mutated"
	found.ParentIDs = append(found.ParentIDs, tag.NewID())

	// Assert
	again, err := repo.FindByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "Graphs", again.Name)
	assert.Empty(t, again.ParentIDs)
}

func TestTagRepository_FindByID_Missing(t *testing.T) {
	// Arrange
	repo := NewTagRepository()

	// Act
	_, err := repo.FindByID(context.Background(), tag.NewID())

	// Assert
	assert.True(t, appErrors.IsNotFound(err))
}

func TestTagRepository_FindByName_CaseInsensitive(t *testing.T) {
	// Arrange
	repo := NewTagRepository()
	ctx := context.Background()
	record := newTestTag(t, "JavaScript")
	require.NoError(t, repo.Save(ctx, record))

	// Act
	found, err := repo.FindByName(ctx, "javascript")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, record.ID, found.ID)
	assert.Equal(t, "JavaScript", found.Name)
}

func TestTagRepository_SaveWithParentCheck_ParentMissing(t *testing.T) {
	// Arrange
	repo := NewTagRepository()
	ctx := context.Background()
	child := newTestTag(t, "Child")
	missing := tag.NewID()
	child.AddParent(missing)

	// Act
	err := repo.SaveWithParentCheck(ctx, child, missing)

	// Assert
	assert.True(t, appErrors.IsNotFound(err))
	_, err = repo.FindByID(ctx, child.ID)
	assert.True(t, appErrors.IsNotFound(err))
}

func TestTagRepository_SaveWithParentCheck_ParentPresent(t *testing.T) {
	// Arrange
	repo := NewTagRepository()
	ctx := context.Background()
	parent := newTestTag(t, "Parent")
	require.NoError(t, repo.Save(ctx, parent))
	child := newTestTag(t, "Child")
	child.AddParent(parent.ID)

	// Act
	err := repo.SaveWithParentCheck(ctx, child, parent.ID)

	// Assert
	require.NoError(t, err)
	found, err := repo.FindByID(ctx, child.ID)
	require.NoError(t, err)
	assert.True(t, found.HasParent(parent.ID))
}

func TestTagRepository_FindAll_OrderedByCreation(t *testing.T) {
	// Arrange
	repo := NewTagRepository()
	ctx := context.Background()
	base := time.Now()
	newest := newTestTag(t, "Newest")
	newest.CreatedAt = base.Add(time.Hour)
	oldest := newTestTag(t, "Oldest")
	oldest.CreatedAt = base
	require.NoError(t, repo.Save(ctx, newest))
	require.NoError(t, repo.Save(ctx, oldest))

	// Act
	records, err := repo.FindAll(ctx)

	// Assert
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Oldest", records[0].Name)
	assert.Equal(t, "Newest", records[1].Name)
}

func TestTagRepository_Delete(t *testing.T) {
	// Arrange
	repo := NewTagRepository()
	ctx := context.Background()
	record := newTestTag(t, "Doomed")
	require.NoError(t, repo.Save(ctx, record))

	// Act
	err := repo.Delete(ctx, record.ID)

	// Assert
	require.NoError(t, err)
	_, err = repo.FindByID(ctx, record.ID)
	assert.True(t, appErrors.IsNotFound(err))
}

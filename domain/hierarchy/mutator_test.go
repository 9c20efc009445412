package hierarchy

import (
	"testing"

	"codekata-backend/domain/tag"
	appErrors "codekata-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireErrorType(t *testing.T, err error, want appErrors.ErrorType) *appErrors.AppError {
	t.Helper()
	require.Error(t, err)
	appErr := appErrors.GetAppError(err)
	require.NotNil(t, appErr, "expected an AppError, got %T: %v", err, err)
	require.Equal(t, want, appErr.Type)
	return appErr
}

func TestValidateRelationship_BothEndpointsUnknown(t *testing.T) {
	g := chainGraph(t)

	err := g.ValidateRelationship(mustID(t, "nope"), mustID(t, "also-nope"))

	appErr := requireErrorType(t, err, appErrors.ErrorTypeUnknownTag)
	assert.Equal(t, "nope", appErr.Details["parentId"])
	assert.Equal(t, "also-nope", appErr.Details["childId"])
}

func TestValidateRelationship_OneKnownEndpointPasses(t *testing.T) {
	g := chainGraph(t)

	assert.NoError(t, g.ValidateRelationship(mustID(t, "a"), mustID(t, "new")))
	assert.NoError(t, g.ValidateRelationship(mustID(t, "new"), mustID(t, "c")))
}

func TestValidateRelationship_SelfLoop(t *testing.T) {
	g := chainGraph(t)

	err := g.ValidateRelationship(mustID(t, "b"), mustID(t, "b"))

	appErr := requireErrorType(t, err, appErrors.ErrorTypeSelfLoop)
	assert.Contains(t, appErr.Message, `"B"`)
}

func TestValidateRelationship_SelfLoopBeatsDuplicate(t *testing.T) {
	// A corpus that already carries the erroneous self edge. The report
	// must still say self loop, not duplicate.
	g := BuildGraph([]*tag.Tag{buildTag(t, "a", "A", "a")})

	err := g.ValidateRelationship(mustID(t, "a"), mustID(t, "a"))

	requireErrorType(t, err, appErrors.ErrorTypeSelfLoop)
}

func TestValidateRelationship_DuplicateEdge(t *testing.T) {
	g := chainGraph(t)

	err := g.ValidateRelationship(mustID(t, "a"), mustID(t, "b"))

	appErr := requireErrorType(t, err, appErrors.ErrorTypeDuplicateEdge)
	assert.Equal(t, "A", appErr.Details["parent"])
	assert.Equal(t, "B", appErr.Details["child"])
}

func TestValidateRelationship_ReverseEdgeIsDirectCycle(t *testing.T) {
	g := chainGraph(t)

	// b -> a reverses the existing a -> b. The transitive search would
	// also catch it, but the report must name the direct case.
	err := g.ValidateRelationship(mustID(t, "b"), mustID(t, "a"))

	appErr := requireErrorType(t, err, appErrors.ErrorTypeDirectCycle)
	assert.Contains(t, appErr.Message, `"A" is already a parent of "B"`)
}

func TestValidateRelationship_TransitiveCycleCarriesPath(t *testing.T) {
	g := chainGraph(t)

	err := g.ValidateRelationship(mustID(t, "c"), mustID(t, "a"))

	appErr := requireErrorType(t, err, appErrors.ErrorTypeTransitiveCycle)
	assert.Equal(t, []string{"C", "B", "A"}, appErrors.CyclePath(err))
	assert.Contains(t, appErr.Message, "C -> B -> A -> C")
}

func TestValidateRelationship_ValidEdge(t *testing.T) {
	g := chainGraph(t)

	assert.NoError(t, g.ValidateRelationship(mustID(t, "a"), mustID(t, "c")))
}

func TestAddRelationship_OnGraphWithNoEdges(t *testing.T) {
	g := BuildGraph([]*tag.Tag{
		buildTag(t, "x", "X"),
		buildTag(t, "y", "Y"),
	})

	err := g.AddRelationship(mustID(t, "x"), mustID(t, "y"))

	require.NoError(t, err)
	assert.Equal(t, []tag.ID{mustID(t, "y")}, g.Children(mustID(t, "x")))
	assert.Equal(t, []tag.ID{mustID(t, "x")}, g.Parents(mustID(t, "y")))

	record, ok := g.Tag(mustID(t, "y"))
	require.True(t, ok)
	assert.True(t, record.HasParent(mustID(t, "x")), "stored record must carry the new parent")
	assert.Equal(t, 1, g.EdgeCount())
}

func TestAddRelationship_UnknownChildStillLinks(t *testing.T) {
	g := BuildGraph([]*tag.Tag{buildTag(t, "x", "X")})

	err := g.AddRelationship(mustID(t, "x"), mustID(t, "ghost"))

	require.NoError(t, err)
	assert.True(t, g.HasEdge(mustID(t, "x"), mustID(t, "ghost")))
	assert.Equal(t, []tag.ID{mustID(t, "x")}, g.Parents(mustID(t, "ghost")))
	assert.False(t, g.Contains(mustID(t, "ghost")))
}

func TestAddRelationship_RejectionLeavesGraphUntouched(t *testing.T) {
	tests := []struct {
		name   string
		parent string
		child  string
		want   appErrors.ErrorType
	}{
		{name: "duplicate", parent: "a", child: "b", want: appErrors.ErrorTypeDuplicateEdge},
		{name: "direct cycle", parent: "b", child: "a", want: appErrors.ErrorTypeDirectCycle},
		{name: "transitive cycle", parent: "c", child: "a", want: appErrors.ErrorTypeTransitiveCycle},
		{name: "self loop", parent: "b", child: "b", want: appErrors.ErrorTypeSelfLoop},
		{name: "both unknown", parent: "u1", child: "u2", want: appErrors.ErrorTypeUnknownTag},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := chainGraph(t)
			edgesBefore := g.Edges()
			recordBefore, _ := g.Tag(mustID(t, "a"))
			parentsBefore := append([]tag.ID{}, recordBefore.ParentIDs...)

			err := g.AddRelationship(mustID(t, tt.parent), mustID(t, tt.child))

			requireErrorType(t, err, tt.want)
			assert.Equal(t, edgesBefore, g.Edges(), "rejection must not change the edge set")
			recordAfter, _ := g.Tag(mustID(t, "a"))
			assert.Equal(t, parentsBefore, recordAfter.ParentIDs, "rejection must not change stored records")
			assert.Equal(t, 3, g.TagCount())
		})
	}
}

func TestRemoveRelationship_UpdatesBothEndpoints(t *testing.T) {
	g := chainGraph(t)

	g.RemoveRelationship(mustID(t, "a"), mustID(t, "b"))

	assert.False(t, g.HasEdge(mustID(t, "a"), mustID(t, "b")))
	assert.Empty(t, g.Children(mustID(t, "a")))
	assert.Empty(t, g.Parents(mustID(t, "b")))

	record, ok := g.Tag(mustID(t, "b"))
	require.True(t, ok)
	assert.False(t, record.HasParent(mustID(t, "a")))
}

func TestRemoveRelationship_IsIdempotent(t *testing.T) {
	g := chainGraph(t)

	g.RemoveRelationship(mustID(t, "a"), mustID(t, "b"))
	g.RemoveRelationship(mustID(t, "a"), mustID(t, "b"))
	g.RemoveRelationship(mustID(t, "never"), mustID(t, "existed"))

	assert.Equal(t, 1, g.EdgeCount())
	assert.True(t, g.HasEdge(mustID(t, "b"), mustID(t, "c")))
}

func TestAddThenRemove_RestoresExactShape(t *testing.T) {
	g := chainGraph(t)
	edgesBefore := g.Edges()

	require.NoError(t, g.AddRelationship(mustID(t, "a"), mustID(t, "c")))
	require.Equal(t, 3, g.EdgeCount())
	g.RemoveRelationship(mustID(t, "a"), mustID(t, "c"))

	assert.Equal(t, edgesBefore, g.Edges())
	assert.Equal(t, g.parents, chainGraph(t).parents, "internal parent adjacency must match a fresh build")
	assert.Equal(t, g.children, chainGraph(t).children, "internal child adjacency must match a fresh build")

	record, ok := g.Tag(mustID(t, "c"))
	require.True(t, ok)
	assert.False(t, record.HasParent(mustID(t, "a")))
}

func TestAddRelationship_KeepsGraphAcyclic(t *testing.T) {
	g := chainGraph(t)

	// Grow the hierarchy with a handful of valid edges, then verify that
	// every single edge that would close a loop is still refused.
	require.NoError(t, g.AddRelationship(mustID(t, "a"), mustID(t, "c")))
	require.NoError(t, g.AddRelationship(mustID(t, "b"), mustID(t, "d")))

	for _, edge := range [][2]string{{"c", "a"}, {"c", "b"}, {"d", "b"}, {"d", "a"}, {"b", "a"}} {
		err := g.AddRelationship(mustID(t, edge[0]), mustID(t, edge[1]))
		assert.Error(t, err, "edge %s -> %s must be refused", edge[0], edge[1])
		assert.True(t, appErrors.IsHierarchyViolation(err))
	}
}

func TestRemoveTag_DropsEveryTouchingEdge(t *testing.T) {
	g := BuildGraph([]*tag.Tag{
		buildTag(t, "a", "A"),
		buildTag(t, "b", "B", "a"),
		buildTag(t, "c", "C", "a"),
		buildTag(t, "d", "D", "b", "c"),
	})

	g.RemoveTag(mustID(t, "b"))

	assert.False(t, g.Contains(mustID(t, "b")))
	assert.Equal(t, []tag.ID{mustID(t, "c")}, g.Children(mustID(t, "a")))
	assert.Equal(t, []tag.ID{mustID(t, "c")}, g.Parents(mustID(t, "d")))

	record, ok := g.Tag(mustID(t, "d"))
	require.True(t, ok)
	assert.False(t, record.HasParent(mustID(t, "b")))
	assert.Equal(t, 2, g.EdgeCount())
}

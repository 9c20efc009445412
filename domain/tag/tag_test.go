package tag

import (
	"encoding/json"
	"strings"
	"testing"

	appErrors "codekata-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTag(t *testing.T) {
	tests := []struct {
		name     string
		tagName  string
		tagType  Type
		wantErr  bool
		wantType Type
	}{
		{
			name:     "valid tag",
			tagName:  "Go",
			tagType:  TypeLanguage,
			wantType: TypeLanguage,
		},
		{
			name:     "name is trimmed",
			tagName:  "  Go  ",
			tagType:  TypeLanguage,
			wantType: TypeLanguage,
		},
		{
			name:     "unknown type defaults",
			tagName:  "Go",
			tagType:  Type("nonsense"),
			wantType: DefaultType,
		},
		{
			name:    "empty name",
			tagName: "   ",
			tagType: TypeLanguage,
			wantErr: true,
		},
		{
			name:    "name too long",
			tagName: strings.Repeat("x", 101),
			tagType: TypeLanguage,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag, err := NewTag(tt.tagName, tt.tagType, "")

			if tt.wantErr {
				assert.True(t, appErrors.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.False(t, tag.ID.IsZero())
			assert.Equal(t, strings.TrimSpace(tt.tagName), tag.Name)
			assert.Equal(t, tt.wantType, tag.Type)
			assert.NotNil(t, tag.ParentIDs)
		})
	}
}

func TestTag_Normalize(t *testing.T) {
	p1, _ := ParseID("p1")
	tag := &Tag{
		Name:      "  Go  ",
		Type:      Type("nonsense"),
		ParentIDs: []ID{p1, {}},
	}

	tag.Normalize()

	assert.Equal(t, "Go", tag.Name)
	assert.Equal(t, DefaultType, tag.Type)
	assert.Equal(t, []ID{p1}, tag.ParentIDs, "zero parent ids are dropped")

	bare := &Tag{Name: "Go"}
	bare.Normalize()
	assert.NotNil(t, bare.ParentIDs)
}

func TestTag_ParentSet(t *testing.T) {
	a, _ := ParseID("a")
	b, _ := ParseID("b")
	c, _ := ParseID("c")
	tag, err := NewTag("Go", TypeLanguage, "")
	require.NoError(t, err)

	tag.AddParent(c)
	tag.AddParent(a)
	tag.AddParent(b)
	tag.AddParent(a) // duplicate is a no-op

	assert.Equal(t, []ID{a, b, c}, tag.ParentIDs, "parents stay sorted and deduplicated")
	assert.True(t, tag.HasParent(b))

	tag.RemoveParent(b)
	tag.RemoveParent(b) // absent parent is a no-op
	assert.Equal(t, []ID{a, c}, tag.ParentIDs)
	assert.False(t, tag.HasParent(b))
}

func TestTag_RenameAndReclassify(t *testing.T) {
	tag, err := NewTag("Go", TypeLanguage, "")
	require.NoError(t, err)

	require.NoError(t, tag.Rename("Golang"))
	assert.Equal(t, "Golang", tag.Name)
	assert.True(t, appErrors.IsValidation(tag.Rename("  ")))

	require.NoError(t, tag.Reclassify(TypeTool))
	assert.Equal(t, TypeTool, tag.Type)
	assert.True(t, appErrors.IsValidation(tag.Reclassify(Type("nonsense"))))
}

func TestTag_MatchesName(t *testing.T) {
	tag, err := NewTag("Go", TypeLanguage, "")
	require.NoError(t, err)

	assert.True(t, tag.MatchesName("go"))
	assert.True(t, tag.MatchesName("GO"))
	assert.False(t, tag.MatchesName("Golang"))
}

func TestTag_CloneIsDeep(t *testing.T) {
	a, _ := ParseID("a")
	b, _ := ParseID("b")
	tag, err := NewTag("Go", TypeLanguage, "")
	require.NoError(t, err)
	tag.AddParent(a)

	clone := tag.Clone()
	clone.AddParent(b)
	require.NoError(t, clone.Rename("Golang"))

	assert.Equal(t, "Go", tag.Name)
	assert.Equal(t, []ID{a}, tag.ParentIDs, "mutating the clone must not touch the original")
}

func TestID_JSONRoundTrip(t *testing.T) {
	id, err := ParseID("tag-123")
	require.NoError(t, err)

	data, err := json.Marshal(id)
	require.NoError(t, err)
	assert.Equal(t, `"tag-123"`, string(data))

	var decoded ID
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, id.Equals(decoded))

	assert.Error(t, json.Unmarshal([]byte(`42`), &decoded))
}

func TestID_ParseAndZero(t *testing.T) {
	_, err := ParseID("")
	assert.Error(t, err)

	assert.True(t, ID{}.IsZero())
	assert.False(t, NewID().IsZero())
	assert.NotEqual(t, NewID().String(), NewID().String())
}

func TestParseType(t *testing.T) {
	assert.Equal(t, TypeLanguage, ParseType(" Language "))
	assert.Equal(t, TypeSkillLevel, ParseType("skill_level"))
	assert.Equal(t, DefaultType, ParseType("nonsense"))
	assert.Equal(t, DefaultType, ParseType(""))
}

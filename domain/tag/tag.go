package tag

import (
	"sort"
	"strings"
	"time"

	appErrors "codekata-backend/pkg/errors"
)

// Tag is a labeled category attached to coding problems, organized into a
// parent/child hierarchy. Names are case-preserving but always matched
// case-insensitively. The child side of the hierarchy is never stored on
// the record; it is derived by inverting ParentIDs over the full corpus.
type Tag struct {
	ID          ID        `json:"id"`
	Name        string    `json:"name"`
	Type        Type      `json:"type"`
	Description string    `json:"description,omitempty"`
	ParentIDs   []ID      `json:"parent_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTag creates a tag with validation. The type is defaulted when missing
// or unknown rather than rejected.
func NewTag(name string, tagType Type, description string) (*Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, appErrors.NewValidationError("tag name is required")
	}
	if len(name) > 100 {
		return nil, appErrors.NewValidationError("tag name must be at most 100 characters")
	}
	if !tagType.IsValid() {
		tagType = DefaultType
	}

	now := time.Now()
	return &Tag{
		ID:          NewID(),
		Name:        name,
		Type:        tagType,
		Description: description,
		ParentIDs:   []ID{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Normalize defaults the fields a partially specified record may be missing.
// Records from outside the service pass through here at the boundary so a
// malformed field never propagates into the graph.
func (t *Tag) Normalize() {
	t.Name = strings.TrimSpace(t.Name)
	if !t.Type.IsValid() {
		t.Type = DefaultType
	}
	if t.ParentIDs == nil {
		t.ParentIDs = []ID{}
	} else {
		parents := t.ParentIDs[:0]
		for _, p := range t.ParentIDs {
			if !p.IsZero() {
				parents = append(parents, p)
			}
		}
		t.ParentIDs = parents
	}
}

// Rename updates the display name.
func (t *Tag) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return appErrors.NewValidationError("tag name is required")
	}
	if t.Name == name {
		return nil
	}
	t.Name = name
	t.UpdatedAt = time.Now()
	return nil
}

// Reclassify updates the tag type.
func (t *Tag) Reclassify(tagType Type) error {
	if !tagType.IsValid() {
		return appErrors.NewValidationError("unknown tag type: " + tagType.String())
	}
	if t.Type == tagType {
		return nil
	}
	t.Type = tagType
	t.UpdatedAt = time.Now()
	return nil
}

// SetDescription updates the free-text description.
func (t *Tag) SetDescription(description string) {
	if t.Description == description {
		return
	}
	t.Description = description
	t.UpdatedAt = time.Now()
}

// MatchesName reports whether name equals the tag's name ignoring case.
func (t *Tag) MatchesName(name string) bool {
	return strings.EqualFold(t.Name, name)
}

// HasParent reports whether id is among the tag's parents.
func (t *Tag) HasParent(id ID) bool {
	for _, p := range t.ParentIDs {
		if p.Equals(id) {
			return true
		}
	}
	return false
}

// AddParent records id as a parent. Callers are expected to have validated
// the edge against the hierarchy first; this only maintains the set.
func (t *Tag) AddParent(id ID) {
	if t.HasParent(id) {
		return
	}
	t.ParentIDs = append(t.ParentIDs, id)
	sort.Slice(t.ParentIDs, func(i, j int) bool {
		return t.ParentIDs[i].String() < t.ParentIDs[j].String()
	})
	t.UpdatedAt = time.Now()
}

// RemoveParent drops id from the parent set. Removing an absent parent is
// a no-op.
func (t *Tag) RemoveParent(id ID) {
	for i, p := range t.ParentIDs {
		if p.Equals(id) {
			t.ParentIDs = append(t.ParentIDs[:i], t.ParentIDs[i+1:]...)
			t.UpdatedAt = time.Now()
			return
		}
	}
}

// Clone returns a deep copy of the tag.
func (t *Tag) Clone() *Tag {
	clone := *t
	clone.ParentIDs = append([]ID{}, t.ParentIDs...)
	return &clone
}

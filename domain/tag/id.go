package tag

import (
	"errors"

	"github.com/google/uuid"
)

// ID is a value object identifying a tag. Identifiers are opaque: new tags
// get UUIDs, but identifiers minted elsewhere are accepted as-is.
type ID struct {
	value string
}

// NewID creates a new random tag ID.
func NewID() ID {
	return ID{value: uuid.New().String()}
}

// ParseID creates an ID from an existing string.
func ParseID(id string) (ID, error) {
	if id == "" {
		return ID{}, errors.New("tag ID cannot be empty")
	}
	return ID{value: id}, nil
}

// String returns the string representation of the ID.
func (id ID) String() string {
	return id.value
}

// Equals checks if two IDs are equal.
func (id ID) Equals(other ID) bool {
	return id.value == other.value
}

// IsZero checks if the ID is the zero value.
func (id ID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id ID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *ID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("tag ID must be a string")
	}
	id.value = string(data[1 : len(data)-1])
	return nil
}

package tag

import "strings"

// Type classifies what kind of thing a tag names.
type Type string

const (
	TypeLanguage   Type = "language"
	TypeFramework  Type = "framework"
	TypeConcept    Type = "concept"
	TypeDomain     Type = "domain"
	TypeSkillLevel Type = "skill_level"
	TypeTool       Type = "tool"
	TypeTopic      Type = "topic"
	TypeLibrary    Type = "library"
)

// DefaultType is substituted for records that arrive without a type.
const DefaultType = TypeTopic

// AllTypes lists every valid tag type.
func AllTypes() []Type {
	return []Type{
		TypeLanguage,
		TypeFramework,
		TypeConcept,
		TypeDomain,
		TypeSkillLevel,
		TypeTool,
		TypeTopic,
		TypeLibrary,
	}
}

// IsValid reports whether t is one of the known tag types.
func (t Type) IsValid() bool {
	switch t {
	case TypeLanguage, TypeFramework, TypeConcept, TypeDomain,
		TypeSkillLevel, TypeTool, TypeTopic, TypeLibrary:
		return true
	}
	return false
}

// String returns the string representation of the type.
func (t Type) String() string {
	return string(t)
}

// ParseType maps a raw string onto a tag type, falling back to the default
// for anything unknown. Boundary code uses this so malformed records are
// normalized rather than rejected.
func ParseType(s string) Type {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if t.IsValid() {
		return t
	}
	return DefaultType
}

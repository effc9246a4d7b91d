package program

import (
	"fmt"

	"github.com/SergeiSkv/rulecheck/models"
)

// TypeKind is the declaration keyword of a type
type TypeKind uint8

const (
	TypeClass TypeKind = iota
	TypeRecord
	TypeStruct
	TypeEnum
	TypeInterface
)

var typeKindNames = [...]string{"class", "record", "struct", "enum", "interface"}

func (k TypeKind) String() string {
	if int(k) < len(typeKindNames) {
		return typeKindNames[k]
	}
	return fmt.Sprintf("TypeKind(%d)", uint8(k))
}

func (k TypeKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *TypeKind) UnmarshalText(text []byte) error {
	for i, name := range typeKindNames {
		if name == string(text) {
			*k = TypeKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown type kind %q", text)
}

// MemberKind distinguishes properties from fields
type MemberKind uint8

const (
	MemberProperty MemberKind = iota
	MemberField
)

func (k MemberKind) String() string {
	switch k {
	case MemberProperty:
		return "property"
	case MemberField:
		return "field"
	}
	return fmt.Sprintf("MemberKind(%d)", uint8(k))
}

func (k MemberKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *MemberKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "property":
		*k = MemberProperty
	case "field":
		*k = MemberField
	default:
		return fmt.Errorf("unknown member kind %q", text)
	}
	return nil
}

// Visibility is collapsed to what deserializers care about
type Visibility uint8

const (
	VisibilityPublic Visibility = iota
	VisibilityNonPublic
)

func (v Visibility) String() string {
	if v == VisibilityPublic {
		return "public"
	}
	return "nonpublic"
}

func (v Visibility) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

func (v *Visibility) UnmarshalText(text []byte) error {
	switch string(text) {
	case "public":
		*v = VisibilityPublic
	case "nonpublic", "private", "protected", "internal":
		*v = VisibilityNonPublic
	default:
		return fmt.Errorf("unknown visibility %q", text)
	}
	return nil
}

// TypeDecl is a type declaration with its own (not inherited) members
type TypeDecl struct {
	Name         string         `json:"name" yaml:"name"`
	Kind         TypeKind       `json:"kind" yaml:"kind"`
	Members      []*Member      `json:"members,omitempty" yaml:"members,omitempty"`
	Constructors []*Constructor `json:"constructors,omitempty" yaml:"constructors,omitempty"`
	Span         models.Span    `json:"span" yaml:"span"`
}

// Member is a property or field declared directly on a type
type Member struct {
	Name       string      `json:"name" yaml:"name"`
	Kind       MemberKind  `json:"kind" yaml:"kind"`
	Visibility Visibility  `json:"visibility" yaml:"visibility"`
	Static     bool        `json:"static,omitempty" yaml:"static,omitempty"`
	Span       models.Span `json:"span" yaml:"span"`
}

// IsPublic reports whether deserializers can bind the member directly
func (m *Member) IsPublic() bool {
	return m.Visibility == VisibilityPublic
}

// Constructor is a constructor declaration of the enclosing type
type Constructor struct {
	Params      []*Parameter `json:"params,omitempty" yaml:"params,omitempty"`
	Attributes  []Attribute  `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Assignments []Assignment `json:"assignments,omitempty" yaml:"assignments,omitempty"`
	Static      bool         `json:"static,omitempty" yaml:"static,omitempty"`
	Span        models.Span  `json:"span" yaml:"span"`
}

// Parameter is a formal parameter of a constructor
type Parameter struct {
	Name string      `json:"name" yaml:"name"`
	Type string      `json:"type,omitempty" yaml:"type,omitempty"`
	Span models.Span `json:"span" yaml:"span"`
}

// Assignment records that Parameter flows directly into Member in the
// constructor body, whatever the syntactic form of the assignment.
type Assignment struct {
	Member    string `json:"member" yaml:"member"`
	Parameter string `json:"parameter" yaml:"parameter"`
}

// InstanceMembers returns the non-static members of kind in declaration order
func (t *TypeDecl) InstanceMembers(kind MemberKind) []*Member {
	var out []*Member
	for _, m := range t.Members {
		if m != nil && !m.Static && m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

// Member returns the own instance member called name, properties first
func (t *TypeDecl) Member(name string) *Member {
	for _, kind := range [...]MemberKind{MemberProperty, MemberField} {
		for _, m := range t.InstanceMembers(kind) {
			if m.Name == name {
				return m
			}
		}
	}
	return nil
}

// AssignedMember returns the name of the member param is assigned to, if any
func (c *Constructor) AssignedMember(param string) (string, bool) {
	for _, a := range c.Assignments {
		if a.Parameter == param {
			return a.Member, true
		}
	}
	return "", false
}

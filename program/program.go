// Package program is the symbol-resolved program model the analyzers run on.
//
// A Unit is produced either by decoding a model document exported by a
// compiler host or by lowering type-checked Go packages (see package gosrc).
// Nothing in a Unit is mutated once it is handed to an analyzer.
package program

import (
	"strings"

	"github.com/SergeiSkv/rulecheck/models"
)

// Unit is everything one analysis pass looks at
type Unit struct {
	Name         string        `json:"name" yaml:"name"`
	Target       Target        `json:"target" yaml:"target"`
	Types        []*TypeDecl   `json:"types,omitempty" yaml:"types,omitempty"`
	Functions    []*Function   `json:"functions,omitempty" yaml:"functions,omitempty"`
	Suppressions []Suppression `json:"suppressions,omitempty" yaml:"suppressions,omitempty"`
}

// Target describes the compilation target of a unit
type Target struct {
	Runtime string `json:"runtime,omitempty" yaml:"runtime,omitempty"`
	// EmptyArraySingleton is set when a variadic call with no arguments
	// reuses a shared empty sequence instead of allocating one.
	EmptyArraySingleton bool `json:"empty_array_singleton,omitempty" yaml:"empty_array_singleton,omitempty"`
}

// Attribute is a declarative annotation; Name is fully qualified
type Attribute struct {
	Name string   `json:"name" yaml:"name"`
	Args []string `json:"args,omitempty" yaml:"args,omitempty"`
}

// Suppression silences rules on a line range of a file. An empty Rules list
// silences everything; the selectors are rule IDs or rule names.
type Suppression struct {
	File      string   `json:"file" yaml:"file"`
	StartLine int      `json:"start_line" yaml:"start_line"`
	EndLine   int      `json:"end_line" yaml:"end_line"`
	Rules     []string `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// Covers reports whether the suppression applies to kind at span
func (s Suppression) Covers(kind models.RuleKind, span models.Span) bool {
	if s.File != "" && s.File != span.File {
		return false
	}
	if span.Line < s.StartLine || (s.EndLine > 0 && span.Line > s.EndLine) {
		return false
	}
	if len(s.Rules) == 0 {
		return true
	}
	rule := kind.Rule()
	for _, sel := range s.Rules {
		if sel == "*" || strings.EqualFold(sel, rule.ID) || strings.EqualFold(sel, rule.Name) {
			return true
		}
	}
	return false
}

// HasAttribute reports whether any attribute satisfies match
func HasAttribute(attrs []Attribute, match func(Attribute) bool) bool {
	if match == nil {
		return false
	}
	for _, a := range attrs {
		if match(a) {
			return true
		}
	}
	return false
}

package analyzer

import (
	"strings"

	"github.com/SergeiSkv/rulecheck/program"
)

const (
	JSONConstructorMarker      = "System.Text.Json.Serialization.JsonConstructorAttribute"
	PerformanceSensitiveMarker = "Roslyn.Utilities.PerformanceSensitiveAttribute"

	// Markers produced by the Go frontend from //rulecheck: directives
	ConstructorDirective = "rulecheck:constructor"
	SensitiveDirective   = "rulecheck:sensitive"
)

// Markers is a set of fully qualified attribute names. A trailing "Attribute"
// suffix is optional on both sides of the comparison.
type Markers []string

// DefaultConstructorMarkers returns the markers of deserialization constructors
func DefaultConstructorMarkers() Markers {
	return Markers{JSONConstructorMarker, ConstructorDirective}
}

// DefaultSensitiveMarkers returns the markers of performance-sensitive code
func DefaultSensitiveMarkers() Markers {
	return Markers{PerformanceSensitiveMarker, SensitiveDirective}
}

// Match reports whether attr is one of the markers
func (m Markers) Match(attr program.Attribute) bool {
	name := trimAttributeSuffix(attr.Name)
	for _, marker := range m {
		if trimAttributeSuffix(marker) == name {
			return true
		}
	}
	return false
}

// Any reports whether one of attrs is a marker
func (m Markers) Any(attrs []program.Attribute) bool {
	if len(m) == 0 {
		return false
	}
	return program.HasAttribute(attrs, m.Match)
}

func trimAttributeSuffix(name string) string {
	name = strings.TrimPrefix(strings.TrimSpace(name), "global::")
	if trimmed := strings.TrimSuffix(name, "Attribute"); trimmed != "" && !strings.HasSuffix(trimmed, ".") {
		return trimmed
	}
	return name
}

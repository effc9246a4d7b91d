package analyzer

import (
	"strings"

	"golang.org/x/text/cases"
)

// NameStrategy probes for the member a constructor parameter initializes when
// the constructor body gives no assignment evidence. A member matches when its
// case-folded name equals Prefix+param case-folded.
type NameStrategy struct {
	Name   string
	Prefix string
	// Agrees is set when a hit counts as the names matching. A backing
	// field hit locates the member but still reports the name mismatch.
	Agrees bool
}

// DefaultNameStrategies probes the exact name first, then the "_" backing prefix
func DefaultNameStrategies() []NameStrategy {
	return NameStrategies([]string{"_"})
}

// NameStrategies builds the exact strategy followed by one backing strategy
// per non-empty prefix
func NameStrategies(backingPrefixes []string) []NameStrategy {
	strategies := []NameStrategy{{Name: "exact", Agrees: true}}
	for _, prefix := range backingPrefixes {
		prefix = strings.TrimSpace(prefix)
		if prefix == "" {
			continue
		}
		strategies = append(strategies, NameStrategy{Name: "backing-prefix " + prefix, Prefix: prefix})
	}
	return strategies
}

// Matches reports whether member is the candidate this strategy derives from param
func (s NameStrategy) Matches(param, member string) bool {
	if param == "" || member == "" {
		return false
	}
	return foldName(member) == foldName(s.Prefix+param)
}

// NamesAgree compares identifiers the way deserializers bind them
func NamesAgree(param, member string) bool {
	return param != "" && foldName(param) == foldName(member)
}

func foldName(s string) string {
	return cases.Fold().String(s)
}
